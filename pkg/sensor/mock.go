package sensor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/itohio/gorain/pkg/config"
	"go.uber.org/zap"
)

// Mock simulates a rain sensor for testing and development.
// It produces a slow dry-wet-dry shower cycle with noise and occasional
// electrical spikes.
type Mock struct {
	cfg    *config.MockConfig
	logger *zap.SugaredLogger

	samples   chan RawSample
	done      chan struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	startTime time.Time
	count     int
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig, logger *zap.SugaredLogger) *Mock {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:     cfg,
		logger:  logger,
		samples: make(chan RawSample, DefaultBufferSize),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect starts generating samples.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}
	if m.cfg.SampleRate <= 0 {
		return fmt.Errorf("invalid mock sample rate %s: must be positive", m.cfg.SampleRate)
	}

	// Fresh channels and context so the device can be reconnected after Close
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.samples = make(chan RawSample, DefaultBufferSize)
	m.done = make(chan struct{})
	m.connected = true
	m.startTime = time.Now()
	m.count = 0

	go m.generateSamples(m.ctx, m.samples, m.done)

	m.logger.Infow("connected to mocked rain sensor", "sample_rate", m.cfg.SampleRate)
	return nil
}

// Close stops the generator and waits for it to close the samples channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.cancel()
	m.connected = false
	done := m.done
	m.mu.Unlock()

	<-done
	return nil
}

// Samples returns the channel for reading samples.
// Each Connect creates a new channel, so call Samples after Connect.
func (m *Mock) Samples() <-chan RawSample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.samples
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *Mock) generateSamples(ctx context.Context, samples chan<- RawSample, done chan<- struct{}) {
	defer close(done)
	defer close(samples)

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.mu.Lock()
			elapsed := now.Sub(m.startTime)
			m.count++
			n := m.count
			m.mu.Unlock()

			sample := RawSample{
				Timestamp: now,
				Value:     m.valueAt(elapsed, n),
			}
			select {
			case samples <- sample:
			case <-ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// valueAt returns the simulated reading for the n-th sample taken elapsed
// after connecting.
func (m *Mock) valueAt(elapsed time.Duration, n int) uint16 {
	if m.cfg.SpikeEvery > 0 && n%m.cfg.SpikeEvery == 0 {
		// Loose connector: the reading jumps to a rail
		if n%2 == 0 {
			return MaxValue
		}
		return 0
	}

	// Wetness follows a raised cosine: 0 when dry, 1 at the peak of the shower
	wetness := 0.0
	if m.cfg.ShowerPeriod > 0 {
		phase := 2 * math.Pi * elapsed.Seconds() / m.cfg.ShowerPeriod.Seconds()
		wetness = (1 - math.Cos(phase)) / 2
	}
	level := m.cfg.DryLevel - (m.cfg.DryLevel-m.cfg.WetLevel)*wetness

	seconds := elapsed.Seconds()
	noise := (math.Sin(seconds*97) + math.Cos(seconds*131)) * m.cfg.NoiseLevel * 0.5

	return clampADC(level + noise)
}

// clampADC converts v to a 12-bit reading.
func clampADC(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > MaxValue {
		return MaxValue
	}
	return uint16(v)
}
