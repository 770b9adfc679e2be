package monitor

import (
	"sync"
	"time"

	"github.com/itohio/gorain/pkg/config"
	"github.com/itohio/gorain/pkg/rain"
	"github.com/itohio/gorain/pkg/sensor"
	"go.uber.org/zap"
)

var _ RainMonitor = (*Monitor)(nil)

// Update is an emitted reading stamped with the time of the sample that
// opened the emission gate.
type Update struct {
	Timestamp time.Time
	rain.Reading
}

// RainMonitor feeds sensor samples through the rain pipeline and keeps the
// recent readings.
type RainMonitor interface {
	ProcessSamples(input <-chan sensor.RawSample)
	Updates() []Update       // Recent updates, oldest first
	Latest() (Update, bool)  // Most recent update, false before the first one
	OnUpdate(func(u Update)) // Register callback for new updates
}

// Monitor implements RainMonitor on the host.
// A single goroutine drives the pipeline; readers get copies.
type Monitor struct {
	logger *zap.SugaredLogger
	opts   []rain.Option

	mu       sync.RWMutex
	pipeline *rain.Pipeline
	updates  []Update // FIFO, oldest first, capped at maxUpdates
	start    time.Time
	last     time.Time
	shutdown bool

	callbacks []func(u Update)
	cbMu      sync.RWMutex

	maxUpdates int
}

// New creates a Monitor from the pipeline and history configuration.
func New(cfg *config.Config, logger *zap.SugaredLogger) *Monitor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	opts := []rain.Option{rain.WithInterval(cfg.Pipeline.Interval)}
	maxUpdates := cfg.History.MaxReadings
	if maxUpdates <= 0 {
		maxUpdates = config.Default().History.MaxReadings
	}

	return &Monitor{
		logger:     logger,
		opts:       opts,
		pipeline:   rain.New(opts...),
		updates:    make([]Update, 0, maxUpdates),
		maxUpdates: maxUpdates,
	}
}

// ProcessSamples processes samples until the input channel closes.
// Afterwards no further callbacks are sent until ResetShutdown is called.
func (m *Monitor) ProcessSamples(input <-chan sensor.RawSample) {
	for s := range input {
		m.processSample(s)
	}
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

// processSample pushes one sample through the pipeline and records the
// update if the pipeline emitted one.
func (m *Monitor) processSample(s sensor.RawSample) {
	m.mu.Lock()

	if m.start.IsZero() {
		m.start = s.Timestamp
	} else if s.Timestamp.Before(m.last) {
		// The firmware clock went backwards, most likely a reboot
		m.logger.Warnw("sample clock went backwards, restarting pipeline",
			"previous", m.last, "current", s.Timestamp)
		m.pipeline = rain.New(m.opts...)
		m.start = s.Timestamp
	}
	m.last = s.Timestamp

	reading, ok := m.pipeline.OnSample(int(s.Value), s.Timestamp.Sub(m.start))
	if !ok {
		m.mu.Unlock()
		return
	}

	u := Update{Timestamp: s.Timestamp, Reading: reading}
	m.updates = append(m.updates, u)
	if len(m.updates) > m.maxUpdates {
		m.updates = m.updates[len(m.updates)-m.maxUpdates:]
	}
	shouldNotify := !m.shutdown
	m.mu.Unlock()

	m.logger.Debugw("rain reading",
		"category", reading.Category.String(),
		"percent", reading.Percent,
		"trend", reading.Trend.String(),
		"filtered", reading.Filter.FilteredAverage,
		"baseline", reading.Baseline,
		"valid", reading.Filter.ValidCount)

	if shouldNotify {
		m.notifyCallbacks(u)
	}
}

// Updates returns a copy of the recent updates, oldest first.
func (m *Monitor) Updates() []Update {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Update, len(m.updates))
	copy(result, m.updates)
	return result
}

// Latest returns the most recent update.
func (m *Monitor) Latest() (Update, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.updates) == 0 {
		return Update{}, false
	}
	return m.updates[len(m.updates)-1], true
}

// Trend returns the persisted pipeline trend.
func (m *Monitor) Trend() rain.TrendState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pipeline.Trend()
}

// OnUpdate registers a callback invoked for every emitted update.
// Callbacks run on the processing goroutine and should return quickly.
func (m *Monitor) OnUpdate(callback func(u Update)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ResetShutdown allows callbacks again and restarts the pipeline.
// This should be called before starting a new sample stream.
func (m *Monitor) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
	m.pipeline = rain.New(m.opts...)
	m.start = time.Time{}
	m.last = time.Time{}
}

// notifyCallbacks invokes all registered callbacks without holding any locks.
func (m *Monitor) notifyCallbacks(u Update) {
	m.cbMu.RLock()
	callbacks := make([]func(u Update), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(u)
		}
	}
}
