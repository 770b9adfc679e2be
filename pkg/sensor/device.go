package sensor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	// DefaultBaudRate is the console baud rate of the sensor firmware.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
	// MaxValue is the largest 12-bit ADC reading.
	MaxValue = 4095
)

// RawSample is one raw rain sensor reading as received from the firmware.
type RawSample struct {
	Timestamp time.Time
	Value     uint16 // 12-bit ADC reading (0-4095), lower is wetter
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads the raw sample stream of the sensor firmware from a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	logger   *zap.SugaredLogger

	conn      serial.Port
	samples   chan RawSample
	done      chan struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int, logger *zap.SugaredLogger) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		logger:   logger,
		samples:  make(chan RawSample, bufSize),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// OpenPort opens a serial port in 8N1 mode, for example the Bluetooth SPP
// port status lines are written to.
func OpenPort(name string, baudRate int) (serial.Port, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return port, nil
}

// Connect opens the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	port, err := OpenPort(d.port, d.baudRate)
	if err != nil {
		return err
	}

	// Fresh channels and context so the device can be reconnected after Close
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.samples = make(chan RawSample, d.bufSize)
	d.done = make(chan struct{})
	d.conn = port
	d.connected = true

	go d.readSamples(d.ctx, port, d.samples, d.done)

	d.logger.Infow("connected to rain sensor", "port", d.port, "baud", d.baudRate)
	return nil
}

// Close closes the port and waits for the reader to finish.
// The samples channel is closed once the reader exits.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}

	d.cancel()
	var closeErr error
	if d.conn != nil {
		closeErr = d.conn.Close()
		d.conn = nil
	}
	d.connected = false
	done := d.done
	d.mu.Unlock()

	<-done

	if closeErr != nil {
		return fmt.Errorf("failed to close serial port %s: %w", d.port, closeErr)
	}
	return nil
}

// Samples returns the channel for reading samples.
// Each Connect creates a new channel, so call Samples after Connect.
func (d *Serial) Samples() <-chan RawSample {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.samples
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readSamples reads lines from r until EOF or cancellation.
func (d *Serial) readSamples(ctx context.Context, r io.Reader, samples chan<- RawSample, done chan<- struct{}) {
	defer close(done)
	defer close(samples)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if display, ok := strings.CutPrefix(line, "#"); ok {
			d.logger.Debugw("device display", "line", strings.TrimSpace(display))
			continue
		}

		sample, err := parseLine(line)
		if err != nil {
			// Status lines and bridged bytes share the console with the sample stream
			d.logger.Debugw("skipping line", "line", line, "error", err)
			continue
		}

		select {
		case samples <- sample:
		case <-ctx.Done():
			return
		default:
			d.logger.Warn("samples channel full, dropping sample")
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		d.logger.Errorw("error reading from serial port", "port", d.port, "error", err)
	}
}

// parseLine parses a line from the firmware into a RawSample.
// Format: unix_micros,value
// Example: 1234567890123,2048
func parseLine(line string) (RawSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return RawSample{}, fmt.Errorf("invalid line format: expected 2 comma-separated values, got %d", len(parts))
	}

	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	value, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid value: %w", err)
	}
	if value > MaxValue {
		return RawSample{}, fmt.Errorf("value out of range: %d (max %d)", value, MaxValue)
	}

	return RawSample{
		Timestamp: time.UnixMicro(timestampMicros),
		Value:     uint16(value),
	}, nil
}
