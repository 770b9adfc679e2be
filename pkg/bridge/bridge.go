// Package bridge forwards bytes in both directions between two streams,
// e.g. a USB console and a Bluetooth serial module.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Stats counts the bytes forwarded in each direction.
type Stats struct {
	AToB int64
	BToA int64
}

// Bridge copies a→b and b→a until either side fails or the context ends.
type Bridge struct {
	a, b   io.ReadWriteCloser
	logger *zap.SugaredLogger

	mu    sync.Mutex
	stats Stats
}

// New creates a bridge between a and b.
func New(a, b io.ReadWriteCloser, logger *zap.SugaredLogger) *Bridge {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Bridge{a: a, b: b, logger: logger}
}

// Run forwards bytes until ctx is cancelled or one direction stops.
// Both streams are closed before Run returns. io.EOF from either side is a
// normal shutdown and is not returned.
func (br *Bridge) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 2)
	go func() { errs <- br.pump(br.b, br.a, &br.stats.AToB) }()
	go func() { errs <- br.pump(br.a, br.b, &br.stats.BToA) }()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errs:
	}

	// Closing both ends unblocks the remaining reader
	if cerr := br.a.Close(); cerr != nil {
		br.logger.Debugw("close a", "error", cerr)
	}
	if cerr := br.b.Close(); cerr != nil {
		br.logger.Debugw("close b", "error", cerr)
	}

	if err == nil {
		<-errs
	}
	<-errs

	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Stats returns the byte counters.
func (br *Bridge) Stats() Stats {
	br.mu.Lock()
	defer br.mu.Unlock()
	return br.stats
}

func (br *Bridge) pump(dst io.Writer, src io.Reader, counter *int64) error {
	buf := make([]byte, 256)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return fmt.Errorf("bridge write: %w", werr)
			}
			br.mu.Lock()
			*counter += int64(n)
			br.mu.Unlock()
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			return fmt.Errorf("bridge read: %w", err)
		}
	}
}
