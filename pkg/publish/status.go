package publish

import (
	"fmt"
	"io"
	"sync"

	"github.com/itohio/gorain/pkg/monitor"
	"go.uber.org/zap"
)

// StatusWriter writes status lines to a text transport such as a Bluetooth
// serial port.
type StatusWriter struct {
	w      io.Writer
	mu     sync.Mutex
	logger *zap.SugaredLogger
}

// NewStatusWriter creates a StatusWriter on top of w.
func NewStatusWriter(w io.Writer, logger *zap.SugaredLogger) *StatusWriter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &StatusWriter{w: w, logger: logger}
}

// Publish writes "{category}: {percent}%\nTrend: {trend}\n" for u.
func (s *StatusWriter) Publish(u monitor.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.w, u.StatusLine()); err != nil {
		return fmt.Errorf("failed to write status line: %w", err)
	}
	return nil
}

// Handle is an OnUpdate callback that logs write failures instead of returning them.
func (s *StatusWriter) Handle(u monitor.Update) {
	if err := s.Publish(u); err != nil {
		s.logger.Warnw("status transport write failed", "error", err)
	}
}
