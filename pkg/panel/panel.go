// Package panel provides a fyne widget that mimics the sensor's 16x2
// character LCD and plots recent filtered readings against the baseline.
package panel

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gorain/pkg/monitor"
	"github.com/itohio/gorain/pkg/rain"
)

// DefaultMaxPoints limits how many readings are drawn in the trend plot.
const DefaultMaxPoints = 300

// LCD displays the latest rain reading as two text lines, a wetness bar and
// a plot of filtered averages with the baseline.
type LCD struct {
	widget.BaseWidget

	// Data (protected by mu)
	mu       sync.RWMutex
	lines    [2]string
	percent  int
	trend    rain.TrendState
	filtered []int
	baseline []int

	maxPoints int
}

// New creates an LCD widget showing a blank display.
func New(maxPoints int) *LCD {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	l := &LCD{
		lines:     [2]string{"", ""},
		filtered:  make([]int, 0, maxPoints),
		baseline:  make([]int, 0, maxPoints),
		maxPoints: maxPoints,
	}
	l.ExtendBaseWidget(l)
	return l
}

// Update shows the latest of updates and plots all of them.
// This should be called from the monitor callback using fyne.Do().
func (l *LCD) Update(updates []monitor.Update) {
	l.mu.Lock()

	if len(updates) == 0 {
		l.lines = [2]string{"", ""}
		l.percent = 0
		l.trend = rain.Stable
		l.filtered = l.filtered[:0]
		l.baseline = l.baseline[:0]
		l.mu.Unlock()
		l.Refresh()
		return
	}

	latest := updates[len(updates)-1]
	l.lines = latest.DisplayLines()
	l.percent = latest.Percent
	l.trend = latest.Trend

	shown := Downsample(nil, updates, l.maxPoints)
	l.filtered = l.filtered[:0]
	l.baseline = l.baseline[:0]
	for _, u := range shown {
		l.filtered = append(l.filtered, u.Filter.FilteredAverage)
		l.baseline = append(l.baseline, u.Baseline)
	}

	l.mu.Unlock()

	// Refresh outside the lock, the renderer takes a read lock
	l.Refresh()
}

// Lines returns the two text lines currently shown.
func (l *LCD) Lines() [2]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lines
}

// Percent returns the wetness percentage currently shown.
func (l *LCD) Percent() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.percent
}

// CreateRenderer creates the renderer for this widget.
func (l *LCD) CreateRenderer() fyne.WidgetRenderer {
	return newRenderer(l)
}
