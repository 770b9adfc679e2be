// Package rain implements the rain sensor signal-conditioning pipeline:
// a short rolling window of raw readings filtered with a 2σ outlier rule,
// a long rolling history of filtered averages, and a trend derived from it.
//
// Everything here is fixed-size and allocation free so the same code runs on
// the firmware and on the host.
package rain

import "time"

// DefaultInterval is the minimum time between two emitted readings.
const DefaultInterval = 500 * time.Millisecond

// Pipeline owns the sample window, the history and the persisted trend.
// It is not safe for concurrent use.
type Pipeline struct {
	window   SampleWindow
	history  HistoryTracker
	trend    TrendState
	interval time.Duration

	lastUpdate time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithInterval overrides the emission interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.interval = d
		}
	}
}

// New creates a pipeline with zero-filled buffers and a Stable trend.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnSample pushes raw into the sample window and, if at least the emission
// interval has passed since the last emitted reading, runs the filter and
// trend stages and returns the new reading.
//
// uptime is monotonic time since start; the first reading is emitted once
// uptime reaches the interval. When the gate is closed only the sample
// window changes.
func (p *Pipeline) OnSample(raw int, uptime time.Duration) (Reading, bool) {
	p.window.Push(raw)

	if uptime-p.lastUpdate < p.interval {
		return Reading{}, false
	}

	filter := Compute(&p.window)
	p.history.Push(filter.FilteredAverage)
	baseline := p.history.Baseline()
	p.trend = Classify(filter.FilteredAverage, baseline)
	p.lastUpdate = uptime

	return Reading{
		Category: Categorize(filter.FilteredAverage),
		Percent:  ToPercent(filter.FilteredAverage),
		Trend:    p.trend,
		Filter:   filter,
		Baseline: baseline,
		Uptime:   uptime,
	}, true
}

// Trend returns the trend of the last emitted reading.
func (p *Pipeline) Trend() TrendState {
	return p.trend
}

// Baseline returns the current history baseline.
func (p *Pipeline) Baseline() int {
	return p.history.Baseline()
}

// Interval returns the emission interval.
func (p *Pipeline) Interval() time.Duration {
	return p.interval
}

// Window returns a copy of the raw sample window, most recent first.
func (p *Pipeline) Window() [WindowSize]int {
	return p.window.Values()
}

// History returns a copy of the filtered-average history, most recent first.
func (p *Pipeline) History() [HistorySize]int {
	return p.history.Values()
}
