package rain

import (
	"strconv"
	"time"
)

// Reading is one emitted pipeline result.
type Reading struct {
	Category RainCategory
	Percent  int
	Trend    TrendState
	Filter   FilteredResult
	Baseline int
	Uptime   time.Duration
}

// StatusLine formats the reading for a text transport:
// "{category}: {percent}%\nTrend: {trend}\n".
func (r Reading) StatusLine() string {
	return r.Category.String() + ": " + strconv.Itoa(r.Percent) + "%\nTrend: " + r.Trend.String() + "\n"
}

// DisplayLines returns the two lines shown on a 16x2 character display.
func (r Reading) DisplayLines() [2]string {
	return [2]string{
		r.Category.String() + ": " + strconv.Itoa(r.Percent) + " %",
		"Trend: " + r.Trend.String(),
	}
}
