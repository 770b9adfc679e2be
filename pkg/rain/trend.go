package rain

// TrendState is the direction rain intensity is moving in.
type TrendState int

const (
	Stable TrendState = iota
	Rising
	Falling
)

// Band around the baseline inside which the trend is considered stable.
const (
	fallingRatio = 1.05
	risingRatio  = 0.95
)

// String returns the display word for the trend.
func (t TrendState) String() string {
	switch t {
	case Rising:
		return "Rising"
	case Falling:
		return "Falling"
	default:
		return "Stable"
	}
}

// Classify compares the current filtered average with the history baseline.
// A higher reading means a drier sensor, so a reading above the band is
// Falling rain and one below it is Rising rain. Ties resolve to Stable.
func Classify(current, baseline int) TrendState {
	switch {
	case float64(current) > fallingRatio*float64(baseline):
		return Falling
	case float64(current) < risingRatio*float64(baseline):
		return Rising
	default:
		return Stable
	}
}
