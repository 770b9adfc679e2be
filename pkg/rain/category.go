package rain

// RainCategory is the rain intensity bucket of a filtered reading.
type RainCategory int

const (
	NoRain RainCategory = iota
	SmallRain
	MedRain
	BigRain
)

// Category upper bounds (exclusive) in raw ADC units.
const (
	bigRainBelow   = 1000
	medRainBelow   = 2000
	smallRainBelow = 3000
)

// String returns the display text for the category.
func (c RainCategory) String() string {
	switch c {
	case BigRain:
		return "Big rain"
	case MedRain:
		return "Med. rain"
	case SmallRain:
		return "Small rain"
	default:
		return "No rain"
	}
}

// Categorize maps a filtered average onto a rain category.
func Categorize(avg int) RainCategory {
	switch {
	case avg < bigRainBelow:
		return BigRain
	case avg < medRainBelow:
		return MedRain
	case avg < smallRainBelow:
		return SmallRain
	default:
		return NoRain
	}
}

// ToPercent remaps avg from [0, MaxRaw] onto [100, 0] with truncating
// integer arithmetic: lower readings are wetter and give higher percentages.
// Inputs outside [0, MaxRaw] are not clamped.
func ToPercent(avg int) int {
	return 100 + avg*(0-100)/MaxRaw
}
