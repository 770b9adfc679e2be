package rain

import (
	"slices"

	"github.com/chewxy/math32"
)

// outlierSigmas is how many standard deviations a sample may sit from the
// window mean and still count toward the filtered average.
const outlierSigmas = 2

// FilteredResult holds the statistics computed over one SampleWindow snapshot.
type FilteredResult struct {
	Median          int     // sorted[WindowSize/2], the upper-middle element
	Mean            float32 // mean of all samples
	StdDev          float32 // population standard deviation
	FilteredAverage int     // truncated mean of the samples within 2σ of Mean
	ValidCount      int     // number of samples that passed the 2σ test
}

// Compute derives median, mean, standard deviation and the outlier-filtered
// average of the window. It never fails: if no sample survives the 2σ test
// the truncated unfiltered mean is used instead.
// Statistics are single precision, matching what the firmware computes.
func Compute(w *SampleWindow) FilteredResult {
	values := w.Values()

	sorted := values
	slices.Sort(sorted[:])

	sum := 0
	for _, v := range values {
		sum += v
	}
	mean := float32(sum) / WindowSize

	var variance float32
	for _, v := range values {
		d := float32(v) - mean
		variance += d * d
	}
	stddev := math32.Sqrt(variance / WindowSize)

	limit := outlierSigmas * stddev
	validCount, validSum := 0, 0
	for _, v := range values {
		if math32.Abs(float32(v)-mean) <= limit {
			validCount++
			validSum += v
		}
	}

	return FilteredResult{
		Median:          sorted[WindowSize/2],
		Mean:            mean,
		StdDev:          stddev,
		FilteredAverage: filteredAverage(validSum, validCount, mean),
		ValidCount:      validCount,
	}
}

// filteredAverage is the truncated mean of the surviving samples, or the
// truncated unfiltered mean when none survived.
func filteredAverage(validSum, validCount int, mean float32) int {
	if validCount <= 0 {
		return int(mean)
	}
	return validSum / validCount
}
