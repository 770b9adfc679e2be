package rain

const (
	// WindowSize is the number of raw samples kept for short-horizon filtering.
	WindowSize = 10
	// HistorySize is the number of filtered averages kept for the trend baseline.
	HistorySize = 20
	// MaxRaw is the largest value a 12-bit ADC reading can take.
	MaxRaw = 4095
)

// SampleWindow is a fixed-capacity rolling buffer of the most recent raw readings.
// It starts zero-filled and always holds exactly WindowSize values.
// Internally it is a ring buffer; externally it is ordered most-recent-first.
type SampleWindow struct {
	data [WindowSize]int
	head int // index of the newest value
}

// Push stores v as the newest reading, evicting the oldest one.
func (w *SampleWindow) Push(v int) {
	w.head = (w.head + WindowSize - 1) % WindowSize
	w.data[w.head] = v
}

// At returns the i-th most recent reading (0 is the newest).
// i is taken modulo WindowSize, so -1 is the oldest reading.
func (w *SampleWindow) At(i int) int {
	return w.data[ringIndex(w.head, i, WindowSize)]
}

// Len always returns WindowSize.
func (w *SampleWindow) Len() int {
	return WindowSize
}

// Values returns a copy of the window, most recent first.
func (w *SampleWindow) Values() [WindowSize]int {
	var out [WindowSize]int
	for i := range out {
		out[i] = w.At(i)
	}
	return out
}

// ringIndex maps the i-th most recent position onto the backing array.
func ringIndex(head, i, size int) int {
	return ((head+i)%size + size) % size
}
