package rain

// HistoryTracker keeps the last HistorySize filtered averages.
// Like SampleWindow it starts zero-filled and is ordered most-recent-first.
type HistoryTracker struct {
	data   [HistorySize]int
	head   int
	sum    int
	pushed int
}

// Push stores avg as the newest entry, evicting the oldest one.
func (h *HistoryTracker) Push(avg int) {
	h.head = (h.head + HistorySize - 1) % HistorySize
	h.sum += avg - h.data[h.head]
	h.data[h.head] = avg
	if h.pushed < HistorySize {
		h.pushed++
	}
}

// At returns the i-th most recent entry (0 is the newest).
// i is taken modulo HistorySize, so -1 is the oldest entry.
func (h *HistoryTracker) At(i int) int {
	return h.data[ringIndex(h.head, i, HistorySize)]
}

// Len always returns HistorySize.
func (h *HistoryTracker) Len() int {
	return HistorySize
}

// Values returns a copy of the history, most recent first.
func (h *HistoryTracker) Values() [HistorySize]int {
	var out [HistorySize]int
	for i := range out {
		out[i] = h.At(i)
	}
	return out
}

// Baseline returns the truncated mean of all HistorySize entries.
// Zero-filled slots count until the buffer has been filled once, so the
// baseline is biased toward zero for the first HistorySize pushes.
func (h *HistoryTracker) Baseline() int {
	return h.sum / HistorySize
}

// Warm reports whether every slot has been written at least once.
func (h *HistoryTracker) Warm() bool {
	return h.pushed >= HistorySize
}
