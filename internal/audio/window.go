package audio

import "sync"

// SampleWindow keeps the most recent samples of a capture stream for level
// metering. One goroutine writes while others read.
type SampleWindow struct {
	mu      sync.RWMutex
	samples []int16
	head    int // next write position
	count   int // valid samples, up to capacity
}

// NewSampleWindow creates a window holding up to capacity samples.
func NewSampleWindow(capacity int) *SampleWindow {
	return &SampleWindow{samples: make([]int16, max(1, capacity))}
}

// Write appends samples, overwriting the oldest when full.
func (w *SampleWindow) Write(samples []int16) {
	if len(samples) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	capacity := len(w.samples)
	for _, s := range samples {
		w.samples[w.head] = s
		w.head = (w.head + 1) % capacity
		w.count = min(w.count+1, capacity)
	}
}

// Recent returns up to n of the newest samples, oldest first, or nil when
// the window is empty.
func (w *SampleWindow) Recent(n int) []int16 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.count == 0 || n <= 0 {
		return nil
	}

	n = min(n, w.count)
	capacity := len(w.samples)
	start := (w.head - n + capacity) % capacity

	out := make([]int16, n)
	for i := range out {
		out[i] = w.samples[(start+i)%capacity]
	}

	return out
}

// Reset empties the window.
func (w *SampleWindow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.head = 0
	w.count = 0
}
