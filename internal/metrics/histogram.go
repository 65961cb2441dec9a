// Package metrics collects in-process relay and match counters.
package metrics

import (
	"math"
	"slices"
	"sync"
	"time"
)

// Histogram is a sliding window over the most recent duration samples,
// stored in milliseconds in a fixed ring.
type Histogram struct {
	mu   sync.Mutex
	ring []float64
	next int
	full bool
}

// NewHistogram creates a histogram over the last size samples.
func NewHistogram(size int) *Histogram {
	if size <= 0 {
		size = 10000
	}
	return &Histogram{ring: make([]float64, size)}
}

// Record adds a sample, overwriting the oldest once the window is full.
func (h *Histogram) Record(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ring[h.next] = float64(d.Microseconds()) / 1000.0
	h.next++
	if h.next == len(h.ring) {
		h.next = 0
		h.full = true
	}
}

// window returns the live samples. Callers hold mu.
func (h *Histogram) window() []float64 {
	if h.full {
		return h.ring
	}
	return h.ring[:h.next]
}

// Count returns the number of samples in the window.
func (h *Histogram) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.window())
}

// Mean returns the average sample, 0 when empty.
func (h *Histogram) Mean() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	w := h.window()
	if len(w) == 0 {
		return 0
	}
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum / float64(len(w))
}

// Max returns the largest sample, 0 when empty.
func (h *Histogram) Max() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	w := h.window()
	if len(w) == 0 {
		return 0
	}
	return slices.Max(w)
}

// Percentile returns the linearly interpolated value at p, in 0..100.
func (h *Histogram) Percentile(p float64) float64 {
	h.mu.Lock()
	sorted := slices.Clone(h.window())
	h.mu.Unlock()

	if len(sorted) == 0 {
		return 0
	}
	slices.Sort(sorted)

	rank := min(max(p, 0), 100) / 100 * float64(len(sorted)-1)
	lo, hi := int(math.Floor(rank)), int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Reset empties the window.
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next = 0
	h.full = false
}
