package analysis

import "math"

// Point is a 2-D pixel position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Sample is one observed position of a tracked entity.
type Sample struct {
	Frame    int
	Position Point
}

// History is a fixed-capacity FIFO of samples with strictly increasing
// frame indices.
type History struct {
	capacity int
	samples  []Sample
}

// NewHistory creates an empty History. Capacities below 1 are raised to 1.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		capacity: capacity,
		samples:  make([]Sample, 0, capacity),
	}
}

// Push appends s, evicting the oldest sample when full. A sample whose frame
// does not come after the newest one is dropped and Push returns false.
func (h *History) Push(s Sample) bool {
	if n := len(h.samples); n > 0 && s.Frame <= h.samples[n-1].Frame {
		return false
	}

	if len(h.samples) >= h.capacity {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:h.capacity-1]
	}
	h.samples = append(h.samples, s)
	return true
}

// Clear removes all samples.
func (h *History) Clear() {
	h.samples = h.samples[:0]
}

// Len returns the number of samples held.
func (h *History) Len() int {
	return len(h.samples)
}

// Cap returns the history capacity.
func (h *History) Cap() int {
	return h.capacity
}

// Samples returns a copy of the samples, oldest first.
func (h *History) Samples() []Sample {
	out := make([]Sample, len(h.samples))
	copy(out, h.samples)
	return out
}

// Last returns the newest sample.
func (h *History) Last() (Sample, bool) {
	if len(h.samples) == 0 {
		return Sample{}, false
	}
	return h.samples[len(h.samples)-1], true
}
