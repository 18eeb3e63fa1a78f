package model

import "time"

const defaultHistoryCap = 60

// Point is a single timestamped sample stored in the ring buffer, holding the
// projected node metrics one poll cycle produced.
type Point struct {
	Timestamp     time.Time
	CPUPercent    float64
	MemoryPercent float64
	Load1m        float64
	RunningTasks  float64
}

// History is a fixed-size ring buffer of Points. When the buffer is full,
// new pushes overwrite the oldest entry.
type History struct {
	buf  []Point
	head int // index of the next write position
	size int // number of valid entries
}

// NewHistory creates a History with the given capacity.
// If capacity <= 0, the defaultHistoryCap (60) is used.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = defaultHistoryCap
	}
	return &History{
		buf: make([]Point, capacity),
	}
}

// Push appends a new point to the history, overwriting the oldest if full.
func (h *History) Push(p Point) {
	h.buf[h.head] = p
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Len returns the number of valid entries in the history.
func (h *History) Len() int {
	return h.size
}

// Clear resets the history to empty.
func (h *History) Clear() {
	h.head = 0
	h.size = 0
}

// Values returns a slice of float64 for the named field in chronological
// order (oldest first). Valid field names: "cpuPercent", "memoryPercent",
// "load1m", "runningTasks".
func (h *History) Values(field string) []float64 {
	out := make([]float64, h.size)
	// oldest entry sits at (head - size + cap) % cap
	start := (h.head - h.size + len(h.buf)) % len(h.buf)
	for i := 0; i < h.size; i++ {
		p := h.buf[(start+i)%len(h.buf)]
		switch field {
		case "cpuPercent":
			out[i] = p.CPUPercent
		case "memoryPercent":
			out[i] = p.MemoryPercent
		case "load1m":
			out[i] = p.Load1m
		case "runningTasks":
			out[i] = p.RunningTasks
		}
	}
	return out
}
