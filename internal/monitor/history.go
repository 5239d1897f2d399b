package monitor

import "sync"

// DefaultHistorySize is the number of samples kept per metric.
const DefaultHistorySize = 60

// History stores recent values per metric in ring buffers for sparklines.
type History struct {
	mu      sync.RWMutex
	size    int
	metrics map[string]*ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a History keeping size samples per metric. A
// non-positive size uses DefaultHistorySize.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:    size,
		metrics: make(map[string]*ringBuffer),
	}
}

// Push appends a value to the metric's history.
func (h *History) Push(metric string, value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf, ok := h.metrics[metric]
	if !ok {
		buf = newRingBuffer(h.size)
		h.metrics[metric] = buf
	}
	buf.push(value)
}

// Get returns up to count of the metric's most recent values, oldest first.
func (h *History) Get(metric string, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.metrics[metric]
	if !ok {
		return nil
	}
	return buf.getLast(count)
}

// Count returns the number of samples stored for a metric.
func (h *History) Count(metric string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.metrics[metric]
	if !ok {
		return 0
	}
	return buf.count
}

// Clear removes all history for a metric.
func (h *History) Clear(metric string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.metrics, metric)
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order.
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head is the next write position, so the newest value sits at head-1.
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
