package listen

import (
	"sync"
	"time"
)

// DefaultHistorySize is the number of detections kept for display
const DefaultHistorySize = 10

// maxNotesPerFrame is the note count that maps to full confidence
const maxNotesPerFrame = 6

// Sample is one successful real-time chord detection
type Sample struct {
	ChordName  string    `json:"chord_name"`
	Notes      []string  `json:"notes"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence float64   `json:"confidence"` // extracted notes / 6, capped at 1
}

// NewSample builds a sample with confidence derived from the note count
func NewSample(chordName string, notes []string, ts time.Time) Sample {
	confidence := float64(len(notes)) / maxNotesPerFrame
	if confidence > 1 {
		confidence = 1
	}
	return Sample{
		ChordName:  chordName,
		Notes:      append([]string(nil), notes...),
		Timestamp:  ts,
		Confidence: confidence,
	}
}

// History is a fixed-capacity circular buffer of detections. Pushing onto
// a full history evicts the oldest sample. One session writes; any number
// of readers may take snapshots.
type History struct {
	mu       sync.RWMutex
	buffer   []Sample
	size     int
	writePos int
	count    int
}

// NewHistory creates a history holding at most size samples
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		buffer: make([]Sample, size),
		size:   size,
	}
}

// Push appends a sample, overwriting the oldest when full
func (h *History) Push(s Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buffer[h.writePos] = s
	h.writePos = (h.writePos + 1) % h.size
	if h.count < h.size {
		h.count++
	}
}

// Snapshot returns the samples oldest first
func (h *History) Snapshot() []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Sample, h.count)
	start := (h.writePos - h.count + h.size) % h.size
	for i := 0; i < h.count; i++ {
		out[i] = h.buffer[(start+i)%h.size]
	}
	return out
}

// Latest returns the most recent sample
func (h *History) Latest() (Sample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 {
		return Sample{}, false
	}
	return h.buffer[(h.writePos-1+h.size)%h.size], true
}

// Len returns the number of stored samples
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Cap returns the capacity
func (h *History) Cap() int {
	return h.size
}

// Reset clears the history
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clear(h.buffer)
	h.writePos = 0
	h.count = 0
}
