package listen

import (
	"fmt"
	"os"
	"sync"

	"github.com/RyanBlaney/sonido-armonia/algorithms/spectral"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// FrameSource hands out the most recently buffered FFT magnitude frame.
// Latest must not block; it reports false when no frame is available yet.
type FrameSource interface {
	Latest() ([]float64, bool)
}

// FrameBuffer is a FrameSource fed by an audio callback. Publish replaces
// the buffered frame; readers always see the newest one.
type FrameBuffer struct {
	mu    sync.RWMutex
	frame []float64
}

// NewFrameBuffer creates an empty frame buffer
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Publish stores a copy of frame as the latest frame
func (b *FrameBuffer) Publish(frame []float64) {
	cp := append([]float64(nil), frame...)

	b.mu.Lock()
	b.frame = cp
	b.mu.Unlock()
}

// Latest returns the newest frame. The returned slice must not be modified.
func (b *FrameBuffer) Latest() ([]float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.frame == nil {
		return nil, false
	}
	return b.frame, true
}

// PCMSource replays mono PCM as a stream of magnitude frames, advancing one
// hop per read. It stands in for a live analyser when listening to files.
type PCMSource struct {
	mu         sync.Mutex
	samples    []float64
	sampleRate int
	windowSize int
	hopSize    int
	pos        int
	done       chan struct{}
	closed     bool
}

// NewPCMSource creates a source over mono samples in [-1, 1]
func NewPCMSource(samples []float64, sampleRate, windowSize, hopSize int) *PCMSource {
	if hopSize <= 0 {
		hopSize = max(windowSize/4, 1)
	}
	return &PCMSource{
		samples:    samples,
		sampleRate: sampleRate,
		windowSize: windowSize,
		hopSize:    hopSize,
		done:       make(chan struct{}),
	}
}

// Latest returns the frame at the read position and advances by one hop
func (s *PCMSource) Latest() ([]float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.samples) {
		s.finish()
		return nil, false
	}

	end := min(s.pos+s.windowSize, len(s.samples))
	frame := spectral.MagnitudeFrame(s.samples[s.pos:end], s.windowSize)
	s.pos += s.hopSize

	return frame, true
}

// SampleRate returns the sample rate of the underlying PCM
func (s *PCMSource) SampleRate() int {
	return s.sampleRate
}

// Done is closed once every frame has been read
func (s *PCMSource) Done() <-chan struct{} {
	return s.done
}

func (s *PCMSource) finish() {
	if !s.closed {
		s.closed = true
		close(s.done)
	}
}

// OpenWAV decodes a WAV file into a PCMSource, mixing channels to mono
func OpenWAV(path string, windowSize, hopSize int) (*PCMSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	samples := monoFromPCM(buf)
	if len(samples) == 0 {
		return nil, fmt.Errorf("%s contains no samples", path)
	}

	return NewPCMSource(samples, int(decoder.SampleRate), windowSize, hopSize), nil
}

// monoFromPCM averages interleaved channels and scales to [-1, 1]
func monoFromPCM(buf *audio.IntBuffer) []float64 {
	channels := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	mono := make([]float64, frames)
	for i := range frames {
		sum := 0
		for c := range channels {
			sum += buf.Data[i*channels+c]
		}
		mono[i] = float64(sum) / float64(channels) / scale
	}
	return mono
}
