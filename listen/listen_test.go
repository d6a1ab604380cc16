package listen

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-armonia/algorithms/spectral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFFTSize = 8192

// chordFrame builds a magnitude frame with one peak per frequency
func chordFrame(freqs ...float64) []float64 {
	frame := make([]float64, testFFTSize/2)
	for i, f := range freqs {
		frame[spectral.BinForFrequency(f, spectral.DefaultSampleRate, testFFTSize)] = float64(len(freqs) - i)
	}
	return frame
}

var (
	cMajorFrame = chordFrame(261.63, 329.63, 392.0)
	aMinorFrame = chordFrame(220.0, 261.63, 329.63)
	singleFrame = chordFrame(440.0)
)

func fixedClock() func() time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var n int64
	return func() time.Time {
		return base.Add(time.Duration(atomic.AddInt64(&n, 1)) * time.Millisecond)
	}
}

func TestHistoryNeverExceedsCapacity(t *testing.T) {
	h := NewHistory(10)
	for i := range 25 {
		h.Push(Sample{ChordName: fmt.Sprintf("c%d", i)})
		assert.LessOrEqual(t, h.Len(), 10)
	}

	snapshot := h.Snapshot()
	require.Len(t, snapshot, 10)
	for i, s := range snapshot {
		assert.Equal(t, fmt.Sprintf("c%d", i+15), s.ChordName)
	}

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, "c24", latest.ChordName)
}

func TestHistoryPartialAndReset(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, DefaultHistorySize, h.Cap())

	_, ok := h.Latest()
	assert.False(t, ok)

	h.Push(Sample{ChordName: "C"})
	h.Push(Sample{ChordName: "G"})
	assert.Equal(t, []string{"C", "G"}, names(h.Snapshot()))

	h.Reset()
	assert.Zero(t, h.Len())
	assert.Empty(t, h.Snapshot())
}

func TestNewSampleConfidence(t *testing.T) {
	s := NewSample("C", []string{"C4", "E4", "G4"}, time.Time{})
	assert.InDelta(t, 0.5, s.Confidence, 1e-9)

	s = NewSample("C", []string{"C4", "E4", "G4", "C5", "E5", "G5", "C6"}, time.Time{})
	assert.Equal(t, 1.0, s.Confidence)
}

func TestTickPushesOnlyDetections(t *testing.T) {
	buf := NewFrameBuffer()
	session := NewSession(buf, nil, SessionParams{Clock: fixedClock()})

	_, ok := session.Tick()
	assert.False(t, ok, "no frame buffered yet")

	buf.Publish(cMajorFrame)
	sample, ok := session.Tick()
	require.True(t, ok)
	assert.Equal(t, "C", sample.ChordName)
	assert.Equal(t, []string{"C4", "E4", "G4"}, sample.Notes)
	assert.InDelta(t, 0.5, sample.Confidence, 1e-9)

	// A frame without a chord keeps the previous state on display
	buf.Publish(singleFrame)
	_, ok = session.Tick()
	assert.False(t, ok)

	buf.Publish(aMinorFrame)
	_, ok = session.Tick()
	require.True(t, ok)

	assert.Equal(t, []string{"C", "Am"}, names(session.History().Snapshot()))
}

func TestStartStopNoTickAfterStop(t *testing.T) {
	buf := NewFrameBuffer()
	buf.Publish(cMajorFrame)
	source := &countingSource{inner: buf}

	session := NewSession(source, nil, SessionParams{FrameInterval: time.Millisecond})
	require.NoError(t, session.Start(context.Background()))
	assert.ErrorIs(t, session.Start(context.Background()), ErrAlreadyRunning)

	require.Eventually(t, func() bool {
		return session.History().Len() >= 3
	}, time.Second, time.Millisecond)

	session.Stop()
	assert.False(t, session.Running())
	assert.Zero(t, session.History().Len(), "history is discarded on stop")

	reads := source.reads.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, reads, source.reads.Load())

	// Stop is idempotent
	session.Stop()
}

func TestContextCancelEndsLoop(t *testing.T) {
	buf := NewFrameBuffer()
	buf.Publish(cMajorFrame)
	source := &countingSource{inner: buf}

	ctx, cancel := context.WithCancel(context.Background())
	session := NewSession(source, nil, SessionParams{FrameInterval: time.Millisecond})
	require.NoError(t, session.Start(ctx))

	require.Eventually(t, func() bool { return source.reads.Load() > 0 }, time.Second, time.Millisecond)
	cancel()
	session.Stop()

	reads := source.reads.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, reads, source.reads.Load())
}

func TestSessionsOwnTheirHistory(t *testing.T) {
	bufA, bufB := NewFrameBuffer(), NewFrameBuffer()
	bufA.Publish(cMajorFrame)
	bufB.Publish(aMinorFrame)

	a := NewSession(bufA, nil, SessionParams{})
	b := NewSession(bufB, nil, SessionParams{})
	a.Tick()
	b.Tick()
	b.Tick()

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, []string{"C"}, names(a.History().Snapshot()))
	assert.Equal(t, []string{"Am", "Am"}, names(b.History().Snapshot()))
}

func TestChordChangeNotification(t *testing.T) {
	buf := NewFrameBuffer()
	var got []string
	session := NewSession(buf, nil, SessionParams{
		OnChordChange: func(s Sample) { got = append(got, s.ChordName) },
	})

	for _, frame := range [][]float64{cMajorFrame, cMajorFrame, aMinorFrame, aMinorFrame, cMajorFrame} {
		buf.Publish(frame)
		session.Tick()
	}

	assert.Equal(t, []string{"C", "Am", "C"}, got)
}

func TestDebouncedNotificationOnlyWhileRunning(t *testing.T) {
	buf := NewFrameBuffer()
	var mu sync.Mutex
	var got []string

	session := NewSession(buf, nil, SessionParams{
		FrameInterval:  time.Hour, // ticks are driven by hand
		NotifyDebounce: 5 * time.Millisecond,
		OnChordChange: func(s Sample) {
			mu.Lock()
			got = append(got, s.ChordName)
			mu.Unlock()
		},
	})
	require.NoError(t, session.Start(context.Background()))

	buf.Publish(cMajorFrame)
	session.Tick()
	buf.Publish(aMinorFrame)
	session.Tick()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"Am"}, got)
	mu.Unlock()

	session.Stop()
}

func TestDebouncedNotificationDroppedAfterRestart(t *testing.T) {
	buf := NewFrameBuffer()
	var calls atomic.Int64

	session := NewSession(buf, nil, SessionParams{
		FrameInterval:  time.Hour,
		NotifyDebounce: 20 * time.Millisecond,
		OnChordChange:  func(Sample) { calls.Add(1) },
	})
	require.NoError(t, session.Start(context.Background()))

	buf.Publish(cMajorFrame)
	session.Tick()

	// Restart inside the debounce window
	session.Stop()
	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	assert.Never(t, func() bool { return calls.Load() > 0 }, 100*time.Millisecond, 5*time.Millisecond)
}

func TestPCMSourceClampsHop(t *testing.T) {
	src := NewPCMSource(make([]float64, 8), spectral.DefaultSampleRate, 2, 0)
	frames := 0
	for frames < 100 {
		if _, ok := src.Latest(); !ok {
			break
		}
		frames++
	}

	assert.Less(t, frames, 100)
	select {
	case <-src.Done():
	default:
		t.Fatal("source should be done")
	}
}

func TestPCMSourceAdvancesByHop(t *testing.T) {
	samples := make([]float64, 4*1024)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 440 * float64(i) / spectral.DefaultSampleRate)
	}

	src := NewPCMSource(samples, spectral.DefaultSampleRate, 2048, 1024)
	frames := 0
	for {
		frame, ok := src.Latest()
		if !ok {
			break
		}
		assert.Len(t, frame, 1024)
		frames++
	}

	assert.Equal(t, 4, frames)
	select {
	case <-src.Done():
	default:
		t.Fatal("source should be done")
	}

	// Reading past the end stays exhausted
	_, ok := src.Latest()
	assert.False(t, ok)
}

func TestOpenWAVMissingFile(t *testing.T) {
	_, err := OpenWAV("does-not-exist.wav", 2048, 512)
	assert.Error(t, err)
}

type countingSource struct {
	inner FrameSource
	reads atomic.Int64
}

func (c *countingSource) Latest() ([]float64, bool) {
	c.reads.Add(1)
	return c.inner.Latest()
}

func names(samples []Sample) []string {
	out := make([]string, len(samples))
	for i, s := range samples {
		out[i] = s.ChordName
	}
	return out
}
