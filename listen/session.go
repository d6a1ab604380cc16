package listen

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chords"
	"github.com/RyanBlaney/sonido-armonia/algorithms/spectral"
	"github.com/RyanBlaney/sonido-armonia/logging"
	"github.com/bep/debounce"
	"github.com/google/uuid"
)

// ErrAlreadyRunning is returned by Start on a running session
var ErrAlreadyRunning = errors.New("listening session already running")

// DefaultFrameInterval is one display frame at roughly 60 fps
const DefaultFrameInterval = 16 * time.Millisecond

// SessionParams configures a listening session
type SessionParams struct {
	FrameInterval time.Duration
	HistorySize   int
	// OnChordChange, when set, is called after the detected chord changes
	// and stays stable for NotifyDebounce. It runs on a timer goroutine.
	OnChordChange  func(Sample)
	NotifyDebounce time.Duration
	// Clock stamps samples; defaults to time.Now
	Clock func() time.Time
}

// Session polls a frame source once per frame interval, names the chord in
// each frame and records successful detections in its own History.
type Session struct {
	id        string
	source    FrameSource
	extractor *spectral.Extractor
	params    SessionParams
	logger    logging.Logger
	notify    func(f func())

	mu        sync.Mutex
	history   *History
	lastChord string
	cancel    context.CancelFunc
	done      chan struct{}
	running   bool

	// generation counts runs; late notifications from an older run are dropped
	generation uint64
}

// NewSession creates a stopped session
func NewSession(source FrameSource, extractor *spectral.Extractor, params SessionParams) *Session {
	if params.FrameInterval <= 0 {
		params.FrameInterval = DefaultFrameInterval
	}
	if params.HistorySize <= 0 {
		params.HistorySize = DefaultHistorySize
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	if extractor == nil {
		extractor = spectral.NewExtractor(spectral.DefaultSampleRate)
	}

	id := uuid.New().String()
	s := &Session{
		id:        id,
		source:    source,
		extractor: extractor,
		params:    params,
		history:   NewHistory(params.HistorySize),
		logger: logging.WithFields(logging.Fields{
			"component": "listen_session",
			"session":   id,
		}),
	}

	if params.OnChordChange != nil && params.NotifyDebounce > 0 {
		s.notify = debounce.New(params.NotifyDebounce)
	}

	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// History returns the history of the current (or last) run
func (s *Session) History() *History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history
}

// Running reports whether the polling loop is active
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start begins polling with a fresh history. The loop stops when ctx is
// cancelled or Stop is called.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.history = NewHistory(s.params.HistorySize)
	s.lastChord = ""
	s.running = true
	s.generation++

	go s.run(loopCtx, s.done)

	s.logger.Debug("Listening session started", logging.Fields{
		"frame_interval": s.params.FrameInterval.String(),
		"history_size":   s.params.HistorySize,
	})
	return nil
}

// Stop cancels the loop and waits for it to exit. No tick runs after Stop
// returns. The history of the run is discarded.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	s.running = false
	detections := s.history.Len()
	s.history = NewHistory(s.params.HistorySize)
	s.lastChord = ""
	s.mu.Unlock()

	s.logger.Debug("Listening session stopped", logging.Fields{"detections": detections})
}

func (s *Session) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.params.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Both cases may be ready at once; cancellation wins
			if ctx.Err() != nil {
				return
			}
			s.Tick()
		}
	}
}

// Tick runs one detection step: read the newest frame without waiting,
// extract notes, name the chord and push it on success. A frame with no
// chord leaves the history untouched.
func (s *Session) Tick() (Sample, bool) {
	frame, ok := s.source.Latest()
	if !ok {
		return Sample{}, false
	}

	notes := s.extractor.Extract(frame)
	name, ok := chords.DetectFromNotes(notes)
	if !ok {
		return Sample{}, false
	}

	sample := NewSample(name, notes, s.params.Clock())

	s.mu.Lock()
	history := s.history
	changed := name != s.lastChord
	s.lastChord = name
	generation := s.generation
	s.mu.Unlock()

	history.Push(sample)

	if changed {
		s.logger.Debug("Chord changed", logging.Fields{
			"chord":      name,
			"confidence": sample.Confidence,
		})
		s.notifyChange(sample, generation)
	}

	return sample, true
}

func (s *Session) notifyChange(sample Sample, generation uint64) {
	if s.params.OnChordChange == nil {
		return
	}
	if s.notify == nil {
		s.params.OnChordChange(sample)
		return
	}
	s.notify(func() {
		// The debounce timer can outlive the run
		if s.currentRun(generation) {
			s.params.OnChordChange(sample)
		}
	})
}

func (s *Session) currentRun(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && s.generation == generation
}
