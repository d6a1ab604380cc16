package harmony

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/RyanBlaney/sonido-armonia/algorithms/bass"
	"github.com/RyanBlaney/sonido-armonia/algorithms/chords"
	"github.com/RyanBlaney/sonido-armonia/algorithms/keys"
	"github.com/RyanBlaney/sonido-armonia/algorithms/progression"
	"github.com/RyanBlaney/sonido-armonia/algorithms/spectral"
	"github.com/RyanBlaney/sonido-armonia/config"
	"github.com/RyanBlaney/sonido-armonia/listen"
	"github.com/RyanBlaney/sonido-armonia/logging"
	"github.com/RyanBlaney/sonido-armonia/transcode"
)

// Analysis is the symbolic-path result for a chord progression
type Analysis struct {
	Progression []string                 `json:"progression"`
	Chords      []chords.Chord           `json:"chords"`
	Key         keys.Key                 `json:"key"`
	Suggestions []progression.Suggestion `json:"suggestions"` // after the last parsable chord
	Bass        bass.Line                `json:"bass"`
}

// Engine binds the theory algorithms to a configuration
type Engine struct {
	config    *config.Config
	extractor *spectral.Extractor
	bassStyle bass.Style
	logger    logging.Logger
}

// NewEngine creates an engine. A nil config uses config.Default().
func NewEngine(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	style, err := bass.ParseStyle(cfg.Bass.Style)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	return &Engine{
		config:    cfg,
		extractor: newExtractor(cfg.Spectral, cfg.Spectral.SampleRate),
		bassStyle: style,
		logger: logging.WithFields(logging.Fields{
			"component": "harmony_engine",
		}),
	}, nil
}

func newExtractor(s config.SpectralConfig, sampleRate int) *spectral.Extractor {
	return spectral.NewExtractorWithParams(spectral.ExtractorParams{
		SampleRate:   sampleRate,
		FFTSize:      s.FFTSize,
		PeakCount:    s.PeakCount,
		MinFrequency: s.FreqRange[0],
		MaxFrequency: s.FreqRange[1],
		MaxFlatness:  s.MaxFlatness,
	})
}

// Config returns the engine configuration
func (e *Engine) Config() *config.Config {
	return e.config
}

// ParseChord parses one chord symbol
func (e *Engine) ParseChord(symbol string) (chords.Chord, bool) {
	return chords.Parse(symbol)
}

// DetectChord names the chord formed by note names
func (e *Engine) DetectChord(notes []string) (chords.Match, bool) {
	return chords.MatchNotes(notes)
}

// DetectChordFromFrame extracts notes from one magnitude frame and names
// the chord. The extracted notes are returned even when no chord fits.
func (e *Engine) DetectChordFromFrame(magnitudes []float64) (string, []string, bool) {
	notes := e.extractor.Extract(magnitudes)
	name, ok := chords.DetectFromNotes(notes)
	return name, notes, ok
}

// DetectKey infers the key of a progression
func (e *Engine) DetectKey(prog []string) (keys.Key, bool) {
	return keys.Detect(prog)
}

// RankKeys scores all 24 keys, best first
func (e *Engine) RankKeys(prog []string) []keys.Key {
	return keys.Rank(prog)
}

// Suggest ranks next chords after current. An empty keyName derives the
// key from current.
func (e *Engine) Suggest(current, keyName string) (keys.Key, []progression.Suggestion, bool) {
	return progression.SuggestInKey(current, keyName)
}

// Bass generates a bass line. An empty style uses the configured one.
func (e *Engine) Bass(prog []string, style string) (bass.Line, error) {
	s := e.bassStyle
	if style != "" {
		var err error
		if s, err = bass.ParseStyle(style); err != nil {
			return bass.Line{}, err
		}
	}

	line := bass.GenerateAt(prog, s, e.config.Bass.Octave)
	if len(line.Skipped) > 0 {
		e.logger.Debug("Skipped unparsable chords", logging.Fields{
			"skipped": line.Skipped,
			"style":   s.String(),
		})
	}
	return line, nil
}

// WriteBassMIDI writes line as a MIDI file at the configured tempo
func (e *Engine) WriteBassMIDI(w io.Writer, line bass.Line) error {
	return line.WriteMIDI(w, float64(e.config.Bass.BPM))
}

// Analyze runs the whole symbolic path: parse, key, suggestions after the
// last parsable chord and a bass line
func (e *Engine) Analyze(prog []string, style string) (*Analysis, error) {
	logger := e.logger.WithFields(logging.Fields{
		"function": "Analyze",
		"chords":   len(prog),
	})

	analysis := &Analysis{Progression: prog}

	last := ""
	for _, symbol := range prog {
		if c, ok := chords.Parse(symbol); ok {
			analysis.Chords = append(analysis.Chords, c)
			last = symbol
		}
	}
	if last == "" {
		return nil, fmt.Errorf("progression has no parsable chords")
	}

	key, _ := keys.Detect(prog)
	analysis.Key = key
	analysis.Suggestions = progression.Suggest(last, key)

	line, err := e.Bass(prog, style)
	if err != nil {
		return nil, err
	}
	analysis.Bass = line

	logger.Debug("Progression analysed", logging.Fields{
		"key":         key.Name,
		"suggestions": len(analysis.Suggestions),
		"bass_notes":  len(line.Notes),
	})

	return analysis, nil
}

// NewSession creates a listening session over source using the configured
// extractor, history size, frame interval and notify debounce
func (e *Engine) NewSession(source listen.FrameSource, onChange func(listen.Sample)) *listen.Session {
	return listen.NewSession(source, e.extractor, listen.SessionParams{
		FrameInterval:  e.config.Listen.FrameInterval,
		HistorySize:    e.config.Listen.HistorySize,
		OnChordChange:  onChange,
		NotifyDebounce: e.config.Listen.NotifyDebounce,
	})
}

// OpenFile opens an audio file as a frame source. WAV files are decoded
// natively; anything else goes through ffmpeg.
func (e *Engine) OpenFile(ctx context.Context, path string) (*listen.PCMSource, error) {
	l := e.config.Listen
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return listen.OpenWAV(path, l.WindowSize, l.HopSize)
	}

	decoder := transcode.NewDecoder(&transcode.DecoderConfig{
		TargetSampleRate: e.config.Spectral.SampleRate,
		FFmpegPath:       l.FFmpegPath,
	})
	samples, err := decoder.DecodeFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return listen.NewPCMSource(samples, decoder.SampleRate(), l.WindowSize, l.HopSize), nil
}

// ListenFile replays an audio file through a listening session and
// returns every chord change in order. It returns when the file is
// exhausted or ctx is cancelled.
func (e *Engine) ListenFile(ctx context.Context, path string, onChange func(listen.Sample)) ([]listen.Sample, error) {
	src, err := e.OpenFile(ctx, path)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var changes []listen.Sample

	session := listen.NewSession(src, newExtractor(e.config.Spectral, src.SampleRate()), listen.SessionParams{
		FrameInterval: e.config.Listen.FrameInterval,
		HistorySize:   e.config.Listen.HistorySize,
		OnChordChange: func(s listen.Sample) {
			mu.Lock()
			changes = append(changes, s)
			mu.Unlock()
			if onChange != nil {
				onChange(s)
			}
		},
	})

	logger := e.logger.WithFields(logging.Fields{
		"function":    "ListenFile",
		"path":        path,
		"session":     session.ID(),
		"sample_rate": src.SampleRate(),
	})
	logger.Info("Listening to file")

	if err := session.Start(ctx); err != nil {
		return nil, err
	}

	select {
	case <-src.Done():
	case <-ctx.Done():
	}
	session.Stop()

	mu.Lock()
	defer mu.Unlock()

	logger.Info("Finished listening", logging.Fields{"chord_changes": len(changes)})
	return changes, ctx.Err()
}
