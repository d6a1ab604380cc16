package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level engine configuration
type Config struct {
	LogLevel string         `json:"log_level"`
	Spectral SpectralConfig `json:"spectral"`
	Listen   ListenConfig   `json:"listen"`
	Bass     BassConfig     `json:"bass"`
	Server   ServerConfig   `json:"server"`
}

// SpectralConfig configures the pitch extractor
type SpectralConfig struct {
	SampleRate int `json:"sample_rate"`
	// FFTSize is the transform length. Zero means infer it from the
	// magnitude frame (two bins per frame element).
	FFTSize   int        `json:"fft_size"`
	PeakCount int        `json:"peak_count"`
	FreqRange [2]float64 `json:"freq_range"` // [min, max] Hz
	// MaxFlatness drops noise-like frames before peak picking; 0 disables
	MaxFlatness float64 `json:"max_flatness"`
}

// ListenConfig configures real-time listening sessions
type ListenConfig struct {
	HistorySize int `json:"history_size"`
	// Durations accept a Go duration string ("16ms") or integer nanoseconds
	FrameInterval  time.Duration `json:"frame_interval"`
	NotifyDebounce time.Duration `json:"notify_debounce"`
	// Source frame length used by file-backed sources
	WindowSize int `json:"window_size"`
	HopSize    int `json:"hop_size"`
	// FFmpegPath decodes non-WAV files
	FFmpegPath string `json:"ffmpeg_path"`
}

// UnmarshalJSON decodes the duration fields from strings or nanoseconds
func (l *ListenConfig) UnmarshalJSON(data []byte) error {
	type plain ListenConfig
	aux := struct {
		*plain
		FrameInterval  json.RawMessage `json:"frame_interval"`
		NotifyDebounce json.RawMessage `json:"notify_debounce"`
	}{plain: (*plain)(l)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if err := decodeDuration(aux.FrameInterval, "frame_interval", &l.FrameInterval); err != nil {
		return err
	}
	return decodeDuration(aux.NotifyDebounce, "notify_debounce", &l.NotifyDebounce)
}

func decodeDuration(raw json.RawMessage, field string, dst *time.Duration) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		d, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		*dst = d
		return nil
	}

	var nanos int64
	if err := json.Unmarshal(raw, &nanos); err != nil {
		return fmt.Errorf("%s must be a duration string or nanoseconds: %w", field, err)
	}
	*dst = time.Duration(nanos)
	return nil
}

// BassConfig configures bass-line generation
type BassConfig struct {
	Style  string `json:"style"` // "root", "alternating", "walking"
	Octave int    `json:"octave"`
	BPM    int    `json:"bpm"` // tempo for MIDI export
}

// ServerConfig configures the HTTP adapter
type ServerConfig struct {
	Addr           string   `json:"addr"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// Default returns the engine defaults
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Spectral: SpectralConfig{
			SampleRate: 44100,
			FFTSize:    0,
			PeakCount:  6,
			FreqRange:  [2]float64{60.0, 2000.0},
		},
		Listen: ListenConfig{
			HistorySize:    10,
			FrameInterval:  16 * time.Millisecond, // one display frame at ~60 fps
			NotifyDebounce: 150 * time.Millisecond,
			WindowSize:     8192,
			HopSize:        2048,
			FFmpegPath:     "ffmpeg",
		},
		Bass: BassConfig{
			Style:  "root",
			Octave: 2,
			BPM:    100,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load reads a JSON config file on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	s := c.Spectral
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive, got %d", ErrInvalidConfig, s.SampleRate)
	}
	if s.FFTSize < 0 || (s.FFTSize > 0 && s.FFTSize&(s.FFTSize-1) != 0) {
		return fmt.Errorf("%w: fft_size must be zero or a power of two, got %d", ErrInvalidConfig, s.FFTSize)
	}
	if s.PeakCount <= 0 {
		return fmt.Errorf("%w: peak_count must be positive, got %d", ErrInvalidConfig, s.PeakCount)
	}
	if s.FreqRange[0] < 0 || s.FreqRange[1] <= s.FreqRange[0] {
		return fmt.Errorf("%w: freq_range %v is empty", ErrInvalidConfig, s.FreqRange)
	}
	if s.MaxFlatness < 0 || s.MaxFlatness > 1 {
		return fmt.Errorf("%w: max_flatness must be within [0, 1], got %g", ErrInvalidConfig, s.MaxFlatness)
	}

	l := c.Listen
	if l.HistorySize <= 0 {
		return fmt.Errorf("%w: history_size must be positive, got %d", ErrInvalidConfig, l.HistorySize)
	}
	if l.FrameInterval <= 0 {
		return fmt.Errorf("%w: frame_interval must be positive", ErrInvalidConfig)
	}
	if l.WindowSize <= 0 || l.WindowSize&(l.WindowSize-1) != 0 {
		return fmt.Errorf("%w: window_size must be a power of two, got %d", ErrInvalidConfig, l.WindowSize)
	}
	if l.HopSize <= 0 {
		return fmt.Errorf("%w: hop_size must be positive", ErrInvalidConfig)
	}

	switch c.Bass.Style {
	case "root", "alternating", "walking":
	default:
		return fmt.Errorf("%w: unknown bass style %q", ErrInvalidConfig, c.Bass.Style)
	}
	if c.Bass.Octave < 0 || c.Bass.Octave > 8 {
		return fmt.Errorf("%w: bass octave %d out of range", ErrInvalidConfig, c.Bass.Octave)
	}
	if c.Bass.BPM <= 0 {
		return fmt.Errorf("%w: bpm must be positive", ErrInvalidConfig)
	}

	return nil
}
