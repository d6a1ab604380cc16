package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 44100, cfg.Spectral.SampleRate)
	assert.Equal(t, 6, cfg.Spectral.PeakCount)
	assert.Equal(t, 10, cfg.Listen.HistorySize)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "armonia.json")
	body := `{"spectral": {"peak_count": 4}, "listen": {"frame_interval": 33000000}, "bass": {"style": "walking"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Spectral.PeakCount)
	assert.Equal(t, 44100, cfg.Spectral.SampleRate)
	assert.Equal(t, 33*time.Millisecond, cfg.Listen.FrameInterval)
	assert.Equal(t, "walking", cfg.Bass.Style)
}

func TestLoadDurationStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "armonia.json")
	body := `{"listen": {"frame_interval": "16ms", "notify_debounce": "1.5s", "history_size": 4}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 16*time.Millisecond, cfg.Listen.FrameInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.Listen.NotifyDebounce)
	assert.Equal(t, 4, cfg.Listen.HistorySize)
	assert.Equal(t, 8192, cfg.Listen.WindowSize)
	assert.Equal(t, "ffmpeg", cfg.Listen.FFmpegPath)
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "armonia.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"listen": {"frame_interval": "soon"}}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame_interval")
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"non power of two fft": func(c *Config) { c.Spectral.FFTSize = 1000 },
		"empty band":           func(c *Config) { c.Spectral.FreqRange = [2]float64{500, 100} },
		"zero history":         func(c *Config) { c.Listen.HistorySize = 0 },
		"bad style":            func(c *Config) { c.Bass.Style = "slap" },
		"zero peaks":           func(c *Config) { c.Spectral.PeakCount = 0 },
		"flatness above one":   func(c *Config) { c.Spectral.MaxFlatness = 1.5 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
