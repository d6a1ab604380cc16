package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFFTSize = 8192

func TestSinglePeakAt440IsA4(t *testing.T) {
	magnitudes := make([]float64, testFFTSize/2)
	bin := BinForFrequency(440, DefaultSampleRate, testFFTSize)
	require.Equal(t, 82, bin)
	magnitudes[bin] = 1.0

	notes := NewExtractor(DefaultSampleRate).Extract(magnitudes)
	assert.Equal(t, []string{"A4"}, notes)
}

func TestExtractKeepsTopPeaksStrongestFirst(t *testing.T) {
	magnitudes := make([]float64, testFFTSize/2)
	freqs := []float64{261.63, 329.63, 392.0, 523.25, 659.25, 783.99, 1046.5}
	for i, f := range freqs {
		magnitudes[BinForFrequency(f, DefaultSampleRate, testFFTSize)] = float64(10 - i)
	}

	notes := NewExtractor(DefaultSampleRate).Extract(magnitudes)
	assert.Equal(t, []string{"C4", "E4", "G4", "C5", "E5", "G5"}, notes)
}

func TestExtractDropsOutOfBandPeaks(t *testing.T) {
	magnitudes := make([]float64, testFFTSize/2)
	magnitudes[BinForFrequency(30, DefaultSampleRate, testFFTSize)] = 5
	magnitudes[BinForFrequency(5000, DefaultSampleRate, testFFTSize)] = 4
	magnitudes[BinForFrequency(220, DefaultSampleRate, testFFTSize)] = 1

	peaks := NewExtractor(DefaultSampleRate).ExtractPeaks(magnitudes)
	require.Len(t, peaks, 1)
	assert.Equal(t, "A3", peaks[0].Note)
	assert.Equal(t, 57, peaks[0].MIDI)
}

func TestExtractEmptyAndSilentFrames(t *testing.T) {
	e := NewExtractor(DefaultSampleRate)

	assert.Empty(t, e.Extract(nil))
	assert.Empty(t, e.Extract([]float64{1, 2}))
	assert.Empty(t, e.Extract(make([]float64, 1024)))

	silent := make([]float64, 1024)
	for i := range silent {
		silent[i] = math.Inf(-1)
	}
	assert.Empty(t, e.Extract(silent))

	nan := make([]float64, 1024)
	for i := range nan {
		nan[i] = math.NaN()
	}
	assert.Empty(t, e.Extract(nan))
}

func TestExtractOnlyCountsStrictMaxima(t *testing.T) {
	magnitudes := make([]float64, testFFTSize/2)
	bin := BinForFrequency(440, DefaultSampleRate, testFFTSize)
	// A plateau is not a strict local maximum
	magnitudes[bin] = 1
	magnitudes[bin+1] = 1

	assert.Empty(t, NewExtractor(DefaultSampleRate).Extract(magnitudes))
}

func TestExtractWithDecibelFrame(t *testing.T) {
	magnitudes := make([]float64, testFFTSize/2)
	for i := range magnitudes {
		magnitudes[i] = -120
	}
	magnitudes[BinForFrequency(440, DefaultSampleRate, testFFTSize)] = -20

	assert.Equal(t, []string{"A4"}, NewExtractor(DefaultSampleRate).Extract(magnitudes))
}

func TestExtractWithPinnedFFTSize(t *testing.T) {
	// Frame holds only the lower half of a 16384-point spectrum
	e := NewExtractorWithParams(ExtractorParams{
		SampleRate:   DefaultSampleRate,
		FFTSize:      16384,
		MinFrequency: DefaultMinFrequency,
		MaxFrequency: DefaultMaxFrequency,
	})
	magnitudes := make([]float64, 4096)
	magnitudes[BinForFrequency(440, DefaultSampleRate, 16384)] = 1

	assert.Equal(t, []string{"A4"}, e.Extract(magnitudes))
}

func TestMagnitudeFrameFromSine(t *testing.T) {
	samples := make([]float64, testFFTSize)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 440 * float64(i) / DefaultSampleRate)
	}

	magnitudes := MagnitudeFrame(samples, testFFTSize)
	require.Len(t, magnitudes, testFFTSize/2)

	notes := NewExtractor(DefaultSampleRate).Extract(magnitudes)
	require.NotEmpty(t, notes)
	assert.Equal(t, "A4", notes[0])
}

func TestMagnitudeFramePadsShortInput(t *testing.T) {
	magnitudes := MagnitudeFrame([]float64{1, 0, -1}, 16)
	assert.Len(t, magnitudes, 8)
	assert.Empty(t, MagnitudeFrame(nil, 1))
}
