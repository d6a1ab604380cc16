package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// combFrame alternates two levels so every other bin is a local maximum
func combFrame(n int) []float64 {
	frame := make([]float64, n)
	for i := range frame {
		frame[i] = 0.9
		if i%2 == 1 {
			frame[i] = 1.0
		}
	}
	return frame
}

func TestFlatness(t *testing.T) {
	assert.Zero(t, Flatness(nil))
	assert.Zero(t, Flatness(make([]float64, 16)))
	assert.InDelta(t, 1.0, Flatness([]float64{2, 2, 2, 2}), 1e-12)
	assert.Greater(t, Flatness(combFrame(256)), 0.99)

	sparse := make([]float64, testFFTSize/2)
	sparse[82] = 1
	sparse[100] = 0.5
	assert.Less(t, Flatness(sparse), 0.01)
}

func TestFlatnessGateRejectsNoise(t *testing.T) {
	noise := combFrame(testFFTSize / 2)
	// Keep the first maxima inside the default band
	for i := range 20 {
		noise[i] = 0.9
	}

	open := NewExtractor(DefaultSampleRate)
	assert.NotEmpty(t, open.Extract(noise))

	gated := NewExtractorWithParams(ExtractorParams{
		SampleRate:  DefaultSampleRate,
		MaxFlatness: 0.5,
	})
	assert.Empty(t, gated.Extract(noise))

	tonal := make([]float64, testFFTSize/2)
	tonal[BinForFrequency(440, DefaultSampleRate, testFFTSize)] = 1
	assert.Equal(t, []string{"A4"}, gated.Extract(tonal))
}
