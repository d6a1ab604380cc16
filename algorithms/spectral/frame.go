package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// MagnitudeFrame computes a Hann-windowed magnitude spectrum of length
// fftSize/2 from the most recent fftSize samples. Shorter input is
// zero-padded at the front. The spectrum is scaled so a full-scale sine
// peaks near 1.
func MagnitudeFrame(samples []float64, fftSize int) []float64 {
	if fftSize < 2 {
		return []float64{}
	}

	frame := make([]float64, fftSize)
	if len(samples) >= fftSize {
		copy(frame, samples[len(samples)-fftSize:])
	} else {
		copy(frame[fftSize-len(samples):], samples)
	}

	window.Apply(frame, window.Hann)
	spectrum := fft.FFTReal(frame)

	magnitudes := make([]float64, fftSize/2)
	for i := range magnitudes {
		magnitudes[i] = cmplx.Abs(spectrum[i])
	}

	// Hann coherent gain is 0.5
	floats.Scale(4.0/float64(fftSize), magnitudes)

	return magnitudes
}
