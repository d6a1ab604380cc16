package spectral

import (
	"math"
)

// flatnessFloor stands in for zero bins in the log domain
const flatnessFloor = 1e-10

// Flatness computes spectral flatness (Wiener entropy) of a linear
// magnitude frame: the ratio of geometric to arithmetic mean, in [0, 1].
// Tonal frames score near 0, white noise near 1. Bins at or below zero
// count as flatnessFloor so sparse frames stay tonal.
func Flatness(magnitudes []float64) float64 {
	if len(magnitudes) == 0 {
		return 0.0
	}

	logSum := 0.0
	arithmeticMean := 0.0
	for _, m := range magnitudes {
		if math.IsNaN(m) || m < flatnessFloor {
			m = flatnessFloor
		}
		logSum += math.Log(m)
		arithmeticMean += m
	}
	n := float64(len(magnitudes))
	arithmeticMean /= n

	if arithmeticMean <= flatnessFloor {
		return 0.0
	}

	flatness := math.Exp(logSum/n) / arithmeticMean
	return math.Min(flatness, 1.0)
}
