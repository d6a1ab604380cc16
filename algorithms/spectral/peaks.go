package spectral

import (
	"math"
	"sort"

	"github.com/RyanBlaney/sonido-armonia/algorithms/theory"
	"gonum.org/v1/gonum/floats"
)

// Defaults for real-time chord listening
const (
	DefaultSampleRate   = 44100
	DefaultPeakCount    = 6
	DefaultMinFrequency = 60.0
	DefaultMaxFrequency = 2000.0
)

// SpectralPeak represents a detected spectral peak
type SpectralPeak struct {
	Frequency float64 `json:"frequency"` // Peak frequency in Hz
	Magnitude float64 `json:"magnitude"` // Peak magnitude (linear or dB, as supplied)
	BinIndex  int     `json:"bin_index"` // Original FFT bin index
	MIDI      int     `json:"midi"`      // Nearest equal-tempered MIDI note
	Note      string  `json:"note"`      // Note name with octave, e.g. "A4"
}

// ExtractorParams configures pitch extraction
type ExtractorParams struct {
	SampleRate int `json:"sample_rate"`
	// FFTSize is the transform length behind the magnitude frame. Zero
	// infers it as twice the frame length.
	FFTSize      int     `json:"fft_size"`
	PeakCount    int     `json:"peak_count"`
	MinFrequency float64 `json:"min_frequency"`
	MaxFrequency float64 `json:"max_frequency"`
	// MaxFlatness rejects noise-like frames whose Flatness exceeds it.
	// Zero disables the gate. Only meaningful for linear magnitudes.
	MaxFlatness float64 `json:"max_flatness"`
}

// Extractor turns one FFT magnitude frame into candidate note names using
// local-maximum peak picking and nearest-semitone quantization
type Extractor struct {
	params ExtractorParams
}

// NewExtractor creates an extractor with default parameters
func NewExtractor(sampleRate int) *Extractor {
	return NewExtractorWithParams(ExtractorParams{
		SampleRate:   sampleRate,
		PeakCount:    DefaultPeakCount,
		MinFrequency: DefaultMinFrequency,
		MaxFrequency: DefaultMaxFrequency,
	})
}

// NewExtractorWithParams creates an extractor with custom parameters
func NewExtractorWithParams(params ExtractorParams) *Extractor {
	if params.SampleRate <= 0 {
		params.SampleRate = DefaultSampleRate
	}
	if params.PeakCount <= 0 {
		params.PeakCount = DefaultPeakCount
	}
	if params.MaxFrequency <= params.MinFrequency {
		params.MinFrequency = DefaultMinFrequency
		params.MaxFrequency = DefaultMaxFrequency
	}
	return &Extractor{params: params}
}

// Params returns the extractor parameters
func (e *Extractor) Params() ExtractorParams {
	return e.params
}

// Extract returns up to PeakCount note names ("A4", "C#3"...) strongest
// first. Duplicates are kept. Empty, flat or silent frames yield an empty
// slice.
func (e *Extractor) Extract(magnitudes []float64) []string {
	peaks := e.ExtractPeaks(magnitudes)
	notes := make([]string, len(peaks))
	for i, p := range peaks {
		notes[i] = p.Note
	}
	return notes
}

// ExtractPeaks returns the in-band peaks behind Extract
func (e *Extractor) ExtractPeaks(magnitudes []float64) []SpectralPeak {
	if len(magnitudes) < 3 {
		return []SpectralPeak{}
	}

	// A flat frame (silence, all -Inf dB) has no local maxima
	if floats.Max(magnitudes) == floats.Min(magnitudes) {
		return []SpectralPeak{}
	}

	if e.params.MaxFlatness > 0 && Flatness(magnitudes) > e.params.MaxFlatness {
		return []SpectralPeak{}
	}

	fftSize := e.params.FFTSize
	if fftSize <= 0 {
		fftSize = 2 * len(magnitudes)
	}
	freqResolution := float64(e.params.SampleRate) / float64(fftSize)

	peaks := e.localMaxima(magnitudes)

	// Strongest first; stable sort keeps the lower bin on equal magnitude
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Magnitude > peaks[j].Magnitude
	})
	if len(peaks) > e.params.PeakCount {
		peaks = peaks[:e.params.PeakCount]
	}

	inBand := peaks[:0]
	for _, p := range peaks {
		p.Frequency = float64(p.BinIndex) * freqResolution
		if p.Frequency < e.params.MinFrequency || p.Frequency > e.params.MaxFrequency {
			continue
		}
		p.MIDI = theory.FrequencyToMIDI(p.Frequency)
		p.Note = theory.NoteFromMIDI(p.MIDI).String()
		inBand = append(inBand, p)
	}

	return inBand
}

// localMaxima finds interior bins strictly greater than both neighbours
func (e *Extractor) localMaxima(magnitudes []float64) []SpectralPeak {
	var peaks []SpectralPeak
	for i := 1; i < len(magnitudes)-1; i++ {
		m := magnitudes[i]
		if math.IsNaN(m) {
			continue
		}
		if m > magnitudes[i-1] && m > magnitudes[i+1] {
			peaks = append(peaks, SpectralPeak{
				Magnitude: m,
				BinIndex:  i,
			})
		}
	}
	return peaks
}

// BinForFrequency returns the bin nearest to freq for the given FFT size
func BinForFrequency(freq float64, sampleRate, fftSize int) int {
	return int(math.Round(freq * float64(fftSize) / float64(sampleRate)))
}
