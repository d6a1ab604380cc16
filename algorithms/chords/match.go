package chords

import (
	"github.com/RyanBlaney/sonido-armonia/algorithms/theory"
)

// MinNotes is the number of distinct pitch classes needed to name a chord
const MinNotes = 3

// Match is a scored chord candidate for a note set
type Match struct {
	Chord Chord   `json:"chord"`
	Score float64 `json:"score"` // Jaccard overlap of chord tones and input (0-1)
}

// DetectFromNotes names the chord formed by the given notes ("C", "E4",
// "Bb"...). Octaves and duplicates are ignored and unparsable names are
// skipped. It reports false when fewer than MinNotes distinct pitch
// classes remain or no dictionary chord fits.
func DetectFromNotes(notes []string) (string, bool) {
	m, ok := MatchNotes(notes)
	if !ok {
		return "", false
	}
	return m.Chord.Symbol, true
}

// MatchNotes is DetectFromNotes returning the winning candidate
func MatchNotes(notes []string) (Match, bool) {
	pcs := make([]theory.PitchClass, 0, len(notes))
	for _, name := range notes {
		if n, ok := theory.ParseNote(name); ok {
			pcs = append(pcs, n.PitchClass)
		}
	}
	return MatchPitchClasses(pcs)
}

// MatchPitchClasses scores every dictionary chord on every candidate root.
// Candidate roots are the distinct input pitch classes in first-seen order,
// so the first note acts as the preferred bass. Ties keep the first
// enumerated candidate (root order, then dictionary order).
func MatchPitchClasses(pcs []theory.PitchClass) (Match, bool) {
	roots := distinct(pcs)
	if len(roots) < MinNotes {
		return Match{}, false
	}

	var input [12]bool
	for _, pc := range roots {
		input[pc] = true
	}

	var best Match
	found := false
	for _, root := range roots {
		for _, t := range dictionaryOrder() {
			candidate := New(root, t)
			score, shared := overlap(candidate, input, len(roots))
			if shared < MinNotes {
				continue
			}
			if !found || score > best.Score {
				best = Match{Chord: candidate, Score: score}
				found = true
			}
		}
	}

	return best, found
}

func distinct(pcs []theory.PitchClass) []theory.PitchClass {
	var seen [12]bool
	out := make([]theory.PitchClass, 0, len(pcs))
	for _, pc := range pcs {
		pc = theory.PitchClass(theory.Mod(int(pc), 12))
		if seen[pc] {
			continue
		}
		seen[pc] = true
		out = append(out, pc)
	}
	return out
}

// overlap returns |chord ∩ input| / |chord ∪ input| and the intersection size
func overlap(chord Chord, input [12]bool, inputSize int) (float64, int) {
	var tones [12]bool
	for _, n := range chord.Notes {
		tones[n] = true
	}

	shared, chordSize := 0, 0
	for pc := range 12 {
		if !tones[pc] {
			continue
		}
		chordSize++
		if input[pc] {
			shared++
		}
	}

	union := chordSize + inputSize - shared
	if union == 0 {
		return 0, 0
	}
	return float64(shared) / float64(union), shared
}
