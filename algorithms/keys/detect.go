package keys

import (
	"sort"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chords"
	"github.com/RyanBlaney/sonido-armonia/algorithms/theory"
	"gonum.org/v1/gonum/floats"
)

// Scoring weights for chord-sequence key detection
const (
	scoreInScale       = 2.0
	scoreQualityMatch  = 3.0
	scoreTonic         = 5.0
	scoreFirstIsTonic  = 3.0
	scoreTonicQuality  = 2.0
	scoreDominantMajor = 3.0
	scoreSubdominant   = 2.0
)

// Candidates returns the 24 keys in enumeration order: by tonic C..B,
// major before minor
func Candidates() []Key {
	keys := make([]Key, 0, 24)
	for tonic := range 12 {
		keys = append(keys,
			Build(theory.PitchClass(tonic), ModeMajor),
			Build(theory.PitchClass(tonic), ModeMinor),
		)
	}
	return keys
}

// Detect returns the best-scoring key for a chord progression. It reports
// false only for an empty progression; any other input yields one of the
// 24 keys. Ties keep the first enumerated key.
func Detect(progression []string) (Key, bool) {
	ranked := Rank(progression)
	if len(ranked) == 0 {
		return Key{}, false
	}
	return ranked[0], true
}

// Rank scores all 24 keys and returns them best first. Equal scores keep
// enumeration order.
func Rank(progression []string) []Key {
	if len(progression) == 0 {
		return nil
	}

	parsed := make([]chords.Chord, 0, len(progression))
	firstParsed := -1
	for i, symbol := range progression {
		if c, ok := chords.Parse(symbol); ok {
			if i == 0 {
				firstParsed = len(parsed)
			}
			parsed = append(parsed, c)
		}
	}

	candidates := Candidates()
	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = score(candidates[i], parsed, firstParsed)
		candidates[i].Score = scores[i]
	}

	total := floats.Sum(scores)
	for i := range candidates {
		if total > 0 {
			candidates[i].Confidence = candidates[i].Score / total
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates
}

// score applies the additive rules. first is the index in progression of
// the literal first chord, or -1 when that chord did not parse.
func score(k Key, progression []chords.Chord, first int) float64 {
	total := 0.0
	dominant := k.Scale[DegreeV]
	subdominant := k.Scale[DegreeIV]

	for i, c := range progression {
		if degree := k.Degree(c.Root); degree >= 0 {
			total += scoreInScale
			if qualityMatches(c.Quality, k.DiatonicChords[degree].Quality) {
				total += scoreQualityMatch
			}
		}

		if c.Root == k.Tonic {
			total += scoreTonic
			if i == first {
				total += scoreFirstIsTonic
			}
			if qualityMatches(c.Quality, k.TonicQuality()) {
				total += scoreTonicQuality
			}
		}

		if c.Root == dominant && qualityMatches(c.Quality, chords.QualityMajor) {
			total += scoreDominantMajor
		}

		if c.Root == subdominant {
			total += scoreSubdominant
		}
	}

	return total
}

// qualityMatches treats dominant chords as major
func qualityMatches(got, want chords.Quality) bool {
	if got == chords.QualityDominant {
		got = chords.QualityMajor
	}
	return got == want
}
