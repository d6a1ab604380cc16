package progression

import (
	"sort"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chords"
	"github.com/RyanBlaney/sonido-armonia/algorithms/keys"
	"github.com/RyanBlaney/sonido-armonia/algorithms/theory"
)

// MaxSuggestions caps the length of a suggestion list
const MaxSuggestions = 5

// Function is the harmonic function of a suggested chord
type Function int

const (
	FunctionTonic Function = iota
	FunctionSubdominant
	FunctionDominant
	FunctionSubstitute
)

func (f Function) String() string {
	switch f {
	case FunctionSubdominant:
		return "subdominant"
	case FunctionDominant:
		return "dominant"
	case FunctionSubstitute:
		return "substitute"
	default:
		return "tonic"
	}
}

// MarshalText renders the function by name in JSON output
func (f Function) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Suggestion is a ranked candidate for the next chord
type Suggestion struct {
	Chord       string   `json:"chord"`
	Probability float64  `json:"probability"`
	Reason      string   `json:"reason"`
	Function    Function `json:"function"`
	Numeral     string   `json:"numeral,omitempty"` // set for diatonic targets
}

type transition struct {
	degree int
	weight float64
	reason string
}

// Functional-harmony motion from each scale degree
var transitions = map[int][]transition{
	keys.DegreeI: {
		{keys.DegreeIV, 0.8, "Plagal motion"},
		{keys.DegreeV, 0.85, "Authentic preparation"},
		{keys.DegreeVI, 0.6, "Deceptive colour"},
	},
	keys.DegreeII: {
		{keys.DegreeV, 0.9, "ii-V motion"},
		{keys.DegreeIV, 0.6, "Predominant exchange"},
	},
	keys.DegreeIII: {
		{keys.DegreeVI, 0.75, "Descending fifth"},
		{keys.DegreeV, 0.6, "Mediant to dominant"},
	},
	keys.DegreeIV: {
		{keys.DegreeI, 0.8, "Plagal cadence"},
		{keys.DegreeV, 0.85, "Predominant to dominant"},
	},
	keys.DegreeV: {
		{keys.DegreeI, 0.95, "Authentic cadence"},
		{keys.DegreeVI, 0.7, "Deceptive cadence"},
	},
	keys.DegreeVI: {
		{keys.DegreeII, 0.75, "Circle of fifths"},
		{keys.DegreeIV, 0.7, "Submediant to subdominant"},
	},
	keys.DegreeVII: {
		{keys.DegreeI, 0.9, "Leading-tone resolution"},
	},
}

const (
	dominantWeight    = 0.7
	subdominantWeight = 0.6
	tritoneWeight     = 0.6
)

// Suggest ranks likely next chords after current in key. The result is
// sorted by probability, highest first, holds no duplicate chord names
// and has at most MaxSuggestions entries. An unparsable current chord
// yields nil.
func Suggest(current string, key keys.Key) []Suggestion {
	chord, ok := chords.Parse(current)
	if !ok {
		return nil
	}

	var candidates []Suggestion

	if degree := locateDegree(chord, key); degree >= 0 {
		for _, tr := range transitions[degree] {
			target := key.DiatonicChords[tr.degree]
			candidates = append(candidates, Suggestion{
				Chord:       target.Symbol,
				Probability: tr.weight,
				Reason:      tr.reason,
				Function:    fromKeyFunction(target.Function),
				Numeral:     target.Numeral,
			})
		}
	}

	// Fifth and fourth above keep the current chord's suffix whether or
	// not they fit the key
	candidates = append(candidates,
		Suggestion{
			Chord:       retarget(chord, theory.PerfectFifth),
			Probability: dominantWeight,
			Reason:      "Dominant of current chord",
			Function:    FunctionDominant,
		},
		Suggestion{
			Chord:       retarget(chord, theory.PerfectFourth),
			Probability: subdominantWeight,
			Reason:      "Subdominant of current chord",
			Function:    FunctionSubdominant,
		},
	)

	if chord.IsDominantSeventh() {
		candidates = append(candidates, Suggestion{
			Chord:       chord.Root.Transpose(theory.Tritone).Name() + "7",
			Probability: tritoneWeight,
			Reason:      "Tritone substitution",
			Function:    FunctionSubstitute,
		})
	}

	return rank(candidates)
}

// SuggestInKey resolves keyName with keys.ForName and suggests from there.
// An empty keyName derives the key from current alone. It reports false
// when either the chord or the key name cannot be parsed.
func SuggestInKey(current, keyName string) (keys.Key, []Suggestion, bool) {
	if _, ok := chords.Parse(current); !ok {
		return keys.Key{}, nil, false
	}

	var key keys.Key
	var ok bool
	if keyName == "" {
		key, ok = keys.Detect([]string{current})
	} else {
		key, ok = keys.ForName(keyName)
	}
	if !ok {
		return keys.Key{}, nil, false
	}

	return key, Suggest(current, key), true
}

// locateDegree finds the diatonic chord matching root and quality, then
// falls back to the first root match. It returns -1 outside the key.
func locateDegree(chord chords.Chord, key keys.Key) int {
	quality := chord.Quality
	if quality == chords.QualityDominant {
		quality = chords.QualityMajor
	}

	fallback := -1
	for i, d := range key.DiatonicChords {
		if d.Root != chord.Root {
			continue
		}
		if d.Quality == quality {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}

// retarget moves the root and keeps the suffix, dropping any slash bass
func retarget(chord chords.Chord, semitones int) string {
	return chord.Root.Transpose(semitones).Name() + chord.Suffix
}

// rank keeps the first occurrence of each chord name, sorts by
// probability without reordering ties and truncates
func rank(candidates []Suggestion) []Suggestion {
	seen := make(map[string]bool, len(candidates))
	unique := make([]Suggestion, 0, len(candidates))
	for _, s := range candidates {
		if seen[s.Chord] {
			continue
		}
		seen[s.Chord] = true
		unique = append(unique, s)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Probability > unique[j].Probability
	})

	if len(unique) > MaxSuggestions {
		unique = unique[:MaxSuggestions]
	}
	return unique
}

func fromKeyFunction(f keys.Function) Function {
	switch f {
	case keys.FunctionSubdominant:
		return FunctionSubdominant
	case keys.FunctionDominant:
		return FunctionDominant
	}
	return FunctionTonic
}
