package keys

import (
	"strings"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chords"
	"github.com/RyanBlaney/sonido-armonia/algorithms/theory"
)

// Mode represents major or minor mode
type Mode int

const (
	ModeMajor Mode = iota
	ModeMinor
)

func (m Mode) String() string {
	if m == ModeMinor {
		return "minor"
	}
	return "major"
}

// MarshalText renders the mode by name in JSON output
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Function is the harmonic role of a scale degree
type Function int

const (
	FunctionTonic Function = iota
	FunctionSubdominant
	FunctionDominant
)

func (f Function) String() string {
	switch f {
	case FunctionSubdominant:
		return "subdominant"
	case FunctionDominant:
		return "dominant"
	default:
		return "tonic"
	}
}

// MarshalText renders the function by name in JSON output
func (f Function) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Scale degree indices
const (
	DegreeI = iota
	DegreeII
	DegreeIII
	DegreeIV
	DegreeV
	DegreeVI
	DegreeVII
)

type modeTable struct {
	steps     [7]int
	qualities [7]chords.Quality
	numerals  [7]string
	functions [7]Function
}

var modeTables = map[Mode]modeTable{
	ModeMajor: {
		steps: [7]int{0, 2, 4, 5, 7, 9, 11},
		qualities: [7]chords.Quality{
			chords.QualityMajor, chords.QualityMinor, chords.QualityMinor,
			chords.QualityMajor, chords.QualityMajor, chords.QualityMinor,
			chords.QualityDiminished,
		},
		numerals: [7]string{"I", "ii", "iii", "IV", "V", "vi", "vii°"},
		functions: [7]Function{
			FunctionTonic, FunctionSubdominant, FunctionTonic,
			FunctionSubdominant, FunctionDominant, FunctionTonic,
			FunctionDominant,
		},
	},
	// Natural minor
	ModeMinor: {
		steps: [7]int{0, 2, 3, 5, 7, 8, 10},
		qualities: [7]chords.Quality{
			chords.QualityMinor, chords.QualityDiminished, chords.QualityMajor,
			chords.QualityMinor, chords.QualityMinor, chords.QualityMajor,
			chords.QualityMajor,
		},
		numerals: [7]string{"i", "ii°", "III", "iv", "v", "VI", "VII"},
		functions: [7]Function{
			FunctionTonic, FunctionSubdominant, FunctionTonic,
			FunctionSubdominant, FunctionDominant, FunctionSubdominant,
			FunctionDominant,
		},
	},
}

// DiatonicChord is the triad built on one scale degree
type DiatonicChord struct {
	Degree   int               `json:"degree"` // 0-based scale degree
	Root     theory.PitchClass `json:"root"`
	Quality  chords.Quality    `json:"quality"`
	Symbol   string            `json:"symbol"`
	Numeral  string            `json:"numeral"`
	Function Function          `json:"function"`
}

// Chord returns the parsed triad
func (d DiatonicChord) Chord() chords.Chord {
	return chords.MustParse(d.Symbol)
}

// KeyRef names a related key
type KeyRef struct {
	Tonic theory.PitchClass `json:"tonic"`
	Mode  Mode              `json:"mode"`
	Name  string            `json:"name"`
}

// Key is a major or minor key with its scale, diatonic triads and
// closely related keys
type Key struct {
	Tonic          theory.PitchClass    `json:"tonic"`
	Mode           Mode                 `json:"mode"`
	Name           string               `json:"name"`
	Scale          [7]theory.PitchClass `json:"scale"`
	DiatonicChords [7]DiatonicChord     `json:"diatonic_chords"`
	Relative       KeyRef               `json:"relative"`
	Parallel       KeyRef               `json:"parallel"`
	Dominant       KeyRef               `json:"dominant"`
	Subdominant    KeyRef               `json:"subdominant"`
	Score          float64              `json:"score"`      // detection score, zero for built keys
	Confidence     float64              `json:"confidence"` // share of the total score across all keys
}

// Build constructs a key from its tonic and mode
func Build(tonic theory.PitchClass, mode Mode) Key {
	table := modeTables[mode]

	k := Key{
		Tonic: tonic,
		Mode:  mode,
		Name:  GetKeyName(tonic, mode),
	}

	for i, step := range table.steps {
		root := tonic.Transpose(step)
		k.Scale[i] = root
		k.DiatonicChords[i] = DiatonicChord{
			Degree:   i,
			Root:     root,
			Quality:  table.qualities[i],
			Symbol:   root.Name() + triadSuffix(table.qualities[i]),
			Numeral:  table.numerals[i],
			Function: table.functions[i],
		}
	}

	k.Relative = ref(GetRelativeKey(tonic, mode))
	k.Parallel = ref(GetParallelKey(tonic, mode))
	k.Dominant = ref(GetDominantKey(tonic, mode))
	k.Subdominant = ref(GetSubdominantKey(tonic, mode))

	return k
}

func ref(tonic theory.PitchClass, mode Mode) KeyRef {
	return KeyRef{Tonic: tonic, Mode: mode, Name: GetKeyName(tonic, mode)}
}

func triadSuffix(q chords.Quality) string {
	switch q {
	case chords.QualityMinor:
		return "m"
	case chords.QualityDiminished:
		return "dim"
	case chords.QualityAugmented:
		return "aug"
	}
	return ""
}

// ForName parses key names such as "C major", "A minor", "F#m", "Bb"
func ForName(name string) (Key, bool) {
	name = strings.TrimSpace(name)

	tonic, n, ok := theory.ParseRoot(name)
	if !ok {
		return Key{}, false
	}

	switch strings.ToLower(strings.TrimSpace(name[n:])) {
	case "", "maj", "major":
		return Build(tonic, ModeMajor), true
	case "m", "min", "minor":
		return Build(tonic, ModeMinor), true
	}
	return Key{}, false
}

// Degree returns the 0-based scale degree of pc, or -1 outside the scale
func (k Key) Degree(pc theory.PitchClass) int {
	for i, s := range k.Scale {
		if s == pc {
			return i
		}
	}
	return -1
}

// TonicQuality is the quality expected of the tonic triad
func (k Key) TonicQuality() chords.Quality {
	return k.DiatonicChords[DegreeI].Quality
}

// Public utility functions

// GetKeyName returns human-readable key name
func GetKeyName(tonic theory.PitchClass, mode Mode) string {
	return tonic.Name() + " " + mode.String()
}

// GetRelativeKey returns the relative major/minor key
func GetRelativeKey(tonic theory.PitchClass, mode Mode) (theory.PitchClass, Mode) {
	if mode == ModeMajor {
		// Relative minor is 3 semitones down
		return tonic.Transpose(-theory.MinorThird), ModeMinor
	}
	// Relative major is 3 semitones up
	return tonic.Transpose(theory.MinorThird), ModeMajor
}

// GetParallelKey returns the parallel major/minor key
func GetParallelKey(tonic theory.PitchClass, mode Mode) (theory.PitchClass, Mode) {
	if mode == ModeMajor {
		return tonic, ModeMinor
	}
	return tonic, ModeMajor
}

// GetDominantKey returns the dominant key (5th above)
func GetDominantKey(tonic theory.PitchClass, mode Mode) (theory.PitchClass, Mode) {
	return tonic.Transpose(theory.PerfectFifth), mode
}

// GetSubdominantKey returns the subdominant key (4th above)
func GetSubdominantKey(tonic theory.PitchClass, mode Mode) (theory.PitchClass, Mode) {
	return tonic.Transpose(theory.PerfectFourth), mode
}
