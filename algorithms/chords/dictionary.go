package chords

// Quality is the coarse harmonic family of a chord
type Quality int

const (
	QualityMajor Quality = iota
	QualityMinor
	QualityDiminished
	QualityAugmented
	QualityDominant
	QualityOther
)

func (q Quality) String() string {
	switch q {
	case QualityMajor:
		return "major"
	case QualityMinor:
		return "minor"
	case QualityDiminished:
		return "diminished"
	case QualityAugmented:
		return "augmented"
	case QualityDominant:
		return "dominant"
	default:
		return "other"
	}
}

// MarshalText renders the quality by name in JSON output
func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// Type is a chord dictionary entry. The declaration order is the
// enumeration order used to break ties in note-set matching.
type Type int

const (
	TypeMajor Type = iota
	TypeMinor
	TypeDiminished
	TypeAugmented
	TypeDominant7
	TypeMajor7
	TypeMinor7
	TypeDiminished7
	TypeHalfDiminished7
	TypeMinorMajor7
	TypeAugmented7
	TypeSus2
	TypeSus4
	TypeSeventhSus4
	TypeSixth
	TypeMinorSixth
	TypeSixNine
	TypeAdd9
	TypeNinth
	TypeMajor9
	TypeMinor9
	TypeEleventh
	TypeThirteenth
	TypePower
	// TypeOther marks a suffix that is not in the dictionary; its quality
	// and intervals come from substring rules.
	TypeOther
)

// ChordTemplate describes one dictionary entry
type ChordTemplate struct {
	Type      Type    `json:"type"`
	Suffix    string  `json:"suffix"` // canonical suffix used in symbols
	Name      string  `json:"name"`
	Quality   Quality `json:"quality"`
	Intervals []int   `json:"intervals"` // semitones from the root
}

var templates = map[Type]ChordTemplate{
	TypeMajor:           {TypeMajor, "", "major", QualityMajor, []int{0, 4, 7}},
	TypeMinor:           {TypeMinor, "m", "minor", QualityMinor, []int{0, 3, 7}},
	TypeDiminished:      {TypeDiminished, "dim", "diminished", QualityDiminished, []int{0, 3, 6}},
	TypeAugmented:       {TypeAugmented, "aug", "augmented", QualityAugmented, []int{0, 4, 8}},
	TypeDominant7:       {TypeDominant7, "7", "dominant seventh", QualityDominant, []int{0, 4, 7, 10}},
	TypeMajor7:          {TypeMajor7, "maj7", "major seventh", QualityMajor, []int{0, 4, 7, 11}},
	TypeMinor7:          {TypeMinor7, "m7", "minor seventh", QualityMinor, []int{0, 3, 7, 10}},
	TypeDiminished7:     {TypeDiminished7, "dim7", "diminished seventh", QualityDiminished, []int{0, 3, 6, 9}},
	TypeHalfDiminished7: {TypeHalfDiminished7, "m7b5", "half-diminished seventh", QualityMinor, []int{0, 3, 6, 10}},
	TypeMinorMajor7:     {TypeMinorMajor7, "mMaj7", "minor-major seventh", QualityMinor, []int{0, 3, 7, 11}},
	TypeAugmented7:      {TypeAugmented7, "aug7", "augmented seventh", QualityAugmented, []int{0, 4, 8, 10}},
	TypeSus2:            {TypeSus2, "sus2", "suspended second", QualityOther, []int{0, 2, 7}},
	TypeSus4:            {TypeSus4, "sus4", "suspended fourth", QualityOther, []int{0, 5, 7}},
	TypeSeventhSus4:     {TypeSeventhSus4, "7sus4", "dominant seventh suspended fourth", QualityDominant, []int{0, 5, 7, 10}},
	TypeSixth:           {TypeSixth, "6", "major sixth", QualityMajor, []int{0, 4, 7, 9}},
	TypeMinorSixth:      {TypeMinorSixth, "m6", "minor sixth", QualityMinor, []int{0, 3, 7, 9}},
	TypeSixNine:         {TypeSixNine, "6/9", "six-nine", QualityMajor, []int{0, 4, 7, 9, 14}},
	TypeAdd9:            {TypeAdd9, "add9", "added ninth", QualityMajor, []int{0, 4, 7, 14}},
	TypeNinth:           {TypeNinth, "9", "dominant ninth", QualityDominant, []int{0, 4, 7, 10, 14}},
	TypeMajor9:          {TypeMajor9, "maj9", "major ninth", QualityMajor, []int{0, 4, 7, 11, 14}},
	TypeMinor9:          {TypeMinor9, "m9", "minor ninth", QualityMinor, []int{0, 3, 7, 10, 14}},
	TypeEleventh:        {TypeEleventh, "11", "dominant eleventh", QualityDominant, []int{0, 4, 7, 10, 14, 17}},
	TypeThirteenth:      {TypeThirteenth, "13", "dominant thirteenth", QualityDominant, []int{0, 4, 7, 10, 14, 21}},
	TypePower:           {TypePower, "5", "power chord", QualityOther, []int{0, 7}},
}

// aliases maps accepted spellings to dictionary entries
var aliases = map[string]Type{
	"":        TypeMajor,
	"M":       TypeMajor,
	"maj":     TypeMajor,
	"major":   TypeMajor,
	"m":       TypeMinor,
	"min":     TypeMinor,
	"minor":   TypeMinor,
	"-":       TypeMinor,
	"dim":     TypeDiminished,
	"°":       TypeDiminished,
	"o":       TypeDiminished,
	"aug":     TypeAugmented,
	"+":       TypeAugmented,
	"7":       TypeDominant7,
	"dom7":    TypeDominant7,
	"maj7":    TypeMajor7,
	"M7":      TypeMajor7,
	"ma7":     TypeMajor7,
	"Δ":       TypeMajor7,
	"Δ7":      TypeMajor7,
	"m7":      TypeMinor7,
	"min7":    TypeMinor7,
	"-7":      TypeMinor7,
	"dim7":    TypeDiminished7,
	"°7":      TypeDiminished7,
	"o7":      TypeDiminished7,
	"m7b5":    TypeHalfDiminished7,
	"min7b5":  TypeHalfDiminished7,
	"ø":       TypeHalfDiminished7,
	"ø7":      TypeHalfDiminished7,
	"mMaj7":   TypeMinorMajor7,
	"mM7":     TypeMinorMajor7,
	"minmaj7": TypeMinorMajor7,
	"m(maj7)": TypeMinorMajor7,
	"aug7":    TypeAugmented7,
	"+7":      TypeAugmented7,
	"7#5":     TypeAugmented7,
	"sus2":    TypeSus2,
	"sus4":    TypeSus4,
	"sus":     TypeSus4,
	"7sus4":   TypeSeventhSus4,
	"7sus":    TypeSeventhSus4,
	"6":       TypeSixth,
	"maj6":    TypeSixth,
	"m6":      TypeMinorSixth,
	"min6":    TypeMinorSixth,
	"6/9":     TypeSixNine,
	"69":      TypeSixNine,
	"add9":    TypeAdd9,
	"add2":    TypeAdd9,
	"9":       TypeNinth,
	"maj9":    TypeMajor9,
	"M9":      TypeMajor9,
	"m9":      TypeMinor9,
	"min9":    TypeMinor9,
	"11":      TypeEleventh,
	"13":      TypeThirteenth,
	"5":       TypePower,
}

// Template returns the dictionary entry for t
func Template(t Type) (ChordTemplate, bool) {
	tmpl, ok := templates[t]
	return tmpl, ok
}

// LookupSuffix resolves a suffix spelling to a dictionary entry
func LookupSuffix(suffix string) (ChordTemplate, bool) {
	t, ok := aliases[suffix]
	if !ok {
		return ChordTemplate{}, false
	}
	return templates[t], true
}

// dictionaryOrder lists the dictionary types in enumeration order
func dictionaryOrder() []Type {
	order := make([]Type, 0, len(templates))
	for t := TypeMajor; t < TypeOther; t++ {
		order = append(order, t)
	}
	return order
}
