package chords

import (
	"strings"

	"github.com/RyanBlaney/sonido-armonia/algorithms/theory"
)

// Chord is a parsed chord symbol
type Chord struct {
	Root      theory.PitchClass   `json:"root"`
	Quality   Quality             `json:"quality"`
	Type      Type                `json:"type"`
	Suffix    string              `json:"suffix"`    // canonical suffix ("" for major)
	Intervals []int               `json:"intervals"` // semitones from the root
	Notes     []theory.PitchClass `json:"notes"`     // pitch classes in interval order
	Symbol    string              `json:"symbol"`    // canonical name, e.g. "C#m7"
	Bass      theory.PitchClass   `json:"bass"`      // slash bass, valid when HasBass
	HasBass   bool                `json:"has_bass"`
}

// Parse parses a chord symbol such as "C", "Bbm7", "F#dim" or "C/G".
// It reports false when the root is not a note letter A-G.
func Parse(symbol string) (Chord, bool) {
	symbol = strings.TrimSpace(symbol)

	root, n, ok := theory.ParseRoot(symbol)
	if !ok {
		return Chord{}, false
	}
	suffix := symbol[n:]

	var bass theory.PitchClass
	hasBass := false
	if i := strings.LastIndex(suffix, "/"); i >= 0 {
		if b, m, ok := theory.ParseRoot(suffix[i+1:]); ok && m == len(suffix)-i-1 {
			bass = b
			hasBass = true
			suffix = suffix[:i]
		}
	}

	var chord Chord
	if tmpl, ok := LookupSuffix(suffix); ok {
		chord = fromTemplate(root, tmpl)
	} else {
		chord = fromUnknownSuffix(root, suffix)
	}

	if hasBass {
		chord.Bass = bass
		chord.HasBass = true
		chord.Symbol += "/" + bass.Name()
	}

	return chord, true
}

// MustParse is Parse for literals known to be valid
func MustParse(symbol string) Chord {
	chord, ok := Parse(symbol)
	if !ok {
		panic("chords: invalid chord symbol " + symbol)
	}
	return chord
}

// New builds a dictionary chord on the given root
func New(root theory.PitchClass, t Type) Chord {
	tmpl, ok := templates[t]
	if !ok {
		tmpl = templates[TypeMajor]
	}
	return fromTemplate(root, tmpl)
}

func fromTemplate(root theory.PitchClass, tmpl ChordTemplate) Chord {
	chord := Chord{
		Root:      root,
		Quality:   tmpl.Quality,
		Type:      tmpl.Type,
		Suffix:    tmpl.Suffix,
		Intervals: append([]int(nil), tmpl.Intervals...),
	}
	chord.fill()
	return chord
}

// fromUnknownSuffix keeps a plausible but unlisted suffix, classifying it
// by substring rules.
func fromUnknownSuffix(root theory.PitchClass, suffix string) Chord {
	quality := ClassifySuffix(suffix)

	var intervals []int
	switch quality {
	case QualityMinor:
		intervals = []int{0, 3, 7}
	case QualityDiminished:
		intervals = []int{0, 3, 6}
	case QualityAugmented:
		intervals = []int{0, 4, 8}
	default:
		intervals = []int{0, 4, 7}
	}

	if strings.Contains(suffix, "7") {
		switch {
		case strings.Contains(strings.ToLower(suffix), "maj7"):
			intervals = append(intervals, theory.MajorSeventh)
		case quality == QualityDiminished:
			intervals = append(intervals, theory.MajorSixth)
		default:
			intervals = append(intervals, theory.MinorSeventh)
		}
	}

	chord := Chord{
		Root:      root,
		Quality:   quality,
		Type:      TypeOther,
		Suffix:    suffix,
		Intervals: intervals,
	}
	chord.fill()
	return chord
}

// ClassifySuffix applies the substring rules: "dim" is diminished, "aug" is
// augmented, "m"/"minor" without "maj" is minor, "7" without "maj7" is
// dominant, the empty suffix is major and anything else is other.
func ClassifySuffix(suffix string) Quality {
	lower := strings.ToLower(suffix)
	hasMaj := strings.Contains(lower, "maj")

	switch {
	case strings.Contains(lower, "dim"):
		return QualityDiminished
	case strings.Contains(lower, "aug"):
		return QualityAugmented
	case (strings.Contains(suffix, "m") || strings.Contains(lower, "minor")) && !hasMaj:
		return QualityMinor
	case strings.Contains(suffix, "7") && !strings.Contains(lower, "maj7"):
		return QualityDominant
	case suffix == "":
		return QualityMajor
	default:
		return QualityOther
	}
}

// fill derives Notes and Symbol from Root, Intervals and Suffix
func (c *Chord) fill() {
	c.Notes = make([]theory.PitchClass, len(c.Intervals))
	for i, interval := range c.Intervals {
		c.Notes[i] = c.Root.Transpose(interval)
	}
	c.Symbol = c.Root.Name() + c.Suffix
}

// WithRoot returns the same chord shape on a new root. A slash bass moves
// with the root.
func (c Chord) WithRoot(root theory.PitchClass) Chord {
	return c.Transpose(c.Root.IntervalTo(root))
}

// Transpose moves the chord by the given number of semitones
func (c Chord) Transpose(semitones int) Chord {
	moved := Chord{
		Root:      c.Root.Transpose(semitones),
		Quality:   c.Quality,
		Type:      c.Type,
		Suffix:    c.Suffix,
		Intervals: append([]int(nil), c.Intervals...),
	}
	moved.fill()
	if c.HasBass {
		moved.Bass = c.Bass.Transpose(semitones)
		moved.HasBass = true
		moved.Symbol += "/" + moved.Bass.Name()
	}
	return moved
}

// Contains reports whether pc is a chord tone
func (c Chord) Contains(pc theory.PitchClass) bool {
	for _, n := range c.Notes {
		if n == pc {
			return true
		}
	}
	return false
}

// NoteNames returns the chord tones as sharp note names
func (c Chord) NoteNames() []string {
	names := make([]string, len(c.Notes))
	for i, n := range c.Notes {
		names[i] = n.Name()
	}
	return names
}

// IsDominantSeventh reports a major triad with a minor seventh
func (c Chord) IsDominantSeventh() bool {
	return c.Quality == QualityDominant && c.hasInterval(theory.MajorThird) && c.hasInterval(theory.MinorSeventh)
}

func (c Chord) hasInterval(semitones int) bool {
	for _, i := range c.Intervals {
		if i%12 == semitones {
			return true
		}
	}
	return false
}

// Third returns the chord's third above the root in semitones (3 or 4).
// Suspended and power chords report the major third.
func (c Chord) Third() int {
	switch c.Quality {
	case QualityMinor, QualityDiminished:
		return theory.MinorThird
	}
	return theory.MajorThird
}

// Fifth returns the chord's fifth above the root in semitones
func (c Chord) Fifth() int {
	switch {
	case c.Quality == QualityDiminished || (c.Type == TypeHalfDiminished7):
		return theory.Tritone
	case c.Quality == QualityAugmented:
		return theory.MinorSixth
	}
	return theory.PerfectFifth
}
