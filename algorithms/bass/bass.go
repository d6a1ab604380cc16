package bass

import (
	"fmt"
	"strings"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chords"
	"github.com/RyanBlaney/sonido-armonia/algorithms/theory"
)

// DefaultOctave is the register bass lines start in
const DefaultOctave = 2

// Style selects how chords are turned into bass notes
type Style int

const (
	StyleRoot Style = iota
	StyleAlternating
	StyleWalking
)

func (s Style) String() string {
	switch s {
	case StyleAlternating:
		return "alternating"
	case StyleWalking:
		return "walking"
	default:
		return "root"
	}
}

// MarshalText renders the style by name in JSON output
func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStyle maps "root", "alternating" or "walking" to a Style
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "root", "":
		return StyleRoot, nil
	case "alternating":
		return StyleAlternating, nil
	case "walking":
		return StyleWalking, nil
	}
	return StyleRoot, fmt.Errorf("unknown bass style %q", name)
}

// Role is the function of a bass note within its chord
type Role int

const (
	RoleRoot Role = iota
	RoleThird
	RoleFifth
	RoleConnector
)

func (r Role) String() string {
	switch r {
	case RoleThird:
		return "third"
	case RoleFifth:
		return "fifth"
	case RoleConnector:
		return "connector"
	default:
		return "root"
	}
}

// MarshalText renders the role by name in JSON output
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Note is one bass note
type Note struct {
	PitchClass theory.PitchClass `json:"pitch_class"`
	Octave     int               `json:"octave"`
	Role       Role              `json:"role"`
	ChordIndex int               `json:"chord_index"` // position in the input progression
}

// MIDI returns the MIDI note number (C4 = 60)
func (n Note) MIDI() int {
	return (n.Octave+1)*12 + int(n.PitchClass)
}

func (n Note) String() string {
	return fmt.Sprintf("%s%d", n.PitchClass.Name(), n.Octave)
}

// Line is a generated bass line. Skipped lists the indices of chord
// symbols that could not be parsed and produced no notes.
type Line struct {
	Notes   []Note `json:"notes"`
	Skipped []int  `json:"skipped,omitempty"`
}

// Generate derives a bass line in DefaultOctave
func Generate(progression []string, style Style) Line {
	return GenerateAt(progression, style, DefaultOctave)
}

// GenerateWalkingBass is Generate with StyleWalking
func GenerateWalkingBass(progression []string) Line {
	return Generate(progression, StyleWalking)
}

// GenerateAt derives a bass line with roots in the given octave
func GenerateAt(progression []string, style Style, octave int) Line {
	type entry struct {
		index int
		chord chords.Chord
	}

	var line Line
	parsed := make([]entry, 0, len(progression))
	for i, symbol := range progression {
		c, ok := chords.Parse(symbol)
		if !ok {
			line.Skipped = append(line.Skipped, i)
			continue
		}
		parsed = append(parsed, entry{i, c})
	}

	for j, e := range parsed {
		root := (octave+1)*12 + int(e.chord.Root)
		add := func(midi int, role Role) {
			line.Notes = append(line.Notes, fromMIDI(midi, role, e.index))
		}

		switch style {
		case StyleRoot:
			add(root, RoleRoot)

		case StyleAlternating:
			add(root, RoleRoot)
			add(root+theory.PerfectFifth, RoleFifth)

		case StyleWalking:
			add(root, RoleRoot)
			add(root+e.chord.Third(), RoleThird)
			add(root+e.chord.Fifth(), RoleFifth)

			// A whole step below the next root; none after the last chord
			if j+1 < len(parsed) {
				next := (octave+1)*12 + int(parsed[j+1].chord.Root)
				add(next-theory.MajorSecond, RoleConnector)
			}
		}
	}

	return line
}

func fromMIDI(midi int, role Role, chordIndex int) Note {
	n := theory.NoteFromMIDI(midi)
	return Note{
		PitchClass: n.PitchClass,
		Octave:     n.Octave,
		Role:       role,
		ChordIndex: chordIndex,
	}
}
