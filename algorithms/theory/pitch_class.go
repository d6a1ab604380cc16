package theory

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/exp/constraints"
)

// PitchClass is a note identity modulo the octave (0=C, 1=C#, ..., 11=B)
type PitchClass int

// Intervals in semitones
const (
	Unison        = 0
	MinorSecond   = 1
	MajorSecond   = 2
	MinorThird    = 3
	MajorThird    = 4
	PerfectFourth = 5
	Tritone       = 6
	PerfectFifth  = 7
	MinorSixth    = 8
	MajorSixth    = 9
	MinorSeventh  = 10
	MajorSeventh  = 11
	Octave        = 12
)

// Reference tuning
const (
	A4Frequency = 440.0
	A4MIDI      = 69
)

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var naturals = map[byte]PitchClass{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// Mod is a non-negative modulo
func Mod[T constraints.Integer](v, n T) T {
	r := v % n
	if r < 0 {
		r += n
	}
	return r
}

// Name returns the sharp spelling of the pitch class
func (pc PitchClass) Name() string {
	return pitchClassNames[Mod(int(pc), 12)]
}

func (pc PitchClass) String() string {
	return pc.Name()
}

// Transpose moves the pitch class by the given number of semitones
func (pc PitchClass) Transpose(semitones int) PitchClass {
	return PitchClass(Mod(int(pc)+semitones, 12))
}

// IntervalTo returns the upward distance in semitones from pc to other (0-11)
func (pc PitchClass) IntervalTo(other PitchClass) int {
	return Mod(int(other)-int(pc), 12)
}

// PitchClassNames returns the 12 sharp spellings starting at C
func PitchClassNames() []string {
	return pitchClassNames[:]
}

// ParseRoot reads a note letter plus an optional '#' or 'b' accidental from
// the start of s. It returns the pitch class and the number of bytes consumed.
func ParseRoot(s string) (PitchClass, int, bool) {
	if len(s) == 0 {
		return 0, 0, false
	}

	pc, ok := naturals[s[0]]
	if !ok {
		return 0, 0, false
	}

	if len(s) > 1 {
		switch s[1] {
		case '#':
			return pc.Transpose(1), 2, true
		case 'b':
			return pc.Transpose(-1), 2, true
		}
	}

	return pc, 1, true
}

// Note is a pitch class with an optional octave
type Note struct {
	PitchClass PitchClass `json:"pitch_class"`
	Octave     int        `json:"octave"`
	HasOctave  bool       `json:"has_octave"`
}

// ParseNote parses "A", "Bb", "C#4" or "Eb-1"
func ParseNote(s string) (Note, bool) {
	pc, n, ok := ParseRoot(s)
	if !ok {
		return Note{}, false
	}

	rest := s[n:]
	if rest == "" {
		return Note{PitchClass: pc}, true
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return Note{}, false
	}

	return Note{PitchClass: pc, Octave: octave, HasOctave: true}, true
}

// String formats the note as "A4" (or "A" without an octave)
func (n Note) String() string {
	if !n.HasOctave {
		return n.PitchClass.Name()
	}
	return fmt.Sprintf("%s%d", n.PitchClass.Name(), n.Octave)
}

// MIDI returns the MIDI note number with C4 = 60
func (n Note) MIDI() int {
	return (n.Octave+1)*12 + int(n.PitchClass)
}

// NoteFromMIDI converts a MIDI note number to a note with octave
func NoteFromMIDI(midi int) Note {
	return Note{
		PitchClass: PitchClass(Mod(midi, 12)),
		Octave:     int(math.Floor(float64(midi)/12.0)) - 1,
		HasOctave:  true,
	}
}

// FrequencyToMIDI quantizes a frequency to the nearest equal-tempered semitone
func FrequencyToMIDI(freq float64) int {
	return int(math.Round(12.0*math.Log2(freq/A4Frequency) + A4MIDI))
}

// MIDIToFrequency returns the equal-tempered frequency of a MIDI note
func MIDIToFrequency(midi int) float64 {
	return A4Frequency * math.Pow(2.0, float64(midi-A4MIDI)/12.0)
}
