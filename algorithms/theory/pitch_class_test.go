package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoot(t *testing.T) {
	cases := []struct {
		in       string
		pc       PitchClass
		consumed int
		ok       bool
	}{
		{"C", 0, 1, true},
		{"C#m7", 1, 2, true},
		{"Bb", 10, 2, true},
		{"Cb", 11, 2, true},
		{"E#", 5, 2, true},
		{"Am", 9, 1, true},
		{"H", 0, 0, false},
		{"c", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			pc, n, ok := ParseRoot(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.pc, pc)
				assert.Equal(t, tc.consumed, n)
			}
		})
	}
}

func TestParseNote(t *testing.T) {
	n, ok := ParseNote("A4")
	assert.True(t, ok)
	assert.Equal(t, Note{PitchClass: 9, Octave: 4, HasOctave: true}, n)
	assert.Equal(t, 69, n.MIDI())

	n, ok = ParseNote("Eb")
	assert.True(t, ok)
	assert.False(t, n.HasOctave)
	assert.Equal(t, "D#", n.String())

	_, ok = ParseNote("A4x")
	assert.False(t, ok)
}

func TestFrequencyToMIDI(t *testing.T) {
	assert.Equal(t, 69, FrequencyToMIDI(440))
	assert.Equal(t, 69, FrequencyToMIDI(440.41))
	assert.Equal(t, 60, FrequencyToMIDI(261.63))
	assert.Equal(t, 57, FrequencyToMIDI(220))
	assert.InDelta(t, 261.63, MIDIToFrequency(60), 0.01)
}

func TestNoteFromMIDI(t *testing.T) {
	assert.Equal(t, "A4", NoteFromMIDI(69).String())
	assert.Equal(t, "C4", NoteFromMIDI(60).String())
	assert.Equal(t, "B3", NoteFromMIDI(59).String())
	assert.Equal(t, "C-1", NoteFromMIDI(0).String())
}

func TestTransposeWraps(t *testing.T) {
	assert.Equal(t, PitchClass(2), PitchClass(7).Transpose(PerfectFifth))
	assert.Equal(t, PitchClass(10), PitchClass(0).Transpose(-MajorSecond))
	assert.Equal(t, 7, PitchClass(0).IntervalTo(7))
	assert.Equal(t, 5, PitchClass(7).IntervalTo(0))
	assert.Equal(t, 11, Mod(-1, 12))
}
