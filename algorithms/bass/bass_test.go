package bass

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

func noteNames(line Line) []string {
	names := make([]string, len(line.Notes))
	for i, n := range line.Notes {
		names[i] = n.String()
	}
	return names
}

func roles(line Line) []Role {
	out := make([]Role, len(line.Notes))
	for i, n := range line.Notes {
		out[i] = n.Role
	}
	return out
}

func TestWalkingBassTwoChords(t *testing.T) {
	line := GenerateWalkingBass([]string{"C", "G"})

	require.Len(t, line.Notes, 7)
	assert.Equal(t, []string{"C2", "E2", "G2", "F2", "G2", "B2", "D3"}, noteNames(line))
	assert.Equal(t, []Role{
		RoleRoot, RoleThird, RoleFifth, RoleConnector,
		RoleRoot, RoleThird, RoleFifth,
	}, roles(line))
	assert.Empty(t, line.Skipped)
}

func TestWalkingBassQualityCorrectTones(t *testing.T) {
	tests := []struct {
		chord string
		want  []string
	}{
		{"Am", []string{"A2", "C3", "E3"}},
		{"Bdim", []string{"B2", "D3", "F3"}},
		{"Caug", []string{"C2", "E2", "G#2"}},
		{"Dm7b5", []string{"D2", "F2", "G#2"}},
		{"G7", []string{"G2", "B2", "D3"}},
	}

	for _, tt := range tests {
		t.Run(tt.chord, func(t *testing.T) {
			line := GenerateWalkingBass([]string{tt.chord})
			assert.Equal(t, tt.want, noteNames(line))
		})
	}
}

func TestRootStyle(t *testing.T) {
	line := Generate([]string{"C", "Am", "F", "G"}, StyleRoot)
	assert.Equal(t, []string{"C2", "A2", "F2", "G2"}, noteNames(line))
	for i, n := range line.Notes {
		assert.Equal(t, RoleRoot, n.Role)
		assert.Equal(t, i, n.ChordIndex)
	}
}

func TestAlternatingStyle(t *testing.T) {
	line := Generate([]string{"A", "Dm"}, StyleAlternating)
	assert.Equal(t, []string{"A2", "E3", "D2", "A2"}, noteNames(line))
	assert.Equal(t, []Role{RoleRoot, RoleFifth, RoleRoot, RoleFifth}, roles(line))
}

func TestUnparsableChordsAreSkipped(t *testing.T) {
	line := GenerateWalkingBass([]string{"C", "xyz", "G", ""})

	assert.Equal(t, []int{1, 3}, line.Skipped)
	assert.Equal(t, []string{"C2", "E2", "G2", "F2", "G2", "B2", "D3"}, noteNames(line))
	assert.Equal(t, 2, line.Notes[4].ChordIndex)
}

func TestGenerateAtOctave(t *testing.T) {
	line := GenerateAt([]string{"E"}, StyleRoot, 1)
	require.Len(t, line.Notes, 1)
	assert.Equal(t, 28, line.Notes[0].MIDI())
}

func TestParseStyle(t *testing.T) {
	for name, want := range map[string]Style{
		"root":        StyleRoot,
		"":            StyleRoot,
		"Alternating": StyleAlternating,
		" walking ":   StyleWalking,
	} {
		got, err := ParseStyle(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}

	_, err := ParseStyle("slap")
	assert.Error(t, err)
}

func TestWriteMIDI(t *testing.T) {
	line := GenerateWalkingBass([]string{"C", "G"})

	var buf bytes.Buffer
	require.NoError(t, line.WriteMIDI(&buf, 120))

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	var keys []int
	for _, track := range s.Tracks {
		for _, evt := range track {
			var channel, key, velocity uint8
			if evt.Message.GetNoteOn(&channel, &key, &velocity) {
				keys = append(keys, int(key))
			}
		}
	}

	want := make([]int, len(line.Notes))
	for i, n := range line.Notes {
		want[i] = n.MIDI()
	}
	assert.Equal(t, want, keys)
}

func TestWriteMIDIEmptyLine(t *testing.T) {
	var buf bytes.Buffer
	err := Line{}.WriteMIDI(&buf, 120)
	assert.ErrorIs(t, err, ErrEmptyLine)
	assert.Zero(t, buf.Len())
}
