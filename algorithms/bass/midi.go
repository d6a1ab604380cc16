package bass

import (
	"errors"
	"fmt"
	"io"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrEmptyLine is returned when writing a line without notes
var ErrEmptyLine = errors.New("bass line has no notes")

const (
	ticksPerQuarter = 480
	midiChannel     = 0
	midiVelocity    = 100
	DefaultBPM      = 100.0
)

// WriteMIDI writes the line as a single-track Standard MIDI File with one
// quarter note per bass note
func (l Line) WriteMIDI(w io.Writer, bpm float64) error {
	if len(l.Notes) == 0 {
		return ErrEmptyLine
	}
	if bpm <= 0 {
		bpm = DefaultBPM
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var track smf.Track
	track.Add(0, smf.MetaMeter(4, 4))
	track.Add(0, smf.MetaTempo(bpm))
	for _, n := range l.Notes {
		key := uint8(n.MIDI())
		track.Add(0, midi.NoteOn(midiChannel, key, midiVelocity))
		track.Add(ticksPerQuarter, midi.NoteOff(midiChannel, key))
	}
	track.Close(0)

	if err := s.Add(track); err != nil {
		return fmt.Errorf("failed to add bass track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write MIDI file: %w", err)
	}
	return nil
}
