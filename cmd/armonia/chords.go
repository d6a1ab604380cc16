package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chords"
	"github.com/spf13/cobra"
)

func newParseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <chord>...",
		Short: "Parse chord symbols into root, quality and notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]chords.Chord, 0, len(args))
			for _, symbol := range args {
				c, ok := opts.engine.ParseChord(symbol)
				if !ok {
					return fmt.Errorf("cannot parse chord %q", symbol)
				}
				parsed = append(parsed, c)
			}

			return opts.print(cmd.OutOrStdout(), parsed, func(w io.Writer) {
				for _, c := range parsed {
					line := fmt.Sprintf("%s\t%s\t%s", c.Symbol, c.Quality, strings.Join(c.NoteNames(), " "))
					if c.HasBass {
						line += "\tbass " + c.Bass.Name()
					}
					fmt.Fprintln(w, line)
				}
			})
		},
	}
}

func newDetectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <note>...",
		Short: "Name the chord formed by a set of notes",
		Example: `  armonia detect C E G
  armonia detect A3 C4 E4 G4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := opts.engine.DetectChord(args)
			if !ok {
				return fmt.Errorf("no chord matches %s (need %d distinct notes)", strings.Join(args, " "), chords.MinNotes)
			}

			return opts.print(cmd.OutOrStdout(), m, func(w io.Writer) {
				fmt.Fprintf(w, "%s\t%.2f\n", m.Chord.Symbol, m.Score)
			})
		},
	}
}
