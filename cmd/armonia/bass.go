package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/RyanBlaney/sonido-armonia/algorithms/bass"
	"github.com/spf13/cobra"
)

func newBassCmd(opts *rootOptions) *cobra.Command {
	var (
		style    string
		midiPath string
	)

	cmd := &cobra.Command{
		Use:   "bass <chord>...",
		Short: "Generate a bass line for a chord progression",
		Example: `  armonia bass C Am F G --style walking
  armonia bass C G --midi bass.mid`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := opts.engine.Bass(args, style)
			if err != nil {
				return err
			}

			if midiPath != "" {
				if err := writeMIDIFile(opts, midiPath, line); err != nil {
					return err
				}
			}

			return opts.print(cmd.OutOrStdout(), line, func(w io.Writer) {
				fmt.Fprintln(w, bassNames(line.Notes))
				if len(line.Skipped) > 0 {
					fmt.Fprintf(w, "skipped: %v\n", line.Skipped)
				}
				if midiPath != "" {
					fmt.Fprintf(w, "wrote %s\n", midiPath)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&style, "style", "s", "", "root, alternating or walking (default from config)")
	cmd.Flags().StringVar(&midiPath, "midi", "", "also write the line to this MIDI file")
	return cmd
}

func writeMIDIFile(opts *rootOptions, path string, line bass.Line) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := opts.engine.WriteBassMIDI(f, line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func bassNames(notes []bass.Note) string {
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = n.String()
	}
	return strings.Join(names, " ")
}
