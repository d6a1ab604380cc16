package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/RyanBlaney/sonido-armonia/algorithms/keys"
	"github.com/RyanBlaney/sonido-armonia/algorithms/progression"
	"github.com/spf13/cobra"
)

func newKeyCmd(opts *rootOptions) *cobra.Command {
	var candidates int

	cmd := &cobra.Command{
		Use:   "key <chord>...",
		Short: "Infer the key of a chord progression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if candidates < 0 {
				return fmt.Errorf("candidates must not be negative, got %d", candidates)
			}
			ranked := opts.engine.RankKeys(args)
			if len(ranked) == 0 {
				return errors.New("progression is empty")
			}
			shown := ranked[:min(len(ranked), candidates+1)]

			return opts.print(cmd.OutOrStdout(), shown, func(w io.Writer) {
				for _, k := range shown {
					fmt.Fprintf(w, "%s\t%.0f\t%s\n", k.Name, k.Score, diatonicSymbols(k))
				}
			})
		},
	}

	cmd.Flags().IntVarP(&candidates, "candidates", "n", 0, "also print this many runner-up keys")
	return cmd
}

func diatonicSymbols(k keys.Key) string {
	symbols := make([]string, len(k.DiatonicChords))
	for i, d := range k.DiatonicChords {
		symbols[i] = d.Symbol
	}
	return strings.Join(symbols, " ")
}

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	var keyName string

	cmd := &cobra.Command{
		Use:   "suggest <chord>",
		Short: "Rank likely next chords",
		Example: `  armonia suggest G7 --key "C major"
  armonia suggest Am`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, suggestions, ok := opts.engine.Suggest(args[0], keyName)
			if !ok {
				return fmt.Errorf("cannot suggest after %q in key %q", args[0], keyName)
			}

			out := struct {
				Key         string                   `json:"key"`
				Suggestions []progression.Suggestion `json:"suggestions"`
			}{key.Name, suggestions}

			return opts.print(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintf(w, "key: %s\n", key.Name)
				printSuggestions(w, suggestions)
			})
		},
	}

	cmd.Flags().StringVarP(&keyName, "key", "k", "", `key name such as "C major"; derived from the chord when empty`)
	return cmd
}

func printSuggestions(w io.Writer, suggestions []progression.Suggestion) {
	for _, s := range suggestions {
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\n", s.Chord, s.Probability, s.Function, s.Reason)
	}
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "analyze <chord>...",
		Short: "Key, next-chord suggestions and bass line for a progression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.engine.Analyze(args, style)
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), a, func(w io.Writer) {
				fmt.Fprintf(w, "key: %s\n", a.Key.Name)
				printSuggestions(w, a.Suggestions)
				fmt.Fprintf(w, "bass: %s\n", bassNames(a.Bass.Notes))
			})
		},
	}

	cmd.Flags().StringVarP(&style, "style", "s", "", "bass style: root, alternating or walking")
	return cmd
}
