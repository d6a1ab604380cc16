package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/RyanBlaney/sonido-armonia/config"
	"github.com/RyanBlaney/sonido-armonia/harmony"
	"github.com/RyanBlaney/sonido-armonia/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
	jsonOutput bool

	engine *harmony.Engine
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "armonia",
		Short: "Music theory engine",
		Long: `armonia names chords, infers keys, suggests the next chord and
writes bass lines, from chord symbols or from live spectral frames.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a JSON config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")

	cmd.AddCommand(
		newParseCmd(opts),
		newDetectCmd(opts),
		newKeyCmd(opts),
		newSuggestCmd(opts),
		newBassCmd(opts),
		newAnalyzeCmd(opts),
		newListenCmd(opts),
		newServeCmd(opts),
	)

	return cmd
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.NewDefaultLoggerWithWriters(cmd.ErrOrStderr(), cmd.ErrOrStderr())
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)

	o.engine, err = harmony.NewEngine(cfg)
	return err
}

// print writes v as indented JSON when --json is set, otherwise calls text
func (o *rootOptions) print(w io.Writer, v any, text func(io.Writer)) error {
	if !o.jsonOutput {
		text(w)
		return nil
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
