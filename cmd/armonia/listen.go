package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/RyanBlaney/sonido-armonia/listen"
	"github.com/RyanBlaney/sonido-armonia/server"
	"github.com/spf13/cobra"
)

func newListenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "listen <file>",
		Short: "Replay an audio file through a listening session and print chord changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			var onChange func(listen.Sample)
			if !opts.jsonOutput {
				onChange = func(s listen.Sample) {
					fmt.Fprintf(out, "%s\t%s\t%.2f\n", s.Timestamp.Format("15:04:05.000"), s.ChordName, s.Confidence)
				}
			}

			changes, err := opts.engine.ListenFile(ctx, args[0], onChange)
			if err != nil && ctx.Err() == nil {
				return err
			}

			return opts.print(out, changes, func(w io.Writer) {
				fmt.Fprintf(w, "%d chord changes\n", len(changes))
			})
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine over HTTP JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = opts.engine.Config().Server.Addr
			}

			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt)
			defer stop()

			return server.New(opts.engine).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
