package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/fremen-fi/audioshell/internal/launcher"
	"github.com/fremen-fi/audioshell/internal/operation"
	"github.com/fremen-fi/audioshell/internal/paths"
	"github.com/fremen-fi/audioshell/internal/worker"
)

var errOperationFailed = errors.Base("Operation FAILED!")

func newRunCommand(ctx *commandContext) *cobra.Command {
	var input, output, op string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one operation without opening the window",
		Example: `  audioshell run --input ~/takes/take1.wav --operation split
  audioshell run -i ~/takes -o ~/exports -p convert`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closer, err := ctx.newLogger(io.Discard)
			if err != nil {
				return err
			}
			defer closer.Close()

			store, err := ctx.openHistory()
			if err != nil {
				logger.Warn().Err(err).Msg("history unavailable")
			}
			if store != nil {
				defer store.Close()
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			workerCmd, err := worker.Resolve(cfg.Worker)
			if err != nil {
				return err
			}
			l, err := ctx.newLauncher(workerCmd, logger, store)
			if err != nil {
				return err
			}

			if strings.TrimSpace(output) == "" && strings.TrimSpace(input) != "" {
				if output, err = paths.DefaultOutput(input); err != nil {
					return err
				}
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, err := l.Submit(runCtx, operation.Request{
				InputPath:  input,
				OutputPath: output,
				Operation:  operation.Parse(op),
			})
			if err != nil {
				return err
			}
			outcome := relayEvents(events, cmd.OutOrStdout(), cmd.ErrOrStderr())
			switch {
			case outcome.Canceled:
				fmt.Fprintln(cmd.ErrOrStderr(), "Operation canceled.")
				return errors.WithStack(context.Canceled)
			case !outcome.Success:
				return errors.WithStack(errOperationFailed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input audio file or folder")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output folder (defaults to the input's folder)")
	cmd.Flags().StringVarP(&op, "operation", "p", "", "Operation: "+strings.Join(operation.Names(), ", "))
	_ = cmd.RegisterFlagCompletionFunc("operation", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return operation.Names(), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// relayEvents copies worker output to stdout and stderr until the run
// finishes and returns its outcome. Stderr chunks are printed in red.
func relayEvents(events <-chan launcher.Event, stdout, stderr io.Writer) launcher.Outcome {
	red := color.New(color.FgRed)
	var outcome launcher.Outcome
	for ev := range events {
		switch ev.Kind {
		case launcher.EventOutput:
			if ev.Chunk.Stream == worker.Stderr {
				_, _ = red.Fprint(stderr, ev.Chunk.Text)
			} else {
				_, _ = io.WriteString(stdout, ev.Chunk.Text)
			}
		case launcher.EventFinished:
			outcome = ev.Outcome
		}
	}
	return outcome
}
