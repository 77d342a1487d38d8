package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fremen-fi/audioshell/internal/history"
	"github.com/fremen-fi/audioshell/internal/paths"
	"github.com/fremen-fi/audioshell/internal/worker"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var show string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if strings.TrimSpace(show) != "" {
				entry, err := store.Get(cmd.Context(), show)
				if err != nil {
					return err
				}
				printEntry(out, entry)
				return nil
			}

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(out, "No operations recorded yet in %s.\n", store.Path())
				return nil
			}
			fmt.Fprintln(out, renderHistory(entries, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list (0 for all)")
	cmd.Flags().StringVar(&show, "show", "", "Show one run, with its output, by id or id prefix")
	return cmd
}

func renderHistory(entries []history.Entry, now time.Time) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			shortID(e.ID),
			e.Request.Operation.Label(),
			e.Status(),
			paths.DisplayName(e.Request.InputPath),
			humanize.RelTime(e.StartedAt, now, "ago", "from now"),
			entryDuration(e),
			humanize.Bytes(uint64(len(e.Transcript))),
		})
	}
	return renderTable(
		[]string{"ID", "Operation", "Status", "Input", "Started", "Duration", "Output"},
		rows,
		5, 6,
	)
}

func printEntry(out io.Writer, e history.Entry) {
	fmt.Fprintf(out, "Run:        %s\n", e.ID)
	fmt.Fprintf(out, "Operation:  %s\n", e.Request.Operation.Label())
	fmt.Fprintf(out, "Input:      %s\n", e.Request.InputPath)
	fmt.Fprintf(out, "Output:     %s\n", e.Request.OutputPath)
	fmt.Fprintf(out, "Started:    %s (%s)\n", e.StartedAt.Format(time.DateTime), humanize.Time(e.StartedAt))
	fmt.Fprintf(out, "Status:     %s\n", e.Status())
	if e.Finished {
		fmt.Fprintf(out, "Duration:   %s\n", entryDuration(e))
		if !e.Canceled {
			fmt.Fprintf(out, "Exit code:  %d (%s)\n", e.ExitCode, worker.ExitReason(e.ExitCode))
		}
	}
	if e.Error != "" {
		fmt.Fprintf(out, "Error:      %s\n", e.Error)
	}
	if e.Transcript != "" {
		fmt.Fprintln(out)
		fmt.Fprint(out, e.Transcript)
		if !strings.HasSuffix(e.Transcript, "\n") {
			fmt.Fprintln(out)
		}
	}
}

func entryDuration(e history.Entry) string {
	if !e.Finished {
		return "-"
	}
	return e.FinishedAt.Sub(e.StartedAt).Round(time.Millisecond).String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
