package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/daviddao/taskdawn/internal/batch"
	"github.com/daviddao/taskdawn/internal/display"
	"github.com/daviddao/taskdawn/internal/types"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recent runs from the ledger",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLedger()
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("no ledger configured; set 'ledger' in %s", configPathOrDefault())
		}
		defer store.Close()

		w := cmd.OutOrStdout()

		if len(args) == 1 {
			results, err := store.RunAccounts(args[0])
			if err != nil {
				return fmt.Errorf("run accounts: %w", err)
			}
			if jsonOutput {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			if len(results) == 0 {
				fmt.Fprintf(w, "No account results for run %s\n", args[0])
				return nil
			}
			for _, r := range results {
				printResult(w, r)
			}
			return nil
		}

		runs, err := store.RecentRuns(historyLimit)
		if err != nil {
			return fmt.Errorf("recent runs: %w", err)
		}
		if jsonOutput {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		fmt.Fprintln(w, display.Bold.Render("Task Dawn History"))
		fmt.Fprintln(w)
		if len(runs) == 0 {
			fmt.Fprintln(w, "  No runs recorded yet.")
			return nil
		}
		for _, s := range runs {
			status := display.Success.Render("✓")
			if s.ErrorCount > 0 {
				status = display.ErrStyle.Render("✗")
			} else if s.Skipped {
				status = display.Dim.Render("·")
			}
			fmt.Fprintf(w, "  %s %s  %-24s %s\n",
				status, s.RunID[:min(8, len(s.RunID))], batch.String(s),
				display.Dim.Render(display.TimeAgo(s.StartedAt)))
		}
		total, err := store.RunCount()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n  %d runs recorded\n", total)
		return nil
	},
}

func printResult(w io.Writer, r types.AccountResult) {
	if r.OK() {
		fmt.Fprintf(w, "  %s %-30s %d tasks\n", display.Success.Render("✓"), r.Account, r.TaskCount)
		return
	}
	fmt.Fprintf(w, "  %s %-30s %s: %s\n", display.ErrStyle.Render("✗"), r.Account, r.Stage, display.Truncate(r.Error, 80))
}

func configPathOrDefault() string {
	if configPath != "" {
		return configPath
	}
	return "your config"
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
