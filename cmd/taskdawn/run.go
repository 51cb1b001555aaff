package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/daviddao/taskdawn/internal/batch"
	"github.com/daviddao/taskdawn/internal/config"
	"github.com/daviddao/taskdawn/internal/types"
	"github.com/spf13/cobra"
)

var (
	runForce    bool
	runDryRun   bool
	runAccounts []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Send today's digest to every account",
	Long: `Fetch open tasks from every configured account, rank them, and email each
account holder their digest. Accounts are processed one at a time; a failure
in one account is reported and the rest continue. Runs are skipped on
weekends unless --force is given or weekdays_only is false.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			// Config failed to load on a weekend; only the day gate can run.
			if !batch.IsWeekend(time.Now()) {
				return configErr
			}
			return report(cmd, weekendRunner().Run(cmd.Context(), nil))
		}

		accounts, err := cfg.Select(runAccounts...)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			out = os.Stderr
		}

		r := runRunner(cfg, runDryRun, runForce, out)

		if !runDryRun {
			store, err := openLedger()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				r.Recorder = store
			}
		}

		return report(cmd, r.Run(cmd.Context(), accounts))
	},
}

// runRunner configures the runner for one invocation of run. Dry runs print
// digests and leave Google Tasks untouched.
func runRunner(c *config.Config, dryRun, force bool, out io.Writer) *batch.Runner {
	r := newRunner(c)
	r.Senders = senders(c, dryRun, out)
	r.Force = force
	r.ReadOnly = dryRun
	return r
}

// weekendRunner only applies the weekday gate.
func weekendRunner() *batch.Runner {
	return &batch.Runner{WeekdaysOnly: true, Logger: log, Printer: printer}
}

func report(cmd *cobra.Command, summary *types.RunSummary) error {
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	if quietFlag && summary.ErrorCount > 0 {
		printer.ErrorMsg("%s", batch.String(summary))
	}
	return nil
}

func init() {
	runCmd.Flags().BoolVar(&runForce, "force", false, "Run even on weekends")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Print digests instead of sending them")
	runCmd.Flags().StringSliceVar(&runAccounts, "account", nil, "Only process these account emails")
	rootCmd.AddCommand(runCmd)
}
