package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daviddao/taskdawn/internal/batch"
	"github.com/daviddao/taskdawn/internal/config"
	"github.com/daviddao/taskdawn/internal/db"
	"github.com/daviddao/taskdawn/internal/display"
	"github.com/daviddao/taskdawn/internal/logger"
	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	configPath string
	jsonOutput bool
	quietFlag  bool
	logLevel   string

	cfg     *config.Config
	log     *slog.Logger
	printer *display.Printer

	// configErr holds a load failure deferred until run has checked the day.
	configErr error
)

var rootCmd = &cobra.Command{
	Use:           "taskdawn",
	Short:         "taskdawn - Daily Google Tasks digest by email",
	Long:          "Task Dawn: gather open Google Tasks across accounts, rank them, and mail each owner a morning digest.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		printer = display.NewPrinter(quietFlag || jsonOutput)

		// Skip config for commands that don't need it
		switch cmd.Name() {
		case "init", "help", "version", "completion":
			log = logger.Setup(logLevel, os.Stderr)
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			log = logger.Setup(logLevel, os.Stderr)
			return nil
		}

		path := configPath
		if path == "" {
			path = os.Getenv("TASKDAWN_CONFIG")
		}
		if path == "" {
			path = config.DefaultPath()
		}

		var err error
		cfg, err = config.Load(path)
		if err != nil {
			if errors.Is(err, config.ErrNotFound) {
				err = fmt.Errorf("%w (run 'taskdawn init' to create one)", err)
			}
			if skipsWithoutConfig(cmd.Name(), runForce, time.Now()) {
				cfg, configErr = nil, err
				log = logger.Setup(logLevel, os.Stderr)
				log.Debug("config not loaded, run will be skipped", "path", path, "error", err)
				return nil
			}
			return err
		}

		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		log = logger.Setup(level, os.Stderr)
		log.Debug("config loaded", "path", path, "accounts", len(cfg.Accounts))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "taskdawn version %s\n", Version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.WriteExample(path); err != nil {
			if errors.Is(err, os.ErrExist) {
				return fmt.Errorf("%s already exists", path)
			}
			return err
		}
		if !quietFlag {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote example config to %s\n", path)
			fmt.Fprintln(cmd.OutOrStdout(), "Fill in each account's client id, client secret and refresh token, then run 'taskdawn run --dry-run'.")
		}
		return nil
	},
}

// openLedger opens the run ledger if one is configured.
// skipsWithoutConfig reports whether cmd would be skipped as a weekend run
// before any config is needed.
func skipsWithoutConfig(cmd string, force bool, now time.Time) bool {
	return cmd == "run" && !force && batch.IsWeekend(now)
}

func openLedger() (*db.DB, error) {
	if cfg == nil || cfg.Ledger == "" {
		return nil, nil
	}
	store, err := db.Open(cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return store, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $TASKDAWN_CONFIG or ~/.config/taskdawn/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		display.NewPrinter(false).ErrorMsg("%v", err)
		stop()
		os.Exit(1)
	}
}
