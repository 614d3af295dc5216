package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/studiowebux/liftload/internal/cli"
	"github.com/studiowebux/liftload/internal/logging"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "liftload",
	Short: "Phased load generator for the skier lift-ride API",
	Long: `liftload drives a skier lift-ride API through three overlapping phases:
a warm-up with a quarter of the workers, a peak with all of them and a
cool-down with a quarter again. Each phase starts once 10% of the previous
phase's workers have finished their writes.

Examples:
  liftload run                                   # Run with defaults against localhost:8080
  liftload run --maxThreadCount 64 --skierCount 20000
  liftload run -c liftload.yaml --metrics-addr :9100
  liftload history                               # List past runs
  liftload history show 1a2b3c4d                 # Show one run
  liftload mock --port 8080 --failure-rate 0.05  # Local stand-in for the API`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a three-phase load run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig(cmd.Flags())
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		_, err = cli.Run(ctx, cfg, logger, cli.RunOptions{Stdout: cmd.OutOrStdout()})
		return err
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ListHistory(cli.HistoryOptions{Limit: historyLimit, Stdout: cmd.OutOrStdout()})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run by ID or ID prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ShowHistory(args[0], cli.HistoryOptions{Stdout: cmd.OutOrStdout()})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one run by ID or ID prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.DeleteHistory(args[0], cli.HistoryOptions{Yes: historyYes, Stdout: cmd.OutOrStdout()})
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve a local stand-in for the skier API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadMockConfig(cmd.Flags())
		if err != nil {
			return err
		}

		level, _ := cmd.Flags().GetString("log-level")
		logger, err := logging.New(level, "console")
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.RunMock(ctx, cfg, logger)
	},
}

// Flags for history
var (
	historyLimit int
	historyYes   bool
)

func init() {
	cli.RegisterRunFlags(runCmd.Flags())
	cli.RegisterMockFlags(mockCmd.Flags())

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show (0 = all)")
	historyDeleteCmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "Skip the confirmation prompt")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mockCmd)
}
