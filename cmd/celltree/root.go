package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	workers     int
	verbose     bool
	telemetry   bool
	coordSystem string
	payloadKind string
)

var rootCmd = &cobra.Command{
	Use:   "celltree",
	Short: "Build hierarchical cell trees over weighted point catalogs",
	Long: `celltree partitions a catalog of weighted points into a forest of
binary cell trees, the structure used by pair-correlation estimators to
compare whole cells instead of individual pairs.

Example usage:
  celltree build galaxies.csv --coords sphere --payload vector
  celltree build points.txt --config params.yaml --min-sep 1 --max-sep 100`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file with build parameters")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Number of parallel workers (0 = all CPUs)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log build progress to stderr")
	rootCmd.PersistentFlags().BoolVar(&telemetry, "telemetry", false, "Export build spans and metrics to stderr")
}

func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
