package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"award_cpp/internal/adapters/observability"
	"award_cpp/internal/shared"
)

var (
	cfg        = shared.Load()
	sourceMode string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "scout values award flights against their cash fares in cents per point.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// logs go to stderr so stdout carries only the report
		log.Logger = observability.NewLoggerTo(os.Stderr, cfg.AppEnv, verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sourceMode, "source", cfg.SourceMode, "observation source: api, page, replay or auto")
	rootCmd.PersistentFlags().StringVar(&cfg.ReplayDir, "replay-dir", cfg.ReplayDir, "directory of recorded searches")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
