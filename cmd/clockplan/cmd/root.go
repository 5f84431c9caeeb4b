package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rfkit-dev/clockplan/internal/domain/synth"
	"github.com/rfkit-dev/clockplan/internal/logger"
	"github.com/rfkit-dev/clockplan/internal/service/planner"
	"github.com/rfkit-dev/clockplan/internal/version"
)

const maxClockArgs = 3

var (
	// configPath stores the path to an optional chip profile YAML file.
	configPath string
	// logLevel selects the diagnostic log level on stderr.
	logLevel string
	// strategyName selects which search strategies to run.
	strategyName string

	// rootCmd represents the base command for computing frequency plans.
	rootCmd = &cobra.Command{
		Use:   "clockplan <reference-hz> <clock0-hz> [clock1-hz [clock2-hz]]",
		Short: "Compute Si5351 frequency plans for up to three output clocks.",
		Long: `Computes divider settings for the Si5351 clock synthesizer: given a reference
(XTAL/CLKIN) frequency and up to three target output frequencies, searches for
feedback and output multisynth settings that reproduce the targets as closely
as possible.

Frequencies are given in Hz. The first clock must be the lowest requested one;
it drives the VCO sweep. Two strategies are searched: a fractional feedback
multisynth with even-integer output dividers, and even-integer feedback
multisynth values with fractional output dividers. All structurally valid
candidates are printed so the best plan can be picked from the report.

The chip operating limits default to the Si5351 datasheet values and can be
overridden with a YAML profile for experiments.`,
		Args: cobra.RangeArgs(2, maxClockArgs+1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Allow aborting a run from the terminal.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			strategy, ok := planner.ParseStrategy(strategyName)
			if !ok {
				return fmt.Errorf("unknown strategy %q", strategyName)
			}

			reference, err := parseFrequency(args[0], "reference")
			if err != nil {
				return err
			}

			clocks := make([]synth.Frequency, 0, len(args)-1)

			for i, arg := range args[1:] {
				clock, err := parseFrequency(arg, fmt.Sprintf("clock %d", i))
				if err != nil {
					return err
				}

				clocks = append(clocks, clock)
			}

			options := &planner.Options{
				ConfigPath: configPath,
				Reference:  reference,
				Clocks:     clocks,
				Strategy:   strategy,
				Out:        os.Stdout,
			}

			return planner.Run(ctx, options)
		},
	}
)

// parseFrequency converts a positional argument to a positive frequency in Hz.
func parseFrequency(arg, name string) (synth.Frequency, error) {
	value, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s frequency %q: %w", name, arg, err)
	}

	if value <= 0 {
		return 0, fmt.Errorf("invalid %s frequency %q: must be positive", name, arg)
	}

	return value, nil
}

// Execute runs the clockplan CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a chip profile YAML file (defaults to built-in Si5351 limits)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "diagnostic log level (debug, info, warn, error, fatal)")
	rootCmd.Flags().StringVarP(&strategyName, "strategy", "s", "both", "search strategy: both, fractional-feedback or integer-feedback")
}
