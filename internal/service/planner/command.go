package planner

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rfkit-dev/clockplan/internal/config"
	"github.com/rfkit-dev/clockplan/internal/domain/synth"
	"github.com/rfkit-dev/clockplan/internal/logger"
)

// Options controls one planning run.
type Options struct {
	// ConfigPath specifies the path to a chip profile YAML file.
	// When empty, the built-in Si5351 profile is used.
	ConfigPath string
	// Reference is the reference (XTAL/CLKIN) frequency in Hz.
	Reference synth.Frequency
	// Clocks are the requested output frequencies in Hz, lowest first.
	Clocks []synth.Frequency
	// Strategy selects which search strategies to run.
	Strategy Strategy
	// Out receives the plan report. Defaults to os.Stdout.
	Out io.Writer
}

// Run computes and reports frequency plans for the requested clocks.
// It loads the chip profile, validates and range-reduces the request, then
// runs the selected search strategies, streaming candidates as a text report.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "planner")

	profile, err := loadProfile(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	in, err := Reduce(profile, opts.Reference, opts.Clocks)
	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "Range reduction applied",
		"reference", in.Reference,
		"reduced_reference", in.ReducedReference,
		"clkin_div", in.ClkinDiv,
		"reduced_clock0", in.ReducedClock0,
		"r_div", in.RDiv)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	search := NewSearch(profile, NewTextReporter(out, profile.ClockTolerance))

	return search.Run(ctx, in, opts.Strategy)
}

// loadProfile returns the built-in profile or the YAML override at path.
func loadProfile(path string) (*config.Profile, error) {
	if path == "" {
		return config.Default(), nil
	}

	return config.Load(path)
}
