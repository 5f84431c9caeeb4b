package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/rfkit-dev/clockplan/internal/config"
	"github.com/rfkit-dev/clockplan/internal/domain/synth"
	"github.com/rfkit-dev/clockplan/internal/logger"
	"github.com/rfkit-dev/clockplan/internal/rational"
)

var (
	// ErrOutputDividerRange indicates no even-integer output multisynth exists
	// inside the output window for the requested lowest clock.
	ErrOutputDividerRange = errors.New("initial output multisynth is out of range")
	// ErrFeedbackDividerRange indicates no even-integer feedback multisynth
	// exists inside the feedback window for the reference frequency.
	ErrFeedbackDividerRange = errors.New("initial feedback multisynth is out of range")
)

// Search enumerates candidate frequency plans and streams them to a Reporter.
type Search struct {
	profile  *config.Profile
	reporter Reporter
}

// NewSearch creates a search bound to the given chip profile and reporter.
func NewSearch(profile *config.Profile, reporter Reporter) *Search {
	return &Search{
		profile:  profile,
		reporter: reporter,
	}
}

// Run executes the selected strategies over the reduced input, in order:
// fractional feedback first, integer feedback second. A fatal initial divider
// selection aborts the run; out-of-window candidates only skip themselves.
func (s *Search) Run(ctx context.Context, in synth.ReducedInput, strategy Strategy) error {
	s.reporter.ReportReduction(ctx, in)

	if strategy == StrategyBoth || strategy == StrategyFractionalFeedback {
		if err := s.runFractionalFeedback(ctx, in); err != nil {
			return err
		}
	}

	if strategy == StrategyBoth || strategy == StrategyIntegerFeedback {
		if err := s.runIntegerFeedback(ctx, in); err != nil {
			return err
		}
	}

	return nil
}

// runFractionalFeedback sweeps even-integer output multisynth values downward
// from the highest one the VCO ceiling allows, approximating the feedback
// multisynth for each candidate VCO frequency.
func (s *Search) runFractionalFeedback(ctx context.Context, in synth.ReducedInput) error {
	s.reporter.BeginStrategy(ctx, StrategyFractionalFeedback)

	outputMS := uint32(s.profile.MaxVCOFreq / in.ReducedClock0)
	outputMS -= outputMS % 2

	maxOutput := uint32(s.profile.MaxOutputRatio)
	if outputMS > maxOutput {
		outputMS = maxOutput - maxOutput%2
	}

	minOutput := uint32(s.profile.MinOutputRatio)
	if outputMS < minOutput {
		return fmt.Errorf("%w: %d (clock=%.0f Hz)", ErrOutputDividerRange, outputMS, in.Clocks[0])
	}

	for {
		vco := in.ReducedClock0 * float64(outputMS)
		if outputMS < minOutput || vco < s.profile.MinVCOFreq {
			break
		}

		feedback := vco / in.ReducedReference
		if feedback < s.profile.MinFeedbackRatio || feedback > s.profile.MaxFeedbackRatio {
			logger.DebugKV(ctx, "Feedback multisynth out of window, skipping candidate",
				"feedback", feedback, "output_ms", outputMS, "vco", vco)
			s.reporter.ReportInvalidFeedback(ctx, in, outputMS, feedback, vco)

			outputMS -= 2

			continue
		}

		fb := rational.Approximate(feedback, s.profile.MaxDenominator)
		pll := in.ReducedReference * fb.Value()

		clocks := make([]synth.ClockResult, 0, len(in.Clocks))

		achieved := pll / float64(outputMS) / float64(in.RDivisor())
		clocks = append(clocks, synth.ClockResult{
			Index:     0,
			Target:    in.Clocks[0],
			Divider:   synth.IntegerRatio(outputMS),
			Achieved:  achieved,
			Deviation: achieved - in.Clocks[0],
			Status:    synth.StatusAchieved,
		})
		clocks = append(clocks, s.additionalClocks(pll, in)...)

		s.reporter.ReportCandidate(ctx, synth.CandidatePlan{
			VCO:      vco,
			PLL:      pll,
			Feedback: fb,
			Clocks:   clocks,
		})

		outputMS -= 2
	}

	return nil
}

// runIntegerFeedback sweeps even-integer feedback multisynth values downward
// from the highest one the VCO ceiling allows. The PLL frequency is an exact
// integer multiple of the reference, so only output multisynth settings need
// approximation.
func (s *Search) runIntegerFeedback(ctx context.Context, in synth.ReducedInput) error {
	s.reporter.BeginStrategy(ctx, StrategyIntegerFeedback)

	feedbackMS := uint32(s.profile.MaxVCOFreq / in.ReducedReference)
	feedbackMS -= feedbackMS % 2

	if feedbackMS < s.profile.MinIntegerFeedback {
		return fmt.Errorf("%w: %d (reference=%.0f/%d Hz)",
			ErrFeedbackDividerRange, feedbackMS, in.Reference, in.ReferenceDivisor())
	}

	if maxFeedback := uint32(s.profile.MaxFeedbackRatio); feedbackMS > maxFeedback {
		feedbackMS = maxFeedback - maxFeedback%2
		if in.ReducedReference*float64(feedbackMS) < s.profile.MinVCOFreq {
			return fmt.Errorf("%w: %d (reference=%.0f/%d Hz)",
				ErrFeedbackDividerRange, feedbackMS, in.Reference, in.ReferenceDivisor())
		}
	}

	for {
		vco := in.ReducedReference * float64(feedbackMS)
		if feedbackMS < s.profile.MinIntegerFeedback || vco < s.profile.MinVCOFreq {
			break
		}

		// The feedback divider is an exact even integer, no approximation.
		pll := vco

		outputRatio := rational.Approximate(vco/in.ReducedClock0, s.profile.MaxDenominator)

		clocks := make([]synth.ClockResult, 0, len(in.Clocks))

		achieved := pll / outputRatio.Value() / float64(in.RDivisor())
		clocks = append(clocks, synth.ClockResult{
			Index:     0,
			Target:    in.Clocks[0],
			Divider:   outputRatio,
			Achieved:  achieved,
			Deviation: achieved - in.Clocks[0],
			Status:    synth.StatusAchieved,
		})
		clocks = append(clocks, s.additionalClocks(pll, in)...)

		s.reporter.ReportCandidate(ctx, synth.CandidatePlan{
			VCO:           vco,
			PLL:           pll,
			Feedback:      synth.IntegerRatio(feedbackMS),
			FeedbackExact: true,
			Clocks:        clocks,
		})

		feedbackMS -= 2
	}

	return nil
}

// additionalClocks evaluates every requested clock beyond the first against
// the achieved PLL frequency. A clock whose divider falls outside the output
// window cannot be synthesized from this candidate's VCO and is marked
// out of range instead of being dropped silently.
func (s *Search) additionalClocks(pll float64, in synth.ReducedInput) []synth.ClockResult {
	if len(in.Clocks) <= 1 {
		return nil
	}

	results := make([]synth.ClockResult, 0, len(in.Clocks)-1)

	for i := 1; i < len(in.Clocks); i++ {
		target := in.Clocks[i]
		ratio := rational.Approximate(pll/target, s.profile.MaxDenominator)

		value := ratio.Value()
		if value < s.profile.MinOutputRatio || value > s.profile.MaxOutputRatio {
			results = append(results, synth.ClockResult{
				Index:  i,
				Target: target,
				Status: synth.StatusOutOfRange,
			})

			continue
		}

		achieved := pll / value
		results = append(results, synth.ClockResult{
			Index:     i,
			Target:    target,
			Divider:   ratio,
			Achieved:  achieved,
			Deviation: achieved - target,
			Status:    synth.StatusAchieved,
		})
	}

	return results
}
