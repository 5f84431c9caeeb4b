package planner

import (
	"context"
	"fmt"
	"io"

	"github.com/rfkit-dev/clockplan/internal/domain/synth"
)

// Reporter consumes the search output as it is produced. Candidates arrive in
// search order: the fractional-feedback strategy in full, then the
// integer-feedback strategy, each sweeping its divider downward.
type Reporter interface {
	// ReportReduction is called once before any strategy runs with the
	// range-reduced view of the request.
	ReportReduction(ctx context.Context, in synth.ReducedInput)
	// BeginStrategy is called when a strategy starts sweeping.
	BeginStrategy(ctx context.Context, strategy Strategy)
	// ReportCandidate is called for every structurally valid candidate plan.
	ReportCandidate(ctx context.Context, plan synth.CandidatePlan)
	// ReportInvalidFeedback is called when a swept output multisynth value
	// implies a feedback ratio outside the feedback window; the candidate is
	// skipped but the sweep continues.
	ReportInvalidFeedback(ctx context.Context, in synth.ReducedInput, outputMS uint32, feedback float64, vco synth.Frequency)
}

// TextReporter renders the search output as a plain-text report, one block per
// candidate, in the style of the classic si5351 planning tools.
type TextReporter struct {
	out       io.Writer
	tolerance float64
	in        synth.ReducedInput
}

// NewTextReporter creates a text reporter writing to out. Deviations at or
// above tolerance are flagged with a difference line.
func NewTextReporter(out io.Writer, tolerance float64) *TextReporter {
	return &TextReporter{
		out:       out,
		tolerance: tolerance,
	}
}

// ReportReduction prints the CLKIN divider when one was applied and remembers
// the reduced input for the per-candidate lines.
func (r *TextReporter) ReportReduction(_ context.Context, in synth.ReducedInput) {
	r.in = in

	if in.ClkinDiv > 0 {
		fmt.Fprintf(r.out, "--> CLKIN_DIV=%d\n\n", in.ClkinDiv)
	}
}

// BeginStrategy prints the scenario header.
func (r *TextReporter) BeginStrategy(_ context.Context, strategy Strategy) {
	switch strategy {
	case StrategyFractionalFeedback:
		fmt.Fprintf(r.out, "first scenario - N-frac for feedback MS and even integer for output MS\n\n")
	case StrategyIntegerFeedback:
		fmt.Fprintf(r.out, "\nsecond scenario - even integer for feedback MS and N-frac for output MS\n\n")
	}
}

// ReportCandidate prints one candidate block: the achieved PLL frequency, the
// achieved clock 0 and every further achievable clock, with difference lines
// for clocks that miss their target beyond the tolerance. Out-of-range clocks
// are omitted from the block.
func (r *TextReporter) ReportCandidate(_ context.Context, plan synth.CandidatePlan) {
	if plan.FeedbackExact {
		fmt.Fprintf(r.out, "actual PLL frequency: %.0f/%d * %d\n",
			r.in.Reference, r.in.ReferenceDivisor(), plan.Feedback.A)
		fmt.Fprintf(r.out, "actual PLL frequency: %.0f\n", plan.PLL)
	} else {
		fmt.Fprintf(r.out, "actual PLL frequency: %.0f/%d * (%s) = %.0f%s\n",
			r.in.Reference, r.in.ReferenceDivisor(), plan.Feedback, plan.PLL, integerSuffix(plan.Feedback))
	}

	for _, clock := range plan.Clocks {
		if clock.Status != synth.StatusAchieved {
			continue
		}

		r.printClock(plan, clock)

		if clock.Flagged(r.tolerance) {
			fmt.Fprintf(r.out, "*** clock %d difference: %g\n", clock.Index, clock.Deviation)
		}
	}

	fmt.Fprintln(r.out)
}

// printClock renders one achieved clock line. Clock 0 folds in the R divider;
// further clocks divide the PLL frequency by their fractional setting directly.
func (r *TextReporter) printClock(plan synth.CandidatePlan, clock synth.ClockResult) {
	switch {
	case clock.Index > 0:
		fmt.Fprintf(r.out, "actual clock %d: %.0f / (%s) = %.0f%s\n",
			clock.Index, plan.PLL, clock.Divider, clock.Achieved, integerSuffix(clock.Divider))
	case plan.FeedbackExact:
		fmt.Fprintf(r.out, "actual clock 0: %.0f / (%s) / %d = %.0f%s\n",
			plan.PLL, clock.Divider, r.in.RDivisor(), clock.Achieved, integerSuffix(clock.Divider))
	default:
		// Clock 0 of the fractional-feedback strategy always has an even
		// integer divider, so it is rendered as one plain divisor.
		fmt.Fprintf(r.out, "actual clock 0: %.0f / %d = %.0f\n",
			plan.PLL, int(clock.Divider.A)*r.in.RDivisor(), clock.Achieved)
	}
}

// ReportInvalidFeedback prints the skip notice for an unusable output divider.
func (r *TextReporter) ReportInvalidFeedback(_ context.Context, in synth.ReducedInput, outputMS uint32, feedback float64, vco synth.Frequency) {
	fmt.Fprintf(r.out, "invalid feedback MS: %.0f (xtal=%.0f/%d, output MS=%d, f_VCO=%.0f)\n\n",
		feedback, in.Reference, in.ReferenceDivisor(), outputMS, vco)
}

// integerSuffix returns the classification tag appended to integer settings.
func integerSuffix(r synth.Ratio) string {
	switch {
	case r.IsEvenInteger():
		return "   -> even integer"
	case r.IsInteger():
		return "   -> integer"
	default:
		return ""
	}
}
