package planner

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rfkit-dev/clockplan/internal/config"
	"github.com/rfkit-dev/clockplan/internal/domain/synth"
)

// recordingReporter captures everything the search emits so tests can assert
// on the stream directly.
type recordingReporter struct {
	reductions []synth.ReducedInput
	strategies []Strategy
	candidates []synth.CandidatePlan
	skips      []uint32
}

func (r *recordingReporter) ReportReduction(_ context.Context, in synth.ReducedInput) {
	r.reductions = append(r.reductions, in)
}

func (r *recordingReporter) BeginStrategy(_ context.Context, strategy Strategy) {
	r.strategies = append(r.strategies, strategy)
}

func (r *recordingReporter) ReportCandidate(_ context.Context, plan synth.CandidatePlan) {
	r.candidates = append(r.candidates, plan)
}

func (r *recordingReporter) ReportInvalidFeedback(_ context.Context, _ synth.ReducedInput, outputMS uint32, _ float64, _ synth.Frequency) {
	r.skips = append(r.skips, outputMS)
}

// reduceForTest runs Reduce and fails the test on error.
func reduceForTest(t *testing.T, reference synth.Frequency, clocks ...synth.Frequency) synth.ReducedInput {
	t.Helper()

	in, err := Reduce(config.Default(), reference, clocks)
	require.NoError(t, err)

	return in
}

// TestFractionalFeedbackFirstCandidate pins the 25 MHz / 4.6875 MHz example:
// the sweep starts at output MS 212 and hits the target exactly with a
// feedback setting of 39 + 3/4.
func TestFractionalFeedbackFirstCandidate(t *testing.T) {
	t.Parallel()

	rec := &recordingReporter{}
	search := NewSearch(config.Default(), rec)

	in := reduceForTest(t, 25e6, 4_687_500, 66_672_000)
	require.NoError(t, search.Run(context.Background(), in, StrategyFractionalFeedback))
	require.NotEmpty(t, rec.candidates)

	first := rec.candidates[0]
	require.Equal(t, synth.IntegerRatio(212), first.Clocks[0].Divider)
	require.Equal(t, synth.Ratio{A: 39, B: 3, C: 4}, first.Feedback)
	require.False(t, first.FeedbackExact)
	require.InDelta(t, 993_750_000, first.PLL, 1e-3)

	// Clock 0 is hit exactly.
	require.Equal(t, synth.StatusAchieved, first.Clocks[0].Status)
	require.InDelta(t, 4_687_500, first.Clocks[0].Achieved, 1e-6)
	require.False(t, first.Clocks[0].Flagged(config.Default().ClockTolerance))

	// Clock 1 is synthesizable from the same VCO.
	require.Equal(t, synth.StatusAchieved, first.Clocks[1].Status)
	require.InDelta(t, 66_672_000, first.Clocks[1].Achieved, 1)
}

// TestFractionalFeedbackCandidateValidity checks the structural invariants of
// every emitted candidate: feedback inside its window, even-integer output
// divider inside the output window, VCO inside the supported range, and a
// strictly decreasing sweep.
func TestFractionalFeedbackCandidateValidity(t *testing.T) {
	t.Parallel()

	profile := config.Default()
	rec := &recordingReporter{}
	search := NewSearch(profile, rec)

	in := reduceForTest(t, 27e6, 4_687_500, 66_672_000)
	require.NoError(t, search.Run(context.Background(), in, StrategyFractionalFeedback))
	require.NotEmpty(t, rec.candidates)

	prev := uint32(math.MaxUint32)
	for _, plan := range rec.candidates {
		feedback := plan.Feedback.Value()
		require.GreaterOrEqual(t, feedback, profile.MinFeedbackRatio)
		require.LessOrEqual(t, feedback, profile.MaxFeedbackRatio)

		output := plan.Clocks[0].Divider
		require.True(t, output.IsEvenInteger())
		require.GreaterOrEqual(t, float64(output.A), profile.MinOutputRatio)
		require.LessOrEqual(t, float64(output.A), profile.MaxOutputRatio)

		require.GreaterOrEqual(t, plan.VCO, profile.MinVCOFreq)
		require.LessOrEqual(t, plan.VCO, profile.MaxVCOFreq)

		// Sweep is strictly decreasing.
		require.Less(t, output.A, prev)
		prev = output.A

		for _, clock := range plan.Clocks {
			if clock.Status != synth.StatusAchieved || clock.Index == 0 {
				continue
			}

			value := clock.Divider.Value()
			require.GreaterOrEqual(t, value, profile.MinOutputRatio)
			require.LessOrEqual(t, value, profile.MaxOutputRatio)
		}
	}
}

// TestFractionalFeedbackClipsOutputDivider verifies that a lowest clock at the
// multisynth floor starts the sweep at the top of the output window instead of
// failing.
func TestFractionalFeedbackClipsOutputDivider(t *testing.T) {
	t.Parallel()

	rec := &recordingReporter{}
	search := NewSearch(config.Default(), rec)

	in := reduceForTest(t, 25e6, 1e6)
	require.NoError(t, search.Run(context.Background(), in, StrategyFractionalFeedback))
	require.NotEmpty(t, rec.candidates)
	require.Equal(t, uint32(900), rec.candidates[0].Clocks[0].Divider.A)
}

// TestFractionalFeedbackRejectsImpossibleClock verifies the fatal case where
// no even-integer output divider of at least 4 exists for the lowest clock.
func TestFractionalFeedbackRejectsImpossibleClock(t *testing.T) {
	t.Parallel()

	rec := &recordingReporter{}
	search := NewSearch(config.Default(), rec)

	in := reduceForTest(t, 25e6, 300e6)
	err := search.Run(context.Background(), in, StrategyFractionalFeedback)
	require.ErrorIs(t, err, ErrOutputDividerRange)
	require.Empty(t, rec.candidates)
}

// TestIntegerFeedbackSweep verifies the 25 MHz sweep: even feedback dividers
// from 40 down to 24, each an exact multiple of the reference.
func TestIntegerFeedbackSweep(t *testing.T) {
	t.Parallel()

	profile := config.Default()
	rec := &recordingReporter{}
	search := NewSearch(profile, rec)

	in := reduceForTest(t, 25e6, 4_687_500)
	require.NoError(t, search.Run(context.Background(), in, StrategyIntegerFeedback))
	require.Len(t, rec.candidates, 9)

	expected := uint32(40)
	for _, plan := range rec.candidates {
		require.True(t, plan.FeedbackExact)
		require.Equal(t, synth.IntegerRatio(expected), plan.Feedback)
		require.InDelta(t, 25e6*float64(expected), plan.PLL, 0)

		require.GreaterOrEqual(t, plan.VCO, profile.MinVCOFreq)
		require.LessOrEqual(t, plan.VCO, profile.MaxVCOFreq)

		expected -= 2
	}
}

// TestIntegerFeedbackInitialTooHigh verifies the fatal case where the
// reference is too high for any even feedback divider of at least 16.
// Such an input can only reach the search through a custom chip profile,
// so the reduced input is crafted directly.
func TestIntegerFeedbackInitialTooHigh(t *testing.T) {
	t.Parallel()

	rec := &recordingReporter{}
	search := NewSearch(config.Default(), rec)

	in := synth.ReducedInput{
		Reference:        70e6,
		ReducedReference: 70e6,
		Clocks:           []synth.Frequency{10e6},
		ReducedClock0:    10e6,
	}

	err := search.Run(context.Background(), in, StrategyIntegerFeedback)
	require.ErrorIs(t, err, ErrFeedbackDividerRange)
	require.Empty(t, rec.candidates)
}

// TestIntegerFeedbackClampBelowMinVCO verifies the fatal case where clamping
// the feedback divider to the top of the window leaves the VCO too low.
func TestIntegerFeedbackClampBelowMinVCO(t *testing.T) {
	t.Parallel()

	rec := &recordingReporter{}
	search := NewSearch(config.Default(), rec)

	in := synth.ReducedInput{
		Reference:        6e6,
		ReducedReference: 6e6,
		Clocks:           []synth.Frequency{2e6},
		ReducedClock0:    2e6,
	}

	err := search.Run(context.Background(), in, StrategyIntegerFeedback)
	require.ErrorIs(t, err, ErrFeedbackDividerRange)
	require.Empty(t, rec.candidates)
}

// TestAdditionalClockOutOfRange verifies that a clock needing a divider below
// the output window is marked out of range instead of disappearing.
func TestAdditionalClockOutOfRange(t *testing.T) {
	t.Parallel()

	rec := &recordingReporter{}
	search := NewSearch(config.Default(), rec)

	// Clock 1 at 300 MHz needs a divider near 3.3, below the window floor.
	in := reduceForTest(t, 25e6, 4_687_500, 300e6)
	require.NoError(t, search.Run(context.Background(), in, StrategyFractionalFeedback))
	require.NotEmpty(t, rec.candidates)

	for _, plan := range rec.candidates {
		require.Len(t, plan.Clocks, 2)
		require.Equal(t, synth.StatusOutOfRange, plan.Clocks[1].Status)
	}
}

// TestDeviationConsistency checks that a difference is flagged exactly when
// the achieved frequency misses its target by the tolerance or more.
func TestDeviationConsistency(t *testing.T) {
	t.Parallel()

	profile := config.Default()
	rec := &recordingReporter{}
	search := NewSearch(profile, rec)

	in := reduceForTest(t, 27e6, 4_687_500, 66_672_000)
	require.NoError(t, search.Run(context.Background(), in, StrategyBoth))
	require.NotEmpty(t, rec.candidates)

	for _, plan := range rec.candidates {
		for _, clock := range plan.Clocks {
			if clock.Status != synth.StatusAchieved {
				continue
			}

			miss := math.Abs(clock.Achieved - clock.Target)
			require.Equal(t, miss >= profile.ClockTolerance, clock.Flagged(profile.ClockTolerance))
		}
	}
}

// TestRunOrderAndStrategySelection verifies strategy ordering and that a
// single-strategy run announces only itself.
func TestRunOrderAndStrategySelection(t *testing.T) {
	t.Parallel()

	rec := &recordingReporter{}
	search := NewSearch(config.Default(), rec)

	in := reduceForTest(t, 25e6, 4_687_500)
	require.NoError(t, search.Run(context.Background(), in, StrategyBoth))
	require.Equal(t, []Strategy{StrategyFractionalFeedback, StrategyIntegerFeedback}, rec.strategies)
	require.Len(t, rec.reductions, 1)

	rec = &recordingReporter{}
	search = NewSearch(config.Default(), rec)
	require.NoError(t, search.Run(context.Background(), in, StrategyIntegerFeedback))
	require.Equal(t, []Strategy{StrategyIntegerFeedback}, rec.strategies)
}

// TestParseStrategy verifies flag spellings round-trip through String.
func TestParseStrategy(t *testing.T) {
	t.Parallel()

	for _, strategy := range []Strategy{StrategyBoth, StrategyFractionalFeedback, StrategyIntegerFeedback} {
		parsed, ok := ParseStrategy(strategy.String())
		require.True(t, ok)
		require.Equal(t, strategy, parsed)
	}

	_, ok := ParseStrategy("fastest")
	require.False(t, ok)
}
