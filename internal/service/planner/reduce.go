package planner

import (
	"errors"
	"fmt"

	"github.com/rfkit-dev/clockplan/internal/config"
	"github.com/rfkit-dev/clockplan/internal/domain/synth"
)

var (
	// ErrReferenceOutOfRange indicates a reference frequency outside the CLKIN window.
	ErrReferenceOutOfRange = errors.New("reference frequency is out of the CLKIN range")
	// ErrNoClocks indicates an empty clock request.
	ErrNoClocks = errors.New("at least one output clock must be requested")
	// ErrTooManyClocks indicates more clocks than the chip can drive from one PLL.
	ErrTooManyClocks = errors.New("too many output clocks requested")
	// ErrClockTooLow indicates the lowest clock cannot be brought into range
	// even with the deepest R divider.
	ErrClockTooLow = errors.New("requested clock is too low")
)

// Reduce validates the request and applies the power-of-two range reduction:
// the reference is halved (CLKIN divider) until it is at or below the direct
// input limit, and the lowest clock is doubled (R divider) until it is at or
// above the output multisynth floor. The search strategies consume the
// reduced values and fold the divisors back into the reported frequencies.
func Reduce(profile *config.Profile, reference synth.Frequency, clocks []synth.Frequency) (synth.ReducedInput, error) {
	in := synth.ReducedInput{
		Reference:        reference,
		ReducedReference: reference,
		Clocks:           clocks,
	}

	if len(clocks) == 0 {
		return in, ErrNoClocks
	}

	if len(clocks) > profile.MaxClocks {
		return in, fmt.Errorf("%w: maximum number of clocks is %d", ErrTooManyClocks, profile.MaxClocks)
	}

	if reference < profile.MinClkinFreq || reference > profile.MaxClkinFreq {
		return in, fmt.Errorf("%w: %.0f Hz", ErrReferenceOutOfRange, reference)
	}

	// Bring the reference within direct-input range using CLKIN_DIV.
	for in.ReducedReference > profile.ClkinDivTarget && in.ClkinDiv < profile.MaxClkinDiv {
		in.ReducedReference /= 2
		in.ClkinDiv++
	}

	// If the lowest clock is below the multisynth floor, use an R divider.
	in.ReducedClock0 = clocks[0]
	for in.ReducedClock0 < profile.RDivTarget && in.RDiv < profile.MaxRDiv {
		in.ReducedClock0 *= 2
		in.RDiv++
	}

	if in.ReducedClock0 < profile.RDivTarget {
		return in, fmt.Errorf("%w: %.0f Hz", ErrClockTooLow, clocks[0])
	}

	return in, nil
}
