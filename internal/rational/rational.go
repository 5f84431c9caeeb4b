package rational

import (
	"math"

	"github.com/rfkit-dev/clockplan/internal/domain/synth"
)

const (
	// epsilon is the remainder below which the expansion stops refining.
	epsilon = 1e-5
	// maxTerms caps the continued-fraction expansion length.
	maxTerms = 100
)

// Approximate returns the best rational approximation of value under the
// denominator bound, as a Ratio a + b/c with c <= maxDenominator.
//
// Preconditions: value >= 0, maxDenominator >= 1. The result is never worse
// than plain truncation (b=0, c=1 is the baseline), and for values that are
// exactly representable within the bound the approximation is exact.
func Approximate(value float64, maxDenominator uint32) synth.Ratio {
	af, f0 := math.Modf(value)

	best := synth.Ratio{A: uint32(af), B: 0, C: 1}
	delta := f0

	// The fractional part has leading term a_0 = 0, so the convergent pairs
	// are seeded one step before the conventional (0/1, 1/0) start.
	h := [2]uint32{1, 0}
	k := [2]uint32{0, 1}

	f := f0
	for i := 0; i < maxTerms; i++ {
		if f <= epsilon {
			break
		}

		var anf float64

		anf, f = math.Modf(1.0 / f)
		an := uint32(anf)

		// Only the upper half of the weights can beat the previous convergent.
		for m := (an + 1) / 2; m <= an; m++ {
			hm := m*h[1] + h[0]
			km := m*k[1] + k[0]

			// Denominators grow monotonically in m.
			if km > maxDenominator {
				break
			}

			if d := math.Abs(float64(hm)/float64(km) - f0); d < delta {
				delta = d
				best.B = hm
				best.C = km
			}
		}

		hn := an*h[1] + h[0]
		kn := an*k[1] + k[0]
		h[0], h[1] = h[1], hn
		k[0], k[1] = k[1], kn
	}

	// The semiconvergent 1/1 can win when the fractional part exceeds one
	// half and the bound forbids any denominator above 1. Carry it into the
	// integer part so b < c holds whenever b != 0.
	if best.B == best.C {
		best.A++
		best.B = 0
		best.C = 1
	}

	return best
}
