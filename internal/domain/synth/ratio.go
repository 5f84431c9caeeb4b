package synth

import "fmt"

// Frequency is a frequency in Hz.
type Frequency = float64

// Ratio is a divider setting of the form A + B/C.
// Invariants: C >= 1, and 0 < B < C whenever B != 0.
type Ratio struct {
	// A is the non-negative integer part of the divider.
	A uint32
	// B is the numerator of the fractional part, zero for integer dividers.
	B uint32
	// C is the denominator of the fractional part, always positive.
	C uint32
}

// IntegerRatio returns a Ratio holding the integer value a.
func IntegerRatio(a uint32) Ratio {
	return Ratio{A: a, B: 0, C: 1}
}

// Value returns the ratio as a float64.
func (r Ratio) Value() float64 {
	return float64(r.A) + float64(r.B)/float64(r.C)
}

// IsInteger reports whether the ratio has no fractional part.
func (r Ratio) IsInteger() bool {
	return r.B == 0
}

// IsEvenInteger reports whether the ratio is an even integer.
// Integer multisynth dividers with even values give the lowest output jitter.
func (r Ratio) IsEvenInteger() bool {
	return r.B == 0 && r.A%2 == 0
}

// String renders the ratio as "a + b/c".
func (r Ratio) String() string {
	return fmt.Sprintf("%d + %d / %d", r.A, r.B, r.C)
}

// ClockStatus tells how one output clock fared within a candidate plan.
type ClockStatus int

const (
	// StatusNotComputed means the clock was not evaluated for this candidate.
	StatusNotComputed ClockStatus = iota
	// StatusAchieved means a divider setting inside the output window was found.
	StatusAchieved
	// StatusOutOfRange means the required divider falls outside the output
	// multisynth window and the clock cannot be driven from this VCO frequency.
	StatusOutOfRange
)

// String returns a short human-readable name for the status.
func (s ClockStatus) String() string {
	switch s {
	case StatusAchieved:
		return "achieved"
	case StatusOutOfRange:
		return "out of range"
	default:
		return "not computed"
	}
}

// ClockResult is the outcome for one requested output clock within a candidate.
type ClockResult struct {
	// Index is the clock's position in the caller's request (0-based).
	Index int
	// Target is the requested frequency in Hz.
	Target Frequency
	// Divider is the output multisynth setting, valid only when Status is StatusAchieved.
	Divider Ratio
	// Achieved is the synthesized frequency in Hz, valid only when Status is StatusAchieved.
	Achieved Frequency
	// Deviation is Achieved minus Target.
	Deviation float64
	// Status tells whether the clock could be driven from the candidate's VCO.
	Status ClockStatus
}

// Flagged reports whether the deviation exceeds the given absolute tolerance.
func (c ClockResult) Flagged(tolerance float64) bool {
	return c.Status == StatusAchieved && (c.Deviation <= -tolerance || c.Deviation >= tolerance)
}

// CandidatePlan is one frequency plan: a VCO frequency together with the
// feedback setting that produces it and the output settings derived from it.
type CandidatePlan struct {
	// VCO is the intermediate oscillator frequency targeted by this candidate in Hz.
	VCO Frequency
	// PLL is the achievable PLL frequency after approximating the feedback ratio in Hz.
	PLL Frequency
	// Feedback is the feedback multisynth setting.
	Feedback Ratio
	// FeedbackExact is true when the feedback divider is an exact even integer
	// chosen directly by the search rather than approximated.
	FeedbackExact bool
	// Clocks holds one result per requested output clock, in request order.
	Clocks []ClockResult
}

// ReducedInput is the caller's request after power-of-two range reduction.
type ReducedInput struct {
	// Reference is the original reference (CLKIN) frequency in Hz.
	Reference Frequency
	// ReducedReference is the reference after ClkinDiv halvings in Hz.
	ReducedReference Frequency
	// ClkinDiv is the number of reference halvings applied (0..3).
	ClkinDiv uint8
	// Clocks are the original requested output frequencies in Hz.
	Clocks []Frequency
	// ReducedClock0 is the lowest clock after RDiv doublings in Hz.
	ReducedClock0 Frequency
	// RDiv is the number of clock-0 doublings applied (0..7).
	RDiv uint8
}

// ReferenceDivisor returns the CLKIN pre-divider as a plain divisor (1, 2, 4 or 8).
func (in ReducedInput) ReferenceDivisor() int {
	return 1 << in.ClkinDiv
}

// RDivisor returns the clock-0 R post-divider as a plain divisor (1..128).
func (in ReducedInput) RDivisor() int {
	return 1 << in.RDiv
}
