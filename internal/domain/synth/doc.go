// Package synth contains core domain types for the frequency planner.
//
// It defines Ratio (an integer-plus-fraction divider setting), ClockResult
// (one output clock of a candidate plan with an explicit status), CandidatePlan
// (one VCO frequency with all divider settings derived from it) and
// ReducedInput (the range-reduced view of the caller's frequencies).
// All types are pure values; a plan is produced, reported and discarded.
package synth
