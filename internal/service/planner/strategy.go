package planner

import "strings"

// Strategy selects which search strategies to run.
type Strategy int

const (
	// StrategyBoth runs the fractional-feedback search in full, then the
	// integer-feedback search in full.
	StrategyBoth Strategy = iota
	// StrategyFractionalFeedback holds the output multisynth at an even
	// integer per candidate and approximates the feedback multisynth.
	StrategyFractionalFeedback
	// StrategyIntegerFeedback holds the feedback multisynth at an even
	// integer per candidate and approximates the output multisynth.
	StrategyIntegerFeedback
)

// String returns the flag spelling of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyFractionalFeedback:
		return "fractional-feedback"
	case StrategyIntegerFeedback:
		return "integer-feedback"
	default:
		return "both"
	}
}

// ParseStrategy converts the flag spelling to a Strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "both", "":
		return StrategyBoth, true
	case "fractional-feedback":
		return StrategyFractionalFeedback, true
	case "integer-feedback":
		return StrategyIntegerFeedback, true
	default:
		return StrategyBoth, false
	}
}
