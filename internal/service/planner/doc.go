// Package planner searches for Si5351 frequency plans: divider settings that
// synthesize the requested output clocks from one reference frequency.
//
// The search sweeps candidate VCO frequencies with two strategies. The first
// holds the output multisynth at an even integer and lets the feedback
// multisynth be fractional; the second holds the feedback multisynth at an
// even integer and lets the output multisynth be fractional. Every accepted
// candidate is evaluated against the requested clocks and streamed to a
// Reporter; the package enumerates all structurally valid plans and leaves
// picking the best one to the consumer.
package planner
