// Package rational finds the best rational approximation of a real value
// under a denominator bound, as an integer-plus-fraction a + b/c.
//
// The algorithm expands the fractional part of the value as a continued
// fraction and, for each expansion term, scans the semiconvergents (the
// mediants between consecutive convergents). Number theory guarantees that
// every best rational approximation of a real number is a semiconvergent of
// its continued-fraction expansion, so scanning them under the denominator
// bound finds the optimum.
//
// Complexity:
//
//   - Denominators of consecutive convergents grow at least as fast as the
//     Fibonacci sequence, so for a denominator bound D the expansion needs
//     O(log D) terms before every further semiconvergent is out of bounds.
//   - The semiconvergent scan per term stops at the first denominator above
//     the bound, keeping the whole search linear in the number of candidates
//     actually admissible.
//
// Notes on implementation choices:
//
//   - The expansion is cut off once the running remainder drops to 1e-5; at
//     that point the current best already matches the value to well below the
//     planner's reporting tolerance.
//   - A hard cap of 100 terms guards against pathological inputs; in practice
//     the remainder cutoff or the denominator bound fires long before.
//   - A candidate replaces the best only on a strictly smaller error, and the
//     scan runs m upward, so equal-error ties keep the later, larger-m
//     semiconvergent.
package rational
