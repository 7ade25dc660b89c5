// Package merit computes production plans with the merit-order heuristic.
//
// A solve runs three stages on a private copy of the problem:
//   - Normalize prices every unit against the fuel snapshot and derives the
//     available output of variable units.
//   - Rank orders the units by ascending cost, keeping input order for ties.
//   - Allocate walks the merit order once and assigns power greedily while
//     reserving the minimum output of the next unit.
//
// The allocator reproduces a specific greedy policy rather than an optimal
// unit commitment. It never revisits a skipped unit and it may stop short of
// the load; such plans are reported with PlanExhausted instead of an error.
package merit
