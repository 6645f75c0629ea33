// Package gravity implements a 2D Newtonian point-mass solver.
//
// A [Solver] owns an ordered sequence of [Body] values and advances it one
// tick at a time:
//
//   - force computation: exact O(n²) pairwise summation
//   - integration: semi-implicit (symplectic) Euler
//   - collision resolution: fixed-point scan that merges, absorbs or destroys
//     overlapping bodies until no pair overlaps
//
// [Solver.PredictTrajectory] runs a speculative simulation of a candidate
// body against the frozen live bodies without mutating them.
//
// # Example
//
//	s := gravity.New(gravity.WithG(500))
//	_ = s.AddBody(vec.New(0, 0), vec.Zero, true, 1000)
//	_ = s.AddBody(vec.New(100, 0), vec.New(0, 70.7), false, 1)
//	for i := 0; i < 1000; i++ {
//	    s.Step(0.001)
//	}
//
// # Thread Safety
//
// Solver instances are NOT thread-safe. Bodies returns a copy that may be
// read concurrently, but no method may run while Step is mutating the
// sequence.
package gravity
