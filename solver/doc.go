// Package solver implements a CDCL SAT engine extended with theory
// propagators. The solver cooperates with external theories (graphs,
// bitvectors, at-most-one sets, state machines) through the Theory
// interface: at every propagation fixpoint each attached theory may
// enqueue further literals with lazy reasons, or report a conflict
// clause blocking the current partial assignment.
//
// Solving supports assumptions: literals required true for the duration
// of one Solve call. When the problem is unsatisfiable under the
// assumptions, the solver exposes the subset of assumptions responsible
// through Conflict.
package solver
