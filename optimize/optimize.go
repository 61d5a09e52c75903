// Package optimize drives repeated SAT calls to lexicographically
// improve a list of objectives, and shrinks unsatisfiable assumption
// sets to locally minimal cores.
package optimize

import (
	"github.com/sirupsen/logrus"

	"github.com/crillab/monosat/bv"
	"github.com/crillab/monosat/pb"
	"github.com/crillab/monosat/solver"
)

// An Objective is either a bitvector to push toward its optimum, or a
// weighted sum of literals.
type Objective struct {
	BV       int
	IsBV     bool
	Lits     []solver.Lit
	Weights  []int
	Maximize bool
}

// BVObjective builds a bitvector objective.
func BVObjective(bvID int, maximize bool) Objective {
	return Objective{BV: bvID, IsBV: true, Maximize: maximize}
}

// LitsObjective builds a weighted-literal objective. Missing weights
// default to 1; extra weights are dropped.
func LitsObjective(lits []solver.Lit, weights []int, maximize bool) Objective {
	ws := make([]int, len(lits))
	for i := range ws {
		if i < len(weights) {
			ws[i] = weights[i]
		} else {
			ws[i] = 1
		}
	}
	return Objective{Lits: append([]solver.Lit(nil), lits...), Weights: ws, Maximize: maximize}
}

// value reads the objective's value in the last model.
func (o Objective) value(sat *solver.Solver, bvt *bv.TheorySolver) int64 {
	if o.IsBV {
		return bvt.UnderApprox(o.BV)
	}
	var total int64
	for i, l := range o.Lits {
		if sat.ModelValue(l) == solver.Sat {
			total += int64(o.Weights[i])
		}
	}
	return total
}

// Result reports the outcome of an optimized solve.
type Result struct {
	Status  solver.Status
	Optimal bool // True when every objective reached its proven optimum
}

// Solve runs the lexicographic optimization loop: each objective in
// turn is improved by transient bound tightening until the bound proves
// unsatisfiable, then pinned at its optimum before the next objective
// runs. With no objectives it is a plain solve.
//
// The Optimal flag stays true when the initial solve is unsatisfiable:
// the answer is trivially optimal among the empty set of models.
func Solve(sat *solver.Solver, bvt *bv.TheorySolver, pbs *pb.Solver, log *logrus.Logger,
	assumptions []solver.Lit, objectives []Objective) Result {
	st := sat.Solve(assumptions)
	if st != solver.Sat || len(objectives) == 0 {
		return Result{Status: st, Optimal: st != solver.Indet}
	}
	pins := make([]solver.Lit, 0, len(objectives))
	base := func() []solver.Lit {
		all := append([]solver.Lit(nil), assumptions...)
		return append(all, pins...)
	}
	for i, obj := range objectives {
		best := obj.value(sat, bvt)
		for {
			improve, err := improvementLit(sat, bvt, pbs, obj, best)
			if err != nil || improve == solver.LitUndef {
				break // The objective is already at the domain boundary
			}
			st = sat.Solve(append(base(), improve))
			if st == solver.Indet {
				// Budget or interrupt: keep the best model found.
				restoreModel(sat, bvt, pbs, log, base())
				return Result{Status: solver.Sat, Optimal: false}
			}
			if st == solver.Unsat {
				break // best is optimal for this objective
			}
			best = obj.value(sat, bvt)
			log.WithFields(logrus.Fields{"objective": i, "value": best}).Debug("improved objective")
		}
		pin, err := pinLit(sat, bvt, pbs, obj, best)
		if err == nil && pin != solver.LitUndef {
			pins = append(pins, pin)
		}
		// Re-solve under the pin so the stored model is consistent
		// before the next objective starts.
		if st = sat.Solve(base()); st != solver.Sat {
			return Result{Status: solver.Sat, Optimal: st != solver.Indet}
		}
	}
	return Result{Status: solver.Sat, Optimal: true}
}

// improvementLit returns an assumption literal requiring the objective
// to beat best, or LitUndef when no improvement is expressible.
func improvementLit(sat *solver.Solver, bvt *bv.TheorySolver, pbs *pb.Solver, obj Objective, best int64) (solver.Lit, error) {
	if obj.IsBV {
		if obj.Maximize {
			return bvt.NewComparisonConst(bv.Gt, obj.BV, best)
		}
		if best == 0 {
			return solver.LitUndef, nil
		}
		return bvt.NewComparisonConst(bv.Lt, obj.BV, best)
	}
	guard := sat.NewVar()
	sat.Freeze(guard)
	if obj.Maximize {
		if !pbs.AssertGeqGuarded(obj.Lits, obj.Weights, int(best)+1, guard.Lit()) {
			return solver.LitUndef, nil
		}
	} else {
		if best == 0 {
			return solver.LitUndef, nil
		}
		if !pbs.AssertLeqGuarded(obj.Lits, obj.Weights, int(best)-1, guard.Lit()) {
			return solver.LitUndef, nil
		}
	}
	return guard.Lit(), nil
}

// pinLit returns an assumption literal fixing the objective at its
// optimum; it is kept for all later objectives.
func pinLit(sat *solver.Solver, bvt *bv.TheorySolver, pbs *pb.Solver, obj Objective, best int64) (solver.Lit, error) {
	if obj.IsBV {
		if obj.Maximize {
			return bvt.NewComparisonConst(bv.Geq, obj.BV, best)
		}
		return bvt.NewComparisonConst(bv.Leq, obj.BV, best)
	}
	guard := sat.NewVar()
	sat.Freeze(guard)
	ok := true
	if obj.Maximize {
		ok = pbs.AssertGeqGuarded(obj.Lits, obj.Weights, int(best), guard.Lit())
	} else {
		ok = pbs.AssertLeqGuarded(obj.Lits, obj.Weights, int(best), guard.Lit())
	}
	if !ok {
		return solver.LitUndef, nil
	}
	return guard.Lit(), nil
}

// restoreModel re-solves under the current pins so the solver's stored
// model matches the best bound reached before an interruption.
func restoreModel(sat *solver.Solver, bvt *bv.TheorySolver, pbs *pb.Solver, log *logrus.Logger, assumptions []solver.Lit) {
	sat.BudgetOff()
	sat.ClearInterrupt()
	if st := sat.Solve(assumptions); st != solver.Sat {
		log.Warn("could not restore the best model after interruption")
	}
}

// MinimizeCore shrinks an assumption set known unsatisfiable: each
// assumption is probed for removal under the given propagation budget,
// and dropped when the rest still proves unsat. The result is locally
// minimal: removing any single literal loses the (budgeted) proof.
func MinimizeCore(sat *solver.Solver, assumptions []solver.Lit, propBudget int64) []solver.Lit {
	core := append([]solver.Lit(nil), assumptions...)
	for i := 0; i < len(core); {
		candidate := make([]solver.Lit, 0, len(core)-1)
		candidate = append(candidate, core[:i]...)
		candidate = append(candidate, core[i+1:]...)
		sat.SetPropBudget(propBudget)
		st := sat.Solve(candidate)
		sat.BudgetOff()
		if st == solver.Unsat {
			core = candidate // The ith assumption was redundant
		} else {
			i++
		}
	}
	// Leave the solver's conflict set consistent with the result.
	confl := make([]solver.Lit, len(core))
	for i, l := range core {
		confl[i] = l.Negation()
	}
	sat.SetConflict(confl)
	return core
}
