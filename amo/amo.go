// Package amo implements the at-most-one theory: a propagator over a
// set of variables of which at most one may be true. For small sets a
// direct CNF encoding is usually cheaper; the theory scales to large
// sets with constant-size reasons.
package amo

import "github.com/crillab/monosat/solver"

// Theory is one at-most-one constraint.
type Theory struct {
	sat     *solver.Solver
	id      int
	vars    []solver.Var
	pending bool
	reasons map[solver.Var][]solver.Lit
}

// New attaches an empty at-most-one constraint to the solver.
func New(sat *solver.Solver) *Theory {
	t := &Theory{
		sat:     sat,
		reasons: make(map[solver.Var][]solver.Lit),
	}
	t.id = sat.AttachTheory(t)
	return t
}

// AddVar adds a variable to the constrained set. The variable becomes
// theory-owned.
func (t *Theory) AddVar(v solver.Var) {
	t.vars = append(t.vars, v)
	t.sat.BindTheoryVar(v, t.id)
	t.pending = true
}

// Enqueue implements solver.Theory.
func (t *Theory) Enqueue(l solver.Lit) {
	if l.IsPositive() {
		t.pending = true
	}
}

// Propagate implements solver.Theory: once a variable of the set is
// true, every other one is forced false.
func (t *Theory) Propagate(confl *[]solver.Lit) bool {
	if !t.pending {
		return true
	}
	t.pending = false
	trueVar := solver.VarUndef
	for _, v := range t.vars {
		if t.sat.Value(v.Lit()) != solver.Sat {
			continue
		}
		if trueVar != solver.VarUndef {
			*confl = []solver.Lit{trueVar.Lit().Negation(), v.Lit().Negation()}
			return false
		}
		trueVar = v
	}
	if trueVar == solver.VarUndef {
		return true
	}
	for _, v := range t.vars {
		if v == trueVar || t.sat.Value(v.Lit()) == solver.Unsat {
			continue
		}
		forced := v.Lit().Negation()
		t.reasons[v] = []solver.Lit{forced, trueVar.Lit().Negation()}
		if !t.sat.TheoryEnqueue(forced, t.id) {
			*confl = t.reasons[v]
			return false
		}
	}
	return true
}

// Explain implements solver.Theory.
func (t *Theory) Explain(l solver.Lit) []solver.Lit {
	if r, ok := t.reasons[l.Var()]; ok {
		return r
	}
	return []solver.Lit{l}
}

// NewDecisionLevel implements solver.Theory.
func (t *Theory) NewDecisionLevel() {}

// BacktrackTo implements solver.Theory.
func (t *Theory) BacktrackTo(int) { t.pending = true }
