package pb

import (
	"testing"

	"github.com/crillab/monosat/solver"
)

func newVars(s *solver.Solver, n int) []solver.Lit {
	lits := make([]solver.Lit, n)
	for i := range lits {
		lits[i] = s.NewVar().Lit()
	}
	return lits
}

func countTrue(s *solver.Solver, lits []solver.Lit) int {
	n := 0
	for _, l := range lits {
		if s.ModelValue(l) == solver.Sat {
			n++
		}
	}
	return n
}

func TestAtMost(t *testing.T) {
	sat := solver.New()
	p := New(sat)
	lits := newVars(sat, 4)
	p.AddConstr(lits, nil, 2, LEQ)
	if p.Pending() != 1 {
		t.Fatalf("expected 1 pending constraint, got %d", p.Pending())
	}
	if !p.Convert() {
		t.Fatalf("conversion must succeed")
	}
	if p.Pending() != 0 {
		t.Fatalf("constraints must be flushed")
	}
	if st := sat.Solve(lits[:3]); st != solver.Unsat {
		t.Errorf("3 true lits must violate <= 2, got %v", st)
	}
	if st := sat.Solve(lits[:2]); st != solver.Sat {
		t.Fatalf("2 true lits are fine, got %v", st)
	}
	if n := countTrue(sat, lits); n > 2 {
		t.Errorf("model has %d true lits, expected at most 2", n)
	}
}

func TestAtLeast(t *testing.T) {
	sat := solver.New()
	p := New(sat)
	lits := newVars(sat, 3)
	p.AddConstr(lits, nil, 2, GEQ)
	p.Convert()
	if st := sat.Solve(nil); st != solver.Sat {
		t.Fatalf("expected SAT, got %v", st)
	}
	if n := countTrue(sat, lits); n < 2 {
		t.Errorf("model has %d true lits, expected at least 2", n)
	}
	if st := sat.Solve([]solver.Lit{lits[0].Negation(), lits[1].Negation()}); st != solver.Unsat {
		t.Errorf("two false lits must violate >= 2, got %v", st)
	}
}

func TestWeighted(t *testing.T) {
	sat := solver.New()
	p := New(sat)
	lits := newVars(sat, 3)
	// 3a + 2b + 2c <= 4.
	p.AddConstr(lits, []int{3, 2, 2}, 4, LEQ)
	p.Convert()
	if st := sat.Solve(lits[1:]); st != solver.Sat {
		t.Fatalf("2+2 <= 4 must be SAT, got %v", st)
	}
	if st := sat.Solve(lits[:2]); st != solver.Unsat {
		t.Errorf("3+2 > 4 must be UNSAT, got %v", st)
	}
}

func TestEquality(t *testing.T) {
	sat := solver.New()
	p := New(sat)
	lits := newVars(sat, 3)
	p.AddConstr(lits, nil, 2, EQ)
	p.Convert()
	if st := sat.Solve(nil); st != solver.Sat {
		t.Fatalf("expected SAT, got %v", st)
	}
	if n := countTrue(sat, lits); n != 2 {
		t.Errorf("model has %d true lits, expected exactly 2", n)
	}
}

func TestNegativeWeights(t *testing.T) {
	sat := solver.New()
	p := New(sat)
	lits := newVars(sat, 2)
	// 2a - 1b >= 1: a must be true.
	p.AddConstr(lits, []int{2, -1}, 1, GEQ)
	p.Convert()
	if st := sat.Solve(nil); st != solver.Sat {
		t.Fatalf("expected SAT, got %v", st)
	}
	if sat.ModelValue(lits[0]) != solver.Sat {
		t.Errorf("a must be true")
	}
	if st := sat.Solve([]solver.Lit{lits[0].Negation()}); st != solver.Unsat {
		t.Errorf("without a the sum cannot reach 1, got %v", st)
	}
}

func TestTriviallyUnsat(t *testing.T) {
	sat := solver.New()
	p := New(sat)
	lits := newVars(sat, 2)
	p.AddConstr(lits, nil, 3, GEQ)
	if p.Convert() {
		t.Errorf("2 lits cannot sum to 3: conversion must report unsat")
	}
}

func TestGuarded(t *testing.T) {
	sat := solver.New()
	p := New(sat)
	lits := newVars(sat, 3)
	guard := sat.NewVar().Lit()
	if !p.AssertLeqGuarded(lits, []int{1, 1, 1}, 1, guard) {
		t.Fatalf("guarded constraint must encode")
	}
	if st := sat.Solve(append([]solver.Lit{guard}, lits[:2]...)); st != solver.Unsat {
		t.Errorf("guard active: 2 > 1 must be UNSAT, got %v", st)
	}
	if st := sat.Solve(lits[:2]); st != solver.Sat {
		t.Errorf("guard free: constraint must be retractable, got %v", st)
	}
}
