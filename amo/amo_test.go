package amo

import (
	"testing"

	"github.com/crillab/monosat/solver"
)

func TestAtMostOne(t *testing.T) {
	sat := solver.New()
	amo := New(sat)
	vars := make([]solver.Var, 4)
	for i := range vars {
		vars[i] = sat.NewVar()
		amo.AddVar(vars[i])
	}
	if st := sat.Solve([]solver.Lit{vars[0].Lit(), vars[2].Lit()}); st != solver.Unsat {
		t.Errorf("two true vars must be rejected, got %v", st)
	}
	if st := sat.Solve([]solver.Lit{vars[1].Lit()}); st != solver.Sat {
		t.Fatalf("one true var is fine, got %v", st)
	}
	for i, v := range vars {
		if i != 1 && sat.ModelValue(v.Lit()) == solver.Sat {
			t.Errorf("var %d must be forced false", i)
		}
	}
	if st := sat.Solve(nil); st != solver.Sat {
		t.Errorf("all-false is allowed, got %v", st)
	}
}

func TestPropagationReason(t *testing.T) {
	sat := solver.New()
	amo := New(sat)
	a, b := sat.NewVar(), sat.NewVar()
	amo.AddVar(a)
	amo.AddVar(b)
	c := sat.NewVar()
	// c -> a and c -> b would force two true vars.
	sat.AddClause(c.Lit().Negation(), a.Lit())
	sat.AddClause(c.Lit().Negation(), b.Lit())
	if st := sat.Solve([]solver.Lit{c.Lit()}); st != solver.Unsat {
		t.Errorf("expected UNSAT, got %v", st)
	}
	if st := sat.Solve(nil); st != solver.Sat {
		t.Fatalf("expected SAT, got %v", st)
	}
	if sat.ModelValue(c.Lit()) == solver.Sat {
		t.Errorf("c must be false in every model")
	}
}
