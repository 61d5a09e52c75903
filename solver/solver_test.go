package solver

import "testing"

func newVars(s *Solver, n int) []Lit {
	lits := make([]Lit, n)
	for i := range lits {
		lits[i] = s.NewVar().Lit()
	}
	return lits
}

func TestSolveTrivial(t *testing.T) {
	s := New()
	if st := s.Solve(nil); st != Sat {
		t.Errorf("empty problem: expected SAT, got %v", st)
	}
}

func TestSolveSimpleSat(t *testing.T) {
	s := New()
	l := newVars(s, 2)
	s.AddClause(l[0], l[1])
	s.AddClause(l[0].Negation(), l[1])
	if st := s.Solve(nil); st != Sat {
		t.Fatalf("expected SAT, got %v", st)
	}
	if s.ModelValue(l[1]) != Sat {
		t.Errorf("x2 must be true in any model")
	}
}

func TestSolveUnsat(t *testing.T) {
	s := New()
	l := newVars(s, 2)
	ok := s.AddClause(l[0], l[1])
	ok = s.AddClause(l[0].Negation(), l[1]) && ok
	ok = s.AddClause(l[1].Negation()) && ok
	if ok {
		if st := s.Solve(nil); st != Unsat {
			t.Fatalf("expected UNSAT, got %v", st)
		}
	}
	if len(s.Conflict()) != 0 {
		t.Errorf("conflict set must be empty without assumptions, got %v", s.Conflict())
	}
	if st := s.Solve(nil); st != Unsat {
		t.Errorf("unsat must be permanent")
	}
}

func TestEmptyClause(t *testing.T) {
	s := New()
	newVars(s, 1)
	if s.AddClauseLits(nil) {
		t.Errorf("adding the empty clause must fail")
	}
	if st := s.Solve(nil); st != Unsat {
		t.Errorf("expected permanent UNSAT, got %v", st)
	}
}

func TestTautologyAndDuplicates(t *testing.T) {
	s := New()
	l := newVars(s, 1)
	if !s.AddClause(l[0], l[0].Negation()) {
		t.Errorf("tautology must be accepted")
	}
	if !s.AddClause(l[0], l[0], l[0]) {
		t.Errorf("duplicate literals must be merged")
	}
	if st := s.Solve(nil); st != Sat {
		t.Errorf("expected SAT, got %v", st)
	}
	if s.ModelValue(l[0]) != Sat {
		t.Errorf("x1 must be true")
	}
}

func TestAssumptions(t *testing.T) {
	s := New()
	l := newVars(s, 3)
	s.AddClause(l[0].Negation(), l[1])
	s.AddClause(l[1].Negation(), l[2])
	if st := s.Solve([]Lit{l[0]}); st != Sat {
		t.Fatalf("expected SAT, got %v", st)
	}
	if s.ModelValue(l[2]) != Sat {
		t.Errorf("x3 must follow from the assumption chain")
	}
	if st := s.Solve([]Lit{l[0], l[2].Negation()}); st != Unsat {
		t.Fatalf("expected UNSAT under contradictory assumptions, got %v", st)
	}
	confl := s.Conflict()
	if len(confl) == 0 {
		t.Fatalf("expected a non-empty assumption conflict set")
	}
	// The conflict is a clause over negated assumptions: solving with
	// exactly the blamed assumptions must stay UNSAT.
	core := make([]Lit, len(confl))
	for i, c := range confl {
		core[i] = c.Negation()
	}
	if st := s.Solve(core); st != Unsat {
		t.Errorf("conflict set is not sufficient: got %v", st)
	}
	// The solver must stay usable and satisfiable without assumptions.
	if st := s.Solve(nil); st != Sat {
		t.Errorf("solver must recover after assumption conflict, got %v", st)
	}
}

func TestConflictBudget(t *testing.T) {
	s := New()
	// A small pigeonhole instance: 4 pigeons, 3 holes.
	const pigeons, holes = 4, 3
	lits := make([][]Lit, pigeons)
	for p := range lits {
		lits[p] = newVars(s, holes)
		s.AddClauseLits(append([]Lit(nil), lits[p]...))
	}
	for h := 0; h < holes; h++ {
		for p1 := 0; p1 < pigeons; p1++ {
			for p2 := p1 + 1; p2 < pigeons; p2++ {
				s.AddClause(lits[p1][h].Negation(), lits[p2][h].Negation())
			}
		}
	}
	s.SetConfBudget(1)
	st := s.Solve(nil)
	s.BudgetOff()
	if st != Indet {
		t.Errorf("expected INDETERMINATE under a one-conflict budget, got %v", st)
	}
	if st := s.Solve(nil); st != Unsat {
		t.Errorf("expected UNSAT without budget, got %v", st)
	}
}

func TestInterrupt(t *testing.T) {
	s := New()
	l := newVars(s, 2)
	s.AddClause(l[0], l[1])
	s.Interrupt()
	if st := s.Solve(nil); st != Sat {
		// A pending interrupt is cleared at solve entry; tiny problems
		// still solve.
		t.Errorf("expected SAT, got %v", st)
	}
}

func TestFreezeEliminated(t *testing.T) {
	s := New()
	l := newVars(s, 3)
	s.AddClause(l[0], l[1])
	s.AddClause(l[0].Negation(), l[2])
	s.Freeze(l[1].Var())
	s.Freeze(l[2].Var())
	s.Preprocess()
	if s.IsEliminated(l[1].Var()) || s.IsEliminated(l[2].Var()) {
		t.Errorf("frozen variables must not be eliminated")
	}
	if st := s.Solve(nil); st != Sat {
		t.Fatalf("expected SAT, got %v", st)
	}
	// Every original clause must hold under the extended model.
	if s.ModelValue(l[0]) != Sat && s.ModelValue(l[1]) != Sat {
		t.Errorf("clause (x1 x2) unsatisfied after elimination")
	}
	if s.ModelValue(l[0]) == Sat && s.ModelValue(l[2]) != Sat {
		t.Errorf("clause (-x1 x3) unsatisfied after elimination")
	}
}

func TestVarMapRoundTrip(t *testing.T) {
	vm := NewVarMap()
	s := New()
	for i := 0; i < 10; i++ {
		v := s.NewVar()
		ext := vm.Map(v)
		if vm.Internal(ext) != v {
			t.Errorf("external %d does not map back to internal %d", ext, v)
		}
		if vm.External(v) != ext {
			t.Errorf("internal %d does not map to external %d", v, ext)
		}
		pos := ext.Lit()
		if vm.ExternalLit(vm.InternalLit(pos)) != pos {
			t.Errorf("lit roundtrip failed for %d", pos.Int())
		}
		neg := pos.Negation()
		if vm.ExternalLit(vm.InternalLit(neg)) != neg {
			t.Errorf("negated lit roundtrip failed for %d", neg.Int())
		}
	}
}

func TestDecisionPriority(t *testing.T) {
	s := New()
	l := newVars(s, 3)
	s.AddClause(l[0], l[1], l[2])
	s.SetDecisionPriority(l[2].Var(), 10)
	if st := s.Solve(nil); st != Sat {
		t.Fatalf("expected SAT, got %v", st)
	}
	if s.ModelValue(l[2]) == Indet {
		t.Errorf("prioritized variable must be assigned")
	}
}
