package solver

// Bounded variable elimination. Variables used by theories or exposed
// by name are frozen and never touched. Eliminated variables cannot be
// reintroduced; their model value is recovered by extendModel.

const (
	elimMaxOccur = 10 // Do not try to eliminate vars whose positive times negative occurrence count is larger
)

type elimClause struct {
	lits []Lit
	of   Lit // The literal of the eliminated var inside lits
}

// Preprocess runs bounded variable elimination on the current clause
// database. It must be called at decision level 0. It returns false iff
// preprocessing proved the problem unsat.
func (s *Solver) Preprocess() bool {
	if s.status == Unsat {
		return false
	}
	s.cancelUntil(0)
	if confl := s.propagate(); confl != nil {
		s.status = Unsat
		return false
	}
	occPos := make(map[Var][]*Clause)
	occNeg := make(map[Var][]*Clause)
	for _, c := range s.wl.clauses {
		for i := 0; i < c.Len(); i++ {
			l := c.Get(i)
			if l.IsPositive() {
				occPos[l.Var()] = append(occPos[l.Var()], c)
			} else {
				occNeg[l.Var()] = append(occNeg[l.Var()], c)
			}
		}
	}
	eliminated := 0
	for v := Var(0); int(v) < s.nbVars; v++ {
		if s.frozen[v] || s.eliminated[v] || s.model[v] != 0 {
			continue
		}
		pos, neg := liveClauses(occPos[v]), liveClauses(occNeg[v])
		if len(pos)+len(neg) == 0 || len(pos)*len(neg) > elimMaxOccur {
			continue
		}
		resolvents := make([][]Lit, 0, len(pos)*len(neg))
		ok := true
		for _, cp := range pos {
			for _, cn := range neg {
				if res, taut := resolve(cp, cn, v); !taut {
					resolvents = append(resolvents, res)
					if len(resolvents) > len(pos)+len(neg) {
						ok = false
						break
					}
				}
			}
			if !ok {
				break
			}
		}
		if !ok {
			continue
		}
		for _, c := range pos {
			s.stashForModel(c, v.Lit())
			s.detachForElim(c)
		}
		for _, c := range neg {
			s.stashForModel(c, v.Lit().Negation())
			s.detachForElim(c)
		}
		s.eliminated[v] = true
		s.decision[v] = false
		eliminated++
		for _, res := range resolvents {
			if !s.AddClauseLits(res) {
				return false
			}
		}
		// Rebuild occurrence info for the literals of the new resolvents.
		for _, res := range resolvents {
			c := s.findClauseWith(res)
			if c == nil { // Became unit or satisfied during the add
				continue
			}
			for _, l := range res {
				if l.IsPositive() {
					occPos[l.Var()] = append(occPos[l.Var()], c)
				} else {
					occNeg[l.Var()] = append(occNeg[l.Var()], c)
				}
			}
		}
	}
	if eliminated > 0 {
		s.log.WithField("vars", eliminated).Debug("preprocessing eliminated variables")
		s.rebuildOrderHeap()
	}
	if confl := s.propagate(); confl != nil {
		s.status = Unsat
		return false
	}
	return true
}

// liveClauses filters out clauses already detached by elimination.
func liveClauses(cs []*Clause) []*Clause {
	res := cs[:0]
	for _, c := range cs {
		if c.lits != nil {
			res = append(res, c)
		}
	}
	return res
}

func (s *Solver) stashForModel(c *Clause, of Lit) {
	lits := make([]Lit, c.Len())
	copy(lits, c.lits)
	s.elimStack = append(s.elimStack, elimClause{lits: lits, of: of})
}

func (s *Solver) detachForElim(c *Clause) {
	s.removeClause(c)
	c.lits = nil // Mark dead for the occurrence lists
}

func (s *Solver) findClauseWith(lits []Lit) *Clause {
	// Clauses are appended; the most recent ones are at the back.
	for i := len(s.wl.clauses) - 1; i >= 0; i-- {
		c := s.wl.clauses[i]
		if c.Len() != len(lits) {
			continue
		}
		same := true
		for j, l := range lits {
			if c.Get(j) != l {
				same = false
				break
			}
		}
		if same {
			return c
		}
	}
	return nil
}

// resolve returns the resolvent of cp and cn on v, and whether it is a
// tautology.
func resolve(cp, cn *Clause, v Var) ([]Lit, bool) {
	res := make([]Lit, 0, cp.Len()+cn.Len()-2)
	for i := 0; i < cp.Len(); i++ {
		if l := cp.Get(i); l.Var() != v {
			res = append(res, l)
		}
	}
	for i := 0; i < cn.Len(); i++ {
		l := cn.Get(i)
		if l.Var() == v {
			continue
		}
		dup := false
		for _, l2 := range res {
			if l2 == l {
				dup = true
				break
			}
			if l2 == l.Negation() {
				return nil, true
			}
		}
		if !dup {
			res = append(res, l)
		}
	}
	return res, false
}

// extendModel assigns values to eliminated variables so every clause
// removed by elimination is satisfied by the last model.
func (s *Solver) extendModel() {
	for i := len(s.elimStack) - 1; i >= 0; i-- {
		e := s.elimStack[i]
		sat := false
		for _, l := range e.lits {
			if l == e.of {
				continue
			}
			if assign := s.lastModel[l.Var()]; assign != 0 && (assign > 0) == l.IsPositive() {
				sat = true
				break
			}
		}
		if !sat {
			s.lastModel[e.of.Var()] = lvlToSignedLvl(e.of, 1)
		} else if s.lastModel[e.of.Var()] == 0 {
			s.lastModel[e.of.Var()] = lvlToSignedLvl(e.of.Negation(), 1)
		}
	}
}
