package solver

// Conflict analysis: first-UIP clause learning with reason-side
// minimization, and final-conflict analysis for failed assumptions.

// analyze derives a learned clause from the given conflict. The first
// literal of the result is the asserting literal; btLevel is the level
// to backjump to before asserting it.
func (s *Solver) analyze(confl *Clause) (learnt []Lit, btLevel int) {
	learnt = append(s.analyzeBuf[:0], LitUndef) // Room for the asserting literal
	pathC := 0
	p := LitUndef
	idx := len(s.trail) - 1
	for {
		s.clauseBumpActivity(confl)
		for j := 0; j < confl.Len(); j++ {
			q := confl.Get(j)
			if q == p {
				continue
			}
			v := q.Var()
			if s.seen[v] || s.varLevel(v) == 0 {
				continue
			}
			s.seen[v] = true
			s.varBumpActivity(v)
			if s.varLevel(v) >= s.decisionLevel() {
				pathC++
			} else {
				learnt = append(learnt, q)
			}
		}
		for !s.seen[s.trail[idx].Var()] {
			idx--
		}
		p = s.trail[idx]
		idx--
		s.seen[p.Var()] = false
		pathC--
		if pathC <= 0 {
			break
		}
		confl = s.materializeReason(p.Var())
	}
	learnt[0] = p.Negation()
	learnt = s.minimizeLearned(learnt)
	s.analyzeBuf = learnt[:0]
	// Find the backjump level and put a literal of that level in second
	// position so it gets watched.
	if len(learnt) == 1 {
		btLevel = 0
	} else {
		maxIdx := 1
		for i := 2; i < len(learnt); i++ {
			if s.varLevel(learnt[i].Var()) > s.varLevel(learnt[maxIdx].Var()) {
				maxIdx = i
			}
		}
		learnt[1], learnt[maxIdx] = learnt[maxIdx], learnt[1]
		btLevel = s.varLevel(learnt[1].Var())
	}
	for _, l := range learnt {
		s.seen[l.Var()] = false
	}
	return learnt, btLevel
}

// minimizeLearned removes literals whose reason is already covered by
// the rest of the clause.
func (s *Solver) minimizeLearned(learnt []Lit) []Lit {
	sz := 1
	for i := 1; i < len(learnt); i++ {
		v := learnt[i].Var()
		reason := s.materializeReason(v)
		if reason == nil {
			learnt[sz] = learnt[i]
			sz++
			continue
		}
		redundant := true
		for k := 0; k < reason.Len(); k++ {
			q := reason.Get(k)
			if q.Var() == v {
				continue
			}
			if !s.seen[q.Var()] && s.varLevel(q.Var()) > 0 {
				redundant = false
				break
			}
		}
		if !redundant {
			learnt[sz] = learnt[i]
			sz++
		} else {
			s.seen[v] = false
		}
	}
	return learnt[:sz]
}

// analyzeFinal computes the subset of assumptions responsible for
// forcing the assumption p false. The result is a clause over negated
// assumptions, starting with p's negation.
func (s *Solver) analyzeFinal(p Lit) []Lit {
	out := []Lit{p.Negation()}
	if s.decisionLevel() == 0 {
		return out
	}
	s.seen[p.Var()] = true
	bottom := s.trailLim[0]
	for i := len(s.trail) - 1; i >= bottom; i-- {
		v := s.trail[i].Var()
		if !s.seen[v] {
			continue
		}
		if reason := s.materializeReason(v); reason == nil {
			// A decision below the assumption levels is an assumption.
			if s.isAssumed[v] {
				out = append(out, s.trail[i].Negation())
			}
		} else {
			for j := 0; j < reason.Len(); j++ {
				q := reason.Get(j)
				if q.Var() != v && s.varLevel(q.Var()) > 0 {
					s.seen[q.Var()] = true
				}
			}
		}
		s.seen[v] = false
	}
	s.seen[p.Var()] = false
	return out
}
