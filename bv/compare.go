package bv

import "github.com/crillab/monosat/solver"

// Comparison atoms. Constant comparisons are canonicalized to
// "vec >= rhs", so the four operators share one atom per bound;
// re-requesting any comparison with identical parameters returns the
// same literal.

// NewComparisonConst returns a literal that is true iff the vector
// compares to the constant under the given operator.
func (t *TheorySolver) NewComparisonConst(kind Comparison, id int, val int64) (solver.Lit, error) {
	if err := t.check(id); err != nil {
		return solver.LitUndef, err
	}
	v := t.vecs[id]
	var rhs int64
	positive := true
	switch kind {
	case Geq:
		rhs = val
	case Lt:
		rhs = val
		positive = false
	case Gt:
		rhs = val + 1
	case Leq:
		rhs = val + 1
		positive = false
	}
	if rhs <= 0 { // vec >= rhs holds trivially
		if positive {
			return t.sat.TrueLit(), nil
		}
		return t.sat.TrueLit().Negation(), nil
	}
	if uint64(rhs) > v.mask() { // vec >= rhs cannot hold
		if positive {
			return t.sat.TrueLit().Negation(), nil
		}
		return t.sat.TrueLit(), nil
	}
	key := constAtomKey{vecID: id, rhs: uint64(rhs)}
	lit, ok := t.dedupConst[key]
	if !ok {
		a := &atom{
			lit:     t.sat.NewTheoryVar(t.id).Lit(),
			vecID:   id,
			isConst: true,
			rhs:     uint64(rhs),
		}
		t.atoms = append(t.atoms, a)
		v.atoms = append(v.atoms, a)
		t.atomOf[a.lit.Var()] = a
		t.dedupConst[key] = a.lit
		t.pending = true
		lit = a.lit
	}
	if positive {
		return lit, nil
	}
	return lit.Negation(), nil
}

// NewComparisonBV returns a literal that is true iff the first vector
// compares to the second under the given operator.
func (t *TheorySolver) NewComparisonBV(kind Comparison, id, other int) (solver.Lit, error) {
	if err := t.check(id, other); err != nil {
		return solver.LitUndef, err
	}
	// a < b and b > a are the same atom; normalize to Lt/Leq.
	lhs, rhs := id, other
	if kind == Gt {
		kind, lhs, rhs = Lt, other, id
	} else if kind == Geq {
		kind, lhs, rhs = Leq, other, id
	}
	key := bvAtomKey{vecID: lhs, kind: kind, rhsVec: rhs}
	if lit, ok := t.dedupBV[key]; ok {
		return lit, nil
	}
	a := &atom{
		lit:    t.sat.NewTheoryVar(t.id).Lit(),
		vecID:  lhs,
		kind:   kind,
		rhsVec: rhs,
	}
	t.atoms = append(t.atoms, a)
	t.vecs[lhs].atoms = append(t.vecs[lhs].atoms, a)
	if rhs != lhs {
		t.vecs[rhs].atoms = append(t.vecs[rhs].atoms, a)
	}
	t.atomOf[a.lit.Var()] = a
	t.dedupBV[key] = a.lit
	t.pending = true
	return a.lit, nil
}
