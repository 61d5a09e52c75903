package bv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crillab/monosat/solver"
)

func TestConstComparisons(t *testing.T) {
	sat := solver.New()
	bvt := New(sat)
	a, err := bvt.NewConst(4, 6)
	require.NoError(t, err)
	b, err := bvt.NewConst(4, 9)
	require.NoError(t, err)

	lt, err := bvt.NewComparisonBV(Lt, a, b)
	require.NoError(t, err)
	gt, err := bvt.NewComparisonBV(Lt, b, a)
	require.NoError(t, err)

	require.Equal(t, solver.Sat, sat.Solve(nil))
	require.Equal(t, solver.Sat, sat.ModelValue(lt), "6 < 9 must hold")
	require.Equal(t, solver.Unsat, sat.ModelValue(gt), "9 < 6 must not hold")
}

func TestComparisonDedup(t *testing.T) {
	sat := solver.New()
	bvt := New(sat)
	a, err := bvt.NewAnon(4)
	require.NoError(t, err)
	l1, err := bvt.NewComparisonConst(Geq, a, 3)
	require.NoError(t, err)
	l2, err := bvt.NewComparisonConst(Geq, a, 3)
	require.NoError(t, err)
	require.Equal(t, l1, l2, "identical atoms must share a literal")
	// lt 3 is the negation of geq 3, and gt 2 is geq 3 again.
	l3, err := bvt.NewComparisonConst(Lt, a, 3)
	require.NoError(t, err)
	require.Equal(t, l1.Negation(), l3)
	l4, err := bvt.NewComparisonConst(Gt, a, 2)
	require.NoError(t, err)
	require.Equal(t, l1, l4)
}

func TestAnonBounds(t *testing.T) {
	sat := solver.New()
	bvt := New(sat)
	a, err := bvt.NewAnon(3)
	require.NoError(t, err)
	geq2, err := bvt.NewComparisonConst(Geq, a, 2)
	require.NoError(t, err)
	leq5, err := bvt.NewComparisonConst(Leq, a, 5)
	require.NoError(t, err)
	sat.AddClause(geq2)
	sat.AddClause(leq5)
	require.Equal(t, solver.Sat, sat.Solve(nil))
	require.GreaterOrEqual(t, bvt.UnderApprox(a), int64(2))
	require.LessOrEqual(t, bvt.OverApprox(a), int64(5))
}

func TestContradictoryBounds(t *testing.T) {
	sat := solver.New()
	bvt := New(sat)
	a, err := bvt.NewAnon(3)
	require.NoError(t, err)
	geq5, err := bvt.NewComparisonConst(Geq, a, 5)
	require.NoError(t, err)
	lt3, err := bvt.NewComparisonConst(Lt, a, 3)
	require.NoError(t, err)
	sat.AddClause(geq5)
	sat.AddClause(lt3)
	require.Equal(t, solver.Unsat, sat.Solve(nil))
}

func TestWidthOneFreeValue(t *testing.T) {
	sat := solver.New()
	bvt := New(sat)
	a, err := bvt.NewAnon(1)
	require.NoError(t, err)
	// Behaves as a free 0/1 value: both assignments are reachable.
	geq1, err := bvt.NewComparisonConst(Geq, a, 1)
	require.NoError(t, err)
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{geq1}))
	require.Equal(t, int64(1), bvt.UnderApprox(a))
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{geq1.Negation()}))
	require.Equal(t, int64(0), bvt.OverApprox(a))
}

func TestAdditionBounds(t *testing.T) {
	sat := solver.New()
	bvt := New(sat)
	a, err := bvt.NewConst(4, 3)
	require.NoError(t, err)
	b, err := bvt.NewConst(4, 4)
	require.NoError(t, err)
	r, err := bvt.NewAnon(4)
	require.NoError(t, err)
	require.NoError(t, bvt.Addition(r, a, b))
	geq8, err := bvt.NewComparisonConst(Geq, r, 8)
	require.NoError(t, err)
	require.Equal(t, solver.Unsat, sat.Solve([]solver.Lit{geq8}), "3+4 cannot reach 8")
	eq7, err := bvt.NewComparisonConst(Geq, r, 7)
	require.NoError(t, err)
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{eq7}))
}

func TestBitvectorFromBits(t *testing.T) {
	sat := solver.New()
	bvt := New(sat)
	bits := []solver.Lit{sat.NewVar().Lit(), sat.NewVar().Lit(), sat.NewVar().Lit()}
	a, err := bvt.NewFromBits(bits)
	require.NoError(t, err)
	// Force value 5 = 101b.
	sat.AddClause(bits[0])
	sat.AddClause(bits[1].Negation())
	sat.AddClause(bits[2])
	require.Equal(t, solver.Sat, sat.Solve(nil))
	require.Equal(t, int64(5), bvt.UnderApprox(a))
	require.Equal(t, int64(5), bvt.OverApprox(a))
}

func TestBitblastAddition(t *testing.T) {
	sat := solver.New()
	bvt := New(sat)
	a, err := bvt.NewAnon(4)
	require.NoError(t, err)
	b, err := bvt.NewAnon(4)
	require.NoError(t, err)
	r, err := bvt.NewAnon(4)
	require.NoError(t, err)
	require.NoError(t, bvt.Addition(r, a, b))
	require.NoError(t, bvt.Bitblast(r))

	aEq3, err := bvt.NewComparisonConst(Geq, a, 3)
	require.NoError(t, err)
	aLeq3, err := bvt.NewComparisonConst(Leq, a, 3)
	require.NoError(t, err)
	bEq4, err := bvt.NewComparisonConst(Geq, b, 4)
	require.NoError(t, err)
	bLeq4, err := bvt.NewComparisonConst(Leq, b, 4)
	require.NoError(t, err)
	assumps := []solver.Lit{aEq3, aLeq3, bEq4, bLeq4}
	require.Equal(t, solver.Sat, sat.Solve(assumps))
	require.Equal(t, int64(7), bvt.UnderApprox(r))
	require.Equal(t, int64(7), bvt.OverApprox(r))

	rNeq7, err := bvt.NewComparisonConst(Gt, r, 7)
	require.NoError(t, err)
	require.Equal(t, solver.Unsat, sat.Solve(append(assumps, rNeq7)))
}

func TestIteBounds(t *testing.T) {
	sat := solver.New()
	bvt := New(sat)
	a, err := bvt.NewConst(4, 2)
	require.NoError(t, err)
	b, err := bvt.NewConst(4, 9)
	require.NoError(t, err)
	r, err := bvt.NewAnon(4)
	require.NoError(t, err)
	cond := sat.NewVar().Lit()
	require.NoError(t, bvt.Ite(cond, a, b, r))
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{cond}))
	require.Equal(t, int64(2), bvt.UnderApprox(r))
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{cond.Negation()}))
	require.Equal(t, int64(9), bvt.UnderApprox(r))
}
