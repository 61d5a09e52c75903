package optimize

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/crillab/monosat/bv"
	"github.com/crillab/monosat/pb"
	"github.com/crillab/monosat/solver"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestMinimizeBV(t *testing.T) {
	sat := solver.New()
	bvt := bv.New(sat)
	pbs := pb.New(sat)
	a, err := bvt.NewAnon(3)
	require.NoError(t, err)
	geq2, err := bvt.NewComparisonConst(bv.Geq, a, 2)
	require.NoError(t, err)
	sat.AddClause(geq2)

	res := Solve(sat, bvt, pbs, quietLogger(), nil, []Objective{BVObjective(a, false)})
	require.Equal(t, solver.Sat, res.Status)
	require.True(t, res.Optimal)
	require.Equal(t, int64(2), bvt.UnderApprox(a))
}

func TestMaximizeBV(t *testing.T) {
	sat := solver.New()
	bvt := bv.New(sat)
	pbs := pb.New(sat)
	a, err := bvt.NewAnon(3)
	require.NoError(t, err)
	leq5, err := bvt.NewComparisonConst(bv.Leq, a, 5)
	require.NoError(t, err)
	sat.AddClause(leq5)

	res := Solve(sat, bvt, pbs, quietLogger(), nil, []Objective{BVObjective(a, true)})
	require.Equal(t, solver.Sat, res.Status)
	require.True(t, res.Optimal)
	require.Equal(t, int64(5), bvt.UnderApprox(a))
}

func TestMinimizeLits(t *testing.T) {
	sat := solver.New()
	pbs := pb.New(sat)
	lits := make([]solver.Lit, 3)
	for i := range lits {
		lits[i] = sat.NewVar().Lit()
	}
	// At least one of the three must hold.
	sat.AddClauseLits(append([]solver.Lit(nil), lits...))
	res := Solve(sat, nil, pbs, quietLogger(), nil, []Objective{LitsObjective(lits, nil, false)})
	require.Equal(t, solver.Sat, res.Status)
	require.True(t, res.Optimal)
	n := 0
	for _, l := range lits {
		if sat.ModelValue(l) == solver.Sat {
			n++
		}
	}
	require.Equal(t, 1, n, "minimum is one true literal")
}

func TestLexicographic(t *testing.T) {
	sat := solver.New()
	bvt := bv.New(sat)
	pbs := pb.New(sat)
	a, err := bvt.NewAnon(3)
	require.NoError(t, err)
	b, err := bvt.NewAnon(3)
	require.NoError(t, err)
	// a + b >= 4, both in [0, 7]: maximizing a first pins it to 7.
	sum, err := bvt.NewAnon(4)
	require.NoError(t, err)
	require.NoError(t, bvt.Addition(sum, a, b))
	require.NoError(t, bvt.Bitblast(sum))
	geq4, err := bvt.NewComparisonConst(bv.Geq, sum, 4)
	require.NoError(t, err)
	sat.AddClause(geq4)

	res := Solve(sat, bvt, pbs, quietLogger(), nil, []Objective{
		BVObjective(a, true),
		BVObjective(b, false),
	})
	require.Equal(t, solver.Sat, res.Status)
	require.True(t, res.Optimal)
	require.Equal(t, int64(7), bvt.UnderApprox(a), "first objective reaches its optimum")
	require.Equal(t, int64(0), bvt.UnderApprox(b), "second objective optimized under the pin")
}

func TestUnsatStaysOptimal(t *testing.T) {
	sat := solver.New()
	pbs := pb.New(sat)
	l := sat.NewVar().Lit()
	sat.AddClause(l)
	res := Solve(sat, nil, pbs, quietLogger(), []solver.Lit{l.Negation()}, nil)
	require.Equal(t, solver.Unsat, res.Status)
	require.True(t, res.Optimal, "unsat answers count as optimal among the empty set")
}

func TestMinimizeCore(t *testing.T) {
	sat := solver.New()
	lits := make([]solver.Lit, 4)
	for i := range lits {
		lits[i] = sat.NewVar().Lit()
	}
	// lits[0] and lits[1] are jointly contradictory; the others are
	// irrelevant padding.
	sat.AddClause(lits[0].Negation(), lits[1].Negation())
	assumps := []solver.Lit{lits[2], lits[0], lits[3], lits[1]}
	require.Equal(t, solver.Unsat, sat.Solve(assumps))

	core := MinimizeCore(sat, assumps, 1_000_000)
	require.Len(t, core, 2)
	require.Contains(t, core, lits[0])
	require.Contains(t, core, lits[1])
	// The conflict set was rewritten to match the minimized core.
	require.Len(t, sat.Conflict(), 2)
	// The shrunken core still proves unsat.
	require.Equal(t, solver.Unsat, sat.Solve(core))
	// And it is locally minimal: dropping either literal is SAT.
	for i := range core {
		probe := append([]solver.Lit(nil), core[:i]...)
		probe = append(probe, core[i+1:]...)
		require.Equal(t, solver.Sat, sat.Solve(probe))
	}
}
