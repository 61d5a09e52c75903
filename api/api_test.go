package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crillab/monosat/bv"
	"github.com/crillab/monosat/pb"
	"github.com/crillab/monosat/solver"
)

func newTestSolver(t *testing.T) *Solver {
	t.Helper()
	s, err := NewSolver(nil)
	require.NoError(t, err)
	t.Cleanup(s.Destroy)
	return s
}

func lits(vars ...solver.Var) []solver.Lit {
	res := make([]solver.Lit, len(vars))
	for i, v := range vars {
		res[i] = v.Lit()
	}
	return res
}

func TestEmptyProblem(t *testing.T) {
	s := newTestSolver(t)
	sat, err := s.Solve()
	require.NoError(t, err)
	require.True(t, sat, "no variables and no clauses is SAT with the empty model")
}

func TestUnsatClauses(t *testing.T) {
	s := newTestSolver(t)
	x1, err := s.NewVar()
	require.NoError(t, err)
	x2, err := s.NewVar()
	require.NoError(t, err)
	_, err = s.AddClause(x1.Lit(), x2.Lit())
	require.NoError(t, err)
	_, err = s.AddClause(x1.Lit().Negation(), x2.Lit())
	require.NoError(t, err)
	_, err = s.AddClause(x2.Lit().Negation())
	require.NoError(t, err)
	sat, err := s.Solve()
	require.NoError(t, err)
	require.False(t, sat)
	require.Empty(t, s.ConflictClause(), "no assumptions, so the conflict set is empty")
}

func TestGraphReachScenario(t *testing.T) {
	s := newTestSolver(t)
	g, err := s.NewGraph()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := g.NewNode()
		require.NoError(t, err)
	}
	a, err := g.NewEdge(0, 1, 1)
	require.NoError(t, err)
	b, err := g.NewEdge(1, 2, 1)
	require.NoError(t, err)
	r, err := g.Reaches(0, 2)
	require.NoError(t, err)

	sat, err := s.SolveAssumptions([]solver.Lit{a, b})
	require.NoError(t, err)
	require.True(t, sat)
	val, err := s.ModelLiteral(r)
	require.NoError(t, err)
	require.Equal(t, ResultSat, val)
	nodes, err := g.ModelPathNodes(r)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, nodes)
	edgeLits, err := g.ModelPathEdgeLits(r)
	require.NoError(t, err)
	require.Equal(t, []solver.Lit{a, b}, edgeLits)

	sat, err = s.SolveAssumptions([]solver.Lit{a, b.Negation()})
	require.NoError(t, err)
	require.True(t, sat)
	val, err = s.ModelLiteral(r)
	require.NoError(t, err)
	require.Equal(t, ResultUnsat, val)
}

func TestDistanceScenario(t *testing.T) {
	s := newTestSolver(t)
	g, err := s.NewGraph()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := g.NewNode()
		require.NoError(t, err)
	}
	a, err := g.NewEdge(0, 1, 3)
	require.NoError(t, err)
	b, err := g.NewEdge(1, 2, 4)
	require.NoError(t, err)
	leq, err := g.ShortestPathLeqConst(0, 2, 7)
	require.NoError(t, err)
	lt, err := g.ShortestPathLtConst(0, 2, 7)
	require.NoError(t, err)

	sat, err := s.SolveAssumptions([]solver.Lit{a, b})
	require.NoError(t, err)
	require.True(t, sat)
	val, err := s.ModelLiteral(leq)
	require.NoError(t, err)
	require.Equal(t, ResultSat, val, "3+4 <= 7")
	val, err = s.ModelLiteral(lt)
	require.NoError(t, err)
	require.Equal(t, ResultUnsat, val, "3+4 is not < 7")
}

func TestBVComparisonScenario(t *testing.T) {
	s := newTestSolver(t)
	require.NoError(t, s.InitBVTheory())
	bv0, err := s.NewBitvectorConst(4, 6)
	require.NoError(t, err)
	bv1, err := s.NewBitvectorConst(4, 9)
	require.NoError(t, err)
	l, err := s.NewBVComparisonBV(bv.Lt, bv0, bv1)
	require.NoError(t, err)
	l2, err := s.NewBVComparisonBV(bv.Lt, bv1, bv0)
	require.NoError(t, err)
	sat, err := s.Solve()
	require.NoError(t, err)
	require.True(t, sat)
	val, err := s.ModelLiteral(l)
	require.NoError(t, err)
	require.Equal(t, ResultSat, val)
	val, err = s.ConstantModelLiteral(l2)
	require.NoError(t, err)
	require.Equal(t, ResultUnsat, val, "9 < 6 is false at level 0")
}

func TestMinimizeBVScenario(t *testing.T) {
	s := newTestSolver(t)
	require.NoError(t, s.InitBVTheory())
	a, err := s.NewBitvectorAnon(3)
	require.NoError(t, err)
	geq2, err := s.NewBVComparisonConst(bv.Geq, a, 2)
	require.NoError(t, err)
	_, err = s.AddUnitClause(geq2)
	require.NoError(t, err)
	require.NoError(t, s.MinimizeBV(a))
	sat, err := s.Solve()
	require.NoError(t, err)
	require.True(t, sat)
	v, err := s.ModelBV(a, false)
	require.NoError(t, err)
	require.Equal(t, int64(2), v)
	require.True(t, s.LastSolutionWasOptimal())
}

func TestMaxFlowScenario(t *testing.T) {
	s := newTestSolver(t)
	g, err := s.NewGraph()
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := g.NewNode()
		require.NoError(t, err)
	}
	var edges []solver.Lit
	for _, e := range [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}} {
		l, err := g.NewEdge(e[0], e[1], 1)
		require.NoError(t, err)
		edges = append(edges, l)
	}
	m, err := g.MaximumFlowGeq(0, 3, 2)
	require.NoError(t, err)
	sat, err := s.SolveAssumptions(edges)
	require.NoError(t, err)
	require.True(t, sat)
	val, err := s.ModelLiteral(m)
	require.NoError(t, err)
	require.Equal(t, ResultSat, val)
	flow, err := g.ModelMaxFlow(m)
	require.NoError(t, err)
	require.Equal(t, int64(2), flow)
	var total int64
	for _, e := range edges[:2] {
		f, err := g.ModelAcyclicEdgeFlow(m, e)
		require.NoError(t, err)
		total += f
	}
	require.Equal(t, int64(2), total)
}

func TestUnsatCore(t *testing.T) {
	s := newTestSolver(t)
	vars := make([]solver.Var, 4)
	for i := range vars {
		v, err := s.NewVar()
		require.NoError(t, err)
		vars[i] = v
	}
	_, err := s.AddClause(vars[0].Lit().Negation(), vars[1].Lit().Negation())
	require.NoError(t, err)
	assumps := lits(vars[2], vars[0], vars[3], vars[1])
	sat, err := s.SolveAssumptions(assumps)
	require.NoError(t, err)
	require.False(t, sat)
	confl := s.ConflictClause()
	require.NotEmpty(t, confl)
	// The conflict is sufficient: assuming exactly the blamed subset
	// stays unsat.
	core := make([]solver.Lit, len(confl))
	for i, l := range confl {
		core[i] = l.Negation()
	}
	sat, err = s.SolveAssumptions(core)
	require.NoError(t, err)
	require.False(t, sat)

	minimized, err := s.MinimizeUnsatCore(assumps)
	require.NoError(t, err)
	require.Len(t, minimized, 2)
	require.Contains(t, minimized, vars[0].Lit())
	require.Contains(t, minimized, vars[1].Lit())
}

func TestAtomDeduplication(t *testing.T) {
	s := newTestSolver(t)
	g, err := s.NewGraph()
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := g.NewNode()
		require.NoError(t, err)
	}
	_, err = g.NewEdge(0, 1, 1)
	require.NoError(t, err)
	r1, err := g.Reaches(0, 1)
	require.NoError(t, err)
	r2, err := g.Reaches(0, 1)
	require.NoError(t, err)
	require.Equal(t, r1, r2)
}

func TestNames(t *testing.T) {
	s := newTestSolver(t)
	v, err := s.NewNamedVar("x")
	require.NoError(t, err)
	require.True(t, s.HasVariableWithName("x"))
	got, err := s.Variable("x")
	require.NoError(t, err)
	require.Equal(t, v, got)
	require.Equal(t, "x", s.VariableName(v))
	require.Equal(t, []solver.Var{v}, s.NamedVariables())

	_, err = s.NewNamedVar("x")
	require.Error(t, err, "names must be unique")
	_, err = s.NewNamedVar("bad name")
	require.Error(t, err, "whitespace is not allowed in names")
	_, err = s.NewNamedVar("caf\xc3\xa9")
	require.Error(t, err, "names must be 7-bit ASCII")

	g, err := s.NewGraphNamed("grid", -2)
	require.NoError(t, err)
	require.Equal(t, g, s.GetGraph("grid"))
	n, err := g.NewNodeNamed("source")
	require.NoError(t, err)
	require.Equal(t, "source", g.NodeName(n))
	_, err = g.NewNodeNamed("source")
	require.Error(t, err, "node names must be unique within a graph")
}

func TestEdgeSet(t *testing.T) {
	s := newTestSolver(t)
	g, err := s.NewGraph()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := g.NewNode()
		require.NoError(t, err)
	}
	e1, err := g.NewEdge(0, 1, 1)
	require.NoError(t, err)
	e2, err := g.NewEdge(0, 2, 1)
	require.NoError(t, err)
	require.NoError(t, g.NewEdgeSet([]solver.Lit{e1, e2}, true))
	sat, err := s.SolveAssumptions([]solver.Lit{e1, e2})
	require.NoError(t, err)
	require.False(t, sat, "exactly one edge of the set may be enabled")
	sat, err = s.SolveAssumptions([]solver.Lit{e1.Negation(), e2.Negation()})
	require.NoError(t, err)
	require.False(t, sat, "at least one edge of the set must be enabled")
	sat, err = s.SolveAssumptions([]solver.Lit{e1})
	require.NoError(t, err)
	require.True(t, sat)
}

func TestFlowRouter(t *testing.T) {
	s := newTestSolver(t)
	g, err := s.NewGraph()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := g.NewNode()
		require.NoError(t, err)
	}
	e1, err := g.NewEdge(0, 1, 1)
	require.NoError(t, err)
	e2, err := g.NewEdge(1, 2, 1)
	require.NoError(t, err)
	mf, err := g.MaximumFlowGeq(0, 2, 1)
	require.NoError(t, err)
	r1, err := g.Reaches(0, 1)
	require.NoError(t, err)
	router, err := s.CreateFlowRouting(g, 0, 2, mf)
	require.NoError(t, err)
	disV, err := s.NewVar()
	require.NoError(t, err)
	require.NoError(t, router.AddRoutingNet(disV.Lit(), []solver.Lit{e1}, []solver.Lit{r1}))
	sat, err := s.SolveAssumptions([]solver.Lit{disV.Lit().Negation(), e2})
	require.NoError(t, err)
	require.True(t, sat)
	// The net is active: its member edge and reach literal must hold.
	val, err := s.ModelLiteral(e1)
	require.NoError(t, err)
	require.Equal(t, ResultSat, val)
	val, err = s.ModelLiteral(r1)
	require.NoError(t, err)
	require.Equal(t, ResultSat, val)
}

func TestFSMAccept(t *testing.T) {
	s := newTestSolver(t)
	m, err := s.NewFSM(2, 0)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := s.NewState(m)
		require.NoError(t, err)
	}
	tr, err := s.NewTransition(m, 0, 1, 1, 0)
	require.NoError(t, err)
	str, err := s.NewString([]int{1})
	require.NoError(t, err)
	acc, err := s.FSMAcceptsString(m, 0, 1, str)
	require.NoError(t, err)
	sat, err := s.SolveAssumptions([]solver.Lit{tr})
	require.NoError(t, err)
	require.True(t, sat)
	val, err := s.ModelLiteral(acc)
	require.NoError(t, err)
	require.Equal(t, ResultSat, val)
}

func TestPBAssertions(t *testing.T) {
	s := newTestSolver(t)
	vars := make([]solver.Var, 3)
	for i := range vars {
		v, err := s.NewVar()
		require.NoError(t, err)
		vars[i] = v
	}
	require.NoError(t, s.AssertPB(2, lits(vars...), []int{1, 1, 1}, pb.LEQ))
	require.NoError(t, s.FlushPB())
	sat, err := s.SolveAssumptions(lits(vars...))
	require.NoError(t, err)
	require.False(t, sat)
	sat, err = s.SolveAssumptions(lits(vars[:2]...))
	require.NoError(t, err)
	require.True(t, sat)
}

func TestAtMostOneAPI(t *testing.T) {
	s := newTestSolver(t)
	vars := make([]solver.Var, 3)
	for i := range vars {
		v, err := s.NewVar()
		require.NoError(t, err)
		vars[i] = v
	}
	require.NoError(t, s.AtMostOne(vars))
	sat, err := s.SolveAssumptions(lits(vars[0], vars[1]))
	require.NoError(t, err)
	require.False(t, sat)
	sat, err = s.SolveAssumptions(lits(vars[0]))
	require.NoError(t, err)
	require.True(t, sat)
}

func TestDestroyedSolver(t *testing.T) {
	s, err := NewSolver(nil)
	require.NoError(t, err)
	s.Destroy()
	_, err = s.NewVar()
	require.Error(t, err)
	apiErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrState, apiErr.Kind)
	s.Destroy() // Idempotent
}

func TestUnknownOption(t *testing.T) {
	_, err := NewSolver(&Options{MaxFlowAlg: "bogus"})
	require.Error(t, err)
	apiErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrDomain, apiErr.Kind)
}

func TestTranscriptReplay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "problem.gnf")
	s, err := NewSolver(&Options{TranscriptPath: path})
	require.NoError(t, err)
	defer s.Destroy()

	g, err := s.NewGraph()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := g.NewNode()
		require.NoError(t, err)
	}
	a, err := g.NewEdge(0, 1, 1)
	require.NoError(t, err)
	b, err := g.NewEdge(1, 2, 1)
	require.NoError(t, err)
	r, err := g.Reaches(0, 2)
	require.NoError(t, err)
	_, err = s.AddClause(r)
	require.NoError(t, err)
	res, err := s.SolveAssumptionsLimited([]solver.Lit{a, b})
	require.NoError(t, err)
	require.Equal(t, ResultSat, res)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	replayed, err := NewSolver(nil)
	require.NoError(t, err)
	defer replayed.Destroy()
	got, err := replayed.ReadGNF(path)
	require.NoError(t, err)
	require.Equal(t, ResultSat, got, "replay reproduces the original result")
}

func TestTranscriptReplayUnsat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "problem.gnf")
	s, err := NewSolver(&Options{TranscriptPath: path})
	require.NoError(t, err)
	defer s.Destroy()
	v1, err := s.NewVar()
	require.NoError(t, err)
	v2, err := s.NewVar()
	require.NoError(t, err)
	_, err = s.AddClause(v1.Lit(), v2.Lit())
	require.NoError(t, err)
	_, err = s.AddClause(v1.Lit().Negation(), v2.Lit())
	require.NoError(t, err)
	_, err = s.AddClause(v2.Lit().Negation())
	require.NoError(t, err)
	res, err := s.SolveLimited()
	require.NoError(t, err)
	require.Equal(t, ResultUnsat, res)

	replayed, err := NewSolver(nil)
	require.NoError(t, err)
	defer replayed.Destroy()
	got, err := replayed.ReadGNF(path)
	require.NoError(t, err)
	require.Equal(t, ResultUnsat, got)
}

func TestDeterminism(t *testing.T) {
	run := func() (int, []solver.Lit) {
		s, err := NewSolver(nil)
		require.NoError(t, err)
		defer s.Destroy()
		g, err := s.NewGraph()
		require.NoError(t, err)
		for i := 0; i < 4; i++ {
			_, err := g.NewNode()
			require.NoError(t, err)
		}
		var edges []solver.Lit
		for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 3}, {0, 3}} {
			l, err := g.NewEdge(e[0], e[1], 1)
			require.NoError(t, err)
			edges = append(edges, l)
		}
		r, err := g.Reaches(0, 3)
		require.NoError(t, err)
		_, err = s.AddClause(r)
		require.NoError(t, err)
		res, err := s.SolveAssumptionsLimited([]solver.Lit{edges[3].Negation()})
		require.NoError(t, err)
		model := make([]solver.Lit, 0, len(edges))
		for _, e := range edges {
			val, err := s.ModelLiteral(e)
			require.NoError(t, err)
			if val == ResultSat {
				model = append(model, e)
			}
		}
		return res, model
	}
	res1, model1 := run()
	res2, model2 := run()
	require.Equal(t, res1, res2)
	require.Equal(t, model1, model2, "identical runs produce identical models")
}

func TestBVEquality(t *testing.T) {
	s := newTestSolver(t)
	require.NoError(t, s.InitBVTheory())
	a, err := s.NewBitvectorAnon(3)
	require.NoError(t, err)
	eq5, err := s.NewBVComparisonConstEq(a, 5)
	require.NoError(t, err)
	sat, err := s.SolveAssumptions([]solver.Lit{eq5})
	require.NoError(t, err)
	require.True(t, sat)
	v, err := s.ModelBV(a, false)
	require.NoError(t, err)
	require.Equal(t, int64(5), v)
	neq5, err := s.NewBVComparisonConstNeq(a, 5)
	require.NoError(t, err)
	sat, err = s.SolveAssumptions([]solver.Lit{neq5})
	require.NoError(t, err)
	require.True(t, sat)
	v, err = s.ModelBV(a, false)
	require.NoError(t, err)
	require.NotEqual(t, int64(5), v)
}
