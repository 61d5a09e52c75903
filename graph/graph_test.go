package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crillab/monosat/bv"
	"github.com/crillab/monosat/solver"
)

func newLineGraph(t *testing.T, sat *solver.Solver, weights []int64) (*TheorySolver, []solver.Lit) {
	t.Helper()
	g := New(sat, nil, 0, "", -2, DefaultAlgConfig())
	for i := 0; i <= len(weights); i++ {
		g.NewNode()
	}
	lits := make([]solver.Lit, len(weights))
	for i, w := range weights {
		l, err := g.NewEdge(i, i+1, sat.NewVar(), w)
		require.NoError(t, err)
		lits[i] = l
	}
	return g, lits
}

func TestReach(t *testing.T) {
	sat := solver.New()
	g, edges := newLineGraph(t, sat, []int64{1, 1})
	r, existed, err := g.Reaches(0, 2, -1)
	require.NoError(t, err)
	require.False(t, existed)

	require.Equal(t, solver.Sat, sat.Solve(edges))
	require.Equal(t, solver.Sat, sat.ModelValue(r))
	nodes, err := g.ModelPathNodes(r)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, nodes)

	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{edges[0], edges[1].Negation()}))
	require.Equal(t, solver.Unsat, sat.ModelValue(r))
}

func TestReachMonotone(t *testing.T) {
	sat := solver.New()
	g, edges := newLineGraph(t, sat, []int64{1, 1})
	// A second, longer route 0 -> 3 -> 2.
	n3 := g.NewNode()
	e3, err := g.NewEdge(0, n3, sat.NewVar(), 1)
	require.NoError(t, err)
	e4, err := g.NewEdge(n3, 2, sat.NewVar(), 1)
	require.NoError(t, err)
	r, _, err := g.Reaches(0, 2, -1)
	require.NoError(t, err)

	// Reachable through the alternate route even with edge 1 disabled.
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{edges[0].Negation(), edges[1], e3, e4}))
	require.Equal(t, solver.Sat, sat.ModelValue(r))
	// Enabling more edges never flips a true reach atom false.
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{edges[0], edges[1], e3, e4}))
	require.Equal(t, solver.Sat, sat.ModelValue(r))
	// All routes cut: atom must be false.
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{edges[1].Negation(), e4.Negation()}))
	require.Equal(t, solver.Unsat, sat.ModelValue(r))
}

func TestReachAtomForcesEdges(t *testing.T) {
	sat := solver.New()
	g, edges := newLineGraph(t, sat, []int64{1, 1})
	r, _, err := g.Reaches(0, 2, -1)
	require.NoError(t, err)
	// Asserting the atom true with one edge disabled forces a conflict
	// with the remaining cut.
	require.Equal(t, solver.Unsat, sat.Solve([]solver.Lit{r, edges[0].Negation()}))
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{r}))
	require.Equal(t, solver.Sat, sat.ModelValue(edges[0]))
	require.Equal(t, solver.Sat, sat.ModelValue(edges[1]))
}

func TestReachSelf(t *testing.T) {
	sat := solver.New()
	g, _ := newLineGraph(t, sat, []int64{1})
	r, existed, err := g.Reaches(0, 0, -1)
	require.NoError(t, err)
	require.True(t, existed, "self reachability needs no new variable")
	require.Equal(t, solver.Sat, sat.Solve(nil))
	require.Equal(t, solver.Sat, sat.ModelValue(r))
}

func TestBoundedReach(t *testing.T) {
	sat := solver.New()
	g, edges := newLineGraph(t, sat, []int64{1, 1, 1})
	r2, _, err := g.Reaches(0, 3, 2)
	require.NoError(t, err)
	r3, _, err := g.Reaches(0, 3, 3)
	require.NoError(t, err)
	require.Equal(t, solver.Sat, sat.Solve(edges))
	require.Equal(t, solver.Unsat, sat.ModelValue(r2), "3 hops cannot fit in 2")
	require.Equal(t, solver.Sat, sat.ModelValue(r3))
}

func TestDistance(t *testing.T) {
	sat := solver.New()
	g, edges := newLineGraph(t, sat, []int64{3, 4})
	leq, _, err := g.Distance(0, 2, 7, false)
	require.NoError(t, err)
	lt, _, err := g.Distance(0, 2, 7, true)
	require.NoError(t, err)
	require.Equal(t, solver.Sat, sat.Solve(edges))
	require.Equal(t, solver.Sat, sat.ModelValue(leq), "3+4 <= 7")
	require.Equal(t, solver.Unsat, sat.ModelValue(lt), "3+4 is not < 7")
	nodes, err := g.ModelPathNodes(leq)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, nodes)
}

func TestDistanceBV(t *testing.T) {
	sat := solver.New()
	bvt := bv.New(sat)
	g := New(sat, bvt, 0, "", 4, DefaultAlgConfig())
	for i := 0; i < 3; i++ {
		g.NewNode()
	}
	w0, err := bvt.NewConst(4, 3)
	require.NoError(t, err)
	w1, err := bvt.NewConst(4, 5)
	require.NoError(t, err)
	e0, err := g.NewEdgeBV(0, 1, sat.NewVar(), w0)
	require.NoError(t, err)
	e1, err := g.NewEdgeBV(1, 2, sat.NewVar(), w1)
	require.NoError(t, err)
	bound, err := bvt.NewConst(4, 8)
	require.NoError(t, err)
	leq, _, err := g.DistanceBV(0, 2, bound, false)
	require.NoError(t, err)
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{e0, e1}))
	require.Equal(t, solver.Sat, sat.ModelValue(leq), "3+5 <= 8")
}

func TestMaxFlowDiamond(t *testing.T) {
	for _, alg := range []MaxFlowAlg{MaxFlowEdmondsKarp, MaxFlowDinitz} {
		sat := solver.New()
		cfg := DefaultAlgConfig()
		cfg.MaxFlow = alg
		g := New(sat, nil, 0, "", -2, cfg)
		for i := 0; i < 4; i++ {
			g.NewNode()
		}
		var edges []solver.Lit
		for _, e := range [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}} {
			l, err := g.NewEdge(e[0], e[1], sat.NewVar(), 1)
			require.NoError(t, err)
			edges = append(edges, l)
		}
		m, _, err := g.MaxFlow(0, 3, 2, false)
		require.NoError(t, err)
		require.Equal(t, solver.Sat, sat.Solve(edges))
		require.Equal(t, solver.Sat, sat.ModelValue(m))
		flow, err := g.ModelMaxFlow(m)
		require.NoError(t, err)
		require.Equal(t, int64(2), flow)
		var total int64
		for _, e := range edges[:2] {
			f, err := g.ModelAcyclicEdgeFlow(m, e)
			require.NoError(t, err)
			total += f
		}
		require.Equal(t, int64(2), total, "acyclic flow out of the source sums to the flow value")

		// Cutting one source edge leaves at most one unit of flow.
		require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{edges[0].Negation(), edges[1], edges[2], edges[3]}))
		require.Equal(t, solver.Unsat, sat.ModelValue(m))
	}
}

func TestMST(t *testing.T) {
	sat := solver.New()
	g := New(sat, nil, 0, "", -2, DefaultAlgConfig())
	for i := 0; i < 3; i++ {
		g.NewNode()
	}
	e0, err := g.NewEdge(0, 1, sat.NewVar(), 1)
	require.NoError(t, err)
	e1, err := g.NewEdge(1, 2, sat.NewVar(), 2)
	require.NoError(t, err)
	e2, err := g.NewEdge(0, 2, sat.NewVar(), 10)
	require.NoError(t, err)
	leq3, _, err := g.MSTWeight(3, false)
	require.NoError(t, err)
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{e0, e1, e2}))
	require.Equal(t, solver.Sat, sat.ModelValue(leq3), "tree {1, 2} weighs 3")
	w, err := g.ModelMSTWeight(leq3)
	require.NoError(t, err)
	require.Equal(t, int64(3), w)
	// Without the cheap middle edge the tree must use the heavy one.
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{e0, e1.Negation(), e2}))
	require.Equal(t, solver.Unsat, sat.ModelValue(leq3))
}

func TestAcyclicDirected(t *testing.T) {
	for _, alg := range []CycleAlg{CycleDFS, CyclePK} {
		sat := solver.New()
		cfg := DefaultAlgConfig()
		cfg.Cycle = alg
		g := New(sat, nil, 0, "", -2, cfg)
		for i := 0; i < 3; i++ {
			g.NewNode()
		}
		e0, err := g.NewEdge(0, 1, sat.NewVar(), 1)
		require.NoError(t, err)
		e1, err := g.NewEdge(1, 2, sat.NewVar(), 1)
		require.NoError(t, err)
		e2, err := g.NewEdge(2, 0, sat.NewVar(), 1)
		require.NoError(t, err)
		a, _, err := g.Acyclic(true)
		require.NoError(t, err)
		require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{e0, e1, e2}))
		require.Equal(t, solver.Unsat, sat.ModelValue(a), "a 3-cycle is not acyclic")
		require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{e0, e1, e2.Negation()}))
		require.Equal(t, solver.Sat, sat.ModelValue(a))
		// Requiring acyclicity forces some cycle edge off.
		require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{a}))
		cycleIntact := sat.ModelValue(e0) == solver.Sat &&
			sat.ModelValue(e1) == solver.Sat && sat.ModelValue(e2) == solver.Sat
		require.False(t, cycleIntact)
	}
}

func TestAcyclicUndirected(t *testing.T) {
	sat := solver.New()
	g := New(sat, nil, 0, "", -2, DefaultAlgConfig())
	for i := 0; i < 3; i++ {
		g.NewNode()
	}
	e0, err := g.NewEdge(0, 1, sat.NewVar(), 1)
	require.NoError(t, err)
	e1, err := g.NewEdge(1, 2, sat.NewVar(), 1)
	require.NoError(t, err)
	e2, err := g.NewEdge(0, 2, sat.NewVar(), 1)
	require.NoError(t, err)
	a, _, err := g.Acyclic(false)
	require.NoError(t, err)
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{e0, e1, e2}))
	require.Equal(t, solver.Unsat, sat.ModelValue(a))
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{e0, e1, e2.Negation()}))
	require.Equal(t, solver.Sat, sat.ModelValue(a))
}

func TestOnPath(t *testing.T) {
	sat := solver.New()
	g, edges := newLineGraph(t, sat, []int64{1, 1})
	on, _, err := g.OnPath(1, 0, 2)
	require.NoError(t, err)
	require.Equal(t, solver.Sat, sat.Solve(edges))
	require.Equal(t, solver.Sat, sat.ModelValue(on))
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{edges[0].Negation()}))
	require.Equal(t, solver.Unsat, sat.ModelValue(on))
}

func TestReachBackward(t *testing.T) {
	sat := solver.New()
	g, edges := newLineGraph(t, sat, []int64{1, 1})
	// reachesBackward(2, 0): 0 reaches 2 along forward edges.
	r, _, err := g.ReachesBackward(2, 0)
	require.NoError(t, err)
	require.Equal(t, solver.Sat, sat.Solve(edges))
	require.Equal(t, solver.Sat, sat.ModelValue(r))
}

func TestAtomDedup(t *testing.T) {
	sat := solver.New()
	g, _ := newLineGraph(t, sat, []int64{1, 1})
	r1, _, err := g.Reaches(0, 2, -1)
	require.NoError(t, err)
	r2, existed, err := g.Reaches(0, 2, -1)
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, r1, r2)
}

func TestUnknownAlgorithms(t *testing.T) {
	_, err := ParseMaxFlowAlg("bogus")
	require.Error(t, err)
	_, err = ParseReachAlg("bogus")
	require.Error(t, err)
	_, err = ParseMSTAlg("bogus")
	require.Error(t, err)
	_, err = ParseCycleAlg("bogus")
	require.Error(t, err)
	_, err = ParseComponentsAlg("bogus")
	require.Error(t, err)
	_, err = ParseDistAlg("bogus")
	require.Error(t, err)
	_, err = ParseConnectAlg("bogus")
	require.Error(t, err)
	_, err = ParseAllPairsAlg("bogus")
	require.Error(t, err)
	_, err = ParseUndirAllPairsAlg("bogus")
	require.Error(t, err)
	// Aliases of dinitz are recognized.
	alg, err := ParseMaxFlowAlg("dinics")
	require.NoError(t, err)
	require.Equal(t, MaxFlowDinitz, alg)
}

func TestDSURollback(t *testing.T) {
	d := newDSU(4)
	require.True(t, d.union(0, 1))
	mark := d.mark()
	require.True(t, d.union(2, 3))
	require.True(t, d.union(0, 2))
	require.True(t, d.sameSet(1, 3))
	d.rollback(mark)
	require.True(t, d.sameSet(0, 1))
	require.False(t, d.sameSet(2, 3))
	require.False(t, d.sameSet(1, 3))
}
