package api

import (
	"github.com/crillab/monosat/amo"
	"github.com/crillab/monosat/graph"
	"github.com/crillab/monosat/router"
	"github.com/crillab/monosat/solver"
)

// A Graph is the embedding handle of one graph theory instance.
type Graph struct {
	s *Solver
	t *graph.TheorySolver
}

// NewGraph creates an anonymous graph with solver-native integer edge
// weights.
func (s *Solver) NewGraph() (*Graph, error) {
	return s.NewGraphNamed("", -2)
}

// NewGraphNamed creates a graph; bitwidth is the edge weight width, or
// -2 for solver-native integer weights.
func (s *Solver) NewGraphNamed(name string, bitwidth int) (*Graph, error) {
	if err := s.checkAlive(); err != nil {
		return nil, err
	}
	if name != "" {
		if !validName(name) {
			return nil, domainf("graph names must consist only of printable, non-whitespace ASCII: %q", name)
		}
		if _, dup := s.graphByName[name]; dup {
			return nil, domainf("all graph names must be unique: %q", name)
		}
	}
	g := &Graph{
		s: s,
		t: graph.New(s.sat, s.bvt, len(s.graphs), name, bitwidth, s.alg),
	}
	s.graphs = append(s.graphs, g)
	if name != "" {
		s.graphByName[name] = g
		if err := s.writef("digraph 0 0 %d %d %s\n", g.t.GraphID(), bitwidth, name); err != nil {
			return nil, err
		}
	} else if err := s.writef("digraph 0 0 %d %d\n", g.t.GraphID(), bitwidth); err != nil {
		return nil, err
	}
	return g, nil
}

// GetGraph returns the graph with the given name, or nil.
func (s *Solver) GetGraph(name string) *Graph {
	if name == "" {
		return nil
	}
	return s.graphByName[name]
}

// Graphs returns every graph, in creation order.
func (s *Solver) Graphs() []*Graph { return s.graphs }

// Name returns the graph's name, possibly empty.
func (g *Graph) Name() string { return g.t.Name() }

// Width returns the edge weight bit width (-2 for integer weights).
func (g *Graph) Width() int { return g.t.Bitwidth() }

// NNodes returns the number of nodes.
func (g *Graph) NNodes() int { return g.t.NbNodes() }

// NEdges returns the number of edges.
func (g *Graph) NEdges() int { return g.t.NbEdges() }

// NewNode adds a node.
func (g *Graph) NewNode() (int, error) {
	return g.NewNodeNamed("")
}

// NewNodeNamed adds a node carrying a unique-within-graph name.
func (g *Graph) NewNodeNamed(name string) (int, error) {
	if err := g.s.checkAlive(); err != nil {
		return -1, err
	}
	if name != "" {
		if !validName(name) {
			return -1, domainf("node names must consist only of printable, non-whitespace ASCII: %q", name)
		}
		if g.t.HasNamedNode(name) {
			return -1, domainf("all nodes in a given graph must have unique names (or empty names)")
		}
	}
	n := g.t.NewNode()
	if name != "" {
		if err := g.t.SetNodeName(n, name); err != nil {
			return -1, domainWrap(err)
		}
		return n, g.s.writef("node %d %d %s\n", g.t.GraphID(), n, name)
	}
	return n, g.s.writef("node %d %d\n", g.t.GraphID(), n)
}

// HasNamedNode returns whether the graph has a node with the name.
func (g *Graph) HasNamedNode(name string) bool {
	return name != "" && g.t.HasNamedNode(name)
}

// NodeName returns the name of a node, possibly empty.
func (g *Graph) NodeName(n int) string { return g.t.NodeName(n) }

// NewEdge adds a directed edge with the given weight; the returned
// literal enables the edge when true.
func (g *Graph) NewEdge(from, to int, weight int64) (solver.Lit, error) {
	if err := g.s.checkAlive(); err != nil {
		return solver.LitUndef, err
	}
	iv := g.s.sat.NewVar()
	il, err := g.t.NewEdge(from, to, iv, weight)
	if err != nil {
		return solver.LitUndef, domainWrap(err)
	}
	l := g.s.externalLit(il)
	if err := g.s.writef("edge %d %d %d %d %d\n", g.t.GraphID(), from, to, l.Int(), weight); err != nil {
		return solver.LitUndef, err
	}
	return l, nil
}

// NewEdgeBV adds a directed edge whose weight is a bitvector.
func (g *Graph) NewEdgeBV(from, to, bvID int) (solver.Lit, error) {
	if err := g.s.checkAlive(); err != nil {
		return solver.LitUndef, err
	}
	if _, err := g.s.internalBV(bvID); err != nil {
		return solver.LitUndef, err
	}
	iv := g.s.sat.NewVar()
	il, err := g.t.NewEdgeBV(from, to, iv, bvID)
	if err != nil {
		return solver.LitUndef, domainWrap(err)
	}
	l := g.s.externalLit(il)
	if err := g.s.writef("edge_bv %d %d %d %d %d\n", g.t.GraphID(), from, to, l.Int(), bvID); err != nil {
		return solver.LitUndef, err
	}
	return l, nil
}

// atomOut handles the shared atom bookkeeping: external mapping and
// the transcript line, written only on first construction.
func (g *Graph) atomOut(il solver.Lit, existed bool, err error, format string, args ...interface{}) (solver.Lit, error) {
	if err != nil {
		return solver.LitUndef, domainWrap(err)
	}
	l := g.s.externalLit(il)
	if existed {
		return l, nil
	}
	all := append([]interface{}{}, args...)
	for i, a := range all {
		if a == litPlaceholder {
			all[i] = l.Int()
		}
	}
	return l, g.s.writef(format, all...)
}

// litPlaceholder marks the atom literal's position in transcript
// arguments; it is only known after the atom is constructed.
const litPlaceholder = "\x00lit"

// Reaches returns an atom true iff to is reachable from from.
func (g *Graph) Reaches(from, to int) (solver.Lit, error) {
	il, existed, err := g.t.Reaches(from, to, -1)
	return g.atomOut(il, existed, err, "reach %d %d %d %d\n", g.t.GraphID(), from, to, litPlaceholder)
}

// ReachesBackward returns an atom true iff from is reachable from to in
// the reverse graph.
func (g *Graph) ReachesBackward(from, to int) (solver.Lit, error) {
	il, existed, err := g.t.ReachesBackward(from, to)
	return g.atomOut(il, existed, err, "reach_backward %d %d %d %d\n", g.t.GraphID(), from, to, litPlaceholder)
}

// OnPath returns an atom true iff some from-to path passes through
// nodeOnPath.
func (g *Graph) OnPath(nodeOnPath, from, to int) (solver.Lit, error) {
	il, existed, err := g.t.OnPath(nodeOnPath, from, to)
	return g.atomOut(il, existed, err, "on_path %d %d %d %d %d\n", g.t.GraphID(), nodeOnPath, from, to, litPlaceholder)
}

// ShortestPathUnweightedLeqConst returns an atom true iff to is
// reachable within steps edges.
func (g *Graph) ShortestPathUnweightedLeqConst(from, to, steps int) (solver.Lit, error) {
	il, existed, err := g.t.Reaches(from, to, steps)
	return g.atomOut(il, existed, err, "distance_leq %d %d %d %d %d\n", g.t.GraphID(), from, to, litPlaceholder, steps)
}

// ShortestPathUnweightedLtConst returns an atom true iff to is
// reachable in fewer than steps edges.
func (g *Graph) ShortestPathUnweightedLtConst(from, to, steps int) (solver.Lit, error) {
	il, existed, err := g.t.Reaches(from, to, steps-1)
	return g.atomOut(il, existed, err, "distance_lt %d %d %d %d %d\n", g.t.GraphID(), from, to, litPlaceholder, steps)
}

// ShortestPathLeqConst returns an atom comparing the weighted shortest
// path against dist, inclusively.
func (g *Graph) ShortestPathLeqConst(from, to int, dist int64) (solver.Lit, error) {
	il, existed, err := g.t.Distance(from, to, dist, false)
	return g.atomOut(il, existed, err, "weighted_distance_leq %d %d %d %d %d\n", g.t.GraphID(), from, to, litPlaceholder, dist)
}

// ShortestPathLtConst returns an atom comparing the weighted shortest
// path against dist, strictly.
func (g *Graph) ShortestPathLtConst(from, to int, dist int64) (solver.Lit, error) {
	il, existed, err := g.t.Distance(from, to, dist, true)
	return g.atomOut(il, existed, err, "weighted_distance_lt %d %d %d %d %d\n", g.t.GraphID(), from, to, litPlaceholder, dist)
}

// ShortestPathLeqBV compares the weighted shortest path against a
// bitvector, inclusively.
func (g *Graph) ShortestPathLeqBV(from, to, bvID int) (solver.Lit, error) {
	if _, err := g.s.internalBV(bvID); err != nil {
		return solver.LitUndef, err
	}
	il, existed, err := g.t.DistanceBV(from, to, bvID, false)
	return g.atomOut(il, existed, err, "weighted_distance_bv_leq %d %d %d %d %d\n", g.t.GraphID(), from, to, litPlaceholder, bvID)
}

// ShortestPathLtBV compares the weighted shortest path against a
// bitvector, strictly.
func (g *Graph) ShortestPathLtBV(from, to, bvID int) (solver.Lit, error) {
	if _, err := g.s.internalBV(bvID); err != nil {
		return solver.LitUndef, err
	}
	il, existed, err := g.t.DistanceBV(from, to, bvID, true)
	return g.atomOut(il, existed, err, "weighted_distance_bv_lt %d %d %d %d %d\n", g.t.GraphID(), from, to, litPlaceholder, bvID)
}

// MaximumFlowGeq returns an atom true iff the maximum from-to flow is
// at least weight.
func (g *Graph) MaximumFlowGeq(source, sink int, weight int64) (solver.Lit, error) {
	il, existed, err := g.t.MaxFlow(source, sink, weight, false)
	return g.atomOut(il, existed, err, "maximum_flow_geq %d %d %d %d %d\n", g.t.GraphID(), source, sink, litPlaceholder, weight)
}

// MaximumFlowGt returns an atom true iff the maximum from-to flow
// exceeds weight.
func (g *Graph) MaximumFlowGt(source, sink int, weight int64) (solver.Lit, error) {
	il, existed, err := g.t.MaxFlow(source, sink, weight, true)
	return g.atomOut(il, existed, err, "maximum_flow_gt %d %d %d %d %d\n", g.t.GraphID(), source, sink, litPlaceholder, weight)
}

// MaximumFlowGeqBV compares the maximum flow against a bitvector.
func (g *Graph) MaximumFlowGeqBV(source, sink, bvID int) (solver.Lit, error) {
	if _, err := g.s.internalBV(bvID); err != nil {
		return solver.LitUndef, err
	}
	il, existed, err := g.t.MaxFlowBV(source, sink, bvID, false)
	return g.atomOut(il, existed, err, "maximum_flow_bv_geq %d %d %d %d %d\n", g.t.GraphID(), source, sink, litPlaceholder, bvID)
}

// MaximumFlowGtBV strictly compares the maximum flow against a
// bitvector.
func (g *Graph) MaximumFlowGtBV(source, sink, bvID int) (solver.Lit, error) {
	if _, err := g.s.internalBV(bvID); err != nil {
		return solver.LitUndef, err
	}
	il, existed, err := g.t.MaxFlowBV(source, sink, bvID, true)
	return g.atomOut(il, existed, err, "maximum_flow_bv_gt %d %d %d %d %d\n", g.t.GraphID(), source, sink, litPlaceholder, bvID)
}

// MinimumSpanningTreeLeq returns an atom true iff the minimum spanning
// tree weighs at most weight.
func (g *Graph) MinimumSpanningTreeLeq(weight int64) (solver.Lit, error) {
	il, existed, err := g.t.MSTWeight(weight, false)
	return g.atomOut(il, existed, err, "mst_weight_leq %d %d %d\n", g.t.GraphID(), litPlaceholder, weight)
}

// MinimumSpanningTreeLt returns an atom true iff the minimum spanning
// tree weighs less than weight.
func (g *Graph) MinimumSpanningTreeLt(weight int64) (solver.Lit, error) {
	il, existed, err := g.t.MSTWeight(weight, true)
	return g.atomOut(il, existed, err, "mst_weight_lt %d %d %d\n", g.t.GraphID(), litPlaceholder, weight)
}

// AcyclicUndirected returns an atom true iff the undirected projection
// has no cycle.
func (g *Graph) AcyclicUndirected() (solver.Lit, error) {
	il, existed, err := g.t.Acyclic(false)
	return g.atomOut(il, existed, err, "forest %d %d \n", g.t.GraphID(), litPlaceholder)
}

// AcyclicDirected returns an atom true iff the graph has no directed
// cycle.
func (g *Graph) AcyclicDirected() (solver.Lit, error) {
	il, existed, err := g.t.Acyclic(true)
	return g.atomOut(il, existed, err, "acyclic %d %d \n", g.t.GraphID(), litPlaceholder)
}

// AssignEdgesToWeight biases decisions so enabled bitvector-weighted
// edges prefer the given weight.
func (g *Graph) AssignEdgesToWeight(weight int64) error {
	if err := g.s.writef("graph_assign_edges_to_weight %d %d\n", g.t.GraphID(), weight); err != nil {
		return err
	}
	g.t.SetAssignEdgesToWeight(weight)
	return nil
}

// NewEdgeSet declares a set of edge literals. With
// enforceEdgeAssignment set, exactly one edge of the set must be
// enabled: an at-least-one clause covers the edges, and an at-most-one
// theory propagator runs over auxiliary variables mirroring each edge.
// Without it the set is only recorded in the transcript and constrains
// nothing.
func (g *Graph) NewEdgeSet(edgeLits []solver.Lit, enforceEdgeAssignment bool) error {
	if err := g.s.checkAlive(); err != nil {
		return err
	}
	if err := g.s.writef("edge_set %d %d", g.t.GraphID(), len(edgeLits)); err != nil {
		return err
	}
	internal := make([]solver.Lit, len(edgeLits))
	for i, l := range edgeLits {
		il, err := g.s.internalLit(l)
		if err != nil {
			return err
		}
		if g.s.sat.TheoryOwner(il.Var()) != g.t.TheoryID() || !g.t.IsEdgeVar(il.Var()) {
			return domainf("bad edge set variable %d", l.Int())
		}
		internal[i] = il
		if err := g.s.writef(" %d", int32(l.Var())+1); err != nil {
			return err
		}
	}
	if err := g.s.writef("\n"); err != nil {
		return err
	}
	if !enforceEdgeAssignment {
		return nil
	}
	if !g.s.sat.AddClauseLits(internal) {
		return nil
	}
	t := amo.New(g.s.sat)
	for _, il := range internal {
		aux := g.s.sat.NewVar()
		// aux <-> edge, decoupling the AMO propagation from the
		// graph theory's edge watches.
		g.s.sat.AddClause(aux.Lit().Negation(), il)
		g.s.sat.AddClause(aux.Lit(), il.Negation())
		t.AddVar(aux)
	}
	return nil
}

// CheckLit validates that a literal belongs to this graph; with
// wantEdge set it must be an edge-enable literal, otherwise an atom.
func (g *Graph) CheckLit(l solver.Lit, wantEdge bool) error {
	il, err := g.s.internalLit(l)
	if err != nil {
		return err
	}
	return domainWrap(g.t.CheckLit(il, wantEdge))
}

// ModelPathNodes returns a witness path, as node ids, for a true
// reachability or distance atom. The result is nil when the atom is
// false in the model or no path exists.
func (g *Graph) ModelPathNodes(reachLit solver.Lit) ([]int, error) {
	il, err := g.s.internalLit(reachLit)
	if err != nil {
		return nil, err
	}
	nodes, err := g.t.ModelPathNodes(il)
	return nodes, domainWrap(err)
}

// ModelPathEdgeLits returns the witness path as edge-enable literals.
func (g *Graph) ModelPathEdgeLits(reachLit solver.Lit) ([]solver.Lit, error) {
	il, err := g.s.internalLit(reachLit)
	if err != nil {
		return nil, err
	}
	lits, err := g.t.ModelPathEdgeLits(il)
	if err != nil {
		return nil, domainWrap(err)
	}
	res := make([]solver.Lit, len(lits))
	for i, l := range lits {
		res[i] = g.s.externalLit(l)
	}
	return res, nil
}

// ModelMaxFlow returns the flow achieved in the model for a maximum
// flow atom.
func (g *Graph) ModelMaxFlow(flowLit solver.Lit) (int64, error) {
	il, err := g.s.internalLit(flowLit)
	if err != nil {
		return 0, err
	}
	f, err := g.t.ModelMaxFlow(il)
	return f, domainWrap(err)
}

// ModelEdgeFlow returns the model flow through one edge.
func (g *Graph) ModelEdgeFlow(flowLit, edgeLit solver.Lit) (int64, error) {
	fl, err := g.s.internalLit(flowLit)
	if err != nil {
		return 0, err
	}
	el, err := g.s.internalLit(edgeLit)
	if err != nil {
		return 0, err
	}
	f, err := g.t.ModelEdgeFlow(fl, el)
	return f, domainWrap(err)
}

// ModelAcyclicEdgeFlow returns the model flow through one edge after
// cancelling flow cycles.
func (g *Graph) ModelAcyclicEdgeFlow(flowLit, edgeLit solver.Lit) (int64, error) {
	fl, err := g.s.internalLit(flowLit)
	if err != nil {
		return 0, err
	}
	el, err := g.s.internalLit(edgeLit)
	if err != nil {
		return 0, err
	}
	f, err := g.t.ModelAcyclicEdgeFlow(fl, el)
	return f, domainWrap(err)
}

// ModelMinimumSpanningTreeWeight returns the spanning tree weight in
// the model.
func (g *Graph) ModelMinimumSpanningTreeWeight(mstLit solver.Lit) (int64, error) {
	il, err := g.s.internalLit(mstLit)
	if err != nil {
		return 0, err
	}
	w, err := g.t.ModelMSTWeight(il)
	return w, domainWrap(err)
}

// A Router is the embedding handle of a flow router.
type Router struct {
	s *Solver
	g *Graph
	r *router.FlowRouter
}

// CreateFlowRouting builds a flow router over the graph's maxflow atom.
func (s *Solver) CreateFlowRouting(g *Graph, sourceNode, destNode int, maxflowLit solver.Lit) (*Router, error) {
	if err := s.checkAlive(); err != nil {
		return nil, err
	}
	il, err := s.internalLit(maxflowLit)
	if err != nil {
		return nil, err
	}
	r := &Router{
		s: s,
		g: g,
		r: router.New(s.sat, g.t, len(s.routers), sourceNode, destNode, il),
	}
	s.routers = append(s.routers, r)
	if err := s.writef("f_router %d %d %d %d %d\n", g.t.GraphID(), r.r.RouterID(), sourceNode, destNode, maxflowLit.Int()); err != nil {
		return nil, err
	}
	return r, nil
}

// AddRoutingNet registers a net on the router: a disable literal and
// parallel lists of member edge and reach literals.
func (r *Router) AddRoutingNet(disabledEdge solver.Lit, edgeLits, reachLits []solver.Lit) error {
	if len(edgeLits) != len(reachLits) {
		return domainf("routing net needs as many edge as reach literals")
	}
	dis, err := r.s.internalLit(disabledEdge)
	if err != nil {
		return err
	}
	if err := r.s.writef("f_router_net %d %d %d %d", r.g.t.GraphID(), r.r.RouterID(), disabledEdge.Int(), len(edgeLits)); err != nil {
		return err
	}
	edges := make([]solver.Lit, len(edgeLits))
	reach := make([]solver.Lit, len(reachLits))
	for i := range edgeLits {
		if edges[i], err = r.s.internalLit(edgeLits[i]); err != nil {
			return err
		}
		if reach[i], err = r.s.internalLit(reachLits[i]); err != nil {
			return err
		}
		if err := r.s.writef(" %d %d", edgeLits[i].Int(), reachLits[i].Int()); err != nil {
			return err
		}
	}
	if err := r.s.writef("\n"); err != nil {
		return err
	}
	return domainWrap(r.r.AddNet(dis, edges, reach))
}
