// Package graph implements the finite-graph theory: a monotone
// predicate engine deciding reachability, bounded-hop reachability,
// shortest paths, maximum flow, minimum spanning tree weight and
// acyclicity atoms against edge-enable literals and bitvector or fixed
// edge weights.
//
// Every atom is propagated one-sidedly against two graph views: the
// under view (enabled edges only) yields witnesses forcing atoms along
// their monotone direction, the over view (enabled plus undecided
// edges) yields cuts forcing them against it.
package graph

import (
	"fmt"

	"github.com/crillab/monosat/bv"
	"github.com/crillab/monosat/solver"
)

type edgeStatus byte

const (
	statusUndecided edgeStatus = iota
	statusEnabled
	statusDisabled
)

type edge struct {
	id       int
	from, to int
	lit      solver.Lit // Enable literal, positive
	weight   int64      // Fixed weight; meaningful when bvID < 0
	bvID     int        // Bitvector weight, or -1
}

type atomKind byte

const (
	atomReach atomKind = iota
	atomReachBackward
	atomOnPath
	atomDistance
	atomDistanceBV
	atomMaxFlow
	atomMaxFlowBV
	atomMSTWeight
	atomAcyclic
)

type atomKey struct {
	kind     atomKind
	from, to int
	via      int
	hops     int
	bound    int64
	bvID     int
	strict   bool
	directed bool
}

type gatom struct {
	key atomKey
	lit solver.Lit
}

type undoRec struct {
	edgeID int
	old    edgeStatus
}

// TheorySolver is the graph theory attached to one SAT solver. Each
// graph instance is its own theory with a stable index.
type TheorySolver struct {
	sat *solver.Solver
	bvt *bv.TheorySolver
	id  int

	graphID  int
	name     string
	bitwidth int // Edge weight width; -2 selects plain integer weights

	nodes      int
	nodeNames  []string
	namedNodes map[string]int

	edges     []*edge
	edgeOfVar map[solver.Var]int
	status    []edgeStatus
	adj       [][]int // Outgoing edge ids per node
	radj      [][]int // Incoming edge ids per node
	undirAdj  [][]int // Incident edge ids per node

	atoms     []*gatom
	atomOfVar map[solver.Var]*gatom
	dedup     map[atomKey]solver.Lit

	undo    []undoRec
	levels  []int
	pending bool
	bvSeen  uint64 // bv revision consumed by the last propagation

	pk pkOrder

	reasons map[solver.Var][]solver.Lit

	alg          AlgConfig
	assignWeight int64 // Default weight for enabled edges in heuristics
	hasAssignW   bool

	// Model snapshot, taken when the solver finds a model.
	modelEnabled []bool
	modelWeights []int64
	hasModel     bool
}

// New creates a graph theory on the given solver. A negative bitwidth
// of -2 selects solver-native integer weights.
func New(sat *solver.Solver, bvt *bv.TheorySolver, graphID int, name string, bitwidth int, alg AlgConfig) *TheorySolver {
	t := &TheorySolver{
		sat:        sat,
		bvt:        bvt,
		graphID:    graphID,
		name:       name,
		bitwidth:   bitwidth,
		namedNodes: make(map[string]int),
		edgeOfVar:  make(map[solver.Var]int),
		atomOfVar:  make(map[solver.Var]*gatom),
		dedup:      make(map[atomKey]solver.Lit),
		reasons:    make(map[solver.Var][]solver.Lit),
		alg:        alg,
	}
	t.id = sat.AttachTheory(t)
	return t
}

// SetBVTheory late-binds the bitvector theory; graphs created before
// the bitvector theory was initialized get it retroactively.
func (t *TheorySolver) SetBVTheory(bvt *bv.TheorySolver) { t.bvt = bvt }

// GraphID returns the graph's id in the embedding API.
func (t *TheorySolver) GraphID() int { return t.graphID }

// TheoryID returns the theory index in the solver's registry.
func (t *TheorySolver) TheoryID() int { return t.id }

// Name returns the graph's name, possibly empty.
func (t *TheorySolver) Name() string { return t.name }

// Bitwidth returns the edge weight bit width (-2 for integer weights).
func (t *TheorySolver) Bitwidth() int { return t.bitwidth }

// NbNodes returns the number of nodes.
func (t *TheorySolver) NbNodes() int { return t.nodes }

// NbEdges returns the number of edges.
func (t *TheorySolver) NbEdges() int { return len(t.edges) }

// NewNode adds a node and returns its id.
func (t *TheorySolver) NewNode() int {
	n := t.nodes
	t.nodes++
	t.nodeNames = append(t.nodeNames, "")
	t.adj = append(t.adj, nil)
	t.radj = append(t.radj, nil)
	t.undirAdj = append(t.undirAdj, nil)
	t.pkInvalidate()
	return n
}

// SetNodeName names a node. Names must be unique within the graph.
func (t *TheorySolver) SetNodeName(n int, name string) error {
	if n < 0 || n >= t.nodes {
		return fmt.Errorf("unknown node %d", n)
	}
	if _, dup := t.namedNodes[name]; dup {
		return fmt.Errorf("all nodes in a given graph must have unique names")
	}
	t.nodeNames[n] = name
	t.namedNodes[name] = n
	return nil
}

// NodeName returns the name of a node, possibly empty.
func (t *TheorySolver) NodeName(n int) string { return t.nodeNames[n] }

// HasNamedNode returns whether a node with the given name exists.
func (t *TheorySolver) HasNamedNode(name string) bool {
	_, ok := t.namedNodes[name]
	return ok
}

func (t *TheorySolver) checkNode(n int) error {
	if n < 0 || n >= t.nodes {
		return fmt.Errorf("unknown node %d in graph %d", n, t.graphID)
	}
	return nil
}

// NewEdge adds a directed edge with a fixed weight, controlled by the
// given enable variable. The variable becomes theory-owned.
func (t *TheorySolver) NewEdge(from, to int, v solver.Var, weight int64) (solver.Lit, error) {
	if err := t.checkNode(from); err != nil {
		return solver.LitUndef, err
	}
	if err := t.checkNode(to); err != nil {
		return solver.LitUndef, err
	}
	if weight < 0 {
		return solver.LitUndef, fmt.Errorf("negative edge weight %d", weight)
	}
	return t.addEdge(from, to, v, weight, -1), nil
}

// NewEdgeBV adds a directed edge whose weight is a bitvector.
func (t *TheorySolver) NewEdgeBV(from, to int, v solver.Var, bvID int) (solver.Lit, error) {
	if err := t.checkNode(from); err != nil {
		return solver.LitUndef, err
	}
	if err := t.checkNode(to); err != nil {
		return solver.LitUndef, err
	}
	if t.bvt == nil || !t.bvt.Has(bvID) {
		return solver.LitUndef, fmt.Errorf("unknown bitvector %d", bvID)
	}
	return t.addEdge(from, to, v, 0, bvID), nil
}

func (t *TheorySolver) addEdge(from, to int, v solver.Var, weight int64, bvID int) solver.Lit {
	e := &edge{
		id:     len(t.edges),
		from:   from,
		to:     to,
		lit:    v.Lit(),
		weight: weight,
		bvID:   bvID,
	}
	t.edges = append(t.edges, e)
	t.status = append(t.status, statusUndecided)
	t.adj[from] = append(t.adj[from], e.id)
	t.radj[to] = append(t.radj[to], e.id)
	t.undirAdj[from] = append(t.undirAdj[from], e.id)
	if to != from {
		t.undirAdj[to] = append(t.undirAdj[to], e.id)
	}
	t.edgeOfVar[v] = e.id
	t.sat.BindTheoryVar(v, t.id)
	t.pending = true
	return e.lit
}

// IsEdgeVar returns whether v is an edge-enable variable of this graph.
func (t *TheorySolver) IsEdgeVar(v solver.Var) bool {
	_, ok := t.edgeOfVar[v]
	return ok
}

// EdgeID returns the edge controlled by v.
func (t *TheorySolver) EdgeID(v solver.Var) int { return t.edgeOfVar[v] }

// EdgeLit returns the enable literal of the given edge.
func (t *TheorySolver) EdgeLit(edgeID int) solver.Lit { return t.edges[edgeID].lit }

// SetAssignEdgesToWeight biases the decision heuristic so enabled edges
// prefer the given weight when their weight is a free bitvector.
func (t *TheorySolver) SetAssignEdgesToWeight(weight int64) {
	t.assignWeight = weight
	t.hasAssignW = true
}

// Enqueue implements solver.Theory.
func (t *TheorySolver) Enqueue(l solver.Lit) {
	t.pending = true
	eid, ok := t.edgeOfVar[l.Var()]
	if !ok {
		return
	}
	old := t.status[eid]
	next := statusDisabled
	if l.IsPositive() {
		next = statusEnabled
	}
	if old == next {
		return
	}
	t.undo = append(t.undo, undoRec{edgeID: eid, old: old})
	t.status[eid] = next
	if next == statusEnabled {
		t.pkInvalidate()
	}
}

// NewDecisionLevel implements solver.Theory.
func (t *TheorySolver) NewDecisionLevel() {
	t.levels = append(t.levels, len(t.undo))
}

// BacktrackTo implements solver.Theory.
func (t *TheorySolver) BacktrackTo(level int) {
	if level >= len(t.levels) {
		return
	}
	bound := t.levels[level]
	for i := len(t.undo) - 1; i >= bound; i-- {
		u := t.undo[i]
		t.status[u.edgeID] = u.old
	}
	t.undo = t.undo[:bound]
	t.levels = t.levels[:level]
	t.pending = true
	t.pkInvalidate()
}

// Explain implements solver.Theory.
func (t *TheorySolver) Explain(l solver.Lit) []solver.Lit {
	if r, ok := t.reasons[l.Var()]; ok {
		return r
	}
	return []solver.Lit{l}
}

// Propagate implements solver.Theory: evaluate every atom whose value
// became determined by the current edge statuses and weight bounds.
func (t *TheorySolver) Propagate(confl *[]solver.Lit) bool {
	if t.bvt != nil {
		if rev := t.bvt.Revision(); rev != t.bvSeen {
			t.bvSeen = rev
			t.pending = true
		}
	}
	if !t.pending {
		return true
	}
	t.pending = false
	for _, a := range t.atoms {
		forced, reason := t.evalAtom(a)
		if forced == solver.LitUndef {
			continue
		}
		switch t.sat.Value(forced) {
		case solver.Sat:
			continue
		case solver.Unsat:
			*confl = reason
			return false
		}
		t.reasons[forced.Var()] = reason
		if !t.sat.TheoryEnqueue(forced, t.id) {
			*confl = reason
			return false
		}
	}
	return true
}
