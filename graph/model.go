package graph

import (
	"fmt"

	"github.com/crillab/monosat/solver"
)

// Model witness extraction. When the solver finds a model the theory
// snapshots the enabled edges and their weights; path, flow and tree
// queries afterwards recompute against the snapshot, so they survive
// the solver's backtrack to level 0.

// OnModel implements solver.ModelTheory.
func (t *TheorySolver) OnModel() {
	t.modelEnabled = make([]bool, len(t.edges))
	t.modelWeights = make([]int64, len(t.edges))
	for i, e := range t.edges {
		t.modelEnabled[i] = t.status[i] == statusEnabled
		if e.bvID >= 0 && t.bvt != nil {
			t.modelWeights[i] = int64(t.bvt.CurrentUnder(e.bvID))
		} else {
			t.modelWeights[i] = e.weight
		}
	}
	t.hasModel = true
}

// modelAdj iterates enabled-in-model outgoing edges of n.
func (t *TheorySolver) modelAdj(n int, backward bool) []int {
	adj := t.adj[n]
	if backward {
		adj = t.radj[n]
	}
	var res []int
	for _, eid := range adj {
		if t.modelEnabled[eid] {
			res = append(res, eid)
		}
	}
	return res
}

// atomFor resolves a literal to its atom; the literal must be this
// theory's.
func (t *TheorySolver) atomFor(l solver.Lit) (*gatom, error) {
	a, ok := t.atomOfVar[l.Var()]
	if !ok {
		return nil, fmt.Errorf("literal %d is not a graph atom of graph %d", l.Int(), t.graphID)
	}
	return a, nil
}

// CheckLit validates that l belongs to this graph, as an edge literal
// or as an atom.
func (t *TheorySolver) CheckLit(l solver.Lit, wantEdge bool) error {
	if wantEdge {
		if _, ok := t.edgeOfVar[l.Var()]; !ok {
			return fmt.Errorf("literal %d is not an edge literal of graph %d", l.Int(), t.graphID)
		}
		return nil
	}
	_, err := t.atomFor(l)
	return err
}

// ModelPathNodes returns, for a true reachability, on-path or distance
// atom, a witness path as node ids.
func (t *TheorySolver) ModelPathNodes(l solver.Lit) ([]int, error) {
	nodes, _, err := t.modelPath(l)
	return nodes, err
}

// ModelPathEdgeLits returns the witness path as edge-enable literals.
func (t *TheorySolver) ModelPathEdgeLits(l solver.Lit) ([]solver.Lit, error) {
	_, edges, err := t.modelPath(l)
	if err != nil {
		return nil, err
	}
	lits := make([]solver.Lit, len(edges))
	for i, eid := range edges {
		lits[i] = t.edges[eid].lit
	}
	return lits, nil
}

func (t *TheorySolver) modelPath(l solver.Lit) ([]int, []int, error) {
	if !t.hasModel {
		return nil, nil, fmt.Errorf("no model available")
	}
	a, err := t.atomFor(l)
	if err != nil {
		return nil, nil, err
	}
	if t.sat.ModelValue(a.lit) != solver.Sat {
		return nil, nil, nil // Atom false in the model: no witness path
	}
	switch a.key.kind {
	case atomReach:
		nodes, edges := t.modelBFSPath(a.key.from, a.key.to, false)
		return nodes, edges, nil
	case atomReachBackward:
		nodes, edges := t.modelBFSPath(a.key.from, a.key.to, true)
		return nodes, edges, nil
	case atomOnPath:
		n1, e1 := t.modelBFSPath(a.key.from, a.key.via, false)
		n2, e2 := t.modelBFSPath(a.key.via, a.key.to, false)
		if n1 == nil || n2 == nil {
			return nil, nil, nil
		}
		return append(n1, n2[1:]...), append(e1, e2...), nil
	case atomDistance, atomDistanceBV:
		nodes, edges := t.modelShortestPath(a.key.from, a.key.to)
		return nodes, edges, nil
	default:
		return nil, nil, fmt.Errorf("literal %d is not a path atom", l.Int())
	}
}

func (t *TheorySolver) modelBFSPath(from, to int, backward bool) ([]int, []int) {
	parents := make([]int, t.nodes)
	seen := make([]bool, t.nodes)
	for i := range parents {
		parents[i] = -1
	}
	seen[from] = true
	queue := []int{from}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, eid := range t.modelAdj(n, backward) {
			e := t.edges[eid]
			next := e.to
			if backward {
				next = e.from
			}
			if !seen[next] {
				seen[next] = true
				parents[next] = eid
				queue = append(queue, next)
			}
		}
	}
	if !seen[to] {
		return nil, nil
	}
	return t.pathToDir(from, to, parents, backward)
}

func (t *TheorySolver) modelShortestPath(from, to int) ([]int, []int) {
	dist := make([]int64, t.nodes)
	parents := make([]int, t.nodes)
	done := make([]bool, t.nodes)
	for i := range dist {
		dist[i] = -1
		parents[i] = -1
	}
	dist[from] = 0
	for {
		best := -1
		for n := 0; n < t.nodes; n++ {
			if !done[n] && dist[n] >= 0 && (best < 0 || dist[n] < dist[best]) {
				best = n
			}
		}
		if best < 0 {
			break
		}
		done[best] = true
		for _, eid := range t.modelAdj(best, false) {
			e := t.edges[eid]
			d := dist[best] + t.modelWeights[eid]
			if dist[e.to] < 0 || d < dist[e.to] {
				dist[e.to] = d
				parents[e.to] = eid
			}
		}
	}
	if dist[to] < 0 {
		return nil, nil
	}
	return t.pathTo(from, to, parents)
}

// modelFlowNet rebuilds the flow network of a maxflow atom against the
// model snapshot.
func (t *TheorySolver) modelFlowNet(a *gatom) *flowNet {
	n := &flowNet{
		nodes:   t.nodes,
		headOut: make([][]int, t.nodes),
		source:  a.key.from,
		sink:    a.key.to,
	}
	for _, e := range t.edges {
		if !t.modelEnabled[e.id] {
			continue
		}
		c := t.modelWeights[e.id]
		if c <= 0 {
			continue
		}
		fwd := len(n.arcs)
		n.arcs = append(n.arcs, flowArc{from: e.from, to: e.to, cap: c, edgeID: e.id, rev: fwd + 1})
		n.arcs = append(n.arcs, flowArc{from: e.to, to: e.from, cap: 0, edgeID: -1, rev: fwd})
		n.headOut[e.from] = append(n.headOut[e.from], fwd)
		n.headOut[e.to] = append(n.headOut[e.to], fwd+1)
	}
	return n
}

func (t *TheorySolver) modelMaxFlowAtom(l solver.Lit) (*flowNet, int64, error) {
	if !t.hasModel {
		return nil, 0, fmt.Errorf("no model available")
	}
	a, err := t.atomFor(l)
	if err != nil {
		return nil, 0, err
	}
	if a.key.kind != atomMaxFlow && a.key.kind != atomMaxFlowBV {
		return nil, 0, fmt.Errorf("literal %d is not a maximum flow atom", l.Int())
	}
	net := t.modelFlowNet(a)
	total := net.run(t.alg.MaxFlow)
	return net, total, nil
}

// ModelMaxFlow returns the maximum flow achieved in the model.
func (t *TheorySolver) ModelMaxFlow(l solver.Lit) (int64, error) {
	_, total, err := t.modelMaxFlowAtom(l)
	return total, err
}

// ModelEdgeFlow returns the flow assigned to one edge under a maxflow
// atom in the model.
func (t *TheorySolver) ModelEdgeFlow(flowLit, edgeLit solver.Lit) (int64, error) {
	net, _, err := t.modelMaxFlowAtom(flowLit)
	if err != nil {
		return 0, err
	}
	eid, ok := t.edgeOfVar[edgeLit.Var()]
	if !ok {
		return 0, fmt.Errorf("literal %d is not an edge literal of graph %d", edgeLit.Int(), t.graphID)
	}
	return net.edgeFlows()[eid], nil
}

// ModelAcyclicEdgeFlow is ModelEdgeFlow after cancelling all flow
// cycles, so the per-edge flows decompose into simple source-sink
// paths.
func (t *TheorySolver) ModelAcyclicEdgeFlow(flowLit, edgeLit solver.Lit) (int64, error) {
	net, _, err := t.modelMaxFlowAtom(flowLit)
	if err != nil {
		return 0, err
	}
	eid, ok := t.edgeOfVar[edgeLit.Var()]
	if !ok {
		return 0, fmt.Errorf("literal %d is not an edge literal of graph %d", edgeLit.Int(), t.graphID)
	}
	net.cancelFlowCycles()
	return net.edgeFlows()[eid], nil
}

// ModelMSTWeight returns the minimum spanning tree weight in the model.
func (t *TheorySolver) ModelMSTWeight(l solver.Lit) (int64, error) {
	if !t.hasModel {
		return 0, fmt.Errorf("no model available")
	}
	a, err := t.atomFor(l)
	if err != nil {
		return 0, err
	}
	if a.key.kind != atomMSTWeight {
		return 0, fmt.Errorf("literal %d is not a spanning tree atom", l.Int())
	}
	d := newDSU(t.nodes)
	type we struct {
		w   int64
		eid int
	}
	var present []we
	for _, e := range t.edges {
		if t.modelEnabled[e.id] {
			present = append(present, we{w: t.modelWeights[e.id], eid: e.id})
		}
	}
	for i := 1; i < len(present); i++ {
		for j := i; j > 0 && (present[j].w < present[j-1].w ||
			(present[j].w == present[j-1].w && present[j].eid < present[j-1].eid)); j-- {
			present[j], present[j-1] = present[j-1], present[j]
		}
	}
	var total int64
	for _, p := range present {
		e := t.edges[p.eid]
		if d.union(e.from, e.to) {
			total += p.w
		}
	}
	return total, nil
}
