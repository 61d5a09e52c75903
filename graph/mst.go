package graph

import (
	"container/heap"

	"golang.org/x/exp/slices"
)

// Minimum spanning tree over the undirected projection of a view.
// Kruskal runs over sorted edges with the disjoint sets; Prim (also
// serving the spira-pan option) grows from node 0 with a heap.

// mst returns the total weight of a minimum spanning tree over the
// given view and the edge ids used. spanning is false when the
// projection does not connect all nodes; the weight then covers the
// spanning forest.
func (t *TheorySolver) mst(v view, maxWeights bool) (weight int64, treeEdges []int, spanning bool) {
	if t.nodes == 0 {
		return 0, nil, true
	}
	switch t.alg.MST {
	case MSTPrim, MSTSpiraPan:
		return t.mstPrim(v, maxWeights)
	default:
		return t.mstKruskal(v, maxWeights)
	}
}

func (t *TheorySolver) mstKruskal(v view, maxWeights bool) (int64, []int, bool) {
	weightOf := t.weightMin
	if maxWeights {
		weightOf = t.weightMax
	}
	var present []int
	for _, e := range t.edges {
		if t.edgeInView(e, v) {
			present = append(present, e.id)
		}
	}
	slices.SortStableFunc(present, func(a, b int) bool {
		wa, wb := weightOf(t.edges[a]), weightOf(t.edges[b])
		return wa < wb || (wa == wb && a < b)
	})
	d := newDSU(t.nodes)
	var total int64
	var tree []int
	for _, eid := range present {
		e := t.edges[eid]
		if d.union(e.from, e.to) {
			total += weightOf(e)
			tree = append(tree, eid)
		}
	}
	return total, tree, len(tree) == t.nodes-1
}

type primArc struct {
	weight int64
	edgeID int
	to     int
}

type primHeap []primArc

func (h primHeap) Len() int { return len(h) }
func (h primHeap) Less(i, j int) bool {
	return h[i].weight < h[j].weight || (h[i].weight == h[j].weight && h[i].edgeID < h[j].edgeID)
}
func (h primHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *primHeap) Push(x interface{}) { *h = append(*h, x.(primArc)) }
func (h *primHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func (t *TheorySolver) mstPrim(v view, maxWeights bool) (int64, []int, bool) {
	weightOf := t.weightMin
	if maxWeights {
		weightOf = t.weightMax
	}
	inTree := make([]bool, t.nodes)
	var total int64
	var tree []int
	h := &primHeap{}
	grow := func(n int) {
		inTree[n] = true
		for _, eid := range t.undirAdj[n] {
			e := t.edges[eid]
			if !t.edgeInView(e, v) {
				continue
			}
			other := e.to
			if other == n {
				other = e.from
			}
			if !inTree[other] {
				heap.Push(h, primArc{weight: weightOf(e), edgeID: eid, to: other})
			}
		}
	}
	// Grow a forest: restart from every yet-unreached node so the
	// result covers disconnected views too.
	for start := 0; start < t.nodes; start++ {
		if inTree[start] {
			continue
		}
		grow(start)
		for h.Len() > 0 {
			arc := heap.Pop(h).(primArc)
			if inTree[arc.to] {
				continue
			}
			total += arc.weight
			tree = append(tree, arc.edgeID)
			grow(arc.to)
		}
	}
	return total, tree, len(tree) == t.nodes-1
}
