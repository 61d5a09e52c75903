package graph

import (
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// All-pairs reachability, used by the on-path atoms. The
// floyd-warshall option runs gonum's implementation over a snapshot of
// the view; the dijkstra option runs one single-source pass per query
// source through the theory's own engine.

// allPairs answers s->m and m->t reachability for an on-path atom.
type allPairs struct {
	fw    *path.AllShortest
	reach map[int][]bool
}

func (t *TheorySolver) newAllPairs(v view) *allPairs {
	if t.alg.AllPairs == AllPairsFloydWarshall {
		g := simple.NewWeightedDirectedGraph(1, 0)
		for n := 0; n < t.nodes; n++ {
			g.AddNode(simple.Node(n))
		}
		for _, e := range t.edges {
			if !t.edgeInView(e, v) || e.from == e.to {
				continue
			}
			g.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(e.from),
				T: simple.Node(e.to),
				W: 1,
			})
		}
		fw, _ := path.FloydWarshall(g)
		return &allPairs{fw: &fw}
	}
	return &allPairs{reach: make(map[int][]bool)}
}

func (ap *allPairs) reachable(t *TheorySolver, v view, from, to int) bool {
	if from == to {
		return true
	}
	if ap.fw != nil {
		return ap.fw.Weight(int64(from), int64(to)) < 1e308
	}
	r, ok := ap.reach[from]
	if !ok {
		r = t.reach(from, v, false)
		ap.reach[from] = r
	}
	return r[to]
}
