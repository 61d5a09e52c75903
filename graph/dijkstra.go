package graph

import "container/heap"

// Weighted shortest paths. The over view is paired with minimal edge
// weights (the shortest distance any completion could reach), the under
// view with maximal weights (the distance already guaranteed).

type nodeDist struct {
	node int
	dist int64
}

type distHeap []nodeDist

func (h distHeap) Len() int { return len(h) }
func (h distHeap) Less(i, j int) bool {
	return h[i].dist < h[j].dist || (h[i].dist == h[j].dist && h[i].node < h[j].node)
}
func (h distHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *distHeap) Push(x interface{}) { *h = append(*h, x.(nodeDist)) }
func (h *distHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// weightMin returns the smallest weight e can still take.
func (t *TheorySolver) weightMin(e *edge) int64 {
	if e.bvID >= 0 && t.bvt != nil {
		return int64(t.bvt.CurrentUnder(e.bvID))
	}
	return e.weight
}

// weightMax returns the largest weight e can still take.
func (t *TheorySolver) weightMax(e *edge) int64 {
	if e.bvID >= 0 && t.bvt != nil {
		return int64(t.bvt.CurrentOver(e.bvID))
	}
	return e.weight
}

// shortest computes minimal path weights from src; -1 for unreachable
// nodes. parents receives the incoming shortest-path edge per node.
func (t *TheorySolver) shortest(src int, v view, maxWeights bool) (dist []int64, parents []int) {
	weight := t.weightMin
	if maxWeights {
		weight = t.weightMax
	}
	dist = make([]int64, t.nodes)
	parents = make([]int, t.nodes)
	done := make([]bool, t.nodes)
	for i := range dist {
		dist[i] = -1
		parents[i] = -1
	}
	dist[src] = 0
	h := &distHeap{{node: src}}
	for h.Len() > 0 {
		cur := heap.Pop(h).(nodeDist)
		if done[cur.node] {
			continue
		}
		done[cur.node] = true
		for _, eid := range t.adj[cur.node] {
			e := t.edges[eid]
			if !t.edgeInView(e, v) {
				continue
			}
			d := cur.dist + weight(e)
			if dist[e.to] < 0 || d < dist[e.to] {
				dist[e.to] = d
				parents[e.to] = eid
				heap.Push(h, nodeDist{node: e.to, dist: d})
			}
		}
	}
	return dist, parents
}
