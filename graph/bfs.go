package graph

// Breadth-first structures over a view of the graph: the under view
// sees enabled edges only, the over view sees enabled and undecided
// edges. Both are rebuilt on demand after edge status changes.

type view byte

const (
	underView view = iota // enabled edges only
	overView              // enabled + undecided edges
)

func (t *TheorySolver) edgeInView(e *edge, v view) bool {
	switch t.status[e.id] {
	case statusEnabled:
		return true
	case statusDisabled:
		return false
	default:
		return v == overView
	}
}

// reach computes reachability from src. With backward set, edges are
// traversed target to source.
func (t *TheorySolver) reach(src int, v view, backward bool) []bool {
	seen := make([]bool, t.nodes)
	seen[src] = true
	queue := []int{src}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		adj := t.adj[n]
		if backward {
			adj = t.radj[n]
		}
		for _, eid := range adj {
			e := t.edges[eid]
			if !t.edgeInView(e, v) {
				continue
			}
			next := e.to
			if backward {
				next = e.from
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

// hopsDir computes the minimal number of edges from src to every node,
// traversing edges backwards when asked; -1 for unreachable nodes.
// parents receives, for each reached node, the edge it was discovered
// through.
func (t *TheorySolver) hopsDir(src int, v view, backward bool) (dist []int, parents []int) {
	dist = make([]int, t.nodes)
	parents = make([]int, t.nodes)
	for i := range dist {
		dist[i] = -1
		parents[i] = -1
	}
	dist[src] = 0
	queue := []int{src}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		adj := t.adj[n]
		if backward {
			adj = t.radj[n]
		}
		for _, eid := range adj {
			e := t.edges[eid]
			next := e.to
			if backward {
				next = e.from
			}
			if !t.edgeInView(e, v) || dist[next] >= 0 {
				continue
			}
			dist[next] = dist[n] + 1
			parents[next] = eid
			queue = append(queue, next)
		}
	}
	return dist, parents
}

// pathToDir is pathTo for both traversal directions.
func (t *TheorySolver) pathToDir(src, dst int, parents []int, backward bool) (nodes []int, edges []int) {
	if !backward {
		return t.pathTo(src, dst, parents)
	}
	for n := dst; n != src; {
		eid := parents[n]
		if eid < 0 {
			return nil, nil
		}
		edges = append(edges, eid)
		nodes = append(nodes, n)
		n = t.edges[eid].to
	}
	nodes = append(nodes, src)
	return nodes, edges
}

// disabledWithinDir is disabledWithin for both traversal directions:
// the cited tail is the node the traversal leaves the edge from.
func (t *TheorySolver) disabledWithinDir(overHops []int, maxHops int, backward bool) []int {
	var cut []int
	for _, e := range t.edges {
		if t.status[e.id] != statusDisabled {
			continue
		}
		tail := e.from
		if backward {
			tail = e.to
		}
		h := overHops[tail]
		if h < 0 {
			continue
		}
		if maxHops < 0 || h < maxHops {
			cut = append(cut, e.id)
		}
	}
	return cut
}

// pathTo walks a parent-edge table back from dst and returns the node
// path and the edges used, in source-to-destination order.
func (t *TheorySolver) pathTo(src, dst int, parents []int) (nodes []int, edges []int) {
	for n := dst; n != src; {
		eid := parents[n]
		if eid < 0 {
			return nil, nil
		}
		edges = append(edges, eid)
		nodes = append(nodes, n)
		n = t.edges[eid].from
	}
	nodes = append(nodes, src)
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return nodes, edges
}
