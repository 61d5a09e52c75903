package graph

// Maximum flow over a view of the graph, with the Edmonds-Karp and
// Dinitz engines. Capacities come from fixed weights or from the
// current bitvector bounds; each run works on a residual network built
// from scratch for the requesting atom.

type flowNet struct {
	nodes   int
	arcs    []flowArc
	headOut [][]int // Arc indexes by tail
	source  int
	sink    int
}

type flowArc struct {
	from, to int
	cap      int64
	flow     int64
	edgeID   int // Originating edge, -1 for reverse arcs
	rev      int // Index of the reverse arc
}

// buildFlowNet assembles a residual network from the edges present in
// the given view. maxCaps selects over-approximated capacities.
func (t *TheorySolver) buildFlowNet(source, sink int, v view, maxCaps bool) *flowNet {
	n := &flowNet{
		nodes:   t.nodes,
		headOut: make([][]int, t.nodes),
		source:  source,
		sink:    sink,
	}
	capOf := t.weightMin
	if maxCaps {
		capOf = t.weightMax
	}
	for _, e := range t.edges {
		if !t.edgeInView(e, v) {
			continue
		}
		c := capOf(e)
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

func (n *flowNet) residual(i int) int64 {
	return n.arcs[i].cap - n.arcs[i].flow
}

func (n *flowNet) push(i int, amount int64) {
	n.arcs[i].flow += amount
	n.arcs[n.arcs[i].rev].flow -= amount
}

// edmondsKarp augments along shortest residual paths until exhaustion
// and returns the total flow.
func (n *flowNet) edmondsKarp() int64 {
	var total int64
	for {
		parent := make([]int, n.nodes) // Arc used to reach each node
		for i := range parent {
			parent[i] = -1
		}
		parent[n.source] = -2
		queue := []int{n.source}
		for len(queue) > 0 && parent[n.sink] == -1 {
			u := queue[0]
			queue = queue[1:]
			for _, ai := range n.headOut[u] {
				a := n.arcs[ai]
				if parent[a.to] == -1 && n.residual(ai) > 0 {
					parent[a.to] = ai
					queue = append(queue, a.to)
				}
			}
		}
		if parent[n.sink] == -1 {
			return total
		}
		bottleneck := int64(-1)
		for u := n.sink; u != n.source; {
			ai := parent[u]
			if r := n.residual(ai); bottleneck < 0 || r < bottleneck {
				bottleneck = r
			}
			u = n.arcs[ai].from
		}
		for u := n.sink; u != n.source; {
			ai := parent[u]
			n.push(ai, bottleneck)
			u = n.arcs[ai].from
		}
		total += bottleneck
	}
}

// dinitz computes the maximum flow with level graphs and blocking
// flows.
func (n *flowNet) dinitz() int64 {
	var total int64
	level := make([]int, n.nodes)
	iter := make([]int, n.nodes)
	for {
		for i := range level {
			level[i] = -1
		}
		level[n.source] = 0
		queue := []int{n.source}
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, ai := range n.headOut[u] {
				a := n.arcs[ai]
				if level[a.to] == -1 && n.residual(ai) > 0 {
					level[a.to] = level[u] + 1
					queue = append(queue, a.to)
				}
			}
		}
		if level[n.sink] == -1 {
			return total
		}
		for i := range iter {
			iter[i] = 0
		}
		for {
			pushed := n.blockingFlow(n.source, int64(1)<<62, level, iter)
			if pushed == 0 {
				break
			}
			total += pushed
		}
	}
}

func (n *flowNet) blockingFlow(u int, limit int64, level, iter []int) int64 {
	if u == n.sink {
		return limit
	}
	for ; iter[u] < len(n.headOut[u]); iter[u]++ {
		ai := n.headOut[u][iter[u]]
		a := n.arcs[ai]
		if level[a.to] != level[u]+1 || n.residual(ai) <= 0 {
			continue
		}
		amount := limit
		if r := n.residual(ai); r < amount {
			amount = r
		}
		if pushed := n.blockingFlow(a.to, amount, level, iter); pushed > 0 {
			n.push(ai, pushed)
			return pushed
		}
	}
	return 0
}

// run dispatches on the configured engine.
func (n *flowNet) run(alg MaxFlowAlg) int64 {
	switch alg {
	case MaxFlowDinitz, MaxFlowDinitzLinkCut, MaxFlowKohliTorr:
		return n.dinitz()
	default:
		return n.edmondsKarp()
	}
}

// minCutSourceSide returns the nodes still reachable from the source in
// the residual network of a completed run.
func (n *flowNet) minCutSourceSide() []bool {
	seen := make([]bool, n.nodes)
	seen[n.source] = true
	queue := []int{n.source}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, ai := range n.headOut[u] {
			a := n.arcs[ai]
			if !seen[a.to] && n.residual(ai) > 0 {
				seen[a.to] = true
				queue = append(queue, a.to)
			}
		}
	}
	return seen
}

// cancelFlowCycles removes directed cycles from the flow so it
// decomposes into simple source-sink paths.
func (n *flowNet) cancelFlowCycles() {
	for {
		cycle := n.findFlowCycle()
		if cycle == nil {
			return
		}
		least := int64(-1)
		for _, ai := range cycle {
			if f := n.arcs[ai].flow; least < 0 || f < least {
				least = f
			}
		}
		for _, ai := range cycle {
			n.push(ai, -least)
		}
	}
}

// findFlowCycle returns arc indexes forming a directed cycle of
// positive flow, or nil.
func (n *flowNet) findFlowCycle() []int {
	const (
		white = iota
		gray
		black
	)
	color := make([]byte, n.nodes)
	parentArc := make([]int, n.nodes)
	for i := range parentArc {
		parentArc[i] = -1
	}
	var cycle []int
	var visit func(u int) bool
	visit = func(u int) bool {
		color[u] = gray
		for _, ai := range n.headOut[u] {
			a := n.arcs[ai]
			if a.edgeID < 0 || a.flow <= 0 {
				continue
			}
			switch color[a.to] {
			case white:
				parentArc[a.to] = ai
				if visit(a.to) {
					return true
				}
			case gray:
				cycle = append(cycle, ai)
				for x := u; x != a.to; {
					pa := parentArc[x]
					cycle = append(cycle, pa)
					x = n.arcs[pa].from
				}
				return true
			}
		}
		color[u] = black
		return false
	}
	for u := 0; u < n.nodes; u++ {
		if color[u] == white && visit(u) {
			return cycle
		}
	}
	return nil
}

// edgeFlows returns the flow per originating edge id.
func (n *flowNet) edgeFlows() map[int]int64 {
	flows := make(map[int]int64)
	for _, a := range n.arcs {
		if a.edgeID >= 0 && a.flow > 0 {
			flows[a.edgeID] += a.flow
		}
	}
	return flows
}
