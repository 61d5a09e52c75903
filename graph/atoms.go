package graph

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/crillab/monosat/solver"
)

// Atom constructors. Atoms are cached by their full descriptor:
// re-requesting one with identical parameters returns the same literal
// and reports that it already existed.

func (t *TheorySolver) atomLit(key atomKey) (solver.Lit, bool) {
	if l, ok := t.dedup[key]; ok {
		return l, true
	}
	v := t.sat.NewTheoryVar(t.id)
	a := &gatom{key: key, lit: v.Lit()}
	t.atoms = append(t.atoms, a)
	t.atomOfVar[v] = a
	t.dedup[key] = a.lit
	t.pending = true
	return a.lit, false
}

// Reaches returns an atom true iff to is reachable from from using at
// most maxHops edges (-1 for unbounded). Self reachability is constant
// true and allocates no variable.
func (t *TheorySolver) Reaches(from, to, maxHops int) (solver.Lit, bool, error) {
	if err := t.checkNode(from); err != nil {
		return solver.LitUndef, false, err
	}
	if err := t.checkNode(to); err != nil {
		return solver.LitUndef, false, err
	}
	if from == to {
		return t.sat.TrueLit(), true, nil
	}
	lit, existed := t.atomLit(atomKey{kind: atomReach, from: from, to: to, hops: maxHops, bvID: -1})
	return lit, existed, nil
}

// ReachesBackward returns an atom true iff from is reachable from to in
// the reverse graph.
func (t *TheorySolver) ReachesBackward(from, to int) (solver.Lit, bool, error) {
	if err := t.checkNode(from); err != nil {
		return solver.LitUndef, false, err
	}
	if err := t.checkNode(to); err != nil {
		return solver.LitUndef, false, err
	}
	if from == to {
		return t.sat.TrueLit(), true, nil
	}
	lit, existed := t.atomLit(atomKey{kind: atomReachBackward, from: from, to: to, hops: -1, bvID: -1})
	return lit, existed, nil
}

// OnPath returns an atom true iff some path from from to to passes
// through nodeOnPath.
func (t *TheorySolver) OnPath(nodeOnPath, from, to int) (solver.Lit, bool, error) {
	for _, n := range []int{nodeOnPath, from, to} {
		if err := t.checkNode(n); err != nil {
			return solver.LitUndef, false, err
		}
	}
	lit, existed := t.atomLit(atomKey{kind: atomOnPath, from: from, to: to, via: nodeOnPath, hops: -1, bvID: -1})
	return lit, existed, nil
}

// Distance returns an atom comparing the weighted shortest path from
// from to to against dist: "< dist" when strict, "<= dist" otherwise.
func (t *TheorySolver) Distance(from, to int, dist int64, strict bool) (solver.Lit, bool, error) {
	if err := t.checkNode(from); err != nil {
		return solver.LitUndef, false, err
	}
	if err := t.checkNode(to); err != nil {
		return solver.LitUndef, false, err
	}
	lit, existed := t.atomLit(atomKey{kind: atomDistance, from: from, to: to, bound: dist, strict: strict, hops: -1, bvID: -1})
	return lit, existed, nil
}

// DistanceBV is Distance with a bitvector bound.
func (t *TheorySolver) DistanceBV(from, to, bvID int, strict bool) (solver.Lit, bool, error) {
	if err := t.checkNode(from); err != nil {
		return solver.LitUndef, false, err
	}
	if err := t.checkNode(to); err != nil {
		return solver.LitUndef, false, err
	}
	if t.bvt == nil || !t.bvt.Has(bvID) {
		return solver.LitUndef, false, fmt.Errorf("unknown bitvector %d", bvID)
	}
	lit, existed := t.atomLit(atomKey{kind: atomDistanceBV, from: from, to: to, bvID: bvID, strict: strict, hops: -1})
	return lit, existed, nil
}

// MaxFlow returns an atom comparing the maximum from-to flow against
// flow: "> flow" when strict, ">= flow" otherwise.
func (t *TheorySolver) MaxFlow(source, sink int, flow int64, strict bool) (solver.Lit, bool, error) {
	if err := t.checkNode(source); err != nil {
		return solver.LitUndef, false, err
	}
	if err := t.checkNode(sink); err != nil {
		return solver.LitUndef, false, err
	}
	lit, existed := t.atomLit(atomKey{kind: atomMaxFlow, from: source, to: sink, bound: flow, strict: strict, hops: -1, bvID: -1})
	return lit, existed, nil
}

// MaxFlowBV is MaxFlow with a bitvector bound.
func (t *TheorySolver) MaxFlowBV(source, sink, bvID int, strict bool) (solver.Lit, bool, error) {
	if err := t.checkNode(source); err != nil {
		return solver.LitUndef, false, err
	}
	if err := t.checkNode(sink); err != nil {
		return solver.LitUndef, false, err
	}
	if t.bvt == nil || !t.bvt.Has(bvID) {
		return solver.LitUndef, false, fmt.Errorf("unknown bitvector %d", bvID)
	}
	lit, existed := t.atomLit(atomKey{kind: atomMaxFlowBV, from: source, to: sink, bvID: bvID, strict: strict, hops: -1})
	return lit, existed, nil
}

// MSTWeight returns an atom comparing the minimum spanning tree weight
// against weight: "< weight" when strict, "<= weight" otherwise. A
// disconnected graph has infinite spanning weight.
func (t *TheorySolver) MSTWeight(weight int64, strict bool) (solver.Lit, bool, error) {
	lit, existed := t.atomLit(atomKey{kind: atomMSTWeight, bound: weight, strict: strict, from: -1, to: -1, hops: -1, bvID: -1})
	return lit, existed, nil
}

// Acyclic returns an atom true iff the graph (directed or its
// undirected projection) has no cycle of enabled edges.
func (t *TheorySolver) Acyclic(directed bool) (solver.Lit, bool, error) {
	lit, existed := t.atomLit(atomKey{kind: atomAcyclic, directed: directed, from: -1, to: -1, hops: -1, bvID: -1})
	return lit, existed, nil
}

// reasonEnabled builds "forced because these enabled edges exist".
func (t *TheorySolver) reasonEnabled(forced solver.Lit, edgeIDs []int, bvIDs []int) []solver.Lit {
	lits := []solver.Lit{forced}
	for _, eid := range edgeIDs {
		lits = append(lits, t.edges[eid].lit.Negation())
	}
	return t.appendBVCones(lits, bvIDs, forced)
}

// reasonDisabled builds "forced because these disabled edges are gone".
func (t *TheorySolver) reasonDisabled(forced solver.Lit, edgeIDs []int, bvIDs []int) []solver.Lit {
	lits := []solver.Lit{forced}
	for _, eid := range edgeIDs {
		lits = append(lits, t.edges[eid].lit)
	}
	return t.appendBVCones(lits, bvIDs, forced)
}

func (t *TheorySolver) appendBVCones(lits []solver.Lit, bvIDs []int, forced solver.Lit) []solver.Lit {
	if t.bvt == nil {
		return lits
	}
	seen := make(map[solver.Var]bool, len(lits))
	for _, l := range lits {
		seen[l.Var()] = true
	}
	for _, id := range bvIDs {
		for _, q := range t.bvt.AssignedConeLits(id) {
			if !seen[q.Var()] {
				seen[q.Var()] = true
				lits = append(lits, q.Negation())
			}
		}
	}
	return lits
}

// weightBVs lists the bitvector ids weighting any edge; those bounds
// back every weighted verdict.
func (t *TheorySolver) weightBVs() []int {
	var ids []int
	for _, e := range t.edges {
		if e.bvID >= 0 {
			ids = append(ids, e.bvID)
		}
	}
	return ids
}

// disabledWithin cites the disabled edges whose tail the over view
// still reaches within the given hop bound (-1 for unbounded): the cut
// certifying unreachability.
func (t *TheorySolver) disabledWithin(overHops []int, maxHops int) []int {
	var cut []int
	for _, e := range t.edges {
		if t.status[e.id] != statusDisabled {
			continue
		}
		h := overHops[e.from]
		if h < 0 {
			continue
		}
		if maxHops < 0 || h < maxHops {
			cut = append(cut, e.id)
		}
	}
	return cut
}

// disabledWithinDist is disabledWithin for weighted distances.
func (t *TheorySolver) disabledWithinDist(overDist []int64, bound int64) []int {
	var cut []int
	for _, e := range t.edges {
		if t.status[e.id] != statusDisabled {
			continue
		}
		d := overDist[e.from]
		if d >= 0 && d <= bound {
			cut = append(cut, e.id)
		}
	}
	return cut
}

// evalAtom decides whether the current statuses and bounds force the
// atom, returning the forced literal and its reason clause, or
// LitUndef.
func (t *TheorySolver) evalAtom(a *gatom) (solver.Lit, []solver.Lit) {
	switch a.key.kind {
	case atomReach:
		return t.evalReach(a, false)
	case atomReachBackward:
		return t.evalReach(a, true)
	case atomOnPath:
		return t.evalOnPath(a)
	case atomDistance:
		return t.evalDistance(a)
	case atomDistanceBV:
		return t.evalDistanceBV(a)
	case atomMaxFlow, atomMaxFlowBV:
		return t.evalMaxFlow(a)
	case atomMSTWeight:
		return t.evalMST(a)
	default:
		return t.evalAcyclic(a)
	}
}

func (t *TheorySolver) evalReach(a *gatom, backward bool) (solver.Lit, []solver.Lit) {
	from, to, maxHops := a.key.from, a.key.to, a.key.hops
	underHops, underParents := t.hopsDir(from, underView, backward)
	if h := underHops[to]; h >= 0 && (maxHops < 0 || h <= maxHops) {
		_, edges := t.pathToDir(from, to, underParents, backward)
		return a.lit, t.reasonEnabled(a.lit, edges, nil)
	}
	overHops, _ := t.hopsDir(from, overView, backward)
	if h := overHops[to]; h < 0 || (maxHops >= 0 && h > maxHops) {
		cut := t.disabledWithinDir(overHops, maxHops, backward)
		return a.lit.Negation(), t.reasonDisabled(a.lit.Negation(), cut, nil)
	}
	return solver.LitUndef, nil
}

func (t *TheorySolver) evalOnPath(a *gatom) (solver.Lit, []solver.Lit) {
	from, to, via := a.key.from, a.key.to, a.key.via
	underA := t.newAllPairs(underView)
	if underA.reachable(t, underView, from, via) && underA.reachable(t, underView, via, to) {
		var edges []int
		if from != via {
			_, parents := t.hopsDir(from, underView, false)
			_, e1 := t.pathToDir(from, via, parents, false)
			edges = append(edges, e1...)
		}
		if via != to {
			_, parents := t.hopsDir(via, underView, false)
			_, e2 := t.pathToDir(via, to, parents, false)
			edges = append(edges, e2...)
		}
		return a.lit, t.reasonEnabled(a.lit, edges, nil)
	}
	overA := t.newAllPairs(overView)
	if !overA.reachable(t, overView, from, via) {
		overHops, _ := t.hopsDir(from, overView, false)
		cut := t.disabledWithin(overHops, -1)
		return a.lit.Negation(), t.reasonDisabled(a.lit.Negation(), cut, nil)
	}
	if !overA.reachable(t, overView, via, to) {
		overHops, _ := t.hopsDir(via, overView, false)
		cut := t.disabledWithin(overHops, -1)
		return a.lit.Negation(), t.reasonDisabled(a.lit.Negation(), cut, nil)
	}
	return solver.LitUndef, nil
}

func (t *TheorySolver) distanceHolds(d int64, bound int64, strict bool) bool {
	if d < 0 {
		return false
	}
	if strict {
		return d < bound
	}
	return d <= bound
}

func (t *TheorySolver) evalDistance(a *gatom) (solver.Lit, []solver.Lit) {
	from, to, bound, strict := a.key.from, a.key.to, a.key.bound, a.key.strict
	underDist, underParents := t.shortest(from, underView, true)
	if t.distanceHolds(underDist[to], bound, strict) {
		_, edges := t.pathTo(from, to, underParents)
		return a.lit, t.reasonEnabled(a.lit, edges, t.weightBVs())
	}
	overDist, _ := t.shortest(from, overView, false)
	if !t.distanceHolds(overDist[to], bound, strict) {
		cut := t.disabledWithinDist(overDist, bound)
		return a.lit.Negation(), t.reasonDisabled(a.lit.Negation(), cut, t.weightBVs())
	}
	return solver.LitUndef, nil
}

func (t *TheorySolver) evalDistanceBV(a *gatom) (solver.Lit, []solver.Lit) {
	from, to, strict := a.key.from, a.key.to, a.key.strict
	rhsUnder := int64(t.bvt.CurrentUnder(a.key.bvID))
	rhsOver := int64(t.bvt.CurrentOver(a.key.bvID))
	bvs := append(t.weightBVs(), a.key.bvID)
	underDist, underParents := t.shortest(from, underView, true)
	if t.distanceHolds(underDist[to], rhsUnder, strict) {
		_, edges := t.pathTo(from, to, underParents)
		return a.lit, t.reasonEnabled(a.lit, edges, bvs)
	}
	overDist, _ := t.shortest(from, overView, false)
	if !t.distanceHolds(overDist[to], rhsOver, strict) {
		cut := t.disabledWithinDist(overDist, rhsOver)
		return a.lit.Negation(), t.reasonDisabled(a.lit.Negation(), cut, bvs)
	}
	return solver.LitUndef, nil
}

func (t *TheorySolver) flowHolds(flow, bound int64, strict bool) bool {
	if strict {
		return flow > bound
	}
	return flow >= bound
}

func (t *TheorySolver) evalMaxFlow(a *gatom) (solver.Lit, []solver.Lit) {
	source, sink, strict := a.key.from, a.key.to, a.key.strict
	var lo, hi int64
	var bvs []int
	if a.key.kind == atomMaxFlowBV {
		lo = int64(t.bvt.CurrentUnder(a.key.bvID))
		hi = int64(t.bvt.CurrentOver(a.key.bvID))
		bvs = append(t.weightBVs(), a.key.bvID)
	} else {
		lo, hi = a.key.bound, a.key.bound
		bvs = t.weightBVs()
	}
	underNet := t.buildFlowNet(source, sink, underView, false)
	if flow := underNet.run(t.alg.MaxFlow); t.flowHolds(flow, hi, strict) {
		var used []int
		for eid := range underNet.edgeFlows() {
			used = append(used, eid)
		}
		slices.Sort(used)
		return a.lit, t.reasonEnabled(a.lit, used, bvs)
	}
	overNet := t.buildFlowNet(source, sink, overView, true)
	if flow := overNet.run(t.alg.MaxFlow); !t.flowHolds(flow, lo, strict) {
		side := overNet.minCutSourceSide()
		var cut []int
		for _, e := range t.edges {
			if t.status[e.id] == statusDisabled && side[e.from] && !side[e.to] {
				cut = append(cut, e.id)
			}
		}
		return a.lit.Negation(), t.reasonDisabled(a.lit.Negation(), cut, bvs)
	}
	return solver.LitUndef, nil
}

func (t *TheorySolver) evalMST(a *gatom) (solver.Lit, []solver.Lit) {
	bound, strict := a.key.bound, a.key.strict
	underWeight, tree, spanning := t.mst(underView, true)
	if spanning && t.distanceHolds(underWeight, bound, strict) {
		return a.lit, t.reasonEnabled(a.lit, tree, t.weightBVs())
	}
	overWeight, _, overSpanning := t.mst(overView, false)
	if !overSpanning || !t.distanceHolds(overWeight, bound, strict) {
		var disabled []int
		for _, e := range t.edges {
			if t.status[e.id] == statusDisabled {
				disabled = append(disabled, e.id)
			}
		}
		return a.lit.Negation(), t.reasonDisabled(a.lit.Negation(), disabled, t.weightBVs())
	}
	return solver.LitUndef, nil
}

func (t *TheorySolver) evalAcyclic(a *gatom) (solver.Lit, []solver.Lit) {
	var underCycle []int
	if a.key.directed {
		underCycle = t.findDirectedCycle(underView)
	} else {
		underCycle = t.findUndirectedCycle(underView)
	}
	if underCycle != nil {
		return a.lit.Negation(), t.reasonEnabled(a.lit.Negation(), underCycle, nil)
	}
	var overCycle []int
	if a.key.directed {
		overCycle = t.findDirectedCycle(overView)
	} else {
		overCycle = t.findUndirectedCycle(overView)
	}
	if overCycle == nil {
		var disabled []int
		for _, e := range t.edges {
			if t.status[e.id] == statusDisabled {
				disabled = append(disabled, e.id)
			}
		}
		return a.lit, t.reasonDisabled(a.lit, disabled, nil)
	}
	return solver.LitUndef, nil
}
