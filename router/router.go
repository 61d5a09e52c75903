// Package router implements the flow router: a composite theory that
// groups a maximum-flow atom with a set of nets. Each net picks exactly
// one of its member edges and the corresponding reachability literal
// must follow the choice; the routing lemmas tying them together are
// produced lazily, when an assignment violates them.
package router

import (
	"fmt"

	"github.com/crillab/monosat/graph"
	"github.com/crillab/monosat/solver"
)

type member struct {
	edgeLit  solver.Lit
	reachLit solver.Lit
}

type net struct {
	disabledEdge solver.Lit
	members      []member
}

// A FlowRouter routes nets through a shared maximum flow.
type FlowRouter struct {
	sat        *solver.Solver
	g          *graph.TheorySolver
	id         int
	routerID   int
	source     int
	dest       int
	maxflowLit solver.Lit

	nets    []net
	pending bool
	reasons map[solver.Var][]solver.Lit
}

// New creates a flow router for the given graph and maxflow atom.
func New(sat *solver.Solver, g *graph.TheorySolver, routerID, source, dest int, maxflowLit solver.Lit) *FlowRouter {
	r := &FlowRouter{
		sat:        sat,
		g:          g,
		routerID:   routerID,
		source:     source,
		dest:       dest,
		maxflowLit: maxflowLit,
		reasons:    make(map[solver.Var][]solver.Lit),
	}
	r.id = sat.AttachTheory(r)
	sat.WatchTheoryVar(maxflowLit.Var(), r.id)
	return r
}

// RouterID returns the router's id in the embedding API.
func (r *FlowRouter) RouterID() int { return r.routerID }

// AddNet registers a net: a disable literal and the candidate
// (edge, reach) member pairs. Exactly one member edge must be chosen
// whenever the net is not disabled.
func (r *FlowRouter) AddNet(disabledEdge solver.Lit, edgeLits, reachLits []solver.Lit) error {
	if len(edgeLits) != len(reachLits) {
		return fmt.Errorf("router net needs as many edge as reach literals")
	}
	n := net{disabledEdge: disabledEdge}
	atLeastOne := make([]solver.Lit, 0, len(edgeLits)+1)
	atLeastOne = append(atLeastOne, disabledEdge)
	for i := range edgeLits {
		n.members = append(n.members, member{edgeLit: edgeLits[i], reachLit: reachLits[i]})
		r.sat.WatchTheoryVar(edgeLits[i].Var(), r.id)
		r.sat.WatchTheoryVar(reachLits[i].Var(), r.id)
		atLeastOne = append(atLeastOne, edgeLits[i])
	}
	r.sat.WatchTheoryVar(disabledEdge.Var(), r.id)
	r.sat.AddClauseLits(atLeastOne)
	// At most one member edge: pairwise, nets stay small.
	for i := 0; i < len(edgeLits); i++ {
		for j := i + 1; j < len(edgeLits); j++ {
			r.sat.AddClause(edgeLits[i].Negation(), edgeLits[j].Negation())
		}
	}
	r.nets = append(r.nets, n)
	r.pending = true
	return nil
}

// Enqueue implements solver.Theory.
func (r *FlowRouter) Enqueue(_ solver.Lit) { r.pending = true }

// NewDecisionLevel implements solver.Theory.
func (r *FlowRouter) NewDecisionLevel() {}

// BacktrackTo implements solver.Theory.
func (r *FlowRouter) BacktrackTo(int) { r.pending = true }

// Explain implements solver.Theory.
func (r *FlowRouter) Explain(l solver.Lit) []solver.Lit {
	if rs, ok := r.reasons[l.Var()]; ok {
		return rs
	}
	return []solver.Lit{l}
}

// Propagate implements solver.Theory: enforce, per net, that a chosen
// member edge routes (its reach literal holds) unless the net is
// disabled. A chosen edge with an unassigned reach literal forces that
// literal true; one with a false reach literal forces the net's disable
// literal true, or reports a conflict. It never chooses a member edge.
func (r *FlowRouter) Propagate(confl *[]solver.Lit) bool {
	if !r.pending {
		return true
	}
	r.pending = false
	for _, n := range r.nets {
		if r.sat.Value(n.disabledEdge) == solver.Sat {
			continue
		}
		for _, m := range n.members {
			ev := r.sat.Value(m.edgeLit)
			rv := r.sat.Value(m.reachLit)
			if ev != solver.Sat {
				continue
			}
			// Chosen member must route: ~edge | reach | disabled.
			switch rv {
			case solver.Sat:
			case solver.Unsat:
				lemma := []solver.Lit{m.reachLit, m.edgeLit.Negation(), n.disabledEdge}
				if r.sat.Value(n.disabledEdge) == solver.Indet {
					r.reasons[n.disabledEdge.Var()] = []solver.Lit{n.disabledEdge, m.edgeLit.Negation(), m.reachLit}
					if !r.sat.TheoryEnqueue(n.disabledEdge, r.id) {
						*confl = r.reasons[n.disabledEdge.Var()]
						return false
					}
				} else {
					*confl = lemma
					return false
				}
			default:
				r.reasons[m.reachLit.Var()] = []solver.Lit{m.reachLit, m.edgeLit.Negation(), n.disabledEdge}
				if !r.sat.TheoryEnqueue(m.reachLit, r.id) {
					*confl = r.reasons[m.reachLit.Var()]
					return false
				}
			}
		}
	}
	return true
}
