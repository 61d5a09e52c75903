// Package fsm implements the finite-state-machine theory: acceptance
// atoms over nondeterministic automata whose transitions are guarded by
// enable literals. Label 0 is epsilon.
package fsm

import (
	"fmt"

	"github.com/crillab/monosat/solver"
)

type transition struct {
	id       int
	from, to int
	input    int
	output   int
	lit      solver.Lit
}

type machine struct {
	id          int
	states      int
	inAlpha     int
	outAlpha    int
	transitions []*transition
	adj         [][]int // Transition ids by source state
}

type acceptAtom struct {
	lit    solver.Lit
	fsmID  int
	start  int
	accept int
	strID  int
}

type acceptKey struct {
	fsmID, start, accept, strID int
}

// TheorySolver hosts every state machine of one solver.
type TheorySolver struct {
	sat *solver.Solver
	id  int

	machines []*machine
	strings  [][]int
	atoms    []*acceptAtom
	dedup    map[acceptKey]solver.Lit
	reasons  map[solver.Var][]solver.Lit
	pending  bool
}

// New attaches a fresh FSM theory to the solver.
func New(sat *solver.Solver) *TheorySolver {
	t := &TheorySolver{
		sat:     sat,
		dedup:   make(map[acceptKey]solver.Lit),
		reasons: make(map[solver.Var][]solver.Lit),
	}
	t.id = sat.AttachTheory(t)
	return t
}

// NewFSM creates a machine and returns its id.
func (t *TheorySolver) NewFSM(inAlpha, outAlpha int) int {
	m := &machine{
		id:       len(t.machines),
		inAlpha:  inAlpha,
		outAlpha: outAlpha,
	}
	t.machines = append(t.machines, m)
	return m.id
}

// Has returns whether the machine id exists.
func (t *TheorySolver) Has(fsmID int) bool { return fsmID >= 0 && fsmID < len(t.machines) }

func (t *TheorySolver) checkFSM(fsmID int) error {
	if !t.Has(fsmID) {
		return fmt.Errorf("unknown fsm %d", fsmID)
	}
	return nil
}

// NewState adds a state to the machine.
func (t *TheorySolver) NewState(fsmID int) (int, error) {
	if err := t.checkFSM(fsmID); err != nil {
		return -1, err
	}
	m := t.machines[fsmID]
	s := m.states
	m.states++
	m.adj = append(m.adj, nil)
	return s, nil
}

// NewTransition adds a guarded transition; the variable becomes
// theory-owned.
func (t *TheorySolver) NewTransition(fsmID, from, to, input, output int, v solver.Var) (solver.Lit, error) {
	if err := t.checkFSM(fsmID); err != nil {
		return solver.LitUndef, err
	}
	m := t.machines[fsmID]
	if from < 0 || from >= m.states || to < 0 || to >= m.states {
		return solver.LitUndef, fmt.Errorf("unknown state in fsm %d", fsmID)
	}
	if input < 0 || input > m.inAlpha {
		m.inAlpha = input
	}
	tr := &transition{
		id:     len(m.transitions),
		from:   from,
		to:     to,
		input:  input,
		output: output,
		lit:    v.Lit(),
	}
	m.transitions = append(m.transitions, tr)
	m.adj[from] = append(m.adj[from], tr.id)
	t.sat.BindTheoryVar(v, t.id)
	t.pending = true
	return tr.lit, nil
}

// NewString interns a label string and returns its id. Labels must be
// strictly positive.
func (t *TheorySolver) NewString(labels []int) (int, error) {
	for i, l := range labels {
		if l <= 0 {
			return -1, fmt.Errorf("string must consist of positive integers, found %d at position %d in string %d",
				l, i, len(t.strings))
		}
	}
	t.strings = append(t.strings, append([]int(nil), labels...))
	return len(t.strings) - 1, nil
}

// NbStrings returns the number of interned strings.
func (t *TheorySolver) NbStrings() int { return len(t.strings) }

// AcceptAtom returns a literal true iff the machine accepts the string
// from the start state into the accepting state.
func (t *TheorySolver) AcceptAtom(fsmID, start, accept, strID int) (solver.Lit, bool, error) {
	if err := t.checkFSM(fsmID); err != nil {
		return solver.LitUndef, false, err
	}
	m := t.machines[fsmID]
	if start < 0 || start >= m.states || accept < 0 || accept >= m.states {
		return solver.LitUndef, false, fmt.Errorf("unknown state in fsm %d", fsmID)
	}
	if strID < 0 || strID >= len(t.strings) {
		return solver.LitUndef, false, fmt.Errorf("unknown string %d", strID)
	}
	key := acceptKey{fsmID: fsmID, start: start, accept: accept, strID: strID}
	if l, ok := t.dedup[key]; ok {
		return l, true, nil
	}
	a := &acceptAtom{
		lit:    t.sat.NewTheoryVar(t.id).Lit(),
		fsmID:  fsmID,
		start:  start,
		accept: accept,
		strID:  strID,
	}
	t.atoms = append(t.atoms, a)
	t.dedup[key] = a.lit
	t.pending = true
	return a.lit, false, nil
}

// Enqueue implements solver.Theory.
func (t *TheorySolver) Enqueue(_ solver.Lit) { t.pending = true }

// NewDecisionLevel implements solver.Theory.
func (t *TheorySolver) NewDecisionLevel() {}

// BacktrackTo implements solver.Theory. Acceptance is recomputed from
// the live assignment, so there is no state to roll back.
func (t *TheorySolver) BacktrackTo(int) { t.pending = true }

// Explain implements solver.Theory.
func (t *TheorySolver) Explain(l solver.Lit) []solver.Lit {
	if r, ok := t.reasons[l.Var()]; ok {
		return r
	}
	return []solver.Lit{l}
}

// Propagate implements solver.Theory.
func (t *TheorySolver) Propagate(confl *[]solver.Lit) bool {
	if !t.pending {
		return true
	}
	t.pending = false
	for _, a := range t.atoms {
		forced, reason := t.evalAccept(a)
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

// evalAccept runs the product of machine and string over the enabled
// transitions (under) and the enabled-plus-undecided ones (over).
func (t *TheorySolver) evalAccept(a *acceptAtom) (solver.Lit, []solver.Lit) {
	m := t.machines[a.fsmID]
	str := t.strings[a.strID]
	if used, ok := t.accepts(m, str, a.start, a.accept, false); ok {
		lits := []solver.Lit{a.lit}
		for _, tr := range used {
			lits = append(lits, m.transitions[tr].lit.Negation())
		}
		return a.lit, lits
	}
	if _, ok := t.accepts(m, str, a.start, a.accept, true); !ok {
		lits := []solver.Lit{a.lit.Negation()}
		for _, tr := range m.transitions {
			if t.sat.Value(tr.lit) == solver.Unsat {
				lits = append(lits, tr.lit)
			}
		}
		return a.lit.Negation(), lits
	}
	return solver.LitUndef, nil
}

// accepts searches the (state, position) product graph. It returns the
// transitions of an accepting run when one exists.
func (t *TheorySolver) accepts(m *machine, str []int, start, accept int, overApprox bool) ([]int, bool) {
	type node struct {
		state, pos int
	}
	seen := make(map[node]bool)
	parent := make(map[node]node)
	parentTr := make(map[node]int)
	startN := node{state: start, pos: 0}
	seen[startN] = true
	queue := []node{startN}
	goal := node{state: accept, pos: len(str)}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == goal {
			var used []int
			for x := n; x != startN; x = parent[x] {
				used = append(used, parentTr[x])
			}
			return used, true
		}
		for _, trID := range m.adj[n.state] {
			tr := m.transitions[trID]
			val := t.sat.Value(tr.lit)
			if val == solver.Unsat || (!overApprox && val != solver.Sat) {
				continue
			}
			next := node{state: tr.to, pos: n.pos}
			if tr.input != 0 { // Non-epsilon transitions consume a label
				if n.pos >= len(str) || str[n.pos] != tr.input {
					continue
				}
				next.pos = n.pos + 1
			}
			if !seen[next] {
				seen[next] = true
				parent[next] = n
				parentTr[next] = trID
				queue = append(queue, next)
			}
		}
	}
	return nil, false
}
