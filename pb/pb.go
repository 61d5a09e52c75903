// Package pb implements the pseudo-Boolean solver: linear constraints
// over literals, buffered at construction time and converted to CNF
// through a generalized totalizer when the solver flushes them.
package pb

import (
	"golang.org/x/exp/slices"

	"github.com/crillab/monosat/solver"
)

// Ineq is the relation of a PB constraint.
type Ineq byte

const (
	LT Ineq = iota
	LEQ
	EQ
	GEQ
	GT
)

func (i Ineq) String() string {
	switch i {
	case LT:
		return "<"
	case LEQ:
		return "<="
	case EQ:
		return "=="
	case GEQ:
		return ">="
	default:
		return ">"
	}
}

// A Constr is a pseudo-Boolean constraint: sum of coefs times lits,
// compared to Rhs.
type Constr struct {
	Lits  []solver.Lit
	Coefs []int
	Rhs   int
	Ineq  Ineq
}

// A Solver buffers PB constraints until Convert compiles them to CNF.
type Solver struct {
	sat     *solver.Solver
	pending []Constr
}

// New returns a PB solver feeding the given SAT solver.
func New(sat *solver.Solver) *Solver {
	return &Solver{sat: sat}
}

// AddConstr buffers a constraint. Coefs may be nil, meaning all 1.
func (p *Solver) AddConstr(lits []solver.Lit, coefs []int, rhs int, ineq Ineq) {
	c := Constr{
		Lits: append([]solver.Lit(nil), lits...),
		Rhs:  rhs,
		Ineq: ineq,
	}
	if coefs == nil {
		c.Coefs = make([]int, len(lits))
		for i := range c.Coefs {
			c.Coefs[i] = 1
		}
	} else {
		c.Coefs = append([]int(nil), coefs...)
	}
	p.pending = append(p.pending, c)
}

// Pending returns the number of constraints not yet converted.
func (p *Solver) Pending() int { return len(p.pending) }

// Convert compiles every buffered constraint to CNF. It returns false
// iff a constraint made the problem trivially unsat.
func (p *Solver) Convert() bool {
	ok := true
	for _, c := range p.pending {
		if !p.convert(c) {
			ok = false
		}
	}
	p.pending = p.pending[:0]
	return ok
}

// term is a positive-weight summand after normalization.
type term struct {
	lit    solver.Lit
	weight int
}

// normalize rewrites the constraint with positive coefficients,
// flipping literals as needed, and returns the adjusted bound.
func normalize(lits []solver.Lit, coefs []int, rhs int) ([]term, int) {
	var terms []term
	for i, l := range lits {
		w := coefs[i]
		if w == 0 {
			continue
		}
		if w < 0 {
			// w*l == w + |w|*(1 - l) - |w| ; replace by |w|*(~l), shifting rhs.
			l = l.Negation()
			rhs -= w
			w = -w
		}
		terms = append(terms, term{lit: l, weight: w})
	}
	return terms, rhs
}

func (p *Solver) convert(c Constr) bool {
	switch c.Ineq {
	case LT:
		return p.convertLeq(c.Lits, c.Coefs, c.Rhs-1, solver.LitUndef)
	case LEQ:
		return p.convertLeq(c.Lits, c.Coefs, c.Rhs, solver.LitUndef)
	case GT:
		return p.convertGeq(c.Lits, c.Coefs, c.Rhs+1, solver.LitUndef)
	case GEQ:
		return p.convertGeq(c.Lits, c.Coefs, c.Rhs, solver.LitUndef)
	default: // EQ
		ok := p.convertLeq(c.Lits, c.Coefs, c.Rhs, solver.LitUndef)
		return p.convertGeq(c.Lits, c.Coefs, c.Rhs, solver.LitUndef) && ok
	}
}

// AssertLeqGuarded encodes sum(coefs*lits) <= rhs, active only when the
// guard literal is true. Used for retractable objective bounds.
func (p *Solver) AssertLeqGuarded(lits []solver.Lit, coefs []int, rhs int, guard solver.Lit) bool {
	return p.convertLeq(lits, coefs, rhs, guard)
}

// AssertGeqGuarded is AssertLeqGuarded for lower bounds.
func (p *Solver) AssertGeqGuarded(lits []solver.Lit, coefs []int, rhs int, guard solver.Lit) bool {
	return p.convertGeq(lits, coefs, rhs, guard)
}

// convertGeq rewrites sum >= rhs over the negated literals:
// sum(w*l) >= rhs  <=>  sum(w*~l) <= W - rhs, W being the sum of the
// coefficients.
func (p *Solver) convertGeq(lits []solver.Lit, coefs []int, rhs int, guard solver.Lit) bool {
	neg := make([]solver.Lit, len(lits))
	for i, l := range lits {
		neg[i] = l.Negation()
	}
	total := 0
	for _, w := range coefs {
		total += w
	}
	return p.convertLeq(neg, coefs, total-rhs, guard)
}

func (p *Solver) convertLeq(lits []solver.Lit, coefs []int, rhs int, guard solver.Lit) bool {
	terms, rhs := normalize(lits, coefs, rhs)
	total := 0
	for _, t := range terms {
		total += t.weight
	}
	if rhs >= total { // Trivially satisfied
		return true
	}
	if rhs < 0 {
		if guard != solver.LitUndef {
			return p.sat.AddClause(guard.Negation())
		}
		return p.sat.AddClauseLits(nil)
	}
	out := p.totalizer(terms, rhs)
	// The output node carries, per reachable sum value, a literal true
	// whenever the inputs reach that value. Forbid every value > rhs.
	for _, val := range sortedKeys(out) {
		if val > rhs {
			lit := out[val]
			if guard != solver.LitUndef {
				if !p.sat.AddClause(guard.Negation(), lit.Negation()) {
					return false
				}
			} else if !p.sat.AddClause(lit.Negation()) {
				return false
			}
		}
	}
	return true
}

// totalizer builds a generalized totalizer over the terms. Sums are
// clamped to rhs+1, which preserves the constraint while bounding the
// encoding.
func (p *Solver) totalizer(terms []term, rhs int) map[int]solver.Lit {
	cap := rhs + 1
	nodes := make([]map[int]solver.Lit, len(terms))
	for i, t := range terms {
		w := t.weight
		if w > cap {
			w = cap
		}
		nodes[i] = map[int]solver.Lit{w: t.lit}
	}
	for len(nodes) > 1 {
		var next []map[int]solver.Lit
		for i := 0; i+1 < len(nodes); i += 2 {
			next = append(next, p.mergeNodes(nodes[i], nodes[i+1], cap))
		}
		if len(nodes)%2 == 1 {
			next = append(next, nodes[len(nodes)-1])
		}
		nodes = next
	}
	return nodes[0]
}

// mergeNodes combines two totalizer nodes: an output literal exists for
// every reachable pairwise sum, implied by the input literals reaching
// it.
func (p *Solver) mergeNodes(a, b map[int]solver.Lit, cap int) map[int]solver.Lit {
	out := make(map[int]solver.Lit)
	newOut := func(val int) solver.Lit {
		if val > cap {
			val = cap
		}
		if l, ok := out[val]; ok {
			return l
		}
		v := p.sat.NewVar()
		p.sat.Freeze(v)
		out[val] = v.Lit()
		return v.Lit()
	}
	for _, va := range sortedKeys(a) {
		o := newOut(va)
		p.sat.AddClause(a[va].Negation(), o)
	}
	for _, vb := range sortedKeys(b) {
		o := newOut(vb)
		p.sat.AddClause(b[vb].Negation(), o)
	}
	for _, va := range sortedKeys(a) {
		for _, vb := range sortedKeys(b) {
			o := newOut(va + vb)
			p.sat.AddClause(a[va].Negation(), b[vb].Negation(), o)
		}
	}
	return out
}

// sortedKeys keeps clause emission deterministic across runs.
func sortedKeys(m map[int]solver.Lit) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
