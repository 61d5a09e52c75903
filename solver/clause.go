package solver

import (
	"fmt"
	"strings"
)

// A Clause is a list of Lit, associated with bookkeeping data for
// learned clauses.
type Clause struct {
	lits []Lit
	// lbdValue's bits are as follows:
	// leftmost bit: learned flag.
	// second bit: locked flag (the clause is the reason of an assignment).
	// last 30 bits: LBD value.
	lbdValue uint32
	activity float32
}

const (
	learnedMask uint32 = 1 << 31
	lockedMask  uint32 = 1 << 30
	bothMasks   uint32 = learnedMask | lockedMask
)

// NewClause returns a clause whose lits are given as an argument.
func NewClause(lits []Lit) *Clause {
	return &Clause{lits: lits}
}

// NewLearnedClause returns a new clause marked as learned.
func NewLearnedClause(lits []Lit) *Clause {
	return &Clause{lits: lits, lbdValue: learnedMask}
}

// Learned returns true iff c was a learned clause.
func (c *Clause) Learned() bool {
	return c.lbdValue&learnedMask == learnedMask
}

func (c *Clause) lock() {
	c.lbdValue |= lockedMask
}

func (c *Clause) unlock() {
	c.lbdValue &= ^lockedMask
}

func (c *Clause) isLocked() bool {
	return c.lbdValue&bothMasks == bothMasks
}

func (c *Clause) lbd() int {
	return int(c.lbdValue & ^bothMasks)
}

func (c *Clause) setLbd(lbd int) {
	c.lbdValue = (c.lbdValue & bothMasks) | uint32(lbd)
}

func (c *Clause) incLbd() {
	c.lbdValue++
}

// computeLbd computes and sets c's LBD (Literal Block Distance) given
// the current bindings.
func (c *Clause) computeLbd(model []decLevel) {
	c.setLbd(1)
	curLvl := abs(model[c.Get(0).Var()])
	for i := 0; i < c.Len(); i++ {
		if lvl := abs(model[c.Get(i).Var()]); lvl != curLvl {
			curLvl = lvl
			c.incLbd()
		}
	}
}

// Len returns the nb of lits in the clause.
func (c *Clause) Len() int {
	return len(c.lits)
}

// First returns the first lit from the clause.
func (c *Clause) First() Lit {
	return c.lits[0]
}

// Second returns the second lit from the clause.
func (c *Clause) Second() Lit {
	return c.lits[1]
}

// Get returns the ith literal from the clause.
func (c *Clause) Get(i int) Lit {
	return c.lits[i]
}

// Set sets the ith literal of the clause.
func (c *Clause) Set(i int, l Lit) {
	c.lits[i] = l
}

func (c *Clause) swap(i, j int) {
	c.lits[i], c.lits[j] = c.lits[j], c.lits[i]
}

// Shrink reduces the length of the clause, removing all lits starting
// at position newLen.
func (c *Clause) Shrink(newLen int) {
	c.lits = c.lits[:newLen]
}

// CNF returns a DIMACS CNF representation of the clause.
func (c *Clause) CNF() string {
	var b strings.Builder
	for _, lit := range c.lits {
		fmt.Fprintf(&b, "%d ", lit.Int())
	}
	b.WriteString("0")
	return b.String()
}
