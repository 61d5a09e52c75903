package bv

import (
	"fmt"
	"math/bits"

	"github.com/crillab/monosat/solver"
)

type opKind byte

const (
	opAdd opKind = iota
	opSub
	opMul
	opDiv
	opMin
	opMax
	opIte
	opNot
	opAnd
	opOr
	opNand
	opNor
	opXor
	opXnor
	opConcat
	opSlice
	opPopcount
	opUnary
)

// An operation defines the value of a result vector from its arguments.
type operation struct {
	kind    opKind
	args    []int        // Argument vector ids (empty for popcount/unary)
	argLits []solver.Lit // Bit arguments of popcount/unary
	cond    solver.Lit   // Condition of ite, LitUndef otherwise
	lower   int          // Slice bounds
	upper   int
}

func (t *TheorySolver) check(ids ...int) error {
	for _, id := range ids {
		if !t.Has(id) {
			return fmt.Errorf("unknown bitvector %d", id)
		}
	}
	return nil
}

// bind attaches an operation as the definition of result.
func (t *TheorySolver) bind(result int, op *operation) error {
	r := t.vecs[result]
	if r.op != nil || r.isConst || len(r.bits) > 0 {
		return fmt.Errorf("bitvector %d is already defined", result)
	}
	r.op = op
	for _, arg := range op.args {
		t.vecs[arg].uses = append(t.vecs[arg].uses, result)
	}
	if op.cond != solver.LitUndef {
		t.sat.WatchTheoryVar(op.cond.Var(), t.id)
	}
	for _, l := range op.argLits {
		t.bitVecs[l.Var()] = append(t.bitVecs[l.Var()], result)
		t.sat.WatchTheoryVar(l.Var(), t.id)
	}
	t.pending = true
	return nil
}

func (t *TheorySolver) binOp(kind opKind, result, a, b int) error {
	if err := t.check(result, a, b); err != nil {
		return err
	}
	return t.bind(result, &operation{kind: kind, args: []int{a, b}, cond: solver.LitUndef})
}

// Addition defines result = a + b (mod 2^w).
func (t *TheorySolver) Addition(result, a, b int) error { return t.binOp(opAdd, result, a, b) }

// Subtraction defines result = a - b (mod 2^w).
func (t *TheorySolver) Subtraction(result, a, b int) error { return t.binOp(opSub, result, a, b) }

// Multiplication defines result = a * b (mod 2^w).
func (t *TheorySolver) Multiplication(result, a, b int) error { return t.binOp(opMul, result, a, b) }

// Division defines result = a / b (unsigned; unconstrained when b = 0).
func (t *TheorySolver) Division(result, a, b int) error { return t.binOp(opDiv, result, a, b) }

// Min defines result as the minimum of the argument vectors.
func (t *TheorySolver) Min(result int, args []int) error {
	if err := t.check(append([]int{result}, args...)...); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("min needs at least one argument")
	}
	return t.bind(result, &operation{kind: opMin, args: append([]int(nil), args...), cond: solver.LitUndef})
}

// Max defines result as the maximum of the argument vectors.
func (t *TheorySolver) Max(result int, args []int) error {
	if err := t.check(append([]int{result}, args...)...); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("max needs at least one argument")
	}
	return t.bind(result, &operation{kind: opMax, args: append([]int(nil), args...), cond: solver.LitUndef})
}

// Ite defines result = cond ? then : els.
func (t *TheorySolver) Ite(cond solver.Lit, then, els, result int) error {
	if err := t.check(result, then, els); err != nil {
		return err
	}
	return t.bind(result, &operation{kind: opIte, args: []int{then, els}, cond: cond})
}

// Not defines result as the bitwise complement of a.
func (t *TheorySolver) Not(a, result int) error {
	if err := t.check(result, a); err != nil {
		return err
	}
	return t.bind(result, &operation{kind: opNot, args: []int{a}, cond: solver.LitUndef})
}

// And defines result = a & b.
func (t *TheorySolver) And(a, b, result int) error { return t.binOp(opAnd, result, a, b) }

// Or defines result = a | b.
func (t *TheorySolver) Or(a, b, result int) error { return t.binOp(opOr, result, a, b) }

// Nand defines result = ^(a & b).
func (t *TheorySolver) Nand(a, b, result int) error { return t.binOp(opNand, result, a, b) }

// Nor defines result = ^(a | b).
func (t *TheorySolver) Nor(a, b, result int) error { return t.binOp(opNor, result, a, b) }

// Xor defines result = a ^ b.
func (t *TheorySolver) Xor(a, b, result int) error { return t.binOp(opXor, result, a, b) }

// Xnor defines result = ^(a ^ b).
func (t *TheorySolver) Xnor(a, b, result int) error { return t.binOp(opXnor, result, a, b) }

// Concat defines result = a with b appended as the high bits.
func (t *TheorySolver) Concat(a, b, result int) error {
	if err := t.check(result, a, b); err != nil {
		return err
	}
	if t.vecs[result].width != t.vecs[a].width+t.vecs[b].width {
		return fmt.Errorf("concat width mismatch: %d + %d into %d",
			t.vecs[a].width, t.vecs[b].width, t.vecs[result].width)
	}
	return t.bind(result, &operation{kind: opConcat, args: []int{a, b}, cond: solver.LitUndef})
}

// Slice defines result = a[lower..upper] (inclusive bounds, LSB first).
func (t *TheorySolver) Slice(a, lower, upper, result int) error {
	if err := t.check(result, a); err != nil {
		return err
	}
	if lower < 0 || upper >= t.vecs[a].width || lower > upper {
		return fmt.Errorf("slice bounds [%d, %d] out of range for width %d", lower, upper, t.vecs[a].width)
	}
	if t.vecs[result].width != upper-lower+1 {
		return fmt.Errorf("slice width mismatch")
	}
	return t.bind(result, &operation{kind: opSlice, args: []int{a}, cond: solver.LitUndef, lower: lower, upper: upper})
}

// Popcount defines result as the number of true literals among args.
func (t *TheorySolver) Popcount(result int, args []solver.Lit) error {
	if err := t.check(result); err != nil {
		return err
	}
	for _, l := range args {
		if !l.IsPositive() {
			return fmt.Errorf("popcount arguments must all be positive literals")
		}
	}
	return t.bind(result, &operation{kind: opPopcount, argLits: append([]solver.Lit(nil), args...), cond: solver.LitUndef})
}

// Unary defines result as the value of a unary counter over sequential
// variables: args must be positive literals of consecutive variables,
// and each one implies its predecessor.
func (t *TheorySolver) Unary(result int, args []solver.Lit) error {
	if err := t.check(result); err != nil {
		return err
	}
	for _, l := range args {
		if !l.IsPositive() {
			return fmt.Errorf("unary arguments must all be positive literals")
		}
	}
	// Sequentiality of the external variables is the caller's check;
	// here only the unary ordering is enforced.
	for i := 1; i < len(args); i++ {
		t.sat.AddClause(args[i].Negation(), args[i-1])
	}
	return t.bind(result, &operation{kind: opUnary, argLits: append([]solver.Lit(nil), args...), cond: solver.LitUndef})
}

// updateOp tightens the bounds of v from its defining operation, and
// where cheap, the bounds of the arguments from v's.
func (t *TheorySolver) updateOp(v *vec, changed *bool) bool {
	op := v.op
	mask := v.mask()
	switch op.kind {
	case opAdd:
		a, b := t.vecs[op.args[0]], t.vecs[op.args[1]]
		if a.over+b.over <= mask { // No wrap possible
			if !t.tighten(v, a.under+b.under, a.over+b.over, changed) {
				return false
			}
			// Backward: a = v - b, b = v - a.
			if v.under >= b.over {
				if !t.tighten(a, v.under-b.over, a.mask(), changed) {
					return false
				}
			}
			if v.over >= b.under && !t.tighten(a, 0, v.over-b.under, changed) {
				return false
			}
			if v.under >= a.over {
				if !t.tighten(b, v.under-a.over, b.mask(), changed) {
					return false
				}
			}
			if v.over >= a.under && !t.tighten(b, 0, v.over-a.under, changed) {
				return false
			}
		}
	case opSub:
		a, b := t.vecs[op.args[0]], t.vecs[op.args[1]]
		if a.under >= b.over { // No wrap possible
			if !t.tighten(v, a.under-b.over, a.over-b.under, changed) {
				return false
			}
		}
	case opMul:
		a, b := t.vecs[op.args[0]], t.vecs[op.args[1]]
		if hi, lo := bits.Mul64(a.over, b.over); hi == 0 && lo <= mask {
			if !t.tighten(v, a.under*b.under, lo, changed) {
				return false
			}
		}
	case opDiv:
		a, b := t.vecs[op.args[0]], t.vecs[op.args[1]]
		if b.under >= 1 {
			if !t.tighten(v, a.under/b.over, a.over/b.under, changed) {
				return false
			}
		}
	case opMin:
		lo, hi := ^uint64(0), ^uint64(0)
		for _, id := range op.args {
			lo = minUint(lo, t.vecs[id].under)
			hi = minUint(hi, t.vecs[id].over)
		}
		if !t.tighten(v, lo, hi, changed) {
			return false
		}
		// Backward: every argument is at least the minimum.
		for _, id := range op.args {
			if !t.tighten(t.vecs[id], v.under, t.vecs[id].mask(), changed) {
				return false
			}
		}
	case opMax:
		var lo, hi uint64
		for _, id := range op.args {
			lo = maxUint(lo, t.vecs[id].under)
			hi = maxUint(hi, t.vecs[id].over)
		}
		if !t.tighten(v, lo, hi, changed) {
			return false
		}
		for _, id := range op.args {
			if !t.tighten(t.vecs[id], 0, v.over, changed) {
				return false
			}
		}
	case opIte:
		a, b := t.vecs[op.args[0]], t.vecs[op.args[1]]
		switch t.sat.Value(op.cond) {
		case solver.Sat:
			if !t.tighten(v, a.under, a.over, changed) || !t.tighten(a, v.under, v.over, changed) {
				return false
			}
		case solver.Unsat:
			if !t.tighten(v, b.under, b.over, changed) || !t.tighten(b, v.under, v.over, changed) {
				return false
			}
		default:
			if !t.tighten(v, minUint(a.under, b.under), maxUint(a.over, b.over), changed) {
				return false
			}
		}
	case opNot:
		a := t.vecs[op.args[0]]
		if !t.tighten(v, mask-a.over, mask-a.under, changed) {
			return false
		}
		if !t.tighten(a, mask-v.over, mask-v.under, changed) {
			return false
		}
	case opAnd:
		a, b := t.vecs[op.args[0]], t.vecs[op.args[1]]
		if !t.tighten(v, 0, minUint(a.over, b.over), changed) {
			return false
		}
	case opOr:
		a, b := t.vecs[op.args[0]], t.vecs[op.args[1]]
		if !t.tighten(v, maxUint(a.under, b.under), minUint(mask, a.over+b.over), changed) {
			return false
		}
	case opConcat:
		a, b := t.vecs[op.args[0]], t.vecs[op.args[1]]
		wa := uint(a.width)
		if !t.tighten(v, a.under+(b.under<<wa), a.over+(b.over<<wa), changed) {
			return false
		}
	case opPopcount, opUnary:
		var under, over uint64
		for _, l := range op.argLits {
			switch t.sat.Value(l) {
			case solver.Sat:
				under++
				over++
			case solver.Indet:
				over++
			}
		}
		if !t.tighten(v, under, minUint(over, mask), changed) {
			return false
		}
	}
	// Nand, nor, xor, xnor and slice stay on [0, mask] until blasted.
	return true
}
