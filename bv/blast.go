package bv

import "github.com/crillab/monosat/solver"

// Bit-blasting: compile the semantics of a vector and every operator in
// its cone of influence into CNF. Each gate output is a fresh auxiliary
// variable, Tseitin style.

// Bitblast forces the full CNF encoding of the given vector's cone of
// influence. It must be called with the solver at decision level 0.
func (t *TheorySolver) Bitblast(id int) error {
	if err := t.check(id); err != nil {
		return err
	}
	t.sat.CancelUntil(0)
	t.blastVec(id)
	t.pending = true
	return nil
}

func (t *TheorySolver) blastVec(id int) {
	v := t.vecs[id]
	if v.blasted {
		return
	}
	v.blasted = true
	t.ensureBits(v)
	if v.op == nil {
		return
	}
	for _, arg := range v.op.args {
		t.blastVec(arg)
	}
	t.encodeOp(v)
}

// ensureBits gives v explicit bit literals: constants get the constant
// true literal, others fresh frozen variables.
func (t *TheorySolver) ensureBits(v *vec) {
	if len(v.bits) > 0 {
		return
	}
	if v.isConst {
		tl := t.sat.TrueLit()
		v.bits = make([]solver.Lit, v.width)
		for i := 0; i < v.width; i++ {
			if v.val>>uint(i)&1 == 1 {
				v.bits[i] = tl
			} else {
				v.bits[i] = tl.Negation()
			}
		}
		return
	}
	v.bits = make([]solver.Lit, v.width)
	for i := 0; i < v.width; i++ {
		v.bits[i] = t.sat.NewVar().Lit()
		t.sat.Freeze(v.bits[i].Var())
	}
	t.watchBits(v)
}

func (t *TheorySolver) falseLit() solver.Lit {
	return t.sat.TrueLit().Negation()
}

func (t *TheorySolver) freshLit() solver.Lit {
	v := t.sat.NewVar()
	t.sat.Freeze(v)
	return v.Lit()
}

// eq forces x <-> y.
func (t *TheorySolver) eq(x, y solver.Lit) {
	t.sat.AddClause(x.Negation(), y)
	t.sat.AddClause(x, y.Negation())
}

// gate2 forces out to be the given boolean function of a and b.
func (t *TheorySolver) gate2(a, b, out solver.Lit, fn func(x, y bool) bool) {
	for p := 0; p < 4; p++ {
		va, vb := p&1 == 1, p&2 == 2
		lits := []solver.Lit{negIf(a, va), negIf(b, vb)}
		if fn(va, vb) {
			lits = append(lits, out)
		} else {
			lits = append(lits, out.Negation())
		}
		t.sat.AddClauseLits(lits)
	}
}

// xor3 forces s = a ^ b ^ c.
func (t *TheorySolver) xor3(a, b, c, s solver.Lit) {
	for p := 0; p < 8; p++ {
		va, vb, vc := p&1 == 1, p&2 == 2, p&4 == 4
		lits := []solver.Lit{negIf(a, va), negIf(b, vb), negIf(c, vc)}
		if va != vb != vc { // Odd parity
			lits = append(lits, s)
		} else {
			lits = append(lits, s.Negation())
		}
		t.sat.AddClauseLits(lits)
	}
}

// maj forces out = at-least-two-of(a, b, c).
func (t *TheorySolver) maj(a, b, c, out solver.Lit) {
	t.sat.AddClause(a.Negation(), b.Negation(), out)
	t.sat.AddClause(a.Negation(), c.Negation(), out)
	t.sat.AddClause(b.Negation(), c.Negation(), out)
	t.sat.AddClause(a, b, out.Negation())
	t.sat.AddClause(a, c, out.Negation())
	t.sat.AddClause(b, c, out.Negation())
}

// negIf returns the literal falsified when l has the given value: used
// to enumerate truth-table rows.
func negIf(l solver.Lit, val bool) solver.Lit {
	if val {
		return l.Negation()
	}
	return l
}

// adder encodes out = a + b + cin (mod 2^len(out)); the final carry is
// returned.
func (t *TheorySolver) adder(a, b, out []solver.Lit, cin solver.Lit) solver.Lit {
	carry := cin
	for i := range out {
		t.xor3(a[i], b[i], carry, out[i])
		next := t.freshLit()
		t.maj(a[i], b[i], carry, next)
		carry = next
	}
	return carry
}

// borrowOut returns a literal true iff x < y (unsigned).
func (t *TheorySolver) borrowOut(x, y []solver.Lit) solver.Lit {
	borrow := t.falseLit()
	for i := range x {
		next := t.freshLit()
		t.maj(x[i].Negation(), y[i], borrow, next)
		borrow = next
	}
	return borrow
}

// mulCircuit encodes out = x * y. With exact set, any contribution
// beyond the width of out is forbidden instead of dropped.
func (t *TheorySolver) mulCircuit(x, y, out []solver.Lit, exact bool) {
	w := len(out)
	acc := make([]solver.Lit, w)
	for i := range acc {
		acc[i] = t.falseLit()
	}
	for j := 0; j < w; j++ {
		row := make([]solver.Lit, w)
		for i := range row {
			if i < j {
				row[i] = t.falseLit()
			} else {
				p := t.freshLit()
				t.gate2(x[i-j], y[j], p, func(a, b bool) bool { return a && b })
				row[i] = p
			}
		}
		if exact {
			for i := 0; i < len(x); i++ {
				if i+j >= w { // x_i * y_j would overflow the width
					t.sat.AddClause(x[i].Negation(), y[j].Negation())
				}
			}
		}
		next := make([]solver.Lit, w)
		if j == w-1 {
			copy(next, out)
		} else {
			for i := range next {
				next[i] = t.freshLit()
			}
		}
		carry := t.adder(acc, row, next, t.falseLit())
		if exact {
			t.sat.AddClause(carry.Negation())
		}
		acc = next
	}
}

// incrementer encodes out = acc + (cond ? 1 : 0).
func (t *TheorySolver) incrementer(acc []solver.Lit, cond solver.Lit, out []solver.Lit) {
	carry := cond
	for i := range out {
		t.gate2(acc[i], carry, out[i], func(a, b bool) bool { return a != b })
		next := t.freshLit()
		t.gate2(acc[i], carry, next, func(a, b bool) bool { return a && b })
		carry = next
	}
}

// encodeOp emits the CNF for v's defining operation. All arguments have
// bits at this point.
func (t *TheorySolver) encodeOp(v *vec) {
	op := v.op
	bitsOf := func(i int) []solver.Lit { return t.vecs[op.args[i]].bits }
	switch op.kind {
	case opNot:
		a := bitsOf(0)
		for i := range v.bits {
			t.eq(v.bits[i], a[i].Negation())
		}
	case opAnd, opOr, opNand, opNor, opXor, opXnor:
		a, b := bitsOf(0), bitsOf(1)
		fn := gateFn(op.kind)
		for i := range v.bits {
			t.gate2(a[i], b[i], v.bits[i], fn)
		}
	case opIte:
		a, b := bitsOf(0), bitsOf(1)
		c := op.cond
		for i := range v.bits {
			t.sat.AddClause(c.Negation(), a[i].Negation(), v.bits[i])
			t.sat.AddClause(c.Negation(), a[i], v.bits[i].Negation())
			t.sat.AddClause(c, b[i].Negation(), v.bits[i])
			t.sat.AddClause(c, b[i], v.bits[i].Negation())
		}
	case opConcat:
		a, b := bitsOf(0), bitsOf(1)
		for i := range a {
			t.eq(v.bits[i], a[i])
		}
		for i := range b {
			t.eq(v.bits[len(a)+i], b[i])
		}
	case opSlice:
		a := bitsOf(0)
		for i := range v.bits {
			t.eq(v.bits[i], a[op.lower+i])
		}
	case opAdd:
		// Operands narrower than the result are zero-extended.
		pad := func(x []solver.Lit) []solver.Lit {
			ext := append([]solver.Lit(nil), x...)
			for len(ext) < len(v.bits) {
				ext = append(ext, t.falseLit())
			}
			return ext
		}
		t.adder(pad(bitsOf(0)), pad(bitsOf(1)), v.bits, t.falseLit())
	case opSub:
		// v = a - b encoded as v + b = a.
		t.adder(v.bits, bitsOf(1), bitsOf(0), t.falseLit())
	case opMul:
		t.mulCircuit(bitsOf(0), bitsOf(1), v.bits, false)
	case opDiv:
		a, b := bitsOf(0), bitsOf(1)
		w := len(v.bits)
		prod := make([]solver.Lit, w)
		rem := make([]solver.Lit, w)
		for i := 0; i < w; i++ {
			prod[i] = t.freshLit()
			rem[i] = t.freshLit()
		}
		t.mulCircuit(v.bits, b, prod, true)
		carry := t.adder(prod, rem, a, t.falseLit())
		t.sat.AddClause(carry.Negation())
		nz := t.freshLit()
		lits := []solver.Lit{nz.Negation()}
		for _, bl := range b {
			t.sat.AddClause(nz, bl.Negation())
			lits = append(lits, bl)
		}
		t.sat.AddClauseLits(lits)
		t.sat.AddClause(nz.Negation(), t.borrowOut(rem, b))
	case opMin, opMax:
		cur := bitsOf(0)
		for k := 1; k < len(op.args); k++ {
			next := t.vecs[op.args[k]].bits
			// sel is true when cur is kept.
			var sel solver.Lit
			if op.kind == opMin {
				sel = t.borrowOut(next, cur).Negation() // cur <= next
			} else {
				sel = t.borrowOut(cur, next).Negation() // cur >= next
			}
			out := v.bits
			if k != len(op.args)-1 {
				out = make([]solver.Lit, len(v.bits))
				for i := range out {
					out[i] = t.freshLit()
				}
			}
			for i := range out {
				t.sat.AddClause(sel.Negation(), cur[i].Negation(), out[i])
				t.sat.AddClause(sel.Negation(), cur[i], out[i].Negation())
				t.sat.AddClause(sel, next[i].Negation(), out[i])
				t.sat.AddClause(sel, next[i], out[i].Negation())
			}
			cur = out
		}
	case opPopcount, opUnary:
		acc := make([]solver.Lit, len(v.bits))
		for i := range acc {
			acc[i] = t.falseLit()
		}
		for k, l := range op.argLits {
			out := v.bits
			if k != len(op.argLits)-1 {
				out = make([]solver.Lit, len(v.bits))
				for i := range out {
					out[i] = t.freshLit()
				}
			}
			t.incrementer(acc, l, out)
			acc = out
		}
		if len(op.argLits) == 0 {
			for i := range v.bits {
				t.sat.AddClause(v.bits[i].Negation())
			}
		}
	}
}

func gateFn(kind opKind) func(a, b bool) bool {
	switch kind {
	case opAnd:
		return func(a, b bool) bool { return a && b }
	case opOr:
		return func(a, b bool) bool { return a || b }
	case opNand:
		return func(a, b bool) bool { return !(a && b) }
	case opNor:
		return func(a, b bool) bool { return !(a || b) }
	case opXor:
		return func(a, b bool) bool { return a != b }
	default:
		return func(a, b bool) bool { return a == b }
	}
}
