package api

import (
	"github.com/crillab/monosat/bv"
	"github.com/crillab/monosat/solver"
)

// Bitvector surface. A single bitvector theory serves the whole solver;
// InitBVTheory creates it on first use and late-binds it to any graph
// created earlier.

// InitBVTheory creates the bitvector theory if needed.
func (s *Solver) InitBVTheory() error {
	if err := s.checkAlive(); err != nil {
		return err
	}
	if s.bvt != nil {
		return nil
	}
	s.bvt = bv.New(s.sat)
	for _, g := range s.graphs {
		g.t.SetBVTheory(s.bvt)
	}
	return nil
}

func (s *Solver) needBV() error {
	if s.bvt == nil {
		return statef("no bitvector theory created (call InitBVTheory)")
	}
	return nil
}

func (s *Solver) internalBV(bvID int) (int, error) {
	if err := s.needBV(); err != nil {
		return -1, err
	}
	if !s.bvt.Has(bvID) {
		return -1, domainf("bitvector %d is not allocated", bvID)
	}
	return bvID, nil
}

// NBitvectors returns the number of bitvectors created so far.
func (s *Solver) NBitvectors() int {
	if s.bvt == nil {
		return 0
	}
	return s.bvt.NbBitvectors()
}

// NewBitvectorAnon creates a free symbolic bitvector of the given
// width.
func (s *Solver) NewBitvectorAnon(width int) (int, error) {
	if err := s.checkAlive(); err != nil {
		return -1, err
	}
	if err := s.needBV(); err != nil {
		return -1, err
	}
	id, err := s.bvt.NewAnon(width)
	if err != nil {
		return -1, domainWrap(err)
	}
	if err := s.writef("bv anon %d %d\n", id, width); err != nil {
		return -1, err
	}
	return id, nil
}

// NewBitvectorConst creates a constant bitvector.
func (s *Solver) NewBitvectorConst(width int, val int64) (int, error) {
	if err := s.checkAlive(); err != nil {
		return -1, err
	}
	if err := s.needBV(); err != nil {
		return -1, err
	}
	id, err := s.bvt.NewConst(width, val)
	if err != nil {
		return -1, domainWrap(err)
	}
	if err := s.writef("bv const %d %d %d\n", id, width, val); err != nil {
		return -1, err
	}
	return id, nil
}

// NewBitvector creates a bitvector from explicit bit variables, LSB
// first.
func (s *Solver) NewBitvector(bits []solver.Var) (int, error) {
	if err := s.checkAlive(); err != nil {
		return -1, err
	}
	if err := s.needBV(); err != nil {
		return -1, err
	}
	lits := make([]solver.Lit, len(bits))
	for i, v := range bits {
		iv := s.vm.Internal(v)
		if iv == solver.VarUndef {
			return -1, statef("variable %d is not allocated", v)
		}
		lits[i] = iv.Lit()
		s.sat.Freeze(iv)
	}
	id, err := s.bvt.NewFromBits(lits)
	if err != nil {
		return -1, domainWrap(err)
	}
	if err := s.writef("bv %d %d", id, len(bits)); err != nil {
		return -1, err
	}
	for _, v := range bits {
		if err := s.writef(" %d", int32(v)+1); err != nil {
			return -1, err
		}
	}
	if err := s.writef("\n"); err != nil {
		return -1, err
	}
	return id, nil
}

// SetBitvectorName names a bitvector.
func (s *Solver) SetBitvectorName(bvID int, name string) error {
	id, err := s.internalBV(bvID)
	if err != nil {
		return err
	}
	if name == "" {
		return nil
	}
	if !validName(name) {
		return domainf("bitvector names must consist only of printable, non-whitespace ASCII: %q", name)
	}
	if s.bvt.ByName(name) >= 0 {
		return domainf("all bitvector names must be unique: %q", name)
	}
	s.bvt.SetSymbol(id, name)
	return s.writef("bv symbol %d %s\n", bvID, name)
}

// BitvectorName returns the name of a bitvector, or the empty string.
func (s *Solver) BitvectorName(bvID int) (string, error) {
	id, err := s.internalBV(bvID)
	if err != nil {
		return "", err
	}
	return s.bvt.Symbol(id), nil
}

// HasBitvectorWithName returns whether a bitvector carries the name.
func (s *Solver) HasBitvectorWithName(name string) bool {
	return s.bvt != nil && s.bvt.ByName(name) >= 0
}

// Bitvector returns the bitvector with the given name.
func (s *Solver) Bitvector(name string) (int, error) {
	if err := s.needBV(); err != nil {
		return -1, err
	}
	if id := s.bvt.ByName(name); id >= 0 {
		return id, nil
	}
	return -1, domainf("no bitvector named %q", name)
}

// NamedBitvectors returns the ids of all named bitvectors.
func (s *Solver) NamedBitvectors() []int {
	if s.bvt == nil {
		return nil
	}
	return s.bvt.Named()
}

// BVWidth returns the width of the bitvector.
func (s *Solver) BVWidth(bvID int) (int, error) {
	id, err := s.internalBV(bvID)
	if err != nil {
		return 0, err
	}
	return s.bvt.Width(id), nil
}

// BVNBits returns the number of defined bit literals; zero for
// anonymous vectors.
func (s *Solver) BVNBits(bvID int) (int, error) {
	id, err := s.internalBV(bvID)
	if err != nil {
		return 0, err
	}
	return len(s.bvt.Bits(id)), nil
}

// BVBit returns the nth defined bit literal of the bitvector.
func (s *Solver) BVBit(bvID, bit int) (solver.Lit, error) {
	id, err := s.internalBV(bvID)
	if err != nil {
		return solver.LitUndef, err
	}
	bits := s.bvt.Bits(id)
	if bit < 0 || bit >= len(bits) {
		return solver.LitUndef, domainf("bv bit %d out of range [0, %d)", bit, len(bits))
	}
	return s.externalLit(bits[bit]), nil
}

func cmpName(kind bv.Comparison) string { return kind.String() }

// NewBVComparisonConst returns a literal comparing a bitvector to a
// constant under {Lt, Leq, Gt, Geq}.
func (s *Solver) NewBVComparisonConst(kind bv.Comparison, bvID int, val int64) (solver.Lit, error) {
	id, err := s.internalBV(bvID)
	if err != nil {
		return solver.LitUndef, err
	}
	il, err := s.bvt.NewComparisonConst(kind, id, val)
	if err != nil {
		return solver.LitUndef, domainWrap(err)
	}
	l := s.externalLit(il)
	if err := s.writef("bv const %s %d %d %d\n", cmpName(kind), l.Int(), bvID, val); err != nil {
		return solver.LitUndef, err
	}
	return l, nil
}

// NewBVComparisonBV returns a literal comparing two bitvectors.
func (s *Solver) NewBVComparisonBV(kind bv.Comparison, bvID, compareID int) (solver.Lit, error) {
	id, err := s.internalBV(bvID)
	if err != nil {
		return solver.LitUndef, err
	}
	other, err := s.internalBV(compareID)
	if err != nil {
		return solver.LitUndef, err
	}
	il, err := s.bvt.NewComparisonBV(kind, id, other)
	if err != nil {
		return solver.LitUndef, domainWrap(err)
	}
	l := s.externalLit(il)
	if err := s.writef("bv %s %d %d %d\n", cmpName(kind), l.Int(), bvID, compareID); err != nil {
		return solver.LitUndef, err
	}
	return l, nil
}

// NewBVComparisonConstEq returns a literal true iff the bitvector
// equals the constant: geq and not gt, with a fresh defining variable.
func (s *Solver) NewBVComparisonConstEq(bvID int, val int64) (solver.Lit, error) {
	a, err := s.NewBVComparisonConst(bv.Geq, bvID, val)
	if err != nil {
		return solver.LitUndef, err
	}
	b, err := s.NewBVComparisonConst(bv.Gt, bvID, val)
	if err != nil {
		return solver.LitUndef, err
	}
	return s.defineEq(a, b, nil, nil)
}

// NewBVComparisonConstNeq is the negation of NewBVComparisonConstEq.
func (s *Solver) NewBVComparisonConstNeq(bvID int, val int64) (solver.Lit, error) {
	eq, err := s.NewBVComparisonConstEq(bvID, val)
	if err != nil {
		return solver.LitUndef, err
	}
	return eq.Negation(), nil
}

// NewBVComparisonBVEq returns a literal true iff both bitvectors are
// equal; bit-level equivalences are added when both define their bits.
func (s *Solver) NewBVComparisonBVEq(bvID, compareID int) (solver.Lit, error) {
	a, err := s.NewBVComparisonBV(bv.Geq, bvID, compareID)
	if err != nil {
		return solver.LitUndef, err
	}
	b, err := s.NewBVComparisonBV(bv.Gt, bvID, compareID)
	if err != nil {
		return solver.LitUndef, err
	}
	bits1 := s.bvt.Bits(bvID)
	bits2 := s.bvt.Bits(compareID)
	if len(bits1) != len(bits2) { // Watch out for anonymous bitvectors
		bits1, bits2 = nil, nil
	}
	return s.defineEq(a, b, bits1, bits2)
}

// NewBVComparisonBVNeq is the negation of NewBVComparisonBVEq.
func (s *Solver) NewBVComparisonBVNeq(bvID, compareID int) (solver.Lit, error) {
	eq, err := s.NewBVComparisonBVEq(bvID, compareID)
	if err != nil {
		return solver.LitUndef, err
	}
	return eq.Negation(), nil
}

// defineEq encodes c <-> (a && !b) over external literals a, b, plus
// redundant bit equivalences when both bit slices are known.
func (s *Solver) defineEq(a, b solver.Lit, bits1, bits2 []solver.Lit) (solver.Lit, error) {
	cv, err := s.NewVar()
	if err != nil {
		return solver.LitUndef, err
	}
	c := cv.Lit()
	ic := s.vm.Internal(cv)
	s.sat.Freeze(ic)
	if _, err := s.AddClause(a, c.Negation()); err != nil {
		return solver.LitUndef, err
	}
	if _, err := s.AddClause(b.Negation(), c.Negation()); err != nil {
		return solver.LitUndef, err
	}
	if _, err := s.AddClause(c, a.Negation(), b); err != nil {
		return solver.LitUndef, err
	}
	for i := range bits1 {
		l1 := s.externalLit(bits1[i])
		l2 := s.externalLit(bits2[i])
		if _, err := s.AddClause(l1, l2.Negation(), c.Negation()); err != nil {
			return solver.LitUndef, err
		}
		if _, err := s.AddClause(l1.Negation(), l2, c.Negation()); err != nil {
			return solver.LitUndef, err
		}
	}
	return c, nil
}

func (s *Solver) bvBinOp(op string, aID, bID, resultID int, apply func(a, b, r int) error) error {
	a, err := s.internalBV(aID)
	if err != nil {
		return err
	}
	b, err := s.internalBV(bID)
	if err != nil {
		return err
	}
	r, err := s.internalBV(resultID)
	if err != nil {
		return err
	}
	if err := apply(a, b, r); err != nil {
		return domainWrap(err)
	}
	return s.writef("bv %s %d %d %d\n", op, resultID, aID, bID)
}

// BVAddition defines resultID = a + b.
func (s *Solver) BVAddition(resultID, aID, bID int) error {
	return s.bvBinOp("+", aID, bID, resultID, func(a, b, r int) error { return s.bvt.Addition(r, a, b) })
}

// BVSubtraction defines resultID = a - b.
func (s *Solver) BVSubtraction(resultID, aID, bID int) error {
	return s.bvBinOp("-", aID, bID, resultID, func(a, b, r int) error { return s.bvt.Subtraction(r, a, b) })
}

// BVMultiply defines resultID = a * b.
func (s *Solver) BVMultiply(resultID, aID, bID int) error {
	return s.bvBinOp("*", aID, bID, resultID, func(a, b, r int) error { return s.bvt.Multiplication(r, a, b) })
}

// BVDivide defines resultID = a / b.
func (s *Solver) BVDivide(resultID, aID, bID int) error {
	return s.bvBinOp("/", aID, bID, resultID, func(a, b, r int) error { return s.bvt.Division(r, a, b) })
}

// BVMin defines resultID as the minimum of the arguments.
func (s *Solver) BVMin(resultID int, args []int) error {
	return s.bvNary("min", resultID, args, s.bvt.Min)
}

// BVMax defines resultID as the maximum of the arguments.
func (s *Solver) BVMax(resultID int, args []int) error {
	return s.bvNary("max", resultID, args, s.bvt.Max)
}

func (s *Solver) bvNary(op string, resultID int, args []int, apply func(r int, args []int) error) error {
	r, err := s.internalBV(resultID)
	if err != nil {
		return err
	}
	inner := make([]int, len(args))
	for i, a := range args {
		ia, err := s.internalBV(a)
		if err != nil {
			return err
		}
		inner[i] = ia
	}
	if err := apply(r, inner); err != nil {
		return domainWrap(err)
	}
	if err := s.writef("bv %s %d %d", op, resultID, len(args)); err != nil {
		return err
	}
	for _, a := range args {
		if err := s.writef(" %d", a); err != nil {
			return err
		}
	}
	return s.writef("\n")
}

// BVIte defines resultID = condition ? then : els.
func (s *Solver) BVIte(condition solver.Lit, thenID, elsID, resultID int) error {
	il, err := s.internalLit(condition)
	if err != nil {
		return err
	}
	then, err := s.internalBV(thenID)
	if err != nil {
		return err
	}
	els, err := s.internalBV(elsID)
	if err != nil {
		return err
	}
	r, err := s.internalBV(resultID)
	if err != nil {
		return err
	}
	if err := s.bvt.Ite(il, then, els, r); err != nil {
		return domainWrap(err)
	}
	return s.writef("bv_ite %d %d %d %d\n", condition.Int(), thenID, elsID, resultID)
}

// BVNot defines out as the bitwise complement of a.
func (s *Solver) BVNot(aID, outID int) error {
	a, err := s.internalBV(aID)
	if err != nil {
		return err
	}
	out, err := s.internalBV(outID)
	if err != nil {
		return err
	}
	if err := s.bvt.Not(a, out); err != nil {
		return domainWrap(err)
	}
	return s.writef("bv not %d %d\n", aID, outID)
}

// BVAnd defines out = a & b.
func (s *Solver) BVAnd(aID, bID, outID int) error {
	return s.bvBitwise("and", aID, bID, outID, s.bvt.And)
}

// BVNand defines out = ^(a & b).
func (s *Solver) BVNand(aID, bID, outID int) error {
	return s.bvBitwise("nand", aID, bID, outID, s.bvt.Nand)
}

// BVOr defines out = a | b.
func (s *Solver) BVOr(aID, bID, outID int) error {
	return s.bvBitwise("or", aID, bID, outID, s.bvt.Or)
}

// BVNor defines out = ^(a | b).
func (s *Solver) BVNor(aID, bID, outID int) error {
	return s.bvBitwise("nor", aID, bID, outID, s.bvt.Nor)
}

// BVXor defines out = a ^ b.
func (s *Solver) BVXor(aID, bID, outID int) error {
	return s.bvBitwise("xor", aID, bID, outID, s.bvt.Xor)
}

// BVXnor defines out = ^(a ^ b).
func (s *Solver) BVXnor(aID, bID, outID int) error {
	return s.bvBitwise("xnor", aID, bID, outID, s.bvt.Xnor)
}

func (s *Solver) bvBitwise(op string, aID, bID, outID int, apply func(a, b, out int) error) error {
	a, err := s.internalBV(aID)
	if err != nil {
		return err
	}
	b, err := s.internalBV(bID)
	if err != nil {
		return err
	}
	out, err := s.internalBV(outID)
	if err != nil {
		return err
	}
	if err := apply(a, b, out); err != nil {
		return domainWrap(err)
	}
	return s.writef("bv %s %d %d %d \n", op, aID, bID, outID)
}

// BVConcat defines resultID as a with b appended as high bits.
func (s *Solver) BVConcat(aID, bID, resultID int) error {
	a, err := s.internalBV(aID)
	if err != nil {
		return err
	}
	b, err := s.internalBV(bID)
	if err != nil {
		return err
	}
	r, err := s.internalBV(resultID)
	if err != nil {
		return err
	}
	if err := s.bvt.Concat(a, b, r); err != nil {
		return domainWrap(err)
	}
	return s.writef("bv concat %d %d %d \n", aID, bID, resultID)
}

// BVSlice defines resultID = a[lower..upper].
func (s *Solver) BVSlice(aID, lower, upper, resultID int) error {
	a, err := s.internalBV(aID)
	if err != nil {
		return err
	}
	r, err := s.internalBV(resultID)
	if err != nil {
		return err
	}
	if err := s.bvt.Slice(a, lower, upper, r); err != nil {
		return domainWrap(err)
	}
	return s.writef("bv slice %d %d %d %d\n", aID, lower, upper, resultID)
}

// BVPopcount defines resultID as the count of true literals among the
// arguments, which must all be positive.
func (s *Solver) BVPopcount(resultID int, args []solver.Lit) error {
	r, err := s.internalBV(resultID)
	if err != nil {
		return err
	}
	inner := make([]solver.Lit, len(args))
	for i, l := range args {
		if !l.IsPositive() {
			return domainf("popcount arguments must all be positive literals")
		}
		il, err := s.internalLit(l)
		if err != nil {
			return err
		}
		inner[i] = il
	}
	if err := s.bvt.Popcount(r, inner); err != nil {
		return domainWrap(err)
	}
	if err := s.writef("bv popcount %d %d", resultID, len(args)); err != nil {
		return err
	}
	for _, l := range args {
		if err := s.writef(" %d", l.Int()); err != nil {
			return err
		}
	}
	return s.writef("\n")
}

// BVUnary defines resultID as a unary counter over sequential positive
// literals.
func (s *Solver) BVUnary(resultID int, args []solver.Lit) error {
	r, err := s.internalBV(resultID)
	if err != nil {
		return err
	}
	inner := make([]solver.Lit, len(args))
	for i, l := range args {
		if !l.IsPositive() {
			return domainf("unary arguments must all be positive literals")
		}
		il, err := s.internalLit(l)
		if err != nil {
			return err
		}
		inner[i] = il
	}
	for i := 1; i < len(args); i++ {
		if args[i].Var() != args[i-1].Var()+1 {
			return domainf("unary arguments must be sequential")
		}
	}
	if err := s.bvt.Unary(r, inner); err != nil {
		return domainWrap(err)
	}
	if err := s.writef("bv unary %d %d", resultID, len(args)); err != nil {
		return err
	}
	for _, l := range args {
		if err := s.writef(" %d", l.Int()); err != nil {
			return err
		}
	}
	return s.writef("\n")
}

// BVBitblast compiles the bitvector and its cone of influence to CNF.
func (s *Solver) BVBitblast(bvID int) error {
	id, err := s.internalBV(bvID)
	if err != nil {
		return err
	}
	s.sat.CancelUntil(0)
	if err := s.bvt.Bitblast(id); err != nil {
		return domainWrap(err)
	}
	return s.writef("bv bitblast %d\n", bvID)
}

// ModelBV reads the bitvector's value in the last model: its smallest
// consistent value, or the largest when maximum is set.
func (s *Solver) ModelBV(bvID int, maximum bool) (int64, error) {
	id, err := s.internalBV(bvID)
	if err != nil {
		return 0, err
	}
	if maximum {
		return s.bvt.OverApprox(id), nil
	}
	return s.bvt.UnderApprox(id), nil
}
