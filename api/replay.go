package api

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/crillab/monosat/bv"
	"github.com/crillab/monosat/pb"
	"github.com/crillab/monosat/solver"
)

// Replay rebuilds a problem from a transcript and re-runs its solve
// calls. File-side identifiers are remapped through the variable map,
// so a replayed problem is identical modulo renaming and reproduces the
// original results.
type replayer struct {
	s       *Solver
	vars    map[int32]solver.Var // File DIMACS var -> external var
	bvs     map[int]int
	graphs  map[int]*Graph
	fsms    map[int]int
	fsmSt   map[int]int // States created so far per fsm
	strs    map[int]int
	routers map[int]*Router
	last    int
}

// ReadGNF parses a transcript (or GNF file) and executes it, returning
// the result of the last solve call.
func (s *Solver) ReadGNF(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return ResultUnknown, ioErr("could not open file", err)
	}
	defer f.Close()
	r := &replayer{
		s:       s,
		vars:    make(map[int32]solver.Var),
		bvs:     make(map[int]int),
		graphs:  make(map[int]*Graph),
		fsms:    make(map[int]int),
		fsmSt:   make(map[int]int),
		strs:    make(map[int]int),
		routers: make(map[int]*Router),
		last:    ResultUnknown,
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if err := r.line(sc.Text()); err != nil {
			return r.last, errors.Wrapf(err, "line %d", lineNo)
		}
	}
	if err := sc.Err(); err != nil {
		return r.last, ioErr("could not read file", err)
	}
	return r.last, nil
}

func (r *replayer) lit(tok string) (solver.Lit, error) {
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return solver.LitUndef, errors.Wrapf(err, "bad literal %q", tok)
	}
	if n == 0 {
		return solver.LitUndef, errors.New("literal 0")
	}
	fv := int32(n)
	if fv < 0 {
		fv = -fv
	}
	v, ok := r.vars[fv]
	if !ok {
		var err error
		if v, err = r.s.NewVar(); err != nil {
			return solver.LitUndef, err
		}
		r.vars[fv] = v
	}
	return v.SignedLit(n < 0), nil
}

func (r *replayer) bind(tok string, l solver.Lit) error {
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil || n == 0 {
		return errors.Errorf("bad literal %q", tok)
	}
	fv := int32(n)
	if fv < 0 {
		fv = -fv
	}
	if prev, ok := r.vars[fv]; ok && prev != l.Var() {
		return errors.Errorf("literal %d already bound", n)
	}
	r.vars[fv] = l.Var()
	return nil
}

func atoi(tok string) (int, error)   { return strconv.Atoi(tok) }
func atol(tok string) (int64, error) { return strconv.ParseInt(tok, 10, 64) }

func (r *replayer) lits(toks []string) ([]solver.Lit, error) {
	res := make([]solver.Lit, 0, len(toks))
	for _, tok := range toks {
		if tok == "0" {
			break
		}
		l, err := r.lit(tok)
		if err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, nil
}

func (r *replayer) graph(tok string) (*Graph, error) {
	id, err := atoi(tok)
	if err != nil {
		return nil, err
	}
	g, ok := r.graphs[id]
	if !ok {
		return nil, errors.Errorf("unknown graph %d", id)
	}
	return g, nil
}

func (r *replayer) bvID(tok string) (int, error) {
	id, err := atoi(tok)
	if err != nil {
		return -1, err
	}
	mapped, ok := r.bvs[id]
	if !ok {
		return -1, errors.Errorf("unknown bitvector %d", id)
	}
	return mapped, nil
}

func (r *replayer) line(text string) error {
	f := strings.Fields(text)
	if len(f) == 0 || f[0] == "c" {
		return nil
	}
	switch f[0] {
	case "solve":
		assumps, err := r.lits(f[1:])
		if err != nil {
			return err
		}
		res, err := r.s.SolveAssumptionsLimited(assumps)
		r.last = res
		return err
	case "minimize_core":
		assumps, err := r.lits(f[1:])
		if err != nil {
			return err
		}
		_, err = r.s.MinimizeUnsatCore(assumps)
		return err
	case "clear_opt":
		return r.s.ClearOptimizationObjectives()
	case "maximize", "minimize":
		return r.objective(f)
	case "symbol":
		l, err := r.lit(f[1])
		if err != nil {
			return err
		}
		return r.s.SetVariableName(l.Var(), f[2])
	case "decision":
		l, err := r.lit(f[1])
		if err != nil {
			return err
		}
		on, err := atoi(f[2])
		if err != nil {
			return err
		}
		return r.s.SetDecisionVar(l.Var(), on != 0)
	case "priority":
		l, err := r.lit(f[1])
		if err != nil {
			return err
		}
		p, err := atoi(f[2])
		if err != nil {
			return err
		}
		return r.s.SetDecisionPriority(l.Var(), int32(p))
	case "amo":
		lits, err := r.lits(f[1:])
		if err != nil {
			return err
		}
		vars := make([]solver.Var, len(lits))
		for i, l := range lits {
			vars[i] = l.Var()
		}
		return r.s.AtMostOne(vars)
	case "pb":
		return r.pbLine(f)
	case "bv":
		return r.bvLine(f)
	case "bv_ite":
		cond, err := r.lit(f[1])
		if err != nil {
			return err
		}
		then, err := r.bvID(f[2])
		if err != nil {
			return err
		}
		els, err := r.bvID(f[3])
		if err != nil {
			return err
		}
		res, err := r.bvID(f[4])
		if err != nil {
			return err
		}
		return r.s.BVIte(cond, then, els, res)
	case "digraph":
		gid, err := atoi(f[3])
		if err != nil {
			return err
		}
		bw, err := atoi(f[4])
		if err != nil {
			return err
		}
		name := ""
		if len(f) > 5 {
			name = f[5]
		}
		g, err := r.s.NewGraphNamed(name, bw)
		if err != nil {
			return err
		}
		r.graphs[gid] = g
		return nil
	case "node":
		g, err := r.graph(f[1])
		if err != nil {
			return err
		}
		name := ""
		if len(f) > 3 {
			name = f[3]
		}
		_, err = g.NewNodeNamed(name)
		return err
	case "edge", "edge_bv":
		return r.edgeLine(f)
	case "edge_set":
		g, err := r.graph(f[1])
		if err != nil {
			return err
		}
		lits, err := r.lits(f[3:])
		if err != nil {
			return err
		}
		return g.NewEdgeSet(lits, true)
	case "graph_assign_edges_to_weight":
		g, err := r.graph(f[1])
		if err != nil {
			return err
		}
		w, err := atol(f[2])
		if err != nil {
			return err
		}
		return g.AssignEdgesToWeight(w)
	case "reach", "reach_backward", "on_path", "distance_lt", "distance_leq",
		"weighted_distance_lt", "weighted_distance_leq",
		"weighted_distance_bv_lt", "weighted_distance_bv_leq",
		"maximum_flow_geq", "maximum_flow_gt",
		"maximum_flow_bv_geq", "maximum_flow_bv_gt",
		"mst_weight_leq", "mst_weight_lt", "forest", "acyclic":
		return r.graphAtomLine(f)
	case "f_router":
		g, err := r.graph(f[1])
		if err != nil {
			return err
		}
		rid, err := atoi(f[2])
		if err != nil {
			return err
		}
		src, err := atoi(f[3])
		if err != nil {
			return err
		}
		dst, err := atoi(f[4])
		if err != nil {
			return err
		}
		mf, err := r.lit(f[5])
		if err != nil {
			return err
		}
		router, err := r.s.CreateFlowRouting(g, src, dst, mf)
		if err != nil {
			return err
		}
		r.routers[rid] = router
		return nil
	case "f_router_net":
		rid, err := atoi(f[2])
		if err != nil {
			return err
		}
		router, ok := r.routers[rid]
		if !ok {
			return errors.Errorf("unknown router %d", rid)
		}
		dis, err := r.lit(f[3])
		if err != nil {
			return err
		}
		n, err := atoi(f[4])
		if err != nil {
			return err
		}
		var edges, reach []solver.Lit
		for i := 0; i < n; i++ {
			e, err := r.lit(f[5+2*i])
			if err != nil {
				return err
			}
			rl, err := r.lit(f[6+2*i])
			if err != nil {
				return err
			}
			edges = append(edges, e)
			reach = append(reach, rl)
		}
		return router.AddRoutingNet(dis, edges, reach)
	case "fsm":
		id, err := atoi(f[1])
		if err != nil {
			return err
		}
		newID, err := r.s.NewFSM(0, 0)
		if err != nil {
			return err
		}
		r.fsms[id] = newID
		return nil
	case "transition":
		id, err := atoi(f[1])
		if err != nil {
			return err
		}
		fsmID, ok := r.fsms[id]
		if !ok {
			return errors.Errorf("unknown fsm %d", id)
		}
		from, _ := atoi(f[2])
		to, _ := atoi(f[3])
		in, _ := atoi(f[4])
		out, _ := atoi(f[5])
		for r.fsmSt[fsmID] <= from || r.fsmSt[fsmID] <= to {
			if _, err := r.s.NewState(fsmID); err != nil {
				return err
			}
			r.fsmSt[fsmID]++
		}
		l, err := r.s.NewTransition(fsmID, from, to, in, out)
		if err != nil {
			return err
		}
		return r.bind(f[6], l)
	case "str":
		id, err := atoi(f[1])
		if err != nil {
			return err
		}
		labels := make([]int, 0, len(f)-2)
		for _, tok := range f[2:] {
			n, err := atoi(tok)
			if err != nil {
				return err
			}
			labels = append(labels, n)
		}
		newID, err := r.s.NewString(labels)
		if err != nil {
			return err
		}
		r.strs[id] = newID
		return nil
	case "accepts":
		id, err := atoi(f[1])
		if err != nil {
			return err
		}
		fsmID, ok := r.fsms[id]
		if !ok {
			return errors.Errorf("unknown fsm %d", id)
		}
		start, _ := atoi(f[2])
		accept, _ := atoi(f[3])
		for r.fsmSt[fsmID] <= start || r.fsmSt[fsmID] <= accept {
			if _, err := r.s.NewState(fsmID); err != nil {
				return err
			}
			r.fsmSt[fsmID]++
		}
		strID, ok := r.strs[mustAtoi(f[4])]
		if !ok {
			return errors.Errorf("unknown string %s", f[4])
		}
		l, err := r.s.FSMAcceptsString(fsmID, start, accept, strID)
		if err != nil {
			return err
		}
		return r.bind(f[5], l)
	default:
		// A clause: DIMACS literals terminated by 0.
		lits, err := r.lits(f)
		if err != nil {
			return err
		}
		_, err = r.s.AddClause(lits...)
		return err
	}
}

func mustAtoi(tok string) int {
	n, _ := strconv.Atoi(tok)
	return n
}

func (r *replayer) objective(f []string) error {
	maximize := f[0] == "maximize"
	switch f[1] {
	case "bv":
		id, err := r.bvID(f[2])
		if err != nil {
			return err
		}
		if maximize {
			return r.s.MaximizeBV(id)
		}
		return r.s.MinimizeBV(id)
	case "lits":
		n, err := atoi(f[2])
		if err != nil {
			return err
		}
		lits := make([]solver.Lit, n)
		for i := 0; i < n; i++ {
			if lits[i], err = r.lit(f[3+i]); err != nil {
				return err
			}
		}
		var weights []int
		rest := f[3+n:]
		for _, tok := range rest {
			if tok == "0" {
				break
			}
			w, err := atoi(tok)
			if err != nil {
				return err
			}
			weights = append(weights, w)
		}
		if len(weights) > 0 {
			if maximize {
				return r.s.MaximizeWeightedLits(lits, weights)
			}
			return r.s.MinimizeWeightedLits(lits, weights)
		}
		if maximize {
			return r.s.MaximizeLits(lits)
		}
		return r.s.MinimizeLits(lits)
	default:
		return errors.Errorf("bad objective line")
	}
}

func (r *replayer) pbLine(f []string) error {
	var ineq pb.Ineq
	switch f[1] {
	case "<":
		ineq = pb.LT
	case "<=":
		ineq = pb.LEQ
	case "==":
		ineq = pb.EQ
	case ">=":
		ineq = pb.GEQ
	case ">":
		ineq = pb.GT
	default:
		return errors.Errorf("bad pb relation %q", f[1])
	}
	rhs, err := atoi(f[2])
	if err != nil {
		return err
	}
	n, err := atoi(f[3])
	if err != nil {
		return err
	}
	lits := make([]solver.Lit, n)
	for i := 0; i < n; i++ {
		if lits[i], err = r.lit(f[4+i]); err != nil {
			return err
		}
	}
	coefs := make([]int, n)
	for i := 0; i < n; i++ {
		if coefs[i], err = atoi(f[5+n+i]); err != nil {
			return err
		}
	}
	return r.s.AssertPB(rhs, lits, coefs, ineq)
}

func (r *replayer) edgeLine(f []string) error {
	g, err := r.graph(f[1])
	if err != nil {
		return err
	}
	from, err := atoi(f[2])
	if err != nil {
		return err
	}
	to, err := atoi(f[3])
	if err != nil {
		return err
	}
	var l solver.Lit
	if f[0] == "edge" {
		w, err := atol(f[5])
		if err != nil {
			return err
		}
		if l, err = g.NewEdge(from, to, w); err != nil {
			return err
		}
	} else {
		id, err := r.bvID(f[5])
		if err != nil {
			return err
		}
		if l, err = g.NewEdgeBV(from, to, id); err != nil {
			return err
		}
	}
	return r.bind(f[4], l)
}

func (r *replayer) graphAtomLine(f []string) error {
	g, err := r.graph(f[1])
	if err != nil {
		return err
	}
	var l solver.Lit
	switch f[0] {
	case "reach":
		from, _ := atoi(f[2])
		to, _ := atoi(f[3])
		if l, err = g.Reaches(from, to); err != nil {
			return err
		}
		return r.bind(f[4], l)
	case "reach_backward":
		from, _ := atoi(f[2])
		to, _ := atoi(f[3])
		if l, err = g.ReachesBackward(from, to); err != nil {
			return err
		}
		return r.bind(f[4], l)
	case "on_path":
		via, _ := atoi(f[2])
		from, _ := atoi(f[3])
		to, _ := atoi(f[4])
		if l, err = g.OnPath(via, from, to); err != nil {
			return err
		}
		return r.bind(f[5], l)
	case "distance_lt", "distance_leq":
		from, _ := atoi(f[2])
		to, _ := atoi(f[3])
		steps, _ := atoi(f[5])
		if f[0] == "distance_lt" {
			l, err = g.ShortestPathUnweightedLtConst(from, to, steps)
		} else {
			l, err = g.ShortestPathUnweightedLeqConst(from, to, steps)
		}
		if err != nil {
			return err
		}
		return r.bind(f[4], l)
	case "weighted_distance_lt", "weighted_distance_leq":
		from, _ := atoi(f[2])
		to, _ := atoi(f[3])
		dist, err2 := atol(f[5])
		if err2 != nil {
			return err2
		}
		if f[0] == "weighted_distance_lt" {
			l, err = g.ShortestPathLtConst(from, to, dist)
		} else {
			l, err = g.ShortestPathLeqConst(from, to, dist)
		}
		if err != nil {
			return err
		}
		return r.bind(f[4], l)
	case "weighted_distance_bv_lt", "weighted_distance_bv_leq":
		from, _ := atoi(f[2])
		to, _ := atoi(f[3])
		id, err2 := r.bvID(f[5])
		if err2 != nil {
			return err2
		}
		if f[0] == "weighted_distance_bv_lt" {
			l, err = g.ShortestPathLtBV(from, to, id)
		} else {
			l, err = g.ShortestPathLeqBV(from, to, id)
		}
		if err != nil {
			return err
		}
		return r.bind(f[4], l)
	case "maximum_flow_geq", "maximum_flow_gt":
		src, _ := atoi(f[2])
		dst, _ := atoi(f[3])
		w, err2 := atol(f[5])
		if err2 != nil {
			return err2
		}
		if f[0] == "maximum_flow_geq" {
			l, err = g.MaximumFlowGeq(src, dst, w)
		} else {
			l, err = g.MaximumFlowGt(src, dst, w)
		}
		if err != nil {
			return err
		}
		return r.bind(f[4], l)
	case "maximum_flow_bv_geq", "maximum_flow_bv_gt":
		src, _ := atoi(f[2])
		dst, _ := atoi(f[3])
		id, err2 := r.bvID(f[5])
		if err2 != nil {
			return err2
		}
		if f[0] == "maximum_flow_bv_geq" {
			l, err = g.MaximumFlowGeqBV(src, dst, id)
		} else {
			l, err = g.MaximumFlowGtBV(src, dst, id)
		}
		if err != nil {
			return err
		}
		return r.bind(f[4], l)
	case "mst_weight_leq", "mst_weight_lt":
		w, err2 := atol(f[3])
		if err2 != nil {
			return err2
		}
		if f[0] == "mst_weight_leq" {
			l, err = g.MinimumSpanningTreeLeq(w)
		} else {
			l, err = g.MinimumSpanningTreeLt(w)
		}
		if err != nil {
			return err
		}
		return r.bind(f[2], l)
	case "forest":
		if l, err = g.AcyclicUndirected(); err != nil {
			return err
		}
		return r.bind(f[2], l)
	default: // acyclic
		if l, err = g.AcyclicDirected(); err != nil {
			return err
		}
		return r.bind(f[2], l)
	}
}

func (r *replayer) bvLine(f []string) error {
	if err := r.s.InitBVTheory(); err != nil {
		return err
	}
	switch f[1] {
	case "anon":
		id, err := atoi(f[2])
		if err != nil {
			return err
		}
		w, err := atoi(f[3])
		if err != nil {
			return err
		}
		newID, err := r.s.NewBitvectorAnon(w)
		if err != nil {
			return err
		}
		r.bvs[id] = newID
		return nil
	case "const":
		if f[2] == "<" || f[2] == "<=" || f[2] == ">" || f[2] == ">=" {
			id, err := r.bvID(f[4])
			if err != nil {
				return err
			}
			val, err := atol(f[5])
			if err != nil {
				return err
			}
			l, err := r.s.NewBVComparisonConst(cmpOf(f[2]), id, val)
			if err != nil {
				return err
			}
			return r.bind(f[3], l)
		}
		id, err := atoi(f[2])
		if err != nil {
			return err
		}
		w, err := atoi(f[3])
		if err != nil {
			return err
		}
		val, err := atol(f[4])
		if err != nil {
			return err
		}
		newID, err := r.s.NewBitvectorConst(w, val)
		if err != nil {
			return err
		}
		r.bvs[id] = newID
		return nil
	case "<", "<=", ">", ">=":
		id, err := r.bvID(f[3])
		if err != nil {
			return err
		}
		other, err := r.bvID(f[4])
		if err != nil {
			return err
		}
		l, err := r.s.NewBVComparisonBV(cmpOf(f[1]), id, other)
		if err != nil {
			return err
		}
		return r.bind(f[2], l)
	case "symbol":
		id, err := r.bvID(f[2])
		if err != nil {
			return err
		}
		return r.s.SetBitvectorName(id, f[3])
	case "bitblast":
		id, err := r.bvID(f[2])
		if err != nil {
			return err
		}
		return r.s.BVBitblast(id)
	case "+", "-", "*", "/":
		res, err := r.bvID(f[2])
		if err != nil {
			return err
		}
		a, err := r.bvID(f[3])
		if err != nil {
			return err
		}
		b, err := r.bvID(f[4])
		if err != nil {
			return err
		}
		switch f[1] {
		case "+":
			return r.s.BVAddition(res, a, b)
		case "-":
			return r.s.BVSubtraction(res, a, b)
		case "*":
			return r.s.BVMultiply(res, a, b)
		default:
			return r.s.BVDivide(res, a, b)
		}
	case "not":
		a, err := r.bvID(f[2])
		if err != nil {
			return err
		}
		out, err := r.bvID(f[3])
		if err != nil {
			return err
		}
		return r.s.BVNot(a, out)
	case "and", "or", "nor", "nand", "xor", "xnor", "concat":
		a, err := r.bvID(f[2])
		if err != nil {
			return err
		}
		b, err := r.bvID(f[3])
		if err != nil {
			return err
		}
		out, err := r.bvID(f[4])
		if err != nil {
			return err
		}
		switch f[1] {
		case "and":
			return r.s.BVAnd(a, b, out)
		case "or":
			return r.s.BVOr(a, b, out)
		case "nor":
			return r.s.BVNor(a, b, out)
		case "nand":
			return r.s.BVNand(a, b, out)
		case "xor":
			return r.s.BVXor(a, b, out)
		case "xnor":
			return r.s.BVXnor(a, b, out)
		default:
			return r.s.BVConcat(a, b, out)
		}
	case "slice":
		a, err := r.bvID(f[2])
		if err != nil {
			return err
		}
		lo, _ := atoi(f[3])
		hi, _ := atoi(f[4])
		out, err := r.bvID(f[5])
		if err != nil {
			return err
		}
		return r.s.BVSlice(a, lo, hi, out)
	case "min", "max":
		res, err := r.bvID(f[2])
		if err != nil {
			return err
		}
		n, err := atoi(f[3])
		if err != nil {
			return err
		}
		args := make([]int, n)
		for i := 0; i < n; i++ {
			if args[i], err = r.bvID(f[4+i]); err != nil {
				return err
			}
		}
		if f[1] == "min" {
			return r.s.BVMin(res, args)
		}
		return r.s.BVMax(res, args)
	case "popcount", "unary":
		res, err := r.bvID(f[2])
		if err != nil {
			return err
		}
		n, err := atoi(f[3])
		if err != nil {
			return err
		}
		args := make([]solver.Lit, n)
		for i := 0; i < n; i++ {
			if args[i], err = r.lit(f[4+i]); err != nil {
				return err
			}
		}
		if f[1] == "popcount" {
			return r.s.BVPopcount(res, args)
		}
		return r.s.BVUnary(res, args)
	default:
		// "bv <id> <n> <bits...>": explicit-bit vector.
		id, err := atoi(f[1])
		if err != nil {
			return errors.Errorf("bad bv line %q", strings.Join(f, " "))
		}
		n, err := atoi(f[2])
		if err != nil {
			return err
		}
		bits := make([]solver.Var, n)
		for i := 0; i < n; i++ {
			l, err := r.lit(f[3+i])
			if err != nil {
				return err
			}
			bits[i] = l.Var()
		}
		newID, err := r.s.NewBitvector(bits)
		if err != nil {
			return err
		}
		r.bvs[id] = newID
		return nil
	}
}

func cmpOf(tok string) bv.Comparison {
	switch tok {
	case "<":
		return bv.Lt
	case "<=":
		return bv.Leq
	case ">":
		return bv.Gt
	default:
		return bv.Geq
	}
}
