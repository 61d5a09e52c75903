// Package api is the embedding surface of the solver: it assembles the
// CDCL core, the bitvector theory, graph theories, the state-machine
// theory, the pseudo-Boolean converter and the flow router, and drives
// them through optimized solving with assumptions and objectives.
//
// Every constructive call is recorded in the transcript (when one is
// open) so the identical problem can be rebuilt in a fresh solver; see
// ReadGNF.
package api

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/crillab/monosat/amo"
	"github.com/crillab/monosat/bv"
	"github.com/crillab/monosat/fsm"
	"github.com/crillab/monosat/graph"
	"github.com/crillab/monosat/optimize"
	"github.com/crillab/monosat/pb"
	"github.com/crillab/monosat/solver"
)

// Version identifies the solver release.
const Version = "1.4.0-go"

// Result codes of solve calls and model queries: 0 true/sat, 1
// false/unsat, 2 undef/unknown.
const (
	ResultSat     = 0
	ResultUnsat   = 1
	ResultUnknown = 2
)

// Code converts a solver status to the foreign result encoding.
func Code(st solver.Status) int {
	switch st {
	case solver.Sat:
		return ResultSat
	case solver.Unsat:
		return ResultUnsat
	default:
		return ResultUnknown
	}
}

// Options configure a solver at construction. Algorithm names follow
// the recognized option sets; unknown values are domain errors.
type Options struct {
	Seed               int64
	Preprocessing      bool
	MaxFlowAlg         string
	ComponentsAlg      string
	CycleAlg           string
	MSTAlg             string
	ReachAlg           string
	DistAlg            string
	ConnectAlg         string
	AllPairsAlg        string
	UndirAllPairsAlg   string
	TranscriptPath     string
	CoreMinimizeBudget int64 // Propagation budget per probe of the core minimizer
	Args               string
}

func (o *Options) algConfig() (graph.AlgConfig, error) {
	cfg := graph.DefaultAlgConfig()
	var err error
	if o.MaxFlowAlg != "" {
		if cfg.MaxFlow, err = graph.ParseMaxFlowAlg(o.MaxFlowAlg); err != nil {
			return cfg, err
		}
	}
	if o.ComponentsAlg != "" {
		if cfg.Components, err = graph.ParseComponentsAlg(o.ComponentsAlg); err != nil {
			return cfg, err
		}
	}
	if o.CycleAlg != "" {
		if cfg.Cycle, err = graph.ParseCycleAlg(o.CycleAlg); err != nil {
			return cfg, err
		}
	}
	if o.MSTAlg != "" {
		if cfg.MST, err = graph.ParseMSTAlg(o.MSTAlg); err != nil {
			return cfg, err
		}
	}
	if o.ReachAlg != "" {
		if cfg.Reach, err = graph.ParseReachAlg(o.ReachAlg); err != nil {
			return cfg, err
		}
	}
	if o.DistAlg != "" {
		if cfg.Dist, err = graph.ParseDistAlg(o.DistAlg); err != nil {
			return cfg, err
		}
	}
	if o.ConnectAlg != "" {
		if cfg.Connect, err = graph.ParseConnectAlg(o.ConnectAlg); err != nil {
			return cfg, err
		}
	}
	if o.AllPairsAlg != "" {
		if cfg.AllPairs, err = graph.ParseAllPairsAlg(o.AllPairsAlg); err != nil {
			return cfg, err
		}
	}
	if o.UndirAllPairsAlg != "" {
		if cfg.UndirAllPairs, err = graph.ParseUndirAllPairsAlg(o.UndirAllPairsAlg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// A Solver owns one SAT core and all its theories. It must not be used
// concurrently from several goroutines; independent Solvers may run in
// parallel.
type Solver struct {
	sat  *solver.Solver
	vm   *solver.VarMap
	bvt  *bv.TheorySolver
	fsmt *fsm.TheorySolver
	pbs  *pb.Solver
	log  *logrus.Logger

	graphs      []*Graph
	graphByName map[string]*Graph
	routers     []*Router

	opts Options
	alg  graph.AlgConfig
	out  transcript

	objectives  []optimize.Objective
	lastOptimal bool
	hasConflict bool
	destroyed   bool

	varNames  map[string]solver.Lit // Name -> external positive lit
	nameOfVar map[solver.Lit]string
	namedVars []solver.Lit
}

// NewSolver builds a solver from the given options (nil for defaults).
func NewSolver(opts *Options) (*Solver, error) {
	o := Options{CoreMinimizeBudget: 1_000_000}
	if opts != nil {
		o = *opts
		if o.CoreMinimizeBudget == 0 {
			o.CoreMinimizeBudget = 1_000_000
		}
	}
	alg, err := o.algConfig()
	if err != nil {
		return nil, domainWrap(err)
	}
	sat := solver.New()
	s := &Solver{
		sat:         sat,
		vm:          solver.NewVarMap(),
		pbs:         pb.New(sat),
		log:         sat.Logger(),
		graphByName: make(map[string]*Graph),
		opts:        o,
		alg:         alg,
		varNames:    make(map[string]solver.Lit),
		nameOfVar:   make(map[solver.Lit]string),
	}
	registerSolver(s)
	if o.TranscriptPath != "" {
		if err := s.SetOutputFile(o.TranscriptPath); err != nil {
			unregisterSolver(s)
			return nil, err
		}
	}
	return s, nil
}

// Destroy interrupts and releases the solver. Any later call on it
// fails with a state error.
func (s *Solver) Destroy() {
	if s.destroyed {
		return
	}
	s.sat.Interrupt()
	unregisterSolver(s)
	s.out.close()
	s.destroyed = true
}

// Interrupt asks the current solve call, if any, to stop at the next
// safe point. Safe to call from other goroutines.
func (s *Solver) Interrupt() { s.sat.Interrupt() }

// SetVerbose routes solving progress to the given writer.
func (s *Solver) SetVerbose(w io.Writer) { s.sat.SetVerbose(w) }

// Logger exposes the solver's logger.
func (s *Solver) Logger() *logrus.Logger { return s.log }

// Stats exposes solving statistics.
func (s *Solver) Stats() solver.Stats { return s.sat.Stats }

func (s *Solver) checkAlive() error {
	if s.destroyed {
		return statef("solver was destroyed")
	}
	return nil
}

// Ok returns false iff the solver is already known unsatisfiable at top
// level.
func (s *Solver) Ok() bool { return s.sat.Okay() }

// Backtrack cancels all search state back to decision level 0.
func (s *Solver) Backtrack() { s.sat.CancelUntil(0) }

// SetOutputFile starts recording the transcript to the given path. An
// empty path closes the current transcript.
func (s *Solver) SetOutputFile(path string) error {
	if err := s.checkAlive(); err != nil {
		return err
	}
	header := fmt.Sprintf("c monosat %s\n", s.opts.Args)
	if err := s.out.open(path, header); err != nil {
		return ioErr("could not open transcript", err)
	}
	if s.sat.HasTrueLit() {
		tl := s.externalLit(s.sat.TrueLit())
		return s.writef("%d 0\n", tl.Int())
	}
	return nil
}

func (s *Solver) writef(format string, args ...interface{}) error {
	if !s.out.active() {
		return nil
	}
	if err := s.out.writef(format, args...); err != nil {
		return ioErr("transcript write failure", err)
	}
	return nil
}

// internalLit maps an external literal to the internal one; the
// variable must be allocated.
func (s *Solver) internalLit(l solver.Lit) (solver.Lit, error) {
	il := s.vm.InternalLit(l)
	if il == solver.LitUndef {
		return solver.LitUndef, statef("literal %d is not allocated", l.Int())
	}
	return il, nil
}

// externalLit maps an internal literal to its external id, assigning
// one on first use.
func (s *Solver) externalLit(l solver.Lit) solver.Lit {
	ext := s.vm.Map(l.Var())
	return ext.SignedLit(!l.IsPositive())
}

// NewVar allocates a fresh externally visible variable.
func (s *Solver) NewVar() (solver.Var, error) {
	if err := s.checkAlive(); err != nil {
		return solver.VarUndef, err
	}
	return s.vm.Map(s.sat.NewVar()), nil
}

// NewNamedVar allocates a variable carrying a unique name. An empty
// name allocates an anonymous variable.
func (s *Solver) NewNamedVar(name string) (solver.Var, error) {
	v, err := s.NewVar()
	if err != nil {
		return solver.VarUndef, err
	}
	if name == "" {
		return v, nil
	}
	if err := s.SetVariableName(v, name); err != nil {
		return solver.VarUndef, err
	}
	return v, nil
}

// SetVariableName names an existing variable.
func (s *Solver) SetVariableName(v solver.Var, name string) error {
	if err := s.checkAlive(); err != nil {
		return err
	}
	if name == "" {
		return nil
	}
	if !validName(name) {
		return domainf("variable names must consist only of printable, non-whitespace ASCII: %q", name)
	}
	if _, dup := s.varNames[name]; dup {
		return domainf("all variable names must be unique: %q", name)
	}
	if s.vm.Internal(v) == solver.VarUndef {
		return statef("variable %d is not allocated", v)
	}
	s.varNames[name] = v.Lit()
	s.nameOfVar[v.Lit()] = name
	s.namedVars = append(s.namedVars, v.Lit())
	s.sat.Freeze(s.vm.Internal(v))
	return s.writef("symbol %d %s\n", int32(v)+1, name)
}

// VariableName returns the name of v, or the empty string.
func (s *Solver) VariableName(v solver.Var) string {
	return s.nameOfVar[v.Lit()]
}

// HasVariableWithName returns whether some variable carries the name.
func (s *Solver) HasVariableWithName(name string) bool {
	_, ok := s.varNames[name]
	return ok
}

// Variable returns the variable with the given name.
func (s *Solver) Variable(name string) (solver.Var, error) {
	l, ok := s.varNames[name]
	if !ok {
		return solver.VarUndef, domainf("no variable named %q", name)
	}
	return l.Var(), nil
}

// NamedVariables returns every named variable, in naming order.
func (s *Solver) NamedVariables() []solver.Var {
	res := make([]solver.Var, len(s.namedVars))
	for i, l := range s.namedVars {
		res[i] = l.Var()
	}
	return res
}

// NVars returns the number of externally visible variables.
func (s *Solver) NVars() int { return s.vm.NbMapped() }

// TrueLit returns a literal constrained true in every model.
func (s *Solver) TrueLit() (solver.Lit, error) {
	if err := s.checkAlive(); err != nil {
		return solver.LitUndef, err
	}
	fresh := !s.sat.HasTrueLit()
	l := s.externalLit(s.sat.TrueLit())
	if fresh {
		if err := s.writef("%d 0\n", l.Int()); err != nil {
			return solver.LitUndef, err
		}
	}
	return l, nil
}

// DisallowLiteralSimplification freezes the literal's variable against
// preprocessing. It returns false, with a warning, when the variable
// was already eliminated.
func (s *Solver) DisallowLiteralSimplification(l solver.Lit) (bool, error) {
	il, err := s.internalLit(l)
	if err != nil {
		return false, err
	}
	if s.sat.IsEliminated(il.Var()) {
		s.log.Warnf("literal %d has already been eliminated by the pre-processor", l.Int())
		return false, nil
	}
	s.sat.Freeze(il.Var())
	return true, nil
}

// DisablePreprocessing turns variable elimination off for the rest of
// the solver's lifetime.
func (s *Solver) DisablePreprocessing() { s.opts.Preprocessing = false }

// SetDecisionVar controls whether the decision heuristic may pick v.
func (s *Solver) SetDecisionVar(v solver.Var, decidable bool) error {
	iv := s.vm.Internal(v)
	if iv == solver.VarUndef {
		return statef("variable %d is not allocated", v)
	}
	if s.sat.IsDecisionVar(iv) != decidable {
		if err := s.writef("decision %d %d\n", int32(v)+1, boolToInt(decidable)); err != nil {
			return err
		}
		s.sat.SetDecisionVar(iv, decidable)
	}
	return nil
}

// IsDecisionVar returns whether the decision heuristic may pick v.
func (s *Solver) IsDecisionVar(v solver.Var) bool {
	return s.sat.IsDecisionVar(s.vm.Internal(v))
}

// SetDecisionPriority orders v before lower-priority variables in the
// decision heuristic.
func (s *Solver) SetDecisionPriority(v solver.Var, priority int32) error {
	iv := s.vm.Internal(v)
	if iv == solver.VarUndef {
		return statef("variable %d is not allocated", v)
	}
	if s.sat.DecisionPriority(iv) != priority {
		if err := s.writef("priority %d %d\n", int32(v)+1, priority); err != nil {
			return err
		}
		s.sat.SetDecisionPriority(iv, priority)
	}
	return nil
}

// DecisionPriority returns the decision priority of v.
func (s *Solver) DecisionPriority(v solver.Var) int32 {
	return s.sat.DecisionPriority(s.vm.Internal(v))
}

// SetDecisionPolarity sets the phase tried first when deciding v.
func (s *Solver) SetDecisionPolarity(v solver.Var, pol bool) {
	s.sat.SetPolarity(s.vm.Internal(v), pol)
}

// DecisionPolarity returns the preferred phase of v.
func (s *Solver) DecisionPolarity(v solver.Var) bool {
	return s.sat.Polarity(s.vm.Internal(v))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// AddClause adds a clause over external literals. It returns false iff
// the clause makes the problem trivially unsat.
func (s *Solver) AddClause(lits ...solver.Lit) (bool, error) {
	if err := s.checkAlive(); err != nil {
		return false, err
	}
	internal := make([]solver.Lit, len(lits))
	for i, l := range lits {
		il, err := s.internalLit(l)
		if err != nil {
			return false, err
		}
		internal[i] = il
	}
	for _, l := range lits {
		if err := s.writef("%d ", l.Int()); err != nil {
			return false, err
		}
	}
	if err := s.writef("0\n"); err != nil {
		return false, err
	}
	return s.sat.AddClauseLits(internal), nil
}

// AddUnitClause adds a unit clause.
func (s *Solver) AddUnitClause(l solver.Lit) (bool, error) { return s.AddClause(l) }

// AddBinaryClause adds a binary clause.
func (s *Solver) AddBinaryClause(a, b solver.Lit) (bool, error) { return s.AddClause(a, b) }

// AddTertiaryClause adds a ternary clause.
func (s *Solver) AddTertiaryClause(a, b, c solver.Lit) (bool, error) { return s.AddClause(a, b, c) }

// AssertPB buffers a pseudo-Boolean constraint; it is converted to CNF
// at the next flush or solve.
func (s *Solver) AssertPB(rhs int, lits []solver.Lit, coefficients []int, ineq pb.Ineq) error {
	if err := s.checkAlive(); err != nil {
		return err
	}
	if len(lits) == 0 {
		return nil
	}
	internal := make([]solver.Lit, len(lits))
	for i, l := range lits {
		il, err := s.internalLit(l)
		if err != nil {
			return err
		}
		internal[i] = il
	}
	coefs := make([]int, len(lits))
	for i := range coefs {
		if i < len(coefficients) {
			coefs[i] = coefficients[i]
		} else {
			coefs[i] = 1
		}
	}
	if err := s.writef("pb %s %d %d ", ineq, rhs, len(lits)); err != nil {
		return err
	}
	for _, l := range lits {
		if err := s.writef("%d ", l.Int()); err != nil {
			return err
		}
	}
	if err := s.writef("%d ", len(lits)); err != nil {
		return err
	}
	for _, c := range coefs {
		if err := s.writef("%d ", c); err != nil {
			return err
		}
	}
	if err := s.writef("\n"); err != nil {
		return err
	}
	s.pbs.AddConstr(internal, coefs, rhs, ineq)
	return nil
}

// FlushPB converts all buffered PB constraints to CNF now.
func (s *Solver) FlushPB() error {
	if err := s.checkAlive(); err != nil {
		return err
	}
	s.pbs.Convert()
	return nil
}

// AtMostOne asserts that at most one of the given variables is true.
// For two or more variables this attaches an at-most-one theory
// propagator; an empty or single-variable set adds nothing.
func (s *Solver) AtMostOne(vars []solver.Var) error {
	if err := s.checkAlive(); err != nil {
		return err
	}
	if len(vars) <= 1 {
		return nil
	}
	if err := s.writef("amo"); err != nil {
		return err
	}
	for _, v := range vars {
		if err := s.writef(" %d", int32(v)+1); err != nil {
			return err
		}
	}
	if err := s.writef(" 0\n"); err != nil {
		return err
	}
	t := amo.New(s.sat)
	for _, v := range vars {
		iv := s.vm.Internal(v)
		if iv == solver.VarUndef {
			return statef("variable %d is not allocated", v)
		}
		t.AddVar(iv)
	}
	return nil
}

// ClearOptimizationObjectives forgets all registered objectives.
func (s *Solver) ClearOptimizationObjectives() error {
	if err := s.writef("clear_opt\n"); err != nil {
		return err
	}
	s.objectives = s.objectives[:0]
	return nil
}

// MaximizeBV registers a bitvector maximization objective. Objectives
// are lexicographic, in registration order.
func (s *Solver) MaximizeBV(bvID int) error { return s.bvObjective(bvID, true) }

// MinimizeBV registers a bitvector minimization objective.
func (s *Solver) MinimizeBV(bvID int) error { return s.bvObjective(bvID, false) }

func (s *Solver) bvObjective(bvID int, maximize bool) error {
	if err := s.checkAlive(); err != nil {
		return err
	}
	if s.bvt == nil {
		return statef("no bitvector theory created (call InitBVTheory)")
	}
	inner, err := s.internalBV(bvID)
	if err != nil {
		return err
	}
	word := "minimize"
	if maximize {
		word = "maximize"
	}
	if err := s.writef("%s bv %d\n", word, bvID); err != nil {
		return err
	}
	s.objectives = append(s.objectives, optimize.BVObjective(inner, maximize))
	return nil
}

// MaximizeLits registers an objective counting true literals.
func (s *Solver) MaximizeLits(lits []solver.Lit) error {
	return s.litsObjective(lits, nil, true)
}

// MinimizeLits registers an objective counting true literals, to be
// minimized.
func (s *Solver) MinimizeLits(lits []solver.Lit) error {
	return s.litsObjective(lits, nil, false)
}

// MaximizeWeightedLits registers a weighted-literal maximization
// objective. Missing weights default to 1; extra weights are dropped.
func (s *Solver) MaximizeWeightedLits(lits []solver.Lit, weights []int) error {
	return s.litsObjective(lits, weights, true)
}

// MinimizeWeightedLits registers a weighted-literal minimization
// objective.
func (s *Solver) MinimizeWeightedLits(lits []solver.Lit, weights []int) error {
	return s.litsObjective(lits, weights, false)
}

func (s *Solver) litsObjective(lits []solver.Lit, weights []int, maximize bool) error {
	if err := s.checkAlive(); err != nil {
		return err
	}
	if len(lits) == 0 {
		return nil
	}
	internal := make([]solver.Lit, len(lits))
	for i, l := range lits {
		il, err := s.internalLit(l)
		if err != nil {
			return err
		}
		internal[i] = il
	}
	word := "minimize"
	if maximize {
		word = "maximize"
	}
	if err := s.writef("%s lits %d ", word, len(lits)); err != nil {
		return err
	}
	for _, l := range lits {
		if err := s.writef("%d ", l.Int()); err != nil {
			return err
		}
	}
	obj := optimize.LitsObjective(internal, weights, maximize)
	if weights != nil {
		for _, w := range obj.Weights {
			if err := s.writef("%d ", w); err != nil {
				return err
			}
		}
		if err := s.writef("0\n"); err != nil {
			return err
		}
	} else if err := s.writef("\n"); err != nil {
		return err
	}
	s.objectives = append(s.objectives, obj)
	return nil
}

// SetConflictLimit bounds the conflicts of the next solve call;
// non-positive removes the bound.
func (s *Solver) SetConflictLimit(nbConflicts int) {
	if nbConflicts <= 0 {
		s.sat.SetConfBudget(-1)
	} else {
		s.sat.SetConfBudget(int64(nbConflicts))
	}
}

// SetPropagationLimit bounds the propagations of the next solve call.
func (s *Solver) SetPropagationLimit(nbProps int) {
	if nbProps <= 0 {
		s.sat.SetPropBudget(-1)
	} else {
		s.sat.SetPropBudget(int64(nbProps))
	}
}

// Solve solves without assumptions and returns true iff satisfiable.
func (s *Solver) Solve() (bool, error) {
	st, err := s.SolveAssumptionsLimited(nil)
	return st == ResultSat, err
}

// SolveAssumptions solves under the given assumptions.
func (s *Solver) SolveAssumptions(assumptions []solver.Lit) (bool, error) {
	st, err := s.SolveAssumptionsLimited(assumptions)
	return st == ResultSat, err
}

// SolveLimited solves under the configured budgets; the result may be
// ResultUnknown.
func (s *Solver) SolveLimited() (int, error) {
	return s.SolveAssumptionsLimited(nil)
}

// SolveAssumptionsLimited is the full solve entry point: budgets and
// resource limits apply, registered objectives are optimized
// lexicographically, and on unsat the conflict set is retained.
func (s *Solver) SolveAssumptionsLimited(assumptions []solver.Lit) (int, error) {
	if err := s.checkAlive(); err != nil {
		return ResultUnknown, err
	}
	s.lastOptimal = true
	s.hasConflict = false
	if err := s.writef("solve"); err != nil {
		return ResultUnknown, err
	}
	internal := make([]solver.Lit, len(assumptions))
	for i, l := range assumptions {
		il, err := s.internalLit(l)
		if err != nil {
			return ResultUnknown, err
		}
		internal[i] = il
		if err := s.writef(" %d", l.Int()); err != nil {
			return ResultUnknown, err
		}
	}
	if err := s.writef("\n"); err != nil {
		return ResultUnknown, err
	}

	enableResourceLimits()
	defer disableResourceLimits()

	s.sat.CancelUntil(0)
	if s.opts.Preprocessing {
		s.sat.Preprocess()
	}
	s.pbs.Convert()

	res := optimize.Solve(s.sat, s.bvt, s.pbs, s.log, internal, s.objectives)
	s.lastOptimal = res.Optimal
	if res.Status == solver.Unsat {
		s.hasConflict = true
	}
	return Code(res.Status), nil
}

// LastSolutionWasOptimal reports whether the previous solve proved its
// answer optimal. It stays true when that solve was unsatisfiable: the
// answer is optimal among the empty set of models.
func (s *Solver) LastSolutionWasOptimal() bool { return s.lastOptimal }

// ConflictClause returns, after an unsatisfiable solve under
// assumptions, the negations of an assumption subset that forced
// unsatisfiability. It returns nil when the last solve was not unsat.
func (s *Solver) ConflictClause() []solver.Lit {
	if !s.hasConflict {
		return nil
	}
	confl := s.sat.Conflict()
	res := make([]solver.Lit, len(confl))
	for i, l := range confl {
		res[i] = s.externalLit(l)
	}
	return res
}

// MinimizeUnsatCore shrinks an unsatisfiable assumption set to a
// locally minimal core and returns it. The solver's conflict set is
// rewritten to match.
func (s *Solver) MinimizeUnsatCore(assumptions []solver.Lit) ([]solver.Lit, error) {
	if err := s.checkAlive(); err != nil {
		return nil, err
	}
	s.lastOptimal = true
	s.hasConflict = false
	if err := s.writef("minimize_core "); err != nil {
		return nil, err
	}
	internal := make([]solver.Lit, len(assumptions))
	for i, l := range assumptions {
		il, err := s.internalLit(l)
		if err != nil {
			return nil, err
		}
		internal[i] = il
		if err := s.writef("%d ", l.Int()); err != nil {
			return nil, err
		}
	}
	if err := s.writef("\n"); err != nil {
		return nil, err
	}
	enableResourceLimits()
	defer disableResourceLimits()
	s.sat.CancelUntil(0)
	s.pbs.Convert()
	core := optimize.MinimizeCore(s.sat, internal, s.opts.CoreMinimizeBudget)
	s.hasConflict = true
	res := make([]solver.Lit, len(core))
	for i, l := range core {
		res[i] = s.externalLit(l)
	}
	return res, nil
}

// MinimizeConflictClause re-minimizes the conflict set stored by the
// last unsatisfiable solve.
func (s *Solver) MinimizeConflictClause() ([]solver.Lit, error) {
	if !s.hasConflict {
		return nil, nil
	}
	confl := s.sat.Conflict()
	assumptions := make([]solver.Lit, len(confl))
	for i, l := range confl {
		assumptions[i] = s.externalLit(l.Negation())
	}
	return s.MinimizeUnsatCore(assumptions)
}

// HasModel reports whether a model is available for queries.
func (s *Solver) HasModel() bool { return s.sat.HasModel() }

// ModelLiteral returns the ternary value of l in the last model:
// 0 true, 1 false, 2 unassigned.
func (s *Solver) ModelLiteral(l solver.Lit) (int, error) {
	il, err := s.internalLit(l)
	if err != nil {
		return ResultUnknown, err
	}
	return Code(s.sat.ModelValue(il)), nil
}

// ConstantModelLiteral returns the value of l if it is forced at level
// 0, 2 otherwise.
func (s *Solver) ConstantModelLiteral(l solver.Lit) (int, error) {
	il, err := s.internalLit(l)
	if err != nil {
		return ResultUnknown, err
	}
	return Code(s.sat.LevelZeroValue(il)), nil
}
