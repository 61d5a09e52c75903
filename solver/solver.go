package solver

import (
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const (
	initNbMaxClauses  = 2000  // Maximum # of learned clauses, at first.
	incrNbMaxClauses  = 300   // By how much # of learned clauses is incremented at each reduction.
	incrPostponeNbMax = 1000  // By how much # of learned is increased when lots of good clauses are currently learned.
	clauseDecay       = 0.999 // By how much clause bumping decays over time.
	defaultVarDecay   = 0.8   // On each var decay, how much the varInc should be decayed at startup.
)

// Stats are statistics about the resolution of the problem.
// They are provided for information purpose only.
type Stats struct {
	NbRestarts      int
	NbConflicts     int
	NbDecisions     int
	NbPropagations  int64
	NbUnitLearned   int // How many unit clauses were learned
	NbBinaryLearned int // How many binary clauses were learned
	NbLearned       int // How many clauses were learned
	NbDeleted       int // How many clauses were deleted
}

// A Solver is a CDCL engine cooperating with theory propagators.
// A given Solver must not be used concurrently from several goroutines.
type Solver struct {
	Stats Stats

	log    *logrus.Logger
	status Status
	nbVars int

	model     []decLevel // For each var, 0 if unbound, else ±(level+1)
	lastModel []decLevel // Copy of model at the last Sat answer
	trail     []Lit      // Current assignment stack
	trailLim  []int      // Trail position at each decision level
	qhead     int        // Propagation queue head into trail

	wl           watcherList
	reason       []*Clause // For each var, the clause that propagated it (nil for decisions)
	reasonTheory []int32   // For each var, 1 + index of the theory that propagated it, or 0
	lazyReasons  []*Clause // Materialized theory reasons, kept alive until backtrack

	activity   []float64 // How often each var is involved in conflicts
	polarity   []bool    // Preferred sign for each var
	decision   []bool    // Whether the var may be picked as a decision
	priority   []int32   // Decision priority tier of each var
	frozen     []bool    // Vars protected from preprocessing
	eliminated []bool    // Vars removed by preprocessing

	varQueue  varHeap
	varInc    float64 // On each var bump, how big the increment should be
	varDecay  float64 // On each var decay, how much the varInc should be decayed
	clauseInc float32

	lbdStats lbdStats

	assumptions []Lit  // Literals assumed true for the current solve
	isAssumed   []bool // Per var, whether it is currently assumed
	conflict    []Lit  // On Unsat under assumptions: clause over negated assumptions

	theories  []Theory
	owner     []int32   // Per var, owning theory index or -1
	thWatches [][]int32 // Per var, theories observing its assignments
	thHead    int       // Trail position up to which theories were fed
	thConfl   []Lit     // Scratch conflict buffer for theories

	seen       []bool // Scratch marks for analysis
	analyzeBuf []Lit

	elimStack []elimClause // Clauses removed by variable elimination, for model extension

	interrupted atomic.Bool
	confBudget  int64 // Remaining conflicts before Indet, or -1
	propBudget  int64 // Remaining propagations before Indet, or -1

	trueLit Lit // Lazily allocated constant-true literal
}

// New returns an empty solver with no variable and no clause.
func New() *Solver {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	s := &Solver{
		log:        log,
		status:     Indet,
		varInc:     1.0,
		clauseInc:  1.0,
		varDecay:   defaultVarDecay,
		confBudget: -1,
		propBudget: -1,
		trueLit:    LitUndef,
	}
	s.initWatcherList()
	s.varQueue = newVarHeap(s.activity, s.priority)
	return s
}

// SetLogger replaces the solver's logger.
func (s *Solver) SetLogger(log *logrus.Logger) {
	s.log = log
}

// Logger returns the solver's logger.
func (s *Solver) Logger() *logrus.Logger { return s.log }

// SetVerbose raises the log level so solving progress is reported.
func (s *Solver) SetVerbose(w io.Writer) {
	s.log.SetOutput(w)
	s.log.SetLevel(logrus.InfoLevel)
}

// NewVar allocates a fresh variable and returns it.
func (s *Solver) NewVar() Var {
	v := Var(s.nbVars)
	s.nbVars++
	s.model = append(s.model, 0)
	s.reason = append(s.reason, nil)
	s.reasonTheory = append(s.reasonTheory, 0)
	s.activity = append(s.activity, 0)
	s.polarity = append(s.polarity, false)
	s.decision = append(s.decision, true)
	s.priority = append(s.priority, 0)
	s.frozen = append(s.frozen, false)
	s.eliminated = append(s.eliminated, false)
	s.isAssumed = append(s.isAssumed, false)
	s.owner = append(s.owner, -1)
	s.thWatches = append(s.thWatches, nil)
	s.seen = append(s.seen, false)
	s.wl.wlistBin = append(s.wl.wlistBin, nil, nil)
	s.wl.wlist = append(s.wl.wlist, nil, nil)
	s.varQueue.activity = s.activity
	s.varQueue.priority = s.priority
	s.varQueue.insert(int(v))
	return v
}

// NbVars returns the number of variables allocated so far.
func (s *Solver) NbVars() int { return s.nbVars }

// Okay returns false iff the solver is known to be unsatisfiable at top
// level.
func (s *Solver) Okay() bool { return s.status != Unsat }

// Freeze protects v from being eliminated by the preprocessor. It
// returns false, without freezing, if v was already eliminated.
func (s *Solver) Freeze(v Var) bool {
	if s.eliminated[v] {
		return false
	}
	s.frozen[v] = true
	return true
}

// IsEliminated returns true iff v was removed by the preprocessor.
func (s *Solver) IsEliminated(v Var) bool { return s.eliminated[v] }

// SetDecisionVar controls whether v may be picked by the decision
// heuristic.
func (s *Solver) SetDecisionVar(v Var, decidable bool) {
	s.decision[v] = decidable
	if decidable && !s.varQueue.contains(int(v)) {
		s.varQueue.insert(int(v))
	}
}

// IsDecisionVar returns whether v may be picked by the decision
// heuristic.
func (s *Solver) IsDecisionVar(v Var) bool { return s.decision[v] }

// SetDecisionPriority sets the decision tier of v: variables of higher
// priority are always decided before lower-priority ones.
func (s *Solver) SetDecisionPriority(v Var, priority int32) {
	s.priority[v] = priority
	if s.varQueue.contains(int(v)) {
		s.varQueue.decrease(int(v))
	}
}

// DecisionPriority returns the decision tier of v.
func (s *Solver) DecisionPriority(v Var) int32 { return s.priority[v] }

// SetPolarity sets the preferred phase of v.
func (s *Solver) SetPolarity(v Var, pol bool) { s.polarity[v] = pol }

// Polarity returns the preferred phase of v.
func (s *Solver) Polarity(v Var) bool { return s.polarity[v] }

// litStatus returns whether the literal is made true (Sat) or false
// (Unsat) by the current bindings, or if it is unbound (Indet).
func (s *Solver) litStatus(l Lit) Status {
	assign := s.model[l.Var()]
	if assign == 0 {
		return Indet
	}
	if assign > 0 == l.IsPositive() {
		return Sat
	}
	return Unsat
}

// Value returns the current binding of l: Sat, Unsat or Indet.
func (s *Solver) Value(l Lit) Status { return s.litStatus(l) }

// varLevel returns the decision level v was bound at. Meaningless for
// unbound vars.
func (s *Solver) varLevel(v Var) int {
	return int(abs(s.model[v])) - 1
}

// decisionLevel returns the current decision level.
func (s *Solver) decisionLevel() int { return len(s.trailLim) }

// DecisionLevel returns the current decision level.
func (s *Solver) DecisionLevel() int { return s.decisionLevel() }

func (s *Solver) newDecisionLevel() {
	s.trailLim = append(s.trailLim, len(s.trail))
	for _, t := range s.theories {
		t.NewDecisionLevel()
	}
}

func (s *Solver) uncheckedEnqueue(l Lit, from *Clause) {
	v := l.Var()
	s.model[v] = lvlToSignedLvl(l, decLevel(s.decisionLevel()+1))
	s.reason[v] = from
	s.reasonTheory[v] = 0
	if from != nil && from.Learned() {
		from.lock()
	}
	s.trail = append(s.trail, l)
}

// Enqueue binds l at the current level with the given reason clause. It
// returns false if l was already false.
func (s *Solver) Enqueue(l Lit, from *Clause) bool {
	switch s.litStatus(l) {
	case Sat:
		return true
	case Unsat:
		return false
	}
	s.uncheckedEnqueue(l, from)
	return true
}

// CancelUntil backtracks to the given decision level, undoing all
// assignments made above it and notifying every theory.
func (s *Solver) CancelUntil(level int) { s.cancelUntil(level) }

func (s *Solver) cancelUntil(level int) {
	if s.decisionLevel() <= level {
		return
	}
	bound := s.trailLim[level]
	for i := len(s.trail) - 1; i >= bound; i-- {
		l := s.trail[i]
		v := l.Var()
		s.model[v] = 0
		if r := s.reason[v]; r != nil && r.Learned() {
			r.unlock()
		}
		s.reason[v] = nil
		s.reasonTheory[v] = 0
		s.polarity[v] = l.IsPositive()
		if s.decision[v] && !s.varQueue.contains(int(v)) {
			s.varQueue.insert(int(v))
		}
	}
	s.trail = s.trail[:bound]
	s.trailLim = s.trailLim[:level]
	s.qhead = bound
	if s.thHead > bound {
		s.thHead = bound
	}
	s.lazyReasons = s.lazyReasons[:0]
	for _, t := range s.theories {
		t.BacktrackTo(level)
	}
}

// AddClause adds the given clause to the problem. Literals are
// canonicalized: duplicates are merged and tautologies dropped. It
// returns false iff the clause makes the problem trivially unsat at top
// level.
func (s *Solver) AddClause(lits ...Lit) bool {
	return s.AddClauseLits(lits)
}

// AddClauseLits is AddClause without the variadic copy.
func (s *Solver) AddClauseLits(lits []Lit) bool {
	if s.status == Unsat {
		return false
	}
	s.cancelUntil(0)
	clause := make([]Lit, 0, len(lits))
	for _, l := range lits {
		switch s.litStatus(l) {
		case Sat:
			return true // Clause already satisfied at top level
		case Unsat:
			continue // Dropped
		}
		dup := false
		for _, l2 := range clause {
			if l2 == l {
				dup = true
				break
			}
			if l2 == l.Negation() {
				return true // Tautology
			}
		}
		if !dup {
			clause = append(clause, l)
		}
	}
	switch len(clause) {
	case 0:
		s.status = Unsat
		return false
	case 1:
		s.uncheckedEnqueue(clause[0], nil)
		if confl := s.propagate(); confl != nil {
			s.status = Unsat
			return false
		}
		return true
	default:
		s.appendClause(NewClause(clause))
		return true
	}
}

// propagate runs boolean then theory propagation to a global fixpoint.
func (s *Solver) propagate() *Clause {
	if confl := s.propagateBool(); confl != nil {
		return confl
	}
	return s.theoryPropagate()
}

func (s *Solver) varDecayActivity() {
	s.varInc *= 1 / s.varDecay
}

func (s *Solver) varBumpActivity(v Var) {
	s.activity[v] += s.varInc
	if s.activity[v] > 1e100 { // Rescaling is needed to avoid overflowing
		for i := range s.activity {
			s.activity[i] *= 1e-100
		}
		s.varInc *= 1e-100
	}
	if s.varQueue.contains(int(v)) {
		s.varQueue.decrease(int(v))
	}
}

func (s *Solver) clauseDecayActivity() {
	s.clauseInc *= 1 / clauseDecay
}

func (s *Solver) clauseBumpActivity(c *Clause) {
	if c.Learned() {
		c.activity += s.clauseInc
		if c.activity > 1e30 { // Rescale to avoid overflow
			for _, c2 := range s.wl.learned {
				c2.activity *= 1e-30
			}
			s.clauseInc *= 1e-30
		}
	}
}

// chooseLit returns an unbound literal to be decided, or LitUndef if
// all decision variables are bound.
func (s *Solver) chooseLit() Lit {
	for !s.varQueue.empty() {
		v := Var(s.varQueue.removeMin())
		if s.model[v] == 0 && s.decision[v] && !s.eliminated[v] {
			s.Stats.NbDecisions++
			return v.SignedLit(!s.polarity[v])
		}
	}
	return LitUndef
}

func (s *Solver) rebuildOrderHeap() {
	ints := make([]int, 0, s.nbVars)
	for v := 0; v < s.nbVars; v++ {
		if s.model[v] == 0 && s.decision[v] && !s.eliminated[v] {
			ints = append(ints, v)
		}
	}
	s.varQueue.build(ints)
}

// HasTrueLit reports whether the constant-true literal was allocated.
func (s *Solver) HasTrueLit() bool { return s.trueLit != LitUndef }

// TrueLit returns a literal true in every model, allocating it on first
// use.
func (s *Solver) TrueLit() Lit {
	if s.trueLit == LitUndef {
		v := s.NewVar()
		s.Freeze(v)
		s.trueLit = v.Lit()
		s.AddClause(s.trueLit)
	}
	return s.trueLit
}

// Interrupt asks the solver to return Indet at the next safe point.
// It is the only method safe to call from another goroutine.
func (s *Solver) Interrupt() { s.interrupted.Store(true) }

// ClearInterrupt resets the interrupt flag.
func (s *Solver) ClearInterrupt() { s.interrupted.Store(false) }

// Interrupted reports whether an interrupt is pending.
func (s *Solver) Interrupted() bool { return s.interrupted.Load() }

// SetConfBudget bounds the number of conflicts of the next solve;
// negative means no bound.
func (s *Solver) SetConfBudget(nbConflicts int64) { s.confBudget = nbConflicts }

// SetPropBudget bounds the number of propagations of the next solve;
// negative means no bound.
func (s *Solver) SetPropBudget(nbProps int64) { s.propBudget = nbProps }

// BudgetOff removes all solving budgets.
func (s *Solver) BudgetOff() { s.confBudget = -1; s.propBudget = -1 }

func (s *Solver) budgetExhausted(startConfl int, startProps int64) bool {
	if s.confBudget >= 0 && int64(s.Stats.NbConflicts-startConfl) >= s.confBudget {
		return true
	}
	if s.propBudget >= 0 && s.Stats.NbPropagations-startProps >= s.propBudget {
		return true
	}
	return false
}

// Conflict returns, after an Unsat answer under assumptions, a clause
// over negated assumptions: the assumption conflict set. It is empty
// when the problem is unsat regardless of the assumptions.
func (s *Solver) Conflict() []Lit { return s.conflict }

// SetConflict replaces the stored assumption conflict set. Used by the
// unsat-core minimizer to write a shrunken core back.
func (s *Solver) SetConflict(confl []Lit) { s.conflict = confl }

// Solve searches for a model satisfying all clauses, all theories and
// the given assumptions. It returns Sat, Unsat, or Indet when a budget
// was exhausted or the solver interrupted. On Unsat, Conflict exposes
// the responsible assumption subset.
func (s *Solver) Solve(assumptions []Lit) Status {
	if s.status == Unsat {
		s.conflict = nil
		return Unsat
	}
	s.cancelUntil(0)
	s.ClearInterrupt()
	s.conflict = nil
	s.status = Indet
	s.assumptions = assumptions
	for _, l := range assumptions {
		s.isAssumed[l.Var()] = true
	}
	defer func() {
		for _, l := range assumptions {
			s.isAssumed[l.Var()] = false
		}
		s.assumptions = nil
	}()
	startConfl := s.Stats.NbConflicts
	startProps := s.Stats.NbPropagations
	for {
		st, stop := s.search(startConfl, startProps)
		if st != Indet {
			s.status = st
			break
		}
		if stop {
			s.status = Indet
			break
		}
		s.Stats.NbRestarts++
		s.rebuildOrderHeap()
	}
	if s.status == Sat {
		s.lastModel = make([]decLevel, len(s.model))
		copy(s.lastModel, s.model)
		s.extendModel()
		for _, t := range s.theories {
			if mt, ok := t.(ModelTheory); ok {
				mt.OnModel()
			}
		}
	}
	res := s.status
	s.cancelUntil(0)
	if res == Sat || (res == Unsat && len(s.conflict) > 0) {
		// Unsat under assumptions does not poison later solves.
		s.status = Indet
	}
	return res
}

// search runs CDCL until an answer, a restart (Indet, false) or a
// budget/interrupt stop (Indet, true). Restarts fire on the LBD window
// or, failing that, on the Luby series.
func (s *Solver) search(startConfl int, startProps int64) (Status, bool) {
	localConflicts := 0
	lubyLimit := int(luby(uint(s.Stats.NbRestarts)+1)) * lubyConstant
	for {
		confl := s.propagate()
		if confl != nil {
			if s.status == Unsat || confl.Len() == 0 {
				s.status = Unsat
				s.conflict = nil
				return Unsat, false
			}
			s.Stats.NbConflicts++
			if s.Stats.NbConflicts%5000 == 0 && s.varDecay < 0.95 {
				s.varDecay += 0.01
			}
			if s.interrupted.Load() || s.budgetExhausted(startConfl, startProps) {
				s.cancelUntil(0)
				return Indet, true
			}
			// Theory conflicts may live entirely below the current
			// decision level; normalize before analysis.
			maxLvl := 0
			for i := 0; i < confl.Len(); i++ {
				if lvl := s.varLevel(confl.Get(i).Var()); lvl > maxLvl {
					maxLvl = lvl
				}
			}
			if maxLvl == 0 {
				s.status = Unsat
				s.conflict = nil
				return Unsat, false
			}
			if maxLvl < s.decisionLevel() {
				s.cancelUntil(maxLvl)
			}
			learnt, btLevel := s.analyze(confl)
			s.cancelUntil(btLevel)
			s.varDecayActivity()
			s.clauseDecayActivity()
			if len(learnt) == 1 {
				s.Stats.NbUnitLearned++
				s.lbdStats.addLbd(1)
				s.uncheckedEnqueue(learnt[0], nil)
			} else {
				lits := make([]Lit, len(learnt))
				copy(lits, learnt)
				c := NewLearnedClause(lits)
				c.computeLbd(s.model)
				s.lbdStats.addLbd(c.lbd())
				s.addLearned(c)
				s.uncheckedEnqueue(learnt[0], c)
			}
			localConflicts++
			if s.lbdStats.mustRestart() || localConflicts >= lubyLimit {
				s.lbdStats.clear()
				s.cancelUntil(0)
				return Indet, false
			}
		} else {
			if s.interrupted.Load() || s.budgetExhausted(startConfl, startProps) {
				s.cancelUntil(0)
				return Indet, true
			}
			if s.Stats.NbConflicts >= s.wl.idxReduce*s.wl.nbMax {
				s.wl.idxReduce = s.Stats.NbConflicts/s.wl.nbMax + 1
				s.reduceLearned()
				s.bumpNbMax()
			}
			next := LitUndef
			for s.decisionLevel() < len(s.assumptions) {
				p := s.assumptions[s.decisionLevel()]
				switch s.litStatus(p) {
				case Sat:
					s.newDecisionLevel() // Dummy level: the assumption already holds
				case Unsat:
					s.conflict = s.analyzeFinal(p)
					return Unsat, false
				default:
					next = p
				}
				if next != LitUndef {
					break
				}
			}
			if next == LitUndef {
				next = s.chooseLit()
				if next == LitUndef {
					return Sat, false
				}
			}
			s.newDecisionLevel()
			s.uncheckedEnqueue(next, nil)
		}
	}
}

// HasModel reports whether a model was found and can be queried.
func (s *Solver) HasModel() bool { return s.lastModel != nil }

// ModelValue returns the binding of l in the last model found. It is
// Indet for variables allocated after that model was found.
func (s *Solver) ModelValue(l Lit) Status {
	if s.lastModel == nil || int(l.Var()) >= len(s.lastModel) {
		return Indet
	}
	assign := s.lastModel[l.Var()]
	if assign == 0 {
		return Indet
	}
	if assign > 0 == l.IsPositive() {
		return Sat
	}
	return Unsat
}

// LevelZeroValue returns the binding of l if it is forced at level 0,
// Indet otherwise.
func (s *Solver) LevelZeroValue(l Lit) Status {
	v := l.Var()
	if s.model[v] == 0 || abs(s.model[v]) != 1 {
		return Indet
	}
	if s.model[v] > 0 == l.IsPositive() {
		return Sat
	}
	return Unsat
}

// Model returns a slice associating each variable with its binding in
// the last model found. It panics when no model is available.
func (s *Solver) Model() []bool {
	if s.lastModel == nil {
		panic("cannot call Model() on a solver with no model")
	}
	res := make([]bool, s.nbVars)
	for i, lvl := range s.lastModel {
		res[i] = lvl > 0
	}
	return res
}
