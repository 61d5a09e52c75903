package solver

import "sort"

type watcher struct {
	clause  *Clause
	blocker Lit // Another lit from the clause; if true the clause needs no visit.
}

// A watcherList stores clauses and propagates unit literals efficiently
// through the two-watched-literal scheme. Binary clauses are kept in
// dedicated lists.
type watcherList struct {
	nbMax     int         // Max # of learned clauses at current moment
	idxReduce int         // # of calls to reduce + 1
	wlistBin  [][]watcher // For each literal, the binary clauses where its negation appears
	wlist     [][]watcher // For each literal, the clauses where its negation is watched
	clauses   []*Clause   // All problem clauses
	learned   []*Clause   // All learned clauses
}

func (s *Solver) initWatcherList() {
	s.wl = watcherList{
		nbMax:     initNbMaxClauses,
		idxReduce: 1,
	}
}

// bumpNbMax increases the max nb of learned clauses kept.
func (s *Solver) bumpNbMax() {
	s.wl.nbMax += incrNbMaxClauses
}

// postponeNbMax increases the max nb of learned clauses kept, when lots
// of good clauses are currently learned.
func (s *Solver) postponeNbMax() {
	s.wl.nbMax += incrPostponeNbMax
}

// watchClause watches the two first lits of c.
func (s *Solver) watchClause(c *Clause) {
	if c.Len() == 2 {
		first, second := c.First(), c.Second()
		s.wl.wlistBin[first.Negation()] = append(s.wl.wlistBin[first.Negation()], watcher{clause: c, blocker: second})
		s.wl.wlistBin[second.Negation()] = append(s.wl.wlistBin[second.Negation()], watcher{clause: c, blocker: first})
	} else {
		neg0 := c.First().Negation()
		neg1 := c.Second().Negation()
		s.wl.wlist[neg0] = append(s.wl.wlist[neg0], watcher{clause: c, blocker: c.Second()})
		s.wl.wlist[neg1] = append(s.wl.wlist[neg1], watcher{clause: c, blocker: c.First()})
	}
}

// unwatchClause removes c from the watch lists.
func (s *Solver) unwatchClause(c *Clause) {
	if c.Len() == 2 {
		for i := 0; i < 2; i++ {
			neg := c.Get(i).Negation()
			s.wl.wlistBin[neg] = removeWatcher(s.wl.wlistBin[neg], c)
		}
		return
	}
	for i := 0; i < 2; i++ {
		neg := c.Get(i).Negation()
		s.wl.wlist[neg] = removeWatcher(s.wl.wlist[neg], c)
	}
}

func removeWatcher(lst []watcher, c *Clause) []watcher {
	for i := range lst {
		if lst[i].clause == c {
			last := len(lst) - 1
			lst[i] = lst[last]
			return lst[:last]
		}
	}
	return lst
}

// appendClause attaches a problem clause of length >= 2.
func (s *Solver) appendClause(c *Clause) {
	s.wl.clauses = append(s.wl.clauses, c)
	s.watchClause(c)
}

// addLearned attaches a learned clause of length >= 2.
func (s *Solver) addLearned(c *Clause) {
	s.wl.learned = append(s.wl.learned, c)
	s.watchClause(c)
	s.clauseBumpActivity(c)
	s.Stats.NbLearned++
	if c.Len() == 2 {
		s.Stats.NbBinaryLearned++
	}
}

// removeClause detaches and forgets a problem clause.
func (s *Solver) removeClause(c *Clause) {
	s.unwatchClause(c)
	for i, c2 := range s.wl.clauses {
		if c2 == c {
			last := len(s.wl.clauses) - 1
			s.wl.clauses[i] = s.wl.clauses[last]
			s.wl.clauses = s.wl.clauses[:last]
			return
		}
	}
}

// Utilities for sorting learned clauses by LBD, ties broken by activity.
func (wl *watcherList) Len() int { return len(wl.learned) }

func (wl *watcherList) Less(i, j int) bool {
	lbdI, lbdJ := wl.learned[i].lbd(), wl.learned[j].lbd()
	return lbdI > lbdJ || (lbdI == lbdJ && wl.learned[i].activity < wl.learned[j].activity)
}

func (wl *watcherList) Swap(i, j int) {
	wl.learned[i], wl.learned[j] = wl.learned[j], wl.learned[i]
}

// reduceLearned removes half the learned clauses, keeping the most
// useful ones.
func (s *Solver) reduceLearned() {
	sort.Sort(&s.wl)
	length := len(s.wl.learned) / 2
	if length > 0 && s.wl.learned[length].lbd() <= 3 { // Lots of good clauses, postpone reduction
		s.postponeNbMax()
	}
	nbRemoved := 0
	for i := 0; i < length; i++ {
		c := s.wl.learned[i]
		if c.lbd() <= 2 || c.isLocked() {
			continue
		}
		nbRemoved++
		s.Stats.NbDeleted++
		s.wl.learned[i] = s.wl.learned[len(s.wl.learned)-nbRemoved]
		s.unwatchClause(c)
	}
	s.wl.learned = s.wl.learned[:len(s.wl.learned)-nbRemoved]
}

// propagateBool performs boolean unit propagation until fixpoint and
// returns a conflicting clause, or nil.
func (s *Solver) propagateBool() *Clause {
	for s.qhead < len(s.trail) {
		p := s.trail[s.qhead] // p is true; visit clauses watching its negation
		s.qhead++
		s.Stats.NbPropagations++
		for _, w := range s.wl.wlistBin[p] {
			switch s.litStatus(w.blocker) {
			case Unsat:
				return w.clause
			case Indet:
				s.uncheckedEnqueue(w.blocker, w.clause)
			}
		}
		ws := s.wl.wlist[p]
		n := 0
	clauses:
		for i := 0; i < len(ws); i++ {
			w := ws[i]
			if s.litStatus(w.blocker) == Sat {
				ws[n] = w
				n++
				continue
			}
			c := w.clause
			// Put the false watch at position 1.
			if c.First().Negation() == p {
				c.swap(0, 1)
			}
			first := c.First()
			if first != w.blocker && s.litStatus(first) == Sat {
				ws[n] = watcher{clause: c, blocker: first}
				n++
				continue
			}
			// Look for a new watch.
			for k := 2; k < c.Len(); k++ {
				if s.litStatus(c.Get(k)) != Unsat {
					c.swap(1, k)
					neg := c.Second().Negation()
					s.wl.wlist[neg] = append(s.wl.wlist[neg], watcher{clause: c, blocker: first})
					continue clauses
				}
			}
			// No new watch: clause is unit or conflicting.
			ws[n] = watcher{clause: c, blocker: first}
			n++
			if s.litStatus(first) == Unsat {
				s.qhead = len(s.trail)
				for i++; i < len(ws); i++ {
					ws[n] = ws[i]
					n++
				}
				s.wl.wlist[p] = ws[:n]
				return c
			}
			s.uncheckedEnqueue(first, c)
		}
		s.wl.wlist[p] = ws[:n]
	}
	return nil
}
