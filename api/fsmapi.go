package api

import (
	"github.com/crillab/monosat/fsm"
	"github.com/crillab/monosat/solver"
)

// State machine surface. A single FSM theory serves the whole solver,
// created lazily by any FSM call.

// InitFSMTheory creates the state-machine theory if needed.
func (s *Solver) InitFSMTheory() error {
	if err := s.checkAlive(); err != nil {
		return err
	}
	if s.fsmt == nil {
		s.fsmt = fsm.New(s.sat)
	}
	return nil
}

// NewFSM creates a state machine and returns its id.
func (s *Solver) NewFSM(inputAlphabet, outputAlphabet int) (int, error) {
	if err := s.InitFSMTheory(); err != nil {
		return -1, err
	}
	id := s.fsmt.NewFSM(inputAlphabet, outputAlphabet)
	if err := s.writef("fsm %d 0 0\n", id); err != nil {
		return -1, err
	}
	return id, nil
}

// NewState adds a state to the machine.
func (s *Solver) NewState(fsmID int) (int, error) {
	if err := s.InitFSMTheory(); err != nil {
		return -1, err
	}
	st, err := s.fsmt.NewState(fsmID)
	return st, domainWrap(err)
}

// NewTransition adds a guarded transition and returns its enable
// literal. Input label 0 is epsilon.
func (s *Solver) NewTransition(fsmID, fromNode, toNode, inputLabel, outputLabel int) (solver.Lit, error) {
	if err := s.InitFSMTheory(); err != nil {
		return solver.LitUndef, err
	}
	iv := s.sat.NewVar()
	il, err := s.fsmt.NewTransition(fsmID, fromNode, toNode, inputLabel, outputLabel, iv)
	if err != nil {
		return solver.LitUndef, domainWrap(err)
	}
	l := s.externalLit(il)
	if err := s.writef("transition %d %d %d %d %d %d\n", fsmID, fromNode, toNode, inputLabel, outputLabel, l.Int()); err != nil {
		return solver.LitUndef, err
	}
	return l, nil
}

// NewString interns a label string for acceptance atoms. Labels must be
// strictly positive.
func (s *Solver) NewString(labels []int) (int, error) {
	if err := s.InitFSMTheory(); err != nil {
		return -1, err
	}
	id, err := s.fsmt.NewString(labels)
	if err != nil {
		return -1, domainWrap(err)
	}
	if err := s.writef("str %d", id); err != nil {
		return -1, err
	}
	for _, l := range labels {
		if err := s.writef(" %d", l); err != nil {
			return -1, err
		}
	}
	return id, s.writef("\n")
}

// FSMAcceptsString returns an atom true iff the machine accepts the
// string from startNode into acceptNode.
func (s *Solver) FSMAcceptsString(fsmID, startNode, acceptNode, stringID int) (solver.Lit, error) {
	if err := s.InitFSMTheory(); err != nil {
		return solver.LitUndef, err
	}
	il, existed, err := s.fsmt.AcceptAtom(fsmID, startNode, acceptNode, stringID)
	if err != nil {
		return solver.LitUndef, domainWrap(err)
	}
	l := s.externalLit(il)
	if existed {
		return l, nil
	}
	return l, s.writef("accepts %d %d %d %d %d\n", fsmID, startNode, acceptNode, stringID, l.Int())
}
