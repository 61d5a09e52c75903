package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crillab/monosat/solver"
)

// twoStateMachine builds a machine accepting "1 2" from 0 to 2 when
// both transitions are enabled.
func twoStateMachine(t *testing.T, sat *solver.Solver) (*TheorySolver, int, []solver.Lit, int) {
	t.Helper()
	ft := New(sat)
	m := ft.NewFSM(2, 0)
	for i := 0; i < 3; i++ {
		_, err := ft.NewState(m)
		require.NoError(t, err)
	}
	t1, err := ft.NewTransition(m, 0, 1, 1, 0, sat.NewVar())
	require.NoError(t, err)
	t2, err := ft.NewTransition(m, 1, 2, 2, 0, sat.NewVar())
	require.NoError(t, err)
	str, err := ft.NewString([]int{1, 2})
	require.NoError(t, err)
	return ft, m, []solver.Lit{t1, t2}, str
}

func TestAccepts(t *testing.T) {
	sat := solver.New()
	ft, m, trans, str := twoStateMachine(t, sat)
	acc, existed, err := ft.AcceptAtom(m, 0, 2, str)
	require.NoError(t, err)
	require.False(t, existed)

	require.Equal(t, solver.Sat, sat.Solve(trans))
	require.Equal(t, solver.Sat, sat.ModelValue(acc))

	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{trans[0], trans[1].Negation()}))
	require.Equal(t, solver.Unsat, sat.ModelValue(acc))
}

func TestAcceptForcesTransitions(t *testing.T) {
	sat := solver.New()
	ft, m, trans, str := twoStateMachine(t, sat)
	acc, _, err := ft.AcceptAtom(m, 0, 2, str)
	require.NoError(t, err)
	require.Equal(t, solver.Unsat, sat.Solve([]solver.Lit{acc, trans[1].Negation()}))
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{acc}))
	require.Equal(t, solver.Sat, sat.ModelValue(trans[0]))
	require.Equal(t, solver.Sat, sat.ModelValue(trans[1]))
}

func TestEpsilonTransitions(t *testing.T) {
	sat := solver.New()
	ft := New(sat)
	m := ft.NewFSM(1, 0)
	for i := 0; i < 3; i++ {
		_, err := ft.NewState(m)
		require.NoError(t, err)
	}
	// 0 -eps-> 1 -label 1-> 2.
	eps, err := ft.NewTransition(m, 0, 1, 0, 0, sat.NewVar())
	require.NoError(t, err)
	lab, err := ft.NewTransition(m, 1, 2, 1, 0, sat.NewVar())
	require.NoError(t, err)
	str, err := ft.NewString([]int{1})
	require.NoError(t, err)
	acc, _, err := ft.AcceptAtom(m, 0, 2, str)
	require.NoError(t, err)
	require.Equal(t, solver.Sat, sat.Solve([]solver.Lit{eps, lab}))
	require.Equal(t, solver.Sat, sat.ModelValue(acc))
}

func TestBadString(t *testing.T) {
	sat := solver.New()
	ft := New(sat)
	_, err := ft.NewString([]int{1, 0})
	require.Error(t, err, "labels must be strictly positive")
}

func TestAtomDedup(t *testing.T) {
	sat := solver.New()
	ft, m, _, str := twoStateMachine(t, sat)
	a1, _, err := ft.AcceptAtom(m, 0, 2, str)
	require.NoError(t, err)
	a2, existed, err := ft.AcceptAtom(m, 0, 2, str)
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, a1, a2)
}
