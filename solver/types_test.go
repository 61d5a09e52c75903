package solver

import "testing"

func TestLitEncoding(t *testing.T) {
	tests := []struct {
		cnf int32
		lit Lit
	}{
		{1, 0},
		{-1, 1},
		{3, 4},
		{-3, 5},
	}
	for _, test := range tests {
		if l := IntToLit(test.cnf); l != test.lit {
			t.Errorf("invalid lit for %d: expected %d, got %d", test.cnf, test.lit, l)
		}
		if back := IntToLit(test.cnf).Int(); back != test.cnf {
			t.Errorf("roundtrip failed for %d: got %d", test.cnf, back)
		}
	}
}

func TestLitNegation(t *testing.T) {
	l := IntToLit(2)
	if l.Negation().Int() != -2 {
		t.Errorf("expected -2, got %d", l.Negation().Int())
	}
	if l.Negation().Negation() != l {
		t.Errorf("double negation is not identity")
	}
	if !l.IsPositive() || l.Negation().IsPositive() {
		t.Errorf("invalid polarity")
	}
}

func TestVarLit(t *testing.T) {
	v := IntToVar(4)
	if v.Lit().Var() != v {
		t.Errorf("Var/Lit roundtrip failed")
	}
	if v.SignedLit(true) != v.Lit().Negation() {
		t.Errorf("SignedLit(true) should be the negation")
	}
}
