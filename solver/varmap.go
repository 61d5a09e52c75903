package solver

// VarMap is the bidirectional mapping between externally visible
// variable ids and internal solver variables. Internal variables
// introduced by CNF translation of theories have no external id.
type VarMap struct {
	toInternal []Var // dense: external id -> internal var
	toExternal []Var // sparse: internal var -> external id, VarUndef for auxiliaries
}

// NewVarMap returns an empty mapping.
func NewVarMap() *VarMap {
	return &VarMap{}
}

// Map assigns the next external id to the internal variable v and
// returns it. Mapping the same variable twice returns the existing id.
func (m *VarMap) Map(v Var) Var {
	for int(v) >= len(m.toExternal) {
		m.toExternal = append(m.toExternal, VarUndef)
	}
	if ext := m.toExternal[v]; ext != VarUndef {
		return ext
	}
	ext := Var(len(m.toInternal))
	m.toInternal = append(m.toInternal, v)
	m.toExternal[v] = ext
	return ext
}

// Internal returns the internal variable for the external id, or
// VarUndef if the id was never allocated.
func (m *VarMap) Internal(ext Var) Var {
	if ext < 0 || int(ext) >= len(m.toInternal) {
		return VarUndef
	}
	return m.toInternal[ext]
}

// External returns the external id of v, or VarUndef for auxiliaries.
func (m *VarMap) External(v Var) Var {
	if v < 0 || int(v) >= len(m.toExternal) {
		return VarUndef
	}
	return m.toExternal[v]
}

// InternalLit converts an external literal.
func (m *VarMap) InternalLit(l Lit) Lit {
	v := m.Internal(l.Var())
	if v == VarUndef {
		return LitUndef
	}
	return v.SignedLit(!l.IsPositive())
}

// ExternalLit converts an internal literal; LitUndef for auxiliaries.
func (m *VarMap) ExternalLit(l Lit) Lit {
	v := m.External(l.Var())
	if v == VarUndef {
		return LitUndef
	}
	return v.SignedLit(!l.IsPositive())
}

// NbMapped returns the number of externally visible variables.
func (m *VarMap) NbMapped() int {
	return len(m.toInternal)
}
