package ir

// TermKind enumerates block terminators.
type TermKind uint8

const (
	TermNone TermKind = iota
	TermRet
	TermBr
	TermCondBr
	TermUnreachable
)

// Terminator is the control transfer ending a block.
type Terminator struct {
	Kind TermKind

	Ret    RetTerm
	Br     BrTerm
	CondBr CondBrTerm
}

// RetTerm returns from the function, optionally with a value.
type RetTerm struct {
	HasValue bool
	Value    Value
}

// BrTerm jumps unconditionally.
type BrTerm struct {
	Target BlockID
}

// CondBrTerm branches on a condition value.
type CondBrTerm struct {
	Cond Value
	Then BlockID
	Else BlockID
}

// Succs appends the successor block IDs to dst and returns it.
func (t *Terminator) Succs(dst []BlockID) []BlockID {
	switch t.Kind {
	case TermBr:
		dst = append(dst, t.Br.Target)
	case TermCondBr:
		dst = append(dst, t.CondBr.Then, t.CondBr.Else)
	}
	return dst
}

// Values appends the operand values referenced by the terminator.
func (t *Terminator) Values(dst []Value) []Value {
	switch t.Kind {
	case TermRet:
		if t.Ret.HasValue {
			dst = append(dst, t.Ret.Value)
		}
	case TermCondBr:
		dst = append(dst, t.CondBr.Cond)
	}
	return dst
}

func (t *Terminator) replaceValue(old, new Value) {
	if t.Kind == TermRet && t.Ret.HasValue && t.Ret.Value == old {
		t.Ret.Value = new
	}
	if t.Kind == TermCondBr && t.CondBr.Cond == old {
		t.CondBr.Cond = new
	}
}
