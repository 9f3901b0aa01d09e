package analysis

import "lift/internal/ir"

// MakeLoopInvariant tries to prove the instruction loop-invariant and
// move it to the loop preheader. An instruction qualifies when it is a
// pure computation and each operand is a constant, defined outside the
// loop, or itself made invariant by a recursive attempt. Returns
// whether the instruction is now invariant and whether anything moved.
func MakeLoopInvariant(in *ir.Instr, l *Loop) (ok, changed bool) {
	ok = makeInvariant(in, l, &changed)
	return ok, changed
}

func makeInvariant(in *ir.Instr, l *Loop, changed *bool) bool {
	if !l.Contains(in) {
		return true
	}
	if !speculable(in) {
		return false
	}
	ph := l.Preheader()
	if ph == nil {
		return false
	}
	for _, v := range in.Operands() {
		def, isInstr := v.(*ir.Instr)
		if !isInstr {
			continue // constants, globals, params
		}
		if !makeInvariant(def, l, changed) {
			return false
		}
	}
	ph.Append(in)
	*changed = true
	return true
}

// speculable reports whether executing the instruction on a path that
// would not originally reach it is harmless.
func speculable(in *ir.Instr) bool {
	if !in.Op.Pure() {
		return false
	}
	switch in.Op {
	case ir.OpDiv, ir.OpRem:
		// division traps on a zero divisor
		c, isConst := in.Operand(1).(*ir.Const)
		return isConst && c.Val != 0
	}
	return true
}
