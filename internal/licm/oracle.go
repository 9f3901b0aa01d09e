package licm

import (
	"lift/internal/analysis"
	"lift/internal/ir"
)

// hoistDecision is the safety oracle's answer for one load. SawStore
// reports whether the scan met a store that could alias an unknown
// address; the driver accumulates it to classify the loop, instead of
// the oracle mutating shared state.
type hoistDecision struct {
	Safe     bool
	SawStore bool
}

// canHoist decides whether a load may be moved to the loop preheader.
// Conditions, in order: the load must not be volatile; the loop must
// contain no call (a call may write anything); then the address is
// classified. A constant or out-of-loop stack slot is safe unless
// some store in the loop targets the same address. Any other address
// is treated as escaping: it is safe only when the loop is entirely
// store-free, the address itself is loop-invariant, and the load's
// block dominates every exiting block.
func (p *Pass) canHoist(l *analysis.Loop, in *ir.Instr, dom *analysis.DomTree) hoistDecision {
	var d hoistDecision

	if in.Volatile {
		return d
	}

	for _, bb := range l.Blocks() {
		for _, inst := range bb.Instrs() {
			if inst.Op == ir.OpCall {
				if p.prevCallLoop != l {
					p.prevCallLoop = l
					p.Stats.Incr(StatLoopsWithCall)
				}
				return d
			}
		}
	}

	addr, _ := in.Addr()

	if isNonEscaping(addr) {
		// Constant or stack-slot address: only a store to the very
		// same address conflicts. A store to an address we cannot
		// classify is remembered but does not by itself reject.
		for _, bb := range l.Blocks() {
			for _, inst := range bb.Instrs() {
				if inst.Op != ir.OpStore {
					continue
				}
				stAddr, _ := inst.Addr()
				if !isNonEscaping(stAddr) {
					d.SawStore = true
				}
				if sameAddress(stAddr, addr) {
					d.SawStore = true
					return d
				}
			}
		}

		if alloca, ok := addr.(*ir.Instr); ok {
			// The slot must be allocated outside the loop, otherwise
			// its address is a fresh definition every iteration.
			if l.Contains(alloca) {
				return d
			}
		}

		d.Safe = true
		return d
	}

	// Escaping address: any store in the loop may alias it.
	for _, bb := range l.Blocks() {
		for _, inst := range bb.Instrs() {
			if inst.Op == ir.OpStore {
				d.SawStore = true
				return d
			}
		}
	}

	if def, ok := addr.(*ir.Instr); ok && l.Contains(def) {
		return d
	}

	// Hoisting must not introduce a read on a path that skipped it:
	// the load's block has to dominate every loop exit.
	for _, bb := range l.Blocks() {
		if l.IsExiting(bb) && !dom.Dominates(in.Block().ID, bb.ID) {
			return d
		}
	}

	d.Safe = true
	return d
}

// sameAddress reports whether two address operands name the same
// location. Instructions and parameters are identified by node;
// constants compare by value and globals by symbol, since the parser
// and the bitcode decoder materialize a fresh node per occurrence.
func sameAddress(a, b ir.Value) bool {
	if a == b {
		return true
	}
	switch av := a.(type) {
	case *ir.Const:
		bv, ok := b.(*ir.Const)
		return ok && av.Val == bv.Val
	case *ir.Global:
		bv, ok := b.(*ir.Global)
		return ok && av.Sym == bv.Sym
	}
	return false
}

// isNonEscaping reports whether the address is provably confined: a
// compile-time constant, a global symbol, or a stack slot. Anything
// else, including operands that cannot be classified, is treated as
// escaping.
func isNonEscaping(addr ir.Value) bool {
	switch v := addr.(type) {
	case *ir.Const, *ir.Global:
		return true
	case *ir.Instr:
		return v.Op == ir.OpAlloca
	}
	return false
}
