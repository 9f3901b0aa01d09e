package licm

import (
	"lift/internal/analysis"
	"lift/internal/ir"
)

// runOnLoop makes one hoisting sweep over the loop's blocks,
// sub-loop blocks included. It returns true when the loop graph
// changed in a way that may expose further opportunities, which is
// the caller's fixpoint signal.
func (p *Pass) runOnLoop(l *analysis.Loop, dom *analysis.DomTree) bool {
	ph := l.Preheader()
	if ph == nil {
		// no single safe insertion point
		return false
	}

	changed := false
	hoistedLoad := false
	sawStore := false

	for _, bb := range l.Blocks() {
		// Iterate a snapshot: hoists below move or delete
		// instructions from the block mid-scan.
		snapshot := append([]*ir.Instr(nil), bb.Instrs()...)
		for _, in := range snapshot {
			if in.Block() != bb {
				continue // moved out by an earlier hoist this sweep
			}
			switch in.Op {
			case ir.OpLoad:
				d := p.canHoist(l, in, dom)
				if d.SawStore {
					sawStore = true
				}
				if !d.Safe {
					continue
				}
				hoistedLoad = true
				clone := in.Clone()
				ph.Append(clone)
				in.ReplaceAllUsesWith(clone)
				if p.anyUserInLoop(l, in) {
					changed = true
				}
				in.RemoveFromParent()
				p.Stats.Incr(StatLoadHoist)

			case ir.OpStore:
				// never hoisted

			default:
				ok, moved := analysis.MakeLoopInvariant(in, l)
				if ok && moved {
					p.Stats.Incr(StatBasic)
					if p.anyUserInLoop(l, in) {
						changed = true
					}
				}
			}
		}
	}

	// Classify the loop as store-free once, on its first sweep only,
	// so fixpoint reruns do not double count.
	if p.prevStoreLoop != l {
		p.prevStoreLoop = l
		if hoistedLoad && !sawStore {
			p.Stats.Incr(StatLoopsNoStores)
		}
	}

	return changed
}

// anyUserInLoop reports whether some user of the instruction's result
// still sits inside the loop. For a redirected load this should find
// nothing; for a moved invariant computation it is the signal that
// dependent instructions remain to be re-examined.
func (p *Pass) anyUserInLoop(l *analysis.Loop, in *ir.Instr) bool {
	for _, u := range in.Users() {
		if l.Contains(u) {
			return true
		}
	}
	// Terminators carry no use edges; scan them directly so a value
	// consumed only by an in-loop branch or return still counts.
	for _, bb := range l.Blocks() {
		for _, v := range bb.Term.Values(nil) {
			if v == in {
				return true
			}
		}
	}
	return false
}
