package licm

import (
	"lift/internal/analysis"
	"lift/internal/ir"
)

// Run performs LICM over every function of the module, in place.
// Loop structure and dominators are computed fresh per function and
// stay fixed for the duration of the run; only instructions move.
func (p *Pass) Run(m *ir.Module) {
	for _, f := range m.Funcs {
		if f.Empty() {
			continue
		}
		dom := analysis.ComputeDomTree(f)
		li := analysis.ComputeLoopInfo(f, dom)

		for _, loop := range li.Top {
			if loop.Preheader() == nil {
				p.Stats.Incr(StatNoPreheader)
				continue
			}

			// Direct sub-loops first, each to its own fixpoint. This
			// is deliberately one level of nesting, not a full
			// post-order: deeper descendants are reached through
			// their ancestors' member blocks.
			for _, sub := range loop.SubLoops() {
				p.Stats.Incr(StatNumLoops)
				for p.runOnLoop(sub, dom) {
				}
			}

			p.Stats.Incr(StatNumLoops)
			for p.runOnLoop(loop, dom) {
			}
		}
	}

	p.collectLoopStats(m)
}

// collectLoopStats is a read-only second traversal counting loops
// that contain no load at all.
func (p *Pass) collectLoopStats(m *ir.Module) {
	for _, f := range m.Funcs {
		if f.Empty() {
			continue
		}
		dom := analysis.ComputeDomTree(f)
		li := analysis.ComputeLoopInfo(f, dom)

		for _, loop := range li.Top {
			containsLoad := false
		scan:
			for _, bb := range loop.Blocks() {
				for _, in := range bb.Instrs() {
					if in.Op == ir.OpLoad {
						containsLoad = true
						break scan
					}
				}
			}
			if !containsLoad {
				p.Stats.Incr(StatLoopsNoLoads)
			}
		}
	}
}

// Summarize counts functions with at least one instruction, and all
// instructions, loads and stores in the module.
func (p *Pass) Summarize(m *ir.Module) {
	for _, f := range m.Funcs {
		if !f.Empty() {
			p.Stats.Incr(StatFunctions)
		}
		for _, bb := range f.Blocks {
			for _, in := range bb.Instrs() {
				p.Stats.Incr(StatInstructions)
				switch in.Op {
				case ir.OpLoad:
					p.Stats.Incr(StatLoads)
				case ir.OpStore:
					p.Stats.Incr(StatStores)
				}
			}
		}
	}
}
