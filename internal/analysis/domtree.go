// Package analysis provides the CFG queries the optimizer consumes:
// dominator trees, the loop forest, and generic operand-invariance
// hoisting.
package analysis

import "lift/internal/ir"

// DomTree answers dominance queries for one function. Unreachable
// blocks dominate nothing and are dominated by nothing.
type DomTree struct {
	fn   *ir.Func
	idom []ir.BlockID // immediate dominator per block; entry maps to itself
	rpo  []int        // reverse postorder number per block; -1 if unreachable
}

// ComputeDomTree builds the dominator tree using the iterative
// dataflow algorithm of Cooper, Harvey and Kennedy over reverse
// postorder.
func ComputeDomTree(f *ir.Func) *DomTree {
	t := &DomTree{
		fn:   f,
		idom: make([]ir.BlockID, len(f.Blocks)),
		rpo:  make([]int, len(f.Blocks)),
	}
	for i := range t.idom {
		t.idom[i] = ir.NoBlockID
		t.rpo[i] = -1
	}
	if f.Empty() {
		return t
	}

	order := reversePostOrder(f)
	for n, id := range order {
		t.rpo[id] = n
	}

	preds := f.Preds()
	entry := f.Entry
	t.idom[entry] = entry

	intersect := func(a, b ir.BlockID) ir.BlockID {
		for a != b {
			for t.rpo[a] > t.rpo[b] {
				a = t.idom[a]
			}
			for t.rpo[b] > t.rpo[a] {
				b = t.idom[b]
			}
		}
		return a
	}

	changed := true
	for changed {
		changed = false
		for _, id := range order {
			if id == entry {
				continue
			}
			newIdom := ir.NoBlockID
			for _, p := range preds[id] {
				if t.idom[p] == ir.NoBlockID {
					continue
				}
				if newIdom == ir.NoBlockID {
					newIdom = p
					continue
				}
				newIdom = intersect(p, newIdom)
			}
			if newIdom != ir.NoBlockID && t.idom[id] != newIdom {
				t.idom[id] = newIdom
				changed = true
			}
		}
	}
	return t
}

// Idom returns the immediate dominator of b, or NoBlockID for the
// entry and unreachable blocks.
func (t *DomTree) Idom(b ir.BlockID) ir.BlockID {
	if int(b) >= len(t.idom) || b < 0 {
		return ir.NoBlockID
	}
	if b == t.fn.Entry {
		return ir.NoBlockID
	}
	return t.idom[b]
}

// Dominates reports whether every path from the entry to b passes
// through a. A block dominates itself.
func (t *DomTree) Dominates(a, b ir.BlockID) bool {
	if a < 0 || b < 0 || int(a) >= len(t.idom) || int(b) >= len(t.idom) {
		return false
	}
	if t.idom[a] == ir.NoBlockID || t.idom[b] == ir.NoBlockID {
		return false // unreachable
	}
	for {
		if b == a {
			return true
		}
		next := t.idom[b]
		if next == b {
			return false // reached entry
		}
		b = next
	}
}

func reversePostOrder(f *ir.Func) []ir.BlockID {
	visited := make([]bool, len(f.Blocks))
	order := make([]ir.BlockID, 0, len(f.Blocks))

	var dfs func(id ir.BlockID)
	dfs = func(id ir.BlockID) {
		if id < 0 || int(id) >= len(f.Blocks) || visited[id] {
			return
		}
		visited[id] = true
		for _, s := range f.Blocks[id].Succs() {
			dfs(s)
		}
		order = append(order, id)
	}
	dfs(f.Entry)

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
