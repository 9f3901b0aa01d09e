package analysis

import (
	"sort"

	"lift/internal/ir"
)

// Loop is a natural loop. The member set is flat: it includes every
// block of every nested sub-loop, so containment queries are O(1)
// regardless of nesting depth.
type Loop struct {
	fn     *ir.Func
	header ir.BlockID

	members []bool
	blocks  []*ir.Block // members ordered by block ID
	subs    []*Loop
	parent  *Loop
}

// LoopInfo is the loop forest of one function.
type LoopInfo struct {
	// Top holds the outermost loops, ordered by header block ID.
	Top []*Loop
}

// Header returns the loop header block.
func (l *Loop) Header() *ir.Block { return l.fn.Block(l.header) }

// Blocks returns every member block, including sub-loop blocks.
func (l *Loop) Blocks() []*ir.Block { return l.blocks }

// SubLoops returns the direct child loops.
func (l *Loop) SubLoops() []*Loop { return l.subs }

// Parent returns the immediately enclosing loop, or nil.
func (l *Loop) Parent() *Loop { return l.parent }

// ContainsBlock reports whether the block is a member of the loop or
// any nested sub-loop.
func (l *Loop) ContainsBlock(id ir.BlockID) bool {
	return id >= 0 && int(id) < len(l.members) && l.members[id]
}

// Contains reports whether the instruction lives inside the loop or
// any nested sub-loop. Detached instructions are outside every loop.
func (l *Loop) Contains(in *ir.Instr) bool {
	if in == nil || in.Block() == nil {
		return false
	}
	return l.ContainsBlock(in.Block().ID)
}

// IsExiting reports whether the member block has a successor outside
// the loop.
func (l *Loop) IsExiting(b *ir.Block) bool {
	if b == nil || !l.ContainsBlock(b.ID) {
		return false
	}
	for _, s := range b.Succs() {
		if !l.ContainsBlock(s) {
			return true
		}
	}
	return false
}

// Preheader returns the unique out-of-loop predecessor of the header
// whose sole successor is the header, or nil when the loop has no
// such block.
func (l *Loop) Preheader() *ir.Block {
	preds := l.fn.Preds()
	cand := ir.NoBlockID
	for _, p := range preds[l.header] {
		if l.ContainsBlock(p) {
			continue
		}
		if cand != ir.NoBlockID {
			return nil // two entries from outside
		}
		cand = p
	}
	if cand == ir.NoBlockID {
		return nil
	}
	bb := l.fn.Block(cand)
	if succs := bb.Succs(); len(succs) != 1 || succs[0] != l.header {
		return nil
	}
	return bb
}

// ComputeLoopInfo discovers natural loops from back edges in the
// dominator tree and arranges them into a forest.
func ComputeLoopInfo(f *ir.Func, dom *DomTree) *LoopInfo {
	li := &LoopInfo{}
	if f.Empty() {
		return li
	}

	preds := f.Preds()

	// One loop per header; a header with several back edges gets the
	// union of their natural loops.
	byHeader := make(map[ir.BlockID]*Loop)
	var headers []ir.BlockID
	for _, bb := range f.Blocks {
		for _, h := range bb.Succs() {
			if !dom.Dominates(h, bb.ID) {
				continue
			}
			loop, ok := byHeader[h]
			if !ok {
				loop = &Loop{
					fn:      f,
					header:  h,
					members: make([]bool, len(f.Blocks)),
				}
				loop.members[h] = true
				byHeader[h] = loop
				headers = append(headers, h)
			}
			collectNaturalLoop(loop, bb.ID, preds)
		}
	}

	loops := make([]*Loop, 0, len(headers))
	sort.Slice(headers, func(i, j int) bool { return headers[i] < headers[j] })
	for _, h := range headers {
		loop := byHeader[h]
		for id := range loop.members {
			if loop.members[id] {
				loop.blocks = append(loop.blocks, f.Blocks[id])
			}
		}
		loops = append(loops, loop)
	}

	nestLoops(li, loops)
	return li
}

// collectNaturalLoop walks predecessors from the back edge source
// until the header, marking members.
func collectNaturalLoop(loop *Loop, latch ir.BlockID, preds [][]ir.BlockID) {
	stack := []ir.BlockID{latch}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if loop.members[id] {
			continue
		}
		loop.members[id] = true
		for _, p := range preds[id] {
			stack = append(stack, p)
		}
	}
}

// nestLoops assigns each loop the smallest strictly containing loop
// as parent and fills the Top list.
func nestLoops(li *LoopInfo, loops []*Loop) {
	size := func(l *Loop) int { return len(l.blocks) }
	for _, inner := range loops {
		var best *Loop
		for _, outer := range loops {
			if outer == inner || !outer.ContainsBlock(inner.header) {
				continue
			}
			if best == nil || size(outer) < size(best) {
				best = outer
			}
		}
		inner.parent = best
	}
	for _, l := range loops {
		if l.parent == nil {
			li.Top = append(li.Top, l)
		} else {
			l.parent.subs = append(l.parent.subs, l)
		}
	}
}
