package ir

// BlockID indexes a block within its function.
type BlockID int32

// NoBlockID marks an absent block reference.
const NoBlockID BlockID = -1

// Block is an ordered instruction sequence ended by a terminator.
type Block struct {
	ID    BlockID
	Label string
	Term  Terminator

	fn     *Func
	instrs []*Instr
}

// Func returns the owning function.
func (b *Block) Func() *Func { return b.fn }

// Instrs returns the instruction sequence. Callers must not mutate
// the slice; use Append/RemoveFromParent.
func (b *Block) Instrs() []*Instr { return b.instrs }

// Empty reports whether the block has no instructions.
func (b *Block) Empty() bool { return len(b.instrs) == 0 }

// Terminated reports whether the block ends in a control transfer.
func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}

// Append attaches a detached instruction at the end of the block,
// before the terminator.
func (b *Block) Append(i *Instr) {
	if i.block != nil {
		i.block.remove(i)
	}
	i.block = b
	b.instrs = append(b.instrs, i)
}

func (b *Block) remove(i *Instr) {
	for n, in := range b.instrs {
		if in == i {
			b.instrs = append(b.instrs[:n], b.instrs[n+1:]...)
			return
		}
	}
}

// Succs returns the successor block IDs.
func (b *Block) Succs() []BlockID {
	return b.Term.Succs(nil)
}
