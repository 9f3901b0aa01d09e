package ir

// FuncID indexes a function within its module.
type FuncID int32

// Func is an ordered block sequence with a designated entry. A
// function with no blocks is a declaration and is excluded from
// analysis.
type Func struct {
	ID     FuncID
	Name   string
	Params []*Param
	Blocks []*Block
	Entry  BlockID
}

// Empty reports whether the function is a declaration.
func (f *Func) Empty() bool { return len(f.Blocks) == 0 }

// Block returns the block with the given ID, or nil.
func (f *Func) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(f.Blocks) {
		return nil
	}
	return f.Blocks[id]
}

// NewBlock appends an empty labeled block and returns it.
func (f *Func) NewBlock(label string) *Block {
	b := &Block{
		ID:    BlockID(int32(len(f.Blocks))),
		Label: label,
		fn:    f,
	}
	f.Blocks = append(f.Blocks, b)
	return b
}

// NumInstrs counts instructions across all blocks.
func (f *Func) NumInstrs() int {
	n := 0
	for _, bb := range f.Blocks {
		n += len(bb.instrs)
	}
	return n
}

// Preds returns, per block, the predecessor block IDs.
func (f *Func) Preds() [][]BlockID {
	preds := make([][]BlockID, len(f.Blocks))
	for _, bb := range f.Blocks {
		for _, s := range bb.Succs() {
			if s >= 0 && int(s) < len(f.Blocks) {
				preds[s] = append(preds[s], bb.ID)
			}
		}
	}
	return preds
}
