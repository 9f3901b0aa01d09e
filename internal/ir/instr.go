package ir

// Instr is an instruction node. Operand edges are mirrored by use
// edges: while an instruction references another instruction's result,
// it is registered in that instruction's user set. All operand
// mutation must go through the methods below so the two stay in sync.
type Instr struct {
	Op Op

	// Ident is the result name without the leading '%'. Empty for
	// stores and for calls whose result is unused.
	Ident string

	// Volatile marks loads that must not be reordered or eliminated.
	Volatile bool

	// Callee is the target symbol for OpCall.
	Callee string

	// Pred is the comparison predicate for OpCmp.
	Pred Pred

	// Incoming holds the predecessor block per operand for OpPhi.
	Incoming []BlockID

	block    *Block
	operands []Value

	// users counts uses per user instruction; an instruction using the
	// same result twice (add %x, %x) holds count 2.
	users map[*Instr]int
}

// NewInstr builds a detached instruction and links its operand uses.
func NewInstr(op Op, ident string, operands ...Value) *Instr {
	i := &Instr{Op: op, Ident: ident}
	for _, v := range operands {
		i.appendOperand(v)
	}
	return i
}

// Block returns the owning block, or nil while detached.
func (i *Instr) Block() *Block { return i.block }

// Parent returns the owning function, or nil while detached.
func (i *Instr) Parent() *Func {
	if i.block == nil {
		return nil
	}
	return i.block.fn
}

func (i *Instr) Ref() string { return "%" + i.Ident }
func (i *Instr) valueNode()  {}

// NumOperands returns the operand count.
func (i *Instr) NumOperands() int { return len(i.operands) }

// Operand returns the n-th operand.
func (i *Instr) Operand(n int) Value { return i.operands[n] }

// Operands returns the operand slice. Callers must not mutate it;
// use SetOperand.
func (i *Instr) Operands() []Value { return i.operands }

// SetOperand replaces the n-th operand, maintaining use edges.
func (i *Instr) SetOperand(n int, v Value) {
	if old, ok := i.operands[n].(*Instr); ok {
		old.removeUse(i)
	}
	i.operands[n] = v
	if def, ok := v.(*Instr); ok {
		def.addUse(i)
	}
}

// AppendOperand adds an operand at the end, maintaining use edges.
func (i *Instr) AppendOperand(v Value) {
	i.appendOperand(v)
}

func (i *Instr) appendOperand(v Value) {
	i.operands = append(i.operands, v)
	if def, ok := v.(*Instr); ok {
		def.addUse(i)
	}
}

// AddIncoming appends a phi arm.
func (i *Instr) AddIncoming(from BlockID, v Value) {
	i.Incoming = append(i.Incoming, from)
	i.appendOperand(v)
}

// Addr returns the address operand of a load or store, and true if
// the op has one.
func (i *Instr) Addr() (Value, bool) {
	switch i.Op {
	case OpLoad:
		return i.operands[0], true
	case OpStore:
		return i.operands[1], true
	}
	return nil, false
}

func (i *Instr) addUse(user *Instr) {
	if i.users == nil {
		i.users = make(map[*Instr]int)
	}
	i.users[user]++
}

func (i *Instr) removeUse(user *Instr) {
	if i.users == nil {
		return
	}
	if i.users[user] > 1 {
		i.users[user]--
		return
	}
	delete(i.users, user)
}

// HasUsers reports whether any instruction uses this result.
func (i *Instr) HasUsers() bool { return len(i.users) > 0 }

// Users returns the distinct user instructions, in no particular
// order.
func (i *Instr) Users() []*Instr {
	if len(i.users) == 0 {
		return nil
	}
	out := make([]*Instr, 0, len(i.users))
	for u := range i.users {
		out = append(out, u)
	}
	return out
}

// ReplaceAllUsesWith rewires every use of i, including terminator
// references in the owning function, to v. Afterwards i has no users.
func (i *Instr) ReplaceAllUsesWith(v Value) {
	for _, u := range i.Users() {
		for n := range u.operands {
			if u.operands[n] == i {
				u.SetOperand(n, v)
			}
		}
	}
	if f := i.Parent(); f != nil {
		for _, bb := range f.Blocks {
			bb.Term.replaceValue(i, v)
		}
	}
}

// RemoveFromParent detaches i from its block and releases its operand
// uses. Uses of i's result are untouched: callers redirect them first
// via ReplaceAllUsesWith.
func (i *Instr) RemoveFromParent() {
	if i.block != nil {
		i.block.remove(i)
		i.block = nil
	}
	for _, v := range i.operands {
		if def, ok := v.(*Instr); ok {
			def.removeUse(i)
		}
	}
	i.operands = nil
}

// Clone returns a detached copy of i with the same op, flags and
// operands. The clone starts with no users.
func (i *Instr) Clone() *Instr {
	c := &Instr{
		Op:       i.Op,
		Ident:    i.Ident,
		Volatile: i.Volatile,
		Callee:   i.Callee,
		Pred:     i.Pred,
	}
	if len(i.Incoming) > 0 {
		c.Incoming = append([]BlockID(nil), i.Incoming...)
	}
	for _, v := range i.operands {
		c.appendOperand(v)
	}
	return c
}
