package ir

// Op enumerates instruction opcodes.
type Op uint8

const (
	// OpAlloca reserves a stack slot; its result is the slot address.
	OpAlloca Op = iota
	// OpLoad reads from the address in operand 0.
	OpLoad
	// OpStore writes operand 0 to the address in operand 1.
	OpStore
	// OpCall invokes a function with the operands as arguments.
	OpCall
	// OpAdd and the ops through OpShr are integer arithmetic.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	// OpCmp compares operands 0 and 1 under a predicate.
	OpCmp
	// OpCast converts operand 0.
	OpCast
	// OpPhi selects among incoming values by predecessor block.
	OpPhi
)

var opNames = [...]string{
	OpAlloca: "alloca",
	OpLoad:   "load",
	OpStore:  "store",
	OpCall:   "call",
	OpAdd:    "add",
	OpSub:    "sub",
	OpMul:    "mul",
	OpDiv:    "div",
	OpRem:    "rem",
	OpAnd:    "and",
	OpOr:     "or",
	OpXor:    "xor",
	OpShl:    "shl",
	OpShr:    "shr",
	OpCmp:    "cmp",
	OpCast:   "cast",
	OpPhi:    "phi",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "op?"
}

// Pure reports whether the op is a side-effect-free computation whose
// result depends only on its operands. Loads, stores, calls, allocas
// and phis are excluded: they touch memory, control flow state, or
// per-iteration definitions.
func (op Op) Pure() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpRem, OpAnd, OpOr, OpXor, OpShl, OpShr, OpCmp, OpCast:
		return true
	}
	return false
}

// HasResult reports whether instructions with this op define a value.
// Calls may or may not bind a result; that is per-instruction.
func (op Op) HasResult() bool {
	return op != OpStore
}

// Pred enumerates comparison predicates for OpCmp.
type Pred uint8

const (
	PredEQ Pred = iota
	PredNE
	PredLT
	PredLE
	PredGT
	PredGE
)

var predNames = [...]string{
	PredEQ: "eq",
	PredNE: "ne",
	PredLT: "lt",
	PredLE: "le",
	PredGT: "gt",
	PredGE: "ge",
}

func (p Pred) String() string {
	if int(p) < len(predNames) {
		return predNames[p]
	}
	return "pred?"
}

// PredFromString maps a textual predicate to its Pred value.
func PredFromString(s string) (Pred, bool) {
	for i, name := range predNames {
		if name == s {
			return Pred(i), true
		}
	}
	return 0, false
}
