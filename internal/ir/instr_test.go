package ir_test

import (
	"testing"

	"lift/internal/ir"
)

// TestDefUseLinks tests that operand edges maintain the user set,
// including multiplicity for repeated operands.
func TestDefUseLinks(t *testing.T) {
	x := ir.NewInstr(ir.OpAlloca, "x")
	sum := ir.NewInstr(ir.OpAdd, "s", x, x)

	if !x.HasUsers() {
		t.Fatalf("x should have users")
	}
	users := x.Users()
	if len(users) != 1 || users[0] != sum {
		t.Fatalf("x users = %v, want [s]", users)
	}

	// Dropping one of the two uses must keep the user registered.
	sum.SetOperand(0, &ir.Const{Val: 1})
	if !x.HasUsers() {
		t.Fatalf("x should still have one use left")
	}
	sum.SetOperand(1, &ir.Const{Val: 2})
	if x.HasUsers() {
		t.Fatalf("x should have no users after both operands replaced")
	}
}

func TestReplaceAllUsesWith(t *testing.T) {
	m := &ir.Module{Name: "t"}
	f := m.AddFunc("f")
	bb := f.NewBlock("entry")
	f.Entry = bb.ID

	a := ir.NewInstr(ir.OpAlloca, "a")
	bb.Append(a)
	load := ir.NewInstr(ir.OpLoad, "v", a)
	bb.Append(load)
	use := ir.NewInstr(ir.OpAdd, "s", load, &ir.Const{Val: 1})
	bb.Append(use)
	bb.Term.Kind = ir.TermRet
	bb.Term.Ret.HasValue = true
	bb.Term.Ret.Value = load

	clone := load.Clone()
	bb.Append(clone)
	load.ReplaceAllUsesWith(clone)

	if use.Operand(0) != clone {
		t.Errorf("operand not redirected to clone")
	}
	if bb.Term.Ret.Value != clone {
		t.Errorf("terminator reference not redirected to clone")
	}
	if load.HasUsers() {
		t.Errorf("original still has users after redirect")
	}

	load.RemoveFromParent()
	if load.Block() != nil {
		t.Errorf("removed instruction still attached")
	}
	if err := ir.Verify(m); err != nil {
		t.Errorf("module invalid after redirect and removal: %v", err)
	}
}

func TestCloneIsDetached(t *testing.T) {
	a := ir.NewInstr(ir.OpAlloca, "a")
	load := ir.NewInstr(ir.OpLoad, "v", a)
	load.Volatile = true

	clone := load.Clone()
	if clone.Block() != nil {
		t.Errorf("clone starts attached")
	}
	if clone.HasUsers() {
		t.Errorf("clone starts with users")
	}
	if !clone.Volatile {
		t.Errorf("clone dropped the volatile flag")
	}
	if clone.Operand(0) != a {
		t.Errorf("clone operand differs")
	}
	// Both the original and the clone now use a.
	if got := len(a.Users()); got != 2 {
		t.Errorf("alloca has %d users, want 2", got)
	}
}

func TestAppendMovesBetweenBlocks(t *testing.T) {
	m := &ir.Module{Name: "t"}
	f := m.AddFunc("f")
	bb0 := f.NewBlock("bb0")
	bb1 := f.NewBlock("bb1")
	f.Entry = bb0.ID

	in := ir.NewInstr(ir.OpAlloca, "a")
	bb0.Append(in)
	bb1.Append(in)

	if len(bb0.Instrs()) != 0 {
		t.Errorf("instruction still listed in old block")
	}
	if in.Block() != bb1 {
		t.Errorf("instruction block link not moved")
	}
}
