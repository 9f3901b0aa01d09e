package analysis_test

import (
	"testing"

	"lift/internal/analysis"
	"lift/internal/ir"
)

// buildDiamond returns a function shaped:
//
//	entry -> left, right ; left -> join ; right -> join ; join -> ret
func buildDiamond(t *testing.T) *ir.Func {
	t.Helper()
	m := &ir.Module{Name: "t"}
	f := m.AddFunc("f")
	entry := f.NewBlock("entry")
	left := f.NewBlock("left")
	right := f.NewBlock("right")
	join := f.NewBlock("join")
	f.Entry = entry.ID

	cond := ir.NewInstr(ir.OpCmp, "c", &ir.Const{Val: 0}, &ir.Const{Val: 1})
	entry.Append(cond)
	entry.Term.Kind = ir.TermCondBr
	entry.Term.CondBr.Cond = cond
	entry.Term.CondBr.Then = left.ID
	entry.Term.CondBr.Else = right.ID

	left.Term.Kind = ir.TermBr
	left.Term.Br.Target = join.ID
	right.Term.Kind = ir.TermBr
	right.Term.Br.Target = join.ID
	join.Term.Kind = ir.TermRet
	return f
}

func TestDomTreeDiamond(t *testing.T) {
	f := buildDiamond(t)
	dom := analysis.ComputeDomTree(f)

	entry, left, right, join := f.Blocks[0].ID, f.Blocks[1].ID, f.Blocks[2].ID, f.Blocks[3].ID

	for _, b := range []ir.BlockID{entry, left, right, join} {
		if !dom.Dominates(entry, b) {
			t.Errorf("entry should dominate bb%d", b)
		}
		if !dom.Dominates(b, b) {
			t.Errorf("bb%d should dominate itself", b)
		}
	}
	if dom.Dominates(left, join) || dom.Dominates(right, join) {
		t.Errorf("neither diamond arm dominates the join")
	}
	if got := dom.Idom(join); got != entry {
		t.Errorf("idom(join) = bb%d, want entry", got)
	}
	if dom.Dominates(join, entry) {
		t.Errorf("join must not dominate entry")
	}
}

func TestDomTreeUnreachable(t *testing.T) {
	f := buildDiamond(t)
	dead := f.NewBlock("dead")
	dead.Term.Kind = ir.TermRet

	dom := analysis.ComputeDomTree(f)
	if dom.Dominates(f.Entry, dead.ID) {
		t.Errorf("unreachable block should not be dominated")
	}
	if dom.Dominates(dead.ID, f.Entry) {
		t.Errorf("unreachable block should dominate nothing")
	}
}
