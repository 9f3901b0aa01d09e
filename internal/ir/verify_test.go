package ir_test

import (
	"strings"
	"testing"

	"lift/internal/ir"
)

func TestVerifyUnterminatedBlock(t *testing.T) {
	m := &ir.Module{Name: "t"}
	f := m.AddFunc("f")
	bb := f.NewBlock("entry")
	f.Entry = bb.ID

	err := ir.Verify(m)
	if err == nil || !strings.Contains(err.Error(), "unterminated") {
		t.Fatalf("expected unterminated block error, got %v", err)
	}
}

func TestVerifyBranchTargetRange(t *testing.T) {
	m := &ir.Module{Name: "t"}
	f := m.AddFunc("f")
	bb := f.NewBlock("entry")
	f.Entry = bb.ID
	bb.Term.Kind = ir.TermBr
	bb.Term.Br.Target = 7

	err := ir.Verify(m)
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing target error, got %v", err)
	}
}

func TestVerifyDanglingOperand(t *testing.T) {
	m := &ir.Module{Name: "t"}
	f := m.AddFunc("f")
	bb := f.NewBlock("entry")
	f.Entry = bb.ID

	// a deliberately never attached to any block
	a := ir.NewInstr(ir.OpAlloca, "a")
	load := ir.NewInstr(ir.OpLoad, "v", a)
	bb.Append(load)
	bb.Term.Kind = ir.TermRet

	err := ir.Verify(m)
	if err == nil || !strings.Contains(err.Error(), "detached") {
		t.Fatalf("expected detached reference error, got %v", err)
	}
}

func TestVerifyDeclarationSkipped(t *testing.T) {
	m := &ir.Module{Name: "t"}
	m.AddFunc("decl")
	if err := ir.Verify(m); err != nil {
		t.Fatalf("declarations must not be verified: %v", err)
	}
}
