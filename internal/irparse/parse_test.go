package irparse_test

import (
	"strings"
	"testing"

	"lift/internal/diag"
	"lift/internal/ir"
	"lift/internal/irparse"
)

const sampleProgram = `module sample
global @g

fn @leaf(%n)

fn @main(%x) {
entry:
  %a = alloca
  store %x, %a
  br loop
loop:
  %i = phi [entry, 0], [loop, %i2]
  %v = load %a
  %w = load volatile @g
  %i2 = add %i, 1
  %q = call @leaf(%i2, @g)
  %c = cmp lt %i2, %x
  condbr %c, loop, exit
exit:
  ret %v
}
`

func parse(t *testing.T, src string) (*ir.Module, *diag.Bag, bool) {
	t.Helper()
	bag := diag.NewBag(100)
	m, ok := irparse.ParseModule("test.lir", src, bag)
	return m, bag, ok
}

func mustParse(t *testing.T, src string) *ir.Module {
	t.Helper()
	m, bag, ok := parse(t, src)
	if !ok {
		for _, d := range bag.Items() {
			t.Logf("%s: %s", d.Pos, d.Message)
		}
		t.Fatalf("parse failed")
	}
	return m
}

func TestParseSampleProgram(t *testing.T) {
	m := mustParse(t, sampleProgram)

	if m.Name != "sample" {
		t.Errorf("module name = %q", m.Name)
	}
	if m.Global("g") == nil {
		t.Errorf("global @g missing")
	}
	if leaf := m.Func("leaf"); leaf == nil || !leaf.Empty() {
		t.Errorf("@leaf should be a declaration")
	}

	f := m.Func("main")
	if f == nil || len(f.Blocks) != 3 {
		t.Fatalf("@main should have 3 blocks")
	}
	if err := ir.Verify(m); err != nil {
		t.Fatalf("parsed module invalid: %v", err)
	}

	loop := f.Blocks[1]
	phi := loop.Instrs()[0]
	if phi.Op != ir.OpPhi || phi.NumOperands() != 2 {
		t.Fatalf("expected 2-arm phi, got %s", ir.FormatInstr(phi))
	}
	// Second arm forward-references %i2 defined below the phi.
	if def, ok := phi.Operand(1).(*ir.Instr); !ok || def.Ident != "i2" {
		t.Errorf("phi arm did not resolve forward reference")
	}
	vol := loop.Instrs()[2]
	if !vol.Volatile {
		t.Errorf("volatile flag lost on %s", ir.FormatInstr(vol))
	}
	call := loop.Instrs()[4]
	if call.Op != ir.OpCall || call.Callee != "leaf" || call.NumOperands() != 2 {
		t.Errorf("call parsed wrong: %s", ir.FormatInstr(call))
	}
}

func TestPrintParseRoundTrip(t *testing.T) {
	m := mustParse(t, sampleProgram)

	var first strings.Builder
	if err := ir.DumpModule(&first, m); err != nil {
		t.Fatalf("dump: %v", err)
	}

	m2 := mustParse(t, first.String())
	var second strings.Builder
	if err := ir.DumpModule(&second, m2); err != nil {
		t.Fatalf("dump: %v", err)
	}

	if first.String() != second.String() {
		t.Errorf("round trip not stable:\n--- first\n%s\n--- second\n%s", first.String(), second.String())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "undefined value",
			src:  "fn @f() {\nentry:\n  %v = add %nope, 1\n  ret\n}\n",
			want: "undefined value",
		},
		{
			name: "unterminated block",
			src:  "fn @f() {\nentry:\n  %a = alloca\n}\n",
			want: "not terminated",
		},
		{
			name: "unknown opcode",
			src:  "fn @f() {\nentry:\n  %a = frobnicate 1, 2\n  ret\n}\n",
			want: "unknown opcode",
		},
		{
			name: "branch to unknown block",
			src:  "fn @f() {\nentry:\n  br nowhere\n}\n",
			want: "unknown block",
		},
		{
			name: "undeclared global",
			src:  "fn @f() {\nentry:\n  %v = load @nope\n  ret\n}\n",
			want: "undeclared global",
		},
		{
			name: "redefined result",
			src:  "fn @f() {\nentry:\n  %a = alloca\n  %a = alloca\n  ret\n}\n",
			want: "redefined",
		},
		{
			name: "missing closing brace",
			src:  "fn @f() {\nentry:\n  ret\n",
			want: "missing closing '}'",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, bag, ok := parse(t, tc.src)
			if ok {
				t.Fatalf("parse unexpectedly succeeded: %v", m)
			}
			found := false
			for _, d := range bag.Items() {
				if strings.Contains(d.Message, tc.want) {
					found = true
					if d.Pos.Line == 0 {
						t.Errorf("diagnostic lacks a line number")
					}
				}
			}
			if !found {
				t.Errorf("no diagnostic containing %q; got %v", tc.want, bag.Items())
			}
		})
	}
}
