package ir

import (
	"fmt"
	"io"
	"strings"
)

// DumpModule writes the textual form of a module. The output parses
// back through irparse.
func DumpModule(w io.Writer, m *Module) error {
	if w == nil || m == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "module %s\n", m.Name); err != nil {
		return err
	}
	for _, g := range m.Globals {
		if _, err := fmt.Fprintf(w, "global @%s\n", g.Sym); err != nil {
			return err
		}
	}
	for _, f := range m.Funcs {
		if err := dumpFunc(w, f); err != nil {
			return err
		}
	}
	return nil
}

func dumpFunc(w io.Writer, f *Func) error {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Ref()
	}
	if f.Empty() {
		_, err := fmt.Fprintf(w, "\nfn @%s(%s)\n", f.Name, strings.Join(params, ", "))
		return err
	}
	if _, err := fmt.Fprintf(w, "\nfn @%s(%s) {\n", f.Name, strings.Join(params, ", ")); err != nil {
		return err
	}
	for _, bb := range f.Blocks {
		if _, err := fmt.Fprintf(w, "%s:\n", bb.Label); err != nil {
			return err
		}
		for _, in := range bb.Instrs() {
			if _, err := fmt.Fprintf(w, "  %s\n", FormatInstr(in)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "  %s\n", formatTerm(f, &bb.Term)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

// FormatInstr renders a single instruction in textual IR form.
func FormatInstr(i *Instr) string {
	var sb strings.Builder
	if i.Op.HasResult() && i.Ident != "" {
		sb.WriteString(i.Ref())
		sb.WriteString(" = ")
	}
	switch i.Op {
	case OpAlloca:
		sb.WriteString("alloca")
	case OpLoad:
		sb.WriteString("load ")
		if i.Volatile {
			sb.WriteString("volatile ")
		}
		sb.WriteString(i.Operand(0).Ref())
	case OpStore:
		fmt.Fprintf(&sb, "store %s, %s", i.Operand(0).Ref(), i.Operand(1).Ref())
	case OpCall:
		sb.WriteString("call @")
		sb.WriteString(i.Callee)
		sb.WriteByte('(')
		for n, v := range i.Operands() {
			if n > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(v.Ref())
		}
		sb.WriteByte(')')
	case OpCmp:
		fmt.Fprintf(&sb, "cmp %s %s, %s", i.Pred, i.Operand(0).Ref(), i.Operand(1).Ref())
	case OpCast:
		fmt.Fprintf(&sb, "cast %s", i.Operand(0).Ref())
	case OpPhi:
		sb.WriteString("phi ")
		for n, v := range i.Operands() {
			if n > 0 {
				sb.WriteString(", ")
			}
			label := fmt.Sprintf("bb%d", i.Incoming[n])
			if f := i.Parent(); f != nil {
				if bb := f.Block(i.Incoming[n]); bb != nil {
					label = bb.Label
				}
			}
			fmt.Fprintf(&sb, "[%s, %s]", label, v.Ref())
		}
	default:
		sb.WriteString(i.Op.String())
		for n, v := range i.Operands() {
			if n == 0 {
				sb.WriteByte(' ')
			} else {
				sb.WriteString(", ")
			}
			sb.WriteString(v.Ref())
		}
	}
	return sb.String()
}

func formatTerm(f *Func, t *Terminator) string {
	label := func(id BlockID) string {
		if bb := f.Block(id); bb != nil {
			return bb.Label
		}
		return fmt.Sprintf("bb%d", id)
	}
	switch t.Kind {
	case TermRet:
		if t.Ret.HasValue {
			return "ret " + t.Ret.Value.Ref()
		}
		return "ret"
	case TermBr:
		return "br " + label(t.Br.Target)
	case TermCondBr:
		return fmt.Sprintf("condbr %s, %s, %s", t.CondBr.Cond.Ref(), label(t.CondBr.Then), label(t.CondBr.Else))
	case TermUnreachable:
		return "unreachable"
	}
	return "<no terminator>"
}
