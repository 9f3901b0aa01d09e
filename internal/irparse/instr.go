package irparse

import (
	"strconv"
	"strings"

	"lift/internal/diag"
	"lift/internal/ir"
)

var opWords = map[string]ir.Op{
	"alloca": ir.OpAlloca,
	"load":   ir.OpLoad,
	"store":  ir.OpStore,
	"call":   ir.OpCall,
	"add":    ir.OpAdd,
	"sub":    ir.OpSub,
	"mul":    ir.OpMul,
	"div":    ir.OpDiv,
	"rem":    ir.OpRem,
	"and":    ir.OpAnd,
	"or":     ir.OpOr,
	"xor":    ir.OpXor,
	"shl":    ir.OpShl,
	"shr":    ir.OpShr,
	"cmp":    ir.OpCmp,
	"cast":   ir.OpCast,
	"phi":    ir.OpPhi,
}

func (p *parser) parseBody(pos diag.Pos, line string) {
	if p.block == nil {
		p.errorf(pos, "instruction before first block label")
		return
	}
	if p.block.Terminated() {
		p.errorf(pos, "instruction after terminator in block %q", p.block.Label)
		return
	}

	word, _ := splitWord(line)
	switch word {
	case "ret", "br", "condbr", "unreachable":
		p.parseTerm(pos, line)
		return
	}

	ident := ""
	body := line
	if strings.HasPrefix(line, "%") {
		eq := strings.Index(line, "=")
		if eq < 0 {
			p.errorf(pos, "expected '=' after result name")
			return
		}
		ident = strings.TrimSpace(line[:eq])
		var ok bool
		ident, ok = strings.CutPrefix(ident, "%")
		if !ok || ident == "" {
			p.errorf(pos, "malformed result name")
			return
		}
		body = strings.TrimSpace(line[eq+1:])
	}

	word, rest := splitWord(body)
	op, known := opWords[word]
	if !known {
		p.errorf(pos, "unknown opcode %q", word)
		return
	}
	if ident == "" && op != ir.OpStore && op != ir.OpCall {
		p.errorf(pos, "%s needs a result name", word)
		return
	}
	if ident != "" && !op.HasResult() {
		p.errorf(pos, "%s cannot bind a result", word)
		return
	}

	in := ir.NewInstr(op, ident)
	switch op {
	case ir.OpAlloca:
		if rest != "" {
			p.errorf(pos, "alloca takes no operands")
			return
		}
	case ir.OpLoad:
		if v, ok := strings.CutPrefix(rest, "volatile"); ok {
			in.Volatile = true
			rest = strings.TrimSpace(v)
		}
		if !p.wantOperands(pos, in, rest, 1) {
			return
		}
	case ir.OpStore:
		if !p.wantOperands(pos, in, rest, 2) {
			return
		}
	case ir.OpCall:
		if !p.parseCall(pos, in, rest) {
			return
		}
	case ir.OpCmp:
		predWord, operands := splitWord(rest)
		pred, ok := ir.PredFromString(predWord)
		if !ok {
			p.errorf(pos, "unknown cmp predicate %q", predWord)
			return
		}
		in.Pred = pred
		if !p.wantOperands(pos, in, operands, 2) {
			return
		}
	case ir.OpCast:
		if !p.wantOperands(pos, in, rest, 1) {
			return
		}
	case ir.OpPhi:
		if !p.parsePhi(pos, in, rest) {
			return
		}
	default:
		if !p.wantOperands(pos, in, rest, 2) {
			return
		}
	}

	p.block.Append(in)
	if ident != "" {
		p.define(pos, ident, in)
	}
}

// wantOperands records exactly n deferred operand tokens.
func (p *parser) wantOperands(pos diag.Pos, in *ir.Instr, rest string, n int) bool {
	tokens := splitList(rest)
	if len(tokens) != n {
		p.errorf(pos, "%s takes %d operand(s), got %d", in.Op, n, len(tokens))
		return false
	}
	for _, tok := range tokens {
		p.patches = append(p.patches, patch{pos: pos, instr: in, token: tok})
	}
	return true
}

func (p *parser) parseCall(pos diag.Pos, in *ir.Instr, rest string) bool {
	open := strings.IndexByte(rest, '(')
	closeIdx := strings.LastIndexByte(rest, ')')
	if open < 0 || closeIdx < open {
		p.errorf(pos, "malformed call %q", rest)
		return false
	}
	callee, ok := strings.CutPrefix(strings.TrimSpace(rest[:open]), "@")
	if !ok || callee == "" {
		p.errorf(pos, "call needs an @callee")
		return false
	}
	in.Callee = callee
	for _, tok := range splitList(rest[open+1 : closeIdx]) {
		p.patches = append(p.patches, patch{pos: pos, instr: in, token: tok})
	}
	return true
}

func (p *parser) parsePhi(pos diag.Pos, in *ir.Instr, rest string) bool {
	arms := 0
	for rest != "" {
		open := strings.IndexByte(rest, '[')
		closeIdx := strings.IndexByte(rest, ']')
		if open < 0 || closeIdx < open {
			p.errorf(pos, "malformed phi arm in %q", rest)
			return false
		}
		arm := splitList(rest[open+1 : closeIdx])
		if len(arm) != 2 {
			p.errorf(pos, "phi arm needs [block, value]")
			return false
		}
		p.phis = append(p.phis, phiPatch{pos: pos, instr: in, from: arm[0], token: arm[1]})
		arms++
		rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest[closeIdx+1:]), ","))
	}
	if arms == 0 {
		p.errorf(pos, "phi needs at least one arm")
		return false
	}
	return true
}

func (p *parser) parseTerm(pos diag.Pos, line string) {
	word, rest := splitWord(line)
	tp := termPatch{pos: pos, block: p.block}
	switch word {
	case "ret":
		p.block.Term.Kind = ir.TermRet
		if rest != "" {
			p.block.Term.Ret.HasValue = true
			tp.value = rest
		}
	case "br":
		if rest == "" {
			p.errorf(pos, "br needs a target label")
			return
		}
		p.block.Term.Kind = ir.TermBr
		tp.targets = []string{rest}
	case "condbr":
		args := splitList(rest)
		if len(args) != 3 {
			p.errorf(pos, "condbr takes cond, then, else")
			return
		}
		p.block.Term.Kind = ir.TermCondBr
		tp.value = args[0]
		tp.targets = args[1:]
	case "unreachable":
		p.block.Term.Kind = ir.TermUnreachable
	}
	p.terms = append(p.terms, tp)
}

// resolve patches operand tokens now that every definition in the
// function is known.
func (p *parser) resolve() {
	for _, pt := range p.patches {
		if v, ok := p.value(pt.pos, pt.token); ok {
			pt.instr.AppendOperand(v)
		}
	}
	for _, ph := range p.phis {
		from, ok := p.labels[ph.from]
		if !ok {
			p.errorf(ph.pos, "phi names unknown block %q", ph.from)
			continue
		}
		if v, ok := p.value(ph.pos, ph.token); ok {
			ph.instr.AddIncoming(from, v)
		}
	}
	for _, tp := range p.terms {
		term := &tp.block.Term
		if tp.value != "" {
			if v, ok := p.value(tp.pos, tp.value); ok {
				switch term.Kind {
				case ir.TermRet:
					term.Ret.Value = v
				case ir.TermCondBr:
					term.CondBr.Cond = v
				}
			}
		}
		ids := make([]ir.BlockID, len(tp.targets))
		for i, label := range tp.targets {
			id, ok := p.labels[label]
			if !ok {
				p.errorf(tp.pos, "branch to unknown block %q", label)
				id = ir.NoBlockID
			}
			ids[i] = id
		}
		switch term.Kind {
		case ir.TermBr:
			term.Br.Target = ids[0]
		case ir.TermCondBr:
			term.CondBr.Then = ids[0]
			term.CondBr.Else = ids[1]
		}
	}
}

func (p *parser) value(pos diag.Pos, token string) (ir.Value, bool) {
	switch {
	case strings.HasPrefix(token, "%"):
		v, ok := p.defs[token[1:]]
		if !ok {
			p.errorf(pos, "use of undefined value %s", token)
			return nil, false
		}
		return v, true
	case strings.HasPrefix(token, "@"):
		g := p.mod.Global(token[1:])
		if g == nil {
			p.errorf(pos, "use of undeclared global %s", token)
			return nil, false
		}
		return g, true
	default:
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			p.errorf(pos, "malformed operand %q", token)
			return nil, false
		}
		return &ir.Const{Val: n}, true
	}
}

func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	n := strings.IndexAny(s, " \t")
	if n < 0 {
		return s, ""
	}
	return s[:n], strings.TrimSpace(s[n+1:])
}

func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
