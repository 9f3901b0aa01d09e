// Package irparse reads textual IR into an ir.Module.
//
// The grammar is line-oriented:
//
//	module <name>
//	global @sym
//	fn @name(%p0, %p1) { ... }    // body blocks, or no body for a declaration
//	label:
//	  %x = add %a, 1
//	  br label
//	}
//
// Comments start with ';' and run to end of line. Operands may
// forward-reference results defined later in the function (phi back
// edges); resolution happens after the whole function is read.
package irparse

import (
	"fmt"
	"strings"

	"lift/internal/diag"
	"lift/internal/ir"
)

// ParseModule parses src into a module, reporting problems into bag.
// Returns nil and false if any error was reported.
func ParseModule(filename, src string, bag *diag.Bag) (*ir.Module, bool) {
	p := &parser{
		file: filename,
		bag:  bag,
		mod:  &ir.Module{Name: moduleNameFromFile(filename)},
	}
	p.run(src)
	if bag.HasErrors() {
		return nil, false
	}
	return p.mod, true
}

func moduleNameFromFile(filename string) string {
	name := filename
	if n := strings.LastIndexByte(name, '/'); n >= 0 {
		name = name[n+1:]
	}
	if n := strings.IndexByte(name, '.'); n > 0 {
		name = name[:n]
	}
	if name == "" {
		name = "module"
	}
	return name
}

type parser struct {
	file string
	bag  *diag.Bag
	mod  *ir.Module

	fn     *ir.Func
	block  *ir.Block
	labels map[string]ir.BlockID

	// pending operand references, resolved once the function closes
	defs    map[string]ir.Value
	patches []patch
	terms   []termPatch
	phis    []phiPatch
}

// patch defers one operand slot of an instruction.
type patch struct {
	pos   diag.Pos
	instr *ir.Instr
	token string
}

// termPatch defers terminator operands and block label targets.
type termPatch struct {
	pos     diag.Pos
	block   *ir.Block
	value   string // ret value / condbr cond token, "" if none
	targets []string
}

// phiPatch defers one phi arm.
type phiPatch struct {
	pos   diag.Pos
	instr *ir.Instr
	from  string
	token string
}

func (p *parser) pos(line int) diag.Pos {
	return diag.Pos{File: p.file, Line: line, Col: 1}
}

func (p *parser) errorf(pos diag.Pos, format string, args ...any) {
	p.bag.Error(pos, fmt.Sprintf(format, args...))
}

func (p *parser) run(src string) {
	lines := strings.Split(src, "\n")
	for n, raw := range lines {
		pos := p.pos(n + 1)
		line := raw
		if c := strings.IndexByte(line, ';'); c >= 0 {
			line = line[:c]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		p.parseLine(pos, line)
	}
	if p.fn != nil {
		p.errorf(p.pos(len(lines)), "function @%s: missing closing '}'", p.fn.Name)
		p.closeFunc(p.pos(len(lines)))
	}
}

func (p *parser) parseLine(pos diag.Pos, line string) {
	switch {
	case p.fn == nil:
		p.parseTopLevel(pos, line)
	case line == "}":
		p.closeFunc(pos)
	case strings.HasSuffix(line, ":") && !strings.ContainsAny(line, " \t"):
		p.openBlock(pos, strings.TrimSuffix(line, ":"))
	default:
		p.parseBody(pos, line)
	}
}

func (p *parser) parseTopLevel(pos diag.Pos, line string) {
	word, rest := splitWord(line)
	switch word {
	case "module":
		if rest == "" {
			p.errorf(pos, "module directive needs a name")
			return
		}
		p.mod.Name = rest
	case "global":
		sym, ok := strings.CutPrefix(rest, "@")
		if !ok || sym == "" {
			p.errorf(pos, "global needs an @symbol, got %q", rest)
			return
		}
		p.mod.AddGlobal(sym)
	case "fn":
		p.openFunc(pos, rest)
	default:
		p.errorf(pos, "unexpected %q at top level", word)
	}
}

func (p *parser) openFunc(pos diag.Pos, rest string) {
	hasBody := false
	if trimmed, ok := strings.CutSuffix(rest, "{"); ok {
		hasBody = true
		rest = strings.TrimSpace(trimmed)
	}
	open := strings.IndexByte(rest, '(')
	closeIdx := strings.LastIndexByte(rest, ')')
	if open < 0 || closeIdx < open {
		p.errorf(pos, "malformed function header %q", rest)
		return
	}
	name, ok := strings.CutPrefix(strings.TrimSpace(rest[:open]), "@")
	if !ok || name == "" {
		p.errorf(pos, "function needs an @name")
		return
	}
	if p.mod.Func(name) != nil {
		p.errorf(pos, "function @%s redefined", name)
		return
	}
	f := p.mod.AddFunc(name)
	p.defs = make(map[string]ir.Value)
	for i, arg := range splitList(rest[open+1 : closeIdx]) {
		sym, ok := strings.CutPrefix(arg, "%")
		if !ok || sym == "" {
			p.errorf(pos, "parameter %q must be a %%name", arg)
			continue
		}
		param := &ir.Param{Sym: sym, Index: i}
		f.Params = append(f.Params, param)
		p.define(pos, sym, param)
	}
	if !hasBody {
		p.defs = nil
		return
	}
	p.fn = f
	p.labels = make(map[string]ir.BlockID)
}

func (p *parser) openBlock(pos diag.Pos, label string) {
	if _, dup := p.labels[label]; dup {
		p.errorf(pos, "block label %q redefined", label)
		return
	}
	if p.block != nil && !p.block.Terminated() {
		p.errorf(pos, "block %q not terminated before %q", p.block.Label, label)
	}
	p.block = p.fn.NewBlock(label)
	p.labels[label] = p.block.ID
	if len(p.fn.Blocks) == 1 {
		p.fn.Entry = p.block.ID
	}
}

func (p *parser) define(pos diag.Pos, sym string, v ir.Value) {
	if _, dup := p.defs[sym]; dup {
		p.errorf(pos, "%%%s redefined", sym)
		return
	}
	p.defs[sym] = v
}

func (p *parser) closeFunc(pos diag.Pos) {
	if p.block == nil {
		p.errorf(pos, "function @%s has a body but no blocks", p.fn.Name)
	} else if !p.block.Terminated() {
		p.errorf(pos, "block %q not terminated", p.block.Label)
	}
	p.resolve()
	p.fn = nil
	p.block = nil
	p.labels = nil
	p.defs = nil
	p.patches = nil
	p.terms = nil
	p.phis = nil
}
