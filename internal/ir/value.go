package ir

import "strconv"

// Value is anything an instruction operand can refer to: an integer
// constant, a module global, a function parameter, or the result of
// another instruction.
type Value interface {
	// Ref returns the token used for this value in textual IR.
	Ref() string

	valueNode()
}

// Const is an integer constant operand.
type Const struct {
	Val int64
}

func (c *Const) Ref() string { return strconv.FormatInt(c.Val, 10) }
func (c *Const) valueNode()  {}

// Global is a module-level symbol. Its address is a compile-time
// constant for aliasing purposes.
type Global struct {
	Sym string
}

func (g *Global) Ref() string { return "@" + g.Sym }
func (g *Global) valueNode()  {}

// Param is a function parameter.
type Param struct {
	Sym   string
	Index int
}

func (p *Param) Ref() string { return "%" + p.Sym }
func (p *Param) valueNode()  {}
