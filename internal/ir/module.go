package ir

// Module owns globals and functions.
type Module struct {
	Name    string
	Globals []*Global
	Funcs   []*Func
}

// Global returns the global with the given symbol, or nil.
func (m *Module) Global(sym string) *Global {
	for _, g := range m.Globals {
		if g.Sym == sym {
			return g
		}
	}
	return nil
}

// AddGlobal appends a global, returning the existing one if the
// symbol is already declared.
func (m *Module) AddGlobal(sym string) *Global {
	if g := m.Global(sym); g != nil {
		return g
	}
	g := &Global{Sym: sym}
	m.Globals = append(m.Globals, g)
	return g
}

// Func returns the function with the given name, or nil.
func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// AddFunc appends a new function with the given name.
func (m *Module) AddFunc(name string) *Func {
	f := &Func{
		ID:    FuncID(int32(len(m.Funcs))),
		Name:  name,
		Entry: NoBlockID,
	}
	m.Funcs = append(m.Funcs, f)
	return f
}
