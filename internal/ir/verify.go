package ir

import (
	"errors"
	"fmt"
)

// Verify checks module structural invariants.
// Returns an error if any invariant is violated.
func Verify(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil || f.Empty() {
			continue
		}
		if err := verifyFunc(f); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func verifyFunc(f *Func) error {
	var errs []error

	// 1. Entry block exists
	if f.Block(f.Entry) == nil {
		errs = append(errs, fmt.Errorf("entry block bb%d does not exist", f.Entry))
	}

	// 2. Every block terminated, targets in range
	if err := verifyTerminators(f); err != nil {
		errs = append(errs, err)
	}

	// 3. Ownership links consistent
	if err := verifyOwnership(f); err != nil {
		errs = append(errs, err)
	}

	// 4. Def-use edges symmetric, no dangling references
	if err := verifyDefUse(f); err != nil {
		errs = append(errs, err)
	}

	// 5. Phi shape
	if err := verifyPhis(f); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func verifyTerminators(f *Func) error {
	var errs []error
	blockExists := func(id BlockID) bool {
		return id >= 0 && int(id) < len(f.Blocks)
	}
	for _, bb := range f.Blocks {
		if !bb.Terminated() {
			errs = append(errs, fmt.Errorf("%s: unterminated block", bb.Label))
			continue
		}
		for _, s := range bb.Succs() {
			if !blockExists(s) {
				errs = append(errs, fmt.Errorf("%s: branch target bb%d does not exist", bb.Label, s))
			}
		}
	}
	return errors.Join(errs...)
}

func verifyOwnership(f *Func) error {
	var errs []error
	for _, bb := range f.Blocks {
		if bb.fn != f {
			errs = append(errs, fmt.Errorf("%s: block owned by another function", bb.Label))
		}
		for _, in := range bb.Instrs() {
			if in.block != bb {
				errs = append(errs, fmt.Errorf("%s: instruction %s has stale block link", bb.Label, FormatInstr(in)))
			}
		}
	}
	return errors.Join(errs...)
}

func verifyDefUse(f *Func) error {
	var errs []error

	attached := make(map[*Instr]bool)
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs() {
			attached[in] = true
		}
	}

	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs() {
			for n := 0; n < in.NumOperands(); n++ {
				def, ok := in.Operand(n).(*Instr)
				if !ok {
					continue
				}
				if !attached[def] {
					errs = append(errs, fmt.Errorf("%s: %s references detached instruction %s",
						bb.Label, FormatInstr(in), def.Ref()))
					continue
				}
				if def.users[in] == 0 {
					errs = append(errs, fmt.Errorf("%s: %s uses %s without a use edge",
						bb.Label, FormatInstr(in), def.Ref()))
				}
			}
			for u := range in.users {
				if !attached[u] {
					errs = append(errs, fmt.Errorf("%s: %s has detached user", bb.Label, FormatInstr(in)))
					continue
				}
				found := false
				for n := 0; n < u.NumOperands(); n++ {
					if u.Operand(n) == in {
						found = true
						break
					}
				}
				if !found {
					errs = append(errs, fmt.Errorf("%s: %s lists non-using instruction as user", bb.Label, FormatInstr(in)))
				}
			}
		}
		for _, v := range bb.Term.Values(nil) {
			if def, ok := v.(*Instr); ok && !attached[def] {
				errs = append(errs, fmt.Errorf("%s: terminator references detached instruction %s", bb.Label, def.Ref()))
			}
		}
	}
	return errors.Join(errs...)
}

func verifyPhis(f *Func) error {
	var errs []error
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs() {
			if in.Op != OpPhi {
				continue
			}
			if len(in.Incoming) != in.NumOperands() {
				errs = append(errs, fmt.Errorf("%s: phi %s has %d incoming blocks for %d values",
					bb.Label, in.Ref(), len(in.Incoming), in.NumOperands()))
			}
			for _, from := range in.Incoming {
				if f.Block(from) == nil {
					errs = append(errs, fmt.Errorf("%s: phi %s names missing block bb%d", bb.Label, in.Ref(), from))
				}
			}
		}
	}
	return errors.Join(errs...)
}
