// Package bitcode reads and writes modules as a versioned binary
// artifact encoded with msgpack.
package bitcode

import (
	"errors"
	"fmt"
	"io"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"lift/internal/ir"
)

// schemaVersion is bumped whenever the payload format changes;
// decoding refuses mismatched artifacts.
const schemaVersion uint16 = 1

var errSchema = errors.New("bitcode: unsupported schema version")

// Value reference kinds inside a payload.
const (
	refConst uint8 = iota
	refGlobal
	refParam
	refInstr
)

type payload struct {
	Schema  uint16
	Name    string
	Globals []string
	Funcs   []funcPayload
}

type funcPayload struct {
	Name   string
	Params []string
	Entry  int32
	Blocks []blockPayload
}

type blockPayload struct {
	Label  string
	Instrs []instrPayload
	Term   termPayload
}

type instrPayload struct {
	Op       uint8
	Ident    string
	Volatile bool
	Callee   string
	Pred     uint8
	Incoming []int32
	Operands []valueRef
}

type valueRef struct {
	Kind  uint8
	Const int64
	Sym   string
	Index int32
}

type termPayload struct {
	Kind     uint8
	HasValue bool
	Value    valueRef
	Targets  []int32
}

// Encode writes the module to w.
func Encode(w io.Writer, m *ir.Module) error {
	p := payload{
		Schema: schemaVersion,
		Name:   m.Name,
	}
	for _, g := range m.Globals {
		p.Globals = append(p.Globals, g.Sym)
	}
	for _, f := range m.Funcs {
		fp, err := encodeFunc(f)
		if err != nil {
			return fmt.Errorf("bitcode: function %s: %w", f.Name, err)
		}
		p.Funcs = append(p.Funcs, fp)
	}
	return msgpack.NewEncoder(w).Encode(&p)
}

func encodeFunc(f *ir.Func) (funcPayload, error) {
	fp := funcPayload{
		Name:  f.Name,
		Entry: int32(f.Entry),
	}
	for _, param := range f.Params {
		fp.Params = append(fp.Params, param.Sym)
	}

	// Function-wide instruction ordinals, block order then position.
	index := make(map[*ir.Instr]int32)
	next := 0
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs() {
			n, err := safecast.Conv[int32](next)
			if err != nil {
				return fp, err
			}
			index[in] = n
			next++
		}
	}

	ref := func(v ir.Value) (valueRef, error) {
		switch val := v.(type) {
		case *ir.Const:
			return valueRef{Kind: refConst, Const: val.Val}, nil
		case *ir.Global:
			return valueRef{Kind: refGlobal, Sym: val.Sym}, nil
		case *ir.Param:
			n, err := safecast.Conv[int32](val.Index)
			return valueRef{Kind: refParam, Index: n}, err
		case *ir.Instr:
			n, ok := index[val]
			if !ok {
				return valueRef{}, fmt.Errorf("operand %s not attached to function", val.Ref())
			}
			return valueRef{Kind: refInstr, Index: n}, nil
		}
		return valueRef{}, fmt.Errorf("unencodable value %v", v)
	}

	for _, bb := range f.Blocks {
		bp := blockPayload{Label: bb.Label}
		for _, in := range bb.Instrs() {
			ip := instrPayload{
				Op:       uint8(in.Op),
				Ident:    in.Ident,
				Volatile: in.Volatile,
				Callee:   in.Callee,
				Pred:     uint8(in.Pred),
			}
			for _, from := range in.Incoming {
				ip.Incoming = append(ip.Incoming, int32(from))
			}
			for _, v := range in.Operands() {
				r, err := ref(v)
				if err != nil {
					return fp, err
				}
				ip.Operands = append(ip.Operands, r)
			}
			bp.Instrs = append(bp.Instrs, ip)
		}

		bp.Term.Kind = uint8(bb.Term.Kind)
		switch bb.Term.Kind {
		case ir.TermRet:
			if bb.Term.Ret.HasValue {
				r, err := ref(bb.Term.Ret.Value)
				if err != nil {
					return fp, err
				}
				bp.Term.HasValue = true
				bp.Term.Value = r
			}
		case ir.TermBr:
			bp.Term.Targets = []int32{int32(bb.Term.Br.Target)}
		case ir.TermCondBr:
			r, err := ref(bb.Term.CondBr.Cond)
			if err != nil {
				return fp, err
			}
			bp.Term.HasValue = true
			bp.Term.Value = r
			bp.Term.Targets = []int32{int32(bb.Term.CondBr.Then), int32(bb.Term.CondBr.Else)}
		}
		fp.Blocks = append(fp.Blocks, bp)
	}
	return fp, nil
}

// Decode reads a module from r, rejecting unknown schema versions.
func Decode(r io.Reader) (*ir.Module, error) {
	var p payload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("bitcode: %w", err)
	}
	if p.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", errSchema, p.Schema, schemaVersion)
	}

	m := &ir.Module{Name: p.Name}
	for _, sym := range p.Globals {
		m.AddGlobal(sym)
	}
	for _, fp := range p.Funcs {
		if err := decodeFunc(m, fp); err != nil {
			return nil, fmt.Errorf("bitcode: function %s: %w", fp.Name, err)
		}
	}
	return m, nil
}

func decodeFunc(m *ir.Module, fp funcPayload) error {
	f := m.AddFunc(fp.Name)
	for i, sym := range fp.Params {
		f.Params = append(f.Params, &ir.Param{Sym: sym, Index: i})
	}

	// First pass: materialize blocks and instructions without
	// operands, so references can point anywhere in the function.
	var instrs []*ir.Instr
	for _, bp := range fp.Blocks {
		bb := f.NewBlock(bp.Label)
		for i := range bp.Instrs {
			in := ir.NewInstr(ir.Op(bp.Instrs[i].Op), bp.Instrs[i].Ident)
			in.Volatile = bp.Instrs[i].Volatile
			in.Callee = bp.Instrs[i].Callee
			in.Pred = ir.Pred(bp.Instrs[i].Pred)
			bb.Append(in)
			instrs = append(instrs, in)
		}
	}
	f.Entry = ir.BlockID(fp.Entry)

	resolve := func(r valueRef) (ir.Value, error) {
		switch r.Kind {
		case refConst:
			return &ir.Const{Val: r.Const}, nil
		case refGlobal:
			if g := m.Global(r.Sym); g != nil {
				return g, nil
			}
			return nil, fmt.Errorf("reference to undeclared global @%s", r.Sym)
		case refParam:
			if int(r.Index) >= len(f.Params) {
				return nil, fmt.Errorf("parameter index %d out of range", r.Index)
			}
			return f.Params[r.Index], nil
		case refInstr:
			if int(r.Index) >= len(instrs) {
				return nil, fmt.Errorf("instruction index %d out of range", r.Index)
			}
			return instrs[r.Index], nil
		}
		return nil, fmt.Errorf("unknown value ref kind %d", r.Kind)
	}

	// Second pass: patch operands and terminators.
	n := 0
	for bi, bp := range fp.Blocks {
		bb := f.Blocks[bi]
		for i := range bp.Instrs {
			in := instrs[n]
			n++
			for oi, r := range bp.Instrs[i].Operands {
				v, err := resolve(r)
				if err != nil {
					return err
				}
				if in.Op == ir.OpPhi {
					if oi >= len(bp.Instrs[i].Incoming) {
						return fmt.Errorf("phi %s arm without incoming block", in.Ref())
					}
					in.AddIncoming(ir.BlockID(bp.Instrs[i].Incoming[oi]), v)
					continue
				}
				in.AppendOperand(v)
			}
		}

		bb.Term.Kind = ir.TermKind(bp.Term.Kind)
		switch bb.Term.Kind {
		case ir.TermRet:
			if bp.Term.HasValue {
				v, err := resolve(bp.Term.Value)
				if err != nil {
					return err
				}
				bb.Term.Ret.HasValue = true
				bb.Term.Ret.Value = v
			}
		case ir.TermBr:
			if len(bp.Term.Targets) != 1 {
				return fmt.Errorf("%s: br needs one target", bb.Label)
			}
			bb.Term.Br.Target = ir.BlockID(bp.Term.Targets[0])
		case ir.TermCondBr:
			if len(bp.Term.Targets) != 2 {
				return fmt.Errorf("%s: condbr needs two targets", bb.Label)
			}
			v, err := resolve(bp.Term.Value)
			if err != nil {
				return err
			}
			bb.Term.CondBr.Cond = v
			bb.Term.CondBr.Then = ir.BlockID(bp.Term.Targets[0])
			bb.Term.CondBr.Else = ir.BlockID(bp.Term.Targets[1])
		}
	}
	return nil
}
