// Package codegen lowers a verified atom to human-readable LLVM
// textual IR: one module per atom, SSA basic blocks, and explicit
// φ-nodes at every branch merge and loop header (§4.6). It never runs
// an atom that hasn't already been accepted by internal/verify.
package codegen

import "strings"

// Block is one SSA basic block: a label and its ordered instructions,
// the last of which is always a terminator (br or ret).
type Block struct {
	Label  string
	Instrs []string
}

func (b *Block) emit(line string) {
	b.Instrs = append(b.Instrs, line)
}

func (b *Block) prepend(lines []string) {
	b.Instrs = append(append([]string{}, lines...), b.Instrs...)
}

func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString(b.Label)
	sb.WriteString(":\n")
	for _, instr := range b.Instrs {
		sb.WriteString("  ")
		sb.WriteString(instr)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Function is one atom's lowered IR: a name, its parameter names (all
// i64, per §4.6), and the basic blocks forming its body.
type Function struct {
	Name   string
	Params []string
	Blocks []*Block
}

func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteString("define i64 @")
	sb.WriteString(f.Name)
	sb.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("i64 %")
		sb.WriteString(p)
	}
	sb.WriteString(") {\n")
	for _, b := range f.Blocks {
		sb.WriteString(b.String())
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Module is the top-level textual IR unit: one module per atom, named
// after it.
type Module struct {
	Name string
	Fn   *Function
}

func (m *Module) String() string {
	return "; ModuleID = '" + m.Name + "'\n" + m.Fn.String()
}
