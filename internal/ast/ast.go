// Package ast defines the mumei abstract syntax tree: operators,
// expressions, refined types, struct definitions, atoms, and the
// top-level items a source file parses into.
package ast

import (
	"fmt"
	"strings"
)

// Pos identifies a location in a source file.
type Pos struct {
	Line int
	Col  int
	File string
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Operator is the closed set of binary operators mumei expressions use.
type Operator int

const (
	Add Operator = iota
	Sub
	Mul
	Div
	Eq
	Neq
	Gt
	Lt
	Ge
	Le
	And
	Or
	Implies
)

func (o Operator) String() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Eq:
		return "=="
	case Neq:
		return "!="
	case Gt:
		return ">"
	case Lt:
		return "<"
	case Ge:
		return ">="
	case Le:
		return "<="
	case And:
		return "&&"
	case Or:
		return "||"
	case Implies:
		return "=>"
	default:
		return "?op?"
	}
}

// IsComparison reports whether o produces a boolean from two operands
// of the same non-boolean kind.
func (o Operator) IsComparison() bool {
	switch o {
	case Eq, Neq, Gt, Lt, Ge, Le:
		return true
	default:
		return false
	}
}

// IsArithmetic reports whether o is +, -, *, /.
func (o Operator) IsArithmetic() bool {
	switch o {
	case Add, Sub, Mul, Div:
		return true
	default:
		return false
	}
}

// IsLogical reports whether o operates on and produces booleans.
func (o Operator) IsLogical() bool {
	switch o {
	case And, Or, Implies:
		return true
	default:
		return false
	}
}

// Expr is the tagged-union interface every expression node implements.
type Expr interface {
	Position() Pos
	String() string
	exprNode()
}

// Number is an integer literal.
type Number struct {
	Value int64
	Pos   Pos
}

func (n *Number) Position() Pos  { return n.Pos }
func (n *Number) String() string { return fmt.Sprintf("%d", n.Value) }
func (*Number) exprNode()        {}

// Float is a floating-point literal.
type Float struct {
	Value float64
	Pos   Pos
}

func (f *Float) Position() Pos  { return f.Pos }
func (f *Float) String() string { return fmt.Sprintf("%g", f.Value) }
func (*Float) exprNode()        {}

// Bool is a boolean literal.
type Bool struct {
	Value bool
	Pos   Pos
}

func (b *Bool) Position() Pos  { return b.Pos }
func (b *Bool) String() string { return fmt.Sprintf("%t", b.Value) }
func (*Bool) exprNode()        {}

// Variable is a reference to a parameter, let-binding, or the
// distinguished `result` name inside an `ensures` predicate.
type Variable struct {
	Name string
	Pos  Pos
}

func (v *Variable) Position() Pos  { return v.Pos }
func (v *Variable) String() string { return v.Name }
func (*Variable) exprNode()        {}

// ArrayAccess is `name[index]`.
type ArrayAccess struct {
	Name  string
	Index Expr
	Pos   Pos
}

func (a *ArrayAccess) Position() Pos { return a.Pos }
func (a *ArrayAccess) String() string {
	return fmt.Sprintf("%s[%s]", a.Name, a.Index)
}
func (*ArrayAccess) exprNode() {}

// Call is a call to a standard-library intrinsic or a registered atom.
type Call struct {
	Name string
	Args []Expr
	Pos  Pos
}

func (c *Call) Position() Pos { return c.Pos }
func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(parts, ", "))
}
func (*Call) exprNode() {}

// BinaryOp is `lhs op rhs`.
type BinaryOp struct {
	Lhs Expr
	Op  Operator
	Rhs Expr
	Pos Pos
}

func (b *BinaryOp) Position() Pos { return b.Pos }
func (b *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Lhs, b.Op, b.Rhs)
}
func (*BinaryOp) exprNode() {}

// IfThenElse requires both branches.
type IfThenElse struct {
	Cond Expr
	Then Expr
	Else Expr
	Pos  Pos
}

func (i *IfThenElse) Position() Pos { return i.Pos }
func (i *IfThenElse) String() string {
	return fmt.Sprintf("if %s { %s } else { %s }", i.Cond, i.Then, i.Else)
}
func (*IfThenElse) exprNode() {}

// While carries a loop invariant that must be preserved by the body.
// Invariant is nil when the source omits the invariant clause; an
// unbounded loop with no invariant is syntactically valid but fails
// verification with MissingInvariant.
type While struct {
	Cond      Expr
	Invariant Expr
	Body      Expr
	Pos       Pos
}

func (w *While) Position() Pos { return w.Pos }
func (w *While) String() string {
	if w.Invariant == nil {
		return fmt.Sprintf("while %s { %s }", w.Cond, w.Body)
	}
	return fmt.Sprintf("while %s invariant %s { %s }", w.Cond, w.Invariant, w.Body)
}
func (*While) exprNode() {}

// Let binds Var to Value for the remainder of the enclosing block.
// Body is nil when Let appears as a statement inside a Block, the only
// form the parser produces; when Body is non-nil, the Let evaluates to
// Body's value.
type Let struct {
	Var   string
	Value Expr
	Body  Expr
	Pos   Pos
}

func (l *Let) Position() Pos { return l.Pos }
func (l *Let) String() string {
	if l.Body != nil {
		return fmt.Sprintf("let %s = %s in %s", l.Var, l.Value, l.Body)
	}
	return fmt.Sprintf("let %s = %s", l.Var, l.Value)
}
func (*Let) exprNode() {}

// Assign rebinds an existing name.
type Assign struct {
	Var   string
	Value Expr
	Pos   Pos
}

func (a *Assign) Position() Pos { return a.Pos }
func (a *Assign) String() string {
	return fmt.Sprintf("%s = %s", a.Var, a.Value)
}
func (*Assign) exprNode() {}

// Block is an ordered sequence of statements; its value is the last
// statement's value, or 0 if empty.
type Block struct {
	Stmts []Expr
	Pos   Pos
}

func (b *Block) Position() Pos { return b.Pos }
func (b *Block) String() string {
	parts := make([]string, len(b.Stmts))
	for i, s := range b.Stmts {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}
func (*Block) exprNode() {}

// FieldInit is one `name: value` pair in a StructInit.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructInit constructs a struct value.
type StructInit struct {
	TypeName string
	Fields   []FieldInit
	Pos      Pos
}

func (s *StructInit) Position() Pos { return s.Pos }
func (s *StructInit) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Value)
	}
	return fmt.Sprintf("%s { %s }", s.TypeName, strings.Join(parts, ", "))
}
func (*StructInit) exprNode() {}

// FieldAccess is `expr.field`.
type FieldAccess struct {
	Target Expr
	Field  string
	Pos    Pos
}

func (f *FieldAccess) Position() Pos { return f.Pos }
func (f *FieldAccess) String() string {
	return fmt.Sprintf("%s.%s", f.Target, f.Field)
}
func (*FieldAccess) exprNode() {}

// RefinedType is `{operand: base_type | predicate}`, named Name.
type RefinedType struct {
	Name      string
	BaseType  string
	Operand   string
	Predicate Expr
	Pos       Pos
}

// TypeRef names either a primitive base type or a previously
// registered refined type / struct name.
type TypeRef struct {
	Name string
	Pos  Pos
}

// Field is one ordered (name, type) pair in a StructDef.
type Field struct {
	Name string
	Type TypeRef
}

// StructDef is an ordered sequence of typed fields.
type StructDef struct {
	Name   string
	Fields []Field
	Pos    Pos
}

// Param is one ordered (name, type) pair in an Atom's parameter list.
// Type is nil when the parameter carries no explicit type annotation.
type Param struct {
	Name string
	Type *TypeRef
}

// Atom is a verified, contract-carrying function.
type Atom struct {
	Name     string
	Params   []Param
	Requires Expr
	Ensures  Expr
	Body     Expr
	Pos      Pos
}

// Import is `import "path" [as alias];`.
type Import struct {
	Path  string
	Alias string
	Pos   Pos
}

// Item is the tagged union of top-level declarations a file parses into.
type Item interface {
	itemNode()
	Position() Pos
}

func (a *Atom) itemNode()     {}
func (a *Atom) Position() Pos { return a.Pos }

func (r *RefinedType) itemNode()     {}
func (r *RefinedType) Position() Pos { return r.Pos }

func (s *StructDef) itemNode()     {}
func (s *StructDef) Position() Pos { return s.Pos }

func (i *Import) itemNode()     {}
func (i *Import) Position() Pos { return i.Pos }

// Kind classifies the runtime shape an expression evaluates to, used
// by the verifier to check IfThenElse branch agreement and While
// invariant typing (§3 invariants).
type Kind int

const (
	KindUnknown Kind = iota
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "i64"
	case KindFloat:
		return "f64"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}
