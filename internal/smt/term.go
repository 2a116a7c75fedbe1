// Package smt is mumei's SMT driver: sort and term construction
// mirroring the Expression variants, a push/pop assumption stack, and
// a bounded decision procedure (Fourier-Motzkin elimination over the
// linear-arithmetic fragment, backed by bounded enumeration for
// witness extraction) used to discharge verification obligations.
//
// No external SMT solver binding exists anywhere in the library
// ecosystem this toolchain draws from, so the driver is a from-scratch
// decision procedure rather than a wrapper around one.
package smt

import "fmt"

// Sort is the SMT sort a Term is built over.
type Sort int

const (
	SortInt Sort = iota
	SortReal
	SortBool
)

func (s Sort) String() string {
	switch s {
	case SortInt:
		return "Int"
	case SortReal:
		return "Real"
	case SortBool:
		return "Bool"
	default:
		return "?"
	}
}

// Term is the tagged union of SMT terms the driver builds and
// discharges. It mirrors ast.Expr's shape rather than reusing it
// directly, since terms additionally carry sorts and may introduce
// solver-only constructs (uninterpreted function applications).
type Term interface {
	Sort() Sort
	String() string
	termNode()
}

// IntConst is an integer-sorted literal.
type IntConst struct{ Value int64 }

func (IntConst) Sort() Sort       { return SortInt }
func (c IntConst) String() string { return fmt.Sprintf("%d", c.Value) }
func (IntConst) termNode()        {}

// RealConst is a real-sorted literal.
type RealConst struct{ Value float64 }

func (RealConst) Sort() Sort       { return SortReal }
func (c RealConst) String() string { return fmt.Sprintf("%g", c.Value) }
func (RealConst) termNode()        {}

// BoolConst is a boolean-sorted literal.
type BoolConst struct{ Value bool }

func (BoolConst) Sort() Sort       { return SortBool }
func (c BoolConst) String() string { return fmt.Sprintf("%t", c.Value) }
func (BoolConst) termNode()        {}

// Var is a free variable of a given sort.
type Var struct {
	Name  string
	VSort Sort
}

func (v Var) Sort() Sort     { return v.VSort }
func (v Var) String() string { return v.Name }
func (Var) termNode()        {}

// Arith is a binary arithmetic application over Int or Real terms.
type Arith struct {
	Op   string // "+", "-", "*", "/"
	L, R Term
}

func (a Arith) Sort() Sort { return a.L.Sort() }
func (a Arith) String() string {
	return fmt.Sprintf("(%s %s %s)", a.L, a.Op, a.R)
}
func (Arith) termNode() {}

// Cmp is a comparison between two terms of matching sort, always
// boolean-sorted.
type Cmp struct {
	Op   string // "==", "!=", "<", "<=", ">", ">="
	L, R Term
}

func (Cmp) Sort() Sort { return SortBool }
func (c Cmp) String() string {
	return fmt.Sprintf("(%s %s %s)", c.L, c.Op, c.R)
}
func (Cmp) termNode() {}

// Not negates a boolean term.
type Not struct{ X Term }

func (Not) Sort() Sort       { return SortBool }
func (n Not) String() string { return fmt.Sprintf("(not %s)", n.X) }
func (Not) termNode()        {}

// And is an n-ary boolean conjunction.
type And struct{ Args []Term }

func (And) Sort() Sort { return SortBool }
func (a And) String() string {
	return fmt.Sprintf("(and %v)", a.Args)
}
func (And) termNode() {}

// Or is an n-ary boolean disjunction.
type Or struct{ Args []Term }

func (Or) Sort() Sort { return SortBool }
func (o Or) String() string {
	return fmt.Sprintf("(or %v)", o.Args)
}
func (Or) termNode() {}

// Implies is L => R.
type Implies struct{ L, R Term }

func (Implies) Sort() Sort { return SortBool }
func (i Implies) String() string {
	return fmt.Sprintf("(=> %s %s)", i.L, i.R)
}
func (Implies) termNode() {}

// UF is an application of an uninterpreted function (mumei models
// `sqrt` this way). ResSort is the sort of the application's result.
type UF struct {
	Func    string
	Args    []Term
	ResSort Sort
}

func (u UF) Sort() Sort { return u.ResSort }
func (u UF) String() string {
	return fmt.Sprintf("%s(%v)", u.Func, u.Args)
}
func (UF) termNode() {}

// Constructors. These are the only way production code should build
// Terms, so sorts stay internally consistent.

func Int(v int64) Term    { return IntConst{v} }
func Real(v float64) Term { return RealConst{v} }
func Bool(v bool) Term    { return BoolConst{v} }

func IntVar(name string) Term  { return Var{Name: name, VSort: SortInt} }
func RealVar(name string) Term { return Var{Name: name, VSort: SortReal} }
func BoolVar(name string) Term { return Var{Name: name, VSort: SortBool} }

func Add(l, r Term) Term { return Arith{"+", l, r} }
func Sub(l, r Term) Term { return Arith{"-", l, r} }
func Mul(l, r Term) Term { return Arith{"*", l, r} }

func Eq(l, r Term) Term  { return Cmp{"==", l, r} }
func Neq(l, r Term) Term { return Cmp{"!=", l, r} }
func Lt(l, r Term) Term  { return Cmp{"<", l, r} }
func Le(l, r Term) Term  { return Cmp{"<=", l, r} }
func Gt(l, r Term) Term  { return Cmp{">", l, r} }
func Ge(l, r Term) Term  { return Cmp{">=", l, r} }

func NotT(x Term) Term { return Not{x} }

func AndT(args ...Term) Term {
	if len(args) == 1 {
		return args[0]
	}
	return And{args}
}

func OrT(args ...Term) Term {
	if len(args) == 1 {
		return args[0]
	}
	return Or{args}
}

func ImpliesT(l, r Term) Term { return Implies{l, r} }

// Sqrt models the standard-library `sqrt` intrinsic as a total
// uninterpreted function. Callers are responsible for also asserting
// the defining axiom (see driver.go's AssertSqrtAxiom) wherever a
// Sqrt term is introduced.
func Sqrt(x Term) Term { return UF{Func: "sqrt", Args: []Term{x}, ResSort: SortReal} }

// Call models a call to a registered atom as an uninterpreted
// function of the given result sort, one UF per call site.
func Call(name string, resSort Sort, args ...Term) Term {
	return UF{Func: name, Args: args, ResSort: resSort}
}
