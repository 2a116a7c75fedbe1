// Package verify implements mumei's verification-condition generator:
// it walks an atom's body with a symbolic environment and a
// path-condition stack, emitting SMT obligations for its contract and
// every safety precondition encountered along the way, and discharges
// each one through the SMT driver.
package verify

import (
	"github.com/sunholo/mumei/internal/ast"
	"github.com/sunholo/mumei/internal/smt"
)

// symValue is the value produced by lowering one expression. A
// struct-typed expression carries no Scalar; its fields are reachable
// by name in Fields instead.
type symValue struct {
	Scalar smt.Term
	Kind   ast.Kind
	Struct string // struct type name, set only for struct-typed values
	Fields map[string]symValue
}

func scalarValue(t smt.Term, k ast.Kind) symValue {
	return symValue{Scalar: t, Kind: k}
}

var zeroValue = scalarValue(smt.Int(0), ast.KindInt)

func kindSort(k ast.Kind) smt.Sort {
	switch k {
	case ast.KindFloat:
		return smt.SortReal
	case ast.KindBool:
		return smt.SortBool
	default:
		return smt.SortInt
	}
}
