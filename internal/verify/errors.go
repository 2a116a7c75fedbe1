package verify

import (
	"github.com/sunholo/mumei/internal/ast"
	merrors "github.com/sunholo/mumei/internal/errors"
)

func undefinedVariableErr(name string, pos ast.Pos) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.COD001,
		Phase:   "verify",
		Message: "undefined variable \"" + name + "\"",
		Pos:     pos.String(),
		Data:    map[string]any{"name": name},
	})
}

func unsupportedConstructErr(what string, pos ast.Pos) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.COD002,
		Phase:   "verify",
		Message: "unsupported construct: " + what,
		Pos:     pos.String(),
	})
}

func missingInvariantErr(pos ast.Pos) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.VER002,
		Phase:   "verify",
		Message: "while loop has no invariant",
		Pos:     pos.String(),
	})
}

func solverTimeoutErr(atom string, obligation string) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.VER003,
		Phase:   "verify",
		Message: "solver returned unknown discharging " + obligation,
		Data:    map[string]any{"atom": atom, "obligation": obligation},
	})
}

func branchKindMismatchErr(pos ast.Pos) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.VER004,
		Phase:   "verify",
		Message: "if-then-else branches disagree on kind",
		Pos:     pos.String(),
	})
}

func invariantNotBooleanErr(pos ast.Pos) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.VER005,
		Phase:   "verify",
		Message: "while invariant is not boolean-typed",
		Pos:     pos.String(),
	})
}
