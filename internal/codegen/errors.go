package codegen

import (
	"github.com/sunholo/mumei/internal/ast"
	merrors "github.com/sunholo/mumei/internal/errors"
)

func undefinedVariableErr(name string, pos ast.Pos) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.COD001,
		Phase:   "codegen",
		Message: "undefined variable \"" + name + "\"",
		Pos:     pos.String(),
		Data:    map[string]any{"name": name},
	})
}

func unsupportedConstructErr(what string, pos ast.Pos) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.COD002,
		Phase:   "codegen",
		Message: "unsupported construct: " + what,
		Pos:     pos.String(),
	})
}
