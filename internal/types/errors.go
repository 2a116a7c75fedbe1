package types

import (
	merrors "github.com/sunholo/mumei/internal/errors"
)

func unknownTypeErr(name string) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.TYP001,
		Phase:   "types",
		Message: "unknown type \"" + name + "\"",
		Data:    map[string]any{"name": name},
	})
}

func typeResolutionDepthExceededErr(name string) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.TYP002,
		Phase:   "types",
		Message: "type resolution depth exceeded resolving \"" + name + "\"",
		Data:    map[string]any{"name": name, "limit": maxResolutionDepth},
	})
}
