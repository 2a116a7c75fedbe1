// Package types implements mumei's Type Registry: resolution of
// refined-type, struct-field, and atom-parameter type references down
// to one of the four primitive base types.
package types

import (
	"github.com/sunholo/mumei/internal/ast"
	"github.com/sunholo/mumei/internal/module"
)

// maxResolutionDepth bounds how many refined-type hops ResolveBaseType
// will follow before declaring the chain malformed.
const maxResolutionDepth = 64

var primitiveBaseTypes = map[string]bool{
	"i64": true, "u64": true, "f64": true, "bool": true,
}

// Registry resolves type names against a module.Env's registered
// refined types and structs.
type Registry struct {
	env *module.Env
}

// NewRegistry wraps env for base-type resolution queries.
func NewRegistry(env *module.Env) *Registry {
	return &Registry{env: env}
}

// ResolveBaseType walks the refined-type chain starting at name: if
// name already names a primitive, it is returned unchanged; otherwise
// name must be a registered RefinedType, and resolution recurses on
// its BaseType. Struct names are not resolvable to a base type and
// fail with UnknownType, mirroring the fact that structs compose
// fields rather than refine a scalar.
func (r *Registry) ResolveBaseType(name string) (string, error) {
	return r.resolveDepth(name, 0)
}

func (r *Registry) resolveDepth(name string, depth int) (string, error) {
	if primitiveBaseTypes[name] {
		return name, nil
	}
	if depth >= maxResolutionDepth {
		return "", typeResolutionDepthExceededErr(name)
	}
	rt, ok := r.env.Types[name]
	if !ok {
		return "", unknownTypeErr(name)
	}
	return r.resolveDepth(rt.BaseType, depth+1)
}

// ResolveFieldTypes resolves every field of sd to its base type, in
// field order.
func (r *Registry) ResolveFieldTypes(sd *ast.StructDef) ([]string, error) {
	out := make([]string, len(sd.Fields))
	for i, f := range sd.Fields {
		bt, err := r.resolveFieldOrParamType(f.Type)
		if err != nil {
			return nil, err
		}
		out[i] = bt
	}
	return out, nil
}

// ResolveParamTypes resolves every parameter of atom a to its base
// type, in parameter order. An untyped parameter (Type == nil)
// resolves to "i64", mumei's default scalar representation.
func (r *Registry) ResolveParamTypes(a *ast.Atom) ([]string, error) {
	out := make([]string, len(a.Params))
	for i, p := range a.Params {
		if p.Type == nil {
			out[i] = "i64"
			continue
		}
		bt, err := r.resolveFieldOrParamType(*p.Type)
		if err != nil {
			return nil, err
		}
		out[i] = bt
	}
	return out, nil
}

func (r *Registry) resolveFieldOrParamType(ref ast.TypeRef) (string, error) {
	if primitiveBaseTypes[ref.Name] {
		return ref.Name, nil
	}
	if _, ok := r.env.Structs[ref.Name]; ok {
		// Struct-typed fields/params carry the struct's own name
		// forward; they have no scalar base type.
		return ref.Name, nil
	}
	return r.ResolveBaseType(ref.Name)
}

// Kind reports the runtime Kind a resolved base-type name corresponds
// to, defaulting to KindUnknown for a struct-typed name.
func Kind(baseType string) ast.Kind {
	switch baseType {
	case "i64", "u64":
		return ast.KindInt
	case "f64":
		return ast.KindFloat
	case "bool":
		return ast.KindBool
	default:
		return ast.KindUnknown
	}
}
