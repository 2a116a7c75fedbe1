package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/mumei/internal/ast"
	merrors "github.com/sunholo/mumei/internal/errors"
	"github.com/sunholo/mumei/internal/module"
)

func TestResolveBaseTypePrimitive(t *testing.T) {
	env := module.NewEnv()
	reg := NewRegistry(env)
	bt, err := reg.ResolveBaseType("i64")
	require.NoError(t, err)
	assert.Equal(t, "i64", bt)
}

func TestResolveBaseTypeChain(t *testing.T) {
	env := module.NewEnv()
	env.Types["Positive"] = &ast.RefinedType{Name: "Positive", BaseType: "i64", Operand: "v"}
	env.Types["SmallPositive"] = &ast.RefinedType{Name: "SmallPositive", BaseType: "Positive", Operand: "v"}
	reg := NewRegistry(env)

	bt, err := reg.ResolveBaseType("SmallPositive")
	require.NoError(t, err)
	assert.Equal(t, "i64", bt)
}

func TestResolveBaseTypeUnknown(t *testing.T) {
	env := module.NewEnv()
	reg := NewRegistry(env)
	_, err := reg.ResolveBaseType("Nope")
	require.Error(t, err)
	rep, ok := merrors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, merrors.TYP001, rep.Code)
}

func TestResolveBaseTypeCycleExceedsDepth(t *testing.T) {
	env := module.NewEnv()
	// A self-referential chain never reaches a primitive.
	env.Types["Loopy"] = &ast.RefinedType{Name: "Loopy", BaseType: "Loopy", Operand: "v"}
	reg := NewRegistry(env)

	_, err := reg.ResolveBaseType("Loopy")
	require.Error(t, err)
	rep, ok := merrors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, merrors.TYP002, rep.Code)
}

func TestResolveFieldTypes(t *testing.T) {
	env := module.NewEnv()
	env.Types["Positive"] = &ast.RefinedType{Name: "Positive", BaseType: "i64", Operand: "v"}
	reg := NewRegistry(env)

	sd := &ast.StructDef{
		Name: "Point",
		Fields: []ast.Field{
			{Name: "x", Type: ast.TypeRef{Name: "Positive"}},
			{Name: "y", Type: ast.TypeRef{Name: "i64"}},
		},
	}
	bts, err := reg.ResolveFieldTypes(sd)
	require.NoError(t, err)
	assert.Equal(t, []string{"i64", "i64"}, bts)
}

func TestResolveParamTypesDefaultsToI64(t *testing.T) {
	env := module.NewEnv()
	reg := NewRegistry(env)
	a := &ast.Atom{
		Name: "f",
		Params: []ast.Param{
			{Name: "x", Type: nil},
		},
	}
	bts, err := reg.ResolveParamTypes(a)
	require.NoError(t, err)
	assert.Equal(t, []string{"i64"}, bts)
}

func TestKind(t *testing.T) {
	assert.Equal(t, ast.KindInt, Kind("i64"))
	assert.Equal(t, ast.KindInt, Kind("u64"))
	assert.Equal(t, ast.KindFloat, Kind("f64"))
	assert.Equal(t, ast.KindBool, Kind("bool"))
	assert.Equal(t, ast.KindUnknown, Kind("Point"))
}
