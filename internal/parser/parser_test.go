package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/mumei/internal/ast"
	"github.com/sunholo/mumei/internal/lexer"
)

func parseItems(t *testing.T, src string) []ast.Item {
	t.Helper()
	p := New(lexer.New(src, "test.mm"), "test.mm")
	items, err := p.ParseProgram()
	require.NoError(t, err)
	return items
}

func TestParseTypeDef(t *testing.T) {
	items := parseItems(t, `type Positive = i64 where v > 0;`)
	require.Len(t, items, 1)
	rt, ok := items[0].(*ast.RefinedType)
	require.True(t, ok)
	assert.Equal(t, "Positive", rt.Name)
	assert.Equal(t, "i64", rt.BaseType)
	assert.Equal(t, "v", rt.Operand)
	bin, ok := rt.Predicate.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.Gt, bin.Op)
}

func TestParseStructDef(t *testing.T) {
	items := parseItems(t, `struct Point { x: i64, y: i64 }`)
	require.Len(t, items, 1)
	sd, ok := items[0].(*ast.StructDef)
	require.True(t, ok)
	assert.Equal(t, "Point", sd.Name)
	require.Len(t, sd.Fields, 2)
	assert.Equal(t, "x", sd.Fields[0].Name)
	assert.Equal(t, "y", sd.Fields[1].Name)
}

func TestParseImportWithAlias(t *testing.T) {
	items := parseItems(t, `import "math/geom.mm" as geom;`)
	require.Len(t, items, 1)
	imp, ok := items[0].(*ast.Import)
	require.True(t, ok)
	assert.Equal(t, "math/geom.mm", imp.Path)
	assert.Equal(t, "geom", imp.Alias)
}

func TestParseImportWithoutAlias(t *testing.T) {
	items := parseItems(t, `import "util.mm";`)
	imp, ok := items[0].(*ast.Import)
	require.True(t, ok)
	assert.Equal(t, "", imp.Alias)
}

func TestParseAtomSafeDiv(t *testing.T) {
	items := parseItems(t, `
atom safe_div(a: i64, b: i64) requires b != 0 ensures result >= 0 {
  a / b
}`)
	require.Len(t, items, 1)
	a, ok := items[0].(*ast.Atom)
	require.True(t, ok)
	assert.Equal(t, "safe_div", a.Name)
	require.Len(t, a.Params, 2)
	assert.Equal(t, "a", a.Params[0].Name)
	require.NotNil(t, a.Params[0].Type)
	assert.Equal(t, "i64", a.Params[0].Type.Name)

	req, ok := a.Requires.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.Neq, req.Op)

	block, ok := a.Body.(*ast.Block)
	require.True(t, ok)
	require.Len(t, block.Stmts, 1)
	bin, ok := block.Stmts[0].(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.Div, bin.Op)
}

func TestParseLetAndAssignInBlock(t *testing.T) {
	items := parseItems(t, `
atom inc(x: i64) requires true ensures result == x + 1 {
  let y = x + 1;
  y
}`)
	a := items[0].(*ast.Atom)
	block := a.Body.(*ast.Block)
	require.Len(t, block.Stmts, 2)
	let, ok := block.Stmts[0].(*ast.Let)
	require.True(t, ok)
	assert.Equal(t, "y", let.Var)
	assert.Nil(t, let.Body)
	v, ok := block.Stmts[1].(*ast.Variable)
	require.True(t, ok)
	assert.Equal(t, "y", v.Name)
}

func TestParseIfThenElse(t *testing.T) {
	items := parseItems(t, `
atom abs(x: i64) requires true ensures result >= 0 {
  if x < 0 then 0 - x else x
}`)
	a := items[0].(*ast.Atom)
	block := a.Body.(*ast.Block)
	ite, ok := block.Stmts[0].(*ast.IfThenElse)
	require.True(t, ok)
	cond, ok := ite.Cond.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.Lt, cond.Op)
}

func TestParseWhileLoopSum(t *testing.T) {
	items := parseItems(t, `
atom loop_sum(n: i64) requires n >= 0 ensures result >= 0 {
  let i = 0;
  let acc = 0;
  while i < n invariant acc >= 0 {
    acc = acc + i;
    i = i + 1
  };
  acc
}`)
	a := items[0].(*ast.Atom)
	block := a.Body.(*ast.Block)
	require.Len(t, block.Stmts, 3)
	w, ok := block.Stmts[2].(*ast.While)
	require.True(t, ok)
	invariant, ok := w.Invariant.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.Ge, invariant.Op)
	body := w.Body.(*ast.Block)
	require.Len(t, body.Stmts, 2)
	assign, ok := body.Stmts[0].(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, "acc", assign.Var)
}

func TestParseWhileWithoutInvariant(t *testing.T) {
	items := parseItems(t, `
atom spin(n: i64) requires true ensures true {
  while n > 0 {
    n = n - 1
  };
  0
}`)
	a := items[0].(*ast.Atom)
	block := a.Body.(*ast.Block)
	w, ok := block.Stmts[0].(*ast.While)
	require.True(t, ok)
	assert.Nil(t, w.Invariant)
}

func TestParseStructInitAndFieldAccess(t *testing.T) {
	items := parseItems(t, `
atom mk(x: i64, y: i64) requires true ensures result >= 0 {
  let p = Point { x: x, y: y };
  p.x
}`)
	a := items[0].(*ast.Atom)
	block := a.Body.(*ast.Block)
	let := block.Stmts[0].(*ast.Let)
	init, ok := let.Value.(*ast.StructInit)
	require.True(t, ok)
	assert.Equal(t, "Point", init.TypeName)
	require.Len(t, init.Fields, 2)

	fa, ok := block.Stmts[1].(*ast.FieldAccess)
	require.True(t, ok)
	assert.Equal(t, "x", fa.Field)
}

func TestParseArrayAccess(t *testing.T) {
	items := parseItems(t, `
atom first(n: i64) requires n > 0 ensures true {
  xs[0]
}`)
	a := items[0].(*ast.Atom)
	block := a.Body.(*ast.Block)
	aa, ok := block.Stmts[0].(*ast.ArrayAccess)
	require.True(t, ok)
	assert.Equal(t, "xs", aa.Name)
}

func TestParseUnaryMinus(t *testing.T) {
	items := parseItems(t, `
atom neg(x: i64) requires true ensures true {
  -x
}`)
	a := items[0].(*ast.Atom)
	block := a.Body.(*ast.Block)
	bin, ok := block.Stmts[0].(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.Sub, bin.Op)
	n, ok := bin.Lhs.(*ast.Number)
	require.True(t, ok)
	assert.Equal(t, int64(0), n.Value)
}

func TestParsePrecedence(t *testing.T) {
	items := parseItems(t, `
atom f(x: i64) requires true ensures true {
  1 + 2 * 3 == 7 && true
}`)
	a := items[0].(*ast.Atom)
	block := a.Body.(*ast.Block)
	top, ok := block.Stmts[0].(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.And, top.Op)
	eq, ok := top.Lhs.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.Eq, eq.Op)
	add, ok := eq.Lhs.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.Add, add.Op)
	mul, ok := add.Rhs.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.Mul, mul.Op)
}

func TestParseErrorFirstFailureFatal(t *testing.T) {
	p := New(lexer.New(`atom bad(x: i64) requires ensures true { 0 }`, "bad.mm"), "bad.mm")
	_, err := p.ParseProgram()
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}
