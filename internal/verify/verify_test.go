package verify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/mumei/internal/module"
	"github.com/sunholo/mumei/internal/types"
)

const defaultTimeout = 5 * time.Second

func verifyAtom(t *testing.T, source, name string) (*Result, error) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.mm")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	r := module.NewResolver()
	_, err := r.ResolveEntry(path)
	require.NoError(t, err)

	atom, ok := r.Env.Atoms[name]
	require.True(t, ok, "atom %q not registered", name)

	reg := types.NewRegistry(r.Env)
	return Verify(r.Env, reg, atom, defaultTimeout)
}

func TestVerifySafeDivSucceeds(t *testing.T) {
	res, err := verifyAtom(t, `
atom safe_div(a: i64, b: i64) requires b != 0 ensures result * b == a { a / b }
`, "safe_div")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Success)
}

func TestVerifyBadDivFailsWithZeroCounterexample(t *testing.T) {
	res, err := verifyAtom(t, `
atom bad_div(a: i64, b: i64) requires true ensures true { a / b }
`, "bad_div")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "division")
	assert.Equal(t, "0", res.Assignments["b"])
}

func TestVerifyConstantFoldedDivisionByZeroFails(t *testing.T) {
	res, err := verifyAtom(t, `
atom f() requires true ensures true { 1 / 0 }
`, "f")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "division")
}

func TestVerifyRefinedParamIncrementSucceeds(t *testing.T) {
	res, err := verifyAtom(t, `
type Pos = i64 where v > 0;
atom inc(x: Pos) requires true ensures result > x { x + 1 }
`, "inc")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Success)
}

func TestVerifyLoopSumSucceeds(t *testing.T) {
	res, err := verifyAtom(t, `
atom loop_sum(n: i64) requires n >= 0 ensures result >= 0 {
	let s = 0;
	let i = 0;
	while i < n invariant s >= 0 && i >= 0 { s = s + i; i = i + 1 };
	s
}
`, "loop_sum")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Success)
}

func TestVerifyUnknownCallFails(t *testing.T) {
	_, err := verifyAtom(t, `
atom caller(x: i64) requires true ensures true { unknown_fn(x) }
`, "caller")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "COD002"))
}

func TestVerifyIfThenElseAbsoluteValue(t *testing.T) {
	res, err := verifyAtom(t, `
atom abs(x: i64) requires true ensures result >= 0 {
	if x < 0 { 0 - x } else { x }
}
`, "abs")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Success)
}

func TestVerifyArrayAccessOutOfBoundsFails(t *testing.T) {
	res, err := verifyAtom(t, `
atom first(xs: i64, i: i64) requires true ensures true { xs[i] }
`, "first")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Equal(t, "ArrayAccess", res.ViolatedObligation)
}

func TestVerifyCallContractPropagation(t *testing.T) {
	res, err := verifyAtom(t, `
atom half(n: i64) requires n >= 0 ensures result >= 0 { n / 2 }
atom caller(n: i64) requires n >= 0 ensures result >= 0 { half(n) }
`, "caller")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Success)
}

func TestVerifyWhileMissingInvariantFails(t *testing.T) {
	_, err := verifyAtom(t, `
atom countdown(n: i64) requires true ensures true {
	while n > 0 { n = n - 1 }
}
`, "countdown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VER002")
}
