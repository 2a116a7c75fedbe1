package codegen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/mumei/internal/module"
	"github.com/sunholo/mumei/internal/types"
)

func generateAtom(t *testing.T, source, name string) (*Module, error) {
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
	return Generate(r.Env, reg, atom)
}

func TestGenerateSafeDivProducesSdiv(t *testing.T) {
	mod, err := generateAtom(t, `
atom safe_div(a: i64, b: i64) requires b != 0 ensures result * b == a { a / b }
`, "safe_div")
	require.NoError(t, err)
	require.NotNil(t, mod)

	ir := mod.String()
	assert.Contains(t, ir, "define i64 @safe_div(i64 %a, i64 %b)")
	assert.Contains(t, ir, "sdiv i64 %a, %b")
	assert.Contains(t, ir, "ret i64")

	wantEntry := &Block{
		Label: "entry",
		Instrs: []string{
			"%1 = sdiv i64 %a, %b",
			"ret i64 %1",
		},
	}
	if diff := cmp.Diff(wantEntry, mod.Fn.Blocks[0]); diff != "" {
		t.Errorf("entry block mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateAbsoluteValueProducesMergePhi(t *testing.T) {
	mod, err := generateAtom(t, `
atom abs(x: i64) requires true ensures result >= 0 {
	if x < 0 { 0 - x } else { x }
}
`, "abs")
	require.NoError(t, err)
	require.NotNil(t, mod)

	ir := mod.String()
	assert.Contains(t, ir, "then:")
	assert.Contains(t, ir, "else:")
	assert.Contains(t, ir, "merge:")
	assert.Contains(t, ir, "icmp ne i64")

	var mergeBlock *Block
	for _, b := range mod.Fn.Blocks {
		if b.Label == "merge" {
			mergeBlock = b
		}
	}
	require.NotNil(t, mergeBlock)
	joined := strings.Join(mergeBlock.Instrs, "\n")
	assert.Contains(t, joined, "= phi i64 [")
}

func TestGenerateLoopSumProducesHeaderPhi(t *testing.T) {
	mod, err := generateAtom(t, `
atom loop_sum(n: i64) requires n >= 0 ensures result >= 0 {
	let s = 0;
	let i = 0;
	while i < n invariant s >= 0 && i >= 0 { s = s + i; i = i + 1 };
	s
}
`, "loop_sum")
	require.NoError(t, err)
	require.NotNil(t, mod)

	var header, body, after *Block
	for _, b := range mod.Fn.Blocks {
		switch b.Label {
		case "header":
			header = b
		case "body":
			body = b
		case "after":
			after = b
		}
	}
	require.NotNil(t, header, "expected a header block")
	require.NotNil(t, body, "expected a body block")
	require.NotNil(t, after, "expected an after block")

	phiCount := 0
	for _, instr := range header.Instrs {
		if strings.Contains(instr, "= phi i64 [") {
			phiCount++
		}
	}
	// s and i are both mutated in the loop body, so the header needs
	// one phi per name.
	assert.Equal(t, 2, phiCount)
}

func TestGenerateUnknownCallFails(t *testing.T) {
	_, err := generateAtom(t, `
atom caller(x: i64) requires true ensures true { unknown_fn(x) }
`, "caller")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "COD002"))
}

func TestGenerateArrayAccessFails(t *testing.T) {
	_, err := generateAtom(t, `
atom first(xs: i64, i: i64) requires i >= 0 && i < len(xs) ensures true { xs[i] }
`, "first")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "COD002"))
}
