package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSuccessRecord(t *testing.T) {
	dir := t.TempDir()
	rec := Success("safe_div")
	require.NoError(t, Write(dir, rec))

	data, err := os.ReadFile(filepath.Join(dir, reportFileName))
	require.NoError(t, err)

	var got Record
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, "safe_div", got.Atom)
	assert.Empty(t, got.Reason)
}

func TestWriteFailedRecordWithAssignments(t *testing.T) {
	dir := t.TempDir()
	rec := Failed("bad_div", "division by zero", map[string]string{"a": "1", "b": "0"})
	require.NoError(t, Write(dir, rec))

	data, err := os.ReadFile(filepath.Join(dir, reportFileName))
	require.NoError(t, err)

	var got Record
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "failed", got.Status)
	assert.Contains(t, got.Reason, "division")
	assert.Equal(t, "0", got.Assignments["b"])
}

func TestWriteCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "visualizer")
	require.NoError(t, Write(dir, Success("f")))
	_, err := os.Stat(filepath.Join(dir, reportFileName))
	require.NoError(t, err)
}
