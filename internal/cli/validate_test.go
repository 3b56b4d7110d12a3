package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	cfg := sampleConfig(t, `dialect: "postgres"`+"\nsearch: combine: \"and\"\n")

	out, err := execute(t, "validate", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Configuration valid")
	assert.Contains(t, out, "dialect:  postgres")
	assert.Contains(t, out, "table:    nodes n")
	assert.Contains(t, out, "search:   everywhere, combine and")
	assert.Contains(t, out, "mapping:  left -> lft")
	assert.Contains(t, out, "mapping:  right -> rgt")
}

func TestValidate_ConfigFlag(t *testing.T) {
	cfg := sampleConfig(t, "")

	out, err := execute(t, "--config", cfg, "--format", "json", "validate")
	require.NoError(t, err)

	var data ValidationResult
	resp := decodeData(t, out, &data)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, data.Valid)
	assert.Equal(t, "sqlite", data.Dialect)
	assert.Equal(t, map[string]string{"left": "lft", "right": "rgt"}, data.Mapping)
}

func TestValidate_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"), []byte("package treeq\n\ndialect: \"mysql\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.cue"), []byte("package treeq\n\nalias: \"t\"\n"), 0o644))

	out, err := execute(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "dialect:  mysql")
	assert.Contains(t, out, "table:    nodes t")
}

func TestValidate_SchemaViolation(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(cfg, []byte("dialect: \"oracle\"\n"), 0o644))

	out, err := execute(t, "validate", cfg)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E101")
}

func TestValidate_SchemaViolationJSON(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(cfg, []byte("search: mode: \"sideways\"\n"), 0o644))

	out, err := execute(t, "--format", "json", "validate", cfg)
	require.Error(t, err)

	resp := decodeData(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E101", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "search.mode")
}

func TestValidate_NotFound(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidate_NoPath(t *testing.T) {
	_, err := execute(t, "validate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
