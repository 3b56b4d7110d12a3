package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: small
description: "one tree, two cases"
mapping: {left: lft, right: rgt}
nodes:
  - {id: 1, name: Root, level: 0, lft: 1, rgt: 4, root: 1}
  - {id: 2, name: Leaf, level: 1, lft: 2, rgt: 3, root: 1}
cases:
  - name: above the leaf
    entities: [2]
    mode: descendants
    expect_ids: [1]
  - name: rank
    expr: "RANK(n.id, 2, 1)"
    dialect: mysql
    expect_sql: "FIELD(n.id, 2, 1)"
`

const failingScenario = `
name: broken
description: "expects the wrong ids"
nodes:
  - {id: 1, name: Root, level: 0, lft: 1, rgt: 2, root: 1}
cases:
  - name: self
    entities: [1]
    mode: self
    expect_ids: [2]
`

func scenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	return dir
}

func TestTest_HarnessScenarios(t *testing.T) {
	out, err := execute(t, "test", filepath.Join("..", "harness", "testdata", "scenarios"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ catalog")
	assert.Contains(t, out, "✓ rank")
	assert.Contains(t, out, "Test Summary: 2 passed, 0 failed, 2 total")
}

func TestTest_FailureExitCode(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"a-small.yaml":  passingScenario,
		"b-broken.yaml": failingScenario,
	})

	out, err := execute(t, "test", dir, "--jobs", "2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ small (2 cases)")
	assert.Contains(t, out, "✗ broken")
	assert.Contains(t, out, "ids mismatch: expected [2], got [1]")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTest_Filter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"a-small.yaml":  passingScenario,
		"b-broken.yaml": failingScenario,
	})

	out, err := execute(t, "test", dir, "--filter", "a-*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
}

func TestTest_GoldenUpdateAndCompare(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"small.yaml": passingScenario})

	out, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")

	golden := filepath.Join(dir, "golden", "small.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name":"small"`)
	assert.Contains(t, string(data), `"sql":"FIELD(n.id, 2, 1)"`)

	_, err = execute(t, "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte(`{"cases":[],"scenario_name":"small"}`), 0o644))
	out, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "snapshot does not match golden file")
}

func TestTest_JSONOutput(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"small.yaml": passingScenario})

	out, err := execute(t, "--format", "json", "test", dir)
	require.NoError(t, err)

	var data TestResult
	resp := decodeData(t, out, &data)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, data.Passed)
	require.Len(t, data.Scenarios, 1)
	assert.Equal(t, "missing", data.Scenarios[0].Golden)
	assert.Equal(t, 2, data.Scenarios[0].Cases)
}

func TestTest_LoadErrorFailsScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"bad.yaml": "name: bad\n"})

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ bad.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTest_Paths(t *testing.T) {
	_, err := execute(t, "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}
