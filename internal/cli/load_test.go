package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treeq/internal/store"
)

const nodesYAML = `
- {id: 1, name: Electronics, status: active, level: 0, lft: 1, rgt: 4, root: 1}
- {id: 2, name: Phones, level: 1, lft: 2, rgt: 3, root: 1}
`

func writeNodes(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nodes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func countNodes(t *testing.T, db string) int {
	t.Helper()
	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	nodes, err := st.AllNodes(context.Background())
	require.NoError(t, err)
	return len(nodes)
}

func TestLoad_CreatesDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tree.db")

	out, err := execute(t, "load", "--db", db, writeNodes(t, nodesYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Loaded 2 node(s) into "+db)
	assert.Equal(t, 2, countNodes(t, db))

	// Then usable by condition.
	out, err = execute(t, "condition", "--db", db, "--ids", "2", "--mode", "self")
	require.NoError(t, err)
	assert.Contains(t, out, "n.id = :id_n_2")
}

func TestLoad_Replace(t *testing.T) {
	db := sampleDB(t)

	_, err := execute(t, "load", "--db", db, writeNodes(t, nodesYAML))
	require.NoError(t, err)
	assert.Equal(t, 8, countNodes(t, db), "ids 1 and 2 are overwritten in place")

	out, err := execute(t, "--format", "json", "load", "--db", db, "--replace", writeNodes(t, nodesYAML))
	require.NoError(t, err)

	var data LoadResult
	decodeData(t, out, &data)
	assert.True(t, data.Replaced)
	assert.Equal(t, 2, data.Loaded)
	assert.Equal(t, 2, countNodes(t, db))
}

func TestLoad_Errors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tree.db")

	_, err := execute(t, "load", writeNodes(t, nodesYAML))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "load", "--db", db, writeNodes(t, "- {id: 1, nmae: typo}\n"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "load", "--db", db, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(t, "load", "--db", db, writeNodes(t, "- {id: 1, name: bad, level: 0, lft: 5, rgt: 2, root: 1}\n"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "failed to insert nodes")
}
