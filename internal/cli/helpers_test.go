package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/treeq/internal/store"
	"github.com/roach88/treeq/internal/testutil"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// sampleDB writes the sample tree to a database file.
func sampleDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.InsertNodes(context.Background(), testutil.SampleTree()))
	require.NoError(t, st.Close())
	return path
}

// sampleConfig writes a configuration mapping left/right onto the sample
// tree's columns. extra is appended verbatim.
func sampleConfig(t *testing.T, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "treeq.cue")
	src := "mapping: {left: \"lft\", right: \"rgt\"}\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

// decodeData unmarshals the data field of a JSON CLIResponse into v.
func decodeData(t *testing.T, out string, v any) CLIResponse {
	t.Helper()
	var resp struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	if v != nil {
		require.NoError(t, json.Unmarshal(resp.Data, v), out)
	}
	return resp.CLIResponse
}
