package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/treeq/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Database string
	Replace  bool
}

// LoadResult is the load command's JSON payload.
type LoadResult struct {
	Database string `json:"database"`
	Loaded   int    `json:"loaded"`
	Replaced bool   `json:"replaced"`
}

func (r LoadResult) String() string {
	return fmt.Sprintf("✓ Loaded %d node(s) into %s", r.Loaded, r.Database)
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <nodes.yaml>",
		Short: "Load nested-set nodes into a database",
		Long: `Load nodes from a YAML list into the nodes table, creating the
database if needed. Existing ids are overwritten.

Each entry has id, name, status, level, lft, rgt and root:

  - {id: 1, name: Electronics, level: 0, lft: 1, rgt: 4, root: 1}
  - {id: 2, name: Phones, level: 1, lft: 2, rgt: 3, root: 1}

Examples:
  treeq load --db tree.db nodes.yaml
  treeq load --db tree.db nodes.yaml --replace`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "delete existing nodes first")

	return cmd
}

func runLoad(opts *LoadOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return f.Fail("failed to load config", err)
	}
	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Database
	}
	if dbPath == "" {
		return NewExitError(ExitCommandError, "no database: pass --db or set database in the configuration")
	}

	nodes, err := readNodes(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read nodes", err)
	}
	f.VerboseLog("Read %d node(s) from %s", len(nodes), path)

	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if opts.Replace {
		if err := st.DeleteAll(ctx); err != nil {
			return f.Fail("failed to clear nodes", err)
		}
	}
	if err := st.InsertNodes(ctx, nodes); err != nil {
		return f.Fail("failed to insert nodes", err)
	}

	return f.Success(LoadResult{Database: dbPath, Loaded: len(nodes), Replaced: opts.Replace})
}

// readNodes decodes a YAML list of nodes, rejecting unknown fields.
func readNodes(path string) ([]store.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var nodes []store.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&nodes); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return nodes, nil
}
