package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/treeq/internal/config"
	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/store"
	"github.com/roach88/treeq/internal/tree"
)

// searchFlags are the flags shared by commands that compile a tree search.
// Non-empty values override the configuration.
type searchFlags struct {
	Database string
	IDs      []int64
	Entities string
	Alias    string
	Mode     string
	Combine  string
	Dialect  string
}

func (s *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.Database, "db", "", "path to SQLite database holding the reference nodes (default from config)")
	cmd.Flags().Int64SliceVar(&s.IDs, "ids", nil, "ids of the reference nodes, read from --db")
	cmd.Flags().StringVar(&s.Entities, "entities", "", `reference entities as a JSON array, e.g. '[{"id":3,"level":2,"left":3,"right":4,"root":1}]'`)
	cmd.Flags().StringVar(&s.Alias, "alias", "", "table alias used in the condition (default from config)")
	cmd.Flags().StringVar(&s.Mode, "mode", "", "search mode: self, ancestors, descendants, everywhere or a list like self|descendants")
	cmd.Flags().StringVar(&s.Combine, "combine", "", "combine operator: or, and")
	cmd.Flags().StringVar(&s.Dialect, "dialect", "", "SQL dialect (default from config)")
	cmd.MarkFlagsMutuallyExclusive("ids", "entities")
}

// apply folds the flags into cfg.
func (s *searchFlags) apply(cfg *config.Config) error {
	if s.Alias != "" {
		cfg.Alias = s.Alias
	}
	if s.Mode != "" {
		m, err := tree.ParseSearchMode(s.Mode)
		if err != nil {
			return err
		}
		cfg.Mode = m
	}
	if s.Combine != "" {
		// Not pre-validated: tree.Compile reports unknown operators.
		cfg.Combine = tree.Combine(s.Combine)
	}
	if s.Dialect != "" {
		d, err := dialect.Parse(s.Dialect)
		if err != nil {
			return err
		}
		cfg.Dialect = d
	}
	return nil
}

// entities resolves the reference entities. st is non-nil when the nodes
// were read from a database; the caller closes it.
func (s *searchFlags) entities(ctx context.Context, cfg *config.Config) ([]tree.Entity, *store.Store, error) {
	if s.Entities != "" {
		entities, err := parseEntities(s.Entities)
		return entities, nil, err
	}
	if len(s.IDs) == 0 {
		return []tree.Entity{}, nil, nil
	}

	st, err := openStore(s.Database, cfg)
	if err != nil {
		return nil, nil, err
	}
	nodes, err := st.GetNodes(ctx, s.IDs)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("load reference nodes: %w", err)
	}
	entities, err := tree.EntitiesOf(nodes)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return entities, st, nil
}

// parseEntities decodes a JSON array of objects. Numbers are kept exact.
func parseEntities(src string) ([]tree.Entity, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(src)))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid --entities", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, NewExitError(ExitCommandError, "invalid --entities: trailing data after array")
	}

	out := make([]tree.Entity, len(raw))
	for i, r := range raw {
		out[i] = tree.Record(r)
	}
	return out, nil
}
