package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/query"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	search  searchFlags
	Order   []string
	Desc    bool
	Columns []string
	DryRun  bool
}

// StatementResult is the query command's payload for a statement that was
// rendered but not executed.
type StatementResult struct {
	Dialect string `json:"dialect"`
	SQL     string `json:"sql"`
	Args    []any  `json:"args"`
}

func (r StatementResult) String() string {
	var b strings.Builder
	b.WriteString(r.SQL)
	for i, a := range r.Args {
		fmt.Fprintf(&b, "\n  [%d] %v", i+1, a)
	}
	return b.String()
}

// RowsResult is the query command's payload for an executed statement.
type RowsResult struct {
	Rows []ir.IRObject `json:"rows"`
}

func (r RowsResult) String() string {
	lines := make([]string, 0, len(r.Rows)+1)
	for _, row := range r.Rows {
		data, err := json.Marshal(row)
		if err != nil {
			data = []byte(err.Error())
		}
		lines = append(lines, string(data))
	}
	lines = append(lines, fmt.Sprintf("(%d row(s))", len(r.Rows)))
	return strings.Join(lines, "\n")
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Select the rows matching a tree search",
		Long: `Build a SELECT over the configured table filtered by a tree search,
optionally ordered by expressions such as RANK(...).

On sqlite the statement runs against --db and the rows are printed.
For other dialects, or with --dry-run, the statement and its arguments
are printed instead. Rows are always ordered by id last.

Examples:
  treeq query --db tree.db --ids 2
  treeq query --db tree.db --ids 2 --order "RANK(n.status, 'closed', 'active')"
  treeq query --db tree.db --ids 3,9 --combine and --dialect mysql`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, opts, cmd)
		},
	}

	opts.search.register(cmd)
	cmd.Flags().StringArrayVar(&opts.Order, "order", nil, "ORDER BY expression (repeatable)")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "sort --order expressions descending")
	cmd.Flags().StringSliceVar(&opts.Columns, "select", nil, "columns to select (default all)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the statement without running it")

	return cmd
}

func runQuery(rootOpts *RootOptions, opts *QueryOptions, cmd *cobra.Command) error {
	f := rootOpts.formatter(cmd)
	ctx := cmd.Context()

	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return f.Fail("failed to load config", err)
	}
	if err := opts.search.apply(cfg); err != nil {
		return f.Fail("invalid flags", err)
	}

	entities, st, err := opts.search.entities(ctx, cfg)
	if err != nil {
		return f.Fail("failed to read reference entities", err)
	}
	if st != nil {
		defer st.Close()
	}

	dir := query.Asc
	if opts.Desc {
		dir = query.Desc
	}
	b := query.New(cfg.Table, cfg.Alias).WhereTree(entities, cfg.TreeOptions()...)
	if len(opts.Columns) > 0 {
		b.TrySelect(cfg.Alias, opts.Columns...)
	}
	for _, o := range opts.Order {
		b.OrderBy(o, dir)
	}
	b.OrderBy(cfg.Alias+"."+cfg.Mapping.ID, query.Asc)

	if opts.DryRun || cfg.Dialect != dialect.SQLite {
		stmt, err := b.Build(cfg.Dialect)
		if err != nil {
			return f.Fail("failed to build query", err)
		}
		return f.Success(StatementResult{Dialect: stmt.Dialect.String(), SQL: stmt.SQL, Args: stmt.Args})
	}

	if st == nil {
		if st, err = openStore(opts.search.Database, cfg); err != nil {
			return err
		}
		defer st.Close()
	}

	exec := query.NewExecutor(st.DB(), st.Dialect()).WithLogger(rootOpts.logger(cmd))
	rows, err := exec.Rows(ctx, b)
	if err != nil {
		return f.Fail("query failed", err)
	}
	return f.Success(RowsResult{Rows: rows})
}
