package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/tree"
)

// ConditionResult is the condition command's payload.
type ConditionResult struct {
	Mode    string                `json:"mode"`
	Combine string                `json:"combine"`
	SQL     string                `json:"sql"`
	Params  map[string]ir.IRValue `json:"params"`
	Dialect string                `json:"dialect"`
	Bound   string                `json:"bound_sql"`
}

func (r ConditionResult) String() string {
	var b strings.Builder
	b.WriteString(r.SQL)
	for _, name := range ir.IRObject(r.Params).SortedKeys() {
		fmt.Fprintf(&b, "\n  :%s = %s", name, ir.Text(r.Params[name]))
	}
	if r.Bound != r.SQL {
		fmt.Fprintf(&b, "\n%s: %s", r.Dialect, r.Bound)
	}
	return b.String()
}

// NewConditionCommand creates the condition command.
func NewConditionCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "condition",
		Short: "Compile a tree search condition",
		Long: `Compile the WHERE condition selecting rows related to the reference
entities, and show it with its parameters and as bound for the dialect.

Reference entities come from --ids (read from --db) or --entities (JSON).
Without either, the empty-list identity is printed: 1 = 0 for or,
1 = 1 for and.

Examples:
  treeq condition --db tree.db --ids 3 --mode descendants
  treeq condition --db tree.db --ids 3,9 --combine and --dialect postgres
  treeq condition --entities '[{"id":3,"level":2,"left":3,"right":4,"root":1}]'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCondition(rootOpts, flags, cmd)
		},
	}

	flags.register(cmd)
	return cmd
}

func runCondition(opts *RootOptions, flags *searchFlags, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return f.Fail("failed to load config", err)
	}
	if err := flags.apply(cfg); err != nil {
		return f.Fail("invalid flags", err)
	}

	entities, st, err := flags.entities(cmd.Context(), cfg)
	if err != nil {
		return f.Fail("failed to read reference entities", err)
	}
	if st != nil {
		defer st.Close()
	}
	f.VerboseLog("Compiling %s search over %d entity(ies) as %s", cfg.Mode, len(entities), cfg.Alias)

	cond, err := tree.Compile(entities, cfg.Alias, cfg.TreeOptions()...)
	if err != nil {
		return f.Fail("failed to compile condition", err)
	}
	sql, err := cond.SQL()
	if err != nil {
		return f.Fail("failed to render condition", err)
	}
	bound, _, err := cond.Bind(cfg.Dialect)
	if err != nil {
		return f.Fail("failed to bind condition", err)
	}

	return f.Success(ConditionResult{
		Mode:    cond.Mode().String(),
		Combine: string(cond.Combine()),
		SQL:     sql,
		Params:  cond.Params(),
		Dialect: cfg.Dialect.String(),
		Bound:   bound,
	})
}
