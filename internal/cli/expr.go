package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/dql"
)

// ExprResult is the expr command's payload.
type ExprResult struct {
	Expression string `json:"expression"`
	Dialect    string `json:"dialect"`
	SQL        string `json:"sql"`
}

func (r ExprResult) String() string { return r.SQL }

// NewExprCommand creates the expr command.
func NewExprCommand(rootOpts *RootOptions) *cobra.Command {
	var dialectName string

	cmd := &cobra.Command{
		Use:     "expr <expression>",
		Aliases: []string{"rank"},
		Short:   "Render an ordering expression for a dialect",
		Long: `Parse an expression and render it as SQL for a dialect.

RANK(field, v1, v2, ...) orders rows by the position of field in the
value list: FIELD() on mysql and mariadb, a CASE expression on postgres
and sqlite. Other dialects have no rendering.

Examples:
  treeq expr "RANK(n.status, 'closed', 'pending', 'active')" --dialect mysql
  treeq expr "RANK(n.id, :first, 2)" --dialect postgres`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpr(rootOpts, dialectName, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&dialectName, "dialect", "", "SQL dialect (default from config)")
	return cmd
}

func runExpr(opts *RootOptions, dialectName, src string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return f.Fail("failed to load config", err)
	}
	d := cfg.Dialect
	if dialectName != "" {
		if d, err = dialect.Parse(dialectName); err != nil {
			return f.Fail("invalid flags", err)
		}
	}

	sql, err := dql.Compile(src, d)
	if err != nil {
		return f.Fail("failed to compile expression", err)
	}
	return f.Success(ExprResult{Expression: src, Dialect: d.String(), SQL: sql})
}
