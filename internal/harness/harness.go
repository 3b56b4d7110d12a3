package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/treeq/internal/config"
	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/dql"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/qerr"
	"github.com/roach88/treeq/internal/query"
	"github.com/roach88/treeq/internal/store"
	"github.com/roach88/treeq/internal/tree"
)

const defaultAlias = "n"

// Harness runs the cases of one scenario against a seeded store.
type Harness struct {
	scenario *Scenario
	store    *store.Store
	exec     *query.Executor
	mapping  tree.Mapping
	logger   *slog.Logger
}

// Run executes a scenario with logging discarded.
// Each run gets its own in-memory store, so scenarios may run concurrently.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return RunWithLogger(ctx, scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger executes a scenario, logging each case and every executed
// statement to logger.
func RunWithLogger(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if scenario == nil {
		return nil, fmt.Errorf("scenario is nil")
	}

	st, err := store.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()

	if err := st.InsertNodes(ctx, scenario.Nodes); err != nil {
		return nil, fmt.Errorf("failed to seed nodes: %w", err)
	}

	h := &Harness{
		scenario: scenario,
		store:    st,
		exec:     query.NewExecutor(st.DB(), st.Dialect()).WithLogger(logger),
		mapping:  config.StoreMapping(scenario.Mapping),
		logger:   logger.With("scenario", scenario.Name),
	}

	result := NewResult()
	for _, c := range scenario.Cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := h.runCase(ctx, c)
		h.logger.Debug("case finished",
			"case", c.Name,
			"kind", out.Kind,
			"pass", out.Pass,
			"error_code", out.ErrorCode)
		result.addCase(out)
	}
	return result, nil
}

func (h *Harness) runCase(ctx context.Context, c Case) CaseResult {
	out := CaseResult{Name: c.Name, Kind: c.Kind(), Pass: true}

	var err error
	switch out.Kind {
	case KindExpr:
		out.SQL, err = h.compileExpr(c)
	default:
		out.SQL, out.IDs, err = h.search(ctx, c)
	}
	if err != nil {
		out.SQL = ""
		out.IDs = nil
		out.ErrorCode = string(qerr.CodeOf(err))
		if out.ErrorCode == "" {
			// Not a compiler error: the case cannot pass whatever it expects.
			out.addError(fmt.Sprintf("unexpected error: %v", err))
			return out
		}
		if c.ExpectError == "" {
			out.addError(fmt.Sprintf("unexpected error: %v", err))
		}
	}

	for _, msg := range checkCase(c, out) {
		out.addError(msg)
	}
	return out
}

func (h *Harness) compileExpr(c Case) (string, error) {
	d, err := dialect.Parse(c.Dialect)
	if err != nil {
		return "", err
	}
	return dql.Compile(c.Expr, d)
}

// search compiles the case's condition and runs it. The condition SQL is
// returned as compiled, with named placeholders.
func (h *Harness) search(ctx context.Context, c Case) (string, []int64, error) {
	mode, err := tree.ParseSearchMode(c.Mode)
	if err != nil {
		return "", nil, err
	}

	nodes, err := h.store.GetNodes(ctx, c.Entities)
	if err != nil {
		return "", nil, fmt.Errorf("load entities: %w", err)
	}
	entities, err := tree.EntitiesOf(nodes)
	if err != nil {
		return "", nil, err
	}

	alias := h.alias()
	cond, err := tree.Compile(entities, alias,
		tree.WithMode(mode),
		tree.WithCombine(tree.Combine(strings.ToLower(strings.TrimSpace(c.Combine)))),
		tree.WithMapping(h.mapping))
	if err != nil {
		return "", nil, err
	}
	sql, err := cond.SQL()
	if err != nil {
		return "", nil, err
	}

	b := query.New("nodes", alias).WhereCondition(cond)
	if c.OrderBy != "" {
		b.OrderBy(c.OrderBy, query.Asc)
	}
	b.OrderBy(alias+"."+h.mapping.ID, query.Asc)

	rows, err := h.exec.Rows(ctx, b)
	if err != nil {
		return "", nil, err
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		id, ok := row[h.mapping.ID].(ir.IRInt)
		if !ok {
			return "", nil, fmt.Errorf("column %q is %T, not an integer", h.mapping.ID, row[h.mapping.ID])
		}
		ids = append(ids, int64(id))
	}
	return sql, ids, nil
}

func (h *Harness) alias() string {
	if h.scenario.Alias != "" {
		return h.scenario.Alias
	}
	return defaultAlias
}

// checkCase compares an observed outcome against the case's expectations.
func checkCase(c Case, out CaseResult) []string {
	var errs []string

	if c.ExpectError != "" && out.ErrorCode != c.ExpectError {
		got := out.ErrorCode
		if got == "" {
			got = "success"
		}
		errs = append(errs, fmt.Sprintf("expected error %s, got %s", c.ExpectError, got))
	}

	if c.ExpectSQL != "" && out.ErrorCode == "" && out.SQL != c.ExpectSQL {
		errs = append(errs, fmt.Sprintf("sql mismatch:\n  expected: %s\n  actual:   %s", c.ExpectSQL, out.SQL))
	}

	if c.ExpectIDs != nil && out.ErrorCode == "" && !slices.Equal(c.ExpectIDs, out.IDs) {
		errs = append(errs, fmt.Sprintf("ids mismatch: expected %v, got %v", c.ExpectIDs, out.IDs))
	}

	return errs
}
