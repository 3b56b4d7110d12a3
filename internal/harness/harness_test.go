package harness

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treeq/internal/testutil"
)

func sampleScenario(cases ...Case) *Scenario {
	return &Scenario{
		Name:        "sample",
		Description: "sample tree",
		Mapping:     testutil.SampleMapping(),
		Nodes:       testutil.SampleTree(),
		Cases:       cases,
	}
}

func TestRun_SearchCase(t *testing.T) {
	result, err := Run(context.Background(), sampleScenario(Case{
		Name:      "descendants of ultrabooks",
		Entities:  []int64{9},
		Mode:      "descendants",
		ExpectIDs: []int64{1, 8},
	}))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Cases, 1)
	c := result.Cases[0]
	assert.Equal(t, KindSearch, c.Kind)
	assert.Equal(t, []int64{1, 8}, c.IDs)
	assert.Equal(t, "n.level < :level_n_9 AND n.root = :root_n_9 AND n.lft < :id_n_9 AND n.rgt > :id_n_9", c.SQL)
}

func TestRun_CustomAlias(t *testing.T) {
	s := sampleScenario(Case{
		Name:      "self",
		Entities:  []int64{3},
		Mode:      "self",
		ExpectSQL: "t.id = :id_t_3",
		ExpectIDs: []int64{3},
	})
	s.Alias = "t"

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ReportsMismatches(t *testing.T) {
	result, err := Run(context.Background(), sampleScenario(
		Case{Name: "wrong ids", Entities: []int64{5}, Mode: "self", ExpectIDs: []int64{3}},
		Case{Name: "wrong sql", Expr: "RANK(n.id, 1)", Dialect: "mysql", ExpectSQL: "FIELD(n.id)"},
		Case{Name: "missing error", Expr: "RANK(n.id, 1)", Dialect: "mysql", ExpectError: "PARSE_ERROR"},
		Case{Name: "unexpected error", Expr: "RANK(n.id)", Dialect: "mysql", ExpectSQL: "FIELD(n.id)"},
	))
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Cases, 4)
	for _, c := range result.Cases {
		assert.False(t, c.Pass, c.Name)
	}
	assert.Contains(t, result.Errors[0], "wrong ids: ids mismatch: expected [3], got [5]")
	assert.Contains(t, result.Errors[1], "wrong sql: sql mismatch")
	assert.Contains(t, result.Errors[2], "expected error PARSE_ERROR, got success")
	assert.Contains(t, result.Errors[3], "unexpected error")
	assert.Equal(t, "PARSE_ERROR", result.Cases[3].ErrorCode)
	assert.Empty(t, result.Cases[3].SQL)
}

func TestRun_ExpectedErrorPasses(t *testing.T) {
	result, err := Run(context.Background(), sampleScenario(
		Case{Name: "xor", Entities: []int64{2}, Combine: "XOR", ExpectError: "INVALID_ARGUMENT"},
		Case{Name: "mssql", Expr: "RANK(n.id, 1)", Dialect: "sqlserver", ExpectError: "NOT_IMPLEMENTED"},
	))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Nil(t, result.Cases[0].IDs)
}

func TestRun_CombineIsCaseInsensitive(t *testing.T) {
	result, err := Run(context.Background(), sampleScenario(Case{
		Name:      "and",
		Entities:  []int64{3, 9},
		Mode:      "everywhere",
		Combine:   "AND",
		ExpectIDs: []int64{1},
	}))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_IsolatedStores(t *testing.T) {
	a := sampleScenario(Case{Name: "all", Combine: "and", ExpectIDs: []int64{1, 2, 3, 5, 8, 9, 13, 14}})
	b := &Scenario{
		Name:        "small",
		Description: "a single node",
		Nodes:       testutil.NodesByID(13),
		Mapping:     testutil.SampleMapping(),
		Cases:       []Case{{Name: "all", Combine: "and", ExpectIDs: []int64{13}}},
	}

	for _, s := range []*Scenario{a, b, a} {
		result, err := Run(context.Background(), s)
		require.NoError(t, err)
		assert.True(t, result.Pass, "%s: %v", s.Name, result.Errors)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, sampleScenario(Case{Name: "self", Entities: []int64{5}, Mode: "self", ExpectIDs: []int64{5}}))
	require.Error(t, err)
}

func TestRun_NilScenario(t *testing.T) {
	_, err := Run(context.Background(), nil)
	require.Error(t, err)
}

func TestRunWithLogger_LogsCases(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := RunWithLogger(context.Background(), sampleScenario(Case{
		Name:      "self",
		Entities:  []int64{5},
		Mode:      "self",
		ExpectIDs: []int64{5},
	}), logger)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "case finished")
	assert.Contains(t, buf.String(), "scenario=sample")
}
