package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/queryir"
	"github.com/roach88/treeq/internal/testutil"
	"github.com/roach88/treeq/internal/tree"
)

func sampleEntities(t *testing.T, ids ...int64) []tree.Entity {
	t.Helper()
	entities, err := tree.EntitiesOf(testutil.NodesByID(ids...))
	require.NoError(t, err)
	return entities
}

func matchingIDs(t *testing.T, e *Executor, b *Builder) []int64 {
	t.Helper()
	rows, err := e.Rows(context.Background(), b.OrderBy("n.id", Asc))
	require.NoError(t, err)

	ids := []int64{}
	for _, row := range rows {
		id, ok := row["id"].(ir.IRInt)
		require.True(t, ok, "id column is %T", row["id"])
		ids = append(ids, int64(id))
	}
	return ids
}

func TestExecutor_TreeSearches(t *testing.T) {
	s := testutil.SampleStore(t)
	e := NewExecutor(s.DB(), s.Dialect())

	tests := []struct {
		name    string
		ids     []int64
		mode    tree.SearchMode
		combine tree.Combine
		want    []int64
	}{
		{"self", []int64{5}, tree.SearchSelf, tree.CombineOr, []int64{5}},
		{"ancestors of phones", []int64{2}, tree.SearchAncestors, tree.CombineOr, []int64{3, 5}},
		{"ancestors of root", []int64{1}, tree.SearchAncestors, tree.CombineOr, []int64{2, 3, 5, 8, 9}},
		{"descendants of android", []int64{3}, tree.SearchDescendants, tree.CombineOr, []int64{1, 2}},
		{"descendants of ultrabooks", []int64{9}, tree.SearchDescendants, tree.CombineOr, []int64{1, 8}},
		{"everywhere from phones", []int64{2}, tree.SearchEverywhere, tree.CombineOr, []int64{1, 2, 3, 5}},
		{"descendants any", []int64{3, 9}, tree.SearchDescendants, tree.CombineOr, []int64{1, 2, 8}},
		{"descendants all", []int64{3, 9}, tree.SearchDescendants, tree.CombineAnd, []int64{1}},
		{"everywhere all", []int64{3, 9}, tree.SearchEverywhere, tree.CombineAnd, []int64{1}},
		{"other tree", []int64{14}, tree.SearchDescendants | tree.SearchSelf, tree.CombineOr, []int64{13, 14}},
		{"no entities or", nil, tree.SearchEverywhere, tree.CombineOr, []int64{}},
		{"no entities and", nil, tree.SearchEverywhere, tree.CombineAnd, []int64{1, 2, 3, 5, 8, 9, 13, 14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("nodes", "n").WhereTree(sampleEntities(t, tt.ids...),
				tree.WithMode(tt.mode),
				tree.WithCombine(tt.combine),
				tree.WithOverrides(testutil.SampleMapping()))
			assert.Equal(t, tt.want, matchingIDs(t, e, b))
		})
	}
}

func TestExecutor_RankOrdering(t *testing.T) {
	s := testutil.SampleStore(t)
	e := NewExecutor(s.DB(), dialect.SQLite)

	b := New("nodes", "n").
		WhereTree(sampleEntities(t, 2), tree.WithOverrides(testutil.SampleMapping())).
		OrderBy("RANK(n.status, 'closed', 'pending', 'active')", Asc).
		OrderBy("n.id", Asc)

	pairs, err := e.Pairs(context.Background(), b, "name", "id")
	require.NoError(t, err)

	var names []ir.IRValue
	for _, p := range pairs {
		names = append(names, p.Value)
	}
	assert.Equal(t, []ir.IRValue{
		ir.IRString("iOS"),
		ir.IRString("Android"),
		ir.IRString("Electronics"),
		ir.IRString("Phones"),
	}, names)
	assert.Equal(t, ir.IRInt(5), pairs[0].Key)
}

func TestExecutor_SingleRow(t *testing.T) {
	s := testutil.SampleStore(t)
	e := NewExecutor(s.DB(), dialect.SQLite)

	b := New("nodes", "n").
		Where(queryir.Eq("n", "id", "id"), map[string]ir.IRValue{"id": ir.IRInt(1)}).
		AddSelectFilter(func(b *Builder) {
			b.TrySelect("n", "name")
		})
	row, err := e.OneOrNull(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("Electronics"), row["name"])

	scalar := New("nodes", "n").
		Where(queryir.Eq("n", "id", "id"), map[string]ir.IRValue{"id": ir.IRInt(1)}).
		TrySelect("n", "id")
	v, err := e.SingleScalar(context.Background(), scalar)
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(1), v)
}

func TestExecutor_OneOrNull(t *testing.T) {
	s := testutil.SampleStore(t)
	e := NewExecutor(s.DB(), s.Dialect())
	ctx := context.Background()

	none := New("nodes", "n").WhereTree(nil)
	row, err := e.OneOrNull(ctx, none)
	require.NoError(t, err)
	assert.Nil(t, row)

	many := New("nodes", "n")
	_, err = e.OneOrNull(ctx, many)
	assert.ErrorIs(t, err, ErrNonUnique)
}

func TestExecutor_SingleScalar(t *testing.T) {
	s := testutil.SampleStore(t)
	e := NewExecutor(s.DB(), s.Dialect())
	ctx := context.Background()

	_, err := e.SingleScalar(ctx, New("nodes", "n").WhereTree(nil))
	assert.ErrorIs(t, err, ErrNoResult)

	_, err = e.SingleScalar(ctx, New("nodes", "n"))
	assert.ErrorIs(t, err, ErrNonUnique)
}

func TestExecutor_PairsMissingColumn(t *testing.T) {
	s := testutil.SampleStore(t)
	e := NewExecutor(s.DB(), s.Dialect())

	_, err := e.Pairs(context.Background(), New("nodes", "n").TrySelect("n", "name"), "status", "id")
	assert.Error(t, err)
}
