package query

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/qerr"
	"github.com/roach88/treeq/internal/queryir"
	"github.com/roach88/treeq/internal/tree"
)

func TestBuild_Minimal(t *testing.T) {
	stmt, err := New("nodes", "n").Build(dialect.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "SELECT n.* FROM nodes n", stmt.SQL)
	assert.Empty(t, stmt.Args)
	assert.Equal(t, dialect.SQLite, stmt.Dialect)
}

func TestBuild_RequiresTableAndAlias(t *testing.T) {
	_, err := New("", "n").Build(dialect.SQLite)
	assert.True(t, qerr.IsInvalidArgument(err))
}

func TestTryJoin_Deduplicates(t *testing.T) {
	on := queryir.Raw{SQL: "r.id = n.root"}
	b := New("nodes", "n").
		TryJoin("nodes", "r", on).
		TryJoin("nodes", "r", on).
		TryLeftJoin("nodes", "r", on)

	stmt, err := b.Build(dialect.SQLite)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT n.* FROM nodes n INNER JOIN nodes r ON r.id = n.root LEFT JOIN nodes r ON r.id = n.root",
		stmt.SQL)
}

func TestJoin_UnknownKind(t *testing.T) {
	b := New("nodes", "n").Join(queryir.JoinKind("outer"), "nodes", "r", nil)
	require.Error(t, b.Err())
	assert.True(t, qerr.IsInvalidArgument(b.Err()))

	_, err := b.Build(dialect.SQLite)
	assert.ErrorIs(t, err, b.Err())
}

func TestTrySelect_MergesAndPrependsID(t *testing.T) {
	stmt, err := New("nodes", "n").
		TrySelect("n", "name").
		TrySelect("n", "status", "name").
		Build(dialect.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "SELECT n.id, n.name, n.status FROM nodes n", stmt.SQL)

	stmt, err = New("nodes", "n").
		TryDistinctSelect("n", "root", "id").
		Build(dialect.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "SELECT DISTINCT n.root, n.id FROM nodes n", stmt.SQL)

	stmt, err = New("nodes", "n").
		TryLeftJoin("nodes", "r", queryir.Raw{SQL: "r.id = n.root"}).
		TrySelect("n").
		TrySelect("r", "name").
		Build(dialect.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "SELECT n.*, r.id, r.name FROM nodes n LEFT JOIN nodes r ON r.id = n.root", stmt.SQL)
}

func TestFilters_AppliedInOrderOnEveryBuild(t *testing.T) {
	var calls []string
	b := New("nodes", "n").
		AddSelectFilter(func(b *Builder) {
			calls = append(calls, "select")
			b.TrySelect("n", "name")
		}).
		AddFilter(func(b *Builder) {
			calls = append(calls, "filter")
			b.Where(queryir.Eq("n", "status", "status"), map[string]ir.IRValue{"status": ir.IRString("active")})
		})

	for i := 0; i < 2; i++ {
		stmt, err := b.Build(dialect.Postgres)
		require.NoError(t, err)
		assert.Equal(t, "SELECT n.id, n.name FROM nodes n WHERE n.status = $1", stmt.SQL)
		assert.Equal(t, []any{"active"}, stmt.Args)
	}
	assert.Equal(t, []string{"filter", "select", "filter", "select"}, calls)
}

func TestWhere_CombinesWithAnd(t *testing.T) {
	entities := []tree.Entity{
		tree.Record{"id": 3, "level": 2, "lft": 3, "rgt": 4, "root": 1},
		tree.Record{"id": 9, "level": 2, "lft": 9, "rgt": 10, "root": 1},
	}
	b := New("nodes", "n").
		WhereTree(entities,
			tree.WithMode(tree.SearchSelf),
			tree.WithOverrides(map[string]string{"left": "lft", "right": "rgt"})).
		Where(queryir.Raw{SQL: "n.status <> :closed", Params: []string{"closed"}}, nil).
		SetParameter("closed", "closed")

	stmt, err := b.Build(dialect.MySQL)
	require.NoError(t, err)
	assert.Equal(t, "SELECT n.* FROM nodes n WHERE (n.id = ? OR n.id = ?) AND n.status <> ?", stmt.SQL)
	assert.Equal(t, []any{int64(3), int64(9), "closed"}, stmt.Args)
}

func TestWhereCondition_EmptyOr(t *testing.T) {
	c, err := tree.Compile(nil, "n")
	require.NoError(t, err)

	stmt, err := New("nodes", "n").WhereCondition(c).Build(dialect.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "SELECT n.* FROM nodes n WHERE 1 = 0", stmt.SQL)
}

func TestWhereTree_PropagatesCompileError(t *testing.T) {
	b := New("nodes", "n").WhereTree(nil, tree.WithCombine("xor"))
	assert.True(t, qerr.IsInvalidArgument(b.Err()))
}

func TestSetParameter_Conflicts(t *testing.T) {
	b := New("nodes", "n").SetParameter("a", 1).SetParameter("a", 1)
	assert.NoError(t, b.Err())

	b.SetParameter("a", 2)
	assert.True(t, qerr.IsInvalidArgument(b.Err()))

	b = New("nodes", "n").SetParameter("f", 1.5)
	assert.True(t, qerr.IsInvalidArgument(b.Err()))

	b = New("nodes", "n").AddParameters(map[string]any{"x": "a", "y": int64(2)})
	assert.NoError(t, b.Err())
}

func TestOrderBy_RendersPerDialect(t *testing.T) {
	b := New("nodes", "n").
		OrderBy("RANK(n.status, 'active', :second)", Asc).
		OrderBy("n.id", Desc).
		SetParameter("second", "pending")

	mysql, err := b.Build(dialect.MySQL)
	require.NoError(t, err)
	assert.Equal(t, "SELECT n.* FROM nodes n ORDER BY FIELD(n.status, 'active', ?) ASC, n.id DESC", mysql.SQL)

	pg, err := b.Build(dialect.Postgres)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT n.* FROM nodes n ORDER BY (CASE WHEN (n.status) = 'active' THEN 1 WHEN (n.status) = $1 THEN 2 END) ASC, n.id DESC",
		pg.SQL)

	lite, err := b.Build(dialect.SQLite)
	require.NoError(t, err)
	assert.Equal(t, []any{sql.Named("second", "pending")}, lite.Args)

	_, err = b.Build(dialect.MSSQL)
	assert.True(t, qerr.IsNotImplemented(err))
}

func TestOrderBy_ParseError(t *testing.T) {
	_, err := New("nodes", "n").OrderBy("RANK(n.status)", Asc).Build(dialect.MySQL)
	assert.True(t, qerr.IsParseError(err))
}

func TestBuild_UnboundParameter(t *testing.T) {
	_, err := New("nodes", "n").
		Where(queryir.Eq("n", "id", "missing"), nil).
		Build(dialect.SQLite)
	assert.True(t, qerr.IsInvalidArgument(err))
}
