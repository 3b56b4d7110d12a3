package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/queryir"
)

func TestCompilePredicate_Compare(t *testing.T) {
	sql, err := CompilePredicate(queryir.Gt("n", "level", "level_n_2"))
	require.NoError(t, err)
	assert.Equal(t, "n.level > :level_n_2", sql)

	sql, err = CompilePredicate(&queryir.Compare{Column: queryir.Column{Field: "id"}, Op: queryir.OpEq, Param: "p"})
	require.NoError(t, err)
	assert.Equal(t, "id = :p", sql)
}

func TestCompilePredicate_EmptyCombinators(t *testing.T) {
	sql, err := CompilePredicate(queryir.AllOf())
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", sql, "empty AND is always true")

	sql, err = CompilePredicate(queryir.AnyOf())
	require.NoError(t, err)
	assert.Equal(t, "1 = 0", sql, "empty OR is always false")

	sql, err = CompilePredicate(nil)
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", sql)
}

func TestCompilePredicate_SinglePartIsBare(t *testing.T) {
	sql, err := CompilePredicate(queryir.AnyOf(queryir.AllOf(
		queryir.Gt("a", "level", "level_a_1"),
		queryir.Gt("a", "id", "left_a_1"),
	)))
	require.NoError(t, err)
	assert.Equal(t, "a.level > :level_a_1 AND a.id > :left_a_1", sql)
}

func TestCompilePredicate_ParenthesizesCompoundParts(t *testing.T) {
	pred := queryir.AnyOf(
		queryir.Eq("a", "id", "id_a_1"),
		queryir.AllOf(
			queryir.Gt("a", "level", "level_a_1"),
			queryir.Lt("a", "id", "right_a_1"),
		),
	)

	sql, err := CompilePredicate(pred)
	require.NoError(t, err)
	assert.Equal(t, "a.id = :id_a_1 OR (a.level > :level_a_1 AND a.id < :right_a_1)", sql)

	outer := queryir.AllOf(pred, queryir.Eq("a", "id", "id_a_2"))
	sql, err = CompilePredicate(outer)
	require.NoError(t, err)
	assert.Equal(t, "(a.id = :id_a_1 OR (a.level > :level_a_1 AND a.id < :right_a_1)) AND a.id = :id_a_2", sql)
}

func TestCompilePredicate_WrappedSinglePartStillParenthesized(t *testing.T) {
	inner := queryir.AnyOf(queryir.AllOf(
		queryir.Gt("a", "level", "level_a_1"),
		queryir.Lt("a", "id", "right_a_1"),
	))
	sql, err := CompilePredicate(queryir.AnyOf(inner, queryir.AnyOf(queryir.Eq("a", "id", "id_a_2"))))
	require.NoError(t, err)
	assert.Equal(t, "(a.level > :level_a_1 AND a.id < :right_a_1) OR a.id = :id_a_2", sql)
}

func TestCompilePredicate_Raw(t *testing.T) {
	sql, err := CompilePredicate(queryir.AllOf(
		queryir.Raw{SQL: "n.status = :s OR n.status = :t", Params: []string{"s", "t"}},
		queryir.Eq("n", "root", "r"),
	))
	require.NoError(t, err)
	assert.Equal(t, "(n.status = :s OR n.status = :t) AND n.root = :r", sql)

	_, err = CompilePredicate(queryir.Raw{SQL: "  "})
	assert.Error(t, err)
}

func TestCompilePredicate_Errors(t *testing.T) {
	_, err := CompilePredicate(queryir.Compare{Column: queryir.Column{Field: "x"}, Op: queryir.Op("LIKE"), Param: "p"})
	assert.ErrorContains(t, err, "unsupported operator")

	_, err = CompilePredicate(queryir.Compare{Column: queryir.Column{Field: "x"}, Op: queryir.OpEq})
	assert.ErrorContains(t, err, "no parameter")
}

func TestCompile_Select(t *testing.T) {
	c := NewSQLCompiler(dialect.SQLite)

	q := queryir.Select{
		From:     "nodes",
		Alias:    "n",
		Columns:  []string{"n.id", "n.name"},
		Distinct: true,
		Joins: []queryir.Join{{
			Kind:  queryir.JoinLeft,
			Table: "nodes",
			Alias: "p",
			On:    queryir.Raw{SQL: "p.id = n.root"},
		}},
		Filter:  queryir.Eq("n", "id", "id_n_3"),
		OrderBy: []queryir.OrderTerm{{Expr: "n.lft"}, {Expr: "n.id", Desc: true}},
	}

	sql, args, err := c.Compile(q, map[string]ir.IRValue{"id_n_3": ir.IRInt(3)})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT DISTINCT n.id, n.name FROM nodes n LEFT JOIN nodes p ON p.id = n.root WHERE n.id = :id_n_3 ORDER BY n.lft ASC, n.id DESC",
		sql)
	require.Len(t, args, 1)
}

func TestCompile_SelectDefaults(t *testing.T) {
	c := NewSQLCompiler(dialect.MySQL)

	sql, args, err := c.Compile(&queryir.Select{From: "nodes", Alias: "n"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT n.* FROM nodes n", sql)
	assert.Empty(t, args)

	sql, _, err = c.Compile(queryir.Select{From: "nodes"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM nodes", sql)
}

func TestCompile_Errors(t *testing.T) {
	c := NewSQLCompiler(dialect.MySQL)

	_, _, err := c.Compile(nil, nil)
	assert.ErrorContains(t, err, "nil query")

	_, _, err = c.Compile(queryir.Select{}, nil)
	assert.ErrorContains(t, err, "without source table")

	_, _, err = c.Compile(queryir.Select{
		From:  "nodes",
		Joins: []queryir.Join{{Kind: queryir.JoinKind("cross"), Table: "x"}},
	}, nil)
	assert.ErrorContains(t, err, "unsupported join kind")
}
