// Package query assembles SELECT statements around compiled tree
// conditions.
//
// A Builder collects joins, partial selects, WHERE predicates, parameters,
// ORDER BY expressions and deferred filters. Build renders everything for
// one dialect; an Executor runs the result against a database/sql handle
// and returns rows as ir.IRObject values.
//
//	b := query.New("nodes", "n").
//		WhereTree(entities, tree.WithMode(tree.SearchDescendants)).
//		OrderBy("RANK(n.status, 'active', 'pending')", query.Asc)
//	rows, err := query.NewExecutor(db, dialect.SQLite).Rows(ctx, b)
//
// Builder methods chain; the first error is kept and returned by Build.
package query
