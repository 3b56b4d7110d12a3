package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/queryir"
)

// Literal predicates for empty combinators.
const (
	alwaysTrue  = "1 = 1"
	alwaysFalse = "1 = 0"
)

// SQLCompiler compiles QueryIR to SQL text for one dialect.
//
// Values are NEVER interpolated: predicates reference named parameters and
// Bind turns them into the dialect's placeholder style.
type SQLCompiler struct {
	Dialect dialect.Dialect
}

// NewSQLCompiler creates a new SQLCompiler for d.
func NewSQLCompiler(d dialect.Dialect) *SQLCompiler {
	return &SQLCompiler{Dialect: d}
}

// CompilePredicate renders a predicate with :name placeholders.
// The text is dialect independent; Bind rewrites the placeholders.
func CompilePredicate(p queryir.Predicate) (string, error) {
	if p == nil {
		return alwaysTrue, nil
	}

	switch pred := p.(type) {
	case queryir.Compare:
		return compileCompare(pred)
	case *queryir.Compare:
		return compileCompare(*pred)
	case queryir.And:
		return compileComposite(pred.Predicates, " AND ", alwaysTrue)
	case *queryir.And:
		return compileComposite(pred.Predicates, " AND ", alwaysTrue)
	case queryir.Or:
		return compileComposite(pred.Predicates, " OR ", alwaysFalse)
	case *queryir.Or:
		return compileComposite(pred.Predicates, " OR ", alwaysFalse)
	case queryir.Raw:
		return compileRaw(pred)
	case *queryir.Raw:
		return compileRaw(*pred)
	default:
		return "", fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileCompare compiles "alias.field <op> :param".
func compileCompare(c queryir.Compare) (string, error) {
	if !queryir.ValidOps[c.Op] {
		return "", fmt.Errorf("unsupported operator %q", c.Op)
	}
	if c.Param == "" {
		return "", fmt.Errorf("comparison on %q has no parameter", c.Column.Field)
	}
	return fmt.Sprintf("%s %s :%s", columnSQL(c.Column), c.Op, c.Param), nil
}

// compileComposite joins sub-predicates with sep.
// A single part renders bare; compound parts of a multi-part composite are
// parenthesized so operator precedence never changes the meaning.
func compileComposite(preds []queryir.Predicate, sep, empty string) (string, error) {
	switch len(preds) {
	case 0:
		return empty, nil
	case 1:
		return CompilePredicate(preds[0])
	}

	parts := make([]string, 0, len(preds))
	for _, pred := range preds {
		sql, err := CompilePredicate(pred)
		if err != nil {
			return "", err
		}
		if isCompound(pred, sql) {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
	}

	return strings.Join(parts, sep), nil
}

// compileRaw returns the caller's fragment unchanged.
func compileRaw(r queryir.Raw) (string, error) {
	if strings.TrimSpace(r.SQL) == "" {
		return "", fmt.Errorf("raw predicate with empty SQL")
	}
	return r.SQL, nil
}

// isCompound reports whether a rendered part needs parentheses inside a
// larger composite.
func isCompound(p queryir.Predicate, sql string) bool {
	switch pred := p.(type) {
	case queryir.And:
		return compositeIsCompound(pred.Predicates, sql)
	case *queryir.And:
		return compositeIsCompound(pred.Predicates, sql)
	case queryir.Or:
		return compositeIsCompound(pred.Predicates, sql)
	case *queryir.Or:
		return compositeIsCompound(pred.Predicates, sql)
	case queryir.Compare, *queryir.Compare:
		return false
	}
	upper := strings.ToUpper(sql)
	return strings.Contains(upper, " OR ") || strings.Contains(upper, " AND ")
}

// compositeIsCompound unwraps single-part composites, which render as their
// only part.
func compositeIsCompound(preds []queryir.Predicate, sql string) bool {
	switch len(preds) {
	case 0:
		return false
	case 1:
		return isCompound(preds[0], sql)
	default:
		return true
	}
}

func columnSQL(c queryir.Column) string {
	if c.Alias == "" {
		return c.Field
	}
	return c.Alias + "." + c.Field
}

// Compile converts a query to SQL in the compiler's dialect.
// Returns (sql, args, error); args are ordered for the dialect's placeholders.
func (c *SQLCompiler) Compile(q queryir.Query, params map[string]ir.IRValue) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	var text string
	var err error
	switch query := q.(type) {
	case queryir.Select:
		text, err = c.compileSelect(query)
	case *queryir.Select:
		text, err = c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
	if err != nil {
		return "", nil, err
	}

	return Bind(text, c.Dialect, params)
}

// compileSelect renders a Select with :name placeholders.
func (c *SQLCompiler) compileSelect(q queryir.Select) (string, error) {
	if q.From == "" {
		return "", fmt.Errorf("select without source table")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if q.Distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(selectList(q))

	b.WriteString(" FROM ")
	b.WriteString(q.From)
	if q.Alias != "" {
		b.WriteString(" ")
		b.WriteString(q.Alias)
	}

	for _, j := range q.Joins {
		joinSQL, err := compileJoin(j)
		if err != nil {
			return "", fmt.Errorf("compile join %s: %w", j.Alias, err)
		}
		b.WriteString(" ")
		b.WriteString(joinSQL)
	}

	if q.Filter != nil {
		filterSQL, err := CompilePredicate(q.Filter)
		if err != nil {
			return "", fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(filterSQL)
	}

	if len(q.OrderBy) > 0 {
		terms := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			terms[i] = o.Expr + " " + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	return b.String(), nil
}

func selectList(q queryir.Select) string {
	if len(q.Columns) > 0 {
		return strings.Join(q.Columns, ", ")
	}
	if q.Alias != "" {
		return q.Alias + ".*"
	}
	return "*"
}

func compileJoin(j queryir.Join) (string, error) {
	var kw string
	switch j.Kind {
	case queryir.JoinInner:
		kw = "INNER JOIN"
	case queryir.JoinLeft:
		kw = "LEFT JOIN"
	default:
		return "", fmt.Errorf("unsupported join kind %q", j.Kind)
	}

	sql := kw + " " + j.Table
	if j.Alias != "" {
		sql += " " + j.Alias
	}
	if j.On != nil {
		on, err := CompilePredicate(j.On)
		if err != nil {
			return "", err
		}
		sql += " ON " + on
	}
	return sql, nil
}
