package query

import (
	"fmt"
	"slices"

	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/dql"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/qerr"
	"github.com/roach88/treeq/internal/queryir"
	"github.com/roach88/treeq/internal/querysql"
	"github.com/roach88/treeq/internal/tree"
)

// Direction is an ORDER BY direction.
type Direction bool

const (
	Asc  Direction = false
	Desc Direction = true
)

// Filter modifies a Builder while a statement is being built.
type Filter func(b *Builder)

// Statement is a rendered query ready for database/sql.
type Statement struct {
	SQL     string
	Args    []any
	Dialect dialect.Dialect
}

type selection struct {
	alias    string
	distinct bool
	columns  []string
}

type ordering struct {
	expr string
	dir  Direction
}

// Builder accumulates the parts of a SELECT over one aliased table.
// A Builder is not safe for concurrent use.
type Builder struct {
	table string
	alias string

	joins    []queryir.Join
	joinKeys map[string]bool

	selects       []*selection
	filters       []Filter
	selectFilters []Filter

	where  []queryir.Predicate
	params map[string]ir.IRValue
	order  []ordering
	err    error
}

// New starts a query over table, addressed as alias.
func New(table, alias string) *Builder {
	b := &Builder{
		table:    table,
		alias:    alias,
		joinKeys: map[string]bool{},
		params:   map[string]ir.IRValue{},
	}
	if table == "" || alias == "" {
		b.fail(qerr.InvalidArgument("query needs a table and an alias"))
	}
	return b
}

// Alias returns the root alias.
func (b *Builder) Alias() string { return b.alias }

// Err returns the first error recorded by a builder method.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Join adds a join of the given kind unless an identical (kind, table,
// alias) join is already present.
func (b *Builder) Join(kind queryir.JoinKind, table, alias string, on queryir.Predicate) *Builder {
	switch kind {
	case queryir.JoinInner, queryir.JoinLeft:
	default:
		b.fail(qerr.InvalidArgument("unknown join type %q", string(kind)))
		return b
	}

	key := string(kind) + "\x00" + table + "\x00" + alias
	if b.joinKeys[key] {
		return b
	}
	b.joinKeys[key] = true
	b.joins = append(b.joins, queryir.Join{Kind: kind, Table: table, Alias: alias, On: on})
	return b
}

// TryJoin adds an inner join once.
func (b *Builder) TryJoin(table, alias string, on queryir.Predicate) *Builder {
	return b.Join(queryir.JoinInner, table, alias, on)
}

// TryLeftJoin adds a left join once.
func (b *Builder) TryLeftJoin(table, alias string, on queryir.Predicate) *Builder {
	return b.Join(queryir.JoinLeft, table, alias, on)
}

// TrySelect selects columns of alias. Calls for the same alias merge their
// columns. With no columns at all the whole row (alias.*) is selected;
// otherwise id is always included first.
func (b *Builder) TrySelect(alias string, columns ...string) *Builder {
	return b.trySelect(alias, false, columns)
}

// TryDistinctSelect is TrySelect with SELECT DISTINCT.
func (b *Builder) TryDistinctSelect(alias string, columns ...string) *Builder {
	return b.trySelect(alias, true, columns)
}

func (b *Builder) trySelect(alias string, distinct bool, columns []string) *Builder {
	for _, s := range b.selects {
		if s.alias == alias {
			s.columns = append(s.columns, columns...)
			s.distinct = s.distinct || distinct
			return b
		}
	}
	b.selects = append(b.selects, &selection{
		alias:    alias,
		distinct: distinct,
		columns:  slices.Clone(columns),
	})
	return b
}

// AddFilter registers a filter applied at build time, after joins.
func (b *Builder) AddFilter(f Filter) *Builder {
	b.filters = append(b.filters, f)
	return b
}

// AddSelectFilter registers a filter applied at build time, after the
// select list is assembled.
func (b *Builder) AddSelectFilter(f Filter) *Builder {
	b.selectFilters = append(b.selectFilters, f)
	return b
}

// SetParameter binds a value for :name.
func (b *Builder) SetParameter(name string, value any) *Builder {
	v, err := ir.FromAny(value)
	if err != nil {
		b.fail(qerr.InvalidArgument("parameter :%s: %v", name, err))
		return b
	}
	return b.bind(map[string]ir.IRValue{name: v})
}

// AddParameters binds every entry of params.
func (b *Builder) AddParameters(params map[string]any) *Builder {
	for _, name := range sortedKeys(params) {
		b.SetParameter(name, params[name])
	}
	return b
}

func (b *Builder) bind(params map[string]ir.IRValue) *Builder {
	for _, name := range sortedKeys(params) {
		v := params[name]
		if prev, ok := b.params[name]; ok && !ir.Equal(prev, v) {
			b.fail(qerr.InvalidArgument("parameter :%s is already bound to %s", name, ir.Text(prev)))
			continue
		}
		b.params[name] = v
	}
	return b
}

// Where ANDs pred into the WHERE clause and binds params.
func (b *Builder) Where(pred queryir.Predicate, params map[string]ir.IRValue) *Builder {
	if pred == nil {
		b.fail(qerr.InvalidArgument("nil predicate"))
		return b
	}
	b.where = append(b.where, pred)
	return b.bind(params)
}

// WhereCondition ANDs a compiled tree condition into the WHERE clause.
func (b *Builder) WhereCondition(c *tree.Condition) *Builder {
	if c == nil {
		b.fail(qerr.InvalidArgument("nil condition"))
		return b
	}
	return b.Where(c.Expr(), c.Params())
}

// WhereTree compiles a tree condition for the root alias and adds it.
func (b *Builder) WhereTree(entities []tree.Entity, opts ...tree.Option) *Builder {
	c, err := tree.Compile(entities, b.alias, opts...)
	if err != nil {
		b.fail(fmt.Errorf("tree condition: %w", err))
		return b
	}
	return b.WhereCondition(c)
}

// OrderBy appends an ordering expression written in the dql expression
// language, for example "RANK(n.status, 'active', 'pending')".
func (b *Builder) OrderBy(expr string, dir Direction) *Builder {
	b.order = append(b.order, ordering{expr: expr, dir: dir})
	return b
}

// Build renders the statement for d. Filters run on a copy, so Build may
// be called repeatedly and for several dialects.
func (b *Builder) Build(d dialect.Dialect) (*Statement, error) {
	if b.err != nil {
		return nil, b.err
	}

	c := b.clone()
	for _, f := range b.filters {
		f(c)
	}
	for _, f := range b.selectFilters {
		f(c)
	}
	if c.err != nil {
		return nil, c.err
	}

	sel := c.selectQuery()
	sel.Filter = c.filter()

	walker := dql.NewWalker(d)
	for _, o := range c.order {
		node, err := dql.Parse(o.expr, nil)
		if err != nil {
			return nil, fmt.Errorf("order by %q: %w", o.expr, err)
		}
		sql, err := walker.Walk(node)
		if err != nil {
			return nil, fmt.Errorf("order by %q: %w", o.expr, err)
		}
		sel.OrderBy = append(sel.OrderBy, queryir.OrderTerm{Expr: sql, Desc: bool(o.dir)})
	}

	text, args, err := querysql.NewSQLCompiler(d).Compile(sel, c.params)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return &Statement{SQL: text, Args: args, Dialect: d}, nil
}

func (b *Builder) clone() *Builder {
	c := &Builder{
		table:    b.table,
		alias:    b.alias,
		joins:    slices.Clone(b.joins),
		joinKeys: make(map[string]bool, len(b.joinKeys)),
		where:    slices.Clone(b.where),
		params:   make(map[string]ir.IRValue, len(b.params)),
		order:    slices.Clone(b.order),
	}
	for k := range b.joinKeys {
		c.joinKeys[k] = true
	}
	for k, v := range b.params {
		c.params[k] = v
	}
	for _, s := range b.selects {
		c.selects = append(c.selects, &selection{alias: s.alias, distinct: s.distinct, columns: slices.Clone(s.columns)})
	}
	return c
}

func (b *Builder) filter() queryir.Predicate {
	switch len(b.where) {
	case 0:
		return nil
	case 1:
		return b.where[0]
	default:
		return queryir.And{Predicates: slices.Clone(b.where)}
	}
}

func (b *Builder) selectQuery() queryir.Select {
	sel := queryir.Select{From: b.table, Alias: b.alias, Joins: b.joins}
	for _, s := range b.selects {
		sel.Distinct = sel.Distinct || s.distinct
		cols := dedupe(s.columns)
		if len(cols) == 0 {
			sel.Columns = append(sel.Columns, s.alias+".*")
			continue
		}
		if !slices.Contains(cols, "id") {
			cols = append([]string{"id"}, cols...)
		}
		for _, col := range cols {
			sel.Columns = append(sel.Columns, s.alias+"."+col)
		}
	}
	return sel
}

func dedupe(cols []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
