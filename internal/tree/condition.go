package tree

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/qerr"
	"github.com/roach88/treeq/internal/queryir"
	"github.com/roach88/treeq/internal/querysql"
)

// Condition is a compiled search condition: a boolean expression over
// aliased columns plus the values of every parameter it references.
type Condition struct {
	expr    queryir.Predicate
	params  map[string]ir.IRValue
	alias   string
	mode    SearchMode
	combine Combine
}

// Expr returns the expression tree.
func (c *Condition) Expr() queryir.Predicate { return c.expr }

// Params returns a copy of the parameter bindings.
func (c *Condition) Params() map[string]ir.IRValue { return maps.Clone(c.params) }

// Alias returns the alias the condition was compiled for.
func (c *Condition) Alias() string { return c.alias }

// Mode returns the search mode used.
func (c *Condition) Mode() SearchMode { return c.mode }

// Combine returns the operator that joined the per-entity predicates.
func (c *Condition) Combine() Combine { return c.combine }

// SQL renders the expression with :name placeholders.
func (c *Condition) SQL() (string, error) {
	return querysql.CompilePredicate(c.expr)
}

// Bind renders the expression in d's placeholder style together with the
// positional or named arguments for it.
func (c *Condition) Bind(d dialect.Dialect) (string, []any, error) {
	text, err := c.SQL()
	if err != nil {
		return "", nil, err
	}
	return querysql.Bind(text, d, c.params)
}

// Validate checks that every referenced parameter has exactly one binding
// and that no binding is left unused.
func (c *Condition) Validate() error {
	res := queryir.Validate(c.expr, c.params)
	if res.Valid {
		return nil
	}
	return qerr.InvalidArgument("invalid condition: %s", strings.Join(res.Problems, "; "))
}

type options struct {
	combine Combine
	mode    SearchMode
	mapping Mapping
}

// Option configures Compile.
type Option func(*options)

// WithCombine sets the operator joining per-entity predicates.
// The empty value means CombineOr.
func WithCombine(c Combine) Option {
	return func(o *options) { o.combine = c }
}

// WithMode sets the search mode. Defaults to SearchEverywhere.
func WithMode(m SearchMode) Option {
	return func(o *options) { o.mode = m }
}

// WithMapping sets the field mapping. Defaults to DefaultMapping.
func WithMapping(m Mapping) Option {
	return func(o *options) { o.mapping = m }
}

// WithOverrides resolves overrides with ResolveMapping and uses the result.
func WithOverrides(overrides map[string]string) Option {
	return func(o *options) { o.mapping = ResolveMapping(overrides) }
}

// Compile builds the condition matching rows related to any (CombineOr) or
// all (CombineAnd) of the reference entities.
//
// Per-entity predicates keep input order. The combine operator is checked
// before any entity is read. An empty entity list yields the identity of
// the operator: "1 = 0" for OR, "1 = 1" for AND, with no parameters.
func Compile(entities []Entity, alias string, opts ...Option) (*Condition, error) {
	o := options{
		combine: CombineOr,
		mode:    SearchEverywhere,
		mapping: DefaultMapping(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.combine == "" {
		o.combine = CombineOr
	}
	if err := o.combine.Validate(); err != nil {
		return nil, err
	}

	namer := NewParamNamer()
	parts := make([]queryir.Predicate, 0, len(entities))
	params := map[string]ir.IRValue{}

	for i, e := range entities {
		pred, p, err := BuildFor(o.mode, e, alias, o.mapping, namer)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		if err := mergeParams(params, p); err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		parts = append(parts, pred)
	}

	var expr queryir.Predicate
	if o.combine == CombineAnd {
		expr = queryir.And{Predicates: parts}
	} else {
		expr = queryir.Or{Predicates: parts}
	}

	return &Condition{
		expr:    expr,
		params:  params,
		alias:   alias,
		mode:    o.mode,
		combine: o.combine,
	}, nil
}

// mergeParams copies src into dst. Re-binding a name to an equal value is
// allowed (the same entity given twice); a different value is an error.
func mergeParams(dst, src map[string]ir.IRValue) error {
	for _, name := range slices.Sorted(maps.Keys(src)) {
		v := src[name]
		if prev, ok := dst[name]; ok && !ir.Equal(prev, v) {
			return qerr.InvalidArgument("parameter :%s bound to both %s and %s", name, ir.Text(prev), ir.Text(v))
		}
		dst[name] = v
	}
	return nil
}
