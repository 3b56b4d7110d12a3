package queryir

// Query represents a complete statement in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a boolean condition.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Compare: alias.field <op> :param
//   - And: all predicates must be true (empty = always true)
//   - Or: any predicate must be true (empty = always false)
//   - Raw: caller-supplied SQL fragment with named parameters
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Op is a comparison operator.
type Op string

const (
	OpEq Op = "="
	OpNe Op = "<>"
	OpLt Op = "<"
	OpGt Op = ">"
	OpLe Op = "<="
	OpGe Op = ">="
)

// ValidOps defines allowed comparison operators.
var ValidOps = map[Op]bool{
	OpEq: true,
	OpNe: true,
	OpLt: true,
	OpGt: true,
	OpLe: true,
	OpGe: true,
}

// Column references a field of an aliased source, rendered "alias.field".
// An empty Alias renders the bare field name.
type Column struct {
	Alias string
	Field string
}

// Compare represents a column-versus-parameter comparison.
//
// Semantics:
//
//	<alias>.<field> <op> :<param>
//
// Example:
//
//	Compare{Column: Column{Alias: "n", Field: "level"}, Op: OpGt, Param: "level_n_3"}
//
// renders as
//
//	n.level > :level_n_3
type Compare struct {
	Column Column
	Op     Op
	Param  string // Parameter name without the leading colon
}

func (Compare) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// Empty Predicates means "always true".
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or represents a disjunction of predicates (any must be true).
// Empty Predicates means "always false".
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Raw is a caller-supplied SQL fragment.
//
// Named parameters inside SQL use the :name form and must be listed in
// Params so validation and placeholder rewriting can see them.
type Raw struct {
	SQL    string
	Params []string
}

func (Raw) predicateNode() {}

// JoinKind selects the join flavour.
type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
)

// Join represents a joined source inside a Select.
type Join struct {
	Kind  JoinKind
	Table string    // Joined table name
	Alias string    // Alias of the joined table
	On    Predicate // Join condition (nil = no ON clause)
}

// OrderTerm is one ORDER BY term. Expr is already-rendered SQL, since
// ordering expressions may contain dialect-specific functions.
type OrderTerm struct {
	Expr string
	Desc bool
}

// Select represents a single-table query with joins, filter and ordering.
//
// Semantics:
//
//	SELECT [DISTINCT] <columns> FROM <from> <alias> <joins> WHERE <filter> ORDER BY <order>
//
// Columns are already-rendered select expressions; an empty slice selects
// "<alias>.*".
type Select struct {
	From     string
	Alias    string
	Columns  []string
	Distinct bool
	Joins    []Join
	Filter   Predicate // nil = no filter
	OrderBy  []OrderTerm
}

func (Select) queryNode() {}

// Eq is shorthand for an equality Compare.
func Eq(alias, field, param string) Compare {
	return Compare{Column: Column{Alias: alias, Field: field}, Op: OpEq, Param: param}
}

// Lt is shorthand for a less-than Compare.
func Lt(alias, field, param string) Compare {
	return Compare{Column: Column{Alias: alias, Field: field}, Op: OpLt, Param: param}
}

// Gt is shorthand for a greater-than Compare.
func Gt(alias, field, param string) Compare {
	return Compare{Column: Column{Alias: alias, Field: field}, Op: OpGt, Param: param}
}

// AllOf builds an And from its arguments.
func AllOf(preds ...Predicate) And {
	return And{Predicates: preds}
}

// AnyOf builds an Or from its arguments.
func AnyOf(preds ...Predicate) Or {
	return Or{Predicates: preds}
}
