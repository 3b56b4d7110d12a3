// Package queryir provides the abstract predicate and query representation
// shared by the condition compiler, the query builder and the SQL backend.
//
// ARCHITECTURE:
//
//	[tree.Compile] ─┐
//	                ├─> [queryir Predicate/Select] ─> [querysql] ─> SQL text
//	[query.Builder] ┘
//
// Predicates never carry values. A Compare references a named parameter and
// the value lives in a separate binding map, so the same tree renders to
// named (:name), positional (?) or numbered ($n) placeholders depending on
// the target dialect.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package can implement them, which keeps type switches
// in backends exhaustive:
//
//	switch p := pred.(type) {
//	case Compare:
//	case And:
//	case Or:
//	case Raw:
//	}
//
// EMPTY COMBINATORS:
//
// An And with no predicates is always true; an Or with no predicates is
// always false. Each is the identity element of its operator, so folding an
// empty list of entity predicates yields a well-defined condition.
package queryir
