// Package dql parses and renders the small expression language used in
// ORDER BY and SELECT fragments.
//
// The language covers what ordering clauses need: dotted column paths,
// string and number literals, named input parameters (:name), arithmetic,
// parentheses and registered function calls. Functions are looked up by
// name in a Registry; the default registry knows RANK:
//
//	RANK(n.status, 'active', 'pending', 'closed')
//
// renders, depending on the dialect, as
//
//	FIELD(n.status, 'active', 'pending', 'closed')
//	(CASE WHEN (n.status) = 'active' THEN 1 WHEN ... THEN 3 END)
//
// Rendering goes through a Walker carrying the target dialect. Parsed
// trees are immutable and may be rendered any number of times, for any
// dialect, concurrently.
package dql
