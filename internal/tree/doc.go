// Package tree compiles nested-set ("modified preorder tree traversal")
// relationship searches into a single boolean condition.
//
// Given reference entities, a SearchMode and a Combine operator, Compile
// produces a Condition: a queryir predicate plus the parameter bindings it
// references. The caller attaches it to a statement (see internal/query).
//
// Per entity E and alias a, each set flag contributes one atomic predicate:
//
//	SELF         a.id = :id_a_E
//	ANCESTORS    a.level > :level_a_E AND a.id > :left_a_E AND a.id < :right_a_E
//	DESCENDANTS  a.level < :level_a_E AND a.root = :root_a_E
//	             AND a.left < :id_a_E AND a.right > :id_a_E
//
// The entity's id acts as its nested-set coordinate. The atomics are ORed
// per entity, and the per-entity predicates are folded with the requested
// operator in input order.
//
// Everything here is a pure function of its inputs; concurrent compilations
// are safe as long as callers do not mutate the entities being read.
package tree
