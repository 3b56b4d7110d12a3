// Package harness runs conformance scenarios against the tree search and
// expression compilers.
//
// # Scenario Format
//
// Scenarios are YAML files. A scenario seeds a nested-set table and lists
// cases, each either a tree search or a standalone expression:
//
//	name: electronics
//	description: "Searches over the electronics tree"
//	mapping: {left: lft, right: rgt}
//	nodes:
//	  - {id: 1, name: Electronics, level: 0, lft: 1, rgt: 12, root: 1}
//	  - {id: 2, name: Phones, level: 1, lft: 2, rgt: 7, root: 1}
//	cases:
//	  - name: children of the root
//	    entities: [1]
//	    mode: ancestors
//	    expect_ids: [2]
//	  - name: rank on mysql
//	    expr: "RANK(n.status, 'a', 'b')"
//	    dialect: mysql
//	    expect_sql: "FIELD(n.status, 'a', 'b')"
//	  - name: rank on mssql
//	    expr: "RANK(n.status, 'a')"
//	    dialect: mssql
//	    expect_error: NOT_IMPLEMENTED
//
// Search cases load their reference entities from the seeded table, compile
// a condition and execute it against an in-memory SQLite store. Result ids
// are compared in order: by id unless the case gives order_by.
//
// # Golden Snapshots
//
// Every case's compiled SQL, result ids and error code are collected into a
// snapshot serialized with ir.MarshalCanonical, so a compiler change that
// alters generated SQL shows up as a golden diff even when results agree.
package harness
