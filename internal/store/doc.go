// Package store provides SQLite-backed storage for nested-set trees.
//
// One table, nodes, holds every tree; rows of the same tree share a root
// id. The left and right bounds are stored in lft and rgt. The store only
// loads and returns rows: it never checks that the bounds form a valid
// nested set, and conditions compiled by internal/tree run against it
// through Query.
//
// Files on disk are opened in WAL mode with synchronous=NORMAL; every
// database waits up to five seconds for a lock. ColumnMapping names the
// columns that differ from the logical tree keys.
//
// All reads order by id so results are stable across runs.
package store
