// Package dialect identifies the SQL variant a statement is compiled for.
//
// Dialects are passed explicitly into every compile call; nothing in this
// module inspects a live connection to discover them.
package dialect

import (
	"fmt"
	"strings"

	"github.com/roach88/treeq/internal/qerr"
)

// Dialect is a SQL engine family.
type Dialect int

const (
	Unknown Dialect = iota
	MySQL
	MariaDB
	Postgres
	SQLite
	MSSQL
)

// Family groups dialects by how they realize ordinal-position lookups.
type Family int

const (
	// FamilyUnsupported has no known realization.
	FamilyUnsupported Family = iota

	// FamilyOrdinal has a native FIELD(expr, v1, ..., vn) function
	// returning the 1-based position, or 0 when nothing matches.
	FamilyOrdinal

	// FamilyCase synthesizes the position with a CASE expression,
	// which yields NULL when nothing matches.
	FamilyCase
)

// PlaceholderStyle is how bound parameters appear in statement text.
type PlaceholderStyle int

const (
	// PlaceholderNamed keeps :name placeholders (SQLite).
	PlaceholderNamed PlaceholderStyle = iota

	// PlaceholderQuestion uses positional ? placeholders (MySQL family).
	PlaceholderQuestion

	// PlaceholderDollar uses numbered $1, $2 placeholders (Postgres).
	PlaceholderDollar

	// PlaceholderAt uses numbered @p1, @p2 placeholders (SQL Server).
	PlaceholderAt
)

var names = map[Dialect]string{
	Unknown:  "unknown",
	MySQL:    "mysql",
	MariaDB:  "mariadb",
	Postgres: "postgres",
	SQLite:   "sqlite",
	MSSQL:    "mssql",
}

var aliases = map[string]Dialect{
	"mysql":      MySQL,
	"mariadb":    MariaDB,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"pg":         Postgres,
	"pgsql":      Postgres,
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
	"mssql":      MSSQL,
	"sqlserver":  MSSQL,
}

// String returns the canonical lower-case name.
func (d Dialect) String() string {
	if n, ok := names[d]; ok {
		return n
	}
	return fmt.Sprintf("dialect(%d)", int(d))
}

// Family returns the ordinal-lookup family of d.
func (d Dialect) Family() Family {
	switch d {
	case MySQL, MariaDB:
		return FamilyOrdinal
	case Postgres, SQLite:
		return FamilyCase
	default:
		return FamilyUnsupported
	}
}

// Placeholder returns the bound-parameter style of d.
func (d Dialect) Placeholder() PlaceholderStyle {
	switch d {
	case MySQL, MariaDB:
		return PlaceholderQuestion
	case Postgres:
		return PlaceholderDollar
	case MSSQL:
		return PlaceholderAt
	default:
		return PlaceholderNamed
	}
}

// Parse resolves a dialect name or common alias, case-insensitively.
func Parse(name string) (Dialect, error) {
	if d, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d, nil
	}
	return Unknown, qerr.InvalidArgument("unknown dialect %q", name)
}

// Names returns the canonical names of all known dialects (excluding Unknown).
func Names() []string {
	return []string{"mysql", "mariadb", "postgres", "sqlite", "mssql"}
}

// String returns a short name for the family.
func (f Family) String() string {
	switch f {
	case FamilyOrdinal:
		return "ordinal"
	case FamilyCase:
		return "case"
	default:
		return "unsupported"
	}
}
