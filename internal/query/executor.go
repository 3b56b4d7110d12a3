package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/ir"
)

var (
	// ErrNoResult is returned by SingleScalar when the query returns no rows.
	ErrNoResult = errors.New("query returned no result")

	// ErrNonUnique is returned when a query expected to return at most one
	// row returns more.
	ErrNonUnique = errors.New("query returned more than one row")
)

// Queryer runs SQL. *sql.DB, *sql.Tx and *sql.Conn satisfy it.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Pair is one key/value entry returned by Pairs, in row order.
type Pair struct {
	Key   ir.IRValue
	Value ir.IRValue
}

// Executor builds statements for one dialect and runs them.
type Executor struct {
	db      Queryer
	dialect dialect.Dialect
	logger  *slog.Logger
}

// NewExecutor creates an executor. Statements are logged at debug level
// when a logger is set with WithLogger.
func NewExecutor(db Queryer, d dialect.Dialect) *Executor {
	return &Executor{db: db, dialect: d}
}

// WithLogger sets the logger used for statement tracing.
func (e *Executor) WithLogger(logger *slog.Logger) *Executor {
	e.logger = logger
	return e
}

// Rows runs the query and returns every row keyed by column name.
func (e *Executor) Rows(ctx context.Context, b *Builder) ([]ir.IRObject, error) {
	cols, values, err := e.query(ctx, b)
	if err != nil {
		return nil, err
	}

	out := make([]ir.IRObject, 0, len(values))
	for _, row := range values {
		obj := make(ir.IRObject, len(cols))
		for i, col := range cols {
			v, err := ir.FromAny(row[i])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col, err)
			}
			obj[col] = v
		}
		out = append(out, obj)
	}
	return out, nil
}

// Pairs returns (key, value) column pairs for every row.
func (e *Executor) Pairs(ctx context.Context, b *Builder, value, key string) ([]Pair, error) {
	rows, err := e.Rows(ctx, b)
	if err != nil {
		return nil, err
	}

	pairs := make([]Pair, 0, len(rows))
	for i, row := range rows {
		k, ok := row[key]
		if !ok {
			return nil, fmt.Errorf("row %d has no column %q", i, key)
		}
		v, ok := row[value]
		if !ok {
			return nil, fmt.Errorf("row %d has no column %q", i, value)
		}
		pairs = append(pairs, Pair{Key: k, Value: v})
	}
	return pairs, nil
}

// OneOrNull returns the only row, nil when there is none, or ErrNonUnique.
func (e *Executor) OneOrNull(ctx context.Context, b *Builder) (ir.IRObject, error) {
	rows, err := e.Rows(ctx, b)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	default:
		return nil, fmt.Errorf("%w: got %d", ErrNonUnique, len(rows))
	}
}

// SingleScalar returns the first column of the only row.
func (e *Executor) SingleScalar(ctx context.Context, b *Builder) (ir.IRValue, error) {
	cols, values, err := e.query(ctx, b)
	if err != nil {
		return nil, err
	}
	switch {
	case len(values) == 0 || len(cols) == 0:
		return nil, ErrNoResult
	case len(values) > 1:
		return nil, fmt.Errorf("%w: got %d", ErrNonUnique, len(values))
	}
	v, err := ir.FromAny(values[0][0])
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", cols[0], err)
	}
	return v, nil
}

// query builds and runs b, returning the column names and raw row values.
func (e *Executor) query(ctx context.Context, b *Builder) ([]string, [][]any, error) {
	stmt, err := b.Build(e.dialect)
	if err != nil {
		return nil, nil, err
	}
	if e.logger != nil {
		e.logger.Debug("running query", "sql", stmt.SQL, "args", len(stmt.Args), "dialect", e.dialect.String())
	}

	rows, err := e.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("columns: %w", err)
	}

	var values [][]any
	for rows.Next() {
		dest := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan: %w", err)
		}
		values = append(values, dest)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate rows: %w", err)
	}
	return cols, values, nil
}
