package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested node does not exist.
var ErrNotFound = errors.New("node not found")

// Node is one row of the nodes table. The db tags name the columns, so a
// Node can be handed to tree.EntityOf directly.
type Node struct {
	ID     int64  `db:"id" yaml:"id" json:"id"`
	Name   string `db:"name" yaml:"name" json:"name"`
	Status string `db:"status" yaml:"status,omitempty" json:"status,omitempty"`
	Level  int64  `db:"level" yaml:"level" json:"level"`
	Left   int64  `db:"lft" yaml:"lft" json:"lft"`
	Right  int64  `db:"rgt" yaml:"rgt" json:"rgt"`
	Root   int64  `db:"root" yaml:"root" json:"root"`
}

// ColumnMapping maps the logical tree keys whose column in the nodes table
// has a different name. left and right are reserved words in SQL.
func ColumnMapping() map[string]string {
	return map[string]string{"left": "lft", "right": "rgt"}
}

// NodeColumns lists the columns scanned by ScanNode, in order.
var NodeColumns = []string{"id", "name", "status", "level", "lft", "rgt", "root"}

const selectNodes = `SELECT id, name, status, level, lft, rgt, root FROM nodes`

// GetNode returns the node with the given id, or ErrNotFound.
func (s *Store) GetNode(ctx context.Context, id int64) (Node, error) {
	row := s.db.QueryRowContext(ctx, selectNodes+` WHERE id = ?`, id)
	n, err := ScanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Node{}, fmt.Errorf("get node %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Node{}, fmt.Errorf("get node %d: %w", id, err)
	}
	return n, nil
}

// GetNodes returns the nodes with the given ids, in the order of ids.
// Every id must exist; repeated ids return repeated nodes.
func (s *Store) GetNodes(ctx context.Context, ids []int64) ([]Node, error) {
	if len(ids) == 0 {
		return []Node{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, selectNodes+` WHERE id IN (`+placeholders+`) ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	found, err := ScanNodes(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]Node, len(found))
	for _, n := range found {
		byID[n.ID] = n
	}

	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		n, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("get node %d: %w", id, ErrNotFound)
		}
		out = append(out, n)
	}
	return out, nil
}

// AllNodes returns every node ordered by id.
func (s *Store) AllNodes(ctx context.Context) ([]Node, error) {
	rows, err := s.db.QueryContext(ctx, selectNodes+` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	return ScanNodes(rows)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ScanNode scans one row selected with NodeColumns.
func ScanNode(row rowScanner) (Node, error) {
	var n Node
	err := row.Scan(&n.ID, &n.Name, &n.Status, &n.Level, &n.Left, &n.Right, &n.Root)
	return n, err
}

// ScanNodes drains and closes rows selected with NodeColumns.
// Returns an empty slice (not nil) when there are no rows.
func ScanNodes(rows *sql.Rows) ([]Node, error) {
	defer rows.Close()

	nodes := []Node{}
	for rows.Next() {
		n, err := ScanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return nodes, nil
}
