package store

import (
	"context"
	"fmt"
)

// InsertNodes inserts nodes in order. Rows whose id already exists are
// replaced, so loading the same fixture twice is harmless.
//
// The bounds are stored as given; no nested-set check is made beyond
// lft < rgt.
func (s *Store) InsertNodes(ctx context.Context, nodes []Node) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert nodes: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (id, name, status, level, lft, rgt, root)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			level = excluded.level,
			lft = excluded.lft,
			rgt = excluded.rgt,
			root = excluded.root
	`)
	if err != nil {
		return fmt.Errorf("insert nodes: %w", err)
	}
	defer stmt.Close()

	for _, n := range nodes {
		if _, err := stmt.ExecContext(ctx, n.ID, n.Name, n.Status, n.Level, n.Left, n.Right, n.Root); err != nil {
			return fmt.Errorf("insert node %d: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert nodes: %w", err)
	}
	return nil
}

// DeleteAll removes every node.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return fmt.Errorf("delete nodes: %w", err)
	}
	return nil
}
