package dql

import (
	"fmt"

	"github.com/roach88/treeq/internal/dialect"
)

// Walker renders nodes for one dialect.
type Walker struct {
	Dialect dialect.Dialect
}

// NewWalker creates a Walker targeting d.
func NewWalker(d dialect.Dialect) *Walker {
	return &Walker{Dialect: d}
}

// Walk renders n. Function nodes call back into Walk for their arguments.
func (w *Walker) Walk(n Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("cannot render nil node")
	}
	return n.SQL(w)
}
