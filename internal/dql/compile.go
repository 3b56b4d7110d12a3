package dql

import (
	"github.com/roach88/treeq/internal/dialect"
)

// Compile parses src with the default registry and renders it for d.
func Compile(src string, d dialect.Dialect) (string, error) {
	n, err := Parse(src, nil)
	if err != nil {
		return "", err
	}
	return NewWalker(d).Walk(n)
}
