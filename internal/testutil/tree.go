// Package testutil holds fixtures shared by tests across packages.
package testutil

import (
	"context"
	"testing"

	"github.com/roach88/treeq/internal/store"
)

// SampleTree returns two nested-set trees whose ids equal their left bounds:
//
//	Electronics (1) [1,12]
//	├── Phones (2) [2,7]
//	│   ├── Android (3) [3,4]
//	│   └── iOS (5) [5,6]
//	└── Laptops (8) [8,11]
//	    └── Ultrabooks (9) [9,10]
//	Books (13) [13,16]
//	└── Fiction (14) [14,15]
func SampleTree() []store.Node {
	return []store.Node{
		{ID: 1, Name: "Electronics", Status: "active", Level: 0, Left: 1, Right: 12, Root: 1},
		{ID: 2, Name: "Phones", Status: "active", Level: 1, Left: 2, Right: 7, Root: 1},
		{ID: 3, Name: "Android", Status: "pending", Level: 2, Left: 3, Right: 4, Root: 1},
		{ID: 5, Name: "iOS", Status: "closed", Level: 2, Left: 5, Right: 6, Root: 1},
		{ID: 8, Name: "Laptops", Status: "pending", Level: 1, Left: 8, Right: 11, Root: 1},
		{ID: 9, Name: "Ultrabooks", Status: "active", Level: 2, Left: 9, Right: 10, Root: 1},
		{ID: 13, Name: "Books", Status: "closed", Level: 0, Left: 13, Right: 16, Root: 13},
		{ID: 14, Name: "Fiction", Status: "active", Level: 1, Left: 14, Right: 15, Root: 13},
	}
}

// SampleMapping maps the logical left/right keys onto the store's columns.
func SampleMapping() map[string]string {
	return store.ColumnMapping()
}

// SampleStore opens an in-memory store loaded with SampleTree and closes it
// when the test ends.
func SampleStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.InsertNodes(context.Background(), SampleTree()); err != nil {
		t.Fatalf("load sample tree: %v", err)
	}
	return s
}

// NodesByID picks nodes out of SampleTree.
func NodesByID(ids ...int64) []store.Node {
	byID := map[int64]store.Node{}
	for _, n := range SampleTree() {
		byID[n.ID] = n
	}
	out := make([]store.Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out
}
