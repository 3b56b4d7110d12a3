package dql

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// FunctionFactory creates an unparsed function node.
type FunctionFactory func() FunctionNode

// Registry maps function names to factories. Names are case-insensitive.
// A Registry is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FunctionFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]FunctionFactory{}}
}

// DefaultRegistry returns a new registry with the built-in functions.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(RankFunctionName, func() FunctionNode { return &RankFunction{} })
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f FunctionFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToUpper(name)] = f
}

// Lookup returns the factory registered for name.
func (r *Registry) Lookup(name string) (FunctionFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[strings.ToUpper(name)]
	return f, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}
