package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/machine/pkg/domain"
)

// Registry maps implementation names to functions, so that declarative
// manifests can reference an Fn by name.
type Registry struct {
	mu  sync.RWMutex
	fns map[string]domain.Fn
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]domain.Fn),
	}
}

// Register adds an implementation to the registry.
// If an implementation with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn domain.Fn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[name] = fn
}

// Lookup returns the implementation registered under name.
// Returns an error if the implementation is not found.
func (r *Registry) Lookup(name string) (domain.Fn, error) {
	r.mu.RLock()
	fn, ok := r.fns[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("implementation not found: %s", name)
	}

	return fn, nil
}

// Names lists the registered implementation names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
