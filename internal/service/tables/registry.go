package tables

import (
	"sort"
	"sync"

	"tablekit/internal/domain"
	"tablekit/internal/table"
)

// Registry holds the table definitions a process serves, keyed by name.
// Definitions are registered at startup and read concurrently afterwards.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*table.Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: map[string]*table.Definition{}}
}

// Register adds def. A second definition with the same name is a conflict.
func (r *Registry) Register(def *table.Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[def.Name()]; ok {
		return domain.ErrConflict("table %q is already registered", def.Name())
	}
	r.defs[def.Name()] = def
	return nil
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (*table.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	if !ok {
		return nil, domain.ErrNotFound("table %q not found", name)
	}
	return def, nil
}

// Names returns the registered table names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
