package jobscope

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps application ids to their scrolling event sources. Each
// application's replay state is fully independent; the registry lock only
// guards the map itself.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*ScrollingSource
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]*ScrollingSource{}}
}

// Register adds a source under its application id. Registering an id that
// already exists replaces the previous source.
func (r *Registry) Register(src *ScrollingSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[src.Meta().ID] = src
}

// Get returns the source for an application id.
func (r *Registry) Get(id string) (*ScrollingSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return src, nil
}

// Remove drops an application and its replay state.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(r.sources, id)
	return nil
}

// IDs returns the registered application ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered applications.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}
