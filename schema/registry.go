package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry associates model type names with their metadata. Models are
// registered once at startup and only read afterwards.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Metadata
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Metadata)}
}

// Register adds m under its type name.
func (r *Registry) Register(m *Metadata) error {
	if m == nil {
		return ErrMissingMetadata
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[m.Name()]; ok {
		return fmt.Errorf("%w: model %s already registered", ErrInvalidMetadata, m.Name())
	}
	r.models[m.Name()] = m
	return nil
}

// RegisterAll adds every model or none: a nil model or a name that is
// already taken, in r or earlier in models, leaves r unchanged.
func (r *Registry) RegisterAll(models ...*Metadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool, len(models))
	for _, m := range models {
		if m == nil {
			return ErrMissingMetadata
		}
		if _, ok := r.models[m.Name()]; ok || seen[m.Name()] {
			return fmt.Errorf("%w: model %s already registered", ErrInvalidMetadata, m.Name())
		}
		seen[m.Name()] = true
	}
	for _, m := range models {
		r.models[m.Name()] = m
	}
	return nil
}

// Lookup returns the metadata registered for typeName.
func (r *Registry) Lookup(typeName string) (*Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingMetadata, typeName)
	}
	return m, nil
}

// Models returns all registered metadata sorted by type name.
func (r *Registry) Models() []*Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Metadata, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register builds metadata and adds it to the process-wide registry.
func Register(typeName, table string, columns ...ColumnDefinition) (*Metadata, error) {
	m, err := New(typeName, table, columns...)
	if err != nil {
		return nil, err
	}
	if err := defaultRegistry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// MustRegister is like Register but panics on error.
func MustRegister(typeName, table string, columns ...ColumnDefinition) *Metadata {
	m, err := Register(typeName, table, columns...)
	if err != nil {
		panic(err)
	}
	return m
}

// Lookup reads the process-wide registry.
func Lookup(typeName string) (*Metadata, error) {
	return defaultRegistry.Lookup(typeName)
}
