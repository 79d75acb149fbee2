package adapter

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory creates a disconnected adapter.
type Factory func() Adapter

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{
		"postgres":   func() Adapter { return NewPostgres() },
		"postgresql": func() Adapter { return NewPostgres() },
		"pg":         func() Adapter { return NewPostgres() },
		"sqlite":     func() Adapter { return NewSQLite() },
		"sqlite3":    func() Adapter { return NewSQLite() },
	}
)

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Register makes an adapter available under tag. Registering an existing
// tag replaces it.
func Register(tag string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[normalizeTag(tag)] = f
}

// New returns a new adapter for tag. Tags are case-insensitive.
func New(tag string) (Adapter, error) {
	factoriesMu.RLock()
	f, ok := factories[normalizeTag(tag)]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAdapter, tag)
	}
	return f(), nil
}

// Tags lists the registered adapter tags.
func Tags() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	tags := make([]string, 0, len(factories))
	for t := range factories {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
