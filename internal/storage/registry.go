package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory opens a Repository for cfg. Backends register one per kind from
// their init function.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
	typeMaps  = map[string]map[string]string{}
)

// Register registers (or replaces) the Factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the Factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// Kinds returns a sorted snapshot of the registered backend kinds.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RegisterTypes records the column type rewrites a backend needs, keyed by the
// upper-cased type literal used in table definitions. Later calls for the same
// kind merge into the existing map.
func RegisterTypes(kind string, m map[string]string) {
	mu.Lock()
	defer mu.Unlock()
	dst := typeMaps[kind]
	if dst == nil {
		dst = make(map[string]string, len(m))
		typeMaps[kind] = dst
	}
	for from, to := range m {
		dst[strings.ToUpper(from)] = to
	}
}

// TypeFor returns the column type literal kind's dialect expects in place of
// literal. Literals without a registered rewrite are returned unchanged.
func TypeFor(kind, literal string) string {
	mu.RLock()
	defer mu.RUnlock()
	if to, ok := typeMaps[kind][strings.ToUpper(literal)]; ok {
		return to
	}
	return literal
}
