// Package providers builds analytics fetchers for the supported upstream
// services.
package providers

import (
	"fmt"
	"sort"
	"sync"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/services/auth"
	"nathanbeddoewebdev/cfdash/internal/util"
)

// Factory builds a Fetcher for zoneID using credentials from store.
type Factory func(store auth.Store, zoneID string) (domain.Fetcher, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds a fetcher factory to the registry.
// It panics on empty name, nil factory, or duplicate registration
// (programmer errors detected at startup).
func Register(name string, factory Factory) {
	normalizedName := util.NormalizeKey(name)
	if normalizedName == "" {
		panic("analytics/providers: empty provider name")
	}
	if factory == nil {
		panic("analytics/providers: nil factory")
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[normalizedName]; exists {
		panic(fmt.Sprintf("analytics/providers: provider %q already registered", name))
	}

	registry[normalizedName] = factory
}

// Get constructs the Fetcher registered under name.
func Get(name string, store auth.Store, zoneID string) (domain.Fetcher, error) {
	normalizedName := util.NormalizeKey(name)
	mu.RLock()
	factory, ok := registry[normalizedName]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("analytics/providers: unknown provider %q", name)
	}

	return factory(store, zoneID)
}

// List returns the names of all registered providers, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears the registry. Intended for use in tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = map[string]Factory{}
}
