package games

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnsupportedGameSystem is returned when no module is registered for a
// tournament's game-system identifier. This is a configuration error, not
// something to retry.
var ErrUnsupportedGameSystem = errors.New("unsupported game system")

// Registry maps game-system identifiers to modules. New game systems plug
// in through Register without touching the pairing engine or services.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds a module under its own name. Identifiers are
// case-insensitive; a later registration under the same name replaces the
// earlier one.
func (r *Registry) Register(module Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[strings.ToLower(module.Name())] = module
}

// Get resolves a game-system identifier to its module.
func (r *Registry) Get(gameSystem string) (Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	module, ok := r.modules[strings.ToLower(gameSystem)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGameSystem, gameSystem)
	}
	return module, nil
}

// Supported returns the registered identifiers, sorted for stable output.
func (r *Registry) Supported() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
