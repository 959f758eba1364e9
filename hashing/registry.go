package hashing

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a thread-safe mapping from strategy id to configured
// [Strategy], plus one designated default (preferred) strategy.
//
// Strategy ids are persisted next to every credential and select the
// verification logic for that record forever, so never rename one.
//
// # Thread safety
//
// All Registry methods are safe for concurrent use.  A [sync.RWMutex]
// serialises writes (Register, SetDefault) while allowing concurrent reads.
// Get, Default and Resolve return clones, so callers may set a salt and
// username on the result without affecting other goroutines.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	def        string
}

// NewRegistry creates an empty Registry whose default strategy id is
// defaultID.  The default does not have to be registered yet; call
// [Registry.Validate] once configuration is complete.
func NewRegistry(defaultID string) *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
		def:        defaultID,
	}
}

// Register adds or replaces the strategy stored under id.
func (r *Registry) Register(id string, s Strategy) error {
	if id == "" {
		return ErrEmptyStrategyName
	}
	if s == nil {
		return ErrNilStrategy
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[id] = s
	return nil
}

// Get returns a fresh instance of the strategy registered under id.
func (r *Registry) Get(id string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[id]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Has reports whether a strategy is registered under id.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.strategies[id]
	return ok
}

// Names returns the registered ids in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.strategies))
	for id := range r.strategies {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

// SetDefault changes the default strategy.  The id must already be
// registered.
func (r *Registry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.strategies[id]; !ok {
		return fmt.Errorf("%w: %q is not registered; call Register first",
			ErrNoStrategyAvailable, id)
	}
	r.def = id
	return nil
}

// DefaultName returns the id of the default strategy.
func (r *Registry) DefaultName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.def
}

// Default returns a fresh instance of the default strategy.
func (r *Registry) Default() (Strategy, bool) {
	return r.Get(r.DefaultName())
}

// Resolve picks the strategy for a stored credential.  When id is
// registered it wins; otherwise the default strategy is used, which lets
// records without a strategy id (e.g. freshly imported data) verify.
// An unknown id is therefore indistinguishable from an empty one; use
// [Registry.Has] when strict checking is required.
//
// The returned id is the one actually resolved.  [ErrNoStrategyAvailable]
// is returned when neither id nor the default is registered.
func (r *Registry) Resolve(id string) (string, Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.strategies[id]; ok {
		return id, s.Clone(), nil
	}
	if s, ok := r.strategies[r.def]; ok {
		return r.def, s.Clone(), nil
	}
	return "", nil, fmt.Errorf("%w: neither %q nor default %q is registered",
		ErrNoStrategyAvailable, id, r.def)
}

// Validate reports configuration errors that should stop start-up: an
// empty registry or an unregistered default.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.strategies) == 0 {
		return fmt.Errorf("%w: registry is empty", ErrNoStrategyAvailable)
	}
	if _, ok := r.strategies[r.def]; !ok {
		return fmt.Errorf("%w: default strategy %q has not been registered",
			ErrNoStrategyAvailable, r.def)
	}
	return nil
}
