package ruleset

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownRuleset is returned when a lookup names no registered policy.
	ErrUnknownRuleset = errors.New("unknown ruleset")
	// ErrDuplicateRuleset is returned when a policy ID is registered twice.
	ErrDuplicateRuleset = errors.New("ruleset already registered")
)

// Registry provides lookup of policies by ID.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

// NewRegistry returns an empty Registry.
//
// Postcondition: Returns a non-nil *Registry ready to accept registrations.
func NewRegistry() *Registry {
	return &Registry{policies: make(map[string]Policy)}
}

// DefaultRegistry returns a Registry holding the built-in policies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range Builtins() {
		if err := r.Register(p); err != nil {
			panic("ruleset: DefaultRegistry: " + err.Error())
		}
	}
	return r
}

// Register adds a validated policy to the registry.
//
// Postcondition: p is retrievable via Get(p.ID), or an error is returned when
// p is invalid or its ID is already taken.
func (r *Registry) Register(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.policies[p.ID]; ok {
		return fmt.Errorf("%q: %w", p.ID, ErrDuplicateRuleset)
	}
	r.policies[p.ID] = p
	return nil
}

// Get returns the policy registered under id.
//
// Postcondition: Returns the Policy, or ErrUnknownRuleset.
func (r *Registry) Get(id string) (Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[id]
	if !ok {
		return Policy{}, fmt.Errorf("%q: %w", id, ErrUnknownRuleset)
	}
	return p, nil
}

// All returns every registered policy sorted by ID.
func (r *Registry) All() []Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Policy, 0, len(r.policies))
	for _, p := range r.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
