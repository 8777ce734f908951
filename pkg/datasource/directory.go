package datasource

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/marcodd23/go-txscope/pkg/dbx"
)

// ErrNameNotFound is returned by Registry when nothing is bound under the requested name.
var ErrNameNotFound = errors.New("name not found in directory")

// Directory resolves connection factories by symbolic name.
type Directory interface {
	// Lookup resolves name with the directory defaults.
	Lookup(ctx context.Context, name string) (dbx.ConnectionFactory, error)
	// LookupWithProperties resolves name using props as the lookup environment.
	LookupWithProperties(ctx context.Context, name string, props Properties) (dbx.ConnectionFactory, error)
}

// Provider builds a connection factory from a lookup property bag, props is empty on a plain Lookup.
type Provider func(ctx context.Context, props Properties) (dbx.ConnectionFactory, error)

type entry struct {
	factory  dbx.ConnectionFactory
	provider Provider
}

// Registry - in-process Directory.
//
// Names are bound once at startup either to a ready factory or to a Provider invoked on every lookup.
// Ready factories ignore lookup properties. Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry - empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Bind associates name with a ready factory.
func (r *Registry) Bind(name string, factory dbx.ConnectionFactory) error {
	if factory == nil {
		return fmt.Errorf("cannot bind nil factory to '%s'", name)
	}

	return r.bind(name, entry{factory: factory})
}

// BindProvider associates name with a Provider.
func (r *Registry) BindProvider(name string, provider Provider) error {
	if provider == nil {
		return fmt.Errorf("cannot bind nil provider to '%s'", name)
	}

	return r.bind(name, entry{provider: provider})
}

func (r *Registry) bind(name string, e entry) error {
	if name == "" {
		return errors.New("cannot bind an empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("name '%s' is already bound", name)
	}

	r.entries[name] = e

	return nil
}

// Unbind removes name, unknown names are ignored.
func (r *Registry) Unbind(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// Names returns the bound names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Lookup - see Directory.
func (r *Registry) Lookup(ctx context.Context, name string) (dbx.ConnectionFactory, error) {
	return r.LookupWithProperties(ctx, name, nil)
}

// LookupWithProperties - see Directory.
func (r *Registry) LookupWithProperties(ctx context.Context, name string, props Properties) (dbx.ConnectionFactory, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNameNotFound, name)
	}

	if e.factory != nil {
		return e.factory, nil
	}

	factory, err := e.provider(ctx, props)
	if err != nil {
		return nil, err
	}

	if factory == nil {
		return nil, fmt.Errorf("provider bound to '%s' returned no factory", name)
	}

	return factory, nil
}
