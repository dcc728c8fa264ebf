package ptrstore

import (
	"context"
	"sync"

	"github.com/goliatone/go-ptrstore/pkg/store"
)

// Registry owns one lazily created store. The first call to GetOrCreate
// decides the initial document and options; later arguments are ignored.
type Registry struct {
	mu    sync.Mutex
	store *store.Store
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewScope returns a registry whose store is created right away, for
// section or page scoped state. Call Close when the scope ends.
func NewScope(initial map[string]any, opts ...store.Option) *Registry {
	r := NewRegistry()
	r.GetOrCreate(initial, opts...)
	return r
}

// GetOrCreate returns the registry's store, creating it from initial and
// opts on first use. First writer wins: arguments passed once the store
// exists are silently ignored.
func (r *Registry) GetOrCreate(initial map[string]any, opts ...store.Option) *store.Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store == nil {
		r.store = store.New(initial, opts...)
	}
	return r.store
}

// Store returns the registry's store, creating an empty one if needed.
func (r *Registry) Store() *store.Store {
	return r.GetOrCreate(nil)
}

// Close destroys the store. The next GetOrCreate builds a fresh one.
func (r *Registry) Close() {
	r.mu.Lock()
	st := r.store
	r.store = nil
	r.mu.Unlock()
	if st != nil {
		st.Destroy()
	}
}

var global = NewRegistry()

// Global returns the process-wide registry.
func Global() *Registry {
	return global
}

// GlobalStore returns the process-wide store.
func GlobalStore() *store.Store {
	return global.Store()
}

type registryKey struct{}

// WithRegistry scopes r to ctx.
func WithRegistry(ctx context.Context, r *Registry) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, registryKey{}, r)
}

// RegistryFrom returns the registry scoped to ctx, or the global one.
func RegistryFrom(ctx context.Context) *Registry {
	if ctx != nil {
		if r, ok := ctx.Value(registryKey{}).(*Registry); ok && r != nil {
			return r
		}
	}
	return global
}

// StoreFrom returns the store of the registry scoped to ctx.
func StoreFrom(ctx context.Context) *store.Store {
	return RegistryFrom(ctx).Store()
}

func resolve(st *store.Store) *store.Store {
	if st == nil {
		return GlobalStore()
	}
	return st
}
