package ptrstore

import (
	"errors"
	"sync"

	"github.com/goliatone/go-ptrstore/pkg/store"
)

// Setter writes a batch whenever its dependencies change.
type Setter struct {
	mu             sync.Mutex
	deleteOnDetach bool
	bound          bool
	deps           Deps
	store          *store.Store
	pointers       []string
}

// NewSetter returns a detached Setter. With deleteOnDetach, the pointers of
// the last batch are removed when the Setter detaches or re-attaches.
func NewSetter(deleteOnDetach bool) *Setter {
	return &Setter{deleteOnDetach: deleteOnDetach}
}

// Sync writes entries to st on first call and whenever deps or st change,
// using the store's default write mode. Write errors are returned and the
// new deps are recorded regardless, so a failed batch is not retried until
// deps change again.
func (s *Setter) Sync(st *store.Store, entries []store.Entry, deps Deps) error {
	st = resolve(st)
	s.mu.Lock()
	if s.bound && s.store == st && s.deps.Equal(deps) {
		s.mu.Unlock()
		return nil
	}
	cleanup := s.releaseLocked()
	s.bound = true
	s.deps = deps.clone()
	s.store = st
	s.pointers = make([]string, len(entries))
	for i, entry := range entries {
		s.pointers[i] = entry.Pointer
	}
	s.mu.Unlock()

	var errs []error
	if err := cleanup(); err != nil {
		errs = append(errs, err)
	}
	if err := st.Set(entries); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Detach releases the binding, deleting written pointers when configured.
func (s *Setter) Detach() error {
	s.mu.Lock()
	cleanup := s.releaseLocked()
	s.mu.Unlock()
	return cleanup()
}

// releaseLocked resets the binding and returns the teardown to run once the
// lock is released.
func (s *Setter) releaseLocked() func() error {
	st, pointers, bound := s.store, s.pointers, s.bound
	s.bound = false
	s.deps = nil
	s.store = nil
	s.pointers = nil
	return func() error {
		if !bound || !s.deleteOnDetach || len(pointers) == 0 || st.Destroyed() {
			return nil
		}
		return st.Delete(pointers, store.Immediate())
	}
}
