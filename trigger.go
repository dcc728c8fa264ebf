package ptrstore

import (
	"sync"

	"github.com/goliatone/go-ptrstore/internal/hydrate"
	"github.com/goliatone/go-ptrstore/pkg/compare"
	"github.com/goliatone/go-ptrstore/pkg/store"
	"github.com/goliatone/go-ptrstore/pkg/stream"
)

// DefaultSkip suppresses the value present at attach time.
const DefaultSkip = 1

// Trigger runs a callback for values emitted at a pointer.
type Trigger[T any] struct {
	mu    sync.Mutex
	cb    func(T)
	bound bool
	deps  Deps
	gen   uint64
	sub   stream.Subscription
	err   error
}

// NewTrigger returns a detached Trigger.
func NewTrigger[T any]() *Trigger[T] {
	return &Trigger[T]{}
}

// Sync subscribes to ptr, drops the first skip emissions and calls cb for
// the rest. It re-subscribes when ptr, st, strictness, skip or deps change.
// The most recent cb is always the one invoked.
func (t *Trigger[T]) Sync(st *store.Store, ptr string, cb func(T), strictness compare.Strictness, skip int, deps Deps) {
	st = resolve(st)
	key := keyed(deps, ptr, st, strictness, skip)

	t.mu.Lock()
	t.cb = cb
	if t.bound && t.deps.Equal(key) {
		t.mu.Unlock()
		return
	}
	previous := t.sub
	t.sub = nil
	t.gen++
	gen := t.gen
	t.bound = true
	t.deps = key.clone()
	t.err = nil
	t.mu.Unlock()

	if previous != nil {
		previous.Unsubscribe()
	}

	sub := stream.Skip(typed(st.Get(ptr, strictness), ptr, hydrate.NewDecoder[T]()), skip).Subscribe(stream.Observer[T]{
		Next:  func(v T) { t.fire(gen, v) },
		Error: func(err error) { t.fail(gen, err) },
	})

	t.mu.Lock()
	if t.gen != gen {
		t.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	t.sub = sub
	t.mu.Unlock()
}

// Detach releases the subscription.
func (t *Trigger[T]) Detach() {
	t.mu.Lock()
	sub := t.sub
	t.sub = nil
	t.gen++
	t.bound = false
	t.deps = nil
	t.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

// Err returns the error that ended the current subscription, if any.
func (t *Trigger[T]) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Trigger[T]) fire(gen uint64, v T) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	cb := t.cb
	t.mu.Unlock()
	if cb != nil {
		cb(v)
	}
}

func (t *Trigger[T]) fail(gen uint64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen == t.gen {
		t.err = err
	}
}
