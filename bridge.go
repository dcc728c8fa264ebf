package ptrstore

import (
	"sync"

	"github.com/goliatone/go-ptrstore/pkg/compare"
	"github.com/goliatone/go-ptrstore/pkg/stream"
)

// State is the lifecycle position of a Bridge.
type State int

const (
	StateIdle State = iota
	StateSubscribed
	StateErrored
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateSubscribed:
		return "subscribed"
	case StateErrored:
		return "errored"
	case StateCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// Snapshot is the observable state of a Bridge.
type Snapshot[T any] struct {
	Value    T
	Err      error
	Complete bool
}

// BridgeOption configures a Bridge.
type BridgeOption[T any] func(*Bridge[T])

// WithOnChange registers fn to run after every state change caused by the
// stream. It runs on the goroutine delivering the signal, without locks held.
func WithOnChange[T any](fn func(Snapshot[T])) BridgeOption[T] {
	return func(b *Bridge[T]) {
		b.onChange = fn
	}
}

// Bridge adapts a stream factory into value, error and completion state. At
// most one subscription is alive at a time: the previous one is released
// before a new one is opened.
type Bridge[T any] struct {
	mu       sync.Mutex
	initial  T
	value    T
	err      error
	complete bool
	state    State
	deps     Deps
	bound    bool
	gen      uint64
	sub      stream.Subscription
	onChange func(Snapshot[T])
}

// NewBridge returns an idle bridge whose value starts at initial.
func NewBridge[T any](initial T, opts ...BridgeOption[T]) *Bridge[T] {
	b := &Bridge[T]{initial: initial, value: initial}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Bind attaches to the stream produced by factory. When already bound with
// equal deps it returns the current snapshot untouched. Otherwise it
// releases the previous subscription, resets value, error and completion,
// then calls factory and subscribes. Signals from a released subscription
// are ignored.
func (b *Bridge[T]) Bind(factory func() stream.Stream[T], deps Deps) Snapshot[T] {
	b.mu.Lock()
	if b.bound && b.deps.Equal(deps) {
		snap := b.snapshotLocked()
		b.mu.Unlock()
		return snap
	}
	previous := b.sub
	b.sub = nil
	b.gen++
	gen := b.gen
	b.deps = deps.clone()
	b.bound = true
	b.value = b.initial
	b.err = nil
	b.complete = false
	b.state = StateSubscribed
	b.mu.Unlock()

	if previous != nil {
		previous.Unsubscribe()
	}

	sub := factory().Subscribe(stream.Observer[T]{
		Next:     func(v T) { b.next(gen, v) },
		Error:    func(err error) { b.fail(gen, err) },
		Complete: func() { b.done(gen) },
	})

	b.mu.Lock()
	if b.gen != gen {
		b.mu.Unlock()
		sub.Unsubscribe()
		return b.Snapshot()
	}
	b.sub = sub
	snap := b.snapshotLocked()
	b.mu.Unlock()
	return snap
}

// Detach releases the subscription and returns the bridge to idle. The
// last value stays readable.
func (b *Bridge[T]) Detach() {
	b.mu.Lock()
	sub := b.sub
	b.sub = nil
	b.gen++
	b.bound = false
	b.deps = nil
	b.state = StateIdle
	b.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (b *Bridge[T]) next(gen uint64, v T) {
	b.mu.Lock()
	if gen != b.gen || b.state != StateSubscribed {
		b.mu.Unlock()
		return
	}
	if compare.Identical(any(v), any(b.value)) {
		if cloned, ok := compare.ShallowClone(any(v)).(T); ok {
			v = cloned
		}
	}
	b.value = v
	b.err = nil
	b.changedLocked()
}

func (b *Bridge[T]) fail(gen uint64, err error) {
	b.mu.Lock()
	if gen != b.gen || b.state != StateSubscribed {
		b.mu.Unlock()
		return
	}
	var zero T
	b.value = zero
	b.err = err
	b.state = StateErrored
	b.changedLocked()
}

func (b *Bridge[T]) done(gen uint64) {
	b.mu.Lock()
	if gen != b.gen || b.state != StateSubscribed {
		b.mu.Unlock()
		return
	}
	b.complete = true
	b.state = StateCompleted
	b.changedLocked()
}

// changedLocked releases b.mu and reports the new snapshot.
func (b *Bridge[T]) changedLocked() {
	snap := b.snapshotLocked()
	fn := b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func (b *Bridge[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{Value: b.value, Err: b.err, Complete: b.complete}
}

// Snapshot returns value, error and completion together.
func (b *Bridge[T]) Snapshot() Snapshot[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Value returns the latest value.
func (b *Bridge[T]) Value() T {
	return b.Snapshot().Value
}

// Err returns the error that ended the stream, if any.
func (b *Bridge[T]) Err() error {
	return b.Snapshot().Err
}

// Complete reports whether the stream completed without error.
func (b *Bridge[T]) Complete() bool {
	return b.Snapshot().Complete
}

// State returns the lifecycle state.
func (b *Bridge[T]) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
