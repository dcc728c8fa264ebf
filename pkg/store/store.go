package store

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-ptrstore/layering"
	"github.com/goliatone/go-ptrstore/pkg/compare"
	"github.com/goliatone/go-ptrstore/pkg/stream"
	"github.com/google/uuid"
)

// Entry is one pointer write.
type Entry struct {
	Pointer string `json:"ptr" yaml:"ptr"`
	Value   any    `json:"value" yaml:"value"`
}

// Store is an in-memory JSON-like document with pointer subscriptions. It is
// safe for concurrent use.
type Store struct {
	id  string
	cfg config

	mu        sync.Mutex
	doc       any
	subs      []*subscription
	nextSubID uint64
	queue     []delivery
	pending   []mutation
	draining  bool
	due       bool
	scheduled bool
	destroyed bool
}

type subscription struct {
	id         uint64
	pointer    string
	tokens     []string
	strictness compare.Strictness
	last       any
	closed     bool
	observer   stream.Observer[any]
}

type delivery struct {
	sub      *subscription
	value    any
	complete bool
}

// New builds a store holding a deep copy of initial.
func New(initial map[string]any, opts ...Option) *Store {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	s := &Store{id: uuid.NewString(), cfg: cfg}
	if initial != nil {
		s.doc = layering.Clone(initial)
	} else {
		s.doc = map[string]any{}
	}
	return s
}

// ID returns the unique identifier assigned at construction.
func (s *Store) ID() string {
	return s.id
}

// DefaultStrictness returns the policy applied when Get receives none.
func (s *Store) DefaultStrictness() compare.Strictness {
	return s.cfg.strictness
}

// Get returns a stream of the value at ptr. Each subscriber first receives
// the current value (nil when absent), then every value written by a batch
// that touches ptr, an ancestor or a descendant, unless the new value equals
// the last one delivered under strictness. An empty strictness selects the
// store default. Streams complete when the store is destroyed.
func (s *Store) Get(ptr string, strictness compare.Strictness) stream.Stream[any] {
	return stream.Func[any](func(observer stream.Observer[any]) stream.Subscription {
		return s.subscribe(ptr, strictness, observer)
	})
}

func (s *Store) subscribe(ptr string, strictness compare.Strictness, observer stream.Observer[any]) stream.Subscription {
	tokens, err := Split(ptr)
	if err != nil {
		if observer.Error != nil {
			observer.Error(pointerError("get", ptr, err))
		}
		return stream.Noop
	}
	if strictness == "" {
		strictness = s.cfg.strictness
	}
	if !strictness.IsBuiltin() && s.cfg.comparer == nil {
		s.log(LogEvent{
			Op:       OpStrictness,
			Pointers: []string{ptr},
			Err:      fmt.Errorf("store: strictness %q has no comparer, treating as %s", strictness, compare.None),
		})
	}

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		if observer.Complete != nil {
			observer.Complete()
		}
		return stream.Noop
	}
	s.nextSubID++
	sub := &subscription{
		id:         s.nextSubID,
		pointer:    ptr,
		tokens:     tokens,
		strictness: strictness,
		observer:   observer,
	}
	sub.last, _ = lookup(s.doc, tokens)
	s.subs = append(s.subs, sub)
	s.queue = append(s.queue, delivery{sub: sub, value: sub.last})
	s.mu.Unlock()

	s.cfg.metrics.subscribed(1)
	s.drain()
	return stream.Once(func() { s.unsubscribe(sub) })
}

func (s *Store) unsubscribe(sub *subscription) {
	s.mu.Lock()
	if sub.closed {
		s.mu.Unlock()
		return
	}
	sub.closed = true
	for i, candidate := range s.subs {
		if candidate == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.cfg.metrics.subscribed(-1)
}

// Set writes entries in order. Immediate batches are atomic and return the
// first failure; deferred batches return only pointer syntax errors and log
// failures when applied.
func (s *Store) Set(entries []Entry, opts ...WriteOption) error {
	ops := make([]mutation, 0, len(entries))
	for _, entry := range entries {
		op, err := newMutation(OpSet, entry.Pointer, entry.Value)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}
	return s.write(OpSet, ops, opts)
}

// Delete removes the members at ptrs. Missing members are ignored and array
// members are spliced out.
func (s *Store) Delete(ptrs []string, opts ...WriteOption) error {
	ops := make([]mutation, 0, len(ptrs))
	for _, ptr := range ptrs {
		op, err := newMutation(OpDelete, ptr, nil)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}
	return s.write(OpDelete, ops, opts)
}

func (s *Store) write(op string, ops []mutation, opts []WriteOption) error {
	if len(ops) == 0 {
		return nil
	}
	wc := writeConfig{nextTick: s.cfg.nextTick}
	for _, opt := range opts {
		if opt != nil {
			opt(&wc)
		}
	}
	if wc.nextTick {
		return s.enqueue(ops)
	}
	return s.applyNow(op, ops)
}

// Peek returns the current value at ptr without subscribing.
func (s *Store) Peek(ptr string) (any, bool) {
	tokens, err := Split(ptr)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lookup(s.doc, tokens)
}

// Snapshot returns a deep copy of the document when its root is an object,
// nil otherwise.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()
	root, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	return layering.Clone(root)
}

// Pending reports how many deferred mutations are queued.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Subscribers reports how many subscriptions are open.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Destroyed reports whether Destroy has been called.
func (s *Store) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// Flush applies queued deferred mutations now. When a notification cascade
// is in progress they are applied as soon as it unwinds instead.
func (s *Store) Flush() {
	s.mu.Lock()
	s.scheduled = false
	if len(s.pending) > 0 {
		s.due = true
	}
	s.mu.Unlock()
	s.drain()
}

// Destroy completes every open stream, drops queued mutations and rejects
// later writes with ErrDestroyed. Repeated calls are no-ops.
func (s *Store) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	s.pending = nil
	s.due = false
	subs := s.subs
	s.subs = nil
	s.queue = nil
	for _, sub := range subs {
		sub.closed = true
		s.queue = append(s.queue, delivery{sub: sub, complete: true})
	}
	s.mu.Unlock()

	s.cfg.metrics.subscribed(-len(subs))
	s.cfg.metrics.queued(0)
	s.log(LogEvent{Op: OpDestroy})
	s.emitDestroyed()
	s.drain()
}

func (s *Store) log(event LogEvent) {
	event.StoreID = s.id
	s.cfg.logger.LogStore(event)
}
