package ptrstore

import (
	"errors"
	"sync"
	"testing"

	"github.com/goliatone/go-ptrstore/pkg/stream"
)

type source[T any] struct {
	mu        sync.Mutex
	observers map[int]stream.Observer[T]
	nextID    int
	opened    int
}

func newSource[T any]() *source[T] {
	return &source[T]{observers: map[int]stream.Observer[T]{}}
}

func (s *source[T]) Subscribe(observer stream.Observer[T]) stream.Subscription {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.opened++
	s.observers[id] = observer
	s.mu.Unlock()
	return stream.Once(func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	})
}

func (s *source[T]) live() []stream.Observer[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]stream.Observer[T], 0, len(s.observers))
	for _, o := range s.observers {
		out = append(out, o)
	}
	return out
}

func (s *source[T]) emit(v T) {
	for _, o := range s.live() {
		o.Next(v)
	}
}

func (s *source[T]) fail(err error) {
	for _, o := range s.live() {
		o.Error(err)
	}
}

func (s *source[T]) complete() {
	for _, o := range s.live() {
		o.Complete()
	}
}

func (s *source[T]) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

func TestBridgeTracksValueErrorAndCompletion(t *testing.T) {
	src := newSource[int]()
	var changes []Snapshot[int]
	b := NewBridge(-1, WithOnChange(func(s Snapshot[int]) { changes = append(changes, s) }))

	if b.State() != StateIdle {
		t.Fatalf("expected idle, got %s", b.State())
	}
	snap := b.Bind(func() stream.Stream[int] { return src }, Deps{"a"})
	if snap.Value != -1 || b.State() != StateSubscribed {
		t.Fatalf("unexpected state after bind: %+v %s", snap, b.State())
	}

	src.emit(4)
	if b.Value() != 4 || len(changes) != 1 {
		t.Fatalf("expected value 4 and one change, got %d %d", b.Value(), len(changes))
	}

	boom := errors.New("boom")
	src.fail(boom)
	if !errors.Is(b.Err(), boom) || b.Value() != 0 || b.State() != StateErrored {
		t.Fatalf("expected errored zero value, got %+v %s", b.Snapshot(), b.State())
	}

	src.emit(9)
	if b.Value() != 0 {
		t.Fatalf("values after error must be ignored, got %d", b.Value())
	}
}

func TestBridgeCompletes(t *testing.T) {
	src := newSource[string]()
	b := NewBridge("")
	b.Bind(func() stream.Stream[string] { return src }, nil)
	src.emit("x")
	src.complete()
	if !b.Complete() || b.Value() != "x" || b.State() != StateCompleted {
		t.Fatalf("expected completed with last value, got %+v", b.Snapshot())
	}
}

func TestBridgeRebindsOnlyWhenDepsChange(t *testing.T) {
	first := newSource[int]()
	second := newSource[int]()
	factoryCalls := 0
	b := NewBridge(0)

	b.Bind(func() stream.Stream[int] { factoryCalls++; return first }, Deps{"a", 1})
	b.Bind(func() stream.Stream[int] { factoryCalls++; return first }, Deps{"a", 1})
	if factoryCalls != 1 {
		t.Fatalf("expected factory once for equal deps, got %d", factoryCalls)
	}

	first.emit(5)
	b.Bind(func() stream.Stream[int] { factoryCalls++; return second }, Deps{"b", 1})
	if factoryCalls != 2 {
		t.Fatalf("expected factory again on new deps, got %d", factoryCalls)
	}
	if first.count() != 0 {
		t.Fatalf("previous subscription must be released")
	}
	if b.Value() != 0 {
		t.Fatalf("value should reset to initial on rebind, got %d", b.Value())
	}

	first.emit(7)
	if b.Value() != 0 {
		t.Fatalf("stale emission leaked: %d", b.Value())
	}
	second.emit(8)
	if b.Value() != 8 {
		t.Fatalf("expected 8, got %d", b.Value())
	}
}

func TestBridgeIgnoresStaleSignalsCapturedBeforeRebind(t *testing.T) {
	first := newSource[int]()
	b := NewBridge(0)
	b.Bind(func() stream.Stream[int] { return first }, Deps{1})
	stale := first.live()[0]

	b.Bind(func() stream.Stream[int] { return stream.Of(2) }, Deps{2})
	stale.Next(99)
	stale.Error(errors.New("late"))
	if b.Value() != 2 || b.Err() != nil {
		t.Fatalf("stale signals must be ignored, got %+v", b.Snapshot())
	}
}

func TestBridgeClonesIdenticalReemission(t *testing.T) {
	src := newSource[map[string]any]()
	var seen []map[string]any
	b := NewBridge[map[string]any](nil, WithOnChange(func(s Snapshot[map[string]any]) {
		seen = append(seen, s.Value)
	}))
	b.Bind(func() stream.Stream[map[string]any] { return src }, nil)

	doc := map[string]any{"a": 1}
	src.emit(doc)
	src.emit(doc)
	if len(seen) != 2 {
		t.Fatalf("expected two changes, got %d", len(seen))
	}
	first, second := seen[0], seen[1]
	second["marker"] = true
	if _, ok := first["marker"]; ok {
		t.Fatalf("identical re-emission should be a fresh copy")
	}
	if second["a"] != 1 {
		t.Fatalf("clone lost content: %v", second)
	}
}

func TestBridgeDetachKeepsLastValue(t *testing.T) {
	src := newSource[int]()
	b := NewBridge(0)
	b.Bind(func() stream.Stream[int] { return src }, nil)
	src.emit(3)
	b.Detach()
	if src.count() != 0 || b.State() != StateIdle || b.Value() != 3 {
		t.Fatalf("unexpected detach state: %d %s %d", src.count(), b.State(), b.Value())
	}
	b.Bind(func() stream.Stream[int] { return src }, nil)
	if src.count() != 1 {
		t.Fatalf("expected rebind after detach")
	}
}

func TestDepsEqual(t *testing.T) {
	m := map[string]any{"a": []any{1}}
	cases := []struct {
		a, b Deps
		want bool
	}{
		{Deps{"x", 1}, Deps{"x", 1}, true},
		{Deps{"x"}, Deps{"x", 1}, false},
		{Deps{m}, Deps{map[string]any{"a": []any{1}}}, true},
		{Deps{1}, Deps{int64(1)}, false},
		{Deps{nil}, Deps{nil}, true},
		{nil, Deps{}, true},
	}
	for i, tc := range cases {
		if got := tc.a.Equal(tc.b); got != tc.want {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, got)
		}
	}
}
