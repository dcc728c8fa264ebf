package ptrstore

import (
	"context"
	"testing"

	"github.com/goliatone/go-ptrstore/pkg/compare"
	"github.com/goliatone/go-ptrstore/pkg/store"
)

func TestRegistryFirstWriterWins(t *testing.T) {
	r := NewRegistry()
	a := r.GetOrCreate(map[string]any{"v": 1}, store.WithStrictness(compare.Strict))
	b := r.GetOrCreate(map[string]any{"v": 2}, store.WithStrictness(compare.IsEqual))
	if a != b {
		t.Fatalf("expected the same store")
	}
	if v, _ := b.Peek("/v"); v != 1 {
		t.Fatalf("later initial values must be ignored, got %v", v)
	}
	if b.DefaultStrictness() != compare.Strict {
		t.Fatalf("later options must be ignored, got %s", b.DefaultStrictness())
	}
}

func TestRegistryCloseDestroysAndAllowsRecreate(t *testing.T) {
	r := NewScope(map[string]any{"v": 1})
	first := r.Store()
	r.Close()
	if !first.Destroyed() {
		t.Fatalf("close should destroy the store")
	}
	second := r.Store()
	if second == first || second.Destroyed() {
		t.Fatalf("expected a fresh store after close")
	}
	r.Close()
}

func TestContextScoping(t *testing.T) {
	scoped := NewScope(map[string]any{"page": "home"})
	defer scoped.Close()
	ctx := WithRegistry(context.Background(), scoped)

	if StoreFrom(ctx) != scoped.Store() {
		t.Fatalf("expected scoped store from context")
	}
	if RegistryFrom(context.Background()) != Global() {
		t.Fatalf("expected global registry fallback")
	}
	if StoreFrom(context.Background()) != GlobalStore() {
		t.Fatalf("expected global store fallback")
	}
}

func TestAccessorsDefaultToGlobalStore(t *testing.T) {
	s := NewSetter(true)
	if err := s.Sync(nil, []store.Entry{{Pointer: "/test/global", Value: "on"}}, nil); err != nil {
		t.Fatalf("sync: %v", err)
	}
	defer s.Detach()
	g := NewGetter(GetOptions[string]{})
	defer g.Detach()
	if got := g.Sync(nil, "/test/global", ""); got != "on" {
		t.Fatalf("expected global value, got %q", got)
	}
}
