//go:build js_eval

package config

import (
	"testing"

	"github.com/goliatone/go-ptrstore/pkg/store"
	"github.com/goliatone/go-ptrstore/pkg/stream"
)

func TestNewStore_JSComparer(t *testing.T) {
	cfg, err := Parse([]byte(`
store:
  strictness: sameKeys
comparers:
  sameKeys:
    engine: js
    expr: "Object.keys(a).sort().join() === Object.keys(b).sort().join()"
initial:
  flags: {dark: true}
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	st, err := cfg.NewStore(store.WithScheduler(store.ManualScheduler))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	defer st.Destroy()

	var seen int
	sub := st.Get("/flags", "").Subscribe(stream.Observer[any]{Next: func(any) { seen++ }})
	defer sub.Unsubscribe()

	_ = st.Set([]store.Entry{{Pointer: "/flags/dark", Value: false}})
	if seen != 1 {
		t.Fatalf("same keys should not notify, got %d emissions", seen)
	}
	_ = st.Set([]store.Entry{{Pointer: "/flags/compact", Value: true}})
	if seen != 2 {
		t.Fatalf("new key should notify, got %d emissions", seen)
	}
}
