package ptrstore

import (
	"testing"

	"github.com/goliatone/go-ptrstore/pkg/store"
)

func TestCommandDeliversOnceAndClears(t *testing.T) {
	st := manualStore(nil)
	var got []int
	r := NewCommandReceiver[int]()
	r.Sync(st, "/ping", func(v int) { got = append(got, v) }, nil)

	send := NewSender(st)
	if err := send("/ping", 42); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(got) != 1 || got[0] != 42 {
		t.Fatalf("expected one delivery of 42, got %v", got)
	}
	if _, ok := st.Peek(CommandPointer("/ping")); ok {
		t.Fatalf("envelope should be cleared after delivery")
	}
	if r.Err() != nil {
		t.Fatalf("unexpected error: %v", r.Err())
	}
}

func TestCommandRepeatedValuesFireEachTime(t *testing.T) {
	st := manualStore(nil)
	calls := 0
	r := NewCommandReceiver[string]()
	r.Sync(st, "/save", func(string) { calls++ }, nil)
	send := NewSender(st)
	_ = send("/save", "doc")
	_ = send("/save", "doc")
	if calls != 2 {
		t.Fatalf("expected two deliveries, got %d", calls)
	}
}

func TestCommandPendingBeforeAttachIsDelivered(t *testing.T) {
	st := manualStore(nil)
	if err := NewSender(st)("/open", map[string]any{"id": "a"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	type openCmd struct {
		ID string `json:"id"`
	}
	var got []openCmd
	r := NewCommandReceiver[openCmd]()
	r.Sync(st, "/open", func(v openCmd) { got = append(got, v) }, nil)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected pending command delivered on attach, got %v", got)
	}
	if _, ok := st.Peek("/command/open"); ok {
		t.Fatalf("envelope should be cleared")
	}
}

func TestCommandDecodeErrorIsReported(t *testing.T) {
	st := manualStore(nil)
	calls := 0
	r := NewCommandReceiver[int]()
	r.Sync(st, "/n", func(int) { calls++ }, nil)
	_ = NewSender(st)("/n", "not a number")
	if calls != 0 || r.Err() == nil {
		t.Fatalf("expected decode error without callback, calls=%d err=%v", calls, r.Err())
	}
}

func TestCommandDetachStopsDelivery(t *testing.T) {
	st := manualStore(nil)
	calls := 0
	r := NewCommandReceiver[int]()
	r.Sync(st, "/n", func(int) { calls++ }, nil)
	r.Detach()
	_ = NewSender(st)("/n", 1)
	if calls != 0 {
		t.Fatalf("detached receiver fired")
	}
	if v, ok := st.Peek("/command/n"); !ok || v == nil {
		t.Fatalf("undelivered envelope should remain")
	}
	if _, ok := st.Peek("/command/n/id"); !ok {
		t.Fatalf("envelope should carry an id")
	}
}

func TestCommandReplayedEnvelopeIsNotRedelivered(t *testing.T) {
	st := manualStore(nil)
	calls := 0
	r := NewCommandReceiver[int]()
	r.Sync(st, "/save", func(int) { calls++ }, nil)

	handled := map[string]any{"value": 1, "id": "01J0000000000000000000000A"}
	if err := st.Set([]store.Entry{{Pointer: CommandPointer("/save"), Value: handled}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected first delivery, got %d", calls)
	}

	// The ancestor is replaced by a deep-equal copy holding the same envelope.
	replay := map[string]any{"save": map[string]any{"value": 1, "id": "01J0000000000000000000000A"}}
	if err := st.Set([]store.Entry{{Pointer: CommandPrefix, Value: replay}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if calls != 1 {
		t.Fatalf("envelope with a handled id was delivered again, calls=%d", calls)
	}
	if _, ok := st.Peek(CommandPointer("/save")); ok {
		t.Fatalf("replayed envelope should still be cleared")
	}

	if err := NewSender(st)("/save", 1); err != nil {
		t.Fatalf("send: %v", err)
	}
	if calls != 2 {
		t.Fatalf("fresh envelope should be delivered, calls=%d", calls)
	}
}

func TestCommandRawValuesWithoutEnvelope(t *testing.T) {
	st := manualStore(nil)
	var got []string
	r := NewCommandReceiver[string]()
	r.Sync(st, "/say", func(v string) { got = append(got, v) }, nil)
	_ = st.Set([]store.Entry{{Pointer: CommandPointer("/say"), Value: "hi"}})
	_ = st.Set([]store.Entry{{Pointer: CommandPointer("/say"), Value: "hi"}})
	if len(got) != 2 || got[0] != "hi" {
		t.Fatalf("expected raw values delivered on each write, got %v", got)
	}
}

func TestCommandReceiverDecodeOptions(t *testing.T) {
	st := manualStore(nil)
	type move struct {
		X int `json:"x"`
	}
	var got []move
	r := NewCommandReceiver(DisallowUnknownFields[move]())
	r.Sync(st, "/move", func(v move) { got = append(got, v) }, nil)

	send := NewSender(st)
	_ = send("/move", map[string]any{"x": 1})
	_ = send("/move", map[string]any{"x": 2, "y": 3})
	if len(got) != 1 || got[0].X != 1 {
		t.Fatalf("expected only the well-formed command, got %v", got)
	}
	if r.Err() == nil {
		t.Fatalf("expected unknown field error")
	}
}
