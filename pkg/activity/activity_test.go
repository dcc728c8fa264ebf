package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " store.set ",
		ActorID:    " actor ",
		ObjectType: " store.pointer ",
		ObjectID:   " /a/b ",
		Channel:    " ptrstore ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)
	if got.Verb != "store.set" || got.ObjectType != "store.pointer" || got.ObjectID != "/a/b" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.Channel != "ptrstore" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	capture := &CaptureHook{}
	if err := (Hooks{capture}).Notify(context.Background(), Event{Verb: "store.set"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyJoinsErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	hooks := Hooks{
		HookFunc(func(context.Context, Event) error { return errA }),
		nil,
		&CaptureHook{Err: errB},
	}
	err := hooks.Notify(context.Background(), BuildStoreDeleteEvent(StoreEventInput{Pointer: "/x"}))
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected joined errors, got %v", err)
	}
}

func TestEmitterAppliesDefaultChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})
	if !emitter.Enabled() {
		t.Fatalf("expected emitter enabled")
	}
	if err := emitter.Emit(context.Background(), BuildStoreSetEvent(StoreEventInput{Pointer: "/a", Value: 1})); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 || capture.Events[0].Channel != DefaultChannel {
		t.Fatalf("unexpected events %+v", capture.Events)
	}
}

func TestEmitterDisabled(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: false})
	_ = emitter.Emit(context.Background(), BuildStoreSetEvent(StoreEventInput{Pointer: "/a"}))
	if len(capture.Events) != 0 {
		t.Fatalf("disabled emitter must not notify")
	}
	var nilEmitter *Emitter
	if nilEmitter.Enabled() {
		t.Fatalf("nil emitter must report disabled")
	}
}

func TestBuildStoreEvents(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	set := BuildStoreSetEvent(StoreEventInput{
		Actor:      Actor{ActorID: " a1 "},
		StoreID:    "s1",
		Pointer:    "/user/name",
		Deferred:   true,
		BatchSize:  2,
		Value:      "ada",
		OccurredAt: at,
	})
	if set.Verb != VerbStoreSet || set.ObjectType != ObjectPointer || set.ObjectID != "/user/name" {
		t.Fatalf("unexpected set event %+v", set)
	}
	if set.ActorID != "a1" || set.Metadata["value"] != "ada" || set.Metadata["deferred"] != true || set.Metadata["batch_size"] != 2 {
		t.Fatalf("unexpected set metadata %+v", set)
	}
	root := BuildStoreDeleteEvent(StoreEventInput{Pointer: ""})
	if root.ObjectID != RootObjectID {
		t.Fatalf("expected root object id, got %q", root.ObjectID)
	}
	destroyed := BuildStoreDestroyedEvent(StoreEventInput{StoreID: "s1", Pointer: "/ignored"})
	if destroyed.ObjectType != ObjectStore || destroyed.ObjectID != "s1" {
		t.Fatalf("unexpected destroyed event %+v", destroyed)
	}
}
