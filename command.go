package ptrstore

import (
	"sync"

	"github.com/goliatone/go-ptrstore/internal/hydrate"
	"github.com/goliatone/go-ptrstore/pkg/compare"
	"github.com/goliatone/go-ptrstore/pkg/store"
	"github.com/oklog/ulid/v2"
)

// CommandPrefix is the namespace reserved for command envelopes.
const CommandPrefix = "/command"

// CommandPointer returns the envelope pointer for ptr.
func CommandPointer(ptr string) string {
	return CommandPrefix + ptr
}

// SendFunc writes a command value for ptr.
type SendFunc func(ptr string, value any) error

// NewSender returns a SendFunc bound to st, or to the global store when st
// is nil. Every call writes a new envelope immediately, tagged with a fresh
// ULID so receivers can tell deliveries apart.
func NewSender(st *store.Store) SendFunc {
	target := resolve(st)
	return func(ptr string, value any) error {
		return target.Set([]store.Entry{{
			Pointer: CommandPointer(ptr),
			Value:   envelope(value),
		}}, store.Immediate())
	}
}

func envelope(value any) map[string]any {
	return map[string]any{
		"value": value,
		"id":    ulid.Make().String(),
	}
}

// unwrap splits a stored envelope into its payload and id. Values written
// without an envelope are their own payload and carry no id.
func unwrap(raw any) (any, string) {
	env, ok := raw.(map[string]any)
	if !ok {
		return raw, ""
	}
	id, _ := env["id"].(string)
	return env["value"], id
}

// CommandReceiver delivers each command written for a pointer exactly once.
// Only one receiver should listen on a given pointer; additional receivers
// each fire once per envelope.
type CommandReceiver[T any] struct {
	trigger *Trigger[any]
	decoder *hydrate.Decoder[T]
	mu      sync.Mutex
	err     error
	handled string
}

// NewCommandReceiver returns a detached receiver.
func NewCommandReceiver[T any](decode ...DecodeOption[T]) *CommandReceiver[T] {
	return &CommandReceiver[T]{
		trigger: NewTrigger[any](),
		decoder: newDecoder(decode),
	}
}

// Sync listens on CommandPointer(ptr) with strict comparison and no skip, so
// a command already pending at attach time is delivered. For each envelope
// cb receives the decoded value, then the envelope is deleted on the next
// tick. An envelope whose id matches the last one handled is only deleted;
// that happens when an ancestor such as /command is replaced by a copy
// before the delete lands.
func (r *CommandReceiver[T]) Sync(st *store.Store, ptr string, cb func(T), deps Deps) {
	st = resolve(st)
	target := CommandPointer(ptr)
	r.trigger.Sync(st, target, func(raw any) {
		if raw == nil {
			return
		}
		payload, id := unwrap(raw)
		r.mu.Lock()
		seen := id != "" && id == r.handled
		if !seen {
			r.handled = id
		}
		r.mu.Unlock()

		if !seen {
			value, err := r.decoder.Decode(hydrate.Context{Pointer: target}, payload)
			r.setErr(err)
			if err == nil && cb != nil {
				cb(value)
			}
		}
		if err := st.Delete([]string{target}, store.NextTick()); err != nil {
			r.setErr(err)
		}
	}, compare.Strict, 0, deps)
}

// Detach stops listening.
func (r *CommandReceiver[T]) Detach() {
	r.trigger.Detach()
}

// Err returns the last decode or delete error.
func (r *CommandReceiver[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	return r.trigger.Err()
}

func (r *CommandReceiver[T]) setErr(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}
