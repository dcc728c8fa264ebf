// Package ptrstore binds slices of a shared JSON document to reactive
// consumers.
//
// A Bridge turns a push stream into inspectable value, error and completion
// state and keeps exactly one subscription alive per dependency set. The
// pointer accessors build on it:
//
//   - Getter reads a pointer, optionally seeding it with a default first.
//   - Setter writes a batch whenever its dependencies change.
//   - Transformer reads a pointer through a stream operator.
//   - Trigger runs a callback for changes after the first few emissions.
//
// The command channel layers one-shot messages on top: a SendFunc writes an
// envelope under /command<ptr> and a CommandReceiver consumes it exactly once,
// deleting it on the next tick.
//
// Stores come from a Registry. Global returns the process-wide registry and
// WithRegistry scopes one to a context. Accessors given a nil store use the
// global one.
package ptrstore
