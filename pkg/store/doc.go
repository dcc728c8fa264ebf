// Package store holds a JSON-like document addressed by RFC 6901 pointers and
// pushes changes to per-pointer subscribers.
//
// Writes are either immediate or deferred to the next tick. Immediate
// batches are atomic: every entry applies or none does. Deferred writes are
// queued with last-write-wins per pointer and applied together once the
// current notification cascade has unwound, so a subscriber may safely
// delete or overwrite the value that triggered it.
//
// Notifications are delivered by a single drainer at a time. Callbacks never
// run concurrently, and a write issued from inside a callback is applied
// right away while its notifications queue behind the ones in flight.
package store
