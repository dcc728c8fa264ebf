package store

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-ptrstore/pkg/activity"
	"github.com/goliatone/go-ptrstore/pkg/compare"
)

type mutation struct {
	op      string
	pointer string
	key     string
	tokens  []string
	value   any
}

func newMutation(op, ptr string, value any) (mutation, error) {
	tokens, err := Split(ptr)
	if err != nil {
		return mutation{}, pointerError(op, ptr, err)
	}
	return mutation{op: op, pointer: ptr, key: Join(tokens...), tokens: tokens, value: value}, nil
}

// apply returns the document with the mutation applied and whether it
// changed anything. A set always counts as a change.
func (m mutation) apply(doc any) (any, bool, error) {
	if m.op == OpDelete {
		next, changed := deleteIn(doc, m.tokens)
		return next, changed, nil
	}
	next, err := setIn(doc, m.tokens, m.value)
	if err != nil {
		return doc, false, err
	}
	return next, true, nil
}

// batch records what happened while the lock was held so it can be reported
// once the lock is released.
type batch struct {
	kind     string
	deferred bool
	applied  []mutation
	failures []LogEvent
	duration time.Duration
}

func (s *Store) applyNow(op string, ops []mutation) error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return pointerError(op, ops[0].pointer, ErrDestroyed)
	}
	start := time.Now()
	doc := s.doc
	applied := make([]mutation, 0, len(ops))
	for _, m := range ops {
		next, changed, err := m.apply(doc)
		if err != nil {
			s.mu.Unlock()
			err = pointerError(op, m.pointer, err)
			s.cfg.metrics.fail(op)
			s.log(LogEvent{Op: op, Pointers: pointersOf(ops), Err: err})
			return err
		}
		doc = next
		if changed {
			applied = append(applied, m)
		}
	}
	s.doc = doc
	s.notifyLocked(applied)
	s.mu.Unlock()

	s.report(batch{kind: op, applied: applied, duration: time.Since(start)})
	s.drain()
	return nil
}

func (s *Store) enqueue(ops []mutation) error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return pointerError(ops[0].op, ops[0].pointer, ErrDestroyed)
	}
	for _, m := range ops {
		s.pending = coalesce(s.pending, m)
	}
	queued := len(s.pending)
	schedule := false
	switch {
	case s.draining:
		s.due = true
	case !s.scheduled:
		s.scheduled = true
		schedule = true
	}
	s.mu.Unlock()

	s.cfg.metrics.queued(queued)
	if schedule {
		s.cfg.scheduler(s.Flush)
	}
	return nil
}

// coalesce appends m, dropping an earlier mutation of the same pointer so
// the last write wins and takes the later position.
func coalesce(pending []mutation, m mutation) []mutation {
	for i, existing := range pending {
		if existing.key == m.key {
			pending = append(pending[:i], pending[i+1:]...)
			break
		}
	}
	return append(pending, m)
}

// applyPendingLocked applies the deferred queue as one batch. Failing
// mutations are skipped. Callers hold s.mu.
func (s *Store) applyPendingLocked() batch {
	ops := s.pending
	s.pending = nil
	start := time.Now()
	doc := s.doc
	b := batch{kind: OpFlush, deferred: true, applied: make([]mutation, 0, len(ops))}
	for _, m := range ops {
		next, changed, err := m.apply(doc)
		if err != nil {
			b.failures = append(b.failures, LogEvent{
				Op:       m.op,
				Pointers: []string{m.pointer},
				Deferred: true,
				Err:      pointerError(m.op, m.pointer, err),
			})
			continue
		}
		doc = next
		if changed {
			b.applied = append(b.applied, m)
		}
	}
	s.doc = doc
	s.notifyLocked(b.applied)
	b.duration = time.Since(start)
	return b
}

// notifyLocked queues a delivery for every open subscription overlapping an
// applied mutation whose value changed under its strictness. Callers hold
// s.mu.
func (s *Store) notifyLocked(applied []mutation) {
	if len(applied) == 0 {
		return
	}
	for _, sub := range s.subs {
		if !touched(sub.tokens, applied) {
			continue
		}
		value, _ := lookup(s.doc, sub.tokens)
		if compare.Equal(sub.last, value, sub.strictness, s.cfg.comparer) {
			continue
		}
		sub.last = value
		s.queue = append(s.queue, delivery{sub: sub, value: value})
	}
}

func touched(tokens []string, applied []mutation) bool {
	for _, m := range applied {
		if overlaps(tokens, m.tokens) {
			return true
		}
	}
	return false
}

// drain delivers queued notifications until the queue is empty, then applies
// due deferred mutations and repeats. Only one goroutine drains at a time;
// others return immediately and leave their work to the active drainer.
func (s *Store) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for {
		if len(s.queue) > 0 {
			d := s.queue[0]
			s.queue[0] = delivery{}
			s.queue = s.queue[1:]
			if !d.complete && d.sub.closed {
				continue
			}
			s.mu.Unlock()
			s.deliver(d)
			s.mu.Lock()
			continue
		}
		if s.due && len(s.pending) > 0 && !s.destroyed {
			s.due = false
			b := s.applyPendingLocked()
			s.mu.Unlock()
			s.cfg.metrics.queued(0)
			s.report(b)
			s.mu.Lock()
			continue
		}
		break
	}
	s.due = false
	s.draining = false
	s.mu.Unlock()
}

func (s *Store) deliver(d delivery) {
	defer func() {
		if r := recover(); r != nil {
			s.cfg.metrics.fail(OpPanic)
			s.log(LogEvent{
				Op:       OpPanic,
				Pointers: []string{d.sub.pointer},
				Err:      fmt.Errorf("store: subscriber panic: %v", r),
			})
		}
	}()
	if d.complete {
		if d.sub.observer.Complete != nil {
			d.sub.observer.Complete()
		}
		return
	}
	s.cfg.metrics.notified()
	if d.sub.observer.Next != nil {
		d.sub.observer.Next(d.value)
	}
}

func (s *Store) report(b batch) {
	for _, failure := range b.failures {
		s.cfg.metrics.fail(failure.Op)
		s.log(failure)
	}
	if len(b.applied) == 0 {
		return
	}
	counts := map[string]int{}
	for _, m := range b.applied {
		counts[m.op]++
	}
	for op, n := range counts {
		s.cfg.metrics.write(op, b.deferred, n)
	}
	s.cfg.metrics.batch(len(b.applied))
	s.log(LogEvent{
		Op:       b.kind,
		Pointers: pointersOf(b.applied),
		Deferred: b.deferred,
		Duration: b.duration,
	})
	s.emitApplied(b)
}

func (s *Store) emitApplied(b batch) {
	if !s.cfg.emitter.Enabled() {
		return
	}
	now := time.Now()
	for _, m := range b.applied {
		input := activity.StoreEventInput{
			Actor:      s.cfg.actor,
			StoreID:    s.id,
			Pointer:    m.pointer,
			Deferred:   b.deferred,
			BatchSize:  len(b.applied),
			Value:      m.value,
			OccurredAt: now,
		}
		event := activity.BuildStoreSetEvent(input)
		if m.op == OpDelete {
			event = activity.BuildStoreDeleteEvent(input)
		}
		if err := s.cfg.emitter.Emit(context.Background(), event); err != nil {
			s.log(LogEvent{Op: m.op, Pointers: []string{m.pointer}, Deferred: b.deferred, Err: err})
		}
	}
}

func (s *Store) emitDestroyed() {
	if !s.cfg.emitter.Enabled() {
		return
	}
	event := activity.BuildStoreDestroyedEvent(activity.StoreEventInput{
		Actor:   s.cfg.actor,
		StoreID: s.id,
	})
	if err := s.cfg.emitter.Emit(context.Background(), event); err != nil {
		s.log(LogEvent{Op: OpDestroy, Err: err})
	}
}

func pointersOf(ops []mutation) []string {
	out := make([]string, len(ops))
	for i, m := range ops {
		out[i] = m.pointer
	}
	return out
}
