package stream

import "sync"

// Observer receives the signals of a Stream. Nil callbacks are ignored.
type Observer[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// Subscription releases the resources held by an active subscription.
// Implementations must tolerate repeated calls.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func()

// Unsubscribe implements Subscription.
func (f SubscriptionFunc) Unsubscribe() {
	if f != nil {
		f()
	}
}

// Once wraps fn so it runs at most once no matter how many times the returned
// subscription is released.
func Once(fn func()) Subscription {
	var once sync.Once
	return SubscriptionFunc(func() {
		if fn != nil {
			once.Do(fn)
		}
	})
}

// Noop is a subscription that holds nothing.
var Noop Subscription = SubscriptionFunc(nil)

// Stream is a push-based source of values.
type Stream[T any] interface {
	Subscribe(observer Observer[T]) Subscription
}

// Func adapts a subscribe function to Stream.
type Func[T any] func(observer Observer[T]) Subscription

// Subscribe implements Stream.
func (f Func[T]) Subscribe(observer Observer[T]) Subscription {
	if f == nil {
		if observer.Complete != nil {
			observer.Complete()
		}
		return Noop
	}
	sub := f(observer)
	if sub == nil {
		return Noop
	}
	return sub
}

// Operator transforms one stream into another.
type Operator[IN, OUT any] func(Stream[IN]) Stream[OUT]

// Compose chains two operators.
func Compose[A, B, C any](first Operator[A, B], second Operator[B, C]) Operator[A, C] {
	return func(src Stream[A]) Stream[C] {
		return second(first(src))
	}
}

// guard enforces the stream grammar for one downstream observer: no signal
// after a terminal signal or after the downstream unsubscribed.
type guard[T any] struct {
	mu       sync.Mutex
	done     bool
	cancel   func()
	observer Observer[T]
}

func newGuard[T any](observer Observer[T]) *guard[T] {
	return &guard[T]{observer: observer}
}

func (g *guard[T]) isDone() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}

func (g *guard[T]) next(value T) {
	if g.isDone() || g.observer.Next == nil {
		return
	}
	g.observer.Next(value)
}

func (g *guard[T]) fail(err error) {
	if !g.finish() {
		return
	}
	if g.observer.Error != nil {
		g.observer.Error(err)
	}
}

func (g *guard[T]) complete() {
	if !g.finish() {
		return
	}
	if g.observer.Complete != nil {
		g.observer.Complete()
	}
}

// finish marks the guard terminal and releases upstream. It reports whether
// this call performed the transition.
func (g *guard[T]) finish() bool {
	g.mu.Lock()
	if g.done {
		g.mu.Unlock()
		return false
	}
	g.done = true
	cancel := g.cancel
	g.cancel = nil
	g.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return true
}

// attach records the upstream release function, running it right away when
// the guard already terminated during a synchronous subscribe.
func (g *guard[T]) attach(cancel func()) {
	g.mu.Lock()
	if g.done {
		g.mu.Unlock()
		cancel()
		return
	}
	g.cancel = cancel
	g.mu.Unlock()
}

func (g *guard[T]) stop() {
	g.finish()
}

// forward subscribes to src and routes each value through step, wiring
// terminal signals and teardown through a guard on the downstream observer.
func forward[T, U any](src Stream[T], observer Observer[U], step func(g *guard[U], value T)) Subscription {
	g := newGuard(observer)
	upstream := src.Subscribe(Observer[T]{
		Next: func(value T) {
			if !g.isDone() {
				step(g, value)
			}
		},
		Error:    g.fail,
		Complete: g.complete,
	})
	g.attach(upstream.Unsubscribe)
	return Once(g.stop)
}
