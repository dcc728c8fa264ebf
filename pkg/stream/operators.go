package stream

// Of emits values in order and completes.
func Of[T any](values ...T) Stream[T] {
	return Func[T](func(observer Observer[T]) Subscription {
		g := newGuard(observer)
		for _, value := range values {
			if g.isDone() {
				return Noop
			}
			g.next(value)
		}
		g.complete()
		return Once(g.stop)
	})
}

// Fail emits err immediately.
func Fail[T any](err error) Stream[T] {
	return Func[T](func(observer Observer[T]) Subscription {
		newGuard(observer).fail(err)
		return Noop
	})
}

// Empty completes immediately without emitting.
func Empty[T any]() Stream[T] {
	return Func[T](func(observer Observer[T]) Subscription {
		newGuard(observer).complete()
		return Noop
	})
}

// Defer calls factory for every subscriber and subscribes to the stream it
// returns. Side effects placed in factory therefore run on subscribe.
func Defer[T any](factory func() Stream[T]) Stream[T] {
	return Func[T](func(observer Observer[T]) Subscription {
		src := factory()
		if src == nil {
			return Empty[T]().Subscribe(observer)
		}
		return src.Subscribe(observer)
	})
}

// Map converts each value with fn. An error returned by fn terminates the
// stream with that error and releases the upstream subscription.
func Map[T, U any](src Stream[T], fn func(T) (U, error)) Stream[U] {
	return Func[U](func(observer Observer[U]) Subscription {
		return forward(src, observer, func(g *guard[U], value T) {
			out, err := fn(value)
			if err != nil {
				g.fail(err)
				return
			}
			g.next(out)
		})
	})
}

// Mapping returns Map as an Operator.
func Mapping[T, U any](fn func(T) (U, error)) Operator[T, U] {
	return func(src Stream[T]) Stream[U] {
		return Map(src, fn)
	}
}

// Filter forwards only the values accepted by keep.
func Filter[T any](src Stream[T], keep func(T) bool) Stream[T] {
	return Func[T](func(observer Observer[T]) Subscription {
		return forward(src, observer, func(g *guard[T], value T) {
			if keep(value) {
				g.next(value)
			}
		})
	})
}

// Skip drops the first n values. Each subscriber counts independently.
func Skip[T any](src Stream[T], n int) Stream[T] {
	if n <= 0 {
		return src
	}
	return Func[T](func(observer Observer[T]) Subscription {
		seen := 0
		return forward(src, observer, func(g *guard[T], value T) {
			if seen < n {
				seen++
				return
			}
			g.next(value)
		})
	})
}

// Tap runs fn for every value before forwarding it unchanged.
func Tap[T any](src Stream[T], fn func(T)) Stream[T] {
	return Func[T](func(observer Observer[T]) Subscription {
		return forward(src, observer, func(g *guard[T], value T) {
			fn(value)
			g.next(value)
		})
	})
}
