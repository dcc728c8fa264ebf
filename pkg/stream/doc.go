// Package stream provides the synchronous push streams used to observe store
// pointers and to compose transformation stages on top of them.
//
// A Stream emits zero or more values followed by at most one terminal signal
// (Error or Complete). Emissions are delivered on the goroutine that produces
// them; nothing in this package starts goroutines. Unsubscribing is the only
// cancellation primitive and it is always idempotent.
//
//	src := stream.Of(1, 2, 3)
//	doubled := stream.Map(src, func(v int) (int, error) { return v * 2, nil })
//	sub := doubled.Subscribe(stream.Observer[int]{Next: func(v int) { fmt.Println(v) }})
//	defer sub.Unsubscribe()
package stream
