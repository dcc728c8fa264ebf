package ptrstore

import (
	"github.com/goliatone/go-ptrstore/internal/hydrate"
	"github.com/goliatone/go-ptrstore/pkg/compare"
	"github.com/goliatone/go-ptrstore/pkg/store"
	"github.com/goliatone/go-ptrstore/pkg/stream"
)

// Seed returns a pointer to v, for the Default fields of accessor options.
func Seed[T any](v T) *T {
	return &v
}

// GetOptions configures a Getter.
type GetOptions[T any] struct {
	// Default, when set, is written to the pointer before every attach.
	Default *T
	// Initial is the value reported before the first emission.
	Initial  T
	OnChange func(Snapshot[T])
	// Decode customizes how stored values are converted to T.
	Decode []DecodeOption[T]
}

// Getter keeps the value at a pointer.
type Getter[T any] struct {
	*Bridge[T]
	def    *T
	decode []DecodeOption[T]
}

// NewGetter returns a detached Getter.
func NewGetter[T any](opts GetOptions[T]) *Getter[T] {
	return &Getter[T]{
		Bridge: NewBridge(opts.Initial, WithOnChange(opts.OnChange)),
		def:    opts.Default,
		decode: opts.Decode,
	}
}

// Sync attaches to ptr on st, re-attaching when ptr, st or strictness
// change, and returns the current value. A nil st selects the global store.
func (g *Getter[T]) Sync(st *store.Store, ptr string, strictness compare.Strictness) T {
	st = resolve(st)
	return g.Bind(func() stream.Stream[T] {
		return read(st, ptr, strictness, g.def, g.decode)
	}, Deps{ptr, st, strictness}).Value
}

// read opens a typed stream on ptr. With a default, the default is written
// synchronously on subscribe before the read stream opens.
func read[T any](st *store.Store, ptr string, strictness compare.Strictness, def *T, decode []DecodeOption[T]) stream.Stream[T] {
	return stream.Defer(func() stream.Stream[T] {
		if def != nil {
			err := st.Set([]store.Entry{{Pointer: ptr, Value: *def}}, store.Immediate())
			if err != nil {
				return stream.Fail[T](err)
			}
		}
		return typed(st.Get(ptr, strictness), ptr, newDecoder(decode))
	})
}

// typed converts raw store values to T. Absent values become the zero T.
func typed[T any](src stream.Stream[any], ptr string, decoder *hydrate.Decoder[T]) stream.Stream[T] {
	ctx := hydrate.Context{Pointer: ptr}
	return stream.Map(src, func(v any) (T, error) {
		return decoder.Decode(ctx, v)
	})
}
