package ptrstore

import (
	"errors"

	"github.com/goliatone/go-ptrstore/pkg/compare"
	"github.com/goliatone/go-ptrstore/pkg/store"
	"github.com/goliatone/go-ptrstore/pkg/stream"
)

// ErrNilOperator is reported when a Transformer is synced without an operator.
var ErrNilOperator = errors.New("ptrstore: transform operator is nil")

// TransformOptions configures a Transformer.
type TransformOptions[IN, OUT any] struct {
	Default  *IN
	Initial  OUT
	OnChange func(Snapshot[OUT])
	// Decode customizes how stored values are converted to IN.
	Decode []DecodeOption[IN]
}

// Transformer reads a pointer through a stream operator.
type Transformer[IN, OUT any] struct {
	*Bridge[OUT]
	def    *IN
	decode []DecodeOption[IN]
}

// NewTransformer returns a detached Transformer.
func NewTransformer[IN, OUT any](opts TransformOptions[IN, OUT]) *Transformer[IN, OUT] {
	return &Transformer[IN, OUT]{
		Bridge: NewBridge(opts.Initial, WithOnChange(opts.OnChange)),
		def:    opts.Default,
		decode: opts.Decode,
	}
}

// Sync attaches like Getter.Sync and pipes the typed read stream through op.
// deps additionally guard re-creation of the operator stage.
func (t *Transformer[IN, OUT]) Sync(st *store.Store, ptr string, op stream.Operator[IN, OUT], strictness compare.Strictness, deps Deps) OUT {
	st = resolve(st)
	return t.Bind(func() stream.Stream[OUT] {
		if op == nil {
			return stream.Fail[OUT](ErrNilOperator)
		}
		return op(read(st, ptr, strictness, t.def, t.decode))
	}, keyed(deps, ptr, st, strictness)).Value
}
