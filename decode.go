package ptrstore

import "github.com/goliatone/go-ptrstore/internal/hydrate"

// DecodeContext identifies the pointer whose value is being converted.
type DecodeContext = hydrate.Context

// DecodeOption customizes how stored values are converted to T.
type DecodeOption[T any] struct {
	apply hydrate.DecoderOption[T]
}

// PreDecode rewrites the raw stored value before it is converted.
func PreDecode[T any](fn func(DecodeContext, any) (any, error)) DecodeOption[T] {
	return DecodeOption[T]{apply: hydrate.WithPreHook[T](fn)}
}

// PostDecode validates or normalizes the converted value. An error fails the
// read with that error.
func PostDecode[T any](fn func(DecodeContext, *T) error) DecodeOption[T] {
	return DecodeOption[T]{apply: hydrate.WithPostHook[T](fn)}
}

// DisallowUnknownFields rejects stored objects carrying fields T does not
// declare. Values that already hold a T are not checked.
func DisallowUnknownFields[T any]() DecodeOption[T] {
	return DecodeOption[T]{apply: hydrate.WithDisallowUnknownFields[T]()}
}

func newDecoder[T any](opts []DecodeOption[T]) *hydrate.Decoder[T] {
	applied := make([]hydrate.DecoderOption[T], 0, len(opts))
	for _, opt := range opts {
		if opt.apply != nil {
			applied = append(applied, opt.apply)
		}
	}
	return hydrate.NewDecoder(applied...)
}
