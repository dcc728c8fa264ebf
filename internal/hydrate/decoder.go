package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies where a value was read from.
type Context struct {
	Pointer string
}

// PreHook lets callers normalise the raw value before decoding.
type PreHook func(Context, any) (any, error)

// PostHook lets callers adjust or validate the decoded value.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts JSON-like store values into typed Go values.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDisallowUnknownFields invokes json.Decoder.DisallowUnknownFields.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts value into T. A nil value yields the zero T. Values that
// already hold a T are returned as is, so identity is preserved; anything
// else goes through a JSON round trip.
func (d *Decoder[T]) Decode(ctx Context, value any) (T, error) {
	var zero T
	current := value
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for pointer %q failed: %w", ctx.Pointer, err)
		}
		current = next
	}

	var result T
	switch typed := current.(type) {
	case nil:
	case T:
		result = typed
	default:
		buffer, err := json.Marshal(typed)
		if err != nil {
			return zero, fmt.Errorf("hydrate: marshal value for pointer %q: %w", ctx.Pointer, err)
		}
		decoder := json.NewDecoder(bytes.NewReader(buffer))
		for _, configure := range d.configureDec {
			if configure != nil {
				configure(decoder)
			}
		}
		if err := decoder.Decode(&result); err != nil {
			return zero, fmt.Errorf("hydrate: decode pointer %q into %T: %w", ctx.Pointer, zero, err)
		}
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for pointer %q failed: %w", ctx.Pointer, err)
		}
	}
	return result, nil
}

// Value decodes value into T with a default decoder.
func Value[T any](pointer string, value any) (T, error) {
	return NewDecoder[T]().Decode(Context{Pointer: pointer}, value)
}
