package ptrstore

import (
	"fmt"

	"github.com/goliatone/go-ptrstore/pkg/eval"
	"github.com/goliatone/go-ptrstore/pkg/stream"
)

// MapExpr returns an operator evaluating expr with the expr engine for each
// value. The value is bound as `value`, and map keys at the top level.
func MapExpr[IN any](expr string) stream.Operator[IN, any] {
	return MapWith[IN](nil, expr)
}

// MapExprWith is MapExpr with functions callable by name from expr.
func MapExprWith[IN any](functions *eval.FunctionRegistry, expr string) stream.Operator[IN, any] {
	return MapWith[IN](eval.NewExprEvaluator(eval.ExprWithFunctionRegistry(functions)), expr)
}

// MapWith is MapExpr with an explicit evaluator. A nil evaluator selects
// the expr engine. Compilation errors fail the stream on subscribe.
func MapWith[IN any](ev eval.Evaluator, expr string) stream.Operator[IN, any] {
	rule, err := compile(ev, expr)
	return func(src stream.Stream[IN]) stream.Stream[any] {
		if err != nil {
			return stream.Fail[any](err)
		}
		return stream.Map(src, func(v IN) (any, error) {
			return rule.Evaluate(eval.Context{Value: v})
		})
	}
}

// FilterExpr returns an operator forwarding only values for which expr
// evaluates to true. Evaluation errors end the stream.
func FilterExpr[T any](ev eval.Evaluator, expr string) stream.Operator[T, T] {
	rule, err := compile(ev, expr)
	return func(src stream.Stream[T]) stream.Stream[T] {
		if err != nil {
			return stream.Fail[T](err)
		}
		checked := stream.Map(src, func(v T) (filtered[T], error) {
			ok, err := eval.Bool(rule, eval.Context{Value: v})
			return filtered[T]{value: v, keep: ok}, err
		})
		kept := stream.Filter(checked, func(f filtered[T]) bool { return f.keep })
		return stream.Map(kept, func(f filtered[T]) (T, error) { return f.value, nil })
	}
}

type filtered[T any] struct {
	value T
	keep  bool
}

func compile(ev eval.Evaluator, expr string) (eval.CompiledRule, error) {
	if ev == nil {
		ev = eval.NewExprEvaluator()
	}
	rule, err := ev.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("ptrstore: compile %q: %w", expr, err)
	}
	return rule, nil
}
