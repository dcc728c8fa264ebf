package compare

import (
	"fmt"

	"github.com/goliatone/go-ptrstore/pkg/eval"
)

// EvaluatorComparer compiles one boolean expression per custom strictness.
// Expressions see the previous value as `a` and the next one as `b` and
// return true when the two should be treated as equal. Strictness tags
// without a rule, and rules that fail at runtime, report false so the
// subscriber is notified.
func EvaluatorComparer(ev eval.Evaluator, rules map[Strictness]string) (Comparer, error) {
	if ev == nil {
		return nil, eval.ErrNoEvaluator
	}
	compiled := make(map[Strictness]eval.CompiledRule, len(rules))
	for tag, expr := range rules {
		if tag.IsBuiltin() {
			return nil, fmt.Errorf("compare: strictness %q is built in and cannot be overridden", tag)
		}
		rule, err := ev.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compare: compile %q: %w", tag, err)
		}
		compiled[tag] = rule
	}
	return func(a, b any, s Strictness) bool {
		rule, ok := compiled[s]
		if !ok {
			return false
		}
		equal, err := eval.Bool(rule, eval.Context{
			Value:    map[string]any{"a": a, "b": b},
			Metadata: map[string]any{"strictness": string(s)},
		})
		return err == nil && equal
	}, nil
}

// Chain returns a Comparer that asks each comparer in turn and reports
// equality as soon as one does.
func Chain(comparers ...Comparer) Comparer {
	return func(a, b any, s Strictness) bool {
		for _, cmp := range comparers {
			if cmp != nil && cmp(a, b, s) {
				return true
			}
		}
		return false
	}
}
