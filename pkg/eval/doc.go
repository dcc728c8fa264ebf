// Package eval runs small expressions against values read from the store.
//
// Three engines share the Evaluator contract:
//
//   - expr (github.com/expr-lang/expr), the default engine
//   - CEL (github.com/google/cel-go)
//   - JavaScript (github.com/dop251/goja), only when built with the js_eval tag
//
// NewEngine picks one by name and Check validates an expression up front.
//
// Expressions see the evaluated value as `value`, the pointer it came from as
// `pointer`, plus `now`, `args` and `metadata`. When the value is a map its
// keys are also bound at the top level, so `count > 3` works for a value of
// {"count": 5}.
package eval
