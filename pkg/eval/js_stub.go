//go:build !js_eval

package eval

// NewJSEvaluator returns nil: the js engine is compiled in only with the
// js_eval build tag. Use NewEngine to get an error instead.
func NewJSEvaluator(...JSOption) Evaluator {
	return nil
}

// JSAvailable reports whether the binary was built with the js_eval tag.
func JSAvailable() bool {
	return false
}
