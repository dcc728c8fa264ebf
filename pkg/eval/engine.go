package eval

import (
	"fmt"
	"strings"
)

// Engine names accepted by NewEngine.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// EngineOptions are the settings every engine understands.
type EngineOptions struct {
	Cache     ProgramCache
	Functions *FunctionRegistry
}

// NewEngine returns the evaluator registered under name. An empty name
// selects expr. The js engine is only available in binaries built with the
// js_eval tag.
func NewEngine(name string, opts EngineOptions) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineExpr:
		return NewExprEvaluator(ExprWithProgramCache(opts.Cache), ExprWithFunctionRegistry(opts.Functions)), nil
	case EngineCEL:
		return NewCELEvaluator(CELWithProgramCache(opts.Cache), CELWithFunctionRegistry(opts.Functions)), nil
	case EngineJS:
		if !JSAvailable() {
			return nil, fmt.Errorf("eval: js engine requires the js_eval build tag: %w", ErrNoEvaluator)
		}
		return NewJSEvaluator(JSWithProgramCache(opts.Cache), JSWithFunctionRegistry(opts.Functions)), nil
	default:
		return nil, fmt.Errorf("eval: unknown engine %q", name)
	}
}

// Checker is implemented by engines that can type-check an expression
// against a set of variable names without running it.
type Checker interface {
	Check(expr string, vars ...string) error
}

// Check reports syntax and type errors in expr. Engines without a Checker
// fall back to Compile.
func Check(ev Evaluator, expr string, vars ...string) error {
	if ev == nil {
		return ErrNoEvaluator
	}
	if checker, ok := ev.(Checker); ok {
		return checker.Check(expr, vars...)
	}
	_, err := ev.Compile(expr)
	return err
}

// JSOption configures the JS evaluator.
type JSOption func(*jsConfig)

type jsConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// JSWithProgramCache stores compiled scripts in cache.
func JSWithProgramCache(cache ProgramCache) JSOption {
	return func(cfg *jsConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry exposes a snapshot of registry to scripts, both as
// globals and through call(name, ...args).
func JSWithFunctionRegistry(registry *FunctionRegistry) JSOption {
	return func(cfg *jsConfig) {
		cfg.registry = registry.Clone()
	}
}

func newJSConfig(opts []JSOption) jsConfig {
	var cfg jsConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
