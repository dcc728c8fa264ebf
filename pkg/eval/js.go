//go:build js_eval

package eval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	jsConfig
}

// NewJSEvaluator returns an Evaluator running expressions in goja. Each
// evaluation gets a fresh runtime; compiled programs are shared.
func NewJSEvaluator(opts ...JSOption) Evaluator {
	return &jsEvaluator{jsConfig: newJSConfig(opts)}
}

// JSAvailable reports whether the binary was built with the js_eval tag.
func JSAvailable() bool {
	return true
}

func (e *jsEvaluator) Evaluate(ctx Context, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, wrapEngineError(EngineJS, errors.New("expression must not be empty"))
	}
	program, err := e.program(expression)
	if err != nil {
		return nil, wrapEvaluationError(EngineJS, expression, "", err)
	}
	return &jsRule{evaluator: e, expression: expression, program: program}, nil
}

// Check compiles expression; scripts resolve variables at run time.
func (e *jsEvaluator) Check(expression string, _ ...string) error {
	_, err := e.Compile(expression)
	return err
}

func (e *jsEvaluator) program(expression string) (*goja.Program, error) {
	key := EngineJS + "|" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	// An arrow function body lets object literals and comma expressions
	// parse as a single value.
	program, err := goja.Compile("rule.js", "(() => ("+expression+"))()", true)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *jsEvaluator) bind(vm *goja.Runtime, ctx Context) error {
	for name, value := range ctx.bindings() {
		if err := vm.Set(name, value); err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
	}
	if e.registry == nil {
		return nil
	}
	call := func(name string, args ...any) (any, error) {
		return e.registry.Call(name, args...)
	}
	if err := vm.Set("call", call); err != nil {
		return fmt.Errorf("bind call: %w", err)
	}
	for _, name := range e.registry.Names() {
		fn := name
		if err := vm.Set(fn, func(args ...any) (any, error) { return call(fn, args...) }); err != nil {
			return fmt.Errorf("bind %s: %w", fn, err)
		}
	}
	return nil
}

type jsRule struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (r *jsRule) Evaluate(ctx Context) (any, error) {
	ctx = ctx.withDefaults()
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	if err := r.evaluator.bind(vm, ctx); err != nil {
		return nil, wrapEvaluationError(EngineJS, r.expression, ctx.label(), err)
	}
	out, err := vm.RunProgram(r.program)
	if err != nil {
		return nil, wrapEvaluationError(EngineJS, r.expression, ctx.label(), err)
	}
	return out.Export(), nil
}
