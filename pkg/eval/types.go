package eval

import (
	"errors"
	"time"
)

// ErrNoEvaluator indicates that no engine is available.
var ErrNoEvaluator = errors.New("eval: evaluator not configured")

// Context carries inputs needed when evaluating an expression.
type Context struct {
	Value    any
	Pointer  string
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx Context) withDefaults() Context {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx Context) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

func (ctx Context) label() string {
	if ctx.Pointer != "" {
		return ctx.Pointer
	}
	return "unknown"
}

// bindings returns the variables exposed to expressions. Map keys of the
// value are flattened first so the reserved names always win.
func (ctx Context) bindings() map[string]any {
	env := map[string]any{}
	if m, ok := ctx.Value.(map[string]any); ok {
		for key, value := range m {
			env[key] = value
		}
	}
	env["value"] = ctx.Value
	env["pointer"] = ctx.Pointer
	env["now"] = ctx.timestamp()
	env["args"] = ctx.Args
	env["metadata"] = ctx.Metadata
	return env
}

// Evaluator executes expressions against a context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx Context) (any, error)
}

// ProgramCache stores compiled programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}
