package eval

import (
	"fmt"
	"time"
)

// Run evaluates expr with ev, reporting timing and errors to logger. A nil
// evaluator falls back to the expr engine and a nil logger discards events.
func Run(ev Evaluator, ctx Context, expr string, logger Logger) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("eval: expression must not be empty")
	}
	if ev == nil {
		ev = NewExprEvaluator()
	}
	if logger == nil {
		logger = noopLogger{}
	}
	ctx = ctx.withDefaults()
	engine := EngineName(ev)
	start := time.Now()
	value, err := ev.Evaluate(ctx, expr)
	err = wrapEvaluationError(engine, expr, ctx.label(), err)
	logger.LogEvaluation(LogEvent{
		Engine:   engine,
		Expr:     expr,
		Pointer:  ctx.label(),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// EngineName reports the engine backing ev.
func EngineName(ev Evaluator) string {
	if ev == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", ev) {
	case "*eval.exprEvaluator":
		return EngineExpr
	case "*eval.celEvaluator":
		return EngineCEL
	case "*eval.jsEvaluator":
		return EngineJS
	default:
		return "custom"
	}
}

// Bool evaluates a compiled rule and requires a boolean result.
func Bool(rule CompiledRule, ctx Context) (bool, error) {
	out, err := rule.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("eval: expected bool result, got %T", out)
	}
	return result, nil
}
