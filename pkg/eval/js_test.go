//go:build js_eval

package eval

import (
	"strings"
	"testing"
)

func TestJSEvaluatorBindsContext(t *testing.T) {
	ev := NewJSEvaluator(JSWithProgramCache(NewMemoryCache()))
	out, err := ev.Evaluate(Context{
		Value:   map[string]any{"count": 3},
		Pointer: "/counter",
	}, "count * 2 + (pointer === '/counter' ? 1 : 0)")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out != int64(7) {
		t.Fatalf("expected 7, got %#v", out)
	}
}

func TestJSEvaluatorObjectLiteral(t *testing.T) {
	out, err := NewJSEvaluator().Evaluate(Context{Value: "x"}, "{v: value}")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	m, ok := out.(map[string]any)
	if !ok || m["v"] != "x" {
		t.Fatalf("expected object with v=x, got %#v", out)
	}
}

func TestJSEvaluatorCallsRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("upper", func(args ...any) (any, error) {
		return strings.ToUpper(args[0].(string)), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	ev, err := NewEngine(EngineJS, EngineOptions{Functions: registry})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	rule, err := ev.Compile(`upper(value) + call("upper", "b")`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out, err := rule.Evaluate(Context{Value: "a"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out != "AB" {
		t.Fatalf("expected AB, got %#v", out)
	}
}

func TestJSEvaluatorReportsErrors(t *testing.T) {
	ev := NewJSEvaluator()
	if _, err := ev.Compile("value +"); err == nil {
		t.Fatalf("expected syntax error")
	}
	if _, err := ev.Evaluate(Context{}, "missing.field"); err == nil {
		t.Fatalf("expected reference error")
	}
	ok, err := Bool(mustCompile(t, ev, "value > 1"), Context{Value: 2})
	if err != nil || !ok {
		t.Fatalf("expected true, got %v (%v)", ok, err)
	}
}

func mustCompile(t *testing.T, ev Evaluator, expr string) CompiledRule {
	t.Helper()
	rule, err := ev.Compile(expr)
	if err != nil {
		t.Fatalf("compile %q: %v", expr, err)
	}
	return rule
}
