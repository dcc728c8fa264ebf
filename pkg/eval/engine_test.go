package eval

import (
	"errors"
	"strings"
	"testing"
)

func TestNewEngineSelectsByName(t *testing.T) {
	cases := map[string]string{
		"":      EngineExpr,
		"expr":  EngineExpr,
		" CEL ": EngineCEL,
		"cel":   EngineCEL,
	}
	for name, want := range cases {
		ev, err := NewEngine(name, EngineOptions{})
		if err != nil {
			t.Fatalf("engine %q: %v", name, err)
		}
		if got := EngineName(ev); got != want {
			t.Fatalf("engine %q: expected %s, got %s", name, want, got)
		}
	}
	if _, err := NewEngine("lua", EngineOptions{}); err == nil {
		t.Fatalf("expected error for unknown engine")
	}
}

func TestNewEngineJSFollowsBuildTag(t *testing.T) {
	ev, err := NewEngine(EngineJS, EngineOptions{})
	if JSAvailable() {
		if err != nil || EngineName(ev) != EngineJS {
			t.Fatalf("expected js engine, got %v (%v)", ev, err)
		}
		return
	}
	if !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator without the js_eval tag, got %v", err)
	}
}

func TestNewEngineSharesFunctions(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("shout", func(args ...any) (any, error) {
		return strings.ToUpper(args[0].(string)) + "!", nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	exprs := map[string]string{
		EngineExpr: `shout(value)`,
		EngineCEL:  `call("shout", [value])`,
	}
	for engine, expr := range exprs {
		ev, err := NewEngine(engine, EngineOptions{Cache: NewMemoryCache(), Functions: registry})
		if err != nil {
			t.Fatalf("%s: %v", engine, err)
		}
		out, err := ev.Evaluate(Context{Value: "hi"}, expr)
		if err != nil {
			t.Fatalf("%s: evaluate: %v", engine, err)
		}
		if out != "HI!" {
			t.Fatalf("%s: expected HI!, got %#v", engine, out)
		}
	}
}

func TestCheckDeclaresVariables(t *testing.T) {
	cel := NewCELEvaluator()
	if err := Check(cel, "a.size() == b.size()", "a", "b"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := Check(cel, "a == c", "a", "b"); err == nil {
		t.Fatalf("expected undeclared reference error")
	}
	if err := Check(NewExprEvaluator(), "a ==", "a", "b"); err == nil {
		t.Fatalf("expected expr syntax error")
	}
	if err := Check(nil, "true"); !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator, got %v", err)
	}
}
