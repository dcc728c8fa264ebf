package eval

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "a == b", "/user/name", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", evalErr.Engine)
	}
	if evalErr.Pointer != "/user/name" {
		t.Fatalf("expected pointer metadata, got %q", evalErr.Pointer)
	}
	if !errors.Is(err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
	if !strings.HasPrefix(err.Error(), "eval: expr evaluator") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{Engine: "expr", Err: base}

	err := wrapEvaluationError("cel", "rule", "/a", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" || existing.Pointer != "/a" {
		t.Fatalf("missing metadata should be filled, got %+v", existing)
	}
}

func TestWrapEngineErrorKeepsPrefixedErrors(t *testing.T) {
	prefixed := errors.New("eval: already wrapped")
	if got := wrapEngineError("cel", prefixed); got != prefixed {
		t.Fatalf("expected prefixed error to pass through, got %v", got)
	}
	if got := wrapEngineError("cel", errors.New("raw")); !strings.Contains(got.Error(), "cel evaluator") {
		t.Fatalf("expected engine in message, got %v", got)
	}
	if wrapEngineError("cel", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}
