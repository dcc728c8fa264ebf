package eval

import (
	"errors"
	"fmt"
	"strings"
)

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine  string
	Expr    string
	Pointer string
	Err     error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("eval: %s evaluator %s pointer=%s: %v", e.Engine, describeExpression(e.Expr), e.Pointer, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEngineError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}
	if strings.HasPrefix(err.Error(), "eval:") {
		return err
	}
	return fmt.Errorf("eval: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, pointer string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Pointer == "" {
			evalErr.Pointer = pointer
		}
		return evalErr
	}
	return &EvaluationError{
		Engine:  engine,
		Expr:    expr,
		Pointer: pointer,
		Err:     err,
	}
}
