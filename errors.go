package cliconf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolvable marks references that match no file, registered name, or module.
	ErrUnresolvable = errors.New("cliconf: unresolvable reference")
	// ErrAttributeNotFound marks attribute lookups that failed after a full chain load.
	ErrAttributeNotFound = errors.New("cliconf: attribute not found")
	// ErrUsage marks programming mistakes in how parameters are declared or consumed.
	ErrUsage = errors.New("cliconf: usage error")
)

// ResolutionError reports the exact input that could not be turned into a unit.
type ResolutionError struct {
	Reference string
	Group     string
	Reason    string
}

func (e *ResolutionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	reason := e.Reason
	if reason == "" {
		reason = "not a file, registered name, or known module"
	}
	if e.Group != "" {
		return fmt.Sprintf("cliconf: cannot resolve `%s' (group %q): %s", e.Reference, e.Group, reason)
	}
	return fmt.Sprintf("cliconf: cannot resolve `%s': %s", e.Reference, reason)
}

// Is lets errors.Is match ErrUnresolvable.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrUnresolvable
}

// AttributeNotFoundError reports a missing attribute and every file searched for it.
type AttributeNotFoundError struct {
	Attr  string
	Files []string
}

func (e *AttributeNotFoundError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("cliconf: cannot find attribute `%s' in any of: %s", e.Attr, strings.Join(e.Files, ", "))
}

// Is lets errors.Is match ErrAttributeNotFound.
func (e *AttributeNotFoundError) Is(target error) bool {
	return target == ErrAttributeNotFound
}

// UsageError flags a parameter that was declared in a way that cannot work.
// It is raised on first consumption, never at construction.
type UsageError struct {
	Parameter string
	Reason    string
}

func (e *UsageError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("cliconf: parameter %q: %s", e.Parameter, e.Reason)
}

// Is lets errors.Is match ErrUsage.
func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

// EvaluationError captures expression metadata alongside the originating error.
// Declarative units use it for `!expr` and `!cel` values; script units never
// wrap their errors.
type EvaluationError struct {
	Engine string
	Expr   string
	Unit   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("cliconf: %s evaluator %s unit=%s: %v", e.Engine, describeExpression(e.Expr), e.Unit, e.Err)
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

func wrapEvaluationError(engine, expr, unit string, err error) error {
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
		if evalErr.Unit == "" {
			evalErr.Unit = unit
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Unit:   unit,
		Err:    err,
	}
}
