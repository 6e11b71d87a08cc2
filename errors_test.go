package cliconf

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "port + missing", "configs/base.yaml", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", evalErr.Engine)
	}
	if evalErr.Expr != "port + missing" {
		t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
	}
	if evalErr.Unit != "configs/base.yaml" {
		t.Fatalf("expected unit metadata, got %q", evalErr.Unit)
	}
	if !errors.Is(evalErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapEvaluationError("cel", "rule", "b.yaml", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if existing.Unit != "b.yaml" {
		t.Fatalf("unit should be filled, got %q", existing.Unit)
	}
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{
			name:     "resolution",
			err:      &ResolutionError{Reference: "nope", Group: "app.config"},
			sentinel: ErrUnresolvable,
			contains: "`nope'",
		},
		{
			name:     "attribute",
			err:      &AttributeNotFoundError{Attr: "x", Files: []string{"a.js", "b.js"}},
			sentinel: ErrAttributeNotFound,
			contains: "a.js, b.js",
		},
		{
			name:     "usage",
			err:      &UsageError{Parameter: "model", Reason: "no group"},
			sentinel: ErrUsage,
			contains: "\"model\"",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.sentinel) {
				t.Fatalf("expected %T to match sentinel", tc.err)
			}
			if !strings.Contains(tc.err.Error(), tc.contains) {
				t.Fatalf("expected %q in %q", tc.contains, tc.err.Error())
			}
			if errors.Is(tc.err, errors.New("other")) {
				t.Fatalf("unexpected match against unrelated error")
			}
		})
	}

	if errors.Is(&UsageError{}, ErrUnresolvable) {
		t.Fatalf("usage errors must be distinguishable from data errors")
	}
}
