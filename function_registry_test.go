package cliconf

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func echo(args ...any) (any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return args[0], nil
}

func TestFunctionRegistryRejectsBadNames(t *testing.T) {
	registry := NewFunctionRegistry()
	for _, name := range []string{"", "__name__", "has-dash", "1st", "a.b"} {
		if err := registry.Register(name, echo); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
	if err := registry.Register("ok", nil); err == nil {
		t.Fatalf("expected nil function to be rejected")
	}
	if registry.Len() != 0 {
		t.Fatalf("expected empty registry, got %v", registry.Names())
	}
}

func TestFunctionRegistryIsCaseSensitive(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("toUpper", echo); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("toupper", echo); err != nil {
		t.Fatalf("register distinct case: %v", err)
	}
	if err := registry.Register("toUpper", echo); err == nil {
		t.Fatalf("expected duplicate to be rejected")
	}
	names := registry.Names()
	if len(names) != 2 || names[0] != "toUpper" || names[1] != "toupper" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestFunctionRegistryCallAnnotatesErrors(t *testing.T) {
	boom := errors.New("boom")
	registry := NewFunctionRegistry()
	_ = registry.Register("fail", func(...any) (any, error) { return nil, boom })

	_, err := registry.Call("fail")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if err.Error() != "cliconf: host function fail: boom" {
		t.Fatalf("expected function name in error, got %q", err)
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected undefined function error")
	}

	var nilRegistry *FunctionRegistry
	if _, err := nilRegistry.Call("fail"); err == nil {
		t.Fatalf("expected error from nil registry")
	}
}

func TestFunctionRegistryCloneIsIndependent(t *testing.T) {
	registry := NewFunctionRegistry()
	_ = registry.Register("one", echo)
	clone := registry.Clone()
	_ = registry.Register("two", echo)

	if clone.Len() != 1 {
		t.Fatalf("expected clone to keep one function, got %v", clone.Names())
	}
	if _, ok := clone.Lookup("two"); ok {
		t.Fatalf("expected later registration not to reach clone")
	}
}

func TestWithFunctionRegistryKeepsExplicitFunctions(t *testing.T) {
	shared := NewFunctionRegistry()
	_ = shared.Register("greet", func(...any) (any, error) { return "shared", nil })
	_ = shared.Register("extra", echo)

	cfg := applyOptions([]Option{
		WithFunction("greet", func(...any) (any, error) { return "explicit", nil }),
		WithFunctionRegistry(shared),
	})

	got, err := cfg.functions.Call("greet")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "explicit" {
		t.Fatalf("expected explicit function to win, got %v", got)
	}
	if _, ok := cfg.functions.Lookup("extra"); !ok {
		t.Fatalf("expected shared functions merged")
	}
}

func TestLoaderLogsRejectedFunctions(t *testing.T) {
	var buf bytes.Buffer
	loader := newTestLoader(
		WithLogHandler(slog.NewTextHandler(&buf, nil)),
		WithFunction("not-valid", echo),
	)
	if _, err := loader.Load(context.Background(), []string{unitPath("basic.js")}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.Contains(buf.String(), "host function ignored") {
		t.Fatalf("expected warning for rejected function, got %q", buf.String())
	}
}
