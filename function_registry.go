package cliconf

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// Function is a host callable visible to script units as a global and to
// declarative expressions as a function of the same name.
type Function func(args ...any) (any, error)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// FunctionRegistry holds the host functions shared by every unit of a load.
// Names are case sensitive, as they are in the units that call them.
type FunctionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{funcs: make(map[string]Function)}
}

// Register adds fn under name. The name must be a valid identifier, must not
// collide with namespace metadata such as __name__, and must not be taken.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if err := checkFunctionName(name); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("cliconf: host function %s is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.funcs == nil {
		r.funcs = make(map[string]Function)
	}
	if _, taken := r.funcs[name]; taken {
		return fmt.Errorf("cliconf: host function %s is already defined", name)
	}
	r.funcs[name] = fn
	return nil
}

func checkFunctionName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("cliconf: host function name is empty")
	case isDunder(name):
		return fmt.Errorf("cliconf: host function name %s is reserved", name)
	case !identifierPattern.MatchString(name):
		return fmt.Errorf("cliconf: host function name %q is not an identifier", name)
	}
	return nil
}

// Lookup returns the function registered under name.
func (r *FunctionRegistry) Lookup(name string) (Function, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Call invokes name with args, wrapping any error with the function name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("cliconf: undefined host function %s", name)
	}
	out, err := fn(args...)
	if err != nil {
		return nil, fmt.Errorf("cliconf: host function %s: %w", name, err)
	}
	return out, nil
}

// Names lists the registered names in lexical order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len reports how many functions are registered.
func (r *FunctionRegistry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}

// Clone copies the registry so later registrations do not leak between loaders.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	clone := NewFunctionRegistry()
	clone.merge(r, true)
	return clone
}

// merge copies every entry of other into r. Existing names are kept unless
// replace is set.
func (r *FunctionRegistry) merge(other *FunctionRegistry, replace bool) {
	if other == nil || other == r {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, fn := range other.funcs {
		if _, taken := r.funcs[name]; taken && !replace {
			continue
		}
		r.funcs[name] = fn
	}
}

// bind returns a closure that dispatches to name at call time.
func (r *FunctionRegistry) bind(name string) Function {
	return func(arguments ...any) (any, error) {
		return r.Call(name, arguments...)
	}
}

// WithFunctionRegistry exposes the functions of registry to every unit and
// expression. Functions added with WithFunction keep their definition.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *loaderConfig) {
		if registry == nil {
			return
		}
		if cfg.functions == nil {
			cfg.functions = registry.Clone()
			return
		}
		cfg.functions.merge(registry, false)
	}
}

// WithFunction registers fn under name for the loader. Invalid or duplicate
// names are reported through the loader logger and otherwise ignored.
func WithFunction(name string, fn Function) Option {
	return func(cfg *loaderConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		if err := cfg.functions.Register(name, fn); err != nil {
			cfg.functionErrs = append(cfg.functionErrs, err)
		}
	}
}
