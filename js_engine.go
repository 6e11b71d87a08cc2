package cliconf

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"
)

// JSEngineOption configures the JavaScript engine.
type JSEngineOption func(*jsEngine)

// JSWithProgramCache caches compiled units keyed by path and content digest.
func JSWithProgramCache(cache ProgramCache) JSEngineOption {
	return func(e *jsEngine) {
		e.cache = cache
	}
}

// JSWithFunctionRegistry exposes registered functions as globals, plus call(name, ...args).
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEngineOption {
	return func(e *jsEngine) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type jsEngine struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewJSEngine constructs the goja backed engine for .js units.
//
// Units of one load chain share a single runtime so closures defined by an
// earlier unit keep working in later ones. Top level var and function
// declarations, and assignments to undeclared names, become namespace
// variables; let, const and class declarations stay private to the unit, so
// two units may declare the same name and one unit may run twice in a chain.
// A leading "use strict" directive has no effect.
func NewJSEngine(opts ...JSEngineOption) Engine {
	e := &jsEngine{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *jsEngine) Name() string { return "js" }

func (e *jsEngine) Extensions() []string { return []string{".js"} }

func (e *jsEngine) Exec(ctx context.Context, b *Binding, src []byte) error {
	program, err := e.loadOrCompile(b.Unit.Path, src)
	if err != nil {
		return err
	}

	rt := e.runtime(b)
	rt.enter(b)

	stop := context.AfterFunc(ctx, func() {
		rt.vm.Interrupt(context.Cause(ctx))
	})
	defer stop()

	if _, err := rt.vm.RunProgram(program); err != nil {
		rt.vm.ClearInterrupt()
		return err
	}
	rt.harvest(b.Vars)
	return nil
}

func (e *jsEngine) loadOrCompile(path string, src []byte) (*goja.Program, error) {
	key := sourceKey("js", path, src)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := compileUnit(path, string(src))
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

// compileUnit runs src inside a block so its let, const and class declarations
// get a fresh lexical scope on every run. goja keeps function declarations in a
// block local to it, so the top level ones are copied onto the global object
// on entry and again on exit to pick up reassignments.
func compileUnit(path, src string) (*goja.Program, error) {
	parsed, err := goja.Parse(path, src)
	if err != nil {
		return nil, err
	}
	var exports strings.Builder
	for _, stmt := range parsed.Body {
		decl, ok := stmt.(*ast.FunctionDeclaration)
		if !ok || decl.Function.Name == nil {
			continue
		}
		name := decl.Function.Name.Name.String()
		exports.WriteString("globalThis." + name + " = " + name + ";")
	}
	wrapped := "{" + exports.String() + src + "\n;" + exports.String() + "}"
	return goja.Compile(path, wrapped, false)
}

type jsChainKey struct{}

type jsRuntime struct {
	vm       *goja.Runtime
	builtins map[string]struct{}
	logger   *slog.Logger
	unit     Unit
	last     *Namespace
}

func (e *jsEngine) runtime(b *Binding) *jsRuntime {
	if value, ok := b.ChainValue(jsChainKey{}); ok {
		if rt, ok := value.(*jsRuntime); ok {
			return rt
		}
	}

	rt := &jsRuntime{
		vm:       goja.New(),
		builtins: make(map[string]struct{}),
		logger:   b.logger(),
	}
	rt.define("console", rt.console())
	if e.registry != nil {
		registry := e.registry
		rt.define("call", func(name string, arguments ...any) (any, error) {
			return registry.Call(name, arguments...)
		})
		for _, name := range registry.Names() {
			rt.define(name, registry.bind(name))
		}
	}
	b.SetChainValue(jsChainKey{}, rt)
	return rt
}

func (rt *jsRuntime) define(name string, value any) {
	rt.vm.Set(name, value)
	rt.builtins[name] = struct{}{}
}

// enter prepares the global object for the unit bound to b. When the previous
// unit ran in this runtime the globals already hold the inherited values, so
// only values coming from another engine or the initial context are pushed.
func (rt *jsRuntime) enter(b *Binding) {
	global := rt.vm.GlobalObject()
	for _, key := range global.Keys() {
		if _, builtin := rt.builtins[key]; builtin || !strings.HasPrefix(key, "__") {
			continue
		}
		if err := global.Delete(key); err != nil || global.Get(key) != nil {
			_ = global.Set(key, goja.Undefined())
		}
	}

	if rt.last == nil || rt.last != b.From {
		for _, key := range b.Vars.AllKeys() {
			value, _ := b.Vars.Get(key)
			rt.vm.Set(key, value)
		}
	}

	rt.unit = b.Unit
	rt.vm.Set(nameKey, b.Unit.Name)
	rt.vm.Set(fileKey, b.Unit.Path)
}

func (rt *jsRuntime) harvest(vars *Namespace) {
	global := rt.vm.GlobalObject()
	for _, key := range global.Keys() {
		if _, builtin := rt.builtins[key]; builtin {
			continue
		}
		value := global.Get(key)
		if value == nil || (isDunder(key) && goja.IsUndefined(value)) {
			continue
		}
		vars.Set(key, value.Export())
	}
	rt.last = vars
}

func (rt *jsRuntime) console() *goja.Object {
	console := rt.vm.NewObject()
	levels := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"log":   slog.LevelInfo,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, level := range levels {
		level := level
		_ = console.Set(name, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, 0, len(call.Arguments))
			for _, arg := range call.Arguments {
				parts = append(parts, arg.String())
			}
			rt.logger.Log(context.Background(), level, strings.Join(parts, " "),
				slog.String("unit", rt.unit.Path))
			return goja.Undefined()
		})
	}
	return console
}
