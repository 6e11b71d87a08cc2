package cliconf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-cliconf/pkg/activity"
)

const (
	// FileBinding is the binding name given to units loaded from a path or a
	// module name.
	FileBinding = "user_config"
	// InitialBinding names the namespace seeded from the caller's context.
	InitialBinding = "initial_context"
)

// Unit is one resolved configuration file ready to be evaluated.
type Unit struct {
	Path string
	Name string
	Attr string
}

// Option configures a Loader.
type Option func(*loaderConfig)

type loaderConfig struct {
	registry      Registry
	roots         []string
	engines       []Engine
	programCache  ProgramCache
	functions     *FunctionRegistry
	functionErrs  []error
	observer      LoadObserver
	logger        *slog.Logger
	arena         *Arena
	activityHooks activity.Hooks
	activity      activity.Config
}

func applyOptions(opts []Option) loaderConfig {
	cfg := loaderConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithRegistry sets the directory of named resources consulted by Resolve.
func WithRegistry(registry Registry) Option {
	return func(cfg *loaderConfig) {
		cfg.registry = registry
	}
}

// WithModuleRoots replaces the module search roots. The default is
// DefaultModuleRoots().
func WithModuleRoots(roots ...string) Option {
	return func(cfg *loaderConfig) {
		cfg.roots = append([]string{}, roots...)
	}
}

// WithArena retains namespaces in arena instead of DefaultArena.
func WithArena(arena *Arena) Option {
	return func(cfg *loaderConfig) {
		cfg.arena = arena
	}
}

// WithActivityHooks emits a config.unit.loaded event per evaluated unit.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := hooks.Clone()
	return func(cfg *loaderConfig) {
		cfg.activityHooks = normalized
		cfg.activity.Enabled = len(normalized) > 0
	}
}

// WithActivityConfig overrides the emitter channel and actor.
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *loaderConfig) {
		enabled := cfg.activity.Enabled
		cfg.activity = config
		if !config.Enabled {
			cfg.activity.Enabled = enabled
		}
	}
}

// Loader resolves references and evaluates them as a chain of units.
type Loader struct {
	registry   Registry
	finder     *ModuleFinder
	engines    map[string]Engine
	extensions []string
	observer   LoadObserver
	logger     *slog.Logger
	arena      *Arena
	emitter    *activity.Emitter
}

// New constructs a Loader. The JavaScript and YAML engines are registered
// unless an engine passed through WithEngine claims the same extension.
func New(opts ...Option) *Loader {
	cfg := applyOptions(opts)

	if cfg.logger == nil {
		cfg.logger = discardLogger()
	}
	if cfg.observer == nil {
		cfg.observer = noopLoadObserver{}
	}
	if cfg.arena == nil {
		cfg.arena = DefaultArena
	}
	if cfg.roots == nil {
		cfg.roots = DefaultModuleRoots()
	}
	for _, err := range cfg.functionErrs {
		cfg.logger.Warn("host function ignored", "error", err)
	}

	engines := append(defaultEngines(cfg), cfg.engines...)
	l := &Loader{
		registry: cfg.registry,
		engines:  make(map[string]Engine),
		observer: cfg.observer,
		logger:   cfg.logger,
		arena:    cfg.arena,
		emitter:  activity.NewEmitter(cfg.activityHooks, cfg.activity),
	}
	for _, engine := range engines {
		for _, ext := range engine.Extensions() {
			ext = strings.ToLower(ext)
			if _, seen := l.engines[ext]; !seen {
				l.extensions = append(l.extensions, ext)
			}
			l.engines[ext] = engine
		}
	}
	l.finder = NewModuleFinder(cfg.roots, l.extensions)
	return l
}

func defaultEngines(cfg loaderConfig) []Engine {
	return []Engine{
		NewJSEngine(
			JSWithProgramCache(cfg.programCache),
			JSWithFunctionRegistry(cfg.functions),
		),
		NewYAMLEngine(
			YAMLWithEvaluator(exprTag, NewExprEvaluator(
				ExprWithProgramCache(cfg.programCache),
				ExprWithFunctionRegistry(cfg.functions),
			)),
			YAMLWithEvaluator(celTag, NewCELEvaluator(
				CELWithProgramCache(cfg.programCache),
				CELWithFunctionRegistry(cfg.functions),
			)),
		),
	}
}

// Registry returns the registry consulted by Resolve, possibly nil.
func (l *Loader) Registry() Registry {
	return l.registry
}

// Finder returns the module finder used for dotted module names.
func (l *Loader) Finder() *ModuleFinder {
	return l.finder
}

// Arena returns the arena retaining every namespace this loader creates.
func (l *Loader) Arena() *Arena {
	return l.arena
}

// Extensions lists the unit extensions with a registered engine.
func (l *Loader) Extensions() []string {
	return append([]string(nil), l.extensions...)
}

// Resolve maps each reference to a unit, in input order.
//
// A reference is an existing file, a name registered under group, or a dotted
// module name, optionally followed by ":attr". Without a suffix the unit's
// Attr is defaultAttr.
func (l *Loader) Resolve(refs []string, group, defaultAttr string) ([]Unit, error) {
	var entries map[string]Entry
	if group != "" && l.registry != nil {
		list, err := l.registry.Entries(group)
		if err != nil {
			return nil, fmt.Errorf("cliconf: list group %q: %w", group, err)
		}
		entries = make(map[string]Entry, len(list))
		for _, entry := range list {
			entries[entry.Name] = entry
		}
	}

	units := make([]Unit, 0, len(refs))
	for _, ref := range refs {
		path, attr := splitReference(ref, defaultAttr)
		unit := Unit{Path: path, Name: FileBinding, Attr: attr}

		switch entry, registered := entries[path]; {
		case isRegularFile(path):
		case registered:
			located, ok := l.finder.Locate(entry.Module)
			if !ok {
				return nil, &ResolutionError{
					Reference: ref,
					Group:     group,
					Reason:    fmt.Sprintf("registered entry points to module `%s', which is not an existing file", entry.Module),
				}
			}
			unit.Path = located
			unit.Name = entry.Module
			if entry.Attr != "" {
				unit.Attr = entry.Attr
			}
		default:
			located, ok := l.finder.Locate(path)
			if !ok {
				return nil, &ResolutionError{Reference: ref, Group: group}
			}
			unit.Path = located
		}

		if _, err := l.engineFor(unit.Path); err != nil {
			return nil, &ResolutionError{Reference: ref, Group: group, Reason: err.Error()}
		}
		units = append(units, unit)
	}
	return units, nil
}

func splitReference(ref, defaultAttr string) (string, string) {
	i := strings.LastIndex(ref, ":")
	if i < 0 {
		return ref, defaultAttr
	}
	path, attr := ref[:i], ref[i+1:]
	if attr == "" {
		attr = defaultAttr
	}
	return path, attr
}

func (l *Loader) engineFor(path string) (Engine, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if engine, ok := l.engines[ext]; ok {
		return engine, nil
	}
	return nil, fmt.Errorf("no engine registered for %q units (have %s)", ext, strings.Join(l.extensions, ", "))
}

// LoadOption tunes a single Load or LoadAttribute call.
type LoadOption func(*loadConfig)

type loadConfig struct {
	group   string
	initial map[string]any
}

// WithGroup resolves registered names under group.
func WithGroup(group string) LoadOption {
	return func(cfg *loadConfig) {
		cfg.group = group
	}
}

// WithInitialContext seeds the chain with values.
func WithInitialContext(values map[string]any) LoadOption {
	return func(cfg *loadConfig) {
		cfg.initial = values
	}
}

func applyLoadOptions(opts []LoadOption) loadConfig {
	cfg := loadConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Load evaluates refs in order and returns the final namespace. Each unit sees
// every non-dunder variable left by the previous one. With no refs the result
// is the initial context.
func (l *Loader) Load(ctx context.Context, refs []string, opts ...LoadOption) (*Namespace, error) {
	cfg := applyLoadOptions(opts)
	units, err := l.Resolve(refs, cfg.group, "")
	if err != nil {
		return nil, err
	}
	return l.run(ctx, units, cfg.initial)
}

// LoadAttribute evaluates refs like Load and returns the variable named by the
// last unit's attribute, attr unless the reference overrides it.
func (l *Loader) LoadAttribute(ctx context.Context, refs []string, attr string, opts ...LoadOption) (any, error) {
	cfg := applyLoadOptions(opts)
	units, err := l.Resolve(refs, cfg.group, attr)
	if err != nil {
		return nil, err
	}
	ns, err := l.run(ctx, units, cfg.initial)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return ns, nil
	}

	target := units[len(units)-1].Attr
	if target == "" {
		return ns, nil
	}
	value, ok := ns.Get(target)
	if !ok {
		files := make([]string, 0, len(units))
		for _, unit := range units {
			files = append(files, unit.Path)
		}
		return nil, &AttributeNotFoundError{Attr: target, Files: files}
	}
	return value, nil
}

func (l *Loader) run(ctx context.Context, units []Unit, initial map[string]any) (*Namespace, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	running := NewNamespace(InitialBinding)
	keys := make([]string, 0, len(initial))
	for key := range initial {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		running.Set(key, initial[key])
	}
	l.arena.Retain(running)

	chain := &chainState{}
	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		engine, err := l.engineFor(unit.Path)
		if err != nil {
			return nil, &ResolutionError{Reference: unit.Path, Reason: err.Error()}
		}
		src, err := os.ReadFile(unit.Path)
		if err != nil {
			return nil, fmt.Errorf("cliconf: read unit: %w", err)
		}

		l.logger.Debug("loading configuration unit", slog.String("path", unit.Path), slog.String("engine", engine.Name()))

		next := NewNamespace(unit.Name)
		next.File = unit.Path
		running.Delete(nameKey)
		running.Delete(fileKey)
		next.inherit(running)

		binding := &Binding{
			Unit:   unit,
			Vars:   next,
			From:   running,
			Logger: l.logger,
			chain:  chain,
		}
		l.arena.Retain(next)
		started := time.Now()
		err = engine.Exec(ctx, binding, src)
		l.observe(ctx, engine, unit, next, time.Since(started), err)
		if err != nil {
			return nil, err
		}
		running = next
	}
	return running, nil
}

func (l *Loader) observe(ctx context.Context, engine Engine, unit Unit, ns *Namespace, elapsed time.Duration, err error) {
	l.observer.ObserveUnit(UnitEvent{
		Engine:    engine.Name(),
		Unit:      unit,
		Namespace: ns.ID,
		Duration:  elapsed,
		Err:       err,
	})
	if err != nil || !l.emitter.Enabled() {
		return
	}
	event := activity.BuildUnitLoadedEvent(activity.UnitEventInput{
		Path:        unit.Path,
		Binding:     unit.Name,
		Engine:      engine.Name(),
		NamespaceID: ns.ID,
		Duration:    elapsed,
	})
	if emitErr := l.emitter.Emit(ctx, event); emitErr != nil {
		l.logger.Warn("activity hook failed", slog.String("unit", unit.Path), slog.Any("error", emitErr))
	}
}

// ResourceKeys lists the names registered under group, sorted and without
// duplicates. Names starting with one of exclude or strip are dropped.
func (l *Loader) ResourceKeys(group string, exclude, strip []string) ([]string, error) {
	if l.registry == nil {
		return nil, nil
	}
	entries, err := l.registry.Entries(group)
	if err != nil {
		return nil, fmt.Errorf("cliconf: list group %q: %w", group, err)
	}
	seen := make(map[string]struct{}, len(entries))
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if hasAnyPrefix(strings.TrimSpace(entry.Name), exclude) || hasAnyPrefix(entry.Name, strip) {
			continue
		}
		if _, dup := seen[entry.Name]; dup {
			continue
		}
		seen[entry.Name] = struct{}{}
		keys = append(keys, entry.Name)
	}
	slices.Sort(keys)
	return keys, nil
}

// Entry returns the last entry registered as name under group.
func (l *Loader) Entry(group, name string) (Entry, bool, error) {
	if l.registry == nil {
		return Entry{}, false, nil
	}
	entries, err := l.registry.Entries(group)
	if err != nil {
		return Entry{}, false, fmt.Errorf("cliconf: list group %q: %w", group, err)
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Name == name {
			return entries[i], true, nil
		}
	}
	return Entry{}, false, nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
