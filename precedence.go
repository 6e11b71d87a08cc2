package cliconf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// Source identifies where a parameter value came from.
type Source int

const (
	SourceUnknown Source = iota
	SourceCommandLine
	SourceChainedContext
	SourceEnvironment
	SourceDefaultMap
	SourceDefault
)

var sourceNames = map[Source]string{
	SourceUnknown:        "UNKNOWN",
	SourceCommandLine:    "COMMANDLINE",
	SourceChainedContext: "CHAINED_CONTEXT",
	SourceEnvironment:    "ENVIRONMENT",
	SourceDefaultMap:     "DEFAULT_MAP",
	SourceDefault:        "DEFAULT",
}

func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Source) UnmarshalText(text []byte) error {
	for source, name := range sourceNames {
		if name == string(text) {
			*s = source
			return nil
		}
	}
	return fmt.Errorf("cliconf: unknown parameter source %q", text)
}

// Parameter declares one resolvable option.
type Parameter struct {
	Name    string
	EnvVar  string
	Default any
	// Group, when set, makes string values references to load from that
	// resource group.
	Group            string
	StringExceptions []string
	Required         bool
}

// Invocation is what the presentation layer knows about one command run.
type Invocation struct {
	// Explicit reports values given on the command line.
	Explicit func(name string) (any, bool)
	// Context is the namespace built from the command's config arguments, nil
	// when the command takes none.
	Context *Namespace
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
	// DefaultMap reports application provided defaults.
	DefaultMap func(name string) (any, bool)
}

// Resolved is the outcome of resolving a parameter.
type Resolved struct {
	Name   string
	Value  any
	Source Source
	Trace  Trace
}

type lookup struct {
	source Source
	find   func(p Parameter, inv Invocation) (any, bool)
}

var lookups = []lookup{
	{SourceCommandLine, func(p Parameter, inv Invocation) (any, bool) {
		if inv.Explicit == nil {
			return nil, false
		}
		return inv.Explicit(p.Name)
	}},
	{SourceChainedContext, func(p Parameter, inv Invocation) (any, bool) {
		return inv.Context.Get(p.Name)
	}},
	{SourceEnvironment, func(p Parameter, inv Invocation) (any, bool) {
		if p.EnvVar == "" {
			return nil, false
		}
		env := inv.LookupEnv
		if env == nil {
			env = os.LookupEnv
		}
		value, ok := env(p.EnvVar)
		if !ok || value == "" {
			return nil, false
		}
		return value, true
	}},
	{SourceDefaultMap, func(p Parameter, inv Invocation) (any, bool) {
		if inv.DefaultMap == nil {
			return nil, false
		}
		return inv.DefaultMap(p.Name)
	}},
	{SourceDefault, func(p Parameter, _ Invocation) (any, bool) {
		return p.Default, true
	}},
}

// Resolver picks parameter values by precedence and loads resource references.
type Resolver struct {
	loader *Loader
	logger *slog.Logger
}

// NewResolver constructs a Resolver loading references through loader.
func NewResolver(loader *Loader) *Resolver {
	r := &Resolver{loader: loader, logger: discardLogger()}
	if loader != nil {
		r.logger = loader.logger
	}
	return r
}

// Consume returns the first non-nil value among the command line, the chained
// context, the environment, the default map and the declared default.
func (r *Resolver) Consume(p Parameter, inv Invocation) (Resolved, error) {
	if p.Group == "" && inv.Context == nil {
		return Resolved{}, &UsageError{
			Parameter: p.Name,
			Reason:    "needs a resource group or a command that accepts configuration units",
		}
	}

	r.logger.Debug("consuming parameter", slog.String("name", p.Name))
	resolved := Resolved{Name: p.Name, Trace: Trace{Parameter: p.Name}}
	for _, l := range lookups {
		value, ok := l.find(p, inv)
		found := ok && value != nil
		resolved.Trace.Lookups = append(resolved.Trace.Lookups, Provenance{
			Source: l.source,
			Value:  value,
			Found:  found,
		})
		if found || l.source == SourceDefault {
			resolved.Value = value
			resolved.Source = l.source
			break
		}
	}
	return resolved, nil
}

// Cast loads string values of a grouped parameter as references until a
// non-string value, or one of StringExceptions, remains.
func (r *Resolver) Cast(ctx context.Context, p Parameter, value any) (any, error) {
	if p.Group == "" {
		return value, nil
	}
	var seen []string
	for {
		ref, ok := value.(string)
		if !ok || slices.Contains(p.StringExceptions, ref) {
			return value, nil
		}
		if slices.Contains(seen, ref) {
			return nil, &ResolutionError{
				Reference: ref,
				Group:     p.Group,
				Reason:    "reference cycle: " + strings.Join(append(seen, ref), " -> "),
			}
		}
		seen = append(seen, ref)
		if r.loader == nil {
			return nil, &UsageError{Parameter: p.Name, Reason: "resource group set but no loader configured"}
		}

		loaded, err := r.loader.LoadAttribute(ctx, []string{ref}, p.Name, WithGroup(p.Group))
		if err != nil {
			return nil, err
		}
		value = loaded
	}
}

// Resolve consumes and casts p.
func (r *Resolver) Resolve(ctx context.Context, p Parameter, inv Invocation) (Resolved, error) {
	resolved, err := r.Consume(p, inv)
	if err != nil {
		return Resolved{}, err
	}
	value, err := r.Cast(ctx, p, resolved.Value)
	if err != nil {
		return Resolved{}, err
	}
	resolved.Value = value
	if p.Required && resolved.Value == nil {
		return Resolved{}, &UsageError{Parameter: p.Name, Reason: "missing required value"}
	}
	return resolved, nil
}
