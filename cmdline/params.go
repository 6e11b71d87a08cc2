package cmdline

import (
	"fmt"
	"log/slog"
	"slices"

	cliconf "github.com/goliatone/go-cliconf"
	"github.com/goliatone/go-cliconf/internal/hydrate"
)

// Params holds the resolved options of one command run, in declaration order.
type Params struct {
	command  string
	order    []string
	resolved map[string]cliconf.Resolved
	// Context is the namespace built from the CONFIG arguments. It is nil for
	// commands that take none.
	Context *cliconf.Namespace
}

func newParams(command string) *Params {
	return &Params{command: command, resolved: make(map[string]cliconf.Resolved)}
}

func (p *Params) add(r cliconf.Resolved) {
	if _, ok := p.resolved[r.Name]; !ok {
		p.order = append(p.order, r.Name)
	}
	p.resolved[r.Name] = r
}

// Command is the path of the command the values were resolved for.
func (p *Params) Command() string {
	return p.command
}

// Names lists parameter names in declaration order.
func (p *Params) Names() []string {
	return slices.Clone(p.order)
}

// Get returns the value of name, nil when it is unknown.
func (p *Params) Get(name string) any {
	return p.resolved[name].Value
}

// Resolved returns the full resolution record of name.
func (p *Params) Resolved(name string) (cliconf.Resolved, bool) {
	r, ok := p.resolved[name]
	return r, ok
}

// Source reports where the value of name came from.
func (p *Params) Source(name string) cliconf.Source {
	return p.resolved[name].Source
}

// Values returns every parameter value keyed by name.
func (p *Params) Values() map[string]any {
	out := make(map[string]any, len(p.resolved))
	for name, r := range p.resolved {
		out[name] = r.Value
	}
	return out
}

// DecodeOption configures Decode.
type DecodeOption[T any] = hydrate.DecoderOption[T]

// DecodeStrict disables weak conversions such as "3" to int.
func DecodeStrict[T any]() DecodeOption[T] {
	return hydrate.WithStrictTypes[T]()
}

// DecodeErrorUnused fails when a parameter has no matching field.
func DecodeErrorUnused[T any]() DecodeOption[T] {
	return hydrate.WithErrorUnused[T]()
}

// DecodeCheck runs check on the decoded value.
func DecodeCheck[T any](check func(*T) error) DecodeOption[T] {
	return hydrate.WithPostHook[T](func(_ hydrate.Context, v *T) error {
		return check(v)
	})
}

// Decode fills a T from the parameter values, matching `config` struct tags.
func Decode[T any](p *Params, opts ...DecodeOption[T]) (T, error) {
	return hydrate.NewDecoder[T](opts...).Decode(hydrate.Context{Command: p.command}, p.Values())
}

// LogParameters logs every parameter at debug level as "name: value", in
// declaration order, skipping ignored names.
func LogParameters(logger *slog.Logger, p *Params, ignore ...string) {
	if logger == nil || p == nil {
		return
	}
	for _, name := range p.order {
		if slices.Contains(ignore, name) {
			continue
		}
		logger.Debug(fmt.Sprintf("%s: %v", name, p.resolved[name].Value))
	}
}
