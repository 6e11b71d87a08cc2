package cmdline

import (
	"context"
	"errors"
	"log/slog"

	cliconf "github.com/goliatone/go-cliconf"
	"github.com/spf13/cobra"
)

// Binder resolves a set of options for a cobra command.
type Binder struct {
	Resolver *cliconf.Resolver
	Options  []Option
	Env      *Environment
	Defaults DefaultMap
	Logger   *slog.Logger
}

// Bind registers a flag for every option on cmd.
func (b *Binder) Bind(cmd *cobra.Command) {
	for _, opt := range b.Options {
		opt.register(cmd.Flags())
	}
}

// Resolve runs every option through the precedence chain. chained is the
// namespace built from CONFIG arguments, nil when cmd takes none, in which
// case only grouped options may be declared.
func (b *Binder) Resolve(ctx context.Context, cmd *cobra.Command, chained *cliconf.Namespace) (*Params, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	resolver := b.Resolver
	if resolver == nil {
		resolver = cliconf.NewResolver(nil)
	}

	params := newParams(cmd.CommandPath())
	params.Context = chained
	for _, opt := range b.Options {
		p := cliconf.Parameter{
			Name:             opt.ParamName(),
			EnvVar:           b.Env.VarFor(opt),
			Default:          opt.Default,
			Group:            opt.Group,
			StringExceptions: opt.StringExceptions,
			Required:         opt.Required,
		}
		inv := cliconf.Invocation{
			Explicit: func(string) (any, bool) {
				return opt.explicit(cmd.Flags())
			},
			Context:   chained,
			LookupEnv: b.Env.Lookup,
			DefaultMap: func(name string) (any, bool) {
				return b.Defaults.Lookup(cmd, name)
			},
		}

		resolved, err := resolver.Consume(p, inv)
		if err != nil {
			return nil, err
		}
		if resolved.Value, err = opt.coerce(resolved.Value); err != nil {
			return nil, &cliconf.UsageError{Parameter: p.Name, Reason: err.Error()}
		}
		if resolved.Value, err = resolver.Cast(ctx, p, resolved.Value); err != nil {
			return nil, err
		}
		if p.Required && resolved.Value == nil {
			return nil, &cliconf.UsageError{Parameter: p.Name, Reason: "missing option " + opt.Declarations()}
		}
		logger.Debug("resolved option",
			slog.String("name", p.Name),
			slog.String("source", resolved.Source.String()),
		)
		if opt.Callback != nil {
			if err := opt.Callback(resolved.Value); err != nil {
				return nil, err
			}
		}
		params.add(resolved)
	}
	return params, nil
}

// IsUsage reports whether err stems from how the command was invoked.
func IsUsage(err error) bool {
	var usage *UsageError
	return errors.Is(err, cliconf.ErrUsage) || errors.As(err, &usage)
}
