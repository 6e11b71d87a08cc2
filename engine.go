package cliconf

import (
	"context"
	"log/slog"
)

// Engine evaluates one kind of unit, selected by file extension.
type Engine interface {
	Name() string
	Extensions() []string
	Exec(ctx context.Context, b *Binding, src []byte) error
}

// Binding is the namespace a single unit is evaluated against, plus the state
// shared by every unit of the same load chain.
type Binding struct {
	Unit   Unit
	Vars   *Namespace
	From   *Namespace
	Logger *slog.Logger

	chain *chainState
}

type chainState struct {
	values map[any]any
}

// ChainValue returns engine state stored for the current load chain.
func (b *Binding) ChainValue(key any) (any, bool) {
	if b == nil || b.chain == nil {
		return nil, false
	}
	value, ok := b.chain.values[key]
	return value, ok
}

// SetChainValue stores engine state for the remaining units of the load chain.
func (b *Binding) SetChainValue(key, value any) {
	if b.chain == nil {
		b.chain = &chainState{}
	}
	if b.chain.values == nil {
		b.chain.values = make(map[any]any)
	}
	b.chain.values[key] = value
}

func (b *Binding) logger() *slog.Logger {
	if b == nil || b.Logger == nil {
		return discardLogger()
	}
	return b.Logger
}

// WithEngine registers engine for its extensions, replacing any previous
// engine bound to the same extension.
func WithEngine(engine Engine) Option {
	return func(cfg *loaderConfig) {
		if engine == nil {
			return
		}
		cfg.engines = append(cfg.engines, engine)
	}
}
