package cliconf

import (
	"log/slog"
	"time"
)

// UnitEvent describes the evaluation of one unit.
type UnitEvent struct {
	Engine    string
	Unit      Unit
	Namespace string
	Duration  time.Duration
	Err       error
}

// LoadObserver records unit evaluations.
type LoadObserver interface {
	ObserveUnit(UnitEvent)
}

// LoadObserverFunc adapts a function to LoadObserver.
type LoadObserverFunc func(UnitEvent)

// ObserveUnit implements LoadObserver.
func (f LoadObserverFunc) ObserveUnit(event UnitEvent) {
	if f != nil {
		f(event)
	}
}

type noopLoadObserver struct{}

func (noopLoadObserver) ObserveUnit(UnitEvent) {}

// WithLoadObserver attaches observer to the loader.
func WithLoadObserver(observer LoadObserver) Option {
	return func(cfg *loaderConfig) {
		if observer == nil {
			cfg.observer = noopLoadObserver{}
			return
		}
		cfg.observer = observer
	}
}

// WithLogHandler routes loader diagnostics through handler.
func WithLogHandler(handler slog.Handler) Option {
	return func(cfg *loaderConfig) {
		if handler == nil {
			return
		}
		cfg.logger = slog.New(handler)
	}
}

// WithLogger routes loader diagnostics through logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *loaderConfig) {
		if logger == nil {
			return
		}
		cfg.logger = logger
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
