package rc

import (
	"log/slog"

	"github.com/goliatone/go-cliconf/pkg/activity"
)

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	backend       Backend
	logger        *slog.Logger
	configDir     string
	activityHooks activity.Hooks
	activity      activity.Config
}

func applyOptions(opts []Option) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.backend == nil {
		cfg.backend = FileBackend{}
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}

// WithBackend replaces the filesystem backend.
func WithBackend(backend Backend) Option {
	return func(cfg *storeConfig) {
		cfg.backend = backend
	}
}

// WithLogHandler routes store diagnostics through handler.
func WithLogHandler(handler slog.Handler) Option {
	return func(cfg *storeConfig) {
		if handler != nil {
			cfg.logger = slog.New(handler)
		}
	}
}

// WithLogger routes store diagnostics through logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *storeConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithConfigDir resolves relative paths against dir instead of the user
// configuration directory.
func WithConfigDir(dir string) Option {
	return func(cfg *storeConfig) {
		cfg.configDir = dir
	}
}

// WithActivityHooks emits defaults.* events for every mutation and write.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := hooks.Clone()
	return func(cfg *storeConfig) {
		cfg.activityHooks = normalized
		cfg.activity.Enabled = len(normalized) > 0
	}
}

// WithActivityConfig overrides the emitter channel and actor.
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *storeConfig) {
		enabled := cfg.activity.Enabled
		cfg.activity = config
		if !config.Enabled {
			cfg.activity.Enabled = enabled
		}
	}
}
