package activity

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"
)

// Event records one change to a configuration object: a default assigned or
// removed, a store file written or migrated, a unit loaded.
type Event struct {
	Verb       string
	ActorID    string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Complete reports whether the event names a verb and an object.
func (e Event) Complete() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// Hook receives normalized events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Event) error

func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Only forwards to hook the events whose verb starts with one of prefixes,
// for example "defaults." to follow a store but not the loader.
func Only(hook Hook, prefixes ...string) Hook {
	return HookFunc(func(ctx context.Context, event Event) error {
		if hook == nil {
			return nil
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(event.Verb, prefix) {
				return hook.Notify(ctx, event)
			}
		}
		return nil
	})
}

// Hooks fans an event out to several hooks.
type Hooks []Hook

func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes event once and hands it to each hook in order. Incomplete
// events are dropped. Every hook runs even when an earlier one fails; the
// failures are joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	event = NormalizeEvent(event)
	if !event.Complete() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clone returns the non-nil hooks in a fresh slice, or nil if none remain.
func (h Hooks) Clone() Hooks {
	out := slices.DeleteFunc(slices.Clone(h), func(hook Hook) bool { return hook == nil })
	if len(out) == 0 {
		return nil
	}
	return out
}

// NormalizeEvent trims the identifiers, copies Metadata and stamps a missing
// OccurredAt with the current time.
func NormalizeEvent(event Event) Event {
	for _, field := range []*string{&event.Verb, &event.ActorID, &event.ObjectType, &event.ObjectID, &event.Channel} {
		*field = strings.TrimSpace(*field)
	}
	event.Metadata = cloneMap(event.Metadata)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return event
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}
