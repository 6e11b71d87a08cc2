package hydrate

import (
	"fmt"
	"maps"

	"github.com/mitchellh/mapstructure"
)

// TagName is the struct tag read while decoding.
const TagName = "config"

// Context identifies the command whose parameters are being decoded.
type Context struct {
	Command string
}

// PreHook lets callers mutate or normalise the values before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the hydrated struct after decoding.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts resolved parameter values into strongly typed structs.
type Decoder[T any] struct {
	preHooks    []PreHook
	postHooks   []PostHook[T]
	decodeHooks []mapstructure.DecodeHookFunc
	errorUnused bool
	strict      bool
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDecodeHook runs hook before the built-in duration and text hooks.
func WithDecodeHook[T any](hook mapstructure.DecodeHookFunc) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.decodeHooks = append(d.decodeHooks, hook)
		}
	}
}

// WithErrorUnused fails decoding when a value has no matching field.
func WithErrorUnused[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.errorUnused = true
	}
}

// WithStrictTypes disables weak conversions such as "3" to int.
func WithStrictTypes[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.strict = true
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts values into T applying configured hooks. Environment
// values arrive as strings, so weak typing is on unless WithStrictTypes is set.
func (d *Decoder[T]) Decode(ctx Context, values map[string]any) (T, error) {
	var zero T

	if values == nil {
		return zero, fmt.Errorf("hydrate: values are nil for command %q", ctx.Command)
	}

	current := maps.Clone(values)
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for command %q failed: %w", ctx.Command, err)
		}
		if next != nil {
			current = next
		}
	}

	var result T
	hooks := append(append([]mapstructure.DecodeHookFunc(nil), d.decodeHooks...),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          TagName,
		Result:           &result,
		WeaklyTypedInput: !d.strict,
		ErrorUnused:      d.errorUnused,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(hooks...),
	})
	if err != nil {
		return zero, fmt.Errorf("hydrate: build decoder for command %q: %w", ctx.Command, err)
	}
	if err := dec.Decode(current); err != nil {
		return zero, fmt.Errorf("hydrate: decode command %q: %w", ctx.Command, err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for command %q failed: %w", ctx.Command, err)
		}
	}

	return result, nil
}
