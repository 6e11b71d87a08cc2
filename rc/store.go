// Package rc keeps per-user defaults in a TOML file addressed with dotted
// keys, such as "section.key".
package rc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-cliconf/pkg/activity"
)

// Store is a tree of string keys whose values are scalars or sections
// (map[string]any). It is backed by one file and only synchronized on
// explicit Read and Write calls.
type Store struct {
	path    string
	keys    []string
	data    map[string]any
	backend Backend
	logger  *slog.Logger
	emitter *activity.Emitter
}

// New binds a store to path and reads it when it exists. A leading "~" is
// expanded; relative paths resolve against the user configuration directory
// ($XDG_CONFIG_HOME on most systems).
func New(path string, opts ...Option) (*Store, error) {
	cfg := applyOptions(opts)
	resolved, err := resolvePath(path, cfg.configDir)
	if err != nil {
		return nil, err
	}
	s := &Store{
		path:    resolved,
		data:    make(map[string]any),
		backend: cfg.backend,
		logger:  cfg.logger,
		emitter: activity.NewEmitter(cfg.activityHooks, cfg.activity),
	}
	s.logger.Info(fmt.Sprintf("User configuration file set to `%s'", s.path))
	if err := s.Read(); err != nil {
		return nil, err
	}
	return s, nil
}

func resolvePath(path, configDir string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("rc: expand %s: %w", path, err)
		}
		path = filepath.Join(home, path[1:])
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if configDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("rc: locate user config dir: %w", err)
		}
		configDir = dir
	}
	return filepath.Join(configDir, path), nil
}

// Path returns the resolved file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value under key. An exact top-level match wins; otherwise
// the key is split on "." and each prefix naming a section is tried against
// the rest of the key, so "a.b.c" can find the literal key "b.c" in section a.
func (s *Store) Get(key string) (any, error) {
	if value, ok := s.Lookup(key); ok {
		return value, nil
	}
	return nil, &KeyNotFoundError{Key: key, Path: s.path}
}

// Lookup is the non-failing form of Get.
func (s *Store) Lookup(key string) (any, bool) {
	if value, ok := s.data[key]; ok {
		return value, true
	}
	section, subkey, ok := s.find(key)
	if !ok {
		return nil, false
	}
	return section[subkey], true
}

// Has reports whether Get would succeed.
func (s *Store) Has(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// find walks the sections named by the leading segments of key and returns
// the first section holding the remaining suffix.
func (s *Store) find(key string) (map[string]any, string, bool) {
	parts := strings.Split(key, ".")
	base := s.data
	for n := 0; n < len(parts)-1; n++ {
		next, ok := base[parts[n]].(map[string]any)
		if !ok {
			return nil, "", false
		}
		base = next
		subkey := strings.Join(parts[n+1:], ".")
		if _, ok := base[subkey]; ok {
			return base, subkey, true
		}
	}
	return nil, "", false
}

// Set assigns value to key. Dotted keys create the intermediate sections and
// fail when one of them already holds a scalar.
func (s *Store) Set(key string, value any) error {
	value = normalizeValue(value)
	old, _ := s.Lookup(key)
	if err := s.assign(key, value); err != nil {
		return err
	}
	s.emit(activity.BuildDefaultsSetEvent(activity.DefaultsEventInput{
		File: s.path, Key: key, OldValue: old, NewValue: value,
	}))
	return nil
}

func (s *Store) assign(key string, value any) error {
	parts := strings.Split(key, ".")
	if len(parts) == 1 {
		s.setTop(key, value)
		return nil
	}

	base := s.data
	for n := 0; n < len(parts)-1; n++ {
		current, exists := base[parts[n]]
		if !exists {
			section := map[string]any{}
			if n == 0 {
				s.setTop(parts[n], section)
			} else {
				base[parts[n]] = section
			}
			base = section
			continue
		}
		section, ok := current.(map[string]any)
		if !ok {
			return &SectionScalarConflictError{Key: key, Segment: strings.Join(parts[:n+1], ".")}
		}
		base = section
	}
	base[parts[len(parts)-1]] = value
	return nil
}

func (s *Store) setTop(key string, value any) {
	if _, exists := s.data[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.data[key] = value
}

// Delete removes key, resolved the way Get resolves it. The store is left
// untouched when nothing matches.
func (s *Store) Delete(key string) error {
	if _, ok := s.data[key]; ok {
		s.deleteTop(key)
	} else if section, subkey, ok := s.find(key); ok {
		delete(section, subkey)
	} else {
		return &KeyNotFoundError{Key: key, Path: s.path}
	}
	s.emit(activity.BuildDefaultsDeletedEvent(activity.DefaultsEventInput{File: s.path, Key: key}))
	return nil
}

func (s *Store) deleteTop(key string) {
	delete(s.data, key)
	for i, existing := range s.keys {
		if existing == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			return
		}
	}
}

// Len counts top-level keys.
func (s *Store) Len() int {
	return len(s.keys)
}

// Keys lists top-level keys in insertion order.
func (s *Store) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Clear drops every key without touching the file.
func (s *Store) Clear() {
	s.keys = nil
	s.data = make(map[string]any)
}

// Map returns a deep copy of the store contents.
func (s *Store) Map() map[string]any {
	out := make(map[string]any, len(s.data))
	for key, value := range s.data {
		out[key] = cloneValue(value)
	}
	return out
}

// Read replaces the contents with the file's. A missing file leaves the store
// empty. Legacy JSON files are converted to TOML and written back first.
func (s *Store) Read() error {
	data, ok, err := s.backend.Load(s.path)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Debug("Initializing empty user configuration...")
		return nil
	}
	s.logger.Debug("User configuration file exists, reading contents...")
	s.Clear()

	if isLegacy(data) {
		s.logger.Warn(fmt.Sprintf("Converting `%s' from (legacy) JSON to (new) TOML format", s.path))
		if err := s.importLegacy(data); err != nil {
			return err
		}
		if err := s.Write(); err != nil {
			return err
		}
		s.emit(activity.BuildDefaultsMigratedEvent(activity.DefaultsEventInput{File: s.path}))
		s.Clear()
		if data, _, err = s.backend.Load(s.path); err != nil {
			return err
		}
	}

	keys, values, err := decode(data)
	if err != nil {
		return fmt.Errorf("rc: parse %s: %w", s.path, err)
	}
	for _, key := range keys {
		s.setTop(key, values[key])
	}
	return nil
}

// Write serializes the store and replaces the file, keeping the previous
// content under the same path with a "~" suffix.
func (s *Store) Write() error {
	data, err := s.encode()
	if err != nil {
		return err
	}
	s.logger.Debug(fmt.Sprintf("Backing-up %s -> %s", s.path, s.path+BackupSuffix))
	if err := s.backend.Save(s.path, data); err != nil {
		return err
	}
	s.logger.Info(fmt.Sprintf("Wrote configuration at %s", s.path))
	s.emit(activity.BuildDefaultsWrittenEvent(activity.DefaultsEventInput{File: s.path}))
	return nil
}

// Encode renders the store as TOML: top-level values first, then sections,
// each group in insertion order.
func (s *Store) Encode() ([]byte, error) {
	return s.encode()
}

// String is Encode as a string. An encoding failure is logged at WARN and
// yields "".
func (s *Store) String() string {
	data, err := s.encode()
	if err != nil {
		s.logger.Warn(fmt.Sprintf("Cannot render `%s'", s.path), slog.Any("error", err))
		return ""
	}
	return string(data)
}

func (s *Store) emit(event activity.Event) {
	if !s.emitter.Enabled() {
		return
	}
	if err := s.emitter.Emit(context.Background(), event); err != nil {
		s.logger.Warn("activity hook failed", slog.String("verb", event.Verb), slog.Any("error", err))
	}
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item).(map[string]any)
		}
		return out
	default:
		return value
	}
}
