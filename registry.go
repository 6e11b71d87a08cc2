package cliconf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Entry is one named resource registered under a group.
type Entry struct {
	Name   string `yaml:"name"`
	Module string `yaml:"module"`
	Attr   string `yaml:"attr,omitempty"`
	Doc    string `yaml:"doc,omitempty"`
}

// Value renders the entry the way it is usually written, "module" or "module:attr".
func (e Entry) Value() string {
	if e.Attr == "" {
		return e.Module
	}
	return e.Module + ":" + e.Attr
}

// Registry is the read-only directory of named resources consulted while
// resolving references.
type Registry interface {
	Entries(group string) ([]Entry, error)
}

// RegistryFunc adapts a function to Registry.
type RegistryFunc func(group string) ([]Entry, error)

// Entries implements Registry.
func (fn RegistryFunc) Entries(group string) ([]Entry, error) {
	if fn == nil {
		return nil, nil
	}
	return fn(group)
}

// MemoryRegistry keeps entries in process memory.
type MemoryRegistry struct {
	mu     sync.RWMutex
	groups map[string][]Entry
}

// NewMemoryRegistry constructs an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{groups: make(map[string][]Entry)}
}

// Register appends entries to group.
func (r *MemoryRegistry) Register(group string, entries ...Entry) error {
	if group == "" {
		return fmt.Errorf("cliconf: registry group must not be empty")
	}
	for _, entry := range entries {
		if entry.Name == "" || entry.Module == "" {
			return fmt.Errorf("cliconf: registry entry in %q needs a name and a module", group)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.groups == nil {
		r.groups = make(map[string][]Entry)
	}
	r.groups[group] = append(r.groups[group], entries...)
	return nil
}

// Entries implements Registry.
func (r *MemoryRegistry) Entries(group string) ([]Entry, error) {
	if r == nil {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Entry(nil), r.groups[group]...), nil
}

// Registries chains several registries, concatenating their entries in order.
type Registries []Registry

// Entries implements Registry.
func (rs Registries) Entries(group string) ([]Entry, error) {
	var (
		out  []Entry
		errs []error
	)
	for _, r := range rs {
		if r == nil {
			continue
		}
		entries, err := r.Entries(group)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, entries...)
	}
	return out, errors.Join(errs...)
}

type manifest struct {
	Groups map[string][]Entry `yaml:"groups"`
}

// ManifestRegistry serves entries declared in YAML manifest files.
type ManifestRegistry struct {
	*MemoryRegistry
	files []string
}

// LoadManifests parses each manifest in order into a single registry.
func LoadManifests(paths ...string) (*ManifestRegistry, error) {
	reg := &ManifestRegistry{MemoryRegistry: NewMemoryRegistry()}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cliconf: read manifest: %w", err)
		}
		if err := reg.add(path, data); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// ParseManifest builds a registry from raw manifest bytes.
func ParseManifest(data []byte) (*ManifestRegistry, error) {
	reg := &ManifestRegistry{MemoryRegistry: NewMemoryRegistry()}
	if err := reg.add("", data); err != nil {
		return nil, err
	}
	return reg, nil
}

// Files lists the manifests this registry was built from.
func (r *ManifestRegistry) Files() []string {
	return append([]string(nil), r.files...)
}

func (r *ManifestRegistry) add(path string, data []byte) error {
	var doc manifest
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("cliconf: parse manifest %s: %w", manifestLabel(path), err)
	}
	for group, entries := range doc.Groups {
		for i := range entries {
			entries[i] = normalizeEntry(entries[i])
		}
		if err := r.Register(group, entries...); err != nil {
			return fmt.Errorf("%w (manifest %s)", err, manifestLabel(path))
		}
	}
	if path != "" {
		r.files = append(r.files, filepath.Clean(path))
	}
	return nil
}

// normalizeEntry accepts the "module:attr" shorthand in the module field.
func normalizeEntry(entry Entry) Entry {
	entry.Name = strings.TrimSpace(entry.Name)
	entry.Module = strings.TrimSpace(entry.Module)
	if entry.Attr == "" {
		if module, attr, ok := strings.Cut(entry.Module, ":"); ok {
			entry.Module = module
			entry.Attr = attr
		}
	}
	return entry
}

func manifestLabel(path string) string {
	if path == "" {
		return "<inline>"
	}
	return path
}
