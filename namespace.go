package cliconf

import (
	"strings"

	"github.com/google/uuid"
)

const (
	nameKey = "__name__"
	fileKey = "__file__"
)

// Namespace is an ordered set of variables produced by evaluating units.
// Keys keep their first insertion position; overwriting a key does not move it.
type Namespace struct {
	Name string
	File string
	ID   string

	keys   []string
	values map[string]any
}

// NewNamespace constructs an empty namespace bound to name.
func NewNamespace(name string) *Namespace {
	return &Namespace{
		Name:   name,
		ID:     uuid.NewString(),
		values: make(map[string]any),
	}
}

// Get returns the value stored under key.
func (n *Namespace) Get(key string) (any, bool) {
	if n == nil {
		return nil, false
	}
	value, ok := n.values[key]
	return value, ok
}

// Has reports whether key is defined.
func (n *Namespace) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Set defines or overwrites key.
func (n *Namespace) Set(key string, value any) {
	if n.values == nil {
		n.values = make(map[string]any)
	}
	if _, exists := n.values[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.values[key] = value
}

// Delete removes key, reporting whether it was present.
func (n *Namespace) Delete(key string) bool {
	if n == nil {
		return false
	}
	if _, ok := n.values[key]; !ok {
		return false
	}
	delete(n.values, key)
	for i, existing := range n.keys {
		if existing == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len counts every key, including reserved ones.
func (n *Namespace) Len() int {
	if n == nil {
		return 0
	}
	return len(n.keys)
}

// AllKeys lists every key in insertion order, including reserved ones.
func (n *Namespace) AllKeys() []string {
	if n == nil {
		return nil
	}
	return append([]string(nil), n.keys...)
}

// Keys lists the public keys in insertion order, skipping `__x__` names.
func (n *Namespace) Keys() []string {
	if n == nil {
		return nil
	}
	keys := make([]string, 0, len(n.keys))
	for _, key := range n.keys {
		if isDunder(key) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// Mapping externalizes the namespace as a plain map without `__x__` keys.
func (n *Namespace) Mapping() map[string]any {
	keys := n.Keys()
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		out[key] = n.values[key]
	}
	return out
}

func (n *Namespace) inherit(from *Namespace) {
	if from == nil {
		return
	}
	for _, key := range from.keys {
		if strings.HasPrefix(key, "__") {
			continue
		}
		n.Set(key, from.values[key])
	}
}

func isDunder(key string) bool {
	return len(key) >= 4 && strings.HasPrefix(key, "__") && strings.HasSuffix(key, "__")
}
