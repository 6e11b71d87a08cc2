package cliconf

// Handle addresses a namespace retained by an Arena.
type Handle int

// Arena owns every namespace produced by a loader for the lifetime of the
// process. It only grows; handles stay valid forever.
type Arena struct {
	spaces []*Namespace
}

// DefaultArena is shared by loaders that were not given their own arena.
var DefaultArena = NewArena()

// NewArena constructs an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Retain appends ns and returns its handle.
func (a *Arena) Retain(ns *Namespace) Handle {
	a.spaces = append(a.spaces, ns)
	return Handle(len(a.spaces) - 1)
}

// Namespace returns the namespace retained under h.
func (a *Arena) Namespace(h Handle) (*Namespace, bool) {
	if a == nil || h < 0 || int(h) >= len(a.spaces) {
		return nil, false
	}
	return a.spaces[h], true
}

// Len reports how many namespaces have been retained.
func (a *Arena) Len() int {
	if a == nil {
		return 0
	}
	return len(a.spaces)
}
