package rc

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound marks lookups and deletions of keys absent from the store.
	ErrKeyNotFound = errors.New("rc: key not found")
	// ErrSectionScalarConflict marks dotted assignments crossing a scalar value.
	ErrSectionScalarConflict = errors.New("rc: section/scalar conflict")
)

// KeyNotFoundError reports a key that matched neither a top-level entry nor a
// dotted path into a section.
type KeyNotFoundError struct {
	Key  string
	Path string
}

func (e *KeyNotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("rc: cannot find object named `%s'", e.Key)
	}
	return fmt.Sprintf("rc: cannot find object named `%s' at `%s'", e.Key, e.Path)
}

// Is lets errors.Is match ErrKeyNotFound.
func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// SectionScalarConflictError reports an assignment to Key whose prefix
// Segment already holds a value instead of a section.
type SectionScalarConflictError struct {
	Key     string
	Segment string
}

func (e *SectionScalarConflictError) Error() string {
	return fmt.Sprintf("rc: cannot set `%s': `%s' is already a variable set in the file, and not a section", e.Key, e.Segment)
}

// Is lets errors.Is match ErrSectionScalarConflict.
func (e *SectionScalarConflictError) Is(target error) bool {
	return target == ErrSectionScalarConflict
}
