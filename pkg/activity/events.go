package activity

import (
	"strings"
	"time"
)

const (
	VerbDefaultsSet      = "defaults.set"
	VerbDefaultsDeleted  = "defaults.deleted"
	VerbDefaultsWritten  = "defaults.written"
	VerbDefaultsMigrated = "defaults.migrated"
	VerbUnitLoaded       = "config.unit.loaded"

	ObjectDefaultsKey  = "defaults.key"
	ObjectDefaultsFile = "defaults.file"
	ObjectConfigUnit   = "config.unit"
)

// DefaultsEventInput describes a change to a user defaults store.
type DefaultsEventInput struct {
	ActorID    string
	File       string
	Key        string
	OldValue   any
	NewValue   any
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildDefaultsSetEvent records a key assignment.
func BuildDefaultsSetEvent(input DefaultsEventInput) Event {
	return buildDefaultsEvent(VerbDefaultsSet, ObjectDefaultsKey, input)
}

// BuildDefaultsDeletedEvent records a key or section removal.
func BuildDefaultsDeletedEvent(input DefaultsEventInput) Event {
	return buildDefaultsEvent(VerbDefaultsDeleted, ObjectDefaultsKey, input)
}

// BuildDefaultsWrittenEvent records a store flushed to disk.
func BuildDefaultsWrittenEvent(input DefaultsEventInput) Event {
	return buildDefaultsEvent(VerbDefaultsWritten, ObjectDefaultsFile, input)
}

// BuildDefaultsMigratedEvent records a legacy file converted to the current format.
func BuildDefaultsMigratedEvent(input DefaultsEventInput) Event {
	return buildDefaultsEvent(VerbDefaultsMigrated, ObjectDefaultsFile, input)
}

func buildDefaultsEvent(verb, objectType string, input DefaultsEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.File != "" {
		metadata = ensureMetadata(metadata)
		metadata["file"] = input.File
	}
	if input.Key != "" {
		metadata = ensureMetadata(metadata)
		metadata["key"] = input.Key
	}
	if input.OldValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["old_value"] = input.OldValue
	}
	if input.NewValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["new_value"] = input.NewValue
	}

	objectID := strings.TrimSpace(input.Key)
	if objectType == ObjectDefaultsFile || objectID == "" {
		objectID = strings.TrimSpace(input.File)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// UnitEventInput describes one evaluated configuration unit.
type UnitEventInput struct {
	ActorID     string
	Path        string
	Binding     string
	Engine      string
	NamespaceID string
	Duration    time.Duration
	OccurredAt  time.Time
}

// BuildUnitLoadedEvent records a unit evaluated by a loader.
func BuildUnitLoadedEvent(input UnitEventInput) Event {
	metadata := map[string]any{
		"binding":     input.Binding,
		"engine":      input.Engine,
		"duration_ms": input.Duration.Milliseconds(),
	}
	if input.NamespaceID != "" {
		metadata["namespace_id"] = input.NamespaceID
	}
	return Event{
		Verb:       VerbUnitLoaded,
		ActorID:    strings.TrimSpace(input.ActorID),
		ObjectType: ObjectConfigUnit,
		ObjectID:   strings.TrimSpace(input.Path),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
