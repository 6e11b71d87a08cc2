package activity

import (
	"context"
	"testing"
	"time"
)

func TestBuildDefaultsSetEventUsesKeyAsObject(t *testing.T) {
	meta := map[string]any{"custom": "value"}
	event := BuildDefaultsSetEvent(DefaultsEventInput{
		ActorID:  " jdoe ",
		File:     "/home/jdoe/.config/app.toml",
		Key:      "section1.an_int",
		OldValue: int64(1),
		NewValue: int64(15),
		Metadata: meta,
	})

	if event.Verb != VerbDefaultsSet {
		t.Fatalf("expected verb %s got %s", VerbDefaultsSet, event.Verb)
	}
	if event.ObjectType != ObjectDefaultsKey || event.ObjectID != "section1.an_int" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.ActorID != "jdoe" {
		t.Fatalf("expected trimmed actor, got %q", event.ActorID)
	}
	if event.Metadata["file"] != "/home/jdoe/.config/app.toml" || event.Metadata["key"] != "section1.an_int" {
		t.Fatalf("expected file and key metadata, got %+v", event.Metadata)
	}
	if event.Metadata["old_value"] != int64(1) || event.Metadata["new_value"] != int64(15) {
		t.Fatalf("expected old/new values, got %+v", event.Metadata)
	}
	event.Metadata["custom"] = "changed"
	if meta["custom"] != "value" {
		t.Fatalf("expected input metadata untouched, got %+v", meta)
	}
}

func TestBuildDefaultsWrittenEventUsesFileAsObject(t *testing.T) {
	event := BuildDefaultsWrittenEvent(DefaultsEventInput{File: "/tmp/app.toml", Key: "ignored"})
	if event.ObjectType != ObjectDefaultsFile || event.ObjectID != "/tmp/app.toml" {
		t.Fatalf("unexpected object fields: %+v", event)
	}

	fallback := BuildDefaultsMigratedEvent(DefaultsEventInput{})
	if fallback.ObjectID != ObjectDefaultsFile {
		t.Fatalf("expected object type fallback, got %q", fallback.ObjectID)
	}
}

func TestBuildUnitLoadedEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	event := BuildUnitLoadedEvent(UnitEventInput{
		Path:        "configs/base.js",
		Binding:     "user_config",
		Engine:      "js",
		NamespaceID: "ns-1",
		Duration:    1500 * time.Millisecond,
		OccurredAt:  at,
	})

	if event.Verb != VerbUnitLoaded || event.ObjectType != ObjectConfigUnit || event.ObjectID != "configs/base.js" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Metadata["engine"] != "js" || event.Metadata["binding"] != "user_config" {
		t.Fatalf("unexpected metadata: %+v", event.Metadata)
	}
	if event.Metadata["duration_ms"] != int64(1500) || event.Metadata["namespace_id"] != "ns-1" {
		t.Fatalf("unexpected metadata: %+v", event.Metadata)
	}
	if !event.OccurredAt.Equal(at) {
		t.Fatalf("expected occurred_at preserved, got %v", event.OccurredAt)
	}
}

func TestBuiltEventsPassThroughEmitter(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, ActorID: "jdoe"})

	events := []Event{
		BuildDefaultsSetEvent(DefaultsEventInput{Key: "a", NewValue: 1}),
		BuildDefaultsDeletedEvent(DefaultsEventInput{Key: "a"}),
		BuildDefaultsWrittenEvent(DefaultsEventInput{File: "app.toml"}),
	}
	for _, event := range events {
		if err := emitter.Emit(context.Background(), event); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}

	verbs := capture.Verbs()
	want := []string{VerbDefaultsSet, VerbDefaultsDeleted, VerbDefaultsWritten}
	if len(verbs) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), verbs)
	}
	for i := range want {
		if verbs[i] != want[i] {
			t.Fatalf("expected verb %q at %d, got %q", want[i], i, verbs[i])
		}
	}
	for _, event := range capture.Events {
		if event.ActorID != "jdoe" || event.Channel != DefaultChannel {
			t.Fatalf("expected emitter defaults applied, got %+v", event)
		}
	}
}
