package usersink_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-cliconf/pkg/activity"
	"github.com/goliatone/go-cliconf/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()

	event := activity.Event{
		Verb:       activity.VerbDefaultsSet,
		ActorID:    actorID.String(),
		ObjectType: activity.ObjectDefaultsKey,
		ObjectID:   "section1.an_int",
		Channel:    "cliconf",
		Metadata: map[string]any{
			"file": "/home/jdoe/.config/app.toml",
		},
		OccurredAt: now,
	}

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != actorID {
		t.Fatalf("expected actor and user %s got %s/%s", actorID, record.ActorID, record.UserID)
	}
	if record.Verb != activity.VerbDefaultsSet || record.ObjectType != activity.ObjectDefaultsKey || record.ObjectID != "section1.an_int" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "cliconf" {
		t.Fatalf("expected channel cliconf got %q", record.Channel)
	}
	if record.OccurredAt != now {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["file"] != "/home/jdoe/.config/app.toml" {
		t.Fatalf("expected metadata passthrough got %v", record.Data["file"])
	}
	if _, ok := record.Data["actor"]; ok {
		t.Fatalf("expected no actor metadata for uuid actors")
	}
}

func TestHookNotifyMapsLoginNamesToStableUUID(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	event := activity.Event{
		Verb:       activity.VerbDefaultsWritten,
		ActorID:    "jdoe",
		ObjectType: activity.ObjectDefaultsFile,
		ObjectID:   "app.toml",
	}
	for i := 0; i < 2; i++ {
		if err := hook.Notify(context.Background(), event); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	if sink.records[0].ActorID == uuid.Nil {
		t.Fatalf("expected derived actor uuid")
	}
	if sink.records[0].ActorID != sink.records[1].ActorID {
		t.Fatalf("expected stable actor uuid, got %s and %s", sink.records[0].ActorID, sink.records[1].ActorID)
	}
	if sink.records[0].ActorID != usersink.ActorUUID("jdoe") {
		t.Fatalf("expected ActorUUID to match record")
	}
	if sink.records[0].Data["actor"] != "jdoe" {
		t.Fatalf("expected login name preserved in data, got %v", sink.records[0].Data["actor"])
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyDefaultsTimestamp(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbUnitLoaded,
		ObjectType: activity.ObjectConfigUnit,
		ObjectID:   "base.js",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
	if sink.records[0].ActorID != uuid.Nil {
		t.Fatalf("expected nil actor for anonymous events")
	}
}
