package services

import (
	"reflect"
	"testing"
	"time"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/models/gorm"

	"gorm.io/datatypes"
)

func TestDeriveEventTypes_StartAndEnd(t *testing.T) {
	types := DeriveEventTypes([]string{constants.FieldStartAt, constants.FieldEndAt}, false, "")

	want := []constants.HistoryEventType{constants.HistoryUpdatedStartDate, constants.HistoryUpdatedEndDate}
	if !reflect.DeepEqual(types, want) {
		t.Errorf("Expected %v, got %v", want, types)
	}
}

func TestDeriveEventTypes_UntrackedOnly(t *testing.T) {
	types := DeriveEventTypes([]string{"schedule"}, false, "")

	if len(types) != 1 || types[0] != constants.HistoryUpdatedOther {
		t.Errorf("Expected [UpdatedOther], got %v", types)
	}
}

func TestDeriveEventTypes_Created(t *testing.T) {
	types := DeriveEventTypes([]string{"title", constants.FieldStartAt}, true, "")

	if len(types) != 1 || types[0] != constants.HistoryCreated {
		t.Errorf("Expected [Created], got %v", types)
	}
}

func TestDeriveEventTypes_EmptyDiff(t *testing.T) {
	if types := DeriveEventTypes(nil, false, ""); len(types) != 0 {
		t.Errorf("Expected no events, got %v", types)
	}
}

func TestDeriveEventTypes_DescriptionCollapses(t *testing.T) {
	types := DeriveEventTypes([]string{constants.FieldDescription, constants.FieldDescriptionHTML, "title"}, false, "")

	if len(types) != 1 || types[0] != constants.HistoryUpdatedDescription {
		t.Errorf("Expected a single UpdatedDescription, got %v", types)
	}
}

func TestDeriveEventTypes_ModeratorStatus(t *testing.T) {
	tracked := constants.ModeratorStatusField("mod-1")
	other := constants.ModeratorStatusField("mod-2")

	types := DeriveEventTypes([]string{tracked}, false, "mod-1")
	if len(types) != 1 || types[0] != constants.HistoryUpdatedModeratorStatus {
		t.Errorf("Expected [UpdatedModeratorStatus], got %v", types)
	}

	types = DeriveEventTypes([]string{other}, false, "mod-1")
	if len(types) != 1 || types[0] != constants.HistoryUpdatedOther {
		t.Errorf("Expected untracked moderator to yield UpdatedOther, got %v", types)
	}
}

func TestChangedFields(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	before := &gorm.Mission{
		Title:   "Collecte alimentaire",
		StartAt: &start,
		Tags:    nil,
		Moderations: []gorm.MissionModeration{
			{ModeratorID: "mod-1", Status: constants.ModeratorPending},
		},
	}

	// Same instant in another zone, empty vs nil tags
	paris := start.In(time.FixedZone("CET", 3600))
	after := &gorm.Mission{
		Title:   "Collecte alimentaire",
		StartAt: &paris,
		Tags:    datatypes.JSONSlice[string]{},
		Moderations: []gorm.MissionModeration{
			{ModeratorID: "mod-1", Status: constants.ModeratorPending},
		},
	}
	if changed := ChangedFields(before, after); len(changed) != 0 {
		t.Errorf("Expected no change, got %v", changed)
	}

	places := 4
	after.Places = &places
	after.Moderations[0].Status = constants.ModeratorRefused
	changed := ChangedFields(before, after)

	want := []string{constants.FieldPlaces, constants.ModeratorStatusField("mod-1")}
	if !reflect.DeepEqual(changed, want) {
		t.Errorf("Expected %v, got %v", want, changed)
	}
}

func TestHistoryEvents_StatusSnapshot(t *testing.T) {
	date := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m := &gorm.Mission{ID: "m-1", StatusCode: constants.StatusRefused, StatusComment: constants.CommentDomainInvalid}
	changed := []string{constants.FieldStatusCode, constants.FieldPlaces}

	events := HistoryEvents(m, DeriveEventTypes(changed, false, ""), changed, date)

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	for _, e := range events {
		if e.MissionID != "m-1" || !e.Date.Equal(date) {
			t.Errorf("Unexpected event identity %s/%v", e.MissionID, e.Date)
		}
		if len(e.ChangedFields) != 2 {
			t.Errorf("Expected changed fields to be recorded, got %v", e.ChangedFields)
		}
		switch e.Type {
		case constants.HistoryUpdatedStatus:
			if e.StatusCode != constants.StatusRefused || e.StatusComment != constants.CommentDomainInvalid {
				t.Errorf("Expected status snapshot on UpdatedStatus, got %s %q", e.StatusCode, e.StatusComment)
			}
		case constants.HistoryUpdatedPlaces:
			if e.StatusCode != "" {
				t.Errorf("Expected no status snapshot on UpdatedPlaces, got %s", e.StatusCode)
			}
		default:
			t.Errorf("Unexpected event type %s", e.Type)
		}
	}
}
