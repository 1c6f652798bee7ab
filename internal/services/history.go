package services

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/models/gorm"
)

// diffField renders one mission field in a canonical form for comparison
type diffField struct {
	name  string
	value func(m *gorm.Mission) string
}

// Every content field of a mission. Identity, lifecycle timestamps and
// last_sync_at are not content.
var diffFields = []diffField{
	{"publisherName", func(m *gorm.Mission) string { return m.PublisherName }},
	{"publisherLogo", func(m *gorm.Mission) string { return m.PublisherLogo }},
	{"publisherUrl", func(m *gorm.Mission) string { return m.PublisherURL }},
	{"title", func(m *gorm.Mission) string { return m.Title }},
	{constants.FieldDescription, func(m *gorm.Mission) string { return m.Description }},
	{constants.FieldDescriptionHTML, func(m *gorm.Mission) string { return m.DescriptionHTML }},
	{"tags", func(m *gorm.Mission) string { return canonicalJSON(len(m.Tags), m.Tags) }},
	{"schedule", func(m *gorm.Mission) string { return m.Schedule }},
	{"applicationUrl", func(m *gorm.Mission) string { return m.ApplicationURL }},
	{"postedAt", func(m *gorm.Mission) string { return canonicalTime(m.PostedAt) }},
	{constants.FieldStartAt, func(m *gorm.Mission) string { return canonicalTime(m.StartAt) }},
	{constants.FieldEndAt, func(m *gorm.Mission) string { return canonicalTime(m.EndAt) }},
	{"duration", func(m *gorm.Mission) string { return canonicalInt(m.Duration) }},
	{constants.FieldPlaces, func(m *gorm.Mission) string { return canonicalInt(m.Places) }},
	{constants.FieldDomain, func(m *gorm.Mission) string { return m.Domain }},
	{"domainOriginal", func(m *gorm.Mission) string { return m.DomainOriginal }},
	{"activity", func(m *gorm.Mission) string { return m.Activity }},
	{"remote", func(m *gorm.Mission) string { return m.Remote }},
	{"country", func(m *gorm.Mission) string { return m.Country }},
	{"openToMinors", func(m *gorm.Mission) string { return strconv.FormatBool(m.OpenToMinors) }},
	{"addresses", func(m *gorm.Mission) string { return canonicalJSON(len(m.Addresses), m.Addresses) }},
	{"organizationClientId", func(m *gorm.Mission) string { return m.OrganizationClientID }},
	{"organizationName", func(m *gorm.Mission) string { return m.OrganizationName }},
	{"organizationRNA", func(m *gorm.Mission) string { return m.OrganizationRNA }},
	{"organizationSiren", func(m *gorm.Mission) string { return m.OrganizationSiren }},
	{"organizationSiret", func(m *gorm.Mission) string { return m.OrganizationSiret }},
	{"organizationUrl", func(m *gorm.Mission) string { return m.OrganizationURL }},
	{"organizationLogo", func(m *gorm.Mission) string { return m.OrganizationLogo }},
	{"organizationDescription", func(m *gorm.Mission) string { return m.OrganizationDescription }},
	{"organizationType", func(m *gorm.Mission) string { return m.OrganizationType }},
	{"organizationFullAddress", func(m *gorm.Mission) string { return m.OrganizationFullAddress }},
	{"organizationPostCode", func(m *gorm.Mission) string { return m.OrganizationPostCode }},
	{"organizationCity", func(m *gorm.Mission) string { return m.OrganizationCity }},
	{"organizationId", func(m *gorm.Mission) string {
		if m.OrganizationID == nil {
			return ""
		}
		return *m.OrganizationID
	}},
	{"organizationNameVerified", func(m *gorm.Mission) string { return m.OrganizationNameVerified }},
	{"organizationRNAVerified", func(m *gorm.Mission) string { return m.OrganizationRNAVerified }},
	{"organizationSirenVerified", func(m *gorm.Mission) string { return m.OrganizationSirenVerified }},
	{"organizationSiretVerified", func(m *gorm.Mission) string { return m.OrganizationSiretVerified }},
	{"organizationAddressVerified", func(m *gorm.Mission) string { return m.OrganizationAddressVerified }},
	{"organizationCityVerified", func(m *gorm.Mission) string { return m.OrganizationCityVerified }},
	{"organizationPostalCodeVerified", func(m *gorm.Mission) string { return m.OrganizationPostalCodeVerified }},
	{"organizationVerificationStatus", func(m *gorm.Mission) string { return string(m.OrganizationVerificationStatus) }},
	{constants.FieldStatusCode, func(m *gorm.Mission) string { return string(m.StatusCode) }},
	{constants.FieldStatusComment, func(m *gorm.Mission) string { return m.StatusComment }},
	{constants.FieldDeletedAt, func(m *gorm.Mission) string { return canonicalTime(m.DeletedAt) }},
}

func canonicalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func canonicalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// canonicalJSON treats nil and empty collections alike
func canonicalJSON(length int, v any) string {
	if length == 0 {
		return "[]"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

// ChangedFields lists the fields that differ between two states of a mission.
// Per-moderator decisions appear as "moderation.<moderatorId>.status".
func ChangedFields(before, after *gorm.Mission) []string {
	var changed []string
	for _, field := range diffFields {
		if field.value(before) != field.value(after) {
			changed = append(changed, field.name)
		}
	}

	statuses := func(m *gorm.Mission) map[string]constants.ModeratorStatus {
		out := make(map[string]constants.ModeratorStatus, len(m.Moderations))
		for _, decision := range m.Moderations {
			out[decision.ModeratorID] = decision.Status
		}
		return out
	}
	beforeStatuses, afterStatuses := statuses(before), statuses(after)

	var moderators []string
	for id := range beforeStatuses {
		moderators = append(moderators, id)
	}
	for id := range afterStatuses {
		if _, ok := beforeStatuses[id]; !ok {
			moderators = append(moderators, id)
		}
	}
	sort.Strings(moderators)
	for _, id := range moderators {
		if beforeStatuses[id] != afterStatuses[id] {
			changed = append(changed, constants.ModeratorStatusField(id))
		}
	}

	return changed
}

// DeriveEventTypes tags a transition. A creation is only Created; otherwise one
// type per tracked field group that changed, or UpdatedOther when none did.
// An empty diff yields no events.
func DeriveEventTypes(changed []string, created bool, trackedModerator string) []constants.HistoryEventType {
	if created {
		return []constants.HistoryEventType{constants.HistoryCreated}
	}
	if len(changed) == 0 {
		return nil
	}

	found := make(map[constants.HistoryEventType]bool)
	for _, field := range changed {
		switch field {
		case constants.FieldDeletedAt:
			found[constants.HistoryDeleted] = true
		case constants.FieldStartAt:
			found[constants.HistoryUpdatedStartDate] = true
		case constants.FieldEndAt:
			found[constants.HistoryUpdatedEndDate] = true
		case constants.FieldDescription, constants.FieldDescriptionHTML:
			found[constants.HistoryUpdatedDescription] = true
		case constants.FieldDomain:
			found[constants.HistoryUpdatedDomain] = true
		case constants.FieldPlaces:
			found[constants.HistoryUpdatedPlaces] = true
		case constants.FieldStatusCode, constants.FieldStatusComment:
			found[constants.HistoryUpdatedStatus] = true
		default:
			if trackedModerator != "" && field == constants.ModeratorStatusField(trackedModerator) {
				found[constants.HistoryUpdatedModeratorStatus] = true
			}
		}
	}

	if len(found) == 0 {
		return []constants.HistoryEventType{constants.HistoryUpdatedOther}
	}

	ordered := []constants.HistoryEventType{
		constants.HistoryDeleted,
		constants.HistoryUpdatedStartDate,
		constants.HistoryUpdatedEndDate,
		constants.HistoryUpdatedDescription,
		constants.HistoryUpdatedDomain,
		constants.HistoryUpdatedPlaces,
		constants.HistoryUpdatedModeratorStatus,
		constants.HistoryUpdatedStatus,
	}
	types := make([]constants.HistoryEventType, 0, len(found))
	for _, t := range ordered {
		if found[t] {
			types = append(types, t)
		}
	}
	return types
}

// HistoryEvents builds the rows of one transition. Created and UpdatedStatus rows
// carry the status snapshot of the new state.
func HistoryEvents(m *gorm.Mission, types []constants.HistoryEventType, changed []string, date time.Time) []*gorm.MissionHistoryEvent {
	events := make([]*gorm.MissionHistoryEvent, 0, len(types))
	for _, t := range types {
		event := &gorm.MissionHistoryEvent{
			MissionID:     m.ID,
			Type:          t,
			Date:          date,
			ChangedFields: append([]string(nil), changed...),
		}
		if t == constants.HistoryCreated || t == constants.HistoryUpdatedStatus {
			event.StatusCode = m.StatusCode
			event.StatusComment = m.StatusComment
		}
		events = append(events, event)
	}
	return events
}
