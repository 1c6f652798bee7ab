package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"civic-engagement/missionhub/internal/config"
	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/models/dtos"
	"civic-engagement/missionhub/internal/models/gorm"
)

var builderRunStart = time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC)

func feedEntry() dtos.FeedMission {
	return dtos.FeedMission{
		"clientId":         "m-42",
		"title":            "Soutien scolaire en ligne",
		"description":      strings.Repeat("Aider des collégiens. ", 20),
		"applicationUrl":   "https://partner.example/m-42",
		"domain":           "Solidarité Insertion",
		"startAt":          "2024-06-01",
		"places":           "3",
		"organizationName": "Les Amis",
		"addresses": []any{
			dtos.FeedMission{"street": "1 rue de la République", "city": "Lyon", "postalCode": "69001"},
		},
	}
}

func TestMissionBuilder_NewMission(t *testing.T) {
	pub := &gorm.Publisher{ID: "pub-1", Name: "Partenaire", Logo: "logo.png"}
	builder := NewMissionBuilder(nil, nil)

	m, err := builder.Build(feedEntry(), nil, pub, builderRunStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if m.ID == "" {
		t.Error("Expected an internal id to be assigned")
	}
	if m.PublisherID != "pub-1" || m.PublisherName != "Partenaire" || m.PublisherLogo != "logo.png" {
		t.Errorf("Expected publisher fields copied, got %s/%s/%s", m.PublisherID, m.PublisherName, m.PublisherLogo)
	}
	if !m.LastSyncAt.Equal(builderRunStart) || !m.CreatedAt.Equal(builderRunStart) {
		t.Errorf("Expected timestamps at run start, got %v / %v", m.LastSyncAt, m.CreatedAt)
	}
	if m.Domain != "solidarite-insertion" || m.DomainOriginal != "Solidarité Insertion" {
		t.Errorf("Expected normalized domain, got %q (%q)", m.Domain, m.DomainOriginal)
	}
	if m.Remote != constants.RemoteNo || m.Country != "FR" {
		t.Errorf("Expected defaults no/FR, got %s/%s", m.Remote, m.Country)
	}
	if m.Places == nil || *m.Places != 3 {
		t.Errorf("Expected 3 places, got %v", m.Places)
	}
	if m.StartAt == nil || !m.StartAt.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected start date 2024-06-01, got %v", m.StartAt)
	}
	if m.StatusCode != constants.StatusAccepted {
		t.Errorf("Expected ACCEPTED, got %s (%s)", m.StatusCode, m.StatusComment)
	}

	if len(m.Addresses) != 1 {
		t.Fatalf("Expected 1 address, got %d", len(m.Addresses))
	}
	address := m.Addresses[0]
	if address.GeolocStatus != constants.GeolocShouldEnrich {
		t.Errorf("Expected SHOULD_ENRICH, got %s", address.GeolocStatus)
	}
	if address.DepartmentCode != "69" || address.Region != "Auvergne-Rhône-Alpes" {
		t.Errorf("Expected department from postal code, got %q / %q", address.DepartmentCode, address.Region)
	}
}

func TestMissionBuilder_MissingClientID(t *testing.T) {
	entry := feedEntry()
	delete(entry, "clientId")

	_, err := NewMissionBuilder(nil, nil).Build(entry, nil, &gorm.Publisher{ID: "pub-1"}, builderRunStart)
	if !errors.Is(err, ErrMissingClientID) {
		t.Errorf("Expected ErrMissingClientID, got %v", err)
	}
}

func TestMissionBuilder_PreservesPreviousState(t *testing.T) {
	lat, lon := 45.76, 4.83
	previousPlaces := 8
	createdAt := builderRunStart.AddDate(0, -2, 0)
	orgID := "org-1"
	prev := &gorm.Mission{
		ID:        "existing-id",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		Places:    &previousPlaces,
		Schedule:  "le mercredi",
		Addresses: []gorm.Address{{
			Street: "1 rue de la République", City: "Lyon", PostalCode: "69001",
			Latitude: &lat, Longitude: &lon, GeolocStatus: constants.GeolocEnriched,
		}},
		OrganizationID:                 &orgID,
		OrganizationVerificationStatus: constants.VerificationRNAMatchedWithDB,
		Moderations:                    []gorm.MissionModeration{{ModeratorID: "mod-1", Status: constants.ModeratorPending}},
	}
	entry := feedEntry()
	delete(entry, "places")

	m, err := NewMissionBuilder(nil, nil).Build(entry, prev, &gorm.Publisher{ID: "pub-1"}, builderRunStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if m.ID != "existing-id" || !m.CreatedAt.Equal(createdAt) {
		t.Errorf("Expected identity preserved, got %s / %v", m.ID, m.CreatedAt)
	}
	if m.Places == nil || *m.Places != 8 {
		t.Errorf("Expected absent places to keep previous value 8, got %v", m.Places)
	}
	if m.Schedule != "le mercredi" {
		t.Errorf("Expected absent schedule kept, got %q", m.Schedule)
	}
	if m.Addresses[0].GeolocStatus != constants.GeolocEnriched || m.Addresses[0].Latitude == nil {
		t.Errorf("Expected geocoding reused, got %+v", m.Addresses[0])
	}
	if m.OrganizationID == nil || *m.OrganizationID != "org-1" {
		t.Errorf("Expected previous resolution carried, got %v", m.OrganizationID)
	}
	if len(m.Moderations) != 1 {
		t.Errorf("Expected moderations carried, got %d", len(m.Moderations))
	}
}

func TestMissionBuilder_PublisherCoordinates(t *testing.T) {
	entry := feedEntry()
	entry["addresses"] = []any{
		dtos.FeedMission{"city": "Lille", "location": dtos.FeedMission{"lat": "50.63", "lon": "3,06"}},
		dtos.FeedMission{"country": "be"},
	}

	m, err := NewMissionBuilder(nil, nil).Build(entry, nil, &gorm.Publisher{ID: "pub-1"}, builderRunStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	first := m.Addresses[0]
	if first.GeolocStatus != constants.GeolocEnrichedByPublisher {
		t.Errorf("Expected ENRICHED_BY_PUBLISHER, got %s", first.GeolocStatus)
	}
	if first.Longitude == nil || *first.Longitude != 3.06 {
		t.Errorf("Expected longitude 3.06, got %v", first.Longitude)
	}
	second := m.Addresses[1]
	if second.GeolocStatus != constants.GeolocNoData || second.Country != "BE" {
		t.Errorf("Expected NO_DATA / BE, got %s / %s", second.GeolocStatus, second.Country)
	}
}

func TestMissionBuilder_HTMLDescription(t *testing.T) {
	entry := feedEntry()
	entry["description"] = "<p>" + strings.Repeat("Bonjour à tous. ", 25) + "</p><script>alert(1)</script>"

	m, err := NewMissionBuilder(nil, nil).Build(entry, nil, &gorm.Publisher{ID: "pub-1"}, builderRunStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if strings.Contains(m.Description, "<p>") {
		t.Errorf("Expected plain text description, got %q", m.Description)
	}
	if strings.Contains(m.DescriptionHTML, "<script>") {
		t.Errorf("Expected sanitized HTML, got %q", m.DescriptionHTML)
	}
	if !strings.Contains(m.DescriptionHTML, "<p>") {
		t.Errorf("Expected paragraph kept in HTML, got %q", m.DescriptionHTML)
	}
}

func TestMissionBuilder_TextRulesRunBeforeModeration(t *testing.T) {
	rules := &config.TextRules{Publishers: map[string][]config.TextRule{
		"pub-1": {{StripAfter: "collégiens"}},
	}}

	m, err := NewMissionBuilder(rules, nil).Build(feedEntry(), nil, &gorm.Publisher{ID: "pub-1"}, builderRunStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if m.Description != "Aider des " {
		t.Errorf("Expected description cut by rule, got %q", m.Description)
	}
	if m.StatusCode != constants.StatusRefused || m.StatusComment != constants.CommentDescriptionTooShort {
		t.Errorf("Expected refusal on the rewritten description, got %s %q", m.StatusCode, m.StatusComment)
	}
}

func TestMissionBuilder_ExemptPublisher(t *testing.T) {
	entry := dtos.FeedMission{"clientId": "x", "title": "Un"}
	builder := NewMissionBuilder(nil, func(publisherID string) bool { return publisherID == "trusted" })

	m, err := builder.Build(entry, nil, &gorm.Publisher{ID: "trusted"}, builderRunStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m.StatusCode != constants.StatusAccepted {
		t.Errorf("Expected exempt publisher ACCEPTED, got %s", m.StatusCode)
	}

	m, _ = builder.Build(entry, nil, &gorm.Publisher{ID: "other"}, builderRunStart)
	if m.StatusCode != constants.StatusRefused {
		t.Errorf("Expected non-exempt publisher REFUSED, got %s", m.StatusCode)
	}
}

func TestMissionBuilder_ClampsNarrowColumns(t *testing.T) {
	entry := feedEntry()
	entry["remote"] = "Possible en télétravail partiel selon les semaines"
	entry["countryCode"] = "République française"
	entry["organizationPostCode"] = strings.Repeat("7", 40)

	m, err := NewMissionBuilder(nil, nil).Build(entry, nil, &gorm.Publisher{ID: "pub-1"}, builderRunStart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if n := len([]rune(m.Remote)); n != 20 {
		t.Errorf("Expected remote clamped to 20 characters, got %d (%q)", n, m.Remote)
	}
	if n := len([]rune(m.Country)); n != 10 {
		t.Errorf("Expected country clamped to 10 characters, got %d (%q)", n, m.Country)
	}
	if len(m.OrganizationPostCode) != 20 {
		t.Errorf("Expected organization post code clamped to 20, got %d", len(m.OrganizationPostCode))
	}
	if m.StatusCode != constants.StatusRefused {
		t.Errorf("Expected an invalid country or remote to be refused, got %s", m.StatusCode)
	}
}
