package services

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/config"
	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/models/dtos"
	"civic-engagement/missionhub/internal/models/gorm"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ErrMissingClientID is returned for feed entries without a clientId
var ErrMissingClientID = errors.New("mission has no clientId")

const defaultCountry = "FR"

// Date layouts seen in partner feeds
var feedDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// MissionBuilder composes a canonical mission from a feed entry and the previous
// stored state of the same mission
type MissionBuilder struct {
	rules    *config.TextRules
	isExempt func(publisherID string) bool
}

// NewMissionBuilder creates a builder. isExempt may be nil.
func NewMissionBuilder(rules *config.TextRules, isExempt func(publisherID string) bool) *MissionBuilder {
	return &MissionBuilder{rules: rules, isExempt: isExempt}
}

// Build normalizes entry. Fields the entry omits keep their previous value; the
// internal id and creation time of prev are preserved. Addresses are left
// SHOULD_ENRICH when they need the geocoder, and the organization resolution
// of prev is carried until the resolver runs.
func (b *MissionBuilder) Build(entry dtos.FeedMission, prev *gorm.Mission, pub *gorm.Publisher, runStart time.Time) (*gorm.Mission, error) {
	clientID := entry.ClientID()
	if clientID == "" {
		return nil, ErrMissingClientID
	}

	m := &gorm.Mission{
		PublisherID:   pub.ID,
		ClientID:      clientID,
		PublisherName: pub.Name,
		PublisherLogo: pub.Logo,
		PublisherURL:  pub.URL,
		LastSyncAt:    runStart,
	}
	if prev != nil {
		m.ID = prev.ID
		m.CreatedAt = prev.CreatedAt
		m.UpdatedAt = prev.UpdatedAt
		m.Moderations = prev.Moderations
		copyResolution(m, prev)
	} else {
		m.ID = uuid.NewString()
		m.CreatedAt = runStart
		m.UpdatedAt = runStart
	}

	has := func(key string) bool {
		_, ok := entry[key]
		return ok
	}
	str := func(key string, previous func(p *gorm.Mission) string) string {
		if !has(key) && prev != nil {
			return previous(prev)
		}
		return entry.String(key)
	}
	date := func(key string, previous func(p *gorm.Mission) *time.Time) *time.Time {
		if !has(key) && prev != nil {
			return previous(prev)
		}
		return parseFeedDate(entry.String(key))
	}
	integer := func(key string, previous func(p *gorm.Mission) *int) *int {
		if !has(key) && prev != nil {
			return previous(prev)
		}
		if n, ok := entry.Int(key); ok {
			return &n
		}
		return nil
	}

	// Title is kept as sent so encoding artifacts stay visible to moderation
	m.Title = str("title", func(p *gorm.Mission) string { return p.Title })
	if has("description") || prev == nil {
		m.Description, m.DescriptionHTML = normalizeDescription(entry.String("description"))
	} else {
		m.Description, m.DescriptionHTML = prev.Description, prev.DescriptionHTML
	}
	if html := entry.String("descriptionHtml"); html != "" {
		m.DescriptionHTML = common.SanitizeHTML(html)
	}

	if has("tags") || prev == nil {
		m.Tags = datatypes.JSONSlice[string](entry.Strings("tags"))
	} else {
		m.Tags = prev.Tags
	}
	m.Schedule = str("schedule", func(p *gorm.Mission) string { return p.Schedule })
	m.ApplicationURL = str("applicationUrl", func(p *gorm.Mission) string { return p.ApplicationURL })
	m.PostedAt = date("postedAt", func(p *gorm.Mission) *time.Time { return p.PostedAt })
	m.StartAt = date("startAt", func(p *gorm.Mission) *time.Time { return p.StartAt })
	m.EndAt = date("endAt", func(p *gorm.Mission) *time.Time { return p.EndAt })
	m.Duration = integer("duration", func(p *gorm.Mission) *int { return p.Duration })
	m.Places = integer("places", func(p *gorm.Mission) *int { return p.Places })

	m.DomainOriginal = str("domain", func(p *gorm.Mission) string { return p.DomainOriginal })
	m.Domain = common.Slugify(m.DomainOriginal)
	m.Activity = str("activity", func(p *gorm.Mission) string { return p.Activity })

	m.Remote = strings.ToLower(str("remote", func(p *gorm.Mission) string { return p.Remote }))
	if m.Remote == "" {
		m.Remote = constants.RemoteNo
	}

	country := entry.String("countryCode")
	if country == "" {
		country = entry.String("country")
	}
	if country == "" && prev != nil && !has("countryCode") && !has("country") {
		country = prev.Country
	}
	m.Country = strings.ToUpper(country)
	if m.Country == "" {
		m.Country = defaultCountry
	}

	if has("openToMinors") || prev == nil {
		m.OpenToMinors = entry.Bool("openToMinors")
	} else {
		m.OpenToMinors = prev.OpenToMinors
	}

	m.OrganizationClientID = str("organizationClientId", func(p *gorm.Mission) string { return p.OrganizationClientID })
	m.OrganizationName = str("organizationName", func(p *gorm.Mission) string { return p.OrganizationName })
	m.OrganizationRNA = str("organizationRNA", func(p *gorm.Mission) string { return p.OrganizationRNA })
	m.OrganizationSiren = str("organizationSiren", func(p *gorm.Mission) string { return p.OrganizationSiren })
	m.OrganizationSiret = str("organizationSiret", func(p *gorm.Mission) string { return p.OrganizationSiret })
	m.OrganizationURL = str("organizationUrl", func(p *gorm.Mission) string { return p.OrganizationURL })
	m.OrganizationLogo = str("organizationLogo", func(p *gorm.Mission) string { return p.OrganizationLogo })
	m.OrganizationDescription = str("organizationDescription", func(p *gorm.Mission) string { return p.OrganizationDescription })
	m.OrganizationType = str("organizationType", func(p *gorm.Mission) string { return p.OrganizationType })
	m.OrganizationFullAddress = str("organizationFullAddress", func(p *gorm.Mission) string { return p.OrganizationFullAddress })
	m.OrganizationPostCode = str("organizationPostCode", func(p *gorm.Mission) string { return p.OrganizationPostCode })
	m.OrganizationCity = str("organizationCity", func(p *gorm.Mission) string { return p.OrganizationCity })

	if has("addresses") || prev == nil {
		var previous []gorm.Address
		if prev != nil {
			previous = prev.Addresses
		}
		m.Addresses = datatypes.JSONSlice[gorm.Address](buildAddresses(entry.List("addresses"), previous, m.Country))
	} else {
		m.Addresses = prev.Addresses
	}

	clampColumns(m)

	if rules := b.rules.For(pub.ID); len(rules) > 0 {
		m.Description = ApplyTextRules(m.Description, rules)
	}

	exempt := pub.ModerationExempt || (b.isExempt != nil && b.isExempt(pub.ID))
	m.StatusCode, m.StatusComment = Moderate(m, exempt)

	return m, nil
}

// clampColumns cuts feed values to the width of their varchar column
func clampColumns(m *gorm.Mission) {
	m.Domain = clamp(m.Domain, 100)
	m.DomainOriginal = clamp(m.DomainOriginal, 255)
	m.Activity = clamp(m.Activity, 255)
	m.Remote = clamp(m.Remote, 20)
	m.Country = clamp(m.Country, 10)
	m.OrganizationClientID = clamp(m.OrganizationClientID, 255)
	m.OrganizationRNA = clamp(m.OrganizationRNA, 50)
	m.OrganizationSiren = clamp(m.OrganizationSiren, 50)
	m.OrganizationSiret = clamp(m.OrganizationSiret, 50)
	m.OrganizationType = clamp(m.OrganizationType, 255)
	m.OrganizationPostCode = clamp(m.OrganizationPostCode, 20)
	m.OrganizationCity = clamp(m.OrganizationCity, 255)
}

func clamp(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}

// normalizeDescription returns the plain text and sanitized HTML of a feed description
func normalizeDescription(raw string) (string, string) {
	if raw == "" {
		return "", ""
	}
	if common.LooksLikeHTML(raw) {
		return common.HTMLToText(raw), common.SanitizeHTML(raw)
	}
	text := common.NormalizeWhitespace(raw)
	return text, common.SanitizeHTML(strings.ReplaceAll(text, "\n", "<br>"))
}

func parseFeedDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range feedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// buildAddresses maps feed addresses. An address typed exactly as in the previous
// snapshot keeps its geocoding; others are tagged for the geocoder.
func buildAddresses(entries []dtos.FeedMission, previous []gorm.Address, country string) []gorm.Address {
	addresses := make([]gorm.Address, 0, len(entries))
	for _, entry := range entries {
		address := gorm.Address{
			Street:         entry.String("street"),
			City:           entry.String("city"),
			PostalCode:     entry.String("postalCode"),
			DepartmentCode: entry.String("departmentCode"),
			DepartmentName: entry.String("departmentName"),
			Region:         entry.String("region"),
			Country:        strings.ToUpper(entry.String("country")),
		}
		if address.Country == "" {
			address.Country = country
		}
		fillDepartmentFromPostalCode(&address)

		if lat, lon, ok := feedCoordinates(entry); ok {
			address.Latitude = &lat
			address.Longitude = &lon
			address.GeolocStatus = constants.GeolocEnrichedByPublisher
			addresses = append(addresses, address)
			continue
		}

		if reused, ok := reuseGeocoding(address, previous); ok {
			addresses = append(addresses, reused)
			continue
		}

		if address.Street == "" && address.City == "" && address.PostalCode == "" {
			address.GeolocStatus = constants.GeolocNoData
		} else {
			address.GeolocStatus = constants.GeolocShouldEnrich
		}
		addresses = append(addresses, address)
	}
	return addresses
}

// reuseGeocoding returns the previous geocoded version of an unchanged address.
// Failed lookups are retried.
func reuseGeocoding(address gorm.Address, previous []gorm.Address) (gorm.Address, bool) {
	for _, p := range previous {
		if !p.SameLocation(address) {
			continue
		}
		switch p.GeolocStatus {
		case constants.GeolocEnriched, constants.GeolocNotFound, constants.GeolocNoData:
			return p, true
		}
	}
	return gorm.Address{}, false
}

func fillDepartmentFromPostalCode(address *gorm.Address) {
	if address.DepartmentCode == "" {
		address.DepartmentCode = constants.DepartmentCodeFromPostalCode(address.PostalCode)
	}
	if dept, ok := constants.LookupDepartment(address.DepartmentCode); ok {
		if address.DepartmentName == "" {
			address.DepartmentName = dept.Name
		}
		if address.Region == "" {
			address.Region = dept.Region
		}
	}
}

// feedCoordinates reads <location><lat/><lon/></location> or a legacy "lon,lat" pair
func feedCoordinates(entry dtos.FeedMission) (float64, float64, bool) {
	if location := entry.Map("location"); location != nil {
		lat, latOK := location.Float("lat")
		lon, lonOK := location.Float("lon")
		if latOK && lonOK {
			return lat, lon, true
		}
	}
	if pair := entry.String("lonlat"); pair != "" {
		parts := strings.FieldsFunc(pair, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
		if len(parts) == 2 {
			lon, errLon := strconv.ParseFloat(parts[0], 64)
			lat, errLat := strconv.ParseFloat(parts[1], 64)
			if errLon == nil && errLat == nil {
				return lat, lon, true
			}
		}
	}
	return 0, 0, false
}

// copyResolution carries the organization resolution of the previous state
func copyResolution(dst, src *gorm.Mission) {
	dst.OrganizationID = src.OrganizationID
	dst.OrganizationNameVerified = src.OrganizationNameVerified
	dst.OrganizationRNAVerified = src.OrganizationRNAVerified
	dst.OrganizationSirenVerified = src.OrganizationSirenVerified
	dst.OrganizationSiretVerified = src.OrganizationSiretVerified
	dst.OrganizationAddressVerified = src.OrganizationAddressVerified
	dst.OrganizationCityVerified = src.OrganizationCityVerified
	dst.OrganizationPostalCodeVerified = src.OrganizationPostalCodeVerified
	dst.OrganizationVerificationStatus = src.OrganizationVerificationStatus
}
