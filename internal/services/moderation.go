package services

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/models/gorm"
)

// encodingArtifact marks numeric character references left in text by a broken export
const encodingArtifact = "&#"

var countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// moderationRule refuses a mission with comment when refuse returns true
type moderationRule struct {
	comment string
	refuse  func(m *gorm.Mission) bool
}

// Evaluated in order; the first refusal wins
var moderationRules = []moderationRule{
	{constants.CommentTitleMissing, func(m *gorm.Mission) bool {
		return strings.TrimSpace(m.Title) == ""
	}},
	{constants.CommentTitleEncoding, func(m *gorm.Mission) bool {
		return strings.Contains(m.Title, encodingArtifact)
	}},
	{constants.CommentTitleTooShort, func(m *gorm.Mission) bool {
		return len(strings.Fields(m.Title)) < 2
	}},
	{constants.CommentDescriptionMissing, func(m *gorm.Mission) bool {
		return strings.TrimSpace(m.Description) == ""
	}},
	{constants.CommentDescriptionEncoding, func(m *gorm.Mission) bool {
		return strings.Contains(m.Description, encodingArtifact)
	}},
	{constants.CommentDescriptionTooShort, func(m *gorm.Mission) bool {
		return utf8.RuneCountInString(m.Description) < constants.DescriptionMinLength
	}},
	{constants.CommentDescriptionTooLong, func(m *gorm.Mission) bool {
		return utf8.RuneCountInString(m.Description) > constants.DescriptionMaxLength
	}},
	{constants.CommentApplicationURLMissing, func(m *gorm.Mission) bool {
		return strings.TrimSpace(m.ApplicationURL) == ""
	}},
	{constants.CommentCountryInvalid, func(m *gorm.Mission) bool {
		return !countryCodePattern.MatchString(m.Country)
	}},
	{constants.CommentRemoteInvalid, func(m *gorm.Mission) bool {
		return !constants.RemoteValues[m.Remote]
	}},
	{constants.CommentPlacesInvalid, func(m *gorm.Mission) bool {
		return m.Places != nil && *m.Places <= 0
	}},
	{constants.CommentDomainInvalid, func(m *gorm.Mission) bool {
		return !constants.MissionDomains[m.Domain]
	}},
	{constants.CommentOrganizationEncoding, func(m *gorm.Mission) bool {
		return strings.Contains(m.OrganizationName, encodingArtifact)
	}},
}

// Moderate applies the content rules to a normalized mission. Exempt publishers
// are moderated upstream and always accepted.
func Moderate(m *gorm.Mission, exempt bool) (constants.StatusCode, string) {
	if exempt {
		return constants.StatusAccepted, ""
	}
	for _, rule := range moderationRules {
		if rule.refuse(m) {
			return constants.StatusRefused, rule.comment
		}
	}
	return constants.StatusAccepted, ""
}

// Per-moderator refusal thresholds
const (
	moderatorMaxMissionAgeMonths = 6
	moderatorMinRemainingDays    = 21
)

// ModeratorRules decides a moderator's automatic outcome for a mission. Missions
// no rule refuses stay PENDING for a human decision.
func ModeratorRules(m *gorm.Mission, now time.Time) (constants.ModeratorStatus, string) {
	if !m.CreatedAt.IsZero() && m.CreatedAt.Before(now.AddDate(0, -moderatorMaxMissionAgeMonths, 0)) {
		return constants.ModeratorRefused, constants.ModeratorCommentCreationTooOld
	}
	if m.EndAt != nil {
		if m.StartAt != nil && m.EndAt.Before(*m.StartAt) {
			return constants.ModeratorRefused, constants.ModeratorCommentDateNotCompatible
		}
		if m.EndAt.Before(now.AddDate(0, 0, moderatorMinRemainingDays)) {
			return constants.ModeratorRefused, constants.ModeratorCommentDateNotCompatible
		}
	}
	if utf8.RuneCountInString(m.Description) < constants.DescriptionMinLength {
		return constants.ModeratorRefused, constants.ModeratorCommentContentTooShort
	}
	if strings.TrimSpace(m.City()) == "" {
		return constants.ModeratorRefused, constants.ModeratorCommentCityMissing
	}
	return constants.ModeratorPending, ""
}
