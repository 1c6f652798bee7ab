package constants

// ModeratorStatus is a per-moderator decision on a mission
type ModeratorStatus string

const (
	ModeratorPending  ModeratorStatus = "PENDING"
	ModeratorOngoing  ModeratorStatus = "ONGOING"
	ModeratorAccepted ModeratorStatus = "ACCEPTED"
	ModeratorRefused  ModeratorStatus = "REFUSED"
)

// Automatic refusal reasons of the per-moderator pass
const (
	ModeratorCommentCreationTooOld    = "MISSION_CREATION_DATE_TOO_OLD"
	ModeratorCommentDateNotCompatible = "MISSION_DATE_NOT_COMPATIBLE"
	ModeratorCommentContentTooShort   = "CONTENT_INSUFFICIENT"
	ModeratorCommentCityMissing       = "MISSION_CITY_MISSING"
)

// AutomaticModeratorName is recorded on events with no human actor
const AutomaticModeratorName = "Modération automatique"
