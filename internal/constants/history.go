package constants

// HistoryEventType tags one kind of change in a mission state transition
type HistoryEventType string

const (
	HistoryCreated                HistoryEventType = "Created"
	HistoryDeleted                HistoryEventType = "Deleted"
	HistoryUpdatedStartDate       HistoryEventType = "UpdatedStartDate"
	HistoryUpdatedEndDate         HistoryEventType = "UpdatedEndDate"
	HistoryUpdatedDescription     HistoryEventType = "UpdatedDescription"
	HistoryUpdatedDomain          HistoryEventType = "UpdatedDomain"
	HistoryUpdatedPlaces          HistoryEventType = "UpdatedPlaces"
	HistoryUpdatedModeratorStatus HistoryEventType = "UpdatedModeratorStatus"
	HistoryUpdatedStatus          HistoryEventType = "UpdatedStatus"
	HistoryUpdatedOther           HistoryEventType = "UpdatedOther"
)

// Tracked mission fields, as reported by the structural diff
const (
	FieldDeletedAt       = "deletedAt"
	FieldStartAt         = "startAt"
	FieldEndAt           = "endAt"
	FieldDescription     = "description"
	FieldDescriptionHTML = "descriptionHtml"
	FieldDomain          = "domain"
	FieldPlaces          = "places"
	FieldStatusCode      = "statusCode"
	FieldStatusComment   = "statusComment"
)

// ModeratorStatusField names the per-moderator status in a diff
func ModeratorStatusField(moderatorID string) string {
	return "moderation." + moderatorID + ".status"
}
