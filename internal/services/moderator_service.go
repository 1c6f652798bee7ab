package services

import (
	"context"
	"fmt"
	"time"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/db/repositories"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/models/gorm"
)

// ModeratorStats counts the outcome of one moderator pass
type ModeratorStats struct {
	Evaluated int
	Refused   int
	Pending   int
	Unchanged int
}

// ModeratorService runs the automatic per-moderator decisions
type ModeratorService struct {
	missions         *repositories.MissionRepo
	moderations      *repositories.ModerationRepo
	history          *repositories.HistoryRepo
	trackedModerator string
	now              func() time.Time
}

func NewModeratorService(
	missions *repositories.MissionRepo,
	moderations *repositories.ModerationRepo,
	history *repositories.HistoryRepo,
	trackedModerator string,
) *ModeratorService {
	return &ModeratorService{
		missions:         missions,
		moderations:      moderations,
		history:          history,
		trackedModerator: trackedModerator,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// ModerateFor evaluates up to limit missions the moderator has not decided on.
// Every status change is recorded with an automatic moderation event; decisions
// of the tracked moderator also enter the mission history.
func (s *ModeratorService) ModerateFor(ctx context.Context, moderatorID string, limit int) (ModeratorStats, error) {
	var stats ModeratorStats

	missions, err := s.missions.FindAwaitingModeration(ctx, moderatorID, limit)
	if err != nil {
		return stats, fmt.Errorf("failed to load missions awaiting moderation: %w", err)
	}

	now := s.now()
	var unchanged []string
	for _, m := range missions {
		stats.Evaluated++
		status, comment := ModeratorRules(m, now)

		var initialStatus constants.ModeratorStatus
		var initialComment string
		if existing := m.ModerationFor(moderatorID); existing != nil {
			if existing.Status == status && existing.Comment == comment {
				stats.Unchanged++
				unchanged = append(unchanged, m.ID)
				continue
			}
			initialStatus, initialComment = existing.Status, existing.Comment
		}

		decision := &gorm.MissionModeration{
			MissionID:   m.ID,
			ModeratorID: moderatorID,
			Status:      status,
			Comment:     comment,
			Title:       m.Title,
			Date:        &now,
			EvaluatedAt: &now,
		}
		event := &gorm.ModerationEvent{
			MissionID:      m.ID,
			ModeratorID:    moderatorID,
			UserName:       constants.AutomaticModeratorName,
			InitialStatus:  initialStatus,
			NewStatus:      status,
			InitialComment: initialComment,
			NewComment:     comment,
		}
		if err := s.moderations.RecordDecision(ctx, decision, event); err != nil {
			logging.Error("[Moderator] Failed to record decision",
				"mission_id", m.ID, "moderator_id", moderatorID, "error", err)
			continue
		}

		if status == constants.ModeratorRefused {
			stats.Refused++
		} else {
			stats.Pending++
		}

		if moderatorID == s.trackedModerator {
			changed := []string{constants.ModeratorStatusField(moderatorID)}
			types := DeriveEventTypes(changed, false, s.trackedModerator)
			if err := s.history.Append(ctx, HistoryEvents(m, types, changed, now)); err != nil {
				logging.Warn("[Moderator] Failed to append history", "mission_id", m.ID, "error", err)
			}
		}
	}

	if err := s.moderations.TouchEvaluated(ctx, moderatorID, unchanged, now); err != nil {
		logging.Warn("[Moderator] Failed to record evaluation time", "moderator_id", moderatorID, "error", err)
	}

	return stats, nil
}
