package repositories

import (
	"context"
	"time"

	"civic-engagement/missionhub/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModerationRepo handles per-moderator decisions and their events
type ModerationRepo struct {
	db *gormlib.DB
}

func NewModerationRepo(db *gormlib.DB) *ModerationRepo {
	return &ModerationRepo{db: db}
}

// RecordDecision upserts the decision of a moderator on a mission and appends the
// matching moderation event in one transaction
func (r *ModerationRepo) RecordDecision(ctx context.Context, decision *gorm.MissionModeration, event *gorm.ModerationEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "mission_id"},
				{Name: "moderator_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"status", "comment", "note", "title", "date", "evaluated_at", "updated_at"}),
		}).Create(decision).Error
		if err != nil {
			return err
		}
		if event == nil {
			return nil
		}
		return tx.Create(event).Error
	})
}

// TouchEvaluated records that the moderator re-evaluated missions without changing its decision
func (r *ModerationRepo) TouchEvaluated(ctx context.Context, moderatorID string, missionIDs []string, at time.Time) error {
	if len(missionIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&gorm.MissionModeration{}).
		Where("moderator_id = ? AND mission_id IN ?", moderatorID, missionIDs).
		Update("evaluated_at", at).Error
}

// FindDecision returns the decision of a moderator on a mission, if any
func (r *ModerationRepo) FindDecision(ctx context.Context, missionID, moderatorID string) (*gorm.MissionModeration, error) {
	var decision gorm.MissionModeration

	err := r.db.WithContext(ctx).
		Where("mission_id = ? AND moderator_id = ?", missionID, moderatorID).
		First(&decision).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &decision, nil
}

// ListEventsSince returns moderation events created at or after since
func (r *ModerationRepo) ListEventsSince(ctx context.Context, since time.Time) ([]*gorm.ModerationEvent, error) {
	var events []*gorm.ModerationEvent
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}
