package repositories

import (
	"context"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// HistoryRepo appends mission history events. Rows are never updated.
type HistoryRepo struct {
	db *gormlib.DB
}

func NewHistoryRepo(db *gormlib.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Append inserts events in batches
func (r *HistoryRepo) Append(ctx context.Context, events []*gorm.MissionHistoryEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(events, constants.DefaultUpsertBatchSize).Error
}

// ListByMission returns the events of a mission, oldest first
func (r *HistoryRepo) ListByMission(ctx context.Context, missionID string) ([]*gorm.MissionHistoryEvent, error) {
	var events []*gorm.MissionHistoryEvent
	err := r.db.WithContext(ctx).
		Where("mission_id = ?", missionID).
		Order("date ASC, type ASC").
		Find(&events).Error
	return events, err
}

// StatusHistory returns the events carrying a status snapshot, oldest first
func (r *HistoryRepo) StatusHistory(ctx context.Context, missionID string) ([]*gorm.MissionHistoryEvent, error) {
	var events []*gorm.MissionHistoryEvent
	err := r.db.WithContext(ctx).
		Where("mission_id = ? AND type IN ?", missionID,
			[]constants.HistoryEventType{constants.HistoryCreated, constants.HistoryUpdatedStatus}).
		Order("date ASC").
		Find(&events).Error
	return events, err
}
