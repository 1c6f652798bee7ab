package repositories

import (
	"context"
	"time"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MissionRepo handles missions table operations
type MissionRepo struct {
	db            *gormlib.DB
	updateColumns []string
	schemaErr     error
}

// NewMissionRepo creates a new mission repository
func NewMissionRepo(db *gormlib.DB) *MissionRepo {
	columns, err := missionUpdateColumns(db)
	return &MissionRepo{db: db, updateColumns: columns, schemaErr: err}
}

// missionUpdateColumns lists every column overwritten on conflict; id and created_at are kept
func missionUpdateColumns(db *gormlib.DB) ([]string, error) {
	stmt := &gormlib.Statement{DB: db}
	if err := stmt.Parse(&gorm.Mission{}); err != nil {
		return nil, err
	}
	columns := make([]string, 0, len(stmt.Schema.DBNames))
	for _, name := range stmt.Schema.DBNames {
		if name == "id" || name == "created_at" {
			continue
		}
		columns = append(columns, name)
	}
	return columns, nil
}

// UpsertBatch inserts missions or overwrites every field of the existing row.
// ON CONFLICT (publisher_id, client_id), so the stored id never changes.
func (r *MissionRepo) UpsertBatch(ctx context.Context, missions []*gorm.Mission) error {
	if len(missions) == 0 {
		return nil
	}
	if r.schemaErr != nil {
		return r.schemaErr
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "publisher_id"},
				{Name: "client_id"},
			},
			DoUpdates: clause.AssignmentColumns(r.updateColumns),
		}).
		CreateInBatches(missions, constants.DefaultUpsertBatchSize).Error
}

// FindByClientIDs returns the stored missions of a publisher keyed by client id,
// with their per-moderator decisions loaded
func (r *MissionRepo) FindByClientIDs(ctx context.Context, publisherID string, clientIDs []string) (map[string]*gorm.Mission, error) {
	result := make(map[string]*gorm.Mission, len(clientIDs))
	if len(clientIDs) == 0 {
		return result, nil
	}

	var missions []*gorm.Mission
	err := r.db.WithContext(ctx).
		Preload("Moderations").
		Where("publisher_id = ? AND client_id IN ?", publisherID, clientIDs).
		Find(&missions).Error
	if err != nil {
		return nil, err
	}

	for _, m := range missions {
		result[m.ClientID] = m
	}
	return result, nil
}

// FindByID finds a mission by internal id
func (r *MissionRepo) FindByID(ctx context.Context, id string) (*gorm.Mission, error) {
	var mission gorm.Mission

	err := r.db.WithContext(ctx).
		Preload("Moderations").
		Where("id = ?", id).
		First(&mission).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &mission, nil
}

// FindByIDs loads missions by internal id
func (r *MissionRepo) FindByIDs(ctx context.Context, ids []string) ([]*gorm.Mission, error) {
	var missions []*gorm.Mission
	if len(ids) == 0 {
		return missions, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&missions).Error
	return missions, err
}

// TouchSynced bumps last_sync_at of unchanged missions without touching updated_at
func (r *MissionRepo) TouchSynced(ctx context.Context, ids []string, runStart time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&gorm.Mission{}).
		Where("id IN ?", ids).
		UpdateColumn("last_sync_at", runStart).Error
}

// ListIDsNotSyncedSince returns live missions of a publisher that the run starting at runStart did not see
func (r *MissionRepo) ListIDsNotSyncedSince(ctx context.Context, publisherID string, runStart time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&gorm.Mission{}).
		Where("publisher_id = ? AND deleted = ? AND last_sync_at < ?", publisherID, false, runStart).
		Pluck("id", &ids).Error
	return ids, err
}

// MarkDeleted soft-deletes missions
func (r *MissionRepo) MarkDeleted(ctx context.Context, ids []string, deletedAt time.Time, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&gorm.Mission{}).
		Where("id IN ? AND deleted = ?", ids, false).
		UpdateColumns(map[string]interface{}{
			"deleted":    true,
			"deleted_at": deletedAt,
			"updated_at": now,
		}).Error
}

// ListUpdatedSince returns missions of a publisher whose content changed at or after since
func (r *MissionRepo) ListUpdatedSince(ctx context.Context, publisherID string, since time.Time) ([]*gorm.Mission, error) {
	var missions []*gorm.Mission
	err := r.db.WithContext(ctx).
		Where("publisher_id = ? AND updated_at >= ?", publisherID, since).
		Order("updated_at ASC").
		Find(&missions).Error
	return missions, err
}

// FindAwaitingModeration returns live accepted missions the moderator has not decided on,
// then those it left PENDING, least recently evaluated first
func (r *MissionRepo) FindAwaitingModeration(ctx context.Context, moderatorID string, limit int) ([]*gorm.Mission, error) {
	var missions []*gorm.Mission

	err := r.db.WithContext(ctx).
		Select("missions.*").
		Joins("LEFT JOIN mission_moderations mm ON mm.mission_id = missions.id AND mm.moderator_id = ?", moderatorID).
		Preload("Moderations").
		Where("missions.deleted = ? AND missions.status_code = ?", false, constants.StatusAccepted).
		Where("mm.id IS NULL OR mm.status = ?", constants.ModeratorPending).
		Order("CASE WHEN mm.id IS NULL THEN 0 ELSE 1 END").
		Order("mm.evaluated_at ASC").
		Order("missions.created_at ASC").
		Limit(limit).
		Find(&missions).Error

	return missions, err
}

// CountByPublisher returns the number of live missions of a publisher
func (r *MissionRepo) CountByPublisher(ctx context.Context, publisherID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&gorm.Mission{}).
		Where("publisher_id = ? AND deleted = ?", publisherID, false).
		Count(&count).Error
	return count, err
}
