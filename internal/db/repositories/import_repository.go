package repositories

import (
	"context"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// ImportRepo handles the import run ledger
type ImportRepo struct {
	db *gormlib.DB
}

// NewImportRepo creates a new run ledger repository
func NewImportRepo(db *gormlib.DB) *ImportRepo {
	return &ImportRepo{db: db}
}

// Create records a new run
func (r *ImportRepo) Create(ctx context.Context, imp *gorm.Import) error {
	return r.db.WithContext(ctx).Create(imp).Error
}

// Save persists counters, status and finish time of a run
func (r *ImportRepo) Save(ctx context.Context, imp *gorm.Import) error {
	return r.db.WithContext(ctx).Save(imp).Error
}

// FindByID finds a run ledger entry
func (r *ImportRepo) FindByID(ctx context.Context, id string) (*gorm.Import, error) {
	var imp gorm.Import

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&imp).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &imp, nil
}

// LastMirrored returns the latest successful run of a publisher whose analytics mirror
// completed, or nil
func (r *ImportRepo) LastMirrored(ctx context.Context, publisherID string) (*gorm.Import, error) {
	var imp gorm.Import

	err := r.db.WithContext(ctx).
		Where("publisher_id = ? AND status = ? AND mirrored = ?", publisherID, constants.ImportSuccess, true).
		Order("started_at DESC").
		First(&imp).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &imp, nil
}

// List returns the most recent runs, optionally for one publisher
func (r *ImportRepo) List(ctx context.Context, publisherID string, limit int) ([]*gorm.Import, error) {
	var imports []*gorm.Import

	query := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit)
	if publisherID != "" {
		query = query.Where("publisher_id = ?", publisherID)
	}

	err := query.Find(&imports).Error
	return imports, err
}
