package repositories

import (
	"context"

	"civic-engagement/missionhub/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// NameMatchRepo handles the approximate organization name match cache
type NameMatchRepo struct {
	db *gormlib.DB
}

func NewNameMatchRepo(db *gormlib.DB) *NameMatchRepo {
	return &NameMatchRepo{db: db}
}

// FindByNames returns cache entries keyed by organization name
func (r *NameMatchRepo) FindByNames(ctx context.Context, names []string) (map[string]*gorm.OrganizationNameMatch, error) {
	result := make(map[string]*gorm.OrganizationNameMatch, len(names))
	if len(names) == 0 {
		return result, nil
	}

	var matches []*gorm.OrganizationNameMatch
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&matches).Error; err != nil {
		return nil, err
	}
	for _, m := range matches {
		result[m.Name] = m
	}
	return result, nil
}

// Save inserts or updates a cache entry
func (r *NameMatchRepo) Save(ctx context.Context, match *gorm.OrganizationNameMatch) error {
	if match.ID == "" {
		return r.db.WithContext(ctx).Create(match).Error
	}
	return r.db.WithContext(ctx).Save(match).Error
}
