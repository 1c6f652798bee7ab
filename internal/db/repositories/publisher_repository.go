package repositories

import (
	"context"

	"civic-engagement/missionhub/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// PublisherRepo handles partner publishers
type PublisherRepo struct {
	db *gormlib.DB
}

func NewPublisherRepo(db *gormlib.DB) *PublisherRepo {
	return &PublisherRepo{db: db}
}

// ListWithFeed returns active publishers that supply a feed, in a stable order
func (r *PublisherRepo) ListWithFeed(ctx context.Context) ([]*gorm.Publisher, error) {
	var publishers []*gorm.Publisher
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND feed_url <> ?", true, "").
		Order("name ASC").
		Find(&publishers).Error
	return publishers, err
}

// ListModerators returns active publishers running the per-moderator pass
func (r *PublisherRepo) ListModerators(ctx context.Context) ([]*gorm.Publisher, error) {
	var publishers []*gorm.Publisher
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_moderator = ?", true, true).
		Order("name ASC").
		Find(&publishers).Error
	return publishers, err
}

// FindByID finds a publisher
func (r *PublisherRepo) FindByID(ctx context.Context, id string) (*gorm.Publisher, error) {
	var publisher gorm.Publisher

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&publisher).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &publisher, nil
}

// FindByIDs loads publishers by id
func (r *PublisherRepo) FindByIDs(ctx context.Context, ids []string) ([]*gorm.Publisher, error) {
	var publishers []*gorm.Publisher
	if len(ids) == 0 {
		return publishers, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&publishers).Error
	return publishers, err
}

// Create registers a publisher
func (r *PublisherRepo) Create(ctx context.Context, publisher *gorm.Publisher) error {
	return r.db.WithContext(ctx).Create(publisher).Error
}
