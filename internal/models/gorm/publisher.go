package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// Publisher is a partner that supplies a mission feed, moderates missions, or both
type Publisher struct {
	ID      string `gorm:"column:id;primaryKey;type:varchar(36)"`
	Name    string `gorm:"column:name;type:varchar(255);not null"`
	Logo    string `gorm:"column:logo;type:text"`
	URL     string `gorm:"column:url;type:text"`
	FeedURL string `gorm:"column:feed_url;type:text"`
	// Optional Basic-Auth credentials for the feed
	FeedUsername string `gorm:"column:feed_username;type:varchar(255)"`
	FeedPassword string `gorm:"column:feed_password;type:varchar(255)"`

	IsActive         bool `gorm:"column:is_active;not null;index"`
	IsModerator      bool `gorm:"column:is_moderator;not null;default:false"`
	ModerationExempt bool `gorm:"column:moderation_exempt;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;index"`
}

func (Publisher) TableName() string {
	return "publishers"
}

func (p *Publisher) BeforeCreate(tx *gormlib.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// HasFeed reports whether the publisher supplies missions
func (p *Publisher) HasFeed() bool {
	return p.FeedURL != ""
}
