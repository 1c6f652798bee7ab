package gorm

import (
	"time"

	"civic-engagement/missionhub/internal/constants"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// Import is the run ledger entry of one publisher feed import
type Import struct {
	ID            string                 `gorm:"column:id;primaryKey;type:varchar(36)"`
	PublisherID   string                 `gorm:"column:publisher_id;type:varchar(36);not null;index"`
	PublisherName string                 `gorm:"column:publisher_name;type:varchar(255)"`
	Status        constants.ImportStatus `gorm:"column:status;type:varchar(20);not null;index"`
	CreatedCount  int                    `gorm:"column:created_count;not null;default:0"`
	UpdatedCount  int                    `gorm:"column:updated_count;not null;default:0"`
	DeletedCount  int                    `gorm:"column:deleted_count;not null;default:0"`
	RefusedCount  int                    `gorm:"column:refused_count;not null;default:0"`
	TotalCount    int                    `gorm:"column:total_count;not null;default:0"`
	StartedAt     time.Time              `gorm:"column:started_at;not null;index"`
	FinishedAt    *time.Time             `gorm:"column:finished_at"`
	Error         string                 `gorm:"column:error;type:text"`
	// Mirrored is set once every mission changed since the previous mirrored run reached analytics
	Mirrored  bool      `gorm:"column:mirrored;not null;default:false"`
	UpdatedAt time.Time `gorm:"column:updated_at;index"`
}

func (Import) TableName() string {
	return "imports"
}

func (i *Import) BeforeCreate(tx *gormlib.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Duration returns the wall-clock duration of a finished run
func (i *Import) Duration() time.Duration {
	if i.FinishedAt == nil {
		return 0
	}
	return i.FinishedAt.Sub(i.StartedAt)
}
