package gorm

import (
	"time"

	"civic-engagement/missionhub/internal/constants"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// MissionModeration is the decision of one moderating publisher on one mission
type MissionModeration struct {
	ID          string                    `gorm:"column:id;primaryKey;type:varchar(36)"`
	MissionID   string                    `gorm:"column:mission_id;type:varchar(36);not null;uniqueIndex:idx_mission_moderator"`
	ModeratorID string                    `gorm:"column:moderator_id;type:varchar(36);not null;uniqueIndex:idx_mission_moderator"`
	Status      constants.ModeratorStatus `gorm:"column:status;type:varchar(20);not null;index"`
	Comment     string                    `gorm:"column:comment;type:text"`
	Note        string                    `gorm:"column:note;type:text"`
	Title       string                    `gorm:"column:title;type:text"`
	Date        *time.Time                `gorm:"column:date"`
	// last automatic evaluation, decision changed or not
	EvaluatedAt *time.Time `gorm:"column:evaluated_at;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;index"`
}

func (MissionModeration) TableName() string {
	return "mission_moderations"
}

func (m *MissionModeration) BeforeCreate(tx *gormlib.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ModerationEvent records a per-moderator status transition.
// UserID and UserName are empty for automatic decisions.
type ModerationEvent struct {
	ID             string                    `gorm:"column:id;primaryKey;type:varchar(36)"`
	MissionID      string                    `gorm:"column:mission_id;type:varchar(36);not null;index"`
	ModeratorID    string                    `gorm:"column:moderator_id;type:varchar(36);not null;index"`
	UserID         string                    `gorm:"column:user_id;type:varchar(36)"`
	UserName       string                    `gorm:"column:user_name;type:varchar(255)"`
	InitialStatus  constants.ModeratorStatus `gorm:"column:initial_status;type:varchar(20)"`
	NewStatus      constants.ModeratorStatus `gorm:"column:new_status;type:varchar(20)"`
	InitialComment string                    `gorm:"column:initial_comment;type:text"`
	NewComment     string                    `gorm:"column:new_comment;type:text"`
	CreatedAt      time.Time                 `gorm:"column:created_at;index"`
}

func (ModerationEvent) TableName() string {
	return "moderation_events"
}

func (e *ModerationEvent) BeforeCreate(tx *gormlib.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
