package gorm

import (
	"time"

	"civic-engagement/missionhub/internal/constants"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	gormlib "gorm.io/gorm"
)

// MissionHistoryEvent is an immutable record of one mission state transition.
// Rows of type Created and UpdatedStatus carry the status snapshot, which makes
// them the status history of the mission.
type MissionHistoryEvent struct {
	ID            string                      `gorm:"column:id;primaryKey;type:varchar(36)"`
	MissionID     string                      `gorm:"column:mission_id;type:varchar(36);not null;index"`
	Type          constants.HistoryEventType  `gorm:"column:type;type:varchar(50);not null;index"`
	Date          time.Time                   `gorm:"column:date;not null;index"`
	ChangedFields datatypes.JSONSlice[string] `gorm:"column:changed_fields"`
	StatusCode    constants.StatusCode        `gorm:"column:status_code;type:varchar(20)"`
	StatusComment string                      `gorm:"column:status_comment;type:text"`
	CreatedAt     time.Time                   `gorm:"column:created_at"`
}

func (MissionHistoryEvent) TableName() string {
	return "mission_history_events"
}

func (e *MissionHistoryEvent) BeforeCreate(tx *gormlib.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
