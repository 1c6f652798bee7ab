package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	gormlib "gorm.io/gorm"
)

// Organization is a legal entity from the national registry or the grants API
type Organization struct {
	ID          string     `gorm:"column:id;primaryKey;type:varchar(36)"`
	RNA         string     `gorm:"column:rna;type:varchar(20);index"`
	Siren       string     `gorm:"column:siren;type:varchar(20);index"`
	Siret       string     `gorm:"column:siret;type:varchar(20);index"`
	Title       string     `gorm:"column:title;type:text"`
	ShortTitle  string     `gorm:"column:short_title;type:text"`
	Slug        string     `gorm:"column:slug;type:text;index"`
	Object      string     `gorm:"column:object;type:text"`
	Nature      string     `gorm:"column:nature;type:varchar(20)"`
	Status      string     `gorm:"column:status;type:varchar(20)"`
	Website     string     `gorm:"column:website;type:text"`
	Email       string     `gorm:"column:email;type:text"`
	Phone       string     `gorm:"column:phone;type:varchar(50)"`
	Address     string     `gorm:"column:address;type:text"`
	City        string     `gorm:"column:city;type:varchar(255)"`
	PostalCode  string     `gorm:"column:postal_code;type:varchar(20)"`
	Department  string     `gorm:"column:department;type:varchar(10)"`
	CreatedDate *time.Time `gorm:"column:created_date"`
	UpdatedDate *time.Time `gorm:"column:updated_date"`
	Source      string     `gorm:"column:source;type:varchar(50)"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;index"`
}

// TableName specifies the table name for GORM
func (Organization) TableName() string {
	return "organizations"
}

func (o *Organization) BeforeCreate(tx *gormlib.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrganizationNameMatch caches approximate name lookups so ambiguous names are not searched again
type OrganizationNameMatch struct {
	ID              string                      `gorm:"column:id;primaryKey;type:varchar(36)"`
	Name            string                      `gorm:"column:name;type:text;not null;uniqueIndex"`
	Slug            string                      `gorm:"column:slug;type:text;index"`
	OrganizationIDs datatypes.JSONSlice[string] `gorm:"column:organization_ids"`
	MissionIDs      datatypes.JSONSlice[string] `gorm:"column:mission_ids"`
	// Set by an operator once a candidate has been confirmed
	ConfirmedOrganizationID *string   `gorm:"column:confirmed_organization_id;type:varchar(36)"`
	CreatedAt               time.Time `gorm:"column:created_at"`
	UpdatedAt               time.Time `gorm:"column:updated_at"`
}

func (OrganizationNameMatch) TableName() string {
	return "organization_name_matches"
}

func (m *OrganizationNameMatch) BeforeCreate(tx *gormlib.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// HasMission reports whether the mission id is already attached to the match
func (m *OrganizationNameMatch) HasMission(missionID string) bool {
	for _, id := range m.MissionIDs {
		if id == missionID {
			return true
		}
	}
	return false
}
