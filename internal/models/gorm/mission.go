package gorm

import (
	"time"

	"civic-engagement/missionhub/internal/constants"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	gormlib "gorm.io/gorm"
)

// Address is one location of a mission, stored as a JSON array on the mission row
type Address struct {
	Street         string                 `json:"street,omitempty"`
	City           string                 `json:"city,omitempty"`
	PostalCode     string                 `json:"postalCode,omitempty"`
	DepartmentCode string                 `json:"departmentCode,omitempty"`
	DepartmentName string                 `json:"departmentName,omitempty"`
	Region         string                 `json:"region,omitempty"`
	Country        string                 `json:"country,omitempty"`
	Latitude       *float64               `json:"latitude,omitempty"`
	Longitude      *float64               `json:"longitude,omitempty"`
	GeolocStatus   constants.GeolocStatus `json:"geolocStatus,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set
func (a Address) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// SameLocation reports whether two addresses describe the same place as typed by the publisher
func (a Address) SameLocation(b Address) bool {
	return a.Street == b.Street && a.City == b.City && a.PostalCode == b.PostalCode
}

// Mission is the canonical record of one partner mission, unique per (publisher_id, client_id)
type Mission struct {
	ID          string `gorm:"column:id;primaryKey;type:varchar(36)"`
	PublisherID string `gorm:"column:publisher_id;type:varchar(36);not null;uniqueIndex:idx_missions_publisher_client"`
	ClientID    string `gorm:"column:client_id;type:varchar(255);not null;uniqueIndex:idx_missions_publisher_client"`

	PublisherName string `gorm:"column:publisher_name;type:text"`
	PublisherLogo string `gorm:"column:publisher_logo;type:text"`
	PublisherURL  string `gorm:"column:publisher_url;type:text"`

	// Content
	Title           string                      `gorm:"column:title;type:text"`
	Description     string                      `gorm:"column:description;type:text"`
	DescriptionHTML string                      `gorm:"column:description_html;type:text"`
	Tags            datatypes.JSONSlice[string] `gorm:"column:tags"`
	Schedule        string                      `gorm:"column:schedule;type:text"`
	ApplicationURL  string                      `gorm:"column:application_url;type:text"`
	PostedAt        *time.Time                  `gorm:"column:posted_at"`
	StartAt         *time.Time                  `gorm:"column:start_at"`
	EndAt           *time.Time                  `gorm:"column:end_at"`
	Duration        *int                        `gorm:"column:duration"`
	Places          *int                        `gorm:"column:places"`
	Domain          string                      `gorm:"column:domain;type:varchar(100)"`
	DomainOriginal  string                      `gorm:"column:domain_original;type:varchar(255)"`
	Activity        string                      `gorm:"column:activity;type:varchar(255)"`
	Remote          string                      `gorm:"column:remote;type:varchar(20)"`
	Country         string                      `gorm:"column:country;type:varchar(10)"`
	OpenToMinors    bool                        `gorm:"column:open_to_minors"`

	// Location
	Addresses datatypes.JSONSlice[Address] `gorm:"column:addresses"`

	// Organization as declared by the publisher
	OrganizationClientID    string `gorm:"column:organization_client_id;type:varchar(255)"`
	OrganizationName        string `gorm:"column:organization_name;type:text"`
	OrganizationRNA         string `gorm:"column:organization_rna;type:varchar(50)"`
	OrganizationSiren       string `gorm:"column:organization_siren;type:varchar(50)"`
	OrganizationSiret       string `gorm:"column:organization_siret;type:varchar(50)"`
	OrganizationURL         string `gorm:"column:organization_url;type:text"`
	OrganizationLogo        string `gorm:"column:organization_logo;type:text"`
	OrganizationDescription string `gorm:"column:organization_description;type:text"`
	OrganizationType        string `gorm:"column:organization_type;type:varchar(255)"`
	OrganizationFullAddress string `gorm:"column:organization_full_address;type:text"`
	OrganizationPostCode    string `gorm:"column:organization_post_code;type:varchar(20)"`
	OrganizationCity        string `gorm:"column:organization_city;type:varchar(255)"`

	// Organization as resolved against the registry
	OrganizationID                 *string                      `gorm:"column:organization_id;type:varchar(36);index"`
	OrganizationNameVerified       string                       `gorm:"column:organization_name_verified;type:text"`
	OrganizationRNAVerified        string                       `gorm:"column:organization_rna_verified;type:varchar(50)"`
	OrganizationSirenVerified      string                       `gorm:"column:organization_siren_verified;type:varchar(50)"`
	OrganizationSiretVerified      string                       `gorm:"column:organization_siret_verified;type:varchar(50)"`
	OrganizationAddressVerified    string                       `gorm:"column:organization_address_verified;type:text"`
	OrganizationCityVerified       string                       `gorm:"column:organization_city_verified;type:varchar(255)"`
	OrganizationPostalCodeVerified string                       `gorm:"column:organization_postal_code_verified;type:varchar(20)"`
	OrganizationVerificationStatus constants.VerificationStatus `gorm:"column:organization_verification_status;type:varchar(64)"`

	// Global moderation
	StatusCode    constants.StatusCode `gorm:"column:status_code;type:varchar(20);index"`
	StatusComment string               `gorm:"column:status_comment;type:text"`

	// Lifecycle
	Deleted    bool       `gorm:"column:deleted;not null;default:false;index"`
	DeletedAt  *time.Time `gorm:"column:deleted_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;index"`
	LastSyncAt time.Time  `gorm:"column:last_sync_at;index"`

	// Loaded on demand; one decision per moderator
	Moderations []MissionModeration `gorm:"foreignKey:MissionID"`
}

// TableName specifies the table name for GORM
func (Mission) TableName() string {
	return "missions"
}

// BeforeCreate assigns the internal id once; it never changes afterwards
func (m *Mission) BeforeCreate(tx *gormlib.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ModerationFor returns the decision of a moderator, if any
func (m *Mission) ModerationFor(moderatorID string) *MissionModeration {
	for i := range m.Moderations {
		if m.Moderations[i].ModeratorID == moderatorID {
			return &m.Moderations[i]
		}
	}
	return nil
}

// City returns the city of the first address
func (m *Mission) City() string {
	if len(m.Addresses) == 0 {
		return ""
	}
	return m.Addresses[0].City
}
