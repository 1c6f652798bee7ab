package entities

import "time"

// Analytics store rows. OldID holds the primary-store id and is unique per table;
// ID is the analytics-side key used by foreign keys.

type AnalyticsPartner struct {
	ID        string    `db:"id"`
	OldID     string    `db:"old_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type AnalyticsOrganization struct {
	ID         string    `db:"id"`
	OldID      string    `db:"old_id"`
	RNA        *string   `db:"rna"`
	Siren      *string   `db:"siren"`
	Siret      *string   `db:"siret"`
	Title      string    `db:"title"`
	City       *string   `db:"city"`
	PostalCode *string   `db:"postal_code"`
	Department *string   `db:"department"`
	Source     *string   `db:"source"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type AnalyticsMission struct {
	ID                 string     `db:"id"`
	OldID              string     `db:"old_id"`
	ClientID           string     `db:"client_id"`
	PartnerID          *string    `db:"partner_id"`
	OrganizationID     *string    `db:"organization_id"`
	Title              string     `db:"title"`
	Domain             *string    `db:"domain"`
	Activity           *string    `db:"activity"`
	Remote             *string    `db:"remote"`
	Places             *int       `db:"places"`
	City               *string    `db:"city"`
	PostalCode         *string    `db:"postal_code"`
	DepartmentCode     *string    `db:"department_code"`
	DepartmentName     *string    `db:"department_name"`
	Region             *string    `db:"region"`
	Country            *string    `db:"country"`
	Latitude           *float64   `db:"latitude"`
	Longitude          *float64   `db:"longitude"`
	GeolocStatus       *string    `db:"geoloc_status"`
	OrganizationStatus *string    `db:"organization_verification_status"`
	StatusCode         string     `db:"status_code"`
	StatusComment      *string    `db:"status_comment"`
	StartAt            *time.Time `db:"start_at"`
	EndAt              *time.Time `db:"end_at"`
	PostedAt           *time.Time `db:"posted_at"`
	Deleted            bool       `db:"deleted"`
	DeletedAt          *time.Time `db:"deleted_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

type AnalyticsImport struct {
	ID           string     `db:"id"`
	OldID        string     `db:"old_id"`
	PartnerID    *string    `db:"partner_id"`
	Status       string     `db:"status"`
	CreatedCount int        `db:"created_count"`
	UpdatedCount int        `db:"updated_count"`
	DeletedCount int        `db:"deleted_count"`
	RefusedCount int        `db:"refused_count"`
	TotalCount   int        `db:"total_count"`
	StartedAt    time.Time  `db:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"`
	Error        *string    `db:"error"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

type AnalyticsModerationEvent struct {
	ID            string    `db:"id"`
	OldID         string    `db:"old_id"`
	MissionID     *string   `db:"mission_id"`
	ModeratorID   *string   `db:"moderator_id"`
	UserName      *string   `db:"user_name"`
	InitialStatus *string   `db:"initial_status"`
	NewStatus     string    `db:"new_status"`
	NewComment    *string   `db:"new_comment"`
	CreatedAt     time.Time `db:"created_at"`
}
