package repositories

import (
	"context"
	"time"

	"civic-engagement/missionhub/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// AnalyticsRepo writes the reporting copy of partners, organizations, missions,
// imports and moderation events. Rows are matched on old_id, the primary-store id.
type AnalyticsRepo struct {
	db *sqlx.DB
}

func NewAnalyticsRepo(db *sqlx.DB) *AnalyticsRepo {
	return &AnalyticsRepo{db: db}
}

// SyncState is the analytics key and last mirrored update time of one row
type SyncState struct {
	ID        string    `db:"id"`
	OldID     string    `db:"old_id"`
	UpdatedAt time.Time `db:"updated_at"`
}

// FindStates returns the sync state of rows in table keyed by old_id.
// table is one of the fixed analytics table names.
func (r *AnalyticsRepo) FindStates(ctx context.Context, table string, oldIDs []string) (map[string]SyncState, error) {
	result := make(map[string]SyncState, len(oldIDs))
	if len(oldIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT id, old_id, updated_at FROM `+table+` WHERE old_id IN (?)`, oldIDs)
	if err != nil {
		return nil, err
	}

	var states []SyncState
	if err := r.db.SelectContext(ctx, &states, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, state := range states {
		result[state.OldID] = state
	}
	return result, nil
}

func (r *AnalyticsRepo) UpsertPartner(ctx context.Context, partner *entities.AnalyticsPartner) error {
	const query = `
		INSERT INTO partners (id, old_id, name, created_at, updated_at)
		VALUES (:id, :old_id, :name, :created_at, :updated_at)
		ON CONFLICT (old_id) DO UPDATE
		SET name = EXCLUDED.name,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.NamedExecContext(ctx, query, partner)
	return err
}

func (r *AnalyticsRepo) UpsertOrganization(ctx context.Context, org *entities.AnalyticsOrganization) error {
	const query = `
		INSERT INTO organizations (id, old_id, rna, siren, siret, title, city, postal_code, department, source, created_at, updated_at)
		VALUES (:id, :old_id, :rna, :siren, :siret, :title, :city, :postal_code, :department, :source, :created_at, :updated_at)
		ON CONFLICT (old_id) DO UPDATE
		SET rna = EXCLUDED.rna,
		    siren = EXCLUDED.siren,
		    siret = EXCLUDED.siret,
		    title = EXCLUDED.title,
		    city = EXCLUDED.city,
		    postal_code = EXCLUDED.postal_code,
		    department = EXCLUDED.department,
		    source = EXCLUDED.source,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.NamedExecContext(ctx, query, org)
	return err
}

func (r *AnalyticsRepo) UpsertMission(ctx context.Context, mission *entities.AnalyticsMission) error {
	const query = `
		INSERT INTO missions (
			id, old_id, client_id, partner_id, organization_id, title, domain, activity, remote, places,
			city, postal_code, department_code, department_name, region, country, latitude, longitude,
			geoloc_status, organization_verification_status, status_code, status_comment,
			start_at, end_at, posted_at, deleted, deleted_at, created_at, updated_at
		)
		VALUES (
			:id, :old_id, :client_id, :partner_id, :organization_id, :title, :domain, :activity, :remote, :places,
			:city, :postal_code, :department_code, :department_name, :region, :country, :latitude, :longitude,
			:geoloc_status, :organization_verification_status, :status_code, :status_comment,
			:start_at, :end_at, :posted_at, :deleted, :deleted_at, :created_at, :updated_at
		)
		ON CONFLICT (old_id) DO UPDATE
		SET client_id = EXCLUDED.client_id,
		    partner_id = EXCLUDED.partner_id,
		    organization_id = EXCLUDED.organization_id,
		    title = EXCLUDED.title,
		    domain = EXCLUDED.domain,
		    activity = EXCLUDED.activity,
		    remote = EXCLUDED.remote,
		    places = EXCLUDED.places,
		    city = EXCLUDED.city,
		    postal_code = EXCLUDED.postal_code,
		    department_code = EXCLUDED.department_code,
		    department_name = EXCLUDED.department_name,
		    region = EXCLUDED.region,
		    country = EXCLUDED.country,
		    latitude = EXCLUDED.latitude,
		    longitude = EXCLUDED.longitude,
		    geoloc_status = EXCLUDED.geoloc_status,
		    organization_verification_status = EXCLUDED.organization_verification_status,
		    status_code = EXCLUDED.status_code,
		    status_comment = EXCLUDED.status_comment,
		    start_at = EXCLUDED.start_at,
		    end_at = EXCLUDED.end_at,
		    posted_at = EXCLUDED.posted_at,
		    deleted = EXCLUDED.deleted,
		    deleted_at = EXCLUDED.deleted_at,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.NamedExecContext(ctx, query, mission)
	return err
}

func (r *AnalyticsRepo) UpsertImport(ctx context.Context, imp *entities.AnalyticsImport) error {
	const query = `
		INSERT INTO imports (
			id, old_id, partner_id, status, created_count, updated_count, deleted_count, refused_count,
			total_count, started_at, finished_at, error, updated_at
		)
		VALUES (
			:id, :old_id, :partner_id, :status, :created_count, :updated_count, :deleted_count, :refused_count,
			:total_count, :started_at, :finished_at, :error, :updated_at
		)
		ON CONFLICT (old_id) DO UPDATE
		SET status = EXCLUDED.status,
		    created_count = EXCLUDED.created_count,
		    updated_count = EXCLUDED.updated_count,
		    deleted_count = EXCLUDED.deleted_count,
		    refused_count = EXCLUDED.refused_count,
		    total_count = EXCLUDED.total_count,
		    finished_at = EXCLUDED.finished_at,
		    error = EXCLUDED.error,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.NamedExecContext(ctx, query, imp)
	return err
}

// InsertModerationEvent mirrors an immutable moderation event; replays are ignored
func (r *AnalyticsRepo) InsertModerationEvent(ctx context.Context, event *entities.AnalyticsModerationEvent) error {
	const query = `
		INSERT INTO moderation_events (
			id, old_id, mission_id, moderator_id, user_name, initial_status, new_status, new_comment, created_at
		)
		VALUES (
			:id, :old_id, :mission_id, :moderator_id, :user_name, :initial_status, :new_status, :new_comment, :created_at
		)
		ON CONFLICT (old_id) DO NOTHING
	`

	_, err := r.db.NamedExecContext(ctx, query, event)
	return err
}

// FindMission reads one mirrored mission by primary-store id
func (r *AnalyticsRepo) FindMission(ctx context.Context, oldID string) (*entities.AnalyticsMission, error) {
	var mission entities.AnalyticsMission
	err := r.db.GetContext(ctx, &mission, r.db.Rebind(`SELECT * FROM missions WHERE old_id = ?`), oldID)
	if err != nil {
		return nil, err
	}
	return &mission, nil
}

// Ping checks the analytics connection
func (r *AnalyticsRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
