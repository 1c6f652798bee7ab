package services

import (
	"context"
	"fmt"
	"time"

	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/db/repositories"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/metrics"
	"civic-engagement/missionhub/internal/models/entities"
	"civic-engagement/missionhub/internal/models/gorm"

	"github.com/google/uuid"
)

// Analytics table names, also used as metric kinds
const (
	mirrorPartners         = "partners"
	mirrorOrganizations    = "organizations"
	mirrorMissions         = "missions"
	mirrorImports          = "imports"
	mirrorModerationEvents = "moderation_events"
)

// MirrorStats counts mirrored records
type MirrorStats struct {
	Upserted int
	Skipped  int
	Failed   int
}

func (s *MirrorStats) Add(other MirrorStats) {
	s.Upserted += other.Upserted
	s.Skipped += other.Skipped
	s.Failed += other.Failed
}

// MirrorService copies primary-store changes into the analytics store. Rows are
// matched by old_id and skipped when the analytics updated_at already equals the
// primary one.
type MirrorService struct {
	missions    *repositories.MissionRepo
	orgs        *repositories.OrganizationRepo
	publishers  *repositories.PublisherRepo
	moderations *repositories.ModerationRepo
	analytics   *repositories.AnalyticsRepo
	metrics     *metrics.MetricsRegistry
}

func NewMirrorService(
	missions *repositories.MissionRepo,
	orgs *repositories.OrganizationRepo,
	publishers *repositories.PublisherRepo,
	moderations *repositories.ModerationRepo,
	analytics *repositories.AnalyticsRepo,
	metricsReg *metrics.MetricsRegistry,
) *MirrorService {
	return &MirrorService{
		missions:    missions,
		orgs:        orgs,
		publishers:  publishers,
		moderations: moderations,
		analytics:   analytics,
		metrics:     metricsReg,
	}
}

// sameInstant compares timestamps at the millisecond precision both stores keep
func sameInstant(a, b time.Time) bool {
	return a.Truncate(time.Millisecond).Equal(b.Truncate(time.Millisecond))
}

func (s *MirrorService) record(kind, result string) {
	if s.metrics != nil {
		s.metrics.MirrorRecordsTotal.WithLabelValues(kind, result).Inc()
	}
}

// SyncPublisher mirrors the publisher's missions changed at or after since, with
// the partner and organizations they reference
func (s *MirrorService) SyncPublisher(ctx context.Context, publisherID string, since time.Time) (MirrorStats, error) {
	var stats MirrorStats

	missions, err := s.missions.ListUpdatedSince(ctx, publisherID, since)
	if err != nil {
		return stats, fmt.Errorf("failed to list changed missions: %w", err)
	}
	if len(missions) == 0 {
		return stats, nil
	}

	partnerIDs, err := s.syncPartners(ctx, []string{publisherID})
	if err != nil {
		return stats, err
	}

	var orgIDs []string
	for _, m := range missions {
		if m.OrganizationID != nil {
			orgIDs = append(orgIDs, *m.OrganizationID)
		}
	}
	orgMap, orgStats, err := s.syncOrganizations(ctx, common.Unique(orgIDs))
	if err != nil {
		return stats, err
	}
	stats.Add(orgStats)

	oldIDs := make([]string, 0, len(missions))
	for _, m := range missions {
		oldIDs = append(oldIDs, m.ID)
	}
	states, err := s.analytics.FindStates(ctx, mirrorMissions, oldIDs)
	if err != nil {
		return stats, fmt.Errorf("failed to load mirrored missions: %w", err)
	}

	for _, m := range missions {
		state, exists := states[m.ID]
		if exists && sameInstant(state.UpdatedAt, m.UpdatedAt) {
			stats.Skipped++
			s.record(mirrorMissions, "skipped")
			continue
		}

		row := analyticsMission(m, partnerIDs[m.PublisherID], orgMap)
		if exists {
			row.ID = state.ID
		}
		if err := s.analytics.UpsertMission(ctx, row); err != nil {
			logging.Error("[Mirror] Failed to mirror mission", "mission_id", m.ID, "error", err)
			stats.Failed++
			s.record(mirrorMissions, "failed")
			continue
		}
		stats.Upserted++
		s.record(mirrorMissions, "upserted")
	}

	return stats, nil
}

// syncPartners upserts publishers and returns their analytics ids keyed by primary id
func (s *MirrorService) syncPartners(ctx context.Context, publisherIDs []string) (map[string]string, error) {
	ids := make(map[string]string, len(publisherIDs))
	if len(publisherIDs) == 0 {
		return ids, nil
	}

	publishers, err := s.publishers.FindByIDs(ctx, publisherIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load publishers: %w", err)
	}
	states, err := s.analytics.FindStates(ctx, mirrorPartners, publisherIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load mirrored partners: %w", err)
	}

	for _, pub := range publishers {
		state, exists := states[pub.ID]
		if exists {
			ids[pub.ID] = state.ID
			if sameInstant(state.UpdatedAt, pub.UpdatedAt) {
				s.record(mirrorPartners, "skipped")
				continue
			}
		} else {
			ids[pub.ID] = uuid.NewString()
		}

		row := &entities.AnalyticsPartner{
			ID:        ids[pub.ID],
			OldID:     pub.ID,
			Name:      pub.Name,
			CreatedAt: pub.CreatedAt,
			UpdatedAt: pub.UpdatedAt,
		}
		if err := s.analytics.UpsertPartner(ctx, row); err != nil {
			logging.Error("[Mirror] Failed to mirror partner", "publisher_id", pub.ID, "error", err)
			s.record(mirrorPartners, "failed")
			if !exists {
				delete(ids, pub.ID)
			}
			continue
		}
		s.record(mirrorPartners, "upserted")
	}
	return ids, nil
}

// syncOrganizations upserts organizations and returns their analytics ids keyed by primary id
func (s *MirrorService) syncOrganizations(ctx context.Context, orgIDs []string) (map[string]string, MirrorStats, error) {
	var stats MirrorStats
	ids := make(map[string]string, len(orgIDs))
	if len(orgIDs) == 0 {
		return ids, stats, nil
	}

	orgs, err := s.orgs.FindByIDs(ctx, orgIDs)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to load organizations: %w", err)
	}
	states, err := s.analytics.FindStates(ctx, mirrorOrganizations, orgIDs)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to load mirrored organizations: %w", err)
	}

	for _, org := range orgs {
		state, exists := states[org.ID]
		if exists {
			ids[org.ID] = state.ID
			if sameInstant(state.UpdatedAt, org.UpdatedAt) {
				stats.Skipped++
				s.record(mirrorOrganizations, "skipped")
				continue
			}
		} else {
			ids[org.ID] = uuid.NewString()
		}

		row := &entities.AnalyticsOrganization{
			ID:         ids[org.ID],
			OldID:      org.ID,
			RNA:        common.StrPtr(org.RNA),
			Siren:      common.StrPtr(org.Siren),
			Siret:      common.StrPtr(org.Siret),
			Title:      org.Title,
			City:       common.StrPtr(org.City),
			PostalCode: common.StrPtr(org.PostalCode),
			Department: common.StrPtr(org.Department),
			Source:     common.StrPtr(org.Source),
			CreatedAt:  org.CreatedAt,
			UpdatedAt:  org.UpdatedAt,
		}
		if err := s.analytics.UpsertOrganization(ctx, row); err != nil {
			logging.Error("[Mirror] Failed to mirror organization", "organization_id", org.ID, "error", err)
			stats.Failed++
			s.record(mirrorOrganizations, "failed")
			if !exists {
				delete(ids, org.ID)
			}
			continue
		}
		stats.Upserted++
		s.record(mirrorOrganizations, "upserted")
	}
	return ids, stats, nil
}

func analyticsMission(m *gorm.Mission, partnerID string, orgIDs map[string]string) *entities.AnalyticsMission {
	row := &entities.AnalyticsMission{
		ID:                 uuid.NewString(),
		OldID:              m.ID,
		ClientID:           m.ClientID,
		PartnerID:          common.StrPtr(partnerID),
		Title:              m.Title,
		Domain:             common.StrPtr(m.Domain),
		Activity:           common.StrPtr(m.Activity),
		Remote:             common.StrPtr(m.Remote),
		Places:             m.Places,
		Country:            common.StrPtr(m.Country),
		OrganizationStatus: common.StrPtr(string(m.OrganizationVerificationStatus)),
		StatusCode:         string(m.StatusCode),
		StatusComment:      common.StrPtr(m.StatusComment),
		StartAt:            m.StartAt,
		EndAt:              m.EndAt,
		PostedAt:           m.PostedAt,
		Deleted:            m.Deleted,
		DeletedAt:          m.DeletedAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.OrganizationID != nil {
		row.OrganizationID = common.StrPtr(orgIDs[*m.OrganizationID])
	}
	if len(m.Addresses) > 0 {
		address := m.Addresses[0]
		row.City = common.StrPtr(address.City)
		row.PostalCode = common.StrPtr(address.PostalCode)
		row.DepartmentCode = common.StrPtr(address.DepartmentCode)
		row.DepartmentName = common.StrPtr(address.DepartmentName)
		row.Region = common.StrPtr(address.Region)
		row.Latitude = address.Latitude
		row.Longitude = address.Longitude
		row.GeolocStatus = common.StrPtr(string(address.GeolocStatus))
	}
	return row
}

// SyncImport mirrors one run ledger entry
func (s *MirrorService) SyncImport(ctx context.Context, imp *gorm.Import) error {
	partnerIDs, err := s.syncPartners(ctx, []string{imp.PublisherID})
	if err != nil {
		return err
	}
	states, err := s.analytics.FindStates(ctx, mirrorImports, []string{imp.ID})
	if err != nil {
		return fmt.Errorf("failed to load mirrored import: %w", err)
	}

	row := &entities.AnalyticsImport{
		ID:           uuid.NewString(),
		OldID:        imp.ID,
		PartnerID:    common.StrPtr(partnerIDs[imp.PublisherID]),
		Status:       string(imp.Status),
		CreatedCount: imp.CreatedCount,
		UpdatedCount: imp.UpdatedCount,
		DeletedCount: imp.DeletedCount,
		RefusedCount: imp.RefusedCount,
		TotalCount:   imp.TotalCount,
		StartedAt:    imp.StartedAt,
		FinishedAt:   imp.FinishedAt,
		Error:        common.StrPtr(imp.Error),
		UpdatedAt:    imp.UpdatedAt,
	}
	if state, ok := states[imp.ID]; ok {
		row.ID = state.ID
	}
	if err := s.analytics.UpsertImport(ctx, row); err != nil {
		s.record(mirrorImports, "failed")
		return fmt.Errorf("failed to mirror import %s: %w", imp.ID, err)
	}
	s.record(mirrorImports, "upserted")
	return nil
}

// SyncModerationEvents mirrors moderation events created at or after since.
// Events are immutable, so already mirrored ones are ignored by the store.
func (s *MirrorService) SyncModerationEvents(ctx context.Context, since time.Time) (MirrorStats, error) {
	var stats MirrorStats

	events, err := s.moderations.ListEventsSince(ctx, since)
	if err != nil {
		return stats, fmt.Errorf("failed to list moderation events: %w", err)
	}
	if len(events) == 0 {
		return stats, nil
	}

	var missionIDs, moderatorIDs []string
	for _, e := range events {
		missionIDs = append(missionIDs, e.MissionID)
		moderatorIDs = append(moderatorIDs, e.ModeratorID)
	}
	missionStates, err := s.analytics.FindStates(ctx, mirrorMissions, common.Unique(missionIDs))
	if err != nil {
		return stats, fmt.Errorf("failed to load mirrored missions: %w", err)
	}
	partnerIDs, err := s.syncPartners(ctx, common.Unique(moderatorIDs))
	if err != nil {
		return stats, err
	}

	for _, e := range events {
		row := &entities.AnalyticsModerationEvent{
			ID:            uuid.NewString(),
			OldID:         e.ID,
			ModeratorID:   common.StrPtr(partnerIDs[e.ModeratorID]),
			UserName:      common.StrPtr(e.UserName),
			InitialStatus: common.StrPtr(string(e.InitialStatus)),
			NewStatus:     string(e.NewStatus),
			NewComment:    common.StrPtr(e.NewComment),
			CreatedAt:     e.CreatedAt,
		}
		if state, ok := missionStates[e.MissionID]; ok {
			row.MissionID = common.StrPtr(state.ID)
		}
		if err := s.analytics.InsertModerationEvent(ctx, row); err != nil {
			logging.Error("[Mirror] Failed to mirror moderation event", "event_id", e.ID, "error", err)
			stats.Failed++
			s.record(mirrorModerationEvents, "failed")
			continue
		}
		stats.Upserted++
		s.record(mirrorModerationEvents, "upserted")
	}
	return stats, nil
}
