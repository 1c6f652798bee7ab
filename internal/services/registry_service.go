package services

import (
	"context"
	"fmt"
	"strings"

	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/db/repositories"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/models/gorm"
	"civic-engagement/missionhub/internal/providers"
)

const registryBatchSize = 1000

// IngestStats counts what an ingest did
type IngestStats struct {
	Rows      int
	Created   int
	Updated   int
	Unchanged int
	Skipped   int
}

// RegistryService loads the national association registry into the organization table
type RegistryService struct {
	source providers.RegistrySource
	orgs   *repositories.OrganizationRepo
}

func NewRegistryService(source providers.RegistrySource, orgs *repositories.OrganizationRepo) *RegistryService {
	return &RegistryService{source: source, orgs: orgs}
}

// Ingest reads the registry at source (path or URL). Known organizations are only
// backfilled, never overwritten.
func (s *RegistryService) Ingest(ctx context.Context, source string) (IngestStats, error) {
	var stats IngestStats
	batch := make([]gorm.Organization, 0, registryBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := s.writeBatch(ctx, batch, &stats)
		batch = batch[:0]
		return err
	}

	readStats, err := s.source.ReadRegistry(ctx, source, func(row providers.RegistryRow) error {
		org, ok := OrganizationFromRegistryRow(row)
		if !ok {
			stats.Skipped++
			return nil
		}
		batch = append(batch, org)
		if len(batch) >= registryBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to read registry: %w", err)
	}
	if err := flush(); err != nil {
		return stats, err
	}

	stats.Rows = readStats.Rows
	stats.Skipped += readStats.Skipped
	logging.Info("[Registry] Ingest finished",
		"files", readStats.Files, "rows", stats.Rows, "created", stats.Created,
		"updated", stats.Updated, "skipped", stats.Skipped)
	return stats, nil
}

func (s *RegistryService) writeBatch(ctx context.Context, batch []gorm.Organization, stats *IngestStats) error {
	rnas := make([]string, 0, len(batch))
	for _, org := range batch {
		rnas = append(rnas, org.RNA)
	}
	existing, err := s.orgs.FindByRNAs(ctx, common.Unique(rnas))
	if err != nil {
		return fmt.Errorf("failed to load organizations: %w", err)
	}

	for i := range batch {
		incoming := batch[i]
		if current, ok := existing[incoming.RNA]; ok {
			if !MergeOrganization(current, incoming) {
				stats.Unchanged++
				continue
			}
			if err := s.orgs.Save(ctx, current); err != nil {
				return fmt.Errorf("failed to update organization %s: %w", incoming.RNA, err)
			}
			stats.Updated++
			continue
		}

		org := incoming
		if err := s.orgs.Save(ctx, &org); err != nil {
			return fmt.Errorf("failed to create organization %s: %w", incoming.RNA, err)
		}
		existing[org.RNA] = &org
		stats.Created++
	}
	return nil
}

// OrganizationFromRegistryRow maps one registry record; rows without a valid RNA are rejected
func OrganizationFromRegistryRow(row providers.RegistryRow) (gorm.Organization, bool) {
	rna := NormalizeIdentifier(row["id"])
	if !IsValidRNA(rna) {
		return gorm.Organization{}, false
	}

	title := strings.TrimSpace(row["titre"])
	street := strings.Join(strings.Fields(strings.Join([]string{
		row["adrs_numvoie"], row["adrs_repetition"], row["adrs_typevoie"], row["adrs_libvoie"],
	}, " ")), " ")
	object := strings.TrimSpace(row["objet"])

	org := gorm.Organization{
		RNA:         rna,
		Title:       title,
		ShortTitle:  strings.TrimSpace(row["titre_court"]),
		Slug:        common.Slugify(title),
		Object:      object,
		Nature:      row["nature"],
		Status:      row["position"],
		Website:     row["siteweb"],
		Address:     street,
		City:        row["adrs_libcommune"],
		PostalCode:  row["adrs_codepostal"],
		Department:  constants.DepartmentCodeFromPostalCode(row["adrs_codepostal"]),
		CreatedDate: parseRegistryDate(row["date_creat"]),
		UpdatedDate: parseRegistryDate(row["maj_time"]),
		Source:      constants.OrganizationSourceRegistry,
	}
	if siret := NormalizeIdentifier(row["siret"]); IsValidSiret(siret) {
		org.Siret = siret
		org.Siren = sirenOf(siret)
	}
	return org, true
}
