package jobs

import (
	"context"
	"errors"
	"time"

	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/services"
)

// RegistryIngestJob loads the national association registry on demand
type RegistryIngestJob struct {
	registry      *services.RegistryService
	defaultSource string
}

func NewRegistryIngestJob(registry *services.RegistryService, defaultSource string) *RegistryIngestJob {
	return &RegistryIngestJob{registry: registry, defaultSource: defaultSource}
}

// Run ingests source, or the configured registry URL when source is empty, and
// returns the number of organizations created or updated
func (j *RegistryIngestJob) Run(ctx context.Context, source string) (int, error) {
	if source == "" {
		source = j.defaultSource
	}
	if source == "" {
		return 0, errors.New("no registry source configured")
	}

	start := time.Now()
	logging.Info("[RegistryIngestJob] Starting registry ingest", "source", source)

	stats, err := j.registry.Ingest(ctx, source)
	if err != nil {
		logging.Error("[RegistryIngestJob] Registry ingest failed", "source", source, "error", err)
		return stats.Created + stats.Updated, err
	}

	logging.Info("[RegistryIngestJob] Completed registry ingest",
		"rows", stats.Rows, "created", stats.Created, "updated", stats.Updated,
		"unchanged", stats.Unchanged, "skipped", stats.Skipped,
		"duration", time.Since(start).Truncate(time.Millisecond).String())
	return stats.Created + stats.Updated, nil
}
