package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/db/repositories"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/metrics"
	"civic-engagement/missionhub/internal/models/dtos"
	"civic-engagement/missionhub/internal/models/gorm"
	"civic-engagement/missionhub/internal/providers"
	"civic-engagement/missionhub/internal/services"

	"golang.org/x/sync/errgroup"
)

// ErrImportRunning is returned when an import is triggered while another one is in progress
var ErrImportRunning = errors.New("an import is already running")

// ErrPublisherNotFound is returned by ImportPublisher for an unknown publisher id
var ErrPublisherNotFound = errors.New("publisher not found")

// ImportOptions sizes the work units of a run
type ImportOptions struct {
	ChunkSize        int
	BuildConcurrency int
}

// ImportJob imports every active publisher feed into the primary store, one
// publisher at a time, and mirrors the changes to analytics
type ImportJob struct {
	publishers  *repositories.PublisherRepo
	imports     *repositories.ImportRepo
	missions    *repositories.MissionRepo
	feeds       providers.FeedSource
	builder     *services.MissionBuilder
	geolocation *services.GeolocationService
	resolver    *services.OrganizationResolver
	sync        *services.Synchronizer
	mirror      *services.MirrorService
	metrics     *metrics.MetricsRegistry
	opts        ImportOptions

	running atomic.Bool
	now     func() time.Time
}

// NewImportJob creates an import job. mirror and metricsReg may be nil.
func NewImportJob(
	publishers *repositories.PublisherRepo,
	imports *repositories.ImportRepo,
	missions *repositories.MissionRepo,
	feeds providers.FeedSource,
	builder *services.MissionBuilder,
	geolocation *services.GeolocationService,
	resolver *services.OrganizationResolver,
	sync *services.Synchronizer,
	mirror *services.MirrorService,
	metricsReg *metrics.MetricsRegistry,
	opts ImportOptions,
) *ImportJob {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = constants.DefaultChunkSize
	}
	if opts.BuildConcurrency <= 0 {
		opts.BuildConcurrency = constants.DefaultBuildConcurrency
	}
	return &ImportJob{
		publishers:  publishers,
		imports:     imports,
		missions:    missions,
		feeds:       feeds,
		builder:     builder,
		geolocation: geolocation,
		resolver:    resolver,
		sync:        sync,
		mirror:      mirror,
		metrics:     metricsReg,
		opts:        opts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Run imports every active publisher with a feed. A failing publisher is recorded
// FAILED in its ledger entry and the next one still runs.
func (j *ImportJob) Run(ctx context.Context) error {
	if !j.running.CompareAndSwap(false, true) {
		return ErrImportRunning
	}
	defer j.running.Store(false)

	start := time.Now()
	logging.Info("[ImportJob] Starting import run")

	publishers, err := j.publishers.ListWithFeed(ctx)
	if err != nil {
		return fmt.Errorf("failed to list publishers: %w", err)
	}
	if len(publishers) == 0 {
		logging.Info("[ImportJob] No active publisher with a feed")
		return nil
	}

	failed := 0
	for _, pub := range publishers {
		if err := ctx.Err(); err != nil {
			return err
		}
		imp, err := j.importPublisher(ctx, pub)
		if err != nil || imp.Status == constants.ImportFailed {
			failed++
		}
	}

	logging.Info("[ImportJob] Completed import run",
		"publishers", len(publishers), "failed", failed,
		"duration", common.GetResponseTime(start))
	return nil
}

// ImportPublisher runs the import of one publisher now (manual trigger)
func (j *ImportJob) ImportPublisher(ctx context.Context, publisherID string) (*gorm.Import, error) {
	if !j.running.CompareAndSwap(false, true) {
		return nil, ErrImportRunning
	}
	defer j.running.Store(false)

	pub, err := j.publishers.FindByID(ctx, publisherID)
	if err != nil {
		return nil, fmt.Errorf("failed to load publisher: %w", err)
	}
	if pub == nil {
		return nil, ErrPublisherNotFound
	}
	return j.importPublisher(ctx, pub)
}

// Running reports whether an import is in progress
func (j *ImportJob) Running() bool {
	return j.running.Load()
}

// importPublisher records the ledger entry around one publisher run. Run failures
// and panics end as a FAILED entry, not as an error.
func (j *ImportJob) importPublisher(ctx context.Context, pub *gorm.Publisher) (imp *gorm.Import, err error) {
	runStart := j.now().UTC().Truncate(time.Microsecond)
	imp = &gorm.Import{
		PublisherID:   pub.ID,
		PublisherName: pub.Name,
		Status:        constants.ImportRunning,
		StartedAt:     runStart,
	}
	if err := j.imports.Create(ctx, imp); err != nil {
		logging.Error("[ImportJob] Failed to create import entry", "publisher_id", pub.ID, "error", err)
		return nil, fmt.Errorf("failed to create import entry: %w", err)
	}

	log := logging.WithImport(pub.ID, imp.ID)
	log.Infow("[ImportJob] Importing publisher", "publisher", pub.Name)

	defer func() {
		runErr := err
		if r := recover(); r != nil {
			log.Errorw("[ImportJob] Publisher import panicked", "panic", r)
			runErr = fmt.Errorf("panic: %v", r)
		}
		j.finish(ctx, imp, runErr)
		err = nil
	}()

	return imp, j.runImport(ctx, pub, imp, runStart)
}

func (j *ImportJob) runImport(ctx context.Context, pub *gorm.Publisher, imp *gorm.Import, runStart time.Time) error {
	raw, err := j.feeds.FetchFeed(ctx, providers.FeedRequest{
		URL:      pub.FeedURL,
		Username: pub.FeedUsername,
		Password: pub.FeedPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	entries := services.ParseFeed(raw)
	imp.TotalCount = len(entries)
	if len(entries) == 0 {
		logging.Warn("[ImportJob] Feed has no missions, every live mission will be removed",
			"publisher_id", pub.ID, "import_id", imp.ID)
	}

	var totals services.ChunkStats
	for i, chunk := range common.Chunk(entries, j.opts.ChunkSize) {
		stats, err := j.processChunk(ctx, pub, chunk, runStart)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		totals.Add(stats)
		imp.CreatedCount = totals.Created
		imp.UpdatedCount = totals.Updated
		imp.RefusedCount = totals.Refused
		logging.Debug("[ImportJob] Chunk written",
			"publisher_id", pub.ID, "import_id", imp.ID, "chunk", i,
			"created", stats.Created, "updated", stats.Updated, "unchanged", stats.Unchanged)
	}

	deleted, err := j.sync.SweepDeleted(ctx, pub.ID, runStart)
	if err != nil {
		return err
	}

	imp.DeletedCount = deleted
	return nil
}

// processChunk builds, enriches and writes one chunk of feed entries
func (j *ImportJob) processChunk(ctx context.Context, pub *gorm.Publisher, entries []dtos.FeedMission, runStart time.Time) (services.ChunkStats, error) {
	clientIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		clientIDs = append(clientIDs, entry.ClientID())
	}
	prev, err := j.missions.FindByClientIDs(ctx, pub.ID, clientIDs)
	if err != nil {
		return services.ChunkStats{}, fmt.Errorf("failed to load stored missions: %w", err)
	}

	built := j.buildAll(pub, entries, prev, runStart)

	j.geolocation.Enrich(ctx, built)
	j.resolver.Resolve(ctx, built)

	return j.sync.WriteChunk(ctx, prev, built, runStart)
}

// buildAll builds missions in sub-batches of BuildConcurrency, waiting for each
// sub-batch before starting the next
func (j *ImportJob) buildAll(pub *gorm.Publisher, entries []dtos.FeedMission, prev map[string]*gorm.Mission, runStart time.Time) []*gorm.Mission {
	results := make([]*gorm.Mission, len(entries))

	for offset := 0; offset < len(entries); offset += j.opts.BuildConcurrency {
		end := min(offset+j.opts.BuildConcurrency, len(entries))

		var g errgroup.Group
		for i := offset; i < end; i++ {
			g.Go(func() error {
				entry := entries[i]
				m, err := j.builder.Build(entry, prev[entry.ClientID()], pub, runStart)
				if err != nil {
					logging.Warn("[ImportJob] Skipping feed entry", "publisher_id", pub.ID, "error", err)
					return nil
				}
				results[i] = m
				return nil
			})
		}
		_ = g.Wait()
	}

	built := make([]*gorm.Mission, 0, len(results))
	for _, m := range results {
		if m != nil {
			built = append(built, m)
		}
	}
	return built
}

// finish closes the ledger entry, records metrics and mirrors the run
func (j *ImportJob) finish(ctx context.Context, imp *gorm.Import, runErr error) {
	finishedAt := j.now().UTC()
	imp.FinishedAt = &finishedAt
	if runErr != nil {
		imp.Status = constants.ImportFailed
		imp.Error = runErr.Error()
		logging.Error("[ImportJob] Publisher import failed",
			"publisher_id", imp.PublisherID, "import_id", imp.ID, "error", runErr)
	} else {
		imp.Status = constants.ImportSuccess
		logging.Info("[ImportJob] Publisher import finished",
			"publisher_id", imp.PublisherID, "import_id", imp.ID,
			"total", imp.TotalCount, "created", imp.CreatedCount, "updated", imp.UpdatedCount,
			"deleted", imp.DeletedCount, "refused", imp.RefusedCount)
	}

	if err := j.imports.Save(ctx, imp); err != nil {
		logging.Error("[ImportJob] Failed to save import entry", "import_id", imp.ID, "error", err)
	}

	j.recordMetrics(imp)

	if j.mirror == nil {
		return
	}
	if imp.Status == constants.ImportSuccess {
		since := j.mirrorSince(ctx, imp.PublisherID)
		stats, err := j.mirror.SyncPublisher(ctx, imp.PublisherID, since)
		if err != nil {
			logging.Error("[ImportJob] Analytics mirror failed", "publisher_id", imp.PublisherID, "error", err)
		} else {
			logging.Info("[ImportJob] Analytics mirror finished", "publisher_id", imp.PublisherID,
				"since", since, "upserted", stats.Upserted, "skipped", stats.Skipped, "failed", stats.Failed)
			if stats.Failed == 0 {
				imp.Mirrored = true
				if err := j.imports.Save(ctx, imp); err != nil {
					logging.Error("[ImportJob] Failed to save import entry", "import_id", imp.ID, "error", err)
				}
			}
		}
	}
	if err := j.mirror.SyncImport(ctx, imp); err != nil {
		logging.Error("[ImportJob] Failed to mirror import entry", "import_id", imp.ID, "error", err)
	}
}

// mirrorSince is the start of the publisher's last fully mirrored run. Missions
// changed since then are mirrored again; unchanged rows are skipped by the mirror.
// Without such a run the whole publisher is mirrored.
func (j *ImportJob) mirrorSince(ctx context.Context, publisherID string) time.Time {
	last, err := j.imports.LastMirrored(ctx, publisherID)
	if err != nil {
		logging.Warn("[ImportJob] Failed to load mirror watermark, mirroring everything",
			"publisher_id", publisherID, "error", err)
		return time.Time{}
	}
	if last == nil {
		return time.Time{}
	}
	return last.StartedAt
}

func (j *ImportJob) recordMetrics(imp *gorm.Import) {
	if j.metrics == nil {
		return
	}
	publisher := imp.PublisherID
	j.metrics.ImportRunsTotal.WithLabelValues(publisher, string(imp.Status)).Inc()
	j.metrics.ImportDuration.WithLabelValues(publisher).Observe(imp.Duration().Seconds())
	j.metrics.ImportMissionsTotal.WithLabelValues(publisher, "created").Add(float64(imp.CreatedCount))
	j.metrics.ImportMissionsTotal.WithLabelValues(publisher, "updated").Add(float64(imp.UpdatedCount))
	j.metrics.ImportMissionsTotal.WithLabelValues(publisher, "deleted").Add(float64(imp.DeletedCount))
	j.metrics.ImportMissionsTotal.WithLabelValues(publisher, "refused").Add(float64(imp.RefusedCount))
}

// RunScheduled runs the import immediately, then on every tick until ctx is done
func (j *ImportJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := j.Run(ctx); err != nil {
		logging.Error("[ImportJob] Error in initial run", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				logging.Error("[ImportJob] Error in scheduled run", "error", err)
			}
		case <-ctx.Done():
			logging.Info("[ImportJob] Shutting down scheduled import")
			return
		}
	}
}
