package jobs

import (
	"context"
	"fmt"
	"time"

	"civic-engagement/missionhub/internal/db/repositories"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/services"
)

// Missions evaluated per moderator and run
const moderationBatchLimit = 5000

// ModerationJob runs the automatic per-moderator pass for every moderating publisher
type ModerationJob struct {
	publishers *repositories.PublisherRepo
	moderator  *services.ModeratorService
	mirror     *services.MirrorService
}

// NewModerationJob creates a moderation job. mirror may be nil.
func NewModerationJob(
	publishers *repositories.PublisherRepo,
	moderator *services.ModeratorService,
	mirror *services.MirrorService,
) *ModerationJob {
	return &ModerationJob{
		publishers: publishers,
		moderator:  moderator,
		mirror:     mirror,
	}
}

// Run evaluates pending missions for each moderator. A failing moderator is
// logged and the next one still runs.
func (j *ModerationJob) Run(ctx context.Context) error {
	start := time.Now().UTC()
	logging.Info("[ModerationJob] Starting moderation pass")

	moderators, err := j.publishers.ListModerators(ctx)
	if err != nil {
		return fmt.Errorf("failed to list moderators: %w", err)
	}

	var total services.ModeratorStats
	for _, pub := range moderators {
		stats, err := j.moderator.ModerateFor(ctx, pub.ID, moderationBatchLimit)
		if err != nil {
			logging.Error("[ModerationJob] Moderator pass failed", "moderator_id", pub.ID, "error", err)
			continue
		}
		total.Evaluated += stats.Evaluated
		total.Refused += stats.Refused
		total.Pending += stats.Pending
		total.Unchanged += stats.Unchanged
		logging.Info("[ModerationJob] Moderator pass finished", "moderator_id", pub.ID,
			"evaluated", stats.Evaluated, "refused", stats.Refused, "pending", stats.Pending)
	}

	if j.mirror != nil {
		if _, err := j.mirror.SyncModerationEvents(ctx, start); err != nil {
			logging.Error("[ModerationJob] Failed to mirror moderation events", "error", err)
		}
	}

	logging.Info("[ModerationJob] Completed moderation pass",
		"moderators", len(moderators), "evaluated", total.Evaluated, "refused", total.Refused,
		"duration", time.Since(start).Truncate(time.Millisecond).String())
	return nil
}

// RunScheduled runs the pass immediately, then on every tick until ctx is done
func (j *ModerationJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := j.Run(ctx); err != nil {
		logging.Error("[ModerationJob] Error in initial run", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				logging.Error("[ModerationJob] Error in scheduled run", "error", err)
			}
		case <-ctx.Done():
			logging.Info("[ModerationJob] Shutting down scheduled moderation")
			return
		}
	}
}
