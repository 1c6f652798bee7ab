package jobs

import (
	"context"

	"civic-engagement/missionhub/internal/config"
	"civic-engagement/missionhub/internal/logging"
)

// InitializeJobs starts the scheduled background jobs. A zero interval disables a job.
func InitializeJobs(ctx context.Context, importJob *ImportJob, moderationJob *ModerationJob, cfg *config.Config) {
	if importJob != nil && cfg.ImportInterval > 0 {
		go importJob.RunScheduled(ctx, cfg.ImportInterval)
	} else {
		logging.Info("[Jobs] Scheduled import disabled")
	}

	if moderationJob != nil && cfg.ModerationInterval > 0 {
		go moderationJob.RunScheduled(ctx, cfg.ModerationInterval)
	} else {
		logging.Info("[Jobs] Scheduled moderation disabled")
	}
}
