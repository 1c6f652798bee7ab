package workers

import (
	"context"
	"time"

	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/metrics"
)

// InitWorkers starts the import request worker and its queue monitor
func InitWorkers(ctx context.Context, queue common.ImportQueue, runner ImportRunner, metricsReg *metrics.MetricsRegistry) {
	if rq, ok := queue.(*common.RedisImportQueue); ok {
		if err := rq.EnsureGroup(ctx); err != nil {
			logging.Warn("[Workers] Failed to create import consumer group", "error", err)
		}
	}

	worker := NewImportQueueWorker("import-worker", queue, runner)
	go worker.Start(ctx)

	if metricsReg != nil {
		monitor := NewImportQueueMonitor(queue, metricsReg)
		go monitor.Start(ctx, 30*time.Second)
	}
}
