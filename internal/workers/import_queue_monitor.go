package workers

import (
	"context"
	"time"

	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/metrics"
)

// Acknowledged entries stay in the Redis stream until trimmed
const importStreamMaxLen = 1000

// ImportQueueMonitor publishes the depth of the import request queue
type ImportQueueMonitor struct {
	queue   common.ImportQueue
	metrics *metrics.MetricsRegistry
}

func NewImportQueueMonitor(queue common.ImportQueue, metricsReg *metrics.MetricsRegistry) *ImportQueueMonitor {
	return &ImportQueueMonitor{queue: queue, metrics: metricsReg}
}

// Start samples the queue immediately, then on every tick until ctx is done
func (m *ImportQueueMonitor) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.check(ctx)
	for {
		select {
		case <-ctx.Done():
			logging.Info("[ImportQueueMonitor] Shutting down")
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *ImportQueueMonitor) check(ctx context.Context) {
	if rq, ok := m.queue.(*common.RedisImportQueue); ok {
		if err := rq.Trim(ctx, importStreamMaxLen); err != nil {
			logging.Warn("[ImportQueueMonitor] Failed to trim stream", "error", err)
		}
	}

	queued, pending, err := m.queue.Stats(ctx)
	if err != nil {
		logging.Warn("[ImportQueueMonitor] Failed to read queue stats", "error", err)
		return
	}
	m.metrics.ImportQueueDepth.WithLabelValues("queued").Set(float64(queued))
	m.metrics.ImportQueueDepth.WithLabelValues("pending").Set(float64(pending))
	if pending > 0 {
		logging.Debug("[ImportQueueMonitor] Requests awaiting acknowledgement", "pending", pending)
	}
}
