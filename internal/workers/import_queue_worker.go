package workers

import (
	"context"
	"errors"
	"time"

	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/jobs"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/models/gorm"
)

// ImportRunner runs one publisher import
type ImportRunner interface {
	ImportPublisher(ctx context.Context, publisherID string) (*gorm.Import, error)
}

// ImportQueueWorker consumes manual import requests one at a time
type ImportQueueWorker struct {
	workerID   string
	queue      common.ImportQueue
	runner     ImportRunner
	block      time.Duration
	retryDelay time.Duration
}

func NewImportQueueWorker(workerID string, queue common.ImportQueue, runner ImportRunner) *ImportQueueWorker {
	return &ImportQueueWorker{
		workerID:   workerID,
		queue:      queue,
		runner:     runner,
		block:      5 * time.Second,
		retryDelay: 30 * time.Second,
	}
}

// Start processes requests until ctx is done
func (w *ImportQueueWorker) Start(ctx context.Context) {
	logging.Info("[ImportQueueWorker] Started", "worker_id", w.workerID)

	processed, failed := 0, 0
	for {
		select {
		case <-ctx.Done():
			logging.Info("[ImportQueueWorker] Shutting down", "worker_id", w.workerID,
				"processed", processed, "failed", failed)
			return
		default:
		}

		ok, err := w.processNext(ctx)
		if err != nil {
			failed++
			logging.Error("[ImportQueueWorker] Error processing request", "worker_id", w.workerID, "error", err)
			sleep(ctx, time.Second)
			continue
		}
		if ok {
			processed++
		}
	}
}

// processNext handles at most one request and reports whether one was handled.
// A request that arrives while an import is running is put back after retryDelay.
func (w *ImportQueueWorker) processNext(ctx context.Context) (bool, error) {
	req, messageID, err := w.queue.Dequeue(ctx, w.workerID, w.block)
	if err != nil {
		if messageID != "" {
			// Undecodable message, drop it
			_ = w.queue.Ack(ctx, messageID)
		}
		return false, err
	}
	if req == nil {
		return false, nil
	}
	defer func() {
		if err := w.queue.Ack(ctx, messageID); err != nil {
			logging.Error("[ImportQueueWorker] Failed to acknowledge request", "message_id", messageID, "error", err)
		}
	}()

	logging.Info("[ImportQueueWorker] Running requested import",
		"publisher_id", req.PublisherID, "requested_by", req.RequestedBy)

	imp, err := w.runner.ImportPublisher(ctx, req.PublisherID)
	switch {
	case errors.Is(err, jobs.ErrImportRunning):
		logging.Info("[ImportQueueWorker] Import in progress, request postponed", "publisher_id", req.PublisherID)
		sleep(ctx, w.retryDelay)
		if err := w.queue.Enqueue(ctx, req); err != nil {
			return false, err
		}
		return true, nil
	case errors.Is(err, jobs.ErrPublisherNotFound):
		logging.Warn("[ImportQueueWorker] Dropping request for unknown publisher", "publisher_id", req.PublisherID)
		return true, nil
	case err != nil:
		return false, err
	}

	logging.Info("[ImportQueueWorker] Requested import finished",
		"publisher_id", req.PublisherID, "import_id", imp.ID, "status", imp.Status)
	return true, nil
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
