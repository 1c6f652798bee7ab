package api

import (
	"context"
	"net/http"
	"sync/atomic"

	"civic-engagement/missionhub/internal/auth"
	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/models/dtos/responses"
)

// ImportStatus reports whether an import is in progress
type ImportStatus interface {
	Running() bool
}

// ModerationRunner runs one moderation pass
type ModerationRunner interface {
	Run(ctx context.Context) error
}

// JobsHandler handles job status and manual moderation runs
type JobsHandler struct {
	imports    ImportStatus
	moderation ModerationRunner
	queue      common.ImportQueue

	moderating atomic.Bool
}

func NewJobsHandler(imports ImportStatus, moderation ModerationRunner, queue common.ImportQueue) *JobsHandler {
	return &JobsHandler{
		imports:    imports,
		moderation: moderation,
		queue:      queue,
	}
}

// GetJobStatus returns the state of background jobs
// @Summary Get job status
// @Tags admin,jobs
// @Produce json
// @Success 200 {object} responses.JobStatusResponse
// @Router /api/v1/admin/jobs/status [get]
func (h *JobsHandler) GetJobStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := responses.JobStatusResponse{
			ImportRunning:     h.imports.Running(),
			ModerationRunning: h.moderating.Load(),
		}

		if h.queue != nil {
			queued, pending, err := h.queue.Stats(r.Context())
			if err != nil {
				logging.Warn("Failed to read import queue stats", "error", err)
			}
			resp.QueuedImports = queued
			resp.PendingImports = pending
		}

		respondWithSuccess(w, http.StatusOK, &resp)
	}
}

// TriggerModeration starts a moderation pass in the background
// @Summary Trigger the moderation pass
// @Tags admin,jobs
// @Produce json
// @Success 202 {object} responses.TriggerModerationResponse
// @Failure 409 {object} responses.APIResponse[any]
// @Router /api/v1/admin/jobs/moderation [post]
func (h *JobsHandler) TriggerModeration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.moderating.CompareAndSwap(false, true) {
			respondWithError(w, http.StatusConflict, "A moderation pass is already running")
			return
		}

		triggeredBy := ""
		if claims := auth.GetUserClaims(r.Context()); claims != nil {
			triggeredBy = claims.UserID()
		}
		logging.Info("[JobsHandler] Moderation manually triggered", "triggered_by", triggeredBy)

		go func() {
			defer h.moderating.Store(false)
			if err := h.moderation.Run(context.Background()); err != nil {
				logging.Error("[JobsHandler] Moderation pass failed", "error", err)
			}
		}()

		resp := responses.TriggerModerationResponse{Message: "Moderation pass started"}
		respondWithSuccess(w, http.StatusAccepted, &resp)
	}
}
