package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"civic-engagement/missionhub/internal/auth"
	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/models/dtos/responses"
	"civic-engagement/missionhub/internal/models/gorm"

	"github.com/go-chi/chi/v5"
)

const (
	defaultImportListLimit = 50
	maxImportListLimit     = 500
)

// ImportStore reads the run ledger
type ImportStore interface {
	List(ctx context.Context, publisherID string, limit int) ([]*gorm.Import, error)
	FindByID(ctx context.Context, id string) (*gorm.Import, error)
}

// PublisherFinder looks up publishers
type PublisherFinder interface {
	FindByID(ctx context.Context, id string) (*gorm.Publisher, error)
}

// ImportsHandler exposes the run ledger and the manual import trigger
type ImportsHandler struct {
	imports    ImportStore
	publishers PublisherFinder
	queue      common.ImportQueue
}

func NewImportsHandler(imports ImportStore, publishers PublisherFinder, queue common.ImportQueue) *ImportsHandler {
	return &ImportsHandler{
		imports:    imports,
		publishers: publishers,
		queue:      queue,
	}
}

// ListImports returns the most recent run ledger entries
// @Summary List import runs
// @Tags admin,imports
// @Produce json
// @Param publisherId query string false "Only runs of this publisher"
// @Param limit query int false "Maximum entries (default 50, max 500)"
// @Success 200 {object} responses.ImportListResponse
// @Router /api/v1/admin/imports [get]
func (h *ImportsHandler) ListImports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultImportListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxImportListLimit)
		}

		imports, err := h.imports.List(r.Context(), r.URL.Query().Get("publisherId"), limit)
		if err != nil {
			logging.Error("Failed to list imports", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to list imports")
			return
		}

		resp := responses.ImportListResponse{
			Imports: make([]responses.ImportResponse, 0, len(imports)),
			Total:   len(imports),
		}
		for _, imp := range imports {
			resp.Imports = append(resp.Imports, toImportResponse(imp))
		}
		respondWithSuccess(w, http.StatusOK, &resp)
	}
}

// GetImport returns one run ledger entry
// @Summary Get import run
// @Tags admin,imports
// @Produce json
// @Param importId path string true "Import id"
// @Success 200 {object} responses.ImportResponse
// @Failure 404 {object} responses.APIResponse[any]
// @Router /api/v1/admin/imports/{importId} [get]
func (h *ImportsHandler) GetImport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imp, err := h.imports.FindByID(r.Context(), chi.URLParam(r, "importId"))
		if err != nil {
			logging.Error("Failed to load import", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to load import")
			return
		}
		if imp == nil {
			respondWithError(w, http.StatusNotFound, "Import not found")
			return
		}

		resp := toImportResponse(imp)
		respondWithSuccess(w, http.StatusOK, &resp)
	}
}

// TriggerImport queues an import of one publisher. The import runs in the
// background worker; its ledger entry appears in ListImports once started.
// @Summary Trigger a publisher import
// @Tags admin,imports
// @Produce json
// @Param publisherId path string true "Publisher id"
// @Success 202 {object} responses.TriggerImportResponse
// @Failure 404 {object} responses.APIResponse[any]
// @Failure 503 {object} responses.APIResponse[any]
// @Router /api/v1/admin/publishers/{publisherId}/imports [post]
func (h *ImportsHandler) TriggerImport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		publisherID := chi.URLParam(r, "publisherId")

		pub, err := h.publishers.FindByID(r.Context(), publisherID)
		if err != nil {
			logging.Error("Failed to load publisher", "publisher_id", publisherID, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to load publisher")
			return
		}
		if pub == nil {
			respondWithError(w, http.StatusNotFound, "Publisher not found")
			return
		}
		if !pub.HasFeed() {
			respondWithError(w, http.StatusUnprocessableEntity, "Publisher has no feed")
			return
		}

		requestedBy := ""
		if claims := auth.GetUserClaims(r.Context()); claims != nil {
			requestedBy = claims.UserID()
		}

		req := &common.ImportRequest{
			PublisherID: pub.ID,
			RequestedBy: requestedBy,
			RequestedAt: time.Now().UTC(),
		}
		if err := h.queue.Enqueue(r.Context(), req); err != nil {
			logging.Error("Failed to queue import", "publisher_id", pub.ID, "error", err)
			respondWithError(w, http.StatusServiceUnavailable, "Failed to queue import")
			return
		}

		logging.Info("Import queued", "publisher_id", pub.ID, "requested_by", requestedBy)
		resp := responses.TriggerImportResponse{
			Message:     "Import of " + pub.Name + " queued",
			PublisherID: pub.ID,
		}
		respondWithSuccess(w, http.StatusAccepted, &resp)
	}
}

func toImportResponse(imp *gorm.Import) responses.ImportResponse {
	return responses.ImportResponse{
		ID:            imp.ID,
		PublisherID:   imp.PublisherID,
		PublisherName: imp.PublisherName,
		Status:        string(imp.Status),
		CreatedCount:  imp.CreatedCount,
		UpdatedCount:  imp.UpdatedCount,
		DeletedCount:  imp.DeletedCount,
		RefusedCount:  imp.RefusedCount,
		TotalCount:    imp.TotalCount,
		StartedAt:     imp.StartedAt,
		FinishedAt:    imp.FinishedAt,
		Error:         imp.Error,
	}
}
