package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/models/dtos/responses"
)

func TestGetJobStatus(t *testing.T) {
	queue := common.NewMemoryImportQueue(4)
	_ = queue.Enqueue(context.Background(), &common.ImportRequest{PublisherID: "pub-1"})
	handler := NewJobsHandler(&mockImportStatus{running: true}, &mockModerationRunner{}, queue).GetJobStatus()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/admin/jobs/status", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var response responses.APIResponse[responses.JobStatusResponse]
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !response.Data.ImportRunning || response.Data.QueuedImports != 1 {
		t.Errorf("Expected running import and 1 queued, got %+v", response.Data)
	}
}

func TestTriggerModeration_Conflict(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	runner := &mockModerationRunner{
		runFunc: func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		},
	}
	h := NewJobsHandler(&mockImportStatus{}, runner, nil)

	rr := httptest.NewRecorder()
	h.TriggerModeration().ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/admin/jobs/moderation", nil))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", rr.Code)
	}

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("Expected moderation pass to start")
	}

	rr = httptest.NewRecorder()
	h.TriggerModeration().ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/admin/jobs/moderation", nil))
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409 while running, got %d", rr.Code)
	}

	close(release)
}
