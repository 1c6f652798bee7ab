package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"civic-engagement/missionhub/internal/api"
	"civic-engagement/missionhub/internal/auth"
	"civic-engagement/missionhub/internal/config"
	"civic-engagement/missionhub/internal/metrics"
	"civic-engagement/missionhub/internal/models/gorm"
	"civic-engagement/missionhub/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestRouter(t *testing.T) (http.Handler, *api.Dependencies, string) {
	t.Helper()
	reg := prometheus.NewRegistry()
	cfg := &config.Config{AppEnv: "production", JWTSecret: "router-secret", GrantsRate: 1, ChunkSize: 10, BuildConcurrency: 2}

	deps, err := api.InitDependencies(cfg, testutil.NewGormDB(t), nil, metrics.NewMetricsRegistryWith(reg))
	if err != nil {
		t.Fatalf("Failed to init dependencies: %v", err)
	}
	t.Cleanup(func() { _ = deps.Close() })

	token, err := deps.Services.Tokens.Issue("ops@example.org", auth.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return RegisterRoutes(deps, reg, time.Now()), deps, token
}

func TestRouter_PublicRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, path := range []string{"/healthCheck", "/metrics"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("Expected status 200 on %s, got %d", path, rr.Code)
		}
	}
}

func TestRouter_AdminRoutes(t *testing.T) {
	router, deps, token := newTestRouter(t)

	pub := &gorm.Publisher{Name: "Partenaire", FeedURL: "https://partner.example/feed.xml", IsActive: true}
	if err := deps.Repo.Publishers.Create(context.Background(), pub); err != nil {
		t.Fatalf("Failed to create publisher: %v", err)
	}

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode int
	}{
		{"list without token", "GET", "/api/v1/admin/imports", "", http.StatusUnauthorized},
		{"list", "GET", "/api/v1/admin/imports", token, http.StatusOK},
		{"unknown import", "GET", "/api/v1/admin/imports/missing", token, http.StatusNotFound},
		{"trigger unknown publisher", "POST", "/api/v1/admin/publishers/ghost/imports", token, http.StatusNotFound},
		{"trigger", "POST", "/api/v1/admin/publishers/" + pub.ID + "/imports", token, http.StatusAccepted},
		{"job status", "GET", "/api/v1/admin/jobs/status", token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.RemoteAddr = "127.0.0.1:4000"
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, rr.Code)
			}
		})
	}

	queued, _, err := deps.Queue.Stats(context.Background())
	if err != nil {
		t.Fatalf("Failed to read queue stats: %v", err)
	}
	if queued != 1 {
		t.Errorf("Expected 1 queued import request, got %d", queued)
	}
}
