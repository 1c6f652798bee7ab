package api

import (
	"context"
	"net/http"
	"time"

	"civic-engagement/missionhub/internal/models/dtos/responses"
)

// HealthProbe checks one backing service
type HealthProbe func(ctx context.Context) error

// HealthCheckHandler handles GET /healthCheck
//
// @Summary Health check
// @Description Pings the primary store and, when configured, the analytics store and Redis.
// @Tags Misc
// @Success 200 {object} responses.HealthCheckResponse
// @Failure 503 {object} responses.HealthCheckResponse
// @Router /healthCheck [get]
func HealthCheckHandler(probes map[string]HealthProbe, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		services := make(map[string]responses.ServiceStatus, len(probes))
		overallStatus := "ok"
		for name, probe := range probes {
			status := responses.ServiceStatus{Status: "ok", Details: "connected"}
			if err := probe(ctx); err != nil {
				status = responses.ServiceStatus{Status: "down", Details: err.Error()}
				overallStatus = "down"
			}
			services[name] = status
		}

		resp := responses.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		respondWithSuccess(w, code, &resp)
	}
}
