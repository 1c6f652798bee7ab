package api

import (
	"net/http"
	"time"
)

// Handlers groups the HTTP handlers of the operator surface
type Handlers struct {
	Imports *ImportsHandler
	Jobs    *JobsHandler
	Health  http.HandlerFunc
}

// NewHandlers creates the handlers over injected dependencies
func NewHandlers(deps *Dependencies, upSince time.Time) *Handlers {
	return &Handlers{
		Imports: NewImportsHandler(deps.Repo.Imports, deps.Repo.Publishers, deps.Queue),
		Jobs:    NewJobsHandler(deps.Jobs.Import, deps.Jobs.Moderation, deps.Queue),
		Health:  HealthCheckHandler(deps.HealthProbes(), upSince),
	}
}
