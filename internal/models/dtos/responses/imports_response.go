package responses

import "time"

// ImportResponse is one run ledger entry as exposed to operators
type ImportResponse struct {
	ID            string     `json:"id"`
	PublisherID   string     `json:"publisherId"`
	PublisherName string     `json:"publisherName"`
	Status        string     `json:"status"`
	CreatedCount  int        `json:"createdCount"`
	UpdatedCount  int        `json:"updatedCount"`
	DeletedCount  int        `json:"deletedCount"`
	RefusedCount  int        `json:"refusedCount"`
	TotalCount    int        `json:"totalCount"`
	StartedAt     time.Time  `json:"startedAt"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
	Error         string     `json:"error,omitempty"`
}

type ImportListResponse struct {
	Imports []ImportResponse `json:"imports"`
	Total   int              `json:"total"`
}

// TriggerImportResponse is returned when an operator starts an import manually
type TriggerImportResponse struct {
	Message     string `json:"message"`
	PublisherID string `json:"publisherId"`
}

// HealthCheckResponse is the payload of GET /healthCheck
type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
	Services map[string]ServiceStatus `json:"services"`
}

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}
