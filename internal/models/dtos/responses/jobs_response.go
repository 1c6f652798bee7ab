package responses

// JobStatusResponse reports background job state to operators
type JobStatusResponse struct {
	ImportRunning     bool  `json:"importRunning"`
	ModerationRunning bool  `json:"moderationRunning"`
	QueuedImports     int64 `json:"queuedImports"`
	PendingImports    int64 `json:"pendingImports"`
}

type TriggerModerationResponse struct {
	Message string `json:"message"`
}
