package constants

// ImportStatus is the state of a run ledger entry
type ImportStatus string

const (
	ImportRunning ImportStatus = "RUNNING"
	ImportSuccess ImportStatus = "SUCCESS"
	ImportFailed  ImportStatus = "FAILED"
)
