package domain

import "time"

// RunRecord is one pipeline execution as stored in the run ledger.
type RunRecord struct {
	ID          int64     `json:"id,string"`
	Seed        uint64    `json:"seed"`
	Rows        int       `json:"rows"`
	Outliers    int       `json:"outliers"`
	DatasetPath string    `json:"dataset_path"`
	ReportPath  string    `json:"report_path"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Run statuses.
const (
	RunStatusOK     = "ok"
	RunStatusFailed = "failed"
)
