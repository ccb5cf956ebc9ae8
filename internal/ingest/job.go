package ingest

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is final. Terminal jobs are immutable;
// reconciliation refuses to touch them again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one recorded ingestion attempt for a document. A document
// accumulates one row per trigger over its lifetime.
type Job struct {
	ID         string `gorm:"type:varchar(26);primaryKey" json:"id"` // ULID
	DocumentID string `gorm:"type:varchar(36);index;not null" json:"document_id"`

	Status Status `gorm:"type:varchar(16);index;not null" json:"status"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Set only when the job failed.
	ErrorMessage *string `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Job) TableName() string { return "ingestion_jobs" }
