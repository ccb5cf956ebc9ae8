package document

import "time"

type Status string

const (
	// StatusPending means no ingestion attempt has completed yet, or one is
	// underway. StatusIngested and StatusFailed reflect the outcome of the
	// most recent attempt and are written only by the ingestion orchestrator.
	StatusPending  Status = "pending"
	StatusIngested Status = "ingested"
	StatusFailed   Status = "failed"
)

type Document struct {
	ID      string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title   string `gorm:"type:varchar(256);not null" json:"title"`
	Content string `gorm:"type:text" json:"content"`

	// Nil owner marks a system-created document.
	OwnerID *string `gorm:"type:varchar(36);index" json:"owner_id"`

	Status Status `gorm:"type:varchar(16);index;not null;default:pending" json:"status"`

	OriginalName *string `gorm:"type:varchar(256)" json:"original_name,omitempty"`
	MimeType     *string `gorm:"type:varchar(128)" json:"mime_type,omitempty"`
	FileContent  []byte  `gorm:"type:longblob" json:"-"`
	FileSize     *int64  `json:"file_size,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Document) TableName() string { return "documents" }
