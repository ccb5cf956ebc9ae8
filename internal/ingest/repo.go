package ingest

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/docvault/docvault/internal/document"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// CreateJobAndMarkDocumentPending persists the new job row and flips the
// parent document to pending in one transaction, so concurrent readers see
// both writes or neither.
func (r *Repo) CreateJobAndMarkDocumentPending(ctx context.Context, job *Job) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(job).Error; err != nil {
			return err
		}
		return tx.Model(&document.Document{}).
			Where("id = ?", job.DocumentID).
			Update("status", document.StatusPending).Error
	})
}

func (r *Repo) GetJobByID(ctx context.Context, id string) (*Job, error) {
	var j Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

// LatestByDocument returns the most recent job for the document, or nil when
// the ledger has no rows for it.
func (r *Repo) LatestByDocument(ctx context.Context, documentID string) (*Job, error) {
	var j Job
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC, id DESC").
		First(&j).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &j, nil
}

func (r *Repo) ListByDocument(ctx context.Context, documentID string) ([]Job, error) {
	var jobs []Job
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC, id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *Repo) ListAll(ctx context.Context) ([]Job, error) {
	var jobs []Job
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListByOwner returns jobs whose parent document belongs to ownerID.
func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]Job, error) {
	var jobs []Job
	err := r.db.WithContext(ctx).
		Joins("JOIN documents ON documents.id = ingestion_jobs.document_id").
		Where("documents.owner_id = ?", ownerID).
		Order("ingestion_jobs.created_at DESC, ingestion_jobs.id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkRunning is advisory: it only flips a still-pending job and reports
// nothing when the job has already moved on.
func (r *Repo) MarkRunning(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Update("status", StatusRunning).Error
}

// MarkCompleted moves a non-terminal job to completed. It returns false when
// the job was already terminal and nothing was written.
func (r *Repo) MarkCompleted(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND status IN ?", id, []Status{StatusPending, StatusRunning}).
		Updates(map[string]any{
			"status":        StatusCompleted,
			"completed_at":  time.Now(),
			"error_message": nil,
		})
	return res.RowsAffected > 0, res.Error
}

// MarkFailed moves a non-terminal job to failed with the given cause. It
// returns false when the job was already terminal.
func (r *Repo) MarkFailed(ctx context.Context, id string, errMsg string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND status IN ?", id, []Status{StatusPending, StatusRunning}).
		Updates(map[string]any{
			"status":        StatusFailed,
			"completed_at":  time.Now(),
			"error_message": errMsg,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *Repo) UpdateDocumentStatus(ctx context.Context, documentID string, status document.Status) error {
	return r.db.WithContext(ctx).Model(&document.Document{}).
		Where("id = ?", documentID).
		Update("status", status).Error
}
