package document

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, d *Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Document, error) {
	var d Document
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns documents newest-first. A nil ownerID means no owner filter
// (admin scope).
func (r *Repo) List(ctx context.Context, ownerID *string) ([]Document, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if ownerID != nil {
		q = q.Where("owner_id = ?", *ownerID)
	}
	var docs []Document
	if err := q.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *Repo) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&Document{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete removes the document and its ingestion ledger rows in one
// transaction. The ledger table is addressed by name to keep the store
// package free of an orchestrator import.
func (r *Repo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM ingestion_jobs WHERE document_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&Document{}, "id = ?", id).Error
	})
}
