package document

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault/internal/auth"
)

// ErrNotFound covers both a genuinely absent document and one the actor may
// not see. Non-admins get the same answer either way so document existence
// does not leak.
var ErrNotFound = errors.New("document: not found")

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Title   string
	Content string

	// Set for uploads, left zero for plain text documents.
	OriginalName string
	MimeType     string
	FileContent  []byte
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*Document, error) {
	ownerID := actor.ID
	d := &Document{
		ID:      uuid.NewString(),
		Title:   in.Title,
		Content: in.Content,
		OwnerID: &ownerID,
		Status:  StatusPending,
	}
	if len(in.FileContent) > 0 {
		size := int64(len(in.FileContent))
		d.FileContent = in.FileContent
		d.FileSize = &size
		if in.OriginalName != "" {
			d.OriginalName = &in.OriginalName
		}
		if in.MimeType != "" {
			d.MimeType = &in.MimeType
		}
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, actor auth.Actor) ([]Document, error) {
	if actor.IsAdmin() {
		return s.repo.List(ctx, nil)
	}
	return s.repo.List(ctx, &actor.ID)
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id string) (*Document, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !auth.CanAccess(actor, d.OwnerID) {
		return nil, ErrNotFound
	}
	return d, nil
}

// GetInternal bypasses the access policy. It backs the internal endpoint the
// processing service uses to fetch document content during ingestion.
func (s *Service) GetInternal(ctx context.Context, id string) (*Document, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

type UpdateInput struct {
	Title   *string
	Content *string
}

// Update changes title and content only. Document status is owned by the
// ingestion orchestrator and cannot be set through this path.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id string, in UpdateInput) (*Document, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, actor, id)
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
