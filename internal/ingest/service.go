// Package ingest is the ingestion orchestration core: it owns the job
// ledger, the document status lifecycle, and the asynchronous reconciliation
// of remote processing outcomes.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/docvault/docvault/internal/auth"
	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/remote"
)

var (
	// ErrAlreadyIngested: re-ingesting an ingested document is rejected;
	// there is no force path.
	ErrAlreadyIngested = errors.New("ingest: document is already ingested")

	// ErrInFlight: the document's latest job is still pending or running.
	ErrInFlight = errors.New("ingest: an ingestion job is already in flight for this document")

	ErrNoDispatcher = errors.New("ingest: no dispatcher configured")
)

// Ingestor is the remote processing boundary. An implementation returns the
// embeddings count on success, a *remote.DomainError when the service
// reported a failure, and any other error for transport problems.
type Ingestor interface {
	Ingest(ctx context.Context, documentID string) (int, error)
}

// Dispatcher hands a triggered job to whatever executes reconciliation:
// the in-process pool or the RabbitMQ publisher consumed by cmd/worker.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobID string) error
}

const (
	docWriteAttempts = 3
	docWriteBackoff  = 200 * time.Millisecond
)

type Service struct {
	repo       *Repo
	docs       *document.Repo
	ingestor   Ingestor
	dispatcher Dispatcher

	// Per-document serialization of the trigger check-and-create section.
	locks lockTable
}

func NewService(repo *Repo, docs *document.Repo, ingestor Ingestor, dispatcher Dispatcher) *Service {
	return &Service{
		repo:       repo,
		docs:       docs,
		ingestor:   ingestor,
		dispatcher: dispatcher,
		locks:      lockTable{entries: make(map[string]*docLock)},
	}
}

type docLock struct {
	mu   sync.Mutex
	refs int
}

// lockTable hands out per-document mutexes. Entries are refcounted and
// removed once no caller holds or waits on them, so the table stays bounded
// by concurrent triggers rather than by every document ever triggered.
type lockTable struct {
	mu      sync.Mutex
	entries map[string]*docLock
}

func (t *lockTable) acquire(id string) *docLock {
	t.mu.Lock()
	l, ok := t.entries[id]
	if !ok {
		l = &docLock{}
		t.entries[id] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
	return l
}

func (t *lockTable) release(id string, l *docLock) {
	l.mu.Unlock()

	t.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(t.entries, id)
	}
	t.mu.Unlock()
}

// TriggerIngestion validates state and access, appends a pending job to the
// ledger, flips the document to pending (atomically with the job insert),
// and dispatches reconciliation. It returns the job as created; completion
// is observable only by polling GetIngestionStatus.
func (s *Service) TriggerIngestion(ctx context.Context, documentID string, actor auth.Actor) (*Job, error) {
	l := s.locks.acquire(documentID)
	defer s.locks.release(documentID, l)

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, document.ErrNotFound
		}
		return nil, err
	}
	if !auth.CanAccess(actor, doc.OwnerID) {
		return nil, document.ErrNotFound
	}
	if doc.Status == document.StatusIngested {
		return nil, ErrAlreadyIngested
	}

	latest, err := s.repo.LatestByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if latest != nil && !latest.Status.Terminal() {
		return nil, ErrInFlight
	}

	now := time.Now()
	job := &Job{
		ID:         ulid.Make().String(),
		DocumentID: documentID,
		Status:     StatusPending,
		StartedAt:  &now,
	}
	if err := s.repo.CreateJobAndMarkDocumentPending(ctx, job); err != nil {
		return nil, err
	}

	if s.dispatcher == nil {
		s.abortJob(ctx, job, ErrNoDispatcher.Error())
		return nil, ErrNoDispatcher
	}
	if err := s.dispatcher.Dispatch(ctx, job.ID); err != nil {
		s.abortJob(ctx, job, "dispatch: "+err.Error())
		return nil, fmt.Errorf("dispatch ingestion job: %w", err)
	}

	return job, nil
}

// abortJob fails a job that never made it to a reconciliation worker, so it
// cannot linger as pending forever.
func (s *Service) abortJob(ctx context.Context, job *Job, reason string) {
	if _, err := s.repo.MarkFailed(ctx, job.ID, reason); err != nil {
		log.Printf("ingest: abort job=%s mark failed: %v", job.ID, err)
	}
	if err := s.repo.UpdateDocumentStatus(ctx, job.DocumentID, document.StatusFailed); err != nil {
		log.Printf("ingest: abort job=%s document=%s status write: %v", job.ID, job.DocumentID, err)
	}
}

// GetIngestionStatus returns every job for the document, newest first.
func (s *Service) GetIngestionStatus(ctx context.Context, documentID string, actor auth.Actor) ([]Job, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, document.ErrNotFound
		}
		return nil, err
	}
	if !auth.CanAccess(actor, doc.OwnerID) {
		return nil, document.ErrNotFound
	}
	return s.repo.ListByDocument(ctx, documentID)
}

// GetAllIngestionStatuses returns all jobs for admins and jobs on owned
// documents for everyone else, newest first.
func (s *Service) GetAllIngestionStatuses(ctx context.Context, actor auth.Actor) ([]Job, error) {
	if actor.IsAdmin() {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByOwner(ctx, actor.ID)
}

// Reconcile runs one job to its terminal state: mark running, call the
// processing service, then record the outcome on both the job and the
// document. It is safe to call again for a job that already finished.
func (s *Service) Reconcile(ctx context.Context, jobID string) error {
	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job.Status.Terminal() {
		log.Printf("ingest: job=%s already %s, skipping", job.ID, job.Status)
		return nil
	}

	// Advisory only; losing this write must not abort the unit.
	if err := s.repo.MarkRunning(ctx, job.ID); err != nil {
		log.Printf("ingest: job=%s mark running: %v", job.ID, err)
	}

	// No lock or transaction is held here; the remote call can take minutes.
	count, err := s.ingestor.Ingest(ctx, job.DocumentID)
	if err != nil {
		return s.finish(ctx, job, document.StatusFailed, err)
	}

	log.Printf("ingest: job=%s document=%s completed embeddings=%d", job.ID, job.DocumentID, count)
	return s.finish(ctx, job, document.StatusIngested, nil)
}

func (s *Service) finish(ctx context.Context, job *Job, docStatus document.Status, cause error) error {
	var wrote bool
	var err error
	if cause == nil {
		wrote, err = s.repo.MarkCompleted(ctx, job.ID)
	} else {
		var domainErr *remote.DomainError
		switch {
		case errors.Is(cause, remote.ErrUnavailable):
			log.Printf("ingest: job=%s processing service unavailable: %v", job.ID, cause)
		case errors.As(cause, &domainErr):
			log.Printf("ingest: job=%s domain failure: %s", job.ID, domainErr.Reason)
		default:
			log.Printf("ingest: job=%s transport failure: %v", job.ID, cause)
		}
		wrote, err = s.repo.MarkFailed(ctx, job.ID, cause.Error())
	}
	if err != nil {
		return fmt.Errorf("job %s terminal write: %w", job.ID, err)
	}
	if !wrote {
		log.Printf("ingest: job=%s reached terminal state elsewhere, leaving document untouched", job.ID)
		return nil
	}

	// The job row is terminal; if every attempt at the document write fails
	// the pair is inconsistent and repair is manual.
	for attempt := 1; attempt <= docWriteAttempts; attempt++ {
		if err = s.repo.UpdateDocumentStatus(ctx, job.DocumentID, docStatus); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt) * docWriteBackoff)
	}
	log.Printf("ingest: INCONSISTENT job=%s terminal but document=%s not set to %s: %v",
		job.ID, job.DocumentID, docStatus, err)
	return fmt.Errorf("document %s status write: %w", job.DocumentID, err)
}
