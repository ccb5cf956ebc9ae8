package document_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault/internal/auth"
	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/ingest"
	"github.com/docvault/docvault/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&document.Document{}, &ingest.Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

var (
	owner    = auth.Actor{ID: "u-owner", Role: models.RoleEditor}
	admin    = auth.Actor{ID: "u-admin", Role: models.RoleAdmin}
	stranger = auth.Actor{ID: "u-other", Role: models.RoleViewer}
)

func newService(db *gorm.DB) *document.Service {
	return document.NewService(document.NewRepo(db))
}

func TestCreate_SetsOwnerAndPendingStatus(t *testing.T) {
	db := openTestDB(t)
	svc := newService(db)

	doc, err := svc.Create(context.Background(), owner, document.CreateInput{
		Title:   "notes",
		Content: "hello",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("expected generated id")
	}
	if doc.OwnerID == nil || *doc.OwnerID != owner.ID {
		t.Fatalf("owner = %v, want %s", doc.OwnerID, owner.ID)
	}
	if doc.Status != document.StatusPending {
		t.Fatalf("status = %s, want pending", doc.Status)
	}
}

func TestCreate_WithFileContent(t *testing.T) {
	db := openTestDB(t)
	svc := newService(db)

	data := []byte("%PDF-1.4 fake")
	doc, err := svc.Create(context.Background(), owner, document.CreateInput{
		Title:        "report.pdf",
		OriginalName: "report.pdf",
		MimeType:     "application/pdf",
		FileContent:  data,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.FileSize == nil || *doc.FileSize != int64(len(data)) {
		t.Fatalf("file size = %v, want %d", doc.FileSize, len(data))
	}
	if doc.MimeType == nil || *doc.MimeType != "application/pdf" {
		t.Fatalf("mime = %v", doc.MimeType)
	}

	got, err := svc.Get(context.Background(), owner, doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.FileContent) != string(data) {
		t.Fatalf("blob roundtrip mismatch")
	}
}

func TestList_ScopedByOwnerUnlessAdmin(t *testing.T) {
	db := openTestDB(t)
	svc := newService(db)

	mustCreate := func(actor auth.Actor, title string) {
		t.Helper()
		if _, err := svc.Create(context.Background(), actor, document.CreateInput{Title: title}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	mustCreate(owner, "a")
	mustCreate(owner, "b")
	mustCreate(stranger, "c")

	ownDocs, err := svc.List(context.Background(), owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ownDocs) != 2 {
		t.Fatalf("owner expected 2 documents, got %d", len(ownDocs))
	}

	allDocs, err := svc.List(context.Background(), admin)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(allDocs) != 3 {
		t.Fatalf("admin expected 3 documents, got %d", len(allDocs))
	}
}

func TestGet_HidesForeignDocuments(t *testing.T) {
	db := openTestDB(t)
	svc := newService(db)

	doc, err := svc.Create(context.Background(), owner, document.CreateInput{Title: "secret"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(context.Background(), stranger, doc.ID); !errors.Is(err, document.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for stranger, got %v", err)
	}
	if _, err := svc.Get(context.Background(), admin, doc.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if _, err := svc.Get(context.Background(), owner, uuid.NewString()); !errors.Is(err, document.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestUpdate_ChangesFieldsButNeverStatus(t *testing.T) {
	db := openTestDB(t)
	svc := newService(db)

	doc, err := svc.Create(context.Background(), owner, document.CreateInput{Title: "v1", Content: "old"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Simulate the orchestrator having ingested the document.
	if err := db.Model(&document.Document{}).Where("id = ?", doc.ID).
		Update("status", document.StatusIngested).Error; err != nil {
		t.Fatalf("seed status: %v", err)
	}

	title := "v2"
	updated, err := svc.Update(context.Background(), owner, doc.ID, document.UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "v2" {
		t.Fatalf("title = %q, want v2", updated.Title)
	}
	if updated.Content != "old" {
		t.Fatalf("content changed unexpectedly: %q", updated.Content)
	}
	if updated.Status != document.StatusIngested {
		t.Fatalf("status = %s; update must not touch status", updated.Status)
	}

	if _, err := svc.Update(context.Background(), stranger, doc.ID, document.UpdateInput{Title: &title}); !errors.Is(err, document.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for stranger update, got %v", err)
	}
}

func TestDelete_CascadesLedgerRows(t *testing.T) {
	db := openTestDB(t)
	svc := newService(db)

	doc, err := svc.Create(context.Background(), owner, document.CreateInput{Title: "doomed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now()
	for i := 0; i < 2; i++ {
		j := &ingest.Job{
			ID:         fmt.Sprintf("%026d", now.UnixNano()+int64(i)),
			DocumentID: doc.ID,
			Status:     ingest.StatusFailed,
			CreatedAt:  now,
		}
		if err := db.Create(j).Error; err != nil {
			t.Fatalf("seed job: %v", err)
		}
	}

	if err := svc.Delete(context.Background(), owner, doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var docs, jobs int64
	db.Model(&document.Document{}).Count(&docs)
	db.Model(&ingest.Job{}).Count(&jobs)
	if docs != 0 || jobs != 0 {
		t.Fatalf("expected cascade delete, have docs=%d jobs=%d", docs, jobs)
	}
}

func TestDelete_HiddenFromNonOwners(t *testing.T) {
	db := openTestDB(t)
	svc := newService(db)

	doc, err := svc.Create(context.Background(), owner, document.CreateInput{Title: "keep"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), stranger, doc.ID); !errors.Is(err, document.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var n int64
	db.Model(&document.Document{}).Count(&n)
	if n != 1 {
		t.Fatalf("document must survive foreign delete, count=%d", n)
	}
}
