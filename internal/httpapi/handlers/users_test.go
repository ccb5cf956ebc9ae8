package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docvault/docvault/internal/models"
)

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "x",
		Role:         models.RoleViewer,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func newUserRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/users/:id", h.GetUser)
	r.DELETE("/users/:id", h.DeleteUser)
	return r
}

func TestGetUser(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	r := newUserRouter(&Handler{DB: db})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/"+u.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/"+uuid.NewString(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for unknown user", w.Code)
	}
}

func TestDeleteUser(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	r := newUserRouter(&Handler{DB: db})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/"+u.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var n int64
	db.Model(&models.User{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected user removed, count=%d", n)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/"+u.ID, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 on repeat delete", w.Code)
	}
}
