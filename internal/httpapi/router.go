package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/common"
	"github.com/docvault/docvault/internal/httpapi/handlers"
	"github.com/docvault/docvault/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	var denylist middleware.TokenDenylist
	if h.Redis != nil {
		denylist = h.Redis
	}

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(h.Cfg.JWTSecret, denylist))

	authGroup.GET("/auth/me", h.Me)
	authGroup.POST("/auth/logout", h.Logout)

	authGroup.POST("/documents", h.CreateDocument)
	authGroup.POST("/documents/upload", h.UploadDocument)
	authGroup.GET("/documents", h.ListDocuments)
	authGroup.GET("/documents/:id", h.GetDocument)
	authGroup.PATCH("/documents/:id", h.UpdateDocument)
	authGroup.DELETE("/documents/:id", h.DeleteDocument)
	authGroup.GET("/documents/:id/download", h.DownloadDocument)

	authGroup.POST("/ingestion/trigger", h.TriggerIngestion)
	authGroup.GET("/ingestion/status", h.GetAllIngestionStatuses)
	authGroup.GET("/ingestion/status/:document_id", h.GetIngestionStatus)
	authGroup.GET("/ingestion/health", h.IngestionHealth)

	authGroup.POST("/qa", h.AskQuestion)

	adminGroup := authGroup.Group("/")
	adminGroup.Use(middleware.AdminRequired())
	adminGroup.GET("/users", h.ListUsers)
	adminGroup.GET("/users/:id", h.GetUser)
	adminGroup.DELETE("/users/:id", h.DeleteUser)
	adminGroup.PATCH("/users/:id/role", h.UpdateUserRole)

	// Service-to-service surface for the processing backend.
	internalGroup := r.Group("/internal")
	internalGroup.Use(middleware.InternalAuth(h.Cfg.InternalToken))
	internalGroup.GET("/documents/:id", h.GetDocumentInternal)

	return r
}
