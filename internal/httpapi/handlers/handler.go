package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/docvault/docvault/internal/common"
	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/ingest"
	"github.com/docvault/docvault/internal/remote"
	"github.com/docvault/docvault/internal/store/redisstore"
)

type Handler struct {
	DB     *gorm.DB
	Cfg    config.Config
	Redis  *redisstore.Store
	Docs   *document.Service
	Ingest *ingest.Service
	Remote *remote.Client
}

func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store,
	docs *document.Service, ing *ingest.Service, rc *remote.Client) *Handler {
	return &Handler{
		DB:     db,
		Cfg:    cfg,
		Redis:  rds,
		Docs:   docs,
		Ingest: ing,
		Remote: rc,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}
