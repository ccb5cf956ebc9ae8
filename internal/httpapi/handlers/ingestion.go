package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/common"
	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/httpapi/middleware"
	"github.com/docvault/docvault/internal/ingest"
)

type triggerIngestionReq struct {
	DocumentID string `json:"document_id" binding:"required"`
}

func (h *Handler) TriggerIngestion(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req triggerIngestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	job, err := h.Ingest.TriggerIngestion(c.Request.Context(), req.DocumentID, actor)
	if err != nil {
		switch {
		case errors.Is(err, document.ErrNotFound):
			common.Fail(c, http.StatusNotFound, 40402, "document not found")
		case errors.Is(err, ingest.ErrAlreadyIngested):
			common.Fail(c, http.StatusBadRequest, 40010, "document is already ingested")
		case errors.Is(err, ingest.ErrInFlight):
			common.Fail(c, http.StatusConflict, 40910, "ingestion already in flight for this document")
		case errors.Is(err, ingest.ErrQueueFull), errors.Is(err, ingest.ErrPoolStopped):
			common.Fail(c, http.StatusServiceUnavailable, 50310, "ingestion queue is saturated, try again later")
		default:
			common.Fail(c, http.StatusInternalServerError, 50011, "failed to trigger ingestion")
		}
		return
	}

	common.OK(c, job)
}

func (h *Handler) GetIngestionStatus(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	jobs, err := h.Ingest.GetIngestionStatus(c.Request.Context(), c.Param("document_id"), actor)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "document not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50012, "failed to load ingestion status")
		return
	}
	common.OK(c, gin.H{"jobs": jobs})
}

func (h *Handler) GetAllIngestionStatuses(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	jobs, err := h.Ingest.GetAllIngestionStatuses(c.Request.Context(), actor)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50012, "failed to load ingestion status")
		return
	}
	common.OK(c, gin.H{"jobs": jobs})
}

func (h *Handler) IngestionHealth(c *gin.Context) {
	if err := h.Remote.Health(c.Request.Context()); err != nil {
		common.Fail(c, http.StatusServiceUnavailable, 50311, "processing service unreachable")
		return
	}
	common.OK(c, gin.H{"processing_service": "up"})
}
