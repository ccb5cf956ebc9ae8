package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/common"
	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/httpapi/middleware"
	"github.com/docvault/docvault/internal/remote"
)

type askQuestionReq struct {
	Question    string   `json:"question" binding:"required"`
	DocumentIDs []string `json:"document_ids"`
}

// AskQuestion proxies to the processing service's QA endpoint. Answering is
// owned by that service; this layer authenticates, checks that the caller may
// see every referenced document, and forwards.
func (h *Handler) AskQuestion(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req askQuestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	// Scoping documents to the caller happens here, not in the remote
	// service; a foreign or unknown id fails the whole request.
	for _, id := range req.DocumentIDs {
		if _, err := h.Docs.Get(c.Request.Context(), actor, id); err != nil {
			if errors.Is(err, document.ErrNotFound) {
				common.Fail(c, http.StatusNotFound, 40402, "document not found")
				return
			}
			common.Fail(c, http.StatusInternalServerError, 20001, "db error")
			return
		}
	}

	res, err := h.Remote.AskQuestion(c.Request.Context(), req.Question, req.DocumentIDs)
	if err != nil {
		var domainErr *remote.DomainError
		switch {
		case errors.Is(err, remote.ErrUnavailable):
			common.Fail(c, http.StatusServiceUnavailable, 50311, "processing service unreachable")
		case errors.As(err, &domainErr):
			common.Fail(c, http.StatusBadGateway, 50210, domainErr.Reason)
		default:
			common.Fail(c, http.StatusBadGateway, 50211, "failed to reach processing service")
		}
		return
	}
	common.OK(c, res)
}
