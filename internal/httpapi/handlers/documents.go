package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/common"
	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/httpapi/middleware"
)

// 32 MiB, matching the blob column budget.
const maxUploadSize = 32 << 20

type createDocumentReq struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

func (h *Handler) CreateDocument(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createDocumentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	doc, err := h.Docs.Create(c.Request.Context(), actor, document.CreateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create document")
		return
	}
	common.OK(c, doc)
}

func (h *Handler) UploadDocument(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10006, "file field required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		common.Fail(c, http.StatusRequestEntityTooLarge, 10007, "file too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10008, "failed to read file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil || int64(len(data)) > maxUploadSize {
		common.Fail(c, http.StatusBadRequest, 10008, "failed to read file")
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = fileHeader.Filename
	}

	doc, err := h.Docs.Create(c.Request.Context(), actor, document.CreateInput{
		Title:        title,
		Content:      c.PostForm("content"),
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		FileContent:  data,
	})
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create document")
		return
	}
	common.OK(c, doc)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	docs, err := h.Docs.List(c.Request.Context(), actor)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list documents")
		return
	}
	common.OK(c, gin.H{"documents": docs})
}

func (h *Handler) GetDocument(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	doc, err := h.Docs.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "document not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, doc)
}

type updateDocumentReq struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (h *Handler) UpdateDocument(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req updateDocumentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	doc, err := h.Docs.Update(c.Request.Context(), actor, c.Param("id"), document.UpdateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "document not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to update document")
		return
	}
	common.OK(c, doc)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	if err := h.Docs.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		if errors.Is(err, document.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "document not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to delete document")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}

func (h *Handler) DownloadDocument(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	doc, err := h.Docs.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "document not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if len(doc.FileContent) == 0 {
		common.Fail(c, http.StatusNotFound, 40403, "document has no file content")
		return
	}

	mime := "application/octet-stream"
	if doc.MimeType != nil && *doc.MimeType != "" {
		mime = *doc.MimeType
	}
	name := doc.Title
	if doc.OriginalName != nil && *doc.OriginalName != "" {
		name = *doc.OriginalName
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, mime, doc.FileContent)
}

// GetDocumentInternal serves the processing service during ingestion. It is
// reachable only through the shared-secret internal group and skips the
// ownership policy.
func (h *Handler) GetDocumentInternal(c *gin.Context) {
	doc, err := h.Docs.GetInternal(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "document not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	resp := gin.H{
		"id":            doc.ID,
		"title":         doc.Title,
		"content":       doc.Content,
		"status":        doc.Status,
		"owner_id":      doc.OwnerID,
		"original_name": doc.OriginalName,
		"mime_type":     doc.MimeType,
		"file_size":     doc.FileSize,
		"file_content":  doc.FileContent, // base64 in JSON
		"created_at":    doc.CreatedAt,
	}
	common.OK(c, resp)
}
