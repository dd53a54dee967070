package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duograph/duograph"
	"github.com/duograph/duograph/pkg/server/dto"
	"github.com/duograph/duograph/pkg/types"
)

// Extractor turns an uploaded file into plain text. Text extraction is
// outside the core; richer formats plug in their own implementation.
type Extractor interface {
	Extract(filename string, data []byte) (string, error)
}

// PlainTextExtractor treats the upload as UTF-8 text.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(filename string, data []byte) (string, error) {
	return string(data), nil
}

// DocumentsHandler handles document lifecycle requests
type DocumentsHandler struct {
	client    duograph.Duograph
	extractor Extractor
}

// NewDocumentsHandler creates a new documents handler. A nil extractor
// falls back to plain-text extraction.
func NewDocumentsHandler(client duograph.Duograph, extractor Extractor) *DocumentsHandler {
	if extractor == nil {
		extractor = PlainTextExtractor{}
	}
	return &DocumentsHandler{client: client, extractor: extractor}
}

// contextWithTimeout derives a bounded context from the request.
func contextWithTimeout(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}

// documentIDFromFilename derives the document id from an uploaded
// filename: base name with the extension stripped.
func documentIDFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Ingest handles POST /documents. Two payload shapes are accepted: a
// multipart form with a "file" part and a "subject" field, where the
// document id is derived from the filename, or a JSON body with explicit
// id, subject, and content.
func (h *DocumentsHandler) Ingest(c *gin.Context) {
	req, err := h.parseIngest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	ctx, cancel := contextWithTimeout(c, 60*time.Second)
	defer cancel()

	result, err := h.client.AddDocument(ctx, types.Document{
		ID:      req.ID,
		Subject: req.Subject,
		Content: req.Content,
	})
	if err != nil {
		writeIngestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.IngestResponse{
		Success:    true,
		ID:         result.ID,
		Subject:    result.Subject,
		Dimensions: result.Dimensions,
	})
}

func (h *DocumentsHandler) parseIngest(c *gin.Context) (*dto.IngestRequest, error) {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return nil, errors.New("file part is required")
		}
		if fileHeader.Size > dto.MaxContentLength {
			return nil, dto.ErrContentTooLong
		}

		f, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}

		content, err := h.extractor.Extract(fileHeader.Filename, data)
		if err != nil {
			return nil, err
		}
		return &dto.IngestRequest{
			ID:      documentIDFromFilename(fileHeader.Filename),
			Subject: c.PostForm("subject"),
			Content: content,
		}, nil
	}

	var req dto.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, errors.New("id is required")
	}
	return &req, nil
}

// writeIngestError maps coordinator errors onto HTTP responses. A partial
// failure gets its own payload shape so callers can tell it from both
// success and a clean failure.
func writeIngestError(c *gin.Context, err error) {
	var ingestErr *duograph.IngestError
	if errors.As(err, &ingestErr) && ingestErr.VectorCommitted {
		c.JSON(http.StatusConflict, dto.PartialFailureResponse{
			Error:           "partial_ingest_failure",
			ID:              ingestErr.DocumentID,
			Stage:           string(ingestErr.Stage),
			VectorCommitted: true,
			Message:         ingestErr.Error(),
		})
		return
	}

	var validationErr *duograph.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "ingest_failed", Message: err.Error()})
}

// Delete handles DELETE /documents/:id. A document absent from both
// stores yields 404; anything else that is not success is a 5xx.
func (h *DocumentsHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := contextWithTimeout(c, 30*time.Second)
	defer cancel()

	result, err := h.client.DeleteDocument(ctx, id)
	if err != nil {
		if errors.Is(err, duograph.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "not_found",
				Message: "document " + id + " is not present in either store",
			})
			return
		}
		var validationErr *duograph.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "delete_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.DeleteResponse{
		Success:       true,
		ID:            result.ID,
		VectorDeleted: result.VectorDeleted,
		GraphDeleted:  result.GraphDeleted,
	})
}
