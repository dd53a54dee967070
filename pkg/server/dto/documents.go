package dto

import (
	"errors"
	"strings"
)

// Validation errors
var (
	ErrEmptySubject   = errors.New("subject cannot be empty")
	ErrEmptyQuery     = errors.New("query cannot be empty")
	ErrSubjectTooLong = errors.New("subject exceeds maximum length (256)")
	ErrContentTooLong = errors.New("content exceeds maximum length (10MB)")
	ErrLimitTooLarge  = errors.New("limit exceeds maximum (100)")
)

// Field limits guard against abusive payloads.
const (
	MaxSubjectLength = 256
	MaxContentLength = 10 * 1024 * 1024
	MaxLimit         = 100
)

// IngestRequest is the JSON form of a document ingest. The multipart form
// upload path builds the same request from the uploaded file.
type IngestRequest struct {
	ID      string `json:"id,omitempty"`
	Subject string `json:"subject" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Validate performs validation on IngestRequest.
func (r *IngestRequest) Validate() error {
	if strings.TrimSpace(r.Subject) == "" {
		return ErrEmptySubject
	}
	if len(r.Subject) > MaxSubjectLength {
		return ErrSubjectTooLong
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content cannot be empty")
	}
	if len(r.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// IngestResponse reports a completed ingest.
type IngestResponse struct {
	Success    bool   `json:"success"`
	ID         string `json:"id"`
	Subject    string `json:"subject"`
	Dimensions int    `json:"dimensions"`
	Message    string `json:"message,omitempty"`
}

// DeleteResponse reports a completed deletion.
type DeleteResponse struct {
	Success       bool   `json:"success"`
	ID            string `json:"id"`
	VectorDeleted int64  `json:"vector_deleted"`
	GraphDeleted  int64  `json:"graph_deleted"`
}

// SearchRequest is the hybrid search payload.
type SearchRequest struct {
	Query   string `json:"query" binding:"required"`
	Subject string `json:"subject,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// Validate performs validation on SearchRequest.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	if len(r.Subject) > MaxSubjectLength {
		return ErrSubjectTooLong
	}
	if r.Limit < 0 || r.Limit > MaxLimit {
		return ErrLimitTooLarge
	}
	return nil
}
