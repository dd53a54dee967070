// Package audit records the outcome of every document lifecycle operation
// to Parquet files, giving operators a queryable trail of ingests,
// deletions, and partial failures.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// Record is a single audited lifecycle outcome.
type Record struct {
	ID         string    `parquet:"id"`
	Timestamp  time.Time `parquet:"timestamp"`
	Operation  string    `parquet:"operation"` // "add" or "delete"
	DocumentID string    `parquet:"document_id"`
	Subject    string    `parquet:"subject"`
	Stage      string    `parquet:"stage"` // last stage reached
	Outcome    string    `parquet:"outcome"`
	DurationMs int64     `parquet:"duration_ms"`
	Error      string    `parquet:"error"`
}

// Outcome values.
const (
	OutcomeSuccess        = "success"
	OutcomeNotFound       = "not_found"
	OutcomeFailed         = "failed"
	OutcomePartialFailure = "partial_failure"
)

// Recorder buffers records and flushes them to timestamped Parquet files.
type Recorder struct {
	outputDir string
	batchSize int

	mu     sync.Mutex
	buffer []Record
}

// NewRecorder creates a recorder writing under outputDir.
func NewRecorder(outputDir string) (*Recorder, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	return &Recorder{
		outputDir: outputDir,
		batchSize: 100,
		buffer:    make([]Record, 0, 100),
	}, nil
}

// Record buffers one lifecycle outcome. The record's ID and Timestamp are
// filled in if empty.
func (r *Recorder) Record(rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, rec)
	if len(r.buffer) >= r.batchSize {
		return r.flush()
	}
	return nil
}

// flush writes the buffer to a new Parquet file. Caller must hold the lock.
func (r *Recorder) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("lifecycle_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(r.outputDir, filename)

	if err := parquet.WriteFile(path, r.buffer); err != nil {
		return fmt.Errorf("failed to write audit parquet file: %w", err)
	}

	r.buffer = r.buffer[:0]
	return nil
}

// Flush forces any buffered records to disk.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush()
}

// Close flushes remaining records.
func (r *Recorder) Close() error {
	return r.Flush()
}
