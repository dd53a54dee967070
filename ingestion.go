package duograph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/duograph/duograph/pkg/audit"
	"github.com/duograph/duograph/pkg/journal"
	"github.com/duograph/duograph/pkg/notify"
	"github.com/duograph/duograph/pkg/types"
)

// AddDocument ingests a document into both stores. The write order is
// fixed: vector store first, graph store second. Once the vector write
// commits it is never rolled back; a graph-stage failure returns an
// IngestError with VectorCommitted set and leaves a partial_failure
// journal entry for RepairDocument.
func (c *Client) AddDocument(ctx context.Context, doc types.Document) (*types.IngestResult, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	mu := c.lock(doc.ID)
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()
	c.journalBegin("add", doc.ID, doc.Subject)

	embedding := doc.Embedding
	if len(embedding) == 0 {
		var err error
		embedding, err = c.embedder.EmbedSingle(ctx, doc.Content)
		if err != nil {
			c.journalFail(doc.ID, journal.StageFailed, err)
			c.auditRecord("add", doc, string(StageEmbedding), audit.OutcomeFailed, start, err)
			return nil, &IngestError{DocumentID: doc.ID, Stage: StageEmbedding, Err: err}
		}
	}
	doc.Embedding = embedding

	if err := c.vectors.Upsert(ctx, doc); err != nil {
		c.journalFail(doc.ID, journal.StageFailed, err)
		c.auditRecord("add", doc, string(StageVector), audit.OutcomeFailed, start, err)
		c.logger.Error("vector upsert failed", "document_id", doc.ID, "error", err)
		return nil, &IngestError{DocumentID: doc.ID, Stage: StageVector, Err: err}
	}
	c.journalAdvance(doc.ID, journal.StageVectorApplied)

	if err := c.graph.MergeDocumentNode(ctx, doc.ID, doc.Subject); err != nil {
		c.journalFail(doc.ID, journal.StagePartialFailure, err)
		c.auditRecord("add", doc, string(StageGraph), audit.OutcomePartialFailure, start, err)
		c.logger.Error("graph merge failed after vector commit",
			"document_id", doc.ID, "subject", doc.Subject, "error", err)

		c.publish(ctx, notify.NewEvent(notify.EventIngestPartialFailure, doc.ID, doc.Subject, err.Error()))
		if alertErr := c.alerter.Alert(
			fmt.Sprintf("Partial ingest failure: %s", doc.ID),
			fmt.Sprintf("Document %s (subject %s) is present in the vector store but its graph merge failed: %v. Run a repair for this document.", doc.ID, doc.Subject, err),
		); alertErr != nil {
			c.logger.Warn("failed to send partial-failure alert", "document_id", doc.ID, "error", alertErr)
		}

		return nil, &IngestError{DocumentID: doc.ID, Stage: StageGraph, VectorCommitted: true, Err: err}
	}
	c.journalAdvance(doc.ID, journal.StageGraphApplied)
	c.journalResolve(doc.ID)

	c.auditRecord("add", doc, string(journal.StageDone), audit.OutcomeSuccess, start, nil)
	c.publish(ctx, notify.NewEvent(notify.EventDocumentIngested, doc.ID, doc.Subject, ""))
	c.logger.Info("document ingested",
		"document_id", doc.ID, "subject", doc.Subject, "dimensions", len(embedding))

	return &types.IngestResult{
		ID:         doc.ID,
		Subject:    doc.Subject,
		Dimensions: len(embedding),
		IngestedAt: time.Now().UTC(),
	}, nil
}

// DeleteDocument removes a document from both stores. Both deletions are
// always attempted; an error on one side never skips the other. The
// result reports per-store counts, and ErrNotFound means neither store
// held the id.
func (c *Client) DeleteDocument(ctx context.Context, id string) (*types.DeleteResult, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	if err := validateDocumentID(id); err != nil {
		return nil, err
	}

	mu := c.lock(id)
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()
	c.journalBegin("delete", id, "")

	doc := types.Document{ID: id}
	vectorDeleted, vectorErr := c.vectors.Delete(ctx, id)
	if vectorErr == nil {
		c.journalAdvance(id, journal.StageVectorApplied)
	}
	graphDeleted, graphErr := c.graph.DeleteNode(ctx, id)
	if graphErr == nil && vectorErr == nil {
		c.journalAdvance(id, journal.StageGraphApplied)
	}

	if vectorErr != nil || graphErr != nil {
		err := errors.Join(vectorErr, graphErr)
		if vectorDeleted > 0 || graphDeleted > 0 {
			// One side deleted, the other errored: the document may
			// survive there. Keep the entry for a repair pass.
			c.journalFail(id, journal.StagePartialFailure, err)
			c.auditRecord("delete", doc, string(journal.StagePartialFailure), audit.OutcomePartialFailure, start, err)
		} else {
			c.journalFail(id, journal.StageFailed, err)
			c.auditRecord("delete", doc, string(journal.StageFailed), audit.OutcomeFailed, start, err)
		}
		c.logger.Error("delete failed", "document_id", id, "error", err)
		return nil, &TransientError{Op: "delete " + id, Err: err}
	}

	c.journalResolve(id)
	result := &types.DeleteResult{ID: id, VectorDeleted: vectorDeleted, GraphDeleted: graphDeleted}
	if !result.Found() {
		c.auditRecord("delete", doc, string(journal.StageDone), audit.OutcomeNotFound, start, nil)
		return result, ErrNotFound
	}

	c.auditRecord("delete", doc, string(journal.StageDone), audit.OutcomeSuccess, start, nil)
	c.publish(ctx, notify.NewEvent(notify.EventDocumentRemoved, id, "", ""))
	c.logger.Info("document removed",
		"document_id", id, "vector_deleted", vectorDeleted, "graph_deleted", graphDeleted)
	return result, nil
}

// PendingRepairs lists journal entries for operations that never reached
// a terminal stage. Without a journal it reports nothing.
func (c *Client) PendingRepairs() ([]journal.Entry, error) {
	if c.journal == nil {
		return nil, nil
	}
	return c.journal.Pending()
}

// RepairDocument retries the unfinished side of a journaled operation.
// For an add with a committed vector stage that means re-merging the
// graph node; for a partial delete, re-deleting from both stores. The
// journal entry is read under the per-id lock so a concurrent lifecycle
// operation cannot change it between the read and the repair.
func (c *Client) RepairDocument(ctx context.Context, id string) error {
	if c.isClosed() {
		return ErrClosed
	}
	if c.journal == nil {
		return errors.New("no journal configured")
	}

	mu := c.lock(id)
	mu.Lock()

	entry, err := c.journal.Get(id)
	if err != nil {
		mu.Unlock()
		if errors.Is(err, journal.ErrNoEntry) {
			return ErrNotFound
		}
		return err
	}

	switch entry.Operation {
	case "add":
		defer mu.Unlock()

		switch entry.Stage {
		case journal.StageVectorApplied, journal.StagePartialFailure:
			// Vector committed, graph side unfinished: the one case the
			// graph merge repairs.
		case journal.StageGraphApplied, journal.StageDone:
			// Both sides committed, only the resolve was lost.
			c.journalResolve(id)
			return nil
		default:
			// Nothing committed. Re-merging here would create a graph
			// node with no vector row.
			c.journalResolve(id)
			c.logger.Info("cleared failed ingest entry, nothing to repair",
				"document_id", id, "stage", string(entry.Stage))
			return nil
		}

		if err := c.graph.MergeDocumentNode(ctx, id, entry.Subject); err != nil {
			c.journalFail(id, journal.StagePartialFailure, err)
			return &IngestError{DocumentID: id, Stage: StageGraph, VectorCommitted: true, Err: err}
		}
		c.journalResolve(id)
		c.logger.Info("repaired partial ingest", "document_id", id, "subject", entry.Subject)
		return nil
	case "delete":
		// DeleteDocument takes the per-id lock itself.
		mu.Unlock()
		_, err := c.DeleteDocument(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	default:
		mu.Unlock()
		return fmt.Errorf("unknown journaled operation %q for %s", entry.Operation, id)
	}
}

func validateDocument(doc types.Document) error {
	if err := validateDocumentID(doc.ID); err != nil {
		return err
	}
	if strings.TrimSpace(doc.Subject) == "" {
		return &ValidationError{Field: "subject", Reason: "must not be empty"}
	}
	if strings.TrimSpace(doc.Content) == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	return nil
}

// validateDocumentID rejects empty ids and ids that could escape into
// path or query contexts. Ids end up in journal keys and log lines, so
// separators are refused outright.
func validateDocumentID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return &ValidationError{Field: "id", Reason: "must not contain path separators"}
	}
	if len(id) > 512 {
		return &ValidationError{Field: "id", Reason: "exceeds maximum length (512)"}
	}
	return nil
}

// Journal helpers tolerate a nil journal and log write failures instead
// of failing the lifecycle operation.

func (c *Client) journalBegin(operation, id, subject string) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Begin(operation, id, subject); err != nil {
		c.logger.Warn("journal write failed", "document_id", id, "error", err)
	}
}

func (c *Client) journalAdvance(id string, stage journal.Stage) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Advance(id, stage); err != nil {
		c.logger.Warn("journal write failed", "document_id", id, "error", err)
	}
}

func (c *Client) journalFail(id string, stage journal.Stage, cause error) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Fail(id, stage, cause); err != nil {
		c.logger.Warn("journal write failed", "document_id", id, "error", err)
	}
}

func (c *Client) journalResolve(id string) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Resolve(id); err != nil {
		c.logger.Warn("journal write failed", "document_id", id, "error", err)
	}
}

func (c *Client) auditRecord(operation string, doc types.Document, stage, outcome string, start time.Time, cause error) {
	if c.audit == nil {
		return
	}
	rec := audit.Record{
		Operation:  operation,
		DocumentID: doc.ID,
		Subject:    doc.Subject,
		Stage:      stage,
		Outcome:    outcome,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if cause != nil {
		rec.Error = cause.Error()
	}
	if err := c.audit.Record(rec); err != nil {
		c.logger.Warn("audit write failed", "document_id", doc.ID, "error", err)
	}
}

// publish delivers a lifecycle event, logging delivery failures. Events
// are best-effort and never fail the operation that produced them.
func (c *Client) publish(ctx context.Context, event notify.Event) {
	if err := c.notifier.Publish(ctx, event); err != nil {
		c.logger.Warn("event publish failed",
			"event_type", event.Type, "document_id", event.DocumentID, "error", err)
	}
}
