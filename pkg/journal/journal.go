// Package journal persists the saga state of every document lifecycle
// operation. The two backing stores cannot share a transaction, so each
// add/delete is recorded as ordered stage transitions; entries that never
// reach a terminal stage identify documents needing a repair pass.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Stage is a saga state for a lifecycle operation.
type Stage string

const (
	StageStarted        Stage = "started"
	StageVectorApplied  Stage = "vector_applied"
	StageGraphApplied   Stage = "graph_applied"
	StageDone           Stage = "done"
	StagePartialFailure Stage = "partial_failure"
	StageFailed         Stage = "failed"
)

// Entry is the journaled state of one (operation, document) pair.
type Entry struct {
	Operation  string    `json:"operation"` // "add" or "delete"
	DocumentID string    `json:"document_id"`
	Subject    string    `json:"subject,omitempty"`
	Stage      Stage     `json:"stage"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	LastError  string    `json:"last_error,omitempty"`
}

// ErrNoEntry is returned when no journal entry exists for a document.
var ErrNoEntry = errors.New("no journal entry")

// Journal stores lifecycle entries in a badger key-value database.
type Journal struct {
	db *badger.DB
}

// Open opens (or creates) a journal at dir. An empty dir opens an
// in-memory journal, useful for tests and throwaway runs.
func Open(dir string) (*Journal, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return &Journal{db: db}, nil
}

func key(documentID string) []byte {
	return []byte("lifecycle/" + documentID)
}

func (j *Journal) put(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(entry.DocumentID), data)
	})
}

// Begin records the start of a lifecycle operation for documentID. Any
// previous entry for the same document is overwritten: the per-document
// lock in the coordinator guarantees one active operation per id.
func (j *Journal) Begin(operation, documentID, subject string) error {
	now := time.Now().UTC()
	return j.put(Entry{
		Operation:  operation,
		DocumentID: documentID,
		Subject:    subject,
		Stage:      StageStarted,
		StartedAt:  now,
		UpdatedAt:  now,
	})
}

// Advance moves the entry for documentID to stage.
func (j *Journal) Advance(documentID string, stage Stage) error {
	entry, err := j.Get(documentID)
	if err != nil {
		return err
	}
	entry.Stage = stage
	entry.UpdatedAt = time.Now().UTC()
	return j.put(entry)
}

// Fail marks the entry for documentID with a failure stage and the error
// text, keeping it for a later repair pass.
func (j *Journal) Fail(documentID string, stage Stage, cause error) error {
	entry, err := j.Get(documentID)
	if err != nil {
		return err
	}
	entry.Stage = stage
	entry.UpdatedAt = time.Now().UTC()
	if cause != nil {
		entry.LastError = cause.Error()
	}
	return j.put(entry)
}

// Resolve removes the entry for documentID. Called when an operation
// completes cleanly or an operator has repaired a partial failure.
func (j *Journal) Resolve(documentID string) error {
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(documentID))
	})
}

// Get returns the entry for documentID, or ErrNoEntry.
func (j *Journal) Get(documentID string) (Entry, error) {
	var entry Entry
	err := j.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(documentID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNoEntry
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	return entry, err
}

// Pending returns all entries that have not resolved: operations still in
// flight plus partial failures awaiting repair.
func (j *Journal) Pending() ([]Entry, error) {
	var entries []Entry
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("lifecycle/")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var entry Entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan journal: %w", err)
	}
	return entries, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
