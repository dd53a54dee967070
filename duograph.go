package duograph

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/duograph/duograph/pkg/alert"
	"github.com/duograph/duograph/pkg/audit"
	"github.com/duograph/duograph/pkg/embedder"
	"github.com/duograph/duograph/pkg/graphstore"
	"github.com/duograph/duograph/pkg/journal"
	"github.com/duograph/duograph/pkg/notify"
	"github.com/duograph/duograph/pkg/vectorstore"
)

// Config holds coordinator behavior settings. The zero value is usable;
// unset fields fall back to the documented defaults.
type Config struct {
	// DefaultLimit is the result cap per modality when a retrieval does
	// not specify one. Zero means 5.
	DefaultLimit int

	// AllowPartialResults lets Retrieve return the surviving modality
	// when exactly one sub-search fails, marking the result as partial,
	// instead of failing the whole retrieval.
	AllowPartialResults bool
}

func (c Config) defaultLimit() int {
	if c.DefaultLimit > 0 {
		return c.DefaultLimit
	}
	return 5
}

// Client is the entry point for the library. It owns the document
// lifecycle coordinator and the hybrid retrieval coordinator over the two
// backing stores.
type Client struct {
	vectors  vectorstore.Store
	graph    graphstore.Store
	embedder embedder.Client

	journal  *journal.Journal
	audit    *audit.Recorder
	notifier notify.Notifier
	alerter  alert.Alerter

	config Config
	logger *slog.Logger

	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	closed bool
}

// Option customizes a Client beyond its required collaborators.
type Option func(*Client)

// WithJournal attaches a saga journal. Without one, in-flight stage state
// is not persisted and PendingRepairs reports nothing.
func WithJournal(j *journal.Journal) Option {
	return func(c *Client) { c.journal = j }
}

// WithAudit attaches an audit recorder for lifecycle outcomes.
func WithAudit(a *audit.Recorder) Option {
	return func(c *Client) { c.audit = a }
}

// WithNotifier attaches a lifecycle event sink.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithAlerter attaches an operator alerter for partial failures.
func WithAlerter(a alert.Alerter) Option {
	return func(c *Client) { c.alerter = a }
}

// NewClient creates a coordinator over the given stores and embedder.
// All three are required; logger may be nil for silent operation.
func NewClient(vectors vectorstore.Store, graph graphstore.Store, emb embedder.Client, config Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if vectors == nil {
		return nil, errors.New("vector store is required")
	}
	if graph == nil {
		return nil, errors.New("graph store is required")
	}
	if emb == nil {
		return nil, errors.New("embedder is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		vectors:  vectors,
		graph:    graph,
		embedder: emb,
		notifier: notify.NoopNotifier{},
		alerter:  &alert.NoOpAlerter{},
		config:   config,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// lock returns the mutex serializing lifecycle operations for a document
// id. Operations on distinct ids proceed concurrently; operations on the
// same id apply in lock-acquisition order. The map keeps one mutex per
// id ever touched and never evicts; eviction would need refcounting to
// tell an idle mutex from one a goroutine is blocked on.
func (c *Client) lock(id string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.locks[id]
	if !ok {
		m = &sync.Mutex{}
		c.locks[id] = m
	}
	return m
}

// isClosed reports whether Close has been called.
func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close releases all owned resources. The client is unusable afterwards.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	var errs []error
	c.vectors.Close()
	if err := c.graph.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := c.embedder.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.journal != nil {
		if err := c.journal.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.audit != nil {
		if err := c.audit.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.notifier.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
