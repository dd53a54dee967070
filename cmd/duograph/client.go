package duograph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/duograph/duograph"
	"github.com/duograph/duograph/pkg/alert"
	"github.com/duograph/duograph/pkg/audit"
	"github.com/duograph/duograph/pkg/config"
	"github.com/duograph/duograph/pkg/embedder"
	"github.com/duograph/duograph/pkg/graphstore"
	"github.com/duograph/duograph/pkg/journal"
	duographLogger "github.com/duograph/duograph/pkg/logger"
	"github.com/duograph/duograph/pkg/notify"
	"github.com/duograph/duograph/pkg/vectorstore"
)

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initializeClient assembles the full client from configuration: both
// store adapters, the embedder chain, and the optional journal, audit,
// and notification collaborators.
func initializeClient(ctx context.Context, cfg *config.Config) (*duograph.Client, error) {
	logger := duographLogger.NewDefaultLogger(os.Stderr, parseLogLevel(cfg.Log.Level))

	vectors, err := vectorstore.NewPostgresStore(ctx, cfg.Postgres.URL, cfg.Postgres.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	if err := vectors.Init(ctx); err != nil {
		vectors.Close()
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	graph, err := graphstore.NewNeo4jStore(cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database)
	if err != nil {
		vectors.Close()
		return nil, fmt.Errorf("failed to create graph store: %w", err)
	}
	if err := graph.Init(ctx); err != nil {
		vectors.Close()
		graph.Close(ctx)
		return nil, fmt.Errorf("failed to initialize graph store: %w", err)
	}

	alerter := buildAlerter(cfg)

	emb, err := buildEmbedder(cfg, alerter)
	if err != nil {
		vectors.Close()
		graph.Close(ctx)
		return nil, err
	}

	var opts []duograph.Option
	opts = append(opts, duograph.WithAlerter(alerter))

	jnl, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		logger.Warn("journal unavailable, running without saga persistence", "error", err)
	} else {
		opts = append(opts, duograph.WithJournal(jnl))
	}

	if cfg.Audit.Enabled {
		recorder, err := audit.NewRecorder(cfg.Audit.Path)
		if err != nil {
			logger.Warn("audit trail unavailable", "error", err)
		} else {
			opts = append(opts, duograph.WithAudit(recorder))
		}
	}

	if cfg.Notify.Enabled {
		notifier, err := notify.NewAMQPNotifier(cfg.Notify.URL, cfg.Notify.Queue)
		if err != nil {
			logger.Warn("event notifier unavailable", "error", err)
		} else {
			opts = append(opts, duograph.WithNotifier(notifier))
			logger.Info("event notifications enabled", "queue", cfg.Notify.Queue)
		}
	}

	client, err := duograph.NewClient(vectors, graph, emb, duograph.Config{}, logger, opts...)
	if err != nil {
		vectors.Close()
		graph.Close(ctx)
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	logger.Info("duograph initialized",
		"embedding_provider", cfg.Embedding.Provider,
		"embedding_model", cfg.Embedding.Model,
		"dimensions", cfg.Postgres.Dimensions)
	return client, nil
}

// buildEmbedder constructs the embedding chain: provider client wrapped
// with retry, then a circuit breaker that alerts on open.
func buildEmbedder(cfg *config.Config, alerter alert.Alerter) (embedder.Client, error) {
	embedderConfig := embedder.Config{
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	}

	var base embedder.Client
	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.Embedding.APIKey == "" {
			return nil, fmt.Errorf("embedding provider openai requires an API key")
		}
		base = embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, embedderConfig)
	case "local", "":
		local, err := embedder.NewLocalEmbedder(embedderConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create local embedder: %w", err)
		}
		base = local
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}

	retried := embedder.NewRetryClient(base, embedder.DefaultRetryConfig())
	return embedder.NewCircuitBreakerClient(retried, embedder.DefaultBreakerConfig(), alerter), nil
}

func buildAlerter(cfg *config.Config) alert.Alerter {
	if !cfg.Alert.Enabled {
		return &alert.NoOpAlerter{}
	}
	return alert.NewEmailAlerter(alert.Config{
		Enabled:  true,
		SMTPHost: cfg.Alert.SMTPHost,
		SMTPPort: cfg.Alert.SMTPPort,
		Username: cfg.Alert.Username,
		Password: cfg.Alert.Password,
		From:     cfg.Alert.From,
		To:       cfg.Alert.To,
	})
}
