package duograph

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/duograph/duograph/pkg/config"
	"github.com/duograph/duograph/pkg/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Duograph HTTP server",
	Long: `Start the Duograph HTTP server to provide REST API access to the
hybrid knowledge base.

The server provides endpoints for:
- Ingesting documents (JSON or file upload)
- Hybrid search (vector similarity + graph property match)
- Removing documents from both stores
- Listing and repairing partial failures
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Store flags
	serverCmd.Flags().String("postgres-url", "", "PostgreSQL connection string")
	serverCmd.Flags().String("neo4j-uri", "", "Neo4j bolt URI")
	serverCmd.Flags().String("neo4j-username", "", "Neo4j username")
	serverCmd.Flags().String("neo4j-password", "", "Neo4j password")

	// Embedding flags
	serverCmd.Flags().String("embedding-provider", "", "Embedding provider (local, openai)")
	serverCmd.Flags().String("embedding-model", "", "Embedding model")
	serverCmd.Flags().String("embedding-api-key", "", "Embedding API key")
	serverCmd.Flags().String("embedding-base-url", "", "Embedding base URL")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrideConfigWithFlags(cmd, cfg)

	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.Background()
	client, err := initializeClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize duograph: %w", err)
	}

	srv := server.New(cfg, client)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		if err := client.Close(shutdownCtx); err != nil {
			return fmt.Errorf("client shutdown error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	if cmd.Flags().Changed("postgres-url") {
		cfg.Postgres.URL, _ = cmd.Flags().GetString("postgres-url")
	}
	if cmd.Flags().Changed("neo4j-uri") {
		cfg.Neo4j.URI, _ = cmd.Flags().GetString("neo4j-uri")
	}
	if cmd.Flags().Changed("neo4j-username") {
		cfg.Neo4j.Username, _ = cmd.Flags().GetString("neo4j-username")
	}
	if cmd.Flags().Changed("neo4j-password") {
		cfg.Neo4j.Password, _ = cmd.Flags().GetString("neo4j-password")
	}

	if cmd.Flags().Changed("embedding-provider") {
		cfg.Embedding.Provider, _ = cmd.Flags().GetString("embedding-provider")
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.Embedding.Model, _ = cmd.Flags().GetString("embedding-model")
	}
	if cmd.Flags().Changed("embedding-api-key") {
		cfg.Embedding.APIKey, _ = cmd.Flags().GetString("embedding-api-key")
	}
	if cmd.Flags().Changed("embedding-base-url") {
		cfg.Embedding.BaseURL, _ = cmd.Flags().GetString("embedding-base-url")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if cfg.Neo4j.URI == "" {
		return fmt.Errorf("neo4j URI is required")
	}
	return nil
}
