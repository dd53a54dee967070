package duograph

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/duograph/duograph/pkg/config"
	"github.com/duograph/duograph/pkg/types"
)

var seedCmd = &cobra.Command{
	Use:   "seed <corpus.yaml>",
	Short: "Ingest a YAML corpus of documents",
	Long: `Ingest a corpus described in a YAML file. The file holds a list of
documents, each with id, subject, and content:

  documents:
    - id: vacation-policy
      subject: hr
      content: Employees receive 25 days of paid vacation per year.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

type seedCorpus struct {
	Documents []seedDocument `yaml:"documents"`
}

type seedDocument struct {
	ID      string `yaml:"id"`
	Subject string `yaml:"subject"`
	Content string `yaml:"content"`
}

func runSeed(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read corpus file: %w", err)
	}

	var corpus seedCorpus
	if err := yaml.Unmarshal(data, &corpus); err != nil {
		return fmt.Errorf("failed to parse corpus file: %w", err)
	}
	if len(corpus.Documents) == 0 {
		return fmt.Errorf("corpus file contains no documents")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()
	client, err := initializeClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize duograph: %w", err)
	}
	defer client.Close(ctx)

	var failed int
	for _, doc := range corpus.Documents {
		opCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		result, err := client.AddDocument(opCtx, types.Document{
			ID:      doc.ID,
			Subject: doc.Subject,
			Content: doc.Content,
		})
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: ingest failed: %v\n", doc.ID, err)
			failed++
			continue
		}
		fmt.Printf("seeded %s (subject %s)\n", result.ID, result.Subject)
	}

	fmt.Printf("seeded %d of %d documents\n", len(corpus.Documents)-failed, len(corpus.Documents))
	if failed > 0 {
		return fmt.Errorf("%d documents failed", failed)
	}
	return nil
}
