package duograph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/duograph/duograph"
	"github.com/duograph/duograph/pkg/config"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a hybrid search",
	Long: `Run a hybrid search for the given query text. The vector collection
holds semantically similar documents with cosine similarity scores; the
graph collection holds nodes whose properties contain the query as a
substring. The two collections are printed separately and never merged.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchSubject string
	searchLimit   int
	searchJSON    bool
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchSubject, "subject", "", "Restrict vector hits to this subject")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results per collection")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print raw JSON results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

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

	opCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	results, err := client.Retrieve(opCtx, query, &duograph.RetrieveOptions{
		Subject: searchSubject,
		Limit:   searchLimit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Printf("Vector hits (%d):\n", len(results.VectorHits))
	for _, hit := range results.VectorHits {
		content := hit.Content
		if len(content) > 120 {
			content = content[:120] + "..."
		}
		fmt.Printf("  %.4f  %s [%s]  %s\n", hit.Score, hit.ID, hit.Subject, content)
	}

	fmt.Printf("Graph hits (%d):\n", len(results.GraphHits))
	for _, hit := range results.GraphHits {
		fmt.Printf("  %v\n", map[string]any(hit))
	}

	if results.Partial != "" {
		fmt.Printf("warning: %s sub-search failed, results are partial\n", results.Partial)
	}
	return nil
}
