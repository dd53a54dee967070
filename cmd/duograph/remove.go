package duograph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/duograph/duograph"
	"github.com/duograph/duograph/pkg/config"
)

var removeCmd = &cobra.Command{
	Use:   "remove <id>...",
	Short: "Remove documents from both stores",
	Long: `Remove one or more documents by id. Both stores are always cleaned;
an id absent from both is reported as not found rather than failing the
command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
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
	for _, id := range args {
		opCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		result, err := client.DeleteDocument(opCtx, id)
		cancel()
		if err != nil {
			if errors.Is(err, duograph.ErrNotFound) {
				fmt.Printf("%s: not found in either store\n", id)
				continue
			}
			fmt.Printf("%s: delete failed: %v\n", id, err)
			failed++
			continue
		}
		fmt.Printf("removed %s (vector rows: %d, graph nodes: %d)\n", id, result.VectorDeleted, result.GraphDeleted)
	}

	if failed > 0 {
		return fmt.Errorf("%d deletions failed", failed)
	}
	return nil
}
