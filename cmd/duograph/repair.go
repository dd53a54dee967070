package duograph

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/duograph/duograph/pkg/config"
)

var repairCmd = &cobra.Command{
	Use:   "repair [id...]",
	Short: "List or retry unresolved lifecycle operations",
	Long: `Without arguments, list journal entries for operations that never
reached a terminal stage. With ids, retry the unfinished side of each:
for a partial ingest the graph merge is re-run, for a partial delete
both stores are re-cleaned.`,
	RunE: runRepair,
}

func init() {
	rootCmd.AddCommand(repairCmd)
}

func runRepair(cmd *cobra.Command, args []string) error {
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

	if len(args) == 0 {
		entries, err := client.PendingRepairs()
		if err != nil {
			return fmt.Errorf("failed to list pending repairs: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("no unresolved operations")
			return nil
		}
		for _, entry := range entries {
			fmt.Printf("%s  op=%s stage=%s updated=%s", entry.DocumentID, entry.Operation, entry.Stage, entry.UpdatedAt.Format(time.RFC3339))
			if entry.LastError != "" {
				fmt.Printf("  error=%s", entry.LastError)
			}
			fmt.Println()
		}
		return nil
	}

	var failed int
	for _, id := range args {
		opCtx, cancel := context.WithTimeout(ctx, time.Minute)
		err := client.RepairDocument(opCtx, id)
		cancel()
		if err != nil {
			fmt.Printf("%s: repair failed: %v\n", id, err)
			failed++
			continue
		}
		fmt.Printf("repaired %s\n", id)
	}

	if failed > 0 {
		return fmt.Errorf("%d repairs failed", failed)
	}
	return nil
}
