package duograph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/duograph/duograph"
	"github.com/duograph/duograph/pkg/config"
	"github.com/duograph/duograph/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest documents into both stores",
	Long: `Ingest one or more text files as documents. Each file becomes a
document whose id is the file name without its extension. With --dir,
every regular file in the directory is ingested.

A graph-stage failure after the vector write is reported per document
and leaves a journal entry; run "duograph repair" to retry it.`,
	RunE: runIngest,
}

var (
	ingestSubject string
	ingestDir     string
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestSubject, "subject", "", "Subject assigned to the ingested documents (required)")
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "Ingest every regular file in this directory")
	ingestCmd.MarkFlagRequired("subject")
}

func runIngest(cmd *cobra.Command, args []string) error {
	files := args
	if ingestDir != "" {
		entries, err := os.ReadDir(ingestDir)
		if err != nil {
			return fmt.Errorf("failed to read directory %s: %w", ingestDir, err)
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				files = append(files, filepath.Join(ingestDir, entry.Name()))
			}
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no files to ingest: pass file paths or --dir")
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
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
			failed++
			continue
		}

		base := filepath.Base(path)
		id := strings.TrimSuffix(base, filepath.Ext(base))

		opCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		result, err := client.AddDocument(opCtx, types.Document{
			ID:      id,
			Subject: ingestSubject,
			Content: string(data),
		})
		cancel()
		if err != nil {
			failed++
			var ingestErr *duograph.IngestError
			if errors.As(err, &ingestErr) && ingestErr.VectorCommitted {
				fmt.Fprintf(os.Stderr, "%s: partial failure, vector row committed but graph merge failed: %v\n", id, ingestErr.Err)
			} else {
				fmt.Fprintf(os.Stderr, "%s: ingest failed: %v\n", id, err)
			}
			continue
		}
		fmt.Printf("ingested %s (subject %s, %d dimensions)\n", result.ID, result.Subject, result.Dimensions)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(files))
	}
	return nil
}
