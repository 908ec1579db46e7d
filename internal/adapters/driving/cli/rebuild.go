package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
)

var rebuildWatch bool

// watchSettle is how long to wait after a change event before
// rebuilding, so edit bursts collapse into one rebuild.
const watchSettle = 500 * time.Millisecond

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the retrieval index",
	Long: `Refetches the corpus, rechunks and re-embeds every document and swaps
the in-memory index. The previous index keeps serving searches until
the swap. Only one rebuild runs at a time.

With --watch, docweave stays running and rebuilds whenever the source
reports a change. Only sources that support watching (filesystem) can
be watched.`,
	RunE: runRebuild,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show retrieval index statistics",
	RunE:  runStatus,
}

func init() {
	rebuildCmd.Flags().BoolVar(&rebuildWatch, "watch", false, "rebuild whenever the source reports changes")
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(statusCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	ctx := context.Background()

	cmd.Println("Rebuilding index...")
	if err := retrievalService.Rebuild(ctx); err != nil {
		if errors.Is(err, domain.ErrRebuildInProgress) {
			cmd.Println("A rebuild is already running.")
			return nil
		}
		return fmt.Errorf("rebuild failed: %w", err)
	}

	printRebuildStats(cmd)

	if rebuildWatch {
		return watchAndRebuild(cmd)
	}
	return nil
}

func printRebuildStats(cmd *cobra.Command) {
	stats := retrievalService.Stats()
	cmd.Printf("Indexed %d chunks from %d documents.\n", stats.Chunks, stats.Files)
	if stats.Placeholders > 0 {
		cmd.Printf("Warning: %d chunks carry placeholder embeddings.\n", stats.Placeholders)
	}
}

// watchAndRebuild rebuilds the index after every settled burst of
// source change events, until interrupted.
func watchAndRebuild(cmd *cobra.Command) error {
	if corpusSource == nil {
		return errors.New("corpus source not configured")
	}
	if !corpusSource.Capabilities().SupportsWatch {
		return fmt.Errorf("%s sources do not support watching", corpusSource.Type())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	changes, err := corpusSource.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	cmd.Println("Watching for changes. Press Ctrl-C to stop.")
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			cmd.Printf("Change detected: %s\n", change.Path)
			settle(ctx, changes)

			if err := retrievalService.Rebuild(ctx); err != nil {
				if errors.Is(err, domain.ErrRebuildInProgress) {
					continue
				}
				cmd.Printf("Rebuild failed: %v\n", err)
				continue
			}
			printRebuildStats(cmd)
		}
	}
}

// settle drains change events until none arrive for watchSettle.
func settle(ctx context.Context, changes <-chan driven.FileChange) {
	timer := time.NewTimer(watchSettle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(watchSettle)
		}
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	stats := retrievalService.Stats()

	cmd.Println("Index status")
	cmd.Println("============")
	cmd.Printf("  Chunks:       %d\n", stats.Chunks)
	cmd.Printf("  Documents:    %d\n", stats.Files)
	cmd.Printf("  Placeholders: %d\n", stats.Placeholders)
	if stats.ContentHash != "" {
		cmd.Printf("  Content hash: %s\n", stats.ContentHash)
	}
	return nil
}
