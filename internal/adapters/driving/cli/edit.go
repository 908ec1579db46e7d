package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docweave/internal/diffview"
	"github.com/custodia-labs/docweave/internal/doctree"
)

var editPlain bool

var editCmd = &cobra.Command{
	Use:   "edit [file] [node-id] [text]",
	Short: "Rewrite one block of a document",
	Long: `Applies a copy-on-write edit to a single tree node and prints the
resulting diff. Node IDs are shown by 'document sections' and in
search results. Edits to unknown or non-editable nodes are no-ops.`,
	Args: cobra.ExactArgs(3),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().BoolVar(&editPlain, "plain", false, "render the diff without terminal styling")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	file, nodeID, text := args[0], args[1], args[2]
	ctx := context.Background()

	before, err := documentService.Get(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	oldText := doctree.Serialize(before)

	after, err := documentService.UpdateNodeContent(ctx, file, nodeID, text)
	if err != nil {
		return fmt.Errorf("edit failed: %w", err)
	}

	if after == before {
		cmd.Printf("No changes: node %s not found or not editable.\n", nodeID)
		return nil
	}

	diff := documentService.BuildDiff(oldText, doctree.Serialize(after))
	renderDiff(cmd, diff)
	return nil
}

// renderDiff prints a diff with terminal styling when stdout is a
// terminal, falling back to plain {+...+}/[-...-] markers otherwise.
func renderDiff(cmd *cobra.Command, diff diffview.RenderedDiff) {
	if !editPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		cmd.Println(diff.String())
		return
	}
	cmd.Println(diff.Plain())
}
