package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff [old-file] [new-file]",
	Short: "Show a token-level diff between two files",
	Long: `Renders a word-level diff between two local markdown files.
Whitespace-only changes are ignored; URLs and inline code are compared
as single tokens.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&editPlain, "plain", false, "render the diff without terminal styling")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	oldText, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	newText, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[1], err)
	}

	diff := documentService.BuildDiff(string(oldText), string(newText))
	if !diff.Changed() {
		cmd.Println("No changes.")
		return nil
	}

	renderDiff(cmd, diff)
	return nil
}
