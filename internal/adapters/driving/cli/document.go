package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docweave/internal/doctree"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect corpus documents",
	Long:  `List corpus documents and view their content or section structure.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List corpus documents",
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print a document's markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentSectionsCmd = &cobra.Command{
	Use:   "sections [file]",
	Short: "Show a document's section structure",
	Long:  `Lists the addressable sections of a document with their IDs, as used by search filters and edits.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentSections,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentSectionsCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()

	files, err := documentService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(files) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range files {
		cmd.Printf("  %s\n", files[i].Path)
		if files[i].SourceURL != "" {
			cmd.Printf("    URL: %s\n", files[i].SourceURL)
		}
	}
	cmd.Println()

	cmd.Printf("Total: %d documents\n", len(files))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()

	tree, err := documentService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Print(doctree.Serialize(tree))
	return nil
}

func runDocumentSections(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()

	tree, err := documentService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if tree.Title != "" {
		cmd.Printf("Title: %s\n\n", tree.Title)
	}

	ids := tree.SectionIDs()
	if len(ids) == 0 {
		cmd.Println("No sections found.")
		return nil
	}

	cmd.Println("Sections:")
	for _, id := range ids {
		heading := tree.Section(id)
		for i := 2; i < heading.Depth; i++ {
			cmd.Print("  ")
		}
		cmd.Printf("  %s  (%s)\n", heading.Text, id)
	}

	return nil
}
