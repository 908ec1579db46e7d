package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docweave/internal/core/domain"
)

var (
	searchK        int
	searchJSON     bool
	searchEnhanced bool
	searchMinRel   float64
	searchSection  string
	searchTypes    []string
	searchContext  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the corpus by semantic similarity",
	Long: `Embeds the query and returns the closest chunks by cosine similarity.
With --enhanced, results are re-ranked with importance, section-summary
and entity-overlap boosts, and can be filtered by section or node type.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchK, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchEnhanced, "enhanced", false, "re-rank results with heuristic boosts")
	searchCmd.Flags().Float64Var(&searchMinRel, "min-relevance", 0, "drop results below this boosted score (enhanced only)")
	searchCmd.Flags().StringVar(&searchSection, "section", "", "restrict results to one section (enhanced only)")
	searchCmd.Flags().StringSliceVar(&searchTypes, "type", nil, "restrict results to node types (enhanced only)")
	searchCmd.Flags().BoolVar(&searchContext, "context", false, "attach sibling and summary context (enhanced only)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	ctx := context.Background()

	// One-shot invocations start with an empty index; restore it from
	// cache, or rebuild, before searching.
	if retrievalService.Stats().Chunks == 0 {
		if err := retrievalService.Load(ctx); err != nil {
			return fmt.Errorf("load index: %w", err)
		}
	}

	var results []domain.SearchResult
	var err error
	if searchEnhanced {
		params := domain.EnhancedSearchParams{
			Query:          query,
			K:              searchK,
			MinRelevance:   searchMinRel,
			NodeTypes:      searchTypes,
			SectionID:      searchSection,
			IncludeContext: searchContext,
		}
		results, err = retrievalService.EnhancedSearch(ctx, params)
	} else {
		results, err = retrievalService.SimilaritySearch(ctx, query, searchK)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		meta := results[i].Chunk.Metadata

		location := meta.FileName
		if len(meta.SectionPath) > 0 {
			location += " > " + strings.Join(meta.SectionPath, " > ")
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, location, results[i].Score)
		cmd.Printf("      %s\n", snippet(results[i].Chunk.Text))
		if results[i].SectionSummary != nil {
			cmd.Printf("      Section: %s\n", snippet(results[i].SectionSummary.Text))
		}
		for _, sib := range results[i].Siblings {
			cmd.Printf("      Related: %s\n", snippet(sib.Text))
		}
		cmd.Println()
	}

	return nil
}

// snippet truncates chunk text to a single display line, cutting on a
// rune boundary.
func snippet(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	const maxLen = 120
	if len(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen-3 {
		return text
	}
	return string(runes[:maxLen-3]) + "..."
}
