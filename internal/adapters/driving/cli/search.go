package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atticus-labs/lexrag/internal/core/domain"
)

var (
	searchLimit  int
	searchMinSim float64
	searchAsJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search documents by semantic similarity",
	Long: `Embeds the query and ranks all stored documents by cosine similarity
of their summary embeddings.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchMinSim, "min-similarity", 0, "minimum similarity score to include")
	searchCmd.Flags().BoolVar(&searchAsJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	results, err := searchService.SimilaritySearch(cmd.Context(), args[0], searchLimit, searchMinSim)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyIndex) {
			cmd.Println("No documents indexed yet. Run 'lexrag import' first.")
			return nil
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchAsJSON {
		return outputResultsJSON(cmd, results)
	}
	return outputResultsTable(cmd, results)
}

func outputResultsJSON(cmd *cobra.Command, results []domain.ScoredDocument) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultsTable(cmd *cobra.Command, results []domain.ScoredDocument) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		doc := results[i].Document

		label := doc.Filename
		if label == "" {
			label = doc.UUID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, label, results[i].Similarity)
		if doc.Petitioner != "" || doc.Respondent != "" {
			cmd.Printf("      %s v. %s\n", doc.Petitioner, doc.Respondent)
		}
		if doc.Summary != "" {
			cmd.Printf("      %s\n", snippet(doc.Summary, 120))
		}
		cmd.Println()
	}

	return nil
}

// snippet truncates s to at most n bytes on a rune boundary.
func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
