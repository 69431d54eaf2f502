package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atticus-labs/lexrag/internal/core/domain"
)

var recommendLimit int

var recommendCmd = &cobra.Command{
	Use:   "recommend [uuid]",
	Short: "Recommend documents similar to a stored document",
	Long: `Uses the stored document's summary as the query and returns the most
similar other documents. Weakly related documents are filtered out.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 5, "maximum number of recommendations")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	results, err := searchService.RecommendSimilar(cmd.Context(), args[0], recommendLimit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document %s not found", args[0])
		}
		return fmt.Errorf("recommend failed: %w", err)
	}

	if len(results) == 0 {
		cmd.Println("No similar documents found.")
		return nil
	}

	cmd.Printf("Documents similar to %s:\n\n", args[0])
	for i := range results {
		doc := results[i].Document
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, doc.UUID, results[i].Similarity)
		if doc.Summary != "" {
			cmd.Printf("      %s\n", snippet(doc.Summary, 120))
		}
	}
	cmd.Println()

	return nil
}
