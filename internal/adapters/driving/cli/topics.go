package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atticus-labs/lexrag/internal/core/domain"
)

var topicsMax int

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Group stored documents into semantic topics",
	Long: `Clusters the stored document embeddings and prints the resulting
groups, largest first. The number of topics is chosen from the data.`,
	Args: cobra.NoArgs,
	RunE: runTopics,
}

func init() {
	topicsCmd.Flags().IntVar(&topicsMax, "max", 0, "maximum number of topics (0 uses the default cap)")
	rootCmd.AddCommand(topicsCmd)
}

func runTopics(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	groups, err := searchService.Topics(cmd.Context(), topicsMax)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyIndex) {
			cmd.Println("No documents indexed yet. Run 'lexrag import' first.")
			return nil
		}
		return fmt.Errorf("topics failed: %w", err)
	}

	for i, group := range groups {
		cmd.Printf("Topic %d (%d documents):\n", i+1, len(group.Documents))
		for _, doc := range group.Documents {
			label := doc.Filename
			if label == "" {
				label = doc.UUID
			}
			cmd.Printf("  - %s: %s\n", label, snippet(doc.Summary, 80))
		}
	}
	return nil
}
