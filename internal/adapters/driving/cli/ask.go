package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atticus-labs/lexrag/internal/core/domain"
)

var askTopN int

var prepareCmd = &cobra.Command{
	Use:   "prepare [document-id]",
	Short: "Chunk and embed a document for question answering",
	Long: `Extracts the document's text, splits it into chunks and embeds them.
The prepared session is cached in memory so subsequent questions against
the same document reuse the chunk vectors.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrepare,
}

var askCmd = &cobra.Command{
	Use:   "ask [document-id] [question]",
	Short: "Ask a question about a prepared document",
	Long: `Finds the document chunks most relevant to the question and streams a
generated answer grounded in them. The document is prepared automatically
if it has not been already.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVar(&askTopN, "top", 3, "number of chunks assembled into the answer context")
	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(askCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	if err := retrievalService.Prepare(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("prepare failed: %w", err)
	}

	cmd.Printf("Document %s prepared.\n", args[0])
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	documentID, question := args[0], args[1]
	ctx := cmd.Context()

	err := retrievalService.Answer(ctx, documentID, question, askTopN, cmd.OutOrStdout())
	if errors.Is(err, domain.ErrNotPrepared) {
		if err := retrievalService.Prepare(ctx, documentID); err != nil {
			return fmt.Errorf("prepare failed: %w", err)
		}
		err = retrievalService.Answer(ctx, documentID, question, askTopN, cmd.OutOrStdout())
	}
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println()
	return nil
}
