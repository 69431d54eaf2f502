package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atticus-labs/lexrag/internal/core/domain"
)

var documentAsJSON bool

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect stored documents",
}

var documentShowCmd = &cobra.Command{
	Use:   "show [uuid]",
	Short: "Show a stored document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [uuid]",
	Short: "Delete a stored document and its embeddings",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document and embedding counts",
	RunE:  runStats,
}

func init() {
	documentShowCmd.Flags().BoolVar(&documentAsJSON, "json", false, "output the document as JSON")
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(statsCmd)
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	doc, err := searchService.GetByUUID(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document %s not found", args[0])
		}
		return fmt.Errorf("get document: %w", err)
	}

	if documentAsJSON {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("UUID:       %s\n", doc.UUID)
	if doc.Filename != "" {
		cmd.Printf("Filename:   %s\n", doc.Filename)
	}
	if doc.Petitioner != "" {
		cmd.Printf("Petitioner: %s\n", doc.Petitioner)
	}
	if doc.Respondent != "" {
		cmd.Printf("Respondent: %s\n", doc.Respondent)
	}
	cmd.Printf("Summary:    %s\n", doc.Summary)
	for key, value := range doc.Metadata {
		cmd.Printf("%s: %v\n", key, value)
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	if err := searchService.DeleteDocument(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document %s not found", args[0])
		}
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	stats, err := searchService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	cmd.Printf("Documents:  %d\n", stats.TotalDocuments)
	cmd.Printf("Embeddings: %d\n", stats.TotalEmbeddings)
	for model, count := range stats.ByModel {
		cmd.Printf("  %s: %d\n", model, count)
	}
	return nil
}
