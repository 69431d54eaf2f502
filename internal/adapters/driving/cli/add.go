package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/atticus-labs/lexrag/internal/core/ports/driving"
)

var (
	addFilename   string
	addPetitioner string
	addRespondent string
)

var addCmd = &cobra.Command{
	Use:   "add [uuid] [summary]",
	Short: "Add or replace a single document",
	Long: `Embeds the summary text and stores it under the given uuid. With a
single argument a uuid is generated. Adding an existing uuid replaces
the document and its embedding.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addFilename, "filename", "", "original file name")
	addCmd.Flags().StringVar(&addPetitioner, "petitioner", "", "petitioner party name")
	addCmd.Flags().StringVar(&addRespondent, "respondent", "", "respondent party name")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	var id, summary string
	if len(args) == 2 {
		id, summary = args[0], args[1]
	} else {
		id, summary = uuid.NewString(), args[0]
	}

	opts := driving.UpsertOptions{
		Filename:   addFilename,
		Petitioner: addPetitioner,
		Respondent: addRespondent,
	}
	if err := searchService.UpsertDocument(cmd.Context(), id, summary, opts); err != nil {
		return fmt.Errorf("add failed: %w", err)
	}

	cmd.Printf("Document %s stored.\n", id)
	return nil
}
