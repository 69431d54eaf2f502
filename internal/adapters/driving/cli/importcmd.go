package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [csv-file]",
	Short: "Bulk import documents from a CSV file",
	Long: `Imports documents from a CSV file with a header row. The uuid and
summary columns are required; Filename, PETITIONER and RESPONDENT map to
document fields and any other column is stored as metadata. Rows missing
a uuid or summary are skipped; failed rows do not abort the import.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	stats, err := importService.ImportCSV(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d of %d rows (%d failed, %d skipped)\n",
		stats.Successful, stats.Total, stats.Failed, stats.Skipped)
	return nil
}
