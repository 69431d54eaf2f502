package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atticus-labs/lexrag/internal/core/domain"
	"github.com/atticus-labs/lexrag/internal/core/ports/driving"
)

func TestDocumentShowCmd_PrintsFields(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	searchService.(*mockSearchService).document = &domain.Document{
		UUID:       "doc-1",
		Filename:   "petition.pdf",
		Petitioner: "Smith",
		Respondent: "Jones",
		Summary:    "A dispute over a commercial lease.",
		Metadata:   map[string]any{"court": "9th Circuit"},
	}

	out, err := executeCommand(t, "document", "show", "doc-1")
	require.NoError(t, err)

	assert.Contains(t, out, "UUID:       doc-1")
	assert.Contains(t, out, "Petitioner: Smith")
	assert.Contains(t, out, "Respondent: Jones")
	assert.Contains(t, out, "commercial lease")
	assert.Contains(t, out, "9th Circuit")
}

func TestDocumentShowCmd_OmitsEmptyFields(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	searchService.(*mockSearchService).document = &domain.Document{
		UUID:    "doc-2",
		Summary: "Summary only.",
	}

	out, err := executeCommand(t, "document", "show", "doc-2")
	require.NoError(t, err)

	assert.NotContains(t, out, "Filename:")
	assert.NotContains(t, out, "Petitioner:")
	assert.Contains(t, out, "Summary only.")
}

func TestDocumentShowCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { documentAsJSON = false }()

	searchService.(*mockSearchService).document = &domain.Document{
		UUID:    "doc-1",
		Summary: "A dispute over a commercial lease.",
	}

	out, err := executeCommand(t, "document", "show", "--json", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "\"UUID\": \"doc-1\"")
}

func TestDocumentShowCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "document", "show", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost not found")
}

func TestDocumentDeleteCmd_DeletesDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "document", "delete", "doc-1")
	require.NoError(t, err)

	assert.Contains(t, out, "doc-1 deleted")
	assert.Equal(t, []string{"doc-1"}, searchService.(*mockSearchService).deleted)
}

func TestDocumentDeleteCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService.(*mockSearchService).err = domain.ErrNotFound

	_, err := executeCommand(t, "document", "delete", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost not found")
}

func TestStatsCmd_PrintsCounts(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	searchService.(*mockSearchService).stats = driving.StoreStats{
		TotalDocuments:  12,
		TotalEmbeddings: 12,
		ByModel:         map[string]int{"sentence-transformers/all-MiniLM-L6-v2": 12},
	}

	out, err := executeCommand(t, "stats")
	require.NoError(t, err)

	assert.Contains(t, out, "Documents:  12")
	assert.Contains(t, out, "Embeddings: 12")
	assert.Contains(t, out, "all-MiniLM-L6-v2: 12")
}
