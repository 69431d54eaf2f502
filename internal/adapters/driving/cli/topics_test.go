package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atticus-labs/lexrag/internal/core/domain"
	"github.com/atticus-labs/lexrag/internal/core/ports/driving"
)

func TestTopicsCmd_PrintsGroups(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	searchService.(*mockSearchService).topics = []driving.TopicGroup{
		{
			Label: 0,
			Documents: []domain.Document{
				{UUID: "lease-a", Filename: "lease_a.pdf", Summary: "Termination of a commercial lease."},
				{UUID: "lease-b", Summary: "Renewal terms of an office lease."},
			},
		},
		{
			Label: 1,
			Documents: []domain.Document{
				{UUID: "ship-a", Summary: "Salvage rights after a collision at sea."},
			},
		},
	}

	out, err := executeCommand(t, "topics")
	require.NoError(t, err)

	assert.Contains(t, out, "Topic 1 (2 documents):")
	assert.Contains(t, out, "lease_a.pdf")
	assert.Contains(t, out, "lease-b")
	assert.Contains(t, out, "Topic 2 (1 documents):")
	assert.Contains(t, out, "Salvage rights")
}

func TestTopicsCmd_EmptyIndexIsNotAnError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService.(*mockSearchService).err = domain.ErrEmptyIndex

	out, err := executeCommand(t, "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "No documents indexed yet")
}

func TestTopicsCmd_RejectsArgs(t *testing.T) {
	_, err := executeCommand(t, "topics", "extra")
	assert.Error(t, err)
}
