package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atticus-labs/lexrag/internal/core/domain"
	"github.com/atticus-labs/lexrag/internal/core/ports/driving"
	"github.com/atticus-labs/lexrag/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.ImportService = (*ImportService)(nil)

// Reserved CSV column names. Matching is case-insensitive; any other
// column lands in the document's metadata map.
const (
	columnUUID       = "uuid"
	columnSummary    = "summary"
	columnFilename   = "filename"
	columnPetitioner = "petitioner"
	columnRespondent = "respondent"
)

// ImportService ingests documents in bulk from CSV. Each row becomes
// one upsert through the search service; the uuid and summary columns
// are mandatory per row, and rows missing either are skipped rather
// than failing the whole import.
type ImportService struct {
	search driving.SearchService
}

// NewImportService creates a new import service.
func NewImportService(search driving.SearchService) *ImportService {
	return &ImportService{search: search}
}

// ImportCSV reads a header-addressed CSV stream and upserts one
// document per row. A malformed row or a failed upsert is counted and
// logged without aborting the remaining rows; only an unreadable
// header or a missing mandatory column aborts with an error.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (domain.ImportStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // validated per row against the header

	header, err := reader.Read()
	if err != nil {
		return domain.ImportStats{}, fmt.Errorf("read csv header: %w", err)
	}

	columns := make([]string, len(header))
	uuidCol, summaryCol := -1, -1
	for i, name := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(name))
		switch columns[i] {
		case columnUUID:
			uuidCol = i
		case columnSummary:
			summaryCol = i
		}
	}
	if uuidCol < 0 || summaryCol < 0 {
		return domain.ImportStats{}, fmt.Errorf("csv must contain uuid and summary columns: %w", domain.ErrInvalidInput)
	}

	var stats domain.ImportStats
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stats.Total++
			stats.Failed++
			logger.Debug("Import: unreadable row %d: %v", stats.Total, err)
			continue
		}

		stats.Total++
		if len(record) != len(columns) {
			stats.Failed++
			logger.Debug("Import: row %d has %d fields, header has %d", stats.Total, len(record), len(columns))
			continue
		}

		uuid := strings.TrimSpace(record[uuidCol])
		summary := strings.TrimSpace(record[summaryCol])
		if uuid == "" || summary == "" {
			stats.Skipped++
			continue
		}

		opts := driving.UpsertOptions{}
		for i, value := range record {
			switch columns[i] {
			case columnUUID, columnSummary:
			case columnFilename:
				opts.Filename = value
			case columnPetitioner:
				opts.Petitioner = value
			case columnRespondent:
				opts.Respondent = value
			default:
				if opts.Metadata == nil {
					opts.Metadata = make(map[string]any)
				}
				opts.Metadata[columns[i]] = value
			}
		}

		if err := s.search.UpsertDocument(ctx, uuid, summary, opts); err != nil {
			stats.Failed++
			logger.Debug("Import: upsert %s failed: %v", uuid, err)
			continue
		}
		stats.Successful++
	}

	logger.Info("Import finished: %d rows, %d imported, %d failed, %d skipped",
		stats.Total, stats.Successful, stats.Failed, stats.Skipped)
	return stats, nil
}
