package driving

import (
	"context"
	"io"

	"github.com/atticus-labs/lexrag/internal/core/domain"
)

// RetrievalService prepares documents for question answering and
// assembles generation context from their most relevant chunks.
type RetrievalService interface {
	// Prepare chunks and embeds the document's text and caches the
	// result. Calling it again for the same identifier recomputes and
	// replaces the cached session; concurrent calls for one identifier
	// share a single computation.
	Prepare(ctx context.Context, documentID string) error

	// AnswerContext returns the concatenation of the topN chunks most
	// similar to the question, in descending similarity order. Fails
	// with domain.ErrNotPrepared when Prepare has not run.
	AnswerContext(ctx context.Context, documentID, question string, topN int) (string, error)

	// Answer builds the context and streams the generated reply to w.
	Answer(ctx context.Context, documentID, question string, topN int, w io.Writer) error
}

// ImportService performs bulk ingestion from CSV.
type ImportService interface {
	// ImportCSV reads rows from r and upserts one document per row.
	// Rows lacking a uuid or summary are skipped; per-row failures are
	// counted and do not abort the import.
	ImportCSV(ctx context.Context, r io.Reader) (domain.ImportStats, error)
}
