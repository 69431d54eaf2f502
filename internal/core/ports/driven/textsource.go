package driven

import "context"

// TextSource resolves a document identifier to its raw extracted text.
//
// Implementations may extract from PDF bytes or serve cached plaintext;
// the retrieval core only depends on this single contract. Returns
// domain.ErrNotFound for unknown identifiers.
type TextSource interface {
	Text(ctx context.Context, documentID string) (string, error)
}
