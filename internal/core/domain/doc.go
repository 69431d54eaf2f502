// Package domain contains the core entities of the retrieval system:
// documents, embeddings, chunks and the errors the services surface.
// It has no dependencies on adapters or external services.
package domain
