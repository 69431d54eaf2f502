package driven

import "context"

// GenerationService produces an answer from a context string and a
// question, delivering the reply as a stream of text fragments.
//
// The retrieval core's only obligation is assembling the context; it
// never parses generation output beyond forwarding fragments.
type GenerationService interface {
	// Answer streams the generated reply, invoking fn once per fragment
	// in order. A non-nil error from fn aborts the stream.
	Answer(ctx context.Context, contextText, question string, fn func(fragment string) error) error

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
