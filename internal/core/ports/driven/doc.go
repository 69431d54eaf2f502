// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the embedding endpoint, the persistent
// document store, the document text source and the generation service.
package driven
