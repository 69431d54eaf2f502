// Package chunker splits raw document text into bounded-size segments
// suitable for embedding.
package chunker

import "strings"

// DefaultMaxTokens is the default approximate token budget per chunk.
const DefaultMaxTokens = 100

// Split divides text into whitespace-delimited word runs whose summed
// approximate token cost stays within maxTokens. Once adding the next
// word would exceed the budget the current chunk is closed and a new one
// started with that word; the trailing partial chunk is always emitted.
// Empty input yields no chunks.
//
// The cost heuristic (ceil(len(word)/4) + 1 per word) approximates
// subword tokenisation for budgeting only; it does not match any
// model's true tokeniser. A single word over budget still forms its
// own chunk.
func Split(text string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	length := 0

	for _, word := range words {
		cost := tokenCost(word)
		if length+cost > maxTokens && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{word}
			length = cost
		} else {
			current = append(current, word)
			length += cost
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

// tokenCost estimates the token count of a single word.
func tokenCost(word string) int {
	return (len(word)+3)/4 + 1
}
