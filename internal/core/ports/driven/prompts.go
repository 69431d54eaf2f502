package driven

// PromptStore provides access to LLM prompt templates.
// Implementations load prompts from user-editable files with fallback
// to embedded defaults.
type PromptStore interface {
	// Load retrieves a prompt template by name.
	// Returns an error if the prompt cannot be loaded.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing a re-read on next Load.
	Reload()
}

// Prompt names used by the generation pipeline.
const (
	// PromptAnswerSystem frames the assistant for grounded question
	// answering over document context.
	PromptAnswerSystem = "answer_system"
)

// PromptStoreAware is an optional interface for services that can use
// custom prompts. Adapters implementing it accept a PromptStore after
// construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If never called, the service uses its built-in defaults.
	SetPromptStore(store PromptStore)
}
