package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error wrapping domain.ErrNotFound.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptSystem is the fixed persona sent as the system message with every request.
	// This prompt has no format placeholders.
	PromptSystem = "system"

	// PromptSummarise asks for a summary of one chunk.
	// The prompt template expects one %s placeholder for the chunk text.
	PromptSummarise = "summarise"

	// PromptSynthesise asks for the full FAQ document.
	// The prompt template expects %s (summaries), %s (previous document) and
	// %s (the no-change sentinel) placeholders, in that order.
	PromptSynthesise = "synthesise"
)
