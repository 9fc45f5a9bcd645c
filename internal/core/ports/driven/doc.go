// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Tokenizer: Encodes and decodes text against a fixed vocabulary
//   - CompletionClient: One chat-completion request against an LLM API
//   - SourceReader: Aggregates the source tree into one document
//   - DocumentStore: Reads and atomically writes the FAQ document
//   - PromptStore: Persona and prompt templates
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SummaryCache: Skips API calls for chunks summarised before
//   - RunLock: Serialises runs that target the same document
//   - Publisher: Opens a pull request for a changed document
//   - ProgressReporter: Renders summarisation progress
//   - SourceWatcher: Triggers re-runs when sources change
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or postprocessor package
package driven
