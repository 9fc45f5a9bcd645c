// Package file provides file-based implementations of driven port interfaces.
// These adapters read from and persist to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML (or YAML) configuration with environment overrides
//   - PromptStore: User-editable prompt templates with built-in defaults
package file
