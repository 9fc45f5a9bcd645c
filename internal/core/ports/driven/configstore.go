package driven

import "github.com/custodia-labs/faqgen/internal/core/domain"

// ConfigStore loads the application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type ConfigStore interface {
	// Load returns defaults overlaid with the file (if present) and the environment.
	Load() (*domain.Config, error)

	// WriteDefault writes a default configuration file.
	// Returns an error if the file already exists.
	WriteDefault() error

	// Path returns the configuration file path.
	Path() string
}
