// Package domain defines the core business entities for faqgen.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A token-bounded slice of the aggregated source tree
//   - Snapshot: The previous version of the FAQ document as read from disk
//   - Synthesis: The model's candidate document or its "no change" sentinel
//   - ChangeResult: The outcome of comparing a candidate with the snapshot
//   - Config: The single configuration value passed into every constructor
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
