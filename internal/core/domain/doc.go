// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - UserID: An opaque, validated user identity
//   - Document: An uploaded document as ordered pages of text
//   - Chunk: A bounded span of document text used as the unit of retrieval
//   - Session: A per-user record of the last asked question
//   - Language: The outcome of language detection
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
