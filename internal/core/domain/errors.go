package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidUser indicates a user identity that cannot be used.
	// User identities become storage path components, so anything that
	// could escape the per-user directory is rejected up front.
	ErrInvalidUser = errors.New("invalid user identity")

	// ErrIndexNotFound indicates no index exists for a user.
	// This is how "the user has not uploaded a document yet" surfaces.
	ErrIndexNotFound = errors.New("index not found")

	// ErrCacheNotFound indicates a clear was requested for a cache
	// that does not exist. Clearing an already-cleared cache is an
	// error, matching the upstream API contract.
	ErrCacheNotFound = errors.New("cache not found")

	// ErrIngestion indicates an uploaded document could not be read
	// or contained no extractable text.
	ErrIngestion = errors.New("document ingestion failed")

	// ErrEmbeddingService indicates the embedding provider call failed.
	ErrEmbeddingService = errors.New("embedding service failed")

	// ErrGenerationService indicates the language model call failed.
	ErrGenerationService = errors.New("generation service failed")
)
