// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - DocumentLoader: Extracts page text from an uploaded file
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Generates natural-language answers
//   - LanguageDetector: Detects the language of a question (best-effort)
//   - IndexStore: Per-user persistence of built vector indexes
//
// # Import Rules
//
//   - Can Import: domain and index packages only
//   - Cannot Import: Any adapter package
package driven
