// Package services implements the application core: ingestion,
// retrieval-augmented answering, and cache lifecycle management.
//
// Services depend only on domain types and driven ports, and are
// wired together by the driving adapters (HTTP, CLI). All process-wide
// state lives in the Registry, which is constructed at startup and
// injected; there are no package-level registries.
package services
