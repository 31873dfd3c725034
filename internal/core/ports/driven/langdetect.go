package driven

import "github.com/retolabs/docqa/internal/core/domain"

// LanguageDetector identifies the language a text is written in.
// Detection is a deliberate error-isolation boundary: implementations
// never fail, they return domain.Unknown when detection is impossible
// or unreliable.
type LanguageDetector interface {
	// Detect returns the detected language of text, or domain.Unknown.
	Detect(text string) domain.Language
}
