package domain

// Language is the outcome of language detection. Detection is
// best-effort: a failed or unreliable detection yields Unknown rather
// than an error, so a detector outage never fails a request.
type Language struct {
	// Code is the ISO 639-1 code, e.g. "en" or "es".
	// Empty when the language is unknown.
	Code string

	// Known reports whether detection produced a usable result.
	Known bool
}

// Unknown is the zero Language, returned when detection fails.
var Unknown = Language{}

// Detected wraps an ISO 639-1 code as a known language.
// An empty code degrades to Unknown.
func Detected(code string) Language {
	if code == "" {
		return Unknown
	}
	return Language{Code: code, Known: true}
}
