// Package langdetect detects the language of question text using
// trigram profiles from whatlanggo.
//
// Detection never fails a request: anything the detector cannot
// classify reliably comes back as domain.Unknown, and the answer
// pipeline degrades to answering in the question's own language.
package langdetect

import (
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/retolabs/docqa/internal/core/domain"
	"github.com/retolabs/docqa/internal/core/ports/driven"
)

// Ensure Detector implements the interface.
var _ driven.LanguageDetector = (*Detector)(nil)

// Detector identifies the language of a text.
type Detector struct{}

// New creates a new language detector.
func New() *Detector {
	return &Detector{}
}

// Detect returns the ISO 639-1 language of text, or domain.Unknown
// when the text is empty or classification is unreliable.
func (d *Detector) Detect(text string) domain.Language {
	if strings.TrimSpace(text) == "" {
		return domain.Unknown
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return domain.Unknown
	}

	code := info.Lang.Iso6391()
	if code == "" {
		return domain.Unknown
	}
	return domain.Detected(code)
}
