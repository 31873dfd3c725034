// Package pdf extracts page text from PDF files using the pdftotext
// tool from poppler-utils.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/retolabs/docqa/internal/core/domain"
	"github.com/retolabs/docqa/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// pdfToTextBinary is the external extraction tool.
const pdfToTextBinary = "pdftotext"

// ErrToolNotFound indicates pdftotext is not installed.
var ErrToolNotFound = errors.New("pdftotext not found")

// CommandRunner executes external commands. Abstracted for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Loader extracts ordered page text from PDF files.
type Loader struct {
	runner CommandRunner
}

// Option configures the loader.
type Option func(*Loader)

// WithRunner overrides the command runner. Used in tests.
func WithRunner(r CommandRunner) Option {
	return func(l *Loader) {
		if r != nil {
			l.runner = r
		}
	}
}

// New creates a new PDF loader.
func New(opts ...Option) *Loader {
	l := &Loader{runner: execRunner{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(pdfToTextBinary); err != nil {
		return fmt.Errorf("%w: %v", ErrToolNotFound, err)
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return `PDF extraction requires pdftotext (poppler):
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils`
}

// Load extracts the PDF at path into ordered pages. pdftotext writes
// pages to stdout separated by form feeds.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrIngestion, filepath.Base(path), err)
	}

	out, err := l.runner.Run(ctx, pdfToTextBinary, "-enc", "UTF-8", path, "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrToolNotFound, err)
		}
		return nil, fmt.Errorf("%w: extracting %s: %v", domain.ErrIngestion, filepath.Base(path), err)
	}

	doc := &domain.Document{Name: filepath.Base(path)}
	empty := true
	for i, text := range strings.Split(string(out), "\f") {
		if strings.TrimSpace(text) == "" {
			continue
		}
		doc.Pages = append(doc.Pages, domain.Page{Number: i + 1, Text: text})
		empty = false
	}
	if empty {
		return nil, fmt.Errorf("%w: %s contains no extractable text", domain.ErrIngestion, doc.Name)
	}
	return doc, nil
}
