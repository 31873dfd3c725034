package domain

// Page is a single page of extracted document text.
type Page struct {
	// Number is the 1-based page number within the source document.
	Number int

	// Text is the extracted plain text of the page.
	Text string
}

// Document represents an uploaded document after text extraction.
// Pages are ordered as they appear in the source file.
type Document struct {
	// Name is the human-readable document name (usually the file name).
	Name string

	// Pages is the ordered page text.
	Pages []Page
}

// Text returns the concatenated text of all pages.
func (d *Document) Text() string {
	var out string
	for i, p := range d.Pages {
		if i > 0 {
			out += "\n"
		}
		out += p.Text
	}
	return out
}

// Chunk represents a contiguous span of document text plus its source
// metadata. It is the unit of embedding and retrieval. Chunks are
// immutable once produced.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Document is the name of the source document.
	Document string

	// Page is the 1-based page the chunk starts on.
	Page int

	// Position is the ordinal position within the document.
	// The first chunk of the earliest text has position 0.
	Position int

	// Content is the text content of this chunk.
	Content string

	// Embedding is the vector representation for similarity search.
	// It is empty until the chunk has been embedded.
	Embedding []float32
}
