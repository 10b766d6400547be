package document

// Rect is a region on a page, in the renderer's own coordinate space. The
// pipeline never interprets coordinates, it only passes them back to the
// page that produced them.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Page is one searchable, redactable page of a document.
type Page interface {
	// Text returns the page's plain-text rendering.
	Text() string
	// SearchFor returns the bounding regions of every visual occurrence of
	// the literal on the page. No matches -> empty slice.
	SearchFor(literal string) []Rect
	// AddRedaction marks a region for removal. Nothing changes until
	// ApplyRedactions is called.
	AddRedaction(r Rect)
	// ApplyRedactions permanently removes all marked content.
	ApplyRedactions()
}

// Document is an open document with positionally addressable pages.
type Document interface {
	PageCount() int
	Page(i int) Page
	// AppendPages copies pages from..to (0-indexed, inclusive) of src into
	// the document.
	AppendPages(src Document, from, to int) error
	// Bytes serializes the document.
	Bytes() ([]byte, error)
}

// Factory opens and creates documents. The concrete renderer behind it is an
// external collaborator; the pipeline depends only on this surface.
type Factory interface {
	Open(path string) (Document, error)
	OpenBytes(data []byte) (Document, error)
	New() Document
}
