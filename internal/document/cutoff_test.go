package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svwadmin/reservations-tracker/internal/document"
	"github.com/svwadmin/reservations-tracker/internal/document/textdoc"
)

func TestDetectCutoff(t *testing.T) {
	doc := textdoc.FromPages("Buchung\nSeite 1/3", "zwei", "drei", "Anhang A", "Anhang B")

	keep, ok := document.DetectCutoff(doc, nil)
	require.True(t, ok)
	assert.Equal(t, 3, keep)

	trimmed, err := document.Truncate(textdoc.Factory{}, doc, keep)
	require.NoError(t, err)
	assert.Equal(t, 3, trimmed.PageCount())
	// The input document keeps all its pages.
	assert.Equal(t, 5, doc.PageCount())
}

func TestDetectCutoffMarkerMismatch(t *testing.T) {
	doc := textdoc.FromPages("Seite 2/3", "zwei", "drei", "vier", "fünf")
	_, ok := document.DetectCutoff(doc, nil)
	assert.False(t, ok)
}

func TestDetectCutoffMarkerMissing(t *testing.T) {
	doc := textdoc.FromPages("keine Seitenzahl", "zwei")
	_, ok := document.DetectCutoff(doc, nil)
	assert.False(t, ok)
}

func TestDetectCutoffIgnoresLaterPages(t *testing.T) {
	// Only the first page is inspected.
	doc := textdoc.FromPages("ohne Marker", "Seite 1/2")
	_, ok := document.DetectCutoff(doc, nil)
	assert.False(t, ok)
}

func TestTruncateBeyondPageCount(t *testing.T) {
	doc := textdoc.FromPages("eins", "zwei")
	trimmed, err := document.Truncate(textdoc.Factory{}, doc, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, trimmed.PageCount())
}
