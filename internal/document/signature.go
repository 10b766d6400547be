package document

import (
	"fmt"
	"strings"
)

// Signature returns a normalized page-wise text fingerprint: the page count,
// then each page's text with consecutive whitespace collapsed to single
// spaces, joined by a page separator. Two documents with equal signatures are
// treated as semantically identical even when their encoded bytes differ,
// because re-encoding is expected to change bytes without changing content.
func Signature(doc Document) string {
	pages := make([]string, 0, doc.PageCount())
	for i := 0; i < doc.PageCount(); i++ {
		pages = append(pages, strings.Join(strings.Fields(doc.Page(i).Text()), " "))
	}
	return fmt.Sprintf("%d|%s", len(pages), strings.Join(pages, "\f"))
}

// FullText concatenates every page's text.
func FullText(doc Document) string {
	var b strings.Builder
	for i := 0; i < doc.PageCount(); i++ {
		b.WriteString(doc.Page(i).Text())
	}
	return b.String()
}
