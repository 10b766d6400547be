package document

import (
	"log/slog"
	"regexp"
	"strconv"
)

var pageMarkerPattern = regexp.MustCompile(`Seite (\d+)/(\d+)`)

// DetectCutoff inspects only the first page for a page-number marker of the
// form "Seite <current>/<total>". If the marker is present and names the
// first page, the returned count is the number of pages to retain; trailing
// pages are unrelated attachments concatenated into the same file. A missing
// or mismatched marker is a recoverable degraded mode: no truncation, and a
// warning is logged.
func DetectCutoff(doc Document, log *slog.Logger) (int, bool) {
	if log == nil {
		log = slog.Default()
	}
	if doc.PageCount() == 0 {
		log.Warn("cutoff.no_pages")
		return 0, false
	}

	m := pageMarkerPattern.FindStringSubmatch(doc.Page(0).Text())
	if m == nil {
		log.Warn("cutoff.marker_missing")
		return 0, false
	}
	current, _ := strconv.Atoi(m[1])
	total, _ := strconv.Atoi(m[2])
	if current != 1 {
		log.Warn("cutoff.page_mismatch", "detected_current", current, "expected", 1)
		return 0, false
	}
	return total, true
}

// Truncate returns a new document holding the first n pages of doc. The input
// document is left unmodified.
func Truncate(f Factory, doc Document, n int) (Document, error) {
	if n > doc.PageCount() {
		n = doc.PageCount()
	}
	out := f.New()
	if err := out.AppendPages(doc, 0, n-1); err != nil {
		return nil, err
	}
	return out, nil
}
