// Package redact produces privacy-redacted copies of documents. It has no
// opinion on what is sensitive; the classifier decides that.
package redact

import (
	"log/slog"

	"github.com/svwadmin/reservations-tracker/internal/document"
)

// Redactor covers and removes literal strings from document copies.
type Redactor struct {
	factory document.Factory
	log     *slog.Logger
}

func NewRedactor(factory document.Factory, log *slog.Logger) *Redactor {
	if log == nil {
		log = slog.Default()
	}
	return &Redactor{factory: factory, log: log}
}

// Redact returns a deep copy of doc in which every visual occurrence of every
// given literal, on every page, has been marked and permanently removed. The
// input document is left unmodified. An empty literal set yields a faithful
// copy with no marks. Literals are applied independently, so their order
// does not affect the result; overlapping occurrences are all covered.
func (r *Redactor) Redact(doc document.Document, literals map[string]struct{}) (document.Document, error) {
	out := r.factory.New()
	if doc.PageCount() > 0 {
		if err := out.AppendPages(doc, 0, doc.PageCount()-1); err != nil {
			return nil, err
		}
	}

	marks := 0
	for i := 0; i < out.PageCount(); i++ {
		page := out.Page(i)
		for literal := range literals {
			for _, rect := range page.SearchFor(literal) {
				page.AddRedaction(rect)
				marks++
			}
		}
		page.ApplyRedactions()
	}
	r.log.Info("redact.ok", "pages", out.PageCount(), "literals", len(literals), "marks", marks)
	return out, nil
}
