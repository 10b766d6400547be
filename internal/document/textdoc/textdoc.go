// Package textdoc is a text-backed implementation of the document contracts.
// Pages hold plain text, regions address character ranges, and serialization
// joins pages with a form-feed separator. The daemon's local mode and the
// test suites run on it; a real renderer plugs in behind the same contracts.
package textdoc

import (
	"os"
	"sort"
	"strings"

	"github.com/svwadmin/reservations-tracker/internal/document"
)

const pageSeparator = "\x0c"

// Factory creates and opens text-backed documents.
type Factory struct{}

func (Factory) New() document.Document {
	return &Doc{}
}

func (Factory) OpenBytes(data []byte) (document.Document, error) {
	d := &Doc{}
	for _, text := range strings.Split(string(data), pageSeparator) {
		d.pages = append(d.pages, &Page{text: text})
	}
	return d, nil
}

func (f Factory) Open(path string) (document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return f.OpenBytes(data)
}

// FromPages builds a document directly from page texts.
func FromPages(texts ...string) *Doc {
	d := &Doc{}
	for _, t := range texts {
		d.pages = append(d.pages, &Page{text: t})
	}
	return d
}

// Doc is a text-backed document.
type Doc struct {
	pages []*Page
}

func (d *Doc) PageCount() int { return len(d.pages) }

func (d *Doc) Page(i int) document.Page { return d.pages[i] }

func (d *Doc) AppendPages(src document.Document, from, to int) error {
	for i := from; i <= to && i < src.PageCount(); i++ {
		d.pages = append(d.pages, &Page{text: src.Page(i).Text()})
	}
	return nil
}

func (d *Doc) Bytes() ([]byte, error) {
	texts := make([]string, len(d.pages))
	for i, p := range d.pages {
		texts[i] = p.text
	}
	return []byte(strings.Join(texts, pageSeparator)), nil
}

// Page is one text page. Regions are character ranges: X0 is the first rune
// offset covered, X1 is one past the last.
type Page struct {
	text    string
	pending []document.Rect
}

func (p *Page) Text() string { return p.text }

func (p *Page) SearchFor(literal string) []document.Rect {
	if literal == "" {
		return nil
	}
	var rects []document.Rect
	for start := 0; ; {
		idx := strings.Index(p.text[start:], literal)
		if idx < 0 {
			break
		}
		at := start + idx
		rects = append(rects, document.Rect{
			X0: float64(at),
			Y0: 0,
			X1: float64(at + len(literal)),
			Y1: 1,
		})
		start = at + len(literal)
	}
	return rects
}

func (p *Page) AddRedaction(r document.Rect) {
	p.pending = append(p.pending, r)
}

// ApplyRedactions removes every marked range from the page text. Overlapping
// marks are merged before removal so offsets stay valid.
func (p *Page) ApplyRedactions() {
	if len(p.pending) == 0 {
		return
	}
	ranges := make([][2]int, 0, len(p.pending))
	for _, r := range p.pending {
		lo, hi := int(r.X0), int(r.X1)
		if lo < 0 {
			lo = 0
		}
		if hi > len(p.text) {
			hi = len(p.text)
		}
		if lo < hi {
			ranges = append(ranges, [2]int{lo, hi})
		}
	}
	p.pending = nil
	if len(ranges) == 0 {
		return
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i][0] < ranges[j][0] })

	merged := [][2]int{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r[0] <= last[1] {
			if r[1] > last[1] {
				last[1] = r[1]
			}
			continue
		}
		merged = append(merged, r)
	}

	var b strings.Builder
	prev := 0
	for _, r := range merged {
		b.WriteString(p.text[prev:r[0]])
		prev = r[1]
	}
	b.WriteString(p.text[prev:])
	p.text = b.String()
}
