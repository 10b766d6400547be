package classify

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/svwadmin/reservations-tracker/internal/common"
)

// maxAddressBlockLines bounds the address block: more non-empty lines than
// this means the anchor detection went wrong, and the document is rejected
// rather than misparsed.
const maxAddressBlockLines = 10

var (
	// The prefix word varies ("Definitive", "Geänderte definitive",
	// "Provisorische"); only the suffix pattern is matched.
	bookingIDPattern = regexp.MustCompile(`Buchungsbestätigung \((\d+)\)`)

	datePattern  = regexp.MustCompile(`\b\d{2}\.\d{2}\.\d{4}\b`)
	phonePattern = regexp.MustCompile(`\+\d{1,3}[ \-/]?(?:\(0\)[ \-/]?)?\d(?:[ \-/]?\d){5,12}`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

const (
	optionsMarker = "Mietoptionen"
	costsMarker   = "Kosten"
)

// Classifier turns the extracted text of a booking-confirmation document
// into booking records. It fails hard when the expected structure is
// missing; it never guesses.
type Classifier struct {
	log *slog.Logger
}

func NewClassifier(log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{log: log}
}

// Classify parses the document text into one BookingRecord per distinct
// reserved date. On any structural mismatch the whole document is rejected;
// no partial record set is returned.
func (c *Classifier) Classify(text string) ([]BookingRecord, error) {
	bookingID, err := c.findBookingID(text)
	if err != nil {
		return nil, err
	}

	addressLines, err := c.extractAddressBlock(text)
	if err != nil {
		return nil, err
	}
	organization := ""
	if len(addressLines) > 0 {
		organization = addressLines[0]
	}

	dates, err := c.extractDates(text)
	if err != nil {
		return nil, err
	}

	sensitive := c.collectSensitiveContent(text, addressLines, organization)

	records := make([]BookingRecord, 0, len(dates))
	for _, date := range dates {
		records = append(records, BookingRecord{
			CleanFilename:    BuildCleanFilename(date, organization, bookingID),
			Date:             date,
			BookingID:        bookingID,
			Organization:     organization,
			SensitiveContent: sensitive,
		})
	}
	c.log.Info("classify.ok",
		"booking_id", bookingID,
		"organization", organization,
		"dates", len(records),
		"sensitive_spans", len(sensitive),
	)
	return records, nil
}

func (c *Classifier) findBookingID(text string) (string, error) {
	m := bookingIDPattern.FindStringSubmatch(text)
	if m == nil {
		return "", common.NewClassificationError("no booking id found")
	}
	return m[1], nil
}

// extractAddressBlock collects the lines following the leading booking-id
// line, stopping when the booking id reappears. Blank lines and lines
// carrying a date are stripped; the first surviving line is taken to be the
// organization name.
func (c *Classifier) extractAddressBlock(text string) ([]string, error) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || !bookingIDPattern.MatchString(lines[0]) {
		return nil, common.NewClassificationError("text does not start with booking id line")
	}

	var block []string
	nonEmpty := 0
	for _, line := range lines[1:] {
		if bookingIDPattern.MatchString(line) {
			break
		}
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
		if nonEmpty > maxAddressBlockLines {
			return nil, common.NewClassificationError("address block too long")
		}
		block = append(block, line)
	}

	var filtered []string
	for _, line := range block {
		line = strings.TrimSpace(line)
		if line == "" || datePattern.MatchString(line) {
			continue
		}
		filtered = append(filtered, line)
	}
	return filtered, nil
}

// extractDates pools dd.mm.yyyy tokens from every span between a
// "Mietoptionen" marker and the next "Kosten" marker. Dates from all spans
// are merged without attribution to the span that produced them.
func (c *Classifier) extractDates(text string) ([]time.Time, error) {
	var dates []time.Time
	seen := make(map[string]struct{})

	rest := text
	for {
		start := strings.Index(rest, optionsMarker)
		if start < 0 {
			break
		}
		rest = rest[start+len(optionsMarker):]
		end := strings.Index(rest, costsMarker)
		if end < 0 {
			// An options section with no closing costs marker is not a span.
			break
		}
		span := rest[:end]
		rest = rest[end+len(costsMarker):]
		for _, token := range datePattern.FindAllString(span, -1) {
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			date, err := time.Parse("02.01.2006", token)
			if err != nil {
				c.log.Warn("classify.bad_date_token", "token", token)
				continue
			}
			dates = append(dates, date)
		}
	}

	if len(dates) == 0 {
		return nil, common.NewClassificationError("no dates found")
	}
	return dates, nil
}

func (c *Classifier) collectSensitiveContent(text string, addressLines []string, organization string) map[string]struct{} {
	sensitive := make(map[string]struct{})
	for _, m := range phonePattern.FindAllString(text, -1) {
		sensitive[m] = struct{}{}
	}
	for _, m := range emailPattern.FindAllString(text, -1) {
		sensitive[m] = struct{}{}
	}
	for _, line := range addressLines {
		sensitive[line] = struct{}{}
	}
	delete(sensitive, organization)
	delete(sensitive, "")
	return sensitive
}
