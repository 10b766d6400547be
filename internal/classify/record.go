package classify

import (
	"fmt"
	"time"
)

// BookingRecord is one reserved date extracted from a booking-confirmation
// document. A document spanning several dates yields one record per date,
// all sharing booking id, organization and sensitive-content set.
//
// Records are value objects handed between pipeline stages; only
// CleanFilename is ever rewritten, by the archiver when it resolves a naming
// collision.
type BookingRecord struct {
	CleanFilename    string
	Date             time.Time
	BookingID        string
	Organization     string
	SensitiveContent map[string]struct{}
}

// DateToken is the date's encoding inside archival filenames. Reminder
// lookups match archived files by this substring.
func DateToken(t time.Time) string {
	return t.Format("2006_01_02")
}

// BuildCleanFilename assembles and sanitizes the archival name for one
// reserved date.
func BuildCleanFilename(date time.Time, organization, bookingID string) string {
	return SanitizeFilename(fmt.Sprintf("Reservation_%s_%s_%s.pdf", DateToken(date), organization, bookingID))
}
