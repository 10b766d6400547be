package constants

import "time"

// Weekday numbering used across subscriptions: 0 = Monday .. 6 = Sunday.
// This matches the encoding subscribers configure and the persisted registry.
const (
	WeekdayMin = 0
	WeekdayMax = 6
)

// GermanWeekdays maps the day names used in subscription-update mails to the
// registry's Monday-based numbering.
var GermanWeekdays = map[string]int{
	"Montag":     0,
	"Dienstag":   1,
	"Mittwoch":   2,
	"Donnerstag": 3,
	"Freitag":    4,
	"Samstag":    5,
	"Sonntag":    6,
}

// ISOWeekday converts Go's Sunday-based time.Weekday to the Monday-based
// numbering used by the registry.
func ISOWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
