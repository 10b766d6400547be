package subscription

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/svwadmin/reservations-tracker/constants"
)

// Keys that may be absent from a subscription-update message.
var optionalUpdateKeys = map[string]struct{}{
	"reminder_lead_days": {},
	"reminder_emails":    {},
}

// ParseUpdate reads a subscription-update message body of "key: value"
// lines into a Meta. Weekdays arrive as comma-separated German day names;
// boolean answers are "ja"/"nein". When reminder_emails is not answered with
// "ja" the lead-day value is discarded, so the entry carries no reminder
// subscription.
func ParseUpdate(body string) (Meta, error) {
	lines := strings.Split(body, "\n")

	email, err := valueForKey("email", lines)
	if err != nil {
		return Meta{}, err
	}
	weekdaysRaw, err := valueForKey("weekdays", lines)
	if err != nil {
		return Meta{}, err
	}
	immediateRaw, err := valueForKey("immediate_notifications", lines)
	if err != nil {
		return Meta{}, err
	}
	remindersRaw, err := valueForKey("reminder_emails", lines)
	if err != nil {
		return Meta{}, err
	}
	leadRaw, err := valueForKey("reminder_lead_days", lines)
	if err != nil {
		return Meta{}, err
	}

	m := Meta{
		Email:                  email,
		Weekdays:               parseWeekdays(weekdaysRaw),
		ImmediateNotifications: isYes(immediateRaw),
	}
	if isYes(remindersRaw) {
		if leadRaw == "" {
			return Meta{}, fmt.Errorf("subscription update for %s: reminder_emails is ja but reminder_lead_days is missing", email)
		}
		lead, err := strconv.Atoi(leadRaw)
		if err != nil {
			return Meta{}, fmt.Errorf("subscription update for %s: bad reminder_lead_days %q", email, leadRaw)
		}
		m.ReminderLeadDays = &lead
	}

	if err := m.Validate(); err != nil {
		return Meta{}, err
	}
	return m, nil
}

// valueForKey finds the single "key: value" line. A duplicated key is an
// error; a missing key is an error unless the key is optional.
func valueForKey(key string, lines []string) (string, error) {
	var matches []string
	prefix := key + ":"
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			matches = append(matches, strings.TrimSpace(line))
		}
	}
	switch {
	case len(matches) > 1:
		return "", fmt.Errorf("multiple lines for key %s in subscription update", key)
	case len(matches) == 0:
		if _, optional := optionalUpdateKeys[key]; optional {
			return "", nil
		}
		return "", fmt.Errorf("missing key %s in subscription update", key)
	}
	return strings.TrimSpace(strings.SplitN(matches[0], ":", 2)[1]), nil
}

func parseWeekdays(raw string) []int {
	var days []int
	for _, part := range strings.Split(raw, ",") {
		if d, ok := constants.GermanWeekdays[strings.TrimSpace(part)]; ok {
			days = append(days, d)
		}
	}
	return days
}

func isYes(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "ja")
}
