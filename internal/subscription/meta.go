package subscription

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/svwadmin/reservations-tracker/constants"
)

// Meta is one subscriber's configuration, keyed by email in the registry.
type Meta struct {
	Email                  string `json:"email"`
	Weekdays               []int  `json:"weekdays"`
	ReminderLeadDays       *int   `json:"reminder_lead_days"`
	ImmediateNotifications bool   `json:"immediate_notifications"`
}

// Validate enforces the registry invariants: weekday values in 0..6 and a
// lead time of 0..30 days when configured.
func (m Meta) Validate() error {
	if m.Email == "" {
		return fmt.Errorf("subscription meta: email is required")
	}
	for _, d := range m.Weekdays {
		if d < constants.WeekdayMin || d > constants.WeekdayMax {
			return fmt.Errorf("subscription meta for %s: weekday %d out of range", m.Email, d)
		}
	}
	if m.ReminderLeadDays != nil && (*m.ReminderLeadDays < 0 || *m.ReminderLeadDays > 30) {
		return fmt.Errorf("subscription meta for %s: reminder_lead_days %d out of range", m.Email, *m.ReminderLeadDays)
	}
	return nil
}

// Unsubscribed reports whether the entry is degenerate: no weekdays, no
// reminder lead time, no immediate notifications. Such entries are removed
// from the registry rather than retained.
func (m Meta) Unsubscribed() bool {
	return len(m.Weekdays) == 0 && m.ReminderLeadDays == nil && !m.ImmediateNotifications
}

func (m Meta) caresAboutWeekday(weekday int) bool {
	for _, d := range m.Weekdays {
		if d == weekday {
			return true
		}
	}
	return false
}

const metaSchemaJSON = `{
	"type": "object",
	"required": ["email", "weekdays", "reminder_lead_days", "immediate_notifications"],
	"properties": {
		"email": {"type": "string", "minLength": 1},
		"weekdays": {
			"type": ["array", "null"],
			"items": {"type": "integer", "minimum": 0, "maximum": 6}
		},
		"reminder_lead_days": {
			"type": ["integer", "null"],
			"minimum": 0,
			"maximum": 30
		},
		"immediate_notifications": {"type": "boolean"}
	},
	"additionalProperties": false
}`

var metaSchema = jsonschema.MustCompileString("subscription_meta.json", metaSchemaJSON)

// MarshalMeta serializes a subscription entry for the keyed store after
// validating it against the registry schema.
func MarshalMeta(m Meta) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := validateAgainstSchema(data); err != nil {
		return nil, fmt.Errorf("subscription meta for %s: %w", m.Email, err)
	}
	return data, nil
}

// UnmarshalMeta parses a stored entry, rejecting documents that do not match
// the registry schema. A hand-edited or corrupted store surfaces here
// instead of producing quietly wrong scheduling.
func UnmarshalMeta(data []byte) (Meta, error) {
	if err := validateAgainstSchema(data); err != nil {
		return Meta{}, err
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return Meta{}, err
	}
	if err := m.Validate(); err != nil {
		return Meta{}, err
	}
	return m, nil
}

func validateAgainstSchema(data []byte) error {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	return metaSchema.Validate(doc)
}
