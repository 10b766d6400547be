package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestMetaValidate(t *testing.T) {
	tests := []struct {
		name    string
		meta    Meta
		wantErr bool
	}{
		{"valid full", Meta{Email: "a@b.ch", Weekdays: []int{0, 6}, ReminderLeadDays: intPtr(3), ImmediateNotifications: true}, false},
		{"valid without reminder", Meta{Email: "a@b.ch", Weekdays: []int{2}}, false},
		{"missing email", Meta{Weekdays: []int{1}}, true},
		{"weekday below range", Meta{Email: "a@b.ch", Weekdays: []int{-1}}, true},
		{"weekday above range", Meta{Email: "a@b.ch", Weekdays: []int{7}}, true},
		{"lead days negative", Meta{Email: "a@b.ch", ReminderLeadDays: intPtr(-1)}, true},
		{"lead days too large", Meta{Email: "a@b.ch", ReminderLeadDays: intPtr(31)}, true},
		{"lead days boundary", Meta{Email: "a@b.ch", ReminderLeadDays: intPtr(30)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMetaUnsubscribed(t *testing.T) {
	assert.True(t, Meta{Email: "a@b.ch"}.Unsubscribed())
	assert.False(t, Meta{Email: "a@b.ch", Weekdays: []int{0}}.Unsubscribed())
	assert.False(t, Meta{Email: "a@b.ch", ReminderLeadDays: intPtr(0)}.Unsubscribed())
	assert.False(t, Meta{Email: "a@b.ch", ImmediateNotifications: true}.Unsubscribed())
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	m := Meta{Email: "a@b.ch", Weekdays: []int{5, 6}, ReminderLeadDays: intPtr(2), ImmediateNotifications: true}
	data, err := MarshalMeta(m)
	require.NoError(t, err)

	got, err := UnmarshalMeta(data)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestUnmarshalRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"weekday out of range": `{"email":"a@b.ch","weekdays":[9],"reminder_lead_days":null,"immediate_notifications":false}`,
		"lead days as string":  `{"email":"a@b.ch","weekdays":[],"reminder_lead_days":"3","immediate_notifications":false}`,
		"missing field":        `{"email":"a@b.ch","weekdays":[]}`,
		"unknown field":        `{"email":"a@b.ch","weekdays":[],"reminder_lead_days":null,"immediate_notifications":false,"extra":1}`,
		"not json":             `{nope`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalMeta([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestMarshalRejectsInvalidMeta(t *testing.T) {
	_, err := MarshalMeta(Meta{Email: "", Weekdays: []int{1}})
	assert.Error(t, err)
}
