package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/svwadmin/reservations-tracker/internal/subscription"
)

type memKeyedStore struct {
	entries map[string][]byte
}

func (s *memKeyedStore) Load(ctx context.Context) (map[string][]byte, error) {
	return s.entries, nil
}

func (s *memKeyedStore) Save(ctx context.Context, entries map[string][]byte) error {
	s.entries = entries
	return nil
}

func (s *memKeyedStore) Close() error { return nil }

func TestExportSubscriptionsXLSX(t *testing.T) {
	ctx := context.Background()
	reg, err := subscription.NewRegistry(ctx, &memKeyedStore{entries: map[string][]byte{}}, nil)
	require.NoError(t, err)

	lead := 3
	require.NoError(t, reg.AddOrUpdate(ctx, subscription.Meta{
		Email:                  "heidi@example.ch",
		Weekdays:               []int{5, 6},
		ReminderLeadDays:       &lead,
		ImmediateNotifications: true,
	}))
	require.NoError(t, reg.AddOrUpdate(ctx, subscription.Meta{
		Email:    "ueli@example.ch",
		Weekdays: []int{2},
	}))

	data, err := NewService(reg, nil).ExportSubscriptionsXLSX()
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Subscriptions")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Email", "Weekdays", "Reminder Lead Days", "Immediate Notifications"}, rows[0])

	// Rows are ordered by email.
	assert.Equal(t, "heidi@example.ch", rows[1][0])
	assert.Equal(t, "Samstag, Sonntag", rows[1][1])
	assert.Equal(t, "3", rows[1][2])
	assert.Equal(t, "ueli@example.ch", rows[2][0])
	assert.Equal(t, "Mittwoch", rows[2][1])
}

func TestExportEmptyRegistryHasHeaderOnly(t *testing.T) {
	reg, err := subscription.NewRegistry(context.Background(), &memKeyedStore{entries: map[string][]byte{}}, nil)
	require.NoError(t, err)

	data, err := NewService(reg, nil).ExportSubscriptionsXLSX()
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Subscriptions")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
