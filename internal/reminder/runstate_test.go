package reminder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svwadmin/reservations-tracker/internal/common"
)

func TestLastRunMissingFileMeansNeverRun(t *testing.T) {
	state := NewRunState(filepath.Join(t.TempDir(), "last_run"), time.UTC)
	last, err := state.LastRun()
	require.NoError(t, err)
	assert.True(t, last.IsZero())
}

func TestRecordThenLastRunRoundtrip(t *testing.T) {
	tz, err := time.LoadLocation("Europe/Zurich")
	require.NoError(t, err)
	state := NewRunState(filepath.Join(t.TempDir(), "last_run"), tz)

	ts := time.Date(2026, time.August, 31, 9, 15, 0, 0, time.UTC)
	require.NoError(t, state.Record(ts))

	last, err := state.LastRun()
	require.NoError(t, err)
	assert.True(t, last.Equal(ts))
}

func TestLastRunToleratesTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_run")
	require.NoError(t, os.WriteFile(path, []byte("2026-08-31T09:15:00+02:00\n"), 0o644))

	state := NewRunState(path, time.UTC)
	last, err := state.LastRun()
	require.NoError(t, err)
	assert.Equal(t, 2026, last.Year())
}

func TestLastRunMalformedContentIsSchedulingError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_run")
	require.NoError(t, os.WriteFile(path, []byte("not a timestamp"), 0o644))

	state := NewRunState(path, time.UTC)
	_, err := state.LastRun()
	require.Error(t, err)
	var schedErr *common.SchedulingError
	assert.True(t, errors.As(err, &schedErr))
}
