package reminder

import (
	"fmt"
	"os"
	"time"

	"github.com/svwadmin/reservations-tracker/internal/common"
)

// RunState persists the timestamp of the last completed reminder pass as a
// single ISO-8601 line. A missing file means "never run"; malformed content
// is a fatal parse error, never silently defaulted.
type RunState struct {
	path string
	tz   *time.Location
}

func NewRunState(path string, tz *time.Location) *RunState {
	return &RunState{path: path, tz: tz}
}

// LastRun reads the marker. The zero time is returned when no pass has ever
// completed.
func (s *RunState) LastRun() (time.Time, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, &common.SchedulingError{Cause: err}
	}
	raw := string(data)
	for len(raw) > 0 && (raw[len(raw)-1] == '\n' || raw[len(raw)-1] == '\r') {
		raw = raw[:len(raw)-1]
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, &common.SchedulingError{Cause: fmt.Errorf("malformed run-state timestamp %q: %w", raw, err)}
	}
	return ts, nil
}

// Record writes the marker, normalized to the reference timezone.
func (s *RunState) Record(ts time.Time) error {
	if err := os.WriteFile(s.path, []byte(ts.In(s.tz).Format(time.RFC3339)), 0o644); err != nil {
		return &common.SchedulingError{Cause: err}
	}
	return nil
}
