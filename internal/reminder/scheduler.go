// Package reminder drives the once-per-day reminder pass: a wall-clock gate
// over a persisted last-run marker, then fan-out of due reminders with the
// matching archived documents attached.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/svwadmin/reservations-tracker/constants"
	"github.com/svwadmin/reservations-tracker/internal/archive"
	"github.com/svwadmin/reservations-tracker/internal/classify"
	"github.com/svwadmin/reservations-tracker/internal/common"
	"github.com/svwadmin/reservations-tracker/internal/store"
	"github.com/svwadmin/reservations-tracker/internal/subscription"
)

// Dispatcher sends one reminder mailing. It is external to the core.
type Dispatcher interface {
	DispatchReminder(ctx context.Context, leadDays int, date time.Time, files []store.Item, recipients []string) error
}

// Scheduler runs at most one reminder pass per calendar day, never before
// the configured hour in the reference timezone.
type Scheduler struct {
	registry     *subscription.Registry
	archiver     *archive.Archiver
	dispatcher   Dispatcher
	state        *RunState
	tz           *time.Location
	earliestHour int
	log          *slog.Logger
	now          func() time.Time
}

func NewScheduler(registry *subscription.Registry, archiver *archive.Archiver, dispatcher Dispatcher, state *RunState, tz *time.Location, earliestHour int, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		registry:     registry,
		archiver:     archiver,
		dispatcher:   dispatcher,
		state:        state,
		tz:           tz,
		earliestHour: earliestHour,
		log:          log,
		now:          time.Now,
	}
}

// RunIfDue checks the gate and, when it passes, runs the due-reminder pass.
// The run marker is advanced only after a fully successful pass, so a failed
// pass is retried on the next invocation. A closed gate is not an error.
func (s *Scheduler) RunIfDue(ctx context.Context) error {
	last, err := s.state.LastRun()
	if err != nil {
		return err
	}
	now := s.now().In(s.tz)
	if !s.gateOpen(last, now) {
		return nil
	}

	s.log.Info("reminder.pass_start")
	due := s.registry.DueRemindersToday(now)
	if len(due) == 0 {
		s.log.Info("reminder.no_targets")
		return nil
	}

	leads := make([]int, 0, len(due))
	for n := range due {
		leads = append(leads, n)
	}
	sort.Ints(leads)

	for _, lead := range leads {
		if err := s.remindForLead(ctx, now, lead, due[lead]); err != nil {
			return &common.SchedulingError{Cause: err}
		}
	}

	if err := s.state.Record(now); err != nil {
		return err
	}
	s.log.Info("reminder.pass_done", "lead_day_groups", len(due))
	return nil
}

// gateOpen: the last completed pass must lie on an earlier calendar date,
// and the clock must have reached the earliest hour, both judged in the
// reference timezone.
func (s *Scheduler) gateOpen(last, now time.Time) bool {
	lastDate := last.In(s.tz).Format("2006-01-02")
	today := now.Format("2006-01-02")
	if lastDate >= today {
		return false
	}
	return now.Hour() >= s.earliestHour
}

func (s *Scheduler) remindForLead(ctx context.Context, now time.Time, lead int, recipients []string) error {
	date := now.AddDate(0, 0, lead)
	files, err := s.reservationsOn(ctx, date)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		s.log.Info("reminder.no_reservations", "date", classify.DateToken(date), "lead_days", lead)
		return nil
	}
	s.log.Info("reminder.dispatch", "date", classify.DateToken(date), "lead_days", lead, "files", len(files), "recipients", len(recipients))
	if err := s.dispatcher.DispatchReminder(ctx, lead, date, files, recipients); err != nil {
		return fmt.Errorf("dispatch reminder for %s: %w", classify.DateToken(date), err)
	}
	return nil
}

// reservationsOn lists the archived redacted files whose name carries the
// date's filename token.
func (s *Scheduler) reservationsOn(ctx context.Context, date time.Time) ([]store.Item, error) {
	folder, err := s.archiver.YearFolder(ctx, constants.VariantRedacted, date.Year())
	if err != nil {
		return nil, err
	}
	items, err := folder.Items(ctx)
	if err != nil {
		return nil, err
	}
	token := classify.DateToken(date)
	var matching []store.Item
	for _, item := range items {
		if strings.Contains(item.Name(), token) {
			matching = append(matching, item)
		}
	}
	return matching, nil
}
