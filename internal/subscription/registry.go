// Package subscription holds the subscriber registry: who wants immediate
// notifications for which weekdays, and who wants reminders how many days
// ahead of an event.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/svwadmin/reservations-tracker/constants"
)

// Registry is the in-memory email -> Meta mapping over a keyed store. It is
// loaded fully on construction; every mutation validates, updates the map
// and rewrites the store. Concurrent writers are not supported and must be
// serialized externally.
type Registry struct {
	store KeyedStore
	metas map[string]Meta
	log   *slog.Logger
}

func NewRegistry(ctx context.Context, store KeyedStore, log *slog.Logger) (*Registry, error) {
	if log == nil {
		log = slog.Default()
	}
	entries, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	metas := make(map[string]Meta, len(entries))
	for email, data := range entries {
		m, err := UnmarshalMeta(data)
		if err != nil {
			return nil, fmt.Errorf("subscription entry %s: %w", email, err)
		}
		metas[email] = m
	}
	log.Info("registry.loaded", "subscribers", len(metas))
	return &Registry{store: store, metas: metas, log: log}, nil
}

// AddOrUpdate upserts a subscriber and persists. A degenerate entry (no
// weekdays, no lead time, no immediate notifications) counts as an
// unsubscribe and is removed instead of stored.
func (r *Registry) AddOrUpdate(ctx context.Context, m Meta) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.Unsubscribed() {
		r.log.Info("registry.unsubscribe", "email", m.Email)
		return r.Remove(ctx, m.Email)
	}
	r.metas[m.Email] = m
	if err := r.persist(ctx); err != nil {
		return err
	}
	r.log.Info("registry.updated", "email", m.Email)
	return nil
}

// Remove deletes a subscriber if present and persists. Removing an unknown
// email is a no-op, not an error.
func (r *Registry) Remove(ctx context.Context, email string) error {
	if _, ok := r.metas[email]; !ok {
		return nil
	}
	delete(r.metas, email)
	return r.persist(ctx)
}

// All returns every subscriber, ordered by email.
func (r *Registry) All() []Meta {
	out := make([]Meta, 0, len(r.metas))
	for _, m := range r.metas {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// EmailsWithNotificationsForWeekday returns subscribers who want an
// immediate notification when a reservation falls on the given weekday
// (0 = Monday).
func (r *Registry) EmailsWithNotificationsForWeekday(weekday int) []string {
	var emails []string
	for _, m := range r.metas {
		if m.ImmediateNotifications && m.caresAboutWeekday(weekday) {
			emails = append(emails, m.Email)
		}
	}
	sort.Strings(emails)
	return emails
}

// EmailsWithReminderDue returns subscribers whose configured lead time is
// exactly n and whose weekday set contains the weekday n days from now.
func (r *Registry) EmailsWithReminderDue(n int, now time.Time) []string {
	targetWeekday := (constants.ISOWeekday(now) + n) % 7
	var emails []string
	for _, m := range r.metas {
		if m.ReminderLeadDays != nil && *m.ReminderLeadDays == n && m.caresAboutWeekday(targetWeekday) {
			emails = append(emails, m.Email)
		}
	}
	sort.Strings(emails)
	return emails
}

// DueRemindersToday maps every lead-day count with at least one due
// subscriber to the recipient list, scanning 0 up to the maximum configured
// lead time.
func (r *Registry) DueRemindersToday(now time.Time) map[int][]string {
	max := -1
	for _, m := range r.metas {
		if m.ReminderLeadDays != nil && *m.ReminderLeadDays > max {
			max = *m.ReminderLeadDays
		}
	}
	due := make(map[int][]string)
	for n := 0; n <= max; n++ {
		if emails := r.EmailsWithReminderDue(n, now); len(emails) > 0 {
			due[n] = emails
		}
	}
	return due
}

func (r *Registry) persist(ctx context.Context) error {
	entries := make(map[string][]byte, len(r.metas))
	for email, m := range r.metas {
		data, err := MarshalMeta(m)
		if err != nil {
			return err
		}
		entries[email] = data
	}
	return r.store.Save(ctx, entries)
}
