// Package notify composes and sends the outbound mailings: immediate
// notifications, reminder digests with the archived documents attached,
// subscription confirmations, and failure alerts. Full template rendering
// and locale setup live outside the core; the bodies here are deliberately
// plain.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/svwadmin/reservations-tracker/internal/classify"
	"github.com/svwadmin/reservations-tracker/internal/mailbox"
	"github.com/svwadmin/reservations-tracker/internal/store"
	"github.com/svwadmin/reservations-tracker/internal/subscription"
)

// Config carries the fixed addresses and subject prefix for all mailings.
type Config struct {
	SupportAddress string
	SubjectPrefix  string
}

// Sender sends all outbound mail through one mailbox sender.
type Sender struct {
	sender mailbox.Sender
	cfg    Config
	log    *slog.Logger
}

func NewSender(sender mailbox.Sender, cfg Config, log *slog.Logger) *Sender {
	if log == nil {
		log = slog.Default()
	}
	return &Sender{sender: sender, cfg: cfg, log: log}
}

// NotifyImmediate tells weekday subscribers about a freshly archived booking.
func (s *Sender) NotifyImmediate(ctx context.Context, record classify.BookingRecord, recipients []string) error {
	body := fmt.Sprintf(
		"Neue Reservation am %s.\nOrganisation: %s\nBuchung: %s\nArchiviert als: %s\n",
		record.Date.Format("02.01.2006"), record.Organization, record.BookingID, record.CleanFilename,
	)
	msg := mailbox.Outgoing{
		Subject: fmt.Sprintf("%s Neue Reservation am %s", s.cfg.SubjectPrefix, record.Date.Format("02.01.2006")),
		Body:    body,
		ReplyTo: s.cfg.SupportAddress,
		BCC:     recipients,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send immediate notification: %w", err)
	}
	s.log.Info("notify.immediate_sent", "date", record.Date.Format("2006-01-02"), "recipients", len(recipients))
	return nil
}

// DispatchReminder sends one reminder mailing with the matching archived
// documents attached. Downloads are staged in a temp dir that is removed on
// every exit path.
func (s *Sender) DispatchReminder(ctx context.Context, leadDays int, date time.Time, files []store.Item, recipients []string) error {
	tmpDir, err := os.MkdirTemp("", "reminder-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	var names, paths []string
	for _, item := range files {
		local, err := item.Download(ctx, tmpDir)
		if err != nil {
			return fmt.Errorf("download %s: %w", item.Name(), err)
		}
		names = append(names, item.Name())
		paths = append(paths, local)
	}

	body := fmt.Sprintf(
		"Erinnerung: in %d Tagen, am %s, finden folgende Reservationen statt:\n\n%s\n\nBei Fragen: %s\n",
		leadDays, date.Format("02.01.2006"), strings.Join(names, "\n"), s.cfg.SupportAddress,
	)
	msg := mailbox.Outgoing{
		Subject:         fmt.Sprintf("%s Reservation vom %s", s.cfg.SubjectPrefix, date.Format("02.01.2006")),
		Body:            body,
		ReplyTo:         s.cfg.SupportAddress,
		BCC:             recipients,
		AttachmentPaths: paths,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	s.log.Info("notify.reminder_sent", "date", date.Format("2006-01-02"), "lead_days", leadDays, "recipients", len(recipients))
	return nil
}

// ConfirmSubscriptionUpdate acknowledges a processed update to the
// subscriber.
func (s *Sender) ConfirmSubscriptionUpdate(ctx context.Context, meta subscription.Meta) error {
	lead := "keine"
	if meta.ReminderLeadDays != nil {
		lead = fmt.Sprintf("%d Tage im Voraus", *meta.ReminderLeadDays)
	}
	body := fmt.Sprintf(
		"Dein Abonnement wurde aktualisiert.\nWochentage: %v\nErinnerung: %s\nSofortbenachrichtigung: %t\n",
		meta.Weekdays, lead, meta.ImmediateNotifications,
	)
	msg := mailbox.Outgoing{
		Subject:    fmt.Sprintf("%s Abonnement aktualisiert", s.cfg.SubjectPrefix),
		Body:       body,
		ReplyTo:    s.cfg.SupportAddress,
		Recipients: []string{meta.Email},
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send subscription confirmation: %w", err)
	}
	return nil
}

// Alert reports a failed run to the support address, carrying the trace ID
// that links it to the run's log lines.
func (s *Sender) Alert(ctx context.Context, subject string, trace uuid.UUID, cause error) error {
	body := fmt.Sprintf(
		"Verarbeitung fehlgeschlagen.\n\nBetreff: %s\nTrace: %s\nFehler: %v\n",
		subject, trace, cause,
	)
	msg := mailbox.Outgoing{
		Subject:    fmt.Sprintf("%s Fehler: %s", s.cfg.SubjectPrefix, subject),
		Body:       body,
		Recipients: []string{s.cfg.SupportAddress},
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send alert: %w", err)
	}
	s.log.Info("notify.alert_sent", "trace_id", trace)
	return nil
}
