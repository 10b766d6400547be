package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/svwadmin/reservations-tracker/internal/mailbox"
	"github.com/svwadmin/reservations-tracker/internal/subscription"
)

// Alerter dispatches a failure alert to the support address. The trace ID
// ties the alert to the log lines of the failed run.
type Alerter interface {
	Alert(ctx context.Context, subject string, trace uuid.UUID, cause error) error
}

// Confirmer acknowledges a processed subscription update to the subscriber.
type Confirmer interface {
	ConfirmSubscriptionUpdate(ctx context.Context, meta subscription.Meta) error
}

// IntakeConfig identifies which unread messages belong to which flow.
type IntakeConfig struct {
	ReservationSubjectPrefix  string
	ReservationSenderContains string
	SubscriptionSubjectPrefix string
	SubscriptionSender        string
}

// Intake polls the mailbox and routes each unread message: reservation mails
// run the booking pipeline, subscription mails update the registry,
// everything else is marked read and skipped. A failed message triggers an
// alert; when even the alert cannot be sent the message stays unread to
// force a retry on the next poll.
type Intake struct {
	mailbox   mailbox.Mailbox
	processor *Processor
	registry  *subscription.Registry
	alerter   Alerter
	confirmer Confirmer
	cfg       IntakeConfig
	log       *slog.Logger
}

func NewIntake(mb mailbox.Mailbox, processor *Processor, registry *subscription.Registry, alerter Alerter, confirmer Confirmer, cfg IntakeConfig, log *slog.Logger) *Intake {
	if log == nil {
		log = slog.Default()
	}
	return &Intake{
		mailbox:   mb,
		processor: processor,
		registry:  registry,
		alerter:   alerter,
		confirmer: confirmer,
		cfg:       cfg,
		log:       log,
	}
}

// Poll processes all currently unread messages, newest first.
func (in *Intake) Poll(ctx context.Context) error {
	messages, err := in.mailbox.UnreadMessages(ctx)
	if err != nil {
		return err
	}
	for _, msg := range messages {
		switch {
		case in.isReservationMessage(msg):
			in.handleReservation(ctx, msg)
		case in.isSubscriptionMessage(msg):
			in.handleSubscriptionUpdate(ctx, msg)
		default:
			in.log.Info("intake.skip_unknown", "subject", msg.Subject(), "sender", msg.Sender())
			if err := msg.MarkRead(ctx); err != nil {
				in.log.Warn("intake.mark_read_failed", "subject", msg.Subject(), "err", err)
			}
		}
	}
	return nil
}

func (in *Intake) handleReservation(ctx context.Context, msg mailbox.Message) {
	trace := uuid.New()
	log := in.log.With("trace_id", trace, "subject", msg.Subject())
	log.Info("intake.reservation_start")

	_, stats, err := in.processor.ProcessMessage(ctx, msg)
	if err == nil {
		log.Info("intake.reservation_done", "processed", stats.Processed, "skipped", stats.Skipped)
		if err := msg.MarkRead(ctx); err != nil {
			log.Warn("intake.mark_read_failed", "err", err)
		}
		return
	}

	log.Warn("intake.reservation_failed", "err", err, "failed", stats.Failed)
	if alertErr := in.alerter.Alert(ctx, msg.Subject(), trace, err); alertErr != nil {
		// Without an alert the only failure surface left is the unread flag.
		log.Warn("intake.alert_failed", "err", alertErr)
		if err := msg.MarkUnread(ctx); err != nil {
			log.Warn("intake.mark_unread_failed", "err", err)
		}
		return
	}
	if err := msg.MarkRead(ctx); err != nil {
		log.Warn("intake.mark_read_failed", "err", err)
	}
}

func (in *Intake) handleSubscriptionUpdate(ctx context.Context, msg mailbox.Message) {
	trace := uuid.New()
	log := in.log.With("trace_id", trace, "subject", msg.Subject())
	log.Info("intake.subscription_start")

	err := in.applySubscriptionUpdate(ctx, msg)
	if err == nil {
		log.Info("intake.subscription_done")
		if err := msg.MarkRead(ctx); err != nil {
			log.Warn("intake.mark_read_failed", "err", err)
		}
		return
	}

	log.Warn("intake.subscription_failed", "err", err)
	if alertErr := in.alerter.Alert(ctx, msg.Subject(), trace, err); alertErr != nil {
		log.Warn("intake.alert_failed", "err", alertErr)
		if err := msg.MarkUnread(ctx); err != nil {
			log.Warn("intake.mark_unread_failed", "err", err)
		}
		return
	}
	if err := msg.MarkRead(ctx); err != nil {
		log.Warn("intake.mark_read_failed", "err", err)
	}
}

func (in *Intake) applySubscriptionUpdate(ctx context.Context, msg mailbox.Message) error {
	meta, err := subscription.ParseUpdate(msg.Body())
	if err != nil {
		return err
	}
	if err := in.registry.AddOrUpdate(ctx, meta); err != nil {
		return err
	}
	return in.confirmer.ConfirmSubscriptionUpdate(ctx, meta)
}

func (in *Intake) isReservationMessage(msg mailbox.Message) bool {
	return strings.HasPrefix(msg.Subject(), in.cfg.ReservationSubjectPrefix) &&
		strings.Contains(strings.ToLower(msg.Sender()), strings.ToLower(in.cfg.ReservationSenderContains))
}

func (in *Intake) isSubscriptionMessage(msg mailbox.Message) bool {
	return strings.HasPrefix(msg.Subject(), in.cfg.SubscriptionSubjectPrefix) &&
		strings.Contains(strings.ToLower(msg.Sender()), strings.ToLower(in.cfg.SubscriptionSender))
}
