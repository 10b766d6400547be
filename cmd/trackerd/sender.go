package main

import (
	"context"
	"log/slog"

	"github.com/svwadmin/reservations-tracker/internal/mailbox"
)

// logSender stands in for the hosted mailbox in local mode: outbound mail is
// logged instead of sent.
type logSender struct {
	log *slog.Logger
}

func (s *logSender) Send(_ context.Context, msg mailbox.Outgoing) error {
	s.log.Info("mail.outgoing",
		"subject", msg.Subject,
		"recipients", len(msg.Recipients),
		"bcc", len(msg.BCC),
		"attachments", len(msg.AttachmentPaths),
	)
	return nil
}
