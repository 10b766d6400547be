// Package pipeline coordinates the per-message intake flow: cutoff, text
// extraction, classification, redaction, archival of both variants, then
// immediate-notification fan-out. Stages hand value objects to each other;
// nothing accumulates in shared instance state.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/svwadmin/reservations-tracker/constants"
	"github.com/svwadmin/reservations-tracker/internal/classify"
	"github.com/svwadmin/reservations-tracker/internal/document"
	"github.com/svwadmin/reservations-tracker/internal/mailbox"
	"github.com/svwadmin/reservations-tracker/internal/redact"
	"github.com/svwadmin/reservations-tracker/internal/subscription"
)

// Archiver is the slice of the archive component the processor needs.
type Archiver interface {
	Archive(ctx context.Context, doc document.Document, record *classify.BookingRecord, variant constants.ArchiveVariant) error
}

// Notifier delivers immediate notifications for a freshly archived booking.
type Notifier interface {
	NotifyImmediate(ctx context.Context, record classify.BookingRecord, recipients []string) error
}

// AttachmentResult is the per-attachment outcome.
type AttachmentResult struct {
	Name    string
	Records int
	Skipped bool
	Err     string
}

// Stats summarizes one message's attachments.
type Stats struct {
	Attachments uint32
	Processed   uint32
	Skipped     uint32
	Failed      uint32
}

// Processor runs the booking-document pipeline for one message at a time.
type Processor struct {
	factory    document.Factory
	classifier *classify.Classifier
	redactor   *redact.Redactor
	archiver   Archiver
	registry   *subscription.Registry
	notifier   Notifier
	log        *slog.Logger
}

func NewProcessor(factory document.Factory, classifier *classify.Classifier, redactor *redact.Redactor, archiver Archiver, registry *subscription.Registry, notifier Notifier, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		factory:    factory,
		classifier: classifier,
		redactor:   redactor,
		archiver:   archiver,
		registry:   registry,
		notifier:   notifier,
		log:        log,
	}
}

// ProcessMessage runs every attachment of a reservation message through the
// pipeline. Attachments are processed independently; one failure does not
// block its siblings. The returned error is non-nil when at least one
// attachment failed, so the caller can route the message to its alert path.
func (p *Processor) ProcessMessage(ctx context.Context, msg mailbox.Message) ([]AttachmentResult, Stats, error) {
	attachments, err := msg.Attachments(ctx)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("fetch attachments: %w", err)
	}

	var results []AttachmentResult
	var stats Stats
	for _, att := range attachments {
		stats.Attachments++
		res := AttachmentResult{Name: att.Name}

		if constants.NormalizeExt(filepath.Ext(att.Name)) != "pdf" {
			p.log.Info("processor.skip_non_pdf", "attachment", att.Name)
			res.Skipped = true
			stats.Skipped++
			results = append(results, res)
			continue
		}

		records, err := p.ProcessAttachment(ctx, att)
		if err != nil {
			p.log.Warn("processor.attachment_failed", "attachment", att.Name, "err", err)
			res.Err = err.Error()
			stats.Failed++
			results = append(results, res)
			continue
		}
		res.Records = len(records)
		stats.Processed++
		results = append(results, res)
	}

	if stats.Failed > 0 {
		return results, stats, fmt.Errorf("%d of %d attachments failed", stats.Failed, stats.Attachments)
	}
	return results, stats, nil
}

// ProcessAttachment runs one PDF through cutoff, classification, redaction,
// archival of both variants (redacted strictly after the original
// succeeded), and notification fan-out.
func (p *Processor) ProcessAttachment(ctx context.Context, att mailbox.Attachment) ([]classify.BookingRecord, error) {
	doc, err := p.factory.OpenBytes(att.Content)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", att.Name, err)
	}

	if keep, ok := document.DetectCutoff(doc, p.log); ok && keep < doc.PageCount() {
		doc, err = document.Truncate(p.factory, doc, keep)
		if err != nil {
			return nil, fmt.Errorf("truncate %s: %w", att.Name, err)
		}
		p.log.Info("processor.truncated", "attachment", att.Name, "pages", keep)
	}

	records, err := p.classifier.Classify(document.FullText(doc))
	if err != nil {
		return nil, err
	}

	sensitive := map[string]struct{}{}
	if len(records) > 0 {
		sensitive = records[0].SensitiveContent
	}
	redacted, err := p.redactor.Redact(doc, sensitive)
	if err != nil {
		return nil, fmt.Errorf("redact %s: %w", att.Name, err)
	}

	for i := range records {
		if err := p.archiver.Archive(ctx, doc, &records[i], constants.VariantOriginal); err != nil {
			return nil, err
		}
	}
	for i := range records {
		if err := p.archiver.Archive(ctx, redacted, &records[i], constants.VariantRedacted); err != nil {
			return nil, err
		}
	}

	for _, record := range records {
		recipients := p.registry.EmailsWithNotificationsForWeekday(constants.ISOWeekday(record.Date))
		if len(recipients) == 0 {
			continue
		}
		if err := p.notifier.NotifyImmediate(ctx, record, recipients); err != nil {
			return nil, fmt.Errorf("notify for %s: %w", record.CleanFilename, err)
		}
	}
	return records, nil
}
