package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svwadmin/reservations-tracker/constants"
	"github.com/svwadmin/reservations-tracker/internal/classify"
	"github.com/svwadmin/reservations-tracker/internal/document"
	"github.com/svwadmin/reservations-tracker/internal/document/textdoc"
	"github.com/svwadmin/reservations-tracker/internal/mailbox"
	"github.com/svwadmin/reservations-tracker/internal/redact"
	"github.com/svwadmin/reservations-tracker/internal/subscription"
)

const confirmationText = `Definitive Buchungsbestätigung (100)
SV Würenlos
Musterstrasse 12
5436 Würenlos
+41 56 123 45 67
kontakt@svw.example.ch

Definitive Buchungsbestätigung (100)
Mietoptionen
Halle 1, 13.10.2024, 18:00 - 22:00
Kosten
CHF 120.00
`

type archiveCall struct {
	variant  constants.ArchiveVariant
	name     string
	pages    int
	fullText string
}

type fakeArchiver struct {
	calls []archiveCall
	err   error
}

func (a *fakeArchiver) Archive(ctx context.Context, doc document.Document, record *classify.BookingRecord, variant constants.ArchiveVariant) error {
	if a.err != nil {
		return a.err
	}
	a.calls = append(a.calls, archiveCall{
		variant:  variant,
		name:     record.CleanFilename,
		pages:    doc.PageCount(),
		fullText: document.FullText(doc),
	})
	return nil
}

type notifyCall struct {
	record     classify.BookingRecord
	recipients []string
}

type fakeNotifier struct {
	calls []notifyCall
	err   error
}

func (n *fakeNotifier) NotifyImmediate(ctx context.Context, record classify.BookingRecord, recipients []string) error {
	if n.err != nil {
		return n.err
	}
	n.calls = append(n.calls, notifyCall{record: record, recipients: recipients})
	return nil
}

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

func newTestRegistry(t *testing.T) *subscription.Registry {
	t.Helper()
	reg, err := subscription.NewRegistry(context.Background(), &memKeyedStore{entries: map[string][]byte{}}, nil)
	require.NoError(t, err)
	return reg
}

func newTestProcessor(t *testing.T, archiver *fakeArchiver, registry *subscription.Registry, notifier *fakeNotifier) *Processor {
	t.Helper()
	factory := textdoc.Factory{}
	return NewProcessor(factory, classify.NewClassifier(nil), redact.NewRedactor(factory, nil), archiver, registry, notifier, nil)
}

func pdfAttachment(t *testing.T, name string, pages ...string) mailbox.Attachment {
	t.Helper()
	data, err := textdoc.FromPages(pages...).Bytes()
	require.NoError(t, err)
	return mailbox.Attachment{Name: name, Content: data}
}

func TestProcessAttachmentArchivesBothVariants(t *testing.T) {
	archiver := &fakeArchiver{}
	proc := newTestProcessor(t, archiver, newTestRegistry(t), &fakeNotifier{})

	records, err := proc.ProcessAttachment(context.Background(), pdfAttachment(t, "booking.pdf", confirmationText))
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.Len(t, archiver.calls, 2)
	assert.Equal(t, constants.VariantOriginal, archiver.calls[0].variant)
	assert.Equal(t, constants.VariantRedacted, archiver.calls[1].variant)
	assert.Equal(t, "Reservation_2024_10_13_SV Würenlos_100.pdf", archiver.calls[0].name)

	// The original keeps the sensitive lines, the redacted variant does not.
	assert.Contains(t, archiver.calls[0].fullText, "+41 56 123 45 67")
	assert.NotContains(t, archiver.calls[1].fullText, "+41 56 123 45 67")
	assert.NotContains(t, archiver.calls[1].fullText, "kontakt@svw.example.ch")
	assert.NotContains(t, archiver.calls[1].fullText, "Musterstrasse 12")
	assert.Contains(t, archiver.calls[1].fullText, "SV Würenlos")
}

func TestProcessAttachmentTruncatesAtCutoff(t *testing.T) {
	archiver := &fakeArchiver{}
	proc := newTestProcessor(t, archiver, newTestRegistry(t), &fakeNotifier{})

	att := pdfAttachment(t, "booking.pdf",
		"Seite 1/2\n"+confirmationText,
		"second page",
		"stale trailing page")
	_, err := proc.ProcessAttachment(context.Background(), att)
	require.NoError(t, err)

	require.Len(t, archiver.calls, 2)
	assert.Equal(t, 2, archiver.calls[0].pages)
	assert.NotContains(t, archiver.calls[0].fullText, "stale trailing page")
}

func TestProcessAttachmentNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	registry := newTestRegistry(t)
	// 13.10.2024 is a Sunday, weekday 6.
	require.NoError(t, registry.AddOrUpdate(ctx, subscription.Meta{
		Email: "sun@example.ch", Weekdays: []int{6}, ImmediateNotifications: true,
	}))
	require.NoError(t, registry.AddOrUpdate(ctx, subscription.Meta{
		Email: "mon@example.ch", Weekdays: []int{0}, ImmediateNotifications: true,
	}))

	notifier := &fakeNotifier{}
	proc := newTestProcessor(t, &fakeArchiver{}, registry, notifier)

	_, err := proc.ProcessAttachment(ctx, pdfAttachment(t, "booking.pdf", confirmationText))
	require.NoError(t, err)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, []string{"sun@example.ch"}, notifier.calls[0].recipients)
	assert.Equal(t, "100", notifier.calls[0].record.BookingID)
}

func TestProcessAttachmentClassificationFailureStopsPipeline(t *testing.T) {
	archiver := &fakeArchiver{}
	proc := newTestProcessor(t, archiver, newTestRegistry(t), &fakeNotifier{})

	_, err := proc.ProcessAttachment(context.Background(), pdfAttachment(t, "invoice.pdf", "Rechnung Nr. 42"))
	require.Error(t, err)
	assert.Empty(t, archiver.calls)
}

func TestProcessAttachmentArchiveFailureStopsNotifications(t *testing.T) {
	ctx := context.Background()
	registry := newTestRegistry(t)
	require.NoError(t, registry.AddOrUpdate(ctx, subscription.Meta{
		Email: "sun@example.ch", Weekdays: []int{6}, ImmediateNotifications: true,
	}))

	notifier := &fakeNotifier{}
	proc := newTestProcessor(t, &fakeArchiver{err: assert.AnError}, registry, notifier)

	_, err := proc.ProcessAttachment(ctx, pdfAttachment(t, "booking.pdf", confirmationText))
	require.Error(t, err)
	assert.Empty(t, notifier.calls)
}

func TestProcessMessageIsolatesAttachmentFailures(t *testing.T) {
	archiver := &fakeArchiver{}
	proc := newTestProcessor(t, archiver, newTestRegistry(t), &fakeNotifier{})

	msg := &fakeMessage{
		subject: "WG: Reservation",
		attachments: []mailbox.Attachment{
			pdfAttachment(t, "good.pdf", confirmationText),
			{Name: "notes.txt", Content: []byte("plain text")},
			pdfAttachment(t, "bad.pdf", "Rechnung Nr. 42"),
		},
	}

	results, stats, err := proc.ProcessMessage(context.Background(), msg)
	require.Error(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, uint32(3), stats.Attachments)
	assert.Equal(t, uint32(1), stats.Processed)
	assert.Equal(t, uint32(1), stats.Skipped)
	assert.Equal(t, uint32(1), stats.Failed)

	assert.Equal(t, 1, results[0].Records)
	assert.True(t, results[1].Skipped)
	assert.NotEmpty(t, results[2].Err)

	// The good attachment was archived despite its failing sibling.
	require.Len(t, archiver.calls, 2)
	assert.True(t, strings.HasSuffix(archiver.calls[0].name, "_100.pdf"))
}

func TestProcessMessageAllCleanNoError(t *testing.T) {
	proc := newTestProcessor(t, &fakeArchiver{}, newTestRegistry(t), &fakeNotifier{})

	msg := &fakeMessage{
		subject:     "WG: Reservation",
		attachments: []mailbox.Attachment{pdfAttachment(t, "good.pdf", confirmationText)},
	}
	_, stats, err := proc.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), stats.Processed)
}
