// Package mailbox narrows the mail client down to the capabilities the
// pipeline needs. The concrete provider adapter lives outside the core.
package mailbox

import "context"

// Attachment is one downloaded message attachment.
type Attachment struct {
	Name    string
	Content []byte
}

// Message is an inbound message whose read state the caller controls. An
// ingestion failure leaves the message unread so the next poll retries it.
type Message interface {
	Subject() string
	Sender() string
	Body() string
	Attachments(ctx context.Context) ([]Attachment, error)
	MarkRead(ctx context.Context) error
	MarkUnread(ctx context.Context) error
}

// Outgoing is a message to be sent.
type Outgoing struct {
	Subject         string
	Body            string
	ReplyTo         string
	Recipients      []string
	BCC             []string
	AttachmentPaths []string
}

// Sender sends new messages.
type Sender interface {
	Send(ctx context.Context, msg Outgoing) error
}

// Mailbox fetches unread messages, ordered by receipt time descending.
type Mailbox interface {
	Sender
	UnreadMessages(ctx context.Context) ([]Message, error)
}
