package email

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no transactional email credentials are
// present. Callers surface this as a service-unavailable condition rather
// than a hard failure.
var ErrNotConfigured = errors.New("email service not configured")

type Attachment struct {
	Filename string
	Content  []byte
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
	Configured() bool
}
