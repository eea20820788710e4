// Package email delivers operational notifications to the back-office mailbox.
package email

import (
	"context"

	"enquiry_intake_backend/platform/config"
)

// CommentUpdate describes an enquiry whose status label changed.
type CommentUpdate struct {
	EnquiryID      string
	CustomerName   string
	MobileNumber   string
	BusinessNature string
	PreviousLabel  string
	Comment        string
	TemplateKey    string
	ChangedBy      string
	WhatsAppSent   bool
	WhatsAppError  string
}

type Sender interface {
	SendCommentUpdateEmail(ctx context.Context, toEmails []string, update CommentUpdate) error
}

// NoopSender drops mail when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendCommentUpdateEmail(context.Context, []string, CommentUpdate) error { return nil }

// NewSender returns an SMTP sender, or a NoopSender when SMTP is not configured.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.IsSMTPEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(cfg)
}
