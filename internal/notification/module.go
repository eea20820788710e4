// Package notification delivers the side effects of enquiry events: the
// customer WhatsApp template after a comment change and the ops mailbox email.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"enquiry_intake_backend/internal/email"
	"enquiry_intake_backend/internal/enquiries/domain"
	"enquiry_intake_backend/internal/events"
	"enquiry_intake_backend/internal/whatsapp"
	"enquiry_intake_backend/platform/config"
	"enquiry_intake_backend/platform/logger"
	"enquiry_intake_backend/platform/phone"
)

// WhatsAppSender sends one text message to a provider chat id.
type WhatsAppSender interface {
	Send(ctx context.Context, destination, text string) whatsapp.Result
}

// TaskQueue defers comment notifications to the scheduler worker.
type TaskQueue interface {
	EnqueueCommentNotification(ctx context.Context, notification events.EnquiryCommentChanged) error
}

const purposeCommentTemplate = "comment_template"

// errDispatchRetryable marks a WhatsApp send that failed before reaching the provider.
var errDispatchRetryable = errors.New("whatsapp dispatch failed on the network")

type Module struct {
	sender   email.Sender
	whatsapp WhatsAppSender
	queue    TaskQueue
	cfg      config.SMTPConfig
	log      *logger.Logger
}

func New(sender email.Sender, cfg config.SMTPConfig, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{
		sender: sender,
		cfg:    cfg,
		log:    log,
	}
}

// SetWhatsAppSender sets the gateway used for customer templates. An
// unconfigured *whatsapp.Client (nil) leaves the module without a gateway.
func (m *Module) SetWhatsAppSender(sender WhatsAppSender) {
	if c, ok := sender.(*whatsapp.Client); ok && c == nil {
		sender = nil
	}
	m.whatsapp = sender
}

// SetTaskQueue routes comment notifications through the scheduler. Without a
// queue they are delivered in-process.
func (m *Module) SetTaskQueue(queue TaskQueue) { m.queue = queue }

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	// Enquiry events
	bus.Subscribe(events.EnquiryCreated{}.EventName(), m)
	bus.Subscribe(events.EnquiryCommentChanged{}.EventName(), m)
	bus.Subscribe(events.EnquiryStaffAssigned{}.EventName(), m)

	// Scheduler events
	bus.Subscribe(events.CommentNotificationDue{}.EventName(), m)

	// Webhook events
	bus.Subscribe(events.WebhookReceived{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.EnquiryCreated:
		m.log.Info("enquiry created", "enquiryId", e.EnquiryID, "source", e.Source, "staff", e.Staff)
		return nil
	case events.EnquiryCommentChanged:
		return m.handleCommentChanged(ctx, e)
	case events.CommentNotificationDue:
		return m.deliverCommentNotification(ctx, e.Notification)
	case events.EnquiryStaffAssigned:
		m.log.Info("enquiry staff assigned",
			"enquiryId", e.EnquiryID,
			"staff", e.Staff,
			"previousStaff", e.PreviousStaff,
			"assignedBy", e.AssignedBy,
			"messagesSent", e.MessagesSent,
		)
		return nil
	case events.WebhookReceived:
		m.log.Debug("whatsapp webhook processed", "typeWebhook", e.WebhookType, "outcome", e.Outcome, "mobile", e.Mobile)
		return nil
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleCommentChanged(ctx context.Context, e events.EnquiryCommentChanged) error {
	if m.queue != nil {
		err := m.queue.EnqueueCommentNotification(ctx, e)
		if err == nil {
			m.log.Info("comment notification queued", "enquiryId", e.EnquiryID, "template", e.TemplateKey)
			return nil
		}
		m.log.Warn("comment notification enqueue failed, delivering inline", "enquiryId", e.EnquiryID, "error", err)
	}
	return m.deliverCommentNotification(ctx, e)
}

// deliverCommentNotification sends the template for the new label to the
// customer, then reports the change and the send outcome to the ops mailbox.
// Only a network failure of the WhatsApp send is returned, so a queued task is
// retried without resending messages the provider already accepted.
func (m *Module) deliverCommentNotification(ctx context.Context, e events.EnquiryCommentChanged) error {
	key := domain.TemplateKey(e.TemplateKey)
	if !key.Known() {
		key = domain.ResolveTemplate(e.Comment)
	}

	update := email.CommentUpdate{
		EnquiryID:      e.EnquiryID.String(),
		CustomerName:   e.DisplayName,
		MobileNumber:   e.MobileNumber,
		BusinessNature: e.BusinessNature,
		PreviousLabel:  e.PreviousLabel,
		Comment:        e.Comment,
		TemplateKey:    string(key),
		ChangedBy:      e.ChangedBy,
	}

	var dispatchErr error
	destination := phone.ToChatID(e.MobileNumber)
	switch {
	case m.whatsapp == nil:
		update.WhatsAppError = "WhatsApp service not configured"
	case destination == "":
		update.WhatsAppError = "No mobile number on enquiry"
	default:
		text := domain.Render(key, e.DisplayName, e.BusinessNature)
		res := m.whatsapp.Send(ctx, destination, text)
		update.WhatsAppSent = res.Success
		if !res.Success {
			update.WhatsAppError = whatsapp.FriendlyError(res)
			m.log.DispatchFailed(destination, purposeCommentTemplate, res.StatusCode, res.QuotaExceeded, res.Error)
			if res.NetworkError {
				dispatchErr = fmt.Errorf("%w: %s", errDispatchRetryable, res.Error)
			}
		}
	}

	if dispatchErr == nil {
		m.emailOps(ctx, update)
	}
	return dispatchErr
}

func (m *Module) emailOps(ctx context.Context, update email.CommentUpdate) {
	recipients := m.recipients()
	if len(recipients) == 0 {
		return
	}
	if err := m.sender.SendCommentUpdateEmail(ctx, recipients, update); err != nil {
		m.log.Warn("comment update email failed", "enquiryId", update.EnquiryID, "error", err)
	}
}

func (m *Module) recipients() []string {
	if m.cfg == nil {
		return nil
	}
	out := make([]string, 0, len(m.cfg.GetNotifyEmails()))
	for _, addr := range m.cfg.GetNotifyEmails() {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Compile-time check that Module implements events.Handler
var _ events.Handler = (*Module)(nil)
