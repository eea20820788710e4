package service

import (
	"bytes"
	"context"
	"fmt"

	"enquiry_intake_backend/internal/enquiries/domain"
	"enquiry_intake_backend/internal/enquiries/intake"
	"enquiry_intake_backend/internal/enquiries/transport"
	"enquiry_intake_backend/internal/events"
	"enquiry_intake_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	msgEmptyData         = "Empty data received"
	msgMalformed         = "Malformed payload ignored"
	msgEventIgnoredFmt   = "Webhook event %s received and ignored"
	msgNoMessageText     = "No message text found"
	msgNoMessageData     = "No message data found"
	msgReplyProcessed    = "Reply option processed"
	msgEnquiryExists     = "Enquiry already exists"
	msgEnquiryCreated    = "WhatsApp enquiry created successfully"
	msgNotProcessed      = "Message received but not processed as enquiry"
	msgEnquiryFailed     = "Failed to create enquiry"
	webhookCommentLabel  = "New Enquiry - Interested"
	unknownSenderName    = "Not available (Free plan)"
	webhookCommentPrefix = "Received via WhatsApp: "
)

// Webhook outcomes published on the bus.
const (
	OutcomeIgnored   = "ignored"
	OutcomeReplied   = "replied"
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// ProcessWebhook runs one provider delivery through intake. It never returns
// an error: every outcome, including storage failures, is described by the
// result so the endpoint can always answer 200.
func (s *Service) ProcessWebhook(ctx context.Context, raw []byte) transport.WebhookResult {
	if len(bytes.TrimSpace(raw)) == 0 {
		s.log.WebhookIgnored("empty body", "")
		return s.finish(ctx, "", "", OutcomeIgnored, transport.WebhookResult{Success: true, Message: msgEmptyData})
	}

	msg, verdict := intake.Normalize(raw)
	switch verdict {
	case intake.VerdictMalformed:
		s.log.WebhookIgnored("malformed body", "")
		return s.finish(ctx, "", "", OutcomeIgnored, transport.WebhookResult{Success: true, Message: msgMalformed})
	case intake.VerdictNotAMessage:
		if msg.WebhookType != "" && msg.WebhookType != intake.TypeIncomingMessage && msg.WebhookType != intake.TypeOutgoingMessage {
			s.log.WebhookIgnored("not a chat message", msg.WebhookType)
			return s.finish(ctx, msg.WebhookType, "", OutcomeIgnored, transport.WebhookResult{
				Success: true,
				Message: fmt.Sprintf(msgEventIgnoredFmt, msg.WebhookType),
			})
		}
		s.log.WebhookIgnored("no message data", msg.WebhookType)
		return s.finish(ctx, msg.WebhookType, "", OutcomeIgnored, transport.WebhookResult{Success: true, Message: msgNoMessageData})
	case intake.VerdictNoText:
		s.log.WebhookIgnored("no message text", msg.WebhookType)
		return s.finish(ctx, msg.WebhookType, "", OutcomeIgnored, transport.WebhookResult{Success: true, Message: msgNoMessageText})
	}

	if msg.MobileNumber == "" {
		s.log.WebhookIgnored("no sender number", msg.WebhookType)
		return s.finish(ctx, msg.WebhookType, "", OutcomeIgnored, transport.WebhookResult{Success: true, Message: msgNoMessageData})
	}

	intent := domain.Classify(msg.MessageText)
	s.log.Info("whatsapp message classified", "mobile", msg.MobileNumber, "intent", intent, "shape", msg.Shape)

	switch {
	case intent.IsReply():
		return s.replyToOption(ctx, msg, intent)
	case intent == domain.IntentInterested:
		return s.createFromWebhook(ctx, msg)
	default:
		return s.finish(ctx, msg.WebhookType, msg.MobileNumber, OutcomeIgnored, transport.WebhookResult{
			Success:      true,
			Message:      msgNotProcessed,
			MobileNumber: msg.MobileNumber,
			Intent:       string(intent),
		})
	}
}

func (s *Service) replyToOption(ctx context.Context, msg intake.InboundMessage, intent domain.Intent) transport.WebhookResult {
	text, _ := domain.ReplyText(intent)
	res := s.gateway.Send(ctx, chatDestination(msg), text)

	result := transport.WebhookResult{
		Success:      true,
		Message:      msgReplyProcessed,
		MobileNumber: msg.MobileNumber,
		Intent:       string(intent),
	}
	result.ApplyResult(res)
	return s.finish(ctx, msg.WebhookType, msg.MobileNumber, OutcomeReplied, result)
}

func (s *Service) createFromWebhook(ctx context.Context, msg intake.InboundMessage) transport.WebhookResult {
	if existingID, dup, err := s.guard.IsDuplicate(ctx, msg.MobileNumber, msg.ProviderMessageID); err != nil {
		s.log.DatabaseError("dedup lookup", err)
		return s.finish(ctx, msg.WebhookType, msg.MobileNumber, OutcomeFailed, transport.WebhookResult{
			Message: msgEnquiryFailed,
			Error:   err.Error(),
		})
	} else if dup {
		return s.duplicate(ctx, msg, existingID)
	}

	stored, inserted, err := s.repo.InsertIfAbsent(ctx, s.newWebhookEnquiry(msg))
	if err != nil {
		s.log.DatabaseError("insert webhook enquiry", err)
		return s.finish(ctx, msg.WebhookType, msg.MobileNumber, OutcomeFailed, transport.WebhookResult{
			Message: msgEnquiryFailed,
			Error:   err.Error(),
		})
	}
	if !inserted {
		s.guard.Remember(ctx, msg.MobileNumber, msg.ProviderMessageID, stored.ID)
		return s.duplicate(ctx, msg, stored.ID)
	}

	s.guard.Remember(ctx, msg.MobileNumber, msg.ProviderMessageID, stored.ID)
	s.log.Info("whatsapp enquiry created", "enquiryId", stored.ID, "mobile", stored.MobileNumber, "shape", msg.Shape)
	s.publishCreated(ctx, stored)

	welcome := domain.Render(domain.TemplateNewEnquiry, stored.DisplayName, stored.BusinessNatureOr(""))
	res := s.gateway.Send(ctx, chatDestination(msg), welcome)

	id := stored.ID
	result := transport.WebhookResult{
		Success:      true,
		Message:      msgEnquiryCreated,
		EnquiryID:    &id,
		CustomerName: stored.DisplayName,
		MobileNumber: stored.MobileNumber,
		WhatsAppName: msg.SenderDisplayName,
		Intent:       string(domain.IntentInterested),
	}
	result.ApplyResult(res)
	return s.finish(ctx, msg.WebhookType, msg.MobileNumber, OutcomeCreated, result)
}

func (s *Service) duplicate(ctx context.Context, msg intake.InboundMessage, existingID uuid.UUID) transport.WebhookResult {
	s.log.Info("duplicate whatsapp delivery", "mobile", msg.MobileNumber, "enquiryId", existingID)
	result := transport.WebhookResult{
		Success:      true,
		Message:      msgEnquiryExists,
		EnquiryID:    &existingID,
		MobileNumber: msg.MobileNumber,
	}
	return s.finish(ctx, msg.WebhookType, msg.MobileNumber, OutcomeDuplicate, result)
}

func (s *Service) newWebhookEnquiry(msg intake.InboundMessage) domain.Enquiry {
	now := s.now().UTC()
	senderName := unknownSenderName
	var userName *string
	if msg.SenderDisplayName != "" {
		senderName = msg.SenderDisplayName
		name := msg.SenderDisplayName
		userName = &name
	}
	status := domain.WhatsAppStatusReceived
	comment := webhookCommentLabel
	additional := webhookCommentPrefix + `"` + msg.MessageText + `"`
	text := msg.MessageText

	return domain.Enquiry{
		DisplayName:         intake.DisplayNameFor(msg),
		UserName:            userName,
		MobileNumber:        msg.MobileNumber,
		GST:                 domain.GSTUnset,
		Source:              domain.SourceWhatsAppWebhook,
		WhatsAppChatID:      optional(msg.ChatID),
		WhatsAppMessageID:   optional(msg.ProviderMessageID),
		WhatsAppSenderName:  &senderName,
		WhatsAppMessageText: &text,
		WhatsAppStatus:      &status,
		Staff:               domain.System(domain.SystemWhatsAppBot),
		Comments:            &comment,
		AdditionalComments:  &additional,
		Date:                now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// finish publishes the intake outcome and hands the result back.
func (s *Service) finish(ctx context.Context, webhookType, mobile, outcome string, result transport.WebhookResult) transport.WebhookResult {
	s.bus.Publish(ctx, events.WebhookReceived{
		BaseEvent:   events.NewBaseEvent(),
		WebhookType: webhookType,
		Outcome:     outcome,
		Mobile:      mobile,
	})
	return result
}

func (s *Service) publishCreated(ctx context.Context, e domain.Enquiry) {
	s.bus.Publish(ctx, events.EnquiryCreated{
		BaseEvent:    events.NewBaseEvent(),
		EnquiryID:    e.ID,
		DisplayName:  e.DisplayName,
		MobileNumber: e.MobileNumber,
		Source:       string(e.Source),
		Staff:        e.Staff.String(),
	})
}

func chatDestination(msg intake.InboundMessage) string {
	if msg.ChatID != "" {
		return msg.ChatID
	}
	return phone.ToChatID(msg.MobileNumber)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
