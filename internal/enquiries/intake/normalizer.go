// Package intake turns provider webhook bodies into canonical inbound messages.
package intake

import (
	"encoding/json"
	"strings"

	"enquiry_intake_backend/platform/phone"
)

// Webhook types the provider sends for chat content.
const (
	TypeIncomingMessage = "incomingMessageReceived"
	TypeOutgoingMessage = "outgoingMessageReceived"
)

// Verdict is the outcome of normalising one webhook body.
type Verdict int

const (
	VerdictMessage Verdict = iota
	VerdictNotAMessage
	VerdictMalformed
	// VerdictNoText is a direct-format message whose text is empty.
	VerdictNoText
)

func (v Verdict) String() string {
	switch v {
	case VerdictMessage:
		return "message"
	case VerdictNotAMessage:
		return "not_a_message"
	case VerdictNoText:
		return "no_text"
	default:
		return "malformed"
	}
}

// ShapeName identifies which payload layout produced a message.
type ShapeName string

const (
	ShapeDirect              ShapeName = "direct"
	ShapeIncomingMessageData ShapeName = "incoming_message_data"
	ShapeIncomingMessage     ShapeName = "incoming_message"
	ShapeIncomingText        ShapeName = "incoming_text"
	ShapeOutgoingEcho        ShapeName = "outgoing_echo"
)

// InboundMessage is the canonical form of a chat message webhook.
type InboundMessage struct {
	WebhookType       string
	ChatID            string
	MobileNumber      string
	MessageText       string
	SenderDisplayName string
	ProviderMessageID string
	HasContent        bool
	Shape             ShapeName
}

// DisplayNameFor returns the sender name, or a placeholder built from the number.
func DisplayNameFor(msg InboundMessage) string {
	if msg.SenderDisplayName != "" {
		return msg.SenderDisplayName
	}
	return "WhatsApp User " + msg.MobileNumber
}

type payload map[string]any

type shape struct {
	name    ShapeName
	matches func(p payload) bool
	extract func(p payload) InboundMessage

	// carriesMessage marks layouts that count as message data even without text.
	carriesMessage bool
}

// shapes is evaluated in order; the first extractor yielding text wins.
var shapes = []shape{
	{
		name:           ShapeDirect,
		carriesMessage: true,
		matches: func(p payload) bool {
			return p.has("message") && p.has("chatId") && p.str("typeWebhook") == ""
		},
		extract: func(p payload) InboundMessage {
			msg := p.obj("message")
			return InboundMessage{
				ChatID:            p.str("chatId"),
				MessageText:       messageText(p["message"]),
				ProviderMessageID: firstNonEmpty(msg.str("idMessage"), p.str("idMessage")),
			}
		},
	},
	{
		name: ShapeIncomingMessageData,
		matches: func(p payload) bool {
			return p.str("typeWebhook") == TypeIncomingMessage && p.has("messageData")
		},
		extract: func(p payload) InboundMessage {
			data := p.obj("messageData")
			return InboundMessage{
				ChatID: p.obj("senderData").str("chatId"),
				MessageText: firstNonEmpty(
					data.obj("textMessage").str("text"),
					data.obj("textMessageData").str("textMessage"),
					data.obj("extendedTextMessageData").str("text"),
					data.str("text"),
				),
				ProviderMessageID: firstNonEmpty(p.str("idMessage"), data.str("idMessage")),
			}
		},
	},
	{
		name: ShapeIncomingMessage,
		matches: func(p payload) bool {
			return p.str("typeWebhook") == TypeIncomingMessage && p.has("message")
		},
		extract: func(p payload) InboundMessage {
			msg := p.obj("message")
			return InboundMessage{
				ChatID:            p.obj("senderData").str("chatId"),
				MessageText:       messageText(p["message"]),
				ProviderMessageID: firstNonEmpty(msg.str("idMessage"), msg.str("id"), p.str("idMessage")),
			}
		},
	},
	{
		name: ShapeIncomingText,
		matches: func(p payload) bool {
			return p.str("typeWebhook") == TypeIncomingMessage && p.has("text")
		},
		extract: func(p payload) InboundMessage {
			return InboundMessage{
				ChatID:            p.obj("senderData").str("chatId"),
				MessageText:       p.str("text"),
				ProviderMessageID: p.str("idMessage"),
			}
		},
	},
	{
		name: ShapeOutgoingEcho,
		matches: func(p payload) bool {
			return p.str("typeWebhook") == TypeOutgoingMessage && p.has("messageData")
		},
		extract: func(p payload) InboundMessage {
			data := p.obj("messageData")
			return InboundMessage{
				ChatID: p.obj("senderData").str("chatId"),
				MessageText: firstNonEmpty(
					data.obj("textMessageData").str("textMessage"),
					data.obj("extendedTextMessageData").str("text"),
				),
				ProviderMessageID: firstNonEmpty(p.str("idMessage"), data.str("idMessage")),
			}
		},
	},
}

// Normalize parses a raw webhook body. Bodies that are not a JSON object are
// VerdictMalformed.
func Normalize(raw []byte) (InboundMessage, Verdict) {
	var p map[string]any
	if err := json.Unmarshal(raw, &p); err != nil || p == nil {
		return InboundMessage{}, VerdictMalformed
	}
	return NormalizeMap(p)
}

// NormalizeMap is Normalize for an already decoded body.
func NormalizeMap(raw map[string]any) (InboundMessage, Verdict) {
	p := payload(raw)
	webhookType := p.str("typeWebhook")
	if webhookType != "" && webhookType != TypeIncomingMessage && webhookType != TypeOutgoingMessage {
		return InboundMessage{WebhookType: webhookType}, VerdictNotAMessage
	}

	verdict := VerdictNotAMessage
	for _, s := range shapes {
		if !s.matches(p) {
			continue
		}
		msg := s.extract(p)
		msg.MessageText = strings.TrimSpace(msg.MessageText)
		if msg.MessageText == "" {
			if s.carriesMessage {
				verdict = VerdictNoText
			}
			continue
		}
		msg.WebhookType = webhookType
		msg.Shape = s.name
		msg.HasContent = true
		msg.MobileNumber = phone.FromChatID(msg.ChatID)
		msg.SenderDisplayName = senderName(p, s.name == ShapeOutgoingEcho)
		return msg, VerdictMessage
	}

	return InboundMessage{WebhookType: webhookType}, verdict
}

var senderNameKeys = []string{"senderName", "chatName", "pushName", "notifyName"}

func senderName(p payload, echo bool) string {
	sender := p.obj("senderData")
	candidates := make([]string, 0, 2*len(senderNameKeys)+2)
	for _, key := range senderNameKeys {
		candidates = append(candidates, sender.str(key))
	}
	for _, key := range senderNameKeys {
		candidates = append(candidates, p.str(key))
	}
	if echo {
		candidates = append(candidates,
			sender.str("senderContactName"),
			strings.TrimSuffix(sender.str("sender"), "@c.us"),
		)
	}

	for _, c := range candidates {
		if usableName(c) {
			return strings.TrimSpace(c)
		}
	}
	return ""
}

func usableName(s string) bool {
	trimmed := strings.TrimSpace(s)
	return trimmed != "" && !strings.EqualFold(trimmed, "null")
}

// messageText reads either a plain string message or message.textMessage.text.
func messageText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	msg := asPayload(v)
	return firstNonEmpty(
		msg.obj("textMessage").str("text"),
		msg.obj("extendedTextMessage").str("text"),
		msg.str("text"),
	)
}

func (p payload) has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p payload) str(key string) string {
	if p == nil {
		return ""
	}
	s, _ := p[key].(string)
	return s
}

func (p payload) obj(key string) payload {
	if p == nil {
		return nil
	}
	return asPayload(p[key])
}

func asPayload(v any) payload {
	m, _ := v.(map[string]any)
	return payload(m)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
