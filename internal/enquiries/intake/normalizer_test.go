package intake

import "testing"

const (
	wantChatID = "919876543210@c.us"
	wantMobile = "919876543210"
	wantText   = "Hi I am interested!"
	wantSender = "John Doe"
)

func TestNormalizeKnownShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		shape ShapeName
		id    string
	}{
		{
			name:  "direct",
			body:  `{"chatId":"919876543210@c.us","senderName":"John Doe","message":{"idMessage":"M1","textMessage":{"text":"Hi I am interested!"}}}`,
			shape: ShapeDirect,
			id:    "M1",
		},
		{
			name:  "incoming with messageData",
			body:  `{"typeWebhook":"incomingMessageReceived","idMessage":"M2","senderData":{"chatId":"919876543210@c.us","senderName":"John Doe"},"messageData":{"typeMessage":"textMessage","textMessageData":{"textMessage":"Hi I am interested!"}}}`,
			shape: ShapeIncomingMessageData,
			id:    "M2",
		},
		{
			name:  "incoming with extended text",
			body:  `{"typeWebhook":"incomingMessageReceived","idMessage":"M3","senderData":{"chatId":"919876543210@c.us","senderName":"John Doe"},"messageData":{"extendedTextMessageData":{"text":"Hi I am interested!"}}}`,
			shape: ShapeIncomingMessageData,
			id:    "M3",
		},
		{
			name:  "incoming with top-level message",
			body:  `{"typeWebhook":"incomingMessageReceived","senderData":{"chatId":"919876543210@c.us","senderName":"John Doe"},"message":{"id":"M4","textMessage":{"text":"Hi I am interested!"}}}`,
			shape: ShapeIncomingMessage,
			id:    "M4",
		},
		{
			name:  "incoming with top-level text",
			body:  `{"typeWebhook":"incomingMessageReceived","idMessage":"M5","senderData":{"chatId":"919876543210@c.us","senderName":"John Doe"},"text":"Hi I am interested!"}`,
			shape: ShapeIncomingText,
			id:    "M5",
		},
		{
			name:  "outgoing echo",
			body:  `{"typeWebhook":"outgoingMessageReceived","idMessage":"M6","senderData":{"chatId":"919876543210@c.us","senderName":"John Doe"},"messageData":{"textMessageData":{"textMessage":"Hi I am interested!"}}}`,
			shape: ShapeOutgoingEcho,
			id:    "M6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, verdict := Normalize([]byte(tt.body))
			if verdict != VerdictMessage {
				t.Fatalf("verdict = %s, want message", verdict)
			}
			if msg.ChatID != wantChatID || msg.MobileNumber != wantMobile || msg.MessageText != wantText || msg.SenderDisplayName != wantSender {
				t.Fatalf("unexpected message %+v", msg)
			}
			if msg.Shape != tt.shape {
				t.Fatalf("shape = %s, want %s", msg.Shape, tt.shape)
			}
			if msg.ProviderMessageID != tt.id {
				t.Fatalf("id = %q, want %q", msg.ProviderMessageID, tt.id)
			}
			if !msg.HasContent {
				t.Fatal("expected HasContent")
			}
		})
	}
}

func TestNormalizeSpecScenario(t *testing.T) {
	body := `{"typeWebhook":"incomingMessageReceived","idMessage":"ABC","senderData":{"chatId":"919876543210@c.us","senderName":"John Doe"},"messageData":{"textMessage":{"text":"Hi I am interested!"}}}`
	msg, verdict := Normalize([]byte(body))
	if verdict != VerdictMessage || msg.MobileNumber != wantMobile || DisplayNameFor(msg) != wantSender {
		t.Fatalf("unexpected result %s %+v", verdict, msg)
	}
}

func TestNormalizeNonMessages(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		verdict Verdict
		typ     string
	}{
		{"state change", `{"typeWebhook":"stateInstanceChanged","stateInstance":"authorized"}`, VerdictNotAMessage, "stateInstanceChanged"},
		{"status with message key", `{"typeWebhook":"outgoingMessageStatus","message":{"textMessage":{"text":"interested"}},"chatId":"1@c.us"}`, VerdictNotAMessage, "outgoingMessageStatus"},
		{"incoming without text", `{"typeWebhook":"incomingMessageReceived","messageData":{"typeMessage":"imageMessage"}}`, VerdictNotAMessage, "incomingMessageReceived"},
		{"no markers", `{"hello":"world"}`, VerdictNotAMessage, ""},
		{"direct without text", `{"chatId":"919876543210@c.us","message":{"idMessage":"D1"}}`, VerdictNoText, ""},
		{"malformed", `{"typeWebhook":`, VerdictMalformed, ""},
		{"array", `[1,2]`, VerdictMalformed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, verdict := Normalize([]byte(tt.body))
			if verdict != tt.verdict {
				t.Fatalf("verdict = %s, want %s", verdict, tt.verdict)
			}
			if msg.HasContent {
				t.Fatal("non-messages carry no content")
			}
			if msg.WebhookType != tt.typ {
				t.Fatalf("webhook type = %q, want %q", msg.WebhookType, tt.typ)
			}
		})
	}
}

func TestShapeFallthroughWhenFirstMatchHasNoText(t *testing.T) {
	// messageData carries no text but a top-level text is present.
	body := `{"typeWebhook":"incomingMessageReceived","idMessage":"X","messageData":{"typeMessage":"reactionMessage"},"senderData":{"chatId":"15551234567@c.us"},"text":"more details"}`
	msg, verdict := Normalize([]byte(body))
	if verdict != VerdictMessage || msg.Shape != ShapeIncomingText || msg.MessageText != "more details" {
		t.Fatalf("unexpected result %s %+v", verdict, msg)
	}
}

func TestSenderNameFallback(t *testing.T) {
	body := map[string]any{
		"typeWebhook": "incomingMessageReceived",
		"senderData": map[string]any{
			"chatId":     "919876543210@c.us",
			"senderName": "",
			"chatName":   "",
			"pushName":   "X",
			"notifyName": "Y",
		},
		"text": "hello",
	}
	msg, _ := NormalizeMap(body)
	if msg.SenderDisplayName != "X" {
		t.Fatalf("sender = %q, want X", msg.SenderDisplayName)
	}

	body["senderData"] = map[string]any{"chatId": "919876543210@c.us", "senderName": "null"}
	msg, _ = NormalizeMap(body)
	if msg.SenderDisplayName != "" {
		t.Fatalf("the literal null must be skipped, got %q", msg.SenderDisplayName)
	}
	if DisplayNameFor(msg) != "WhatsApp User 919876543210" {
		t.Fatalf("placeholder = %q", DisplayNameFor(msg))
	}
}

func TestEchoSenderFallsBackToSenderID(t *testing.T) {
	body := `{"typeWebhook":"outgoingMessageReceived","senderData":{"chatId":"919876543210@c.us","sender":"918106811285@c.us"},"messageData":{"textMessageData":{"textMessage":"test"}}}`
	msg, verdict := Normalize([]byte(body))
	if verdict != VerdictMessage || msg.SenderDisplayName != "918106811285" {
		t.Fatalf("unexpected result %s %+v", verdict, msg)
	}
}
