package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"enquiry_intake_backend/internal/enquiries/domain"
	"enquiry_intake_backend/internal/enquiries/repository"
	"enquiry_intake_backend/internal/events"
	"enquiry_intake_backend/internal/whatsapp"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const interestedDelivery = `{"typeWebhook":"incomingMessageReceived","idMessage":"ABC","senderData":{"chatId":"919876543210@c.us","senderName":"John Doe"},"messageData":{"textMessage":{"text":"Hi I am interested!"}}}`

func TestProcessWebhookCreatesEnquiryOnce(t *testing.T) {
	repo := newFakeRepo()
	gw := &fakeGateway{}
	bus := &recordingBus{}
	svc := newTestService(repo, gw, bus, nil)

	first := svc.ProcessWebhook(context.Background(), []byte(interestedDelivery))
	if !first.Success || first.Message != msgEnquiryCreated || first.EnquiryID == nil {
		t.Fatalf("unexpected first result %+v", first)
	}
	if first.CustomerName != "John Doe" || first.MobileNumber != "919876543210" || first.WhatsAppName != "John Doe" {
		t.Fatalf("unexpected enquiry fields %+v", first)
	}

	second := svc.ProcessWebhook(context.Background(), []byte(interestedDelivery))
	if second.Message != msgEnquiryExists || second.EnquiryID == nil || *second.EnquiryID != *first.EnquiryID {
		t.Fatalf("redelivery must report the existing enquiry, got %+v", second)
	}

	if repo.count() != 1 {
		t.Fatalf("expected 1 stored enquiry, got %d", repo.count())
	}
	if got := len(gw.messages()); got != 1 {
		t.Fatalf("expected only the welcome message, got %d sends", got)
	}
	if got := len(bus.named(events.EnquiryCreated{}.EventName())); got != 1 {
		t.Fatalf("expected 1 EnquiryCreated, got %d", got)
	}

	stored, _ := repo.FindByID(context.Background(), *first.EnquiryID)
	if stored.Source != domain.SourceWhatsAppWebhook || stored.Staff.String() != domain.SystemWhatsAppBot {
		t.Fatalf("unexpected provenance %+v", stored)
	}
	if stored.CommentLabel() != webhookCommentLabel {
		t.Fatalf("unexpected comment %q", stored.CommentLabel())
	}
	if stored.AdditionalComments == nil || *stored.AdditionalComments != `Received via WhatsApp: "Hi I am interested!"` {
		t.Fatalf("unexpected additional comments %v", stored.AdditionalComments)
	}
	if stored.WhatsAppStatus == nil || *stored.WhatsAppStatus != domain.WhatsAppStatusReceived {
		t.Fatal("webhook enquiries are marked received")
	}
}

func TestProcessWebhookUsesDeliveryMarker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := repository.NewDeliveryCache(client, time.Hour)

	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{}, &recordingBus{}, cache)

	first := svc.ProcessWebhook(context.Background(), []byte(interestedDelivery))
	if first.EnquiryID == nil {
		t.Fatalf("expected an enquiry, got %+v", first)
	}
	if !mr.Exists("webhook:delivery:919876543210:ABC") {
		t.Fatal("expected the delivery marker to be stored")
	}

	// The marker answers without touching the table.
	repo.dedupErr = errors.New("database down")
	second := svc.ProcessWebhook(context.Background(), []byte(interestedDelivery))
	if second.Message != msgEnquiryExists || *second.EnquiryID != *first.EnquiryID {
		t.Fatalf("expected marker hit, got %+v", second)
	}
}

func TestDeleteDropsDeliveryMarker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{}, &recordingBus{}, repository.NewDeliveryCache(client, time.Hour))
	ctx := context.Background()

	first := svc.ProcessWebhook(ctx, []byte(interestedDelivery))
	if first.EnquiryID == nil {
		t.Fatalf("expected an enquiry, got %+v", first)
	}
	if err := svc.Delete(ctx, *first.EnquiryID, "priya"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("webhook:delivery:919876543210:ABC") {
		t.Fatal("the marker of a deleted enquiry must be dropped")
	}

	again := svc.ProcessWebhook(ctx, []byte(interestedDelivery))
	if again.Message != msgEnquiryCreated || again.EnquiryID == nil || *again.EnquiryID == *first.EnquiryID {
		t.Fatalf("a redelivery after delete creates a new enquiry, got %+v", again)
	}
	if repo.count() != 1 {
		t.Fatalf("expected 1 stored enquiry, got %d", repo.count())
	}
}

func TestProcessWebhookOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
		sends   int
	}{
		{"empty body", "   ", msgEmptyData, 0},
		{"malformed", `{"typeWebhook":`, msgMalformed, 0},
		{"state change", `{"typeWebhook":"stateInstanceChanged","stateInstance":"authorized"}`, "Webhook event stateInstanceChanged received and ignored", 0},
		{"image only", `{"typeWebhook":"incomingMessageReceived","messageData":{"typeMessage":"imageMessage"}}`, msgNoMessageData, 0},
		{"direct without text", `{"chatId":"919876543210@c.us","message":{"idMessage":"D1"}}`, msgNoMessageText, 0},
		{"text without sender", `{"typeWebhook":"incomingMessageReceived","messageData":{"textMessage":{"text":"interested"}}}`, msgNoMessageData, 0},
		{"reply keyword", `{"typeWebhook":"incomingMessageReceived","idMessage":"R1","senderData":{"chatId":"919876543210@c.us"},"messageData":{"textMessage":{"text":" Get Loan "}}}`, msgReplyProcessed, 1},
		{"other", `{"typeWebhook":"incomingMessageReceived","idMessage":"O1","senderData":{"chatId":"919876543210@c.us"},"messageData":{"textMessage":{"text":"hello"}}}`, msgNotProcessed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			gw := &fakeGateway{}
			bus := &recordingBus{}
			svc := newTestService(repo, gw, bus, nil)

			result := svc.ProcessWebhook(context.Background(), []byte(tt.body))
			if !result.Success || result.Message != tt.message {
				t.Fatalf("got %+v, want message %q", result, tt.message)
			}
			if got := len(gw.messages()); got != tt.sends {
				t.Fatalf("expected %d sends, got %d", tt.sends, got)
			}
			if repo.count() != 0 {
				t.Fatal("no enquiry may be created")
			}
			if got := len(bus.named(events.WebhookReceived{}.EventName())); got != 1 {
				t.Fatalf("expected 1 WebhookReceived, got %d", got)
			}
		})
	}
}

func TestProcessWebhookReplySendsCannedText(t *testing.T) {
	gw := &fakeGateway{results: []whatsapp.Result{{StatusCode: whatsapp.StatusQuotaExceeded, QuotaExceeded: true, Error: "quota exceeded"}}}
	svc := newTestService(newFakeRepo(), gw, &recordingBus{}, nil)

	body := `{"typeWebhook":"incomingMessageReceived","senderData":{"chatId":"919876543210@c.us"},"messageData":{"textMessage":{"text":"more details"}}}`
	result := svc.ProcessWebhook(context.Background(), []byte(body))

	sent := gw.messages()
	if len(sent) != 1 || sent[0].destination != "919876543210@c.us" || !strings.HasPrefix(sent[0].text, "Welcome to Business Guru!") {
		t.Fatalf("unexpected send %+v", sent)
	}
	if result.WhatsAppSent == nil || *result.WhatsAppSent || !result.WhatsAppQuotaExceeded {
		t.Fatalf("expected a quota failure to be reported, got %+v", result)
	}
}

func TestProcessWebhookNotInterestedStillCreates(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{}, &recordingBus{}, nil)

	body := `{"typeWebhook":"incomingMessageReceived","idMessage":"N1","senderData":{"chatId":"919812345678@c.us"},"messageData":{"textMessage":{"text":"not interested"}}}`
	result := svc.ProcessWebhook(context.Background(), []byte(body))
	if result.Message != msgEnquiryCreated {
		t.Fatalf("substring match creates an enquiry, got %+v", result)
	}
	if result.CustomerName != "WhatsApp User 919812345678" {
		t.Fatalf("unexpected fallback name %q", result.CustomerName)
	}

	stored, _ := repo.FindByID(context.Background(), *result.EnquiryID)
	if stored.WhatsAppSenderName == nil || *stored.WhatsAppSenderName != unknownSenderName || stored.UserName != nil {
		t.Fatalf("unexpected sender fields %+v", stored)
	}
}

func TestProcessWebhookStorageFailureStillAnswers(t *testing.T) {
	repo := newFakeRepo()
	repo.insertErr = errors.New("connection refused")
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeGateway{}, bus, nil)

	result := svc.ProcessWebhook(context.Background(), []byte(interestedDelivery))
	if result.Success || result.Message != msgEnquiryFailed {
		t.Fatalf("expected failure result, got %+v", result)
	}
	received := bus.named(events.WebhookReceived{}.EventName())
	if len(received) != 1 || received[0].(events.WebhookReceived).Outcome != OutcomeFailed {
		t.Fatalf("expected a failed outcome event, got %+v", received)
	}
}
