package email

import (
	"strings"
	"testing"
)

func TestRenderCommentUpdate(t *testing.T) {
	html, err := renderCommentUpdate(CommentUpdate{
		CustomerName:  "Ravi <script>",
		MobileNumber:  "919876543210",
		PreviousLabel: "New Enquiry - Interested",
		Comment:       "Verified(Shortlisted)",
		TemplateKey:   "verified_shortlisted",
		ChangedBy:     "priya",
		WhatsAppError: "Free plan limit reached",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"Verified(Shortlisted)", "919876543210", "not sent: Free plan limit reached", "Ravi &lt;script&gt;"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}
}

func TestPlainCommentUpdate(t *testing.T) {
	text := plainCommentUpdate(CommentUpdate{CustomerName: "Ravi", Comment: "Not Interested", WhatsAppSent: true})
	for _, want := range []string{"Customer: Ravi", "Previous status: -", "New status: Not Interested", "WhatsApp: sent"} {
		if !strings.Contains(text, want) {
			t.Errorf("plain text missing %q in %q", want, text)
		}
	}
	if strings.Contains(text, "Business nature") {
		t.Error("empty business nature must be omitted")
	}
}

func TestSMTPMessageRecipients(t *testing.T) {
	s := NewSMTPSender(fakeSMTPConfig{enabled: true})
	msg, err := s.message([]string{"ops@example.com", "lead@example.com"}, "Enquiry Updated: Ravi", "<p>x</p>", "x")
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	rcpts, err := msg.GetRecipients()
	if err != nil {
		t.Fatalf("recipients: %v", err)
	}
	if len(rcpts) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(rcpts))
	}
}

type fakeSMTPConfig struct{ enabled bool }

func (fakeSMTPConfig) GetSMTPHost() string         { return "smtp.example.com" }
func (fakeSMTPConfig) GetSMTPPort() int            { return 587 }
func (fakeSMTPConfig) GetSMTPUsername() string     { return "" }
func (fakeSMTPConfig) GetSMTPPassword() string     { return "" }
func (fakeSMTPConfig) GetEmailFromName() string    { return "Business Guru" }
func (fakeSMTPConfig) GetEmailFromAddress() string { return "desk@example.com" }
func (fakeSMTPConfig) GetNotifyEmails() []string   { return nil }
func (f fakeSMTPConfig) IsSMTPEnabled() bool       { return f.enabled }

func TestNewSenderFallsBackToNoop(t *testing.T) {
	if _, ok := NewSender(fakeSMTPConfig{}).(NoopSender); !ok {
		t.Fatal("expected NoopSender when SMTP is disabled")
	}
	if _, ok := NewSender(fakeSMTPConfig{enabled: true}).(*SMTPSender); !ok {
		t.Fatal("expected SMTPSender when SMTP is enabled")
	}
}
