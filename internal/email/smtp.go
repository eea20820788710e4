package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"enquiry_intake_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

const smtpTimeout = 15 * time.Second

// SMTPSender mails the ops inbox through go-mail, one connection per message.
type SMTPSender struct {
	host      string
	fromName  string
	fromEmail string
	opts      []gomail.Option
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	opts := []gomail.Option{
		gomail.WithPort(cfg.GetSMTPPort()),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(smtpTimeout),
		// Some hosting networks advertise IPv6 without routing it.
		gomail.WithDialContextFunc(func(ctx context.Context, _, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(ctx, "tcp4", addr)
		}),
	}
	if user := cfg.GetSMTPUsername(); user != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(user),
			gomail.WithPassword(cfg.GetSMTPPassword()),
		)
	}
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
		opts:      opts,
	}
}

func (s *SMTPSender) SendCommentUpdateEmail(ctx context.Context, toEmails []string, update CommentUpdate) error {
	if len(toEmails) == 0 {
		return nil
	}
	html, err := renderCommentUpdate(update)
	if err != nil {
		return err
	}
	msg, err := s.message(toEmails, fmt.Sprintf(commentUpdateSubjectFmt, update.CustomerName), html, plainCommentUpdate(update))
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.host, s.opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) message(to []string, subject, html, text string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, text)
	msg.AddAlternativeString(gomail.TypeTextHTML, html)
	return msg, nil
}
