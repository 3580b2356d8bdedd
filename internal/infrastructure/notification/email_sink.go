package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"civicsolve/internal/domain/entity"
)

// Mailer is the part of gomail's Dialer the sink uses.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSink struct {
	mailer     Mailer
	from       string
	adminEmail string
}

func NewSMTPMailer(host string, port int, username, password string) Mailer {
	return gomail.NewDialer(host, port, username, password)
}

// NewEmailSink mails the reporter on every event and, when adminEmail is set, alerts the
// administrators about new complaints.
func NewEmailSink(mailer Mailer, from, adminEmail string) *EmailSink {
	return &EmailSink{
		mailer:     mailer,
		from:       from,
		adminEmail: adminEmail,
	}
}

func (s *EmailSink) Name() string {
	return "email"
}

func (s *EmailSink) Deliver(ctx context.Context, event entity.ComplaintEvent) error {
	var messages []*gomail.Message

	if event.Recipient.Email != "" {
		email, err := statusEmail(event)
		if err != nil {
			return fmt.Errorf("failed to render status email: %w", err)
		}
		messages = append(messages, s.message(event.Recipient.Email, email))
	}

	if event.Type == entity.EventComplaintCreated && s.adminEmail != "" {
		email, err := newComplaintEmail(event)
		if err != nil {
			return fmt.Errorf("failed to render admin email: %w", err)
		}
		messages = append(messages, s.message(s.adminEmail, email))
	}

	if len(messages) == 0 {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.mailer.DialAndSend(messages...)
}

func (s *EmailSink) message(to string, email renderedEmail) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Text)
	m.AddAlternative("text/html", email.HTML)
	return m
}
