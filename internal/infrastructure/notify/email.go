package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"github.com/sanosuguru/go-gear-rental/internal/config"
)

var ErrNoRecipient = errors.New("message has no email recipient")

// SMTPNotifier sends plain-text mail through an SMTP relay.
type SMTPNotifier struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	adminEmail string
}

func NewSMTPNotifier(cfg config.SMTPConfig, adminEmail string) *SMTPNotifier {
	return &SMTPNotifier{
		host:       cfg.Host,
		port:       cfg.Port,
		username:   cfg.User,
		password:   cfg.Password,
		from:       cfg.From,
		adminEmail: adminEmail,
	}
}

func (n *SMTPNotifier) Name() string { return "smtp" }

func (n *SMTPNotifier) Notify(_ context.Context, msg Message) error {
	to := recipients(msg, n.adminEmail)
	if len(to) == 0 {
		return ErrNoRecipient
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	d := gomail.NewDialer(n.host, n.port, n.username, n.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail via smtp: %w", err)
	}
	return nil
}

// SendGridNotifier sends mail through the SendGrid API.
type SendGridNotifier struct {
	client     *sendgrid.Client
	fromEmail  string
	fromName   string
	adminEmail string
}

func NewSendGridNotifier(cfg config.SendGridConfig, adminEmail string) *SendGridNotifier {
	return &SendGridNotifier{
		client:     sendgrid.NewSendClient(cfg.APIKey),
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		adminEmail: adminEmail,
	}
}

func (n *SendGridNotifier) Name() string { return "sendgrid" }

func (n *SendGridNotifier) Notify(ctx context.Context, msg Message) error {
	to := recipients(msg, n.adminEmail)
	if len(to) == 0 {
		return ErrNoRecipient
	}
	from := mail.NewEmail(n.fromName, n.fromEmail)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = msg.Subject
	p := mail.NewPersonalization()
	for _, addr := range to {
		p.AddTos(mail.NewEmail("", addr))
	}
	message.AddPersonalizations(p)
	message.AddContent(mail.NewContent("text/plain", msg.Body))

	response, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send mail via sendgrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

// recipients returns the customer address plus the admin copy.
func recipients(msg Message, adminEmail string) []string {
	var to []string
	if msg.Email != "" {
		to = append(to, msg.Email)
	}
	if adminEmail != "" && adminEmail != msg.Email {
		to = append(to, adminEmail)
	}
	return to
}
