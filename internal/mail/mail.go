// Package mail implements the outbound notification gateway: message
// composition for faculty invitations and a thin SMTP sender.
package mail

import (
	"context"

	gomail "gopkg.in/gomail.v2"
)

// Message is a fully composed outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a composed message. Retry policy belongs to the
// implementation, not to callers.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Outcome reports the result of a best-effort delivery. A failed delivery is
// a warning, never a hard error: callers surface it without failing the
// enclosing request.
type Outcome struct {
	OK      bool
	Warning string
}

// Ok returns a successful outcome.
func Ok() Outcome {
	return Outcome{OK: true}
}

// Warn returns a failed outcome carrying the reason.
func Warn(reason string) Outcome {
	return Outcome{Warning: reason}
}

// SMTPConfig carries connection settings for the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers messages over SMTP.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender builds a sender from connection settings.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers one message. The context is accepted for interface symmetry;
// gomail dials synchronously with its own timeouts.
func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return s.dialer.DialAndSend(m)
}
