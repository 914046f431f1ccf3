package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"inkwell/internal/config"

	"github.com/rs/zerolog/log"
)

// Message is a plain text email ready for delivery.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer picks the delivery backend named by cfg.Backend.
func NewMailer(cfg config.MailConfig) (Mailer, error) {
	switch cfg.Backend {
	case "smtp":
		return NewSMTPMailer(cfg), nil
	case "console":
		return ConsoleMailer{}, nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Backend)
	}
}

type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
	}
}

// Send delivers synchronously; the caller (a queue worker) owns retries.
func (s *SMTPMailer) Send(_ context.Context, msg Message) error {
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

	if err := smtp.SendMail(addr, auth, msg.From, msg.To, msg.Bytes()); err != nil {
		return fmt.Errorf("send mail to %v: %w", msg.To, err)
	}
	log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("Email sent")
	return nil
}

// ConsoleMailer writes messages to the log instead of sending them.
type ConsoleMailer struct{}

func (ConsoleMailer) Send(_ context.Context, msg Message) error {
	log.Info().
		Str("from", msg.From).
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("Email (console backend)")
	return nil
}

// Bytes renders the message in RFC 5322 form.
func (m Message) Bytes() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", headerSafe(m.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// headerSafe drops line breaks so user text cannot inject headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
