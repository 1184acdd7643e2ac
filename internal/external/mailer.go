package external

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"
)

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Email is a rendered message ready for delivery.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// NewMailer returns an SMTP mailer, or a log-only mailer when no host is configured.
func NewMailer(cfg MailConfig) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}

type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

func NewSMTPMailer(cfg MailConfig) *SMTPMailer {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPMailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		timeout: cfg.Timeout,
		breaker: newCircuitBreaker("smtp"),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Email) error {
	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", msg.To)
	message.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		message.SetBody("text/plain", msg.Text)
		if msg.HTML != "" {
			message.AddAlternative("text/html", msg.HTML)
		}
	} else {
		message.SetBody("text/html", msg.HTML)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.breaker.Execute(func() (interface{}, error) {
		// gomail has no context support; the dial keeps running after a timeout.
		done := make(chan error, 1)
		go func() { done <- m.dialer.DialAndSend(message) }()

		select {
		case err := <-done:
			return nil, err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	if err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Email) error {
	slog.InfoContext(ctx, "Email delivery skipped, no SMTP host configured",
		"to", msg.To,
		"subject", msg.Subject)
	return nil
}
