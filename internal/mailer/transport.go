package mailer

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

// Transport delivers a single message through a provider.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPConfig holds the connection settings of an SMTP email account, with
// the password already decrypted.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

// SMTPTransport sends messages through a gomail SMTP dialer.
type SMTPTransport struct {
	dialer    *gomail.Dialer
	fromName  string
	fromEmail string
}

// NewSMTPTransport builds a transport for one SMTP account. Port 465 implies
// implicit TLS.
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.Port == 465 {
		dialer.SSL = true
	}
	return &SMTPTransport{
		dialer:    dialer,
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
	}
}

func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", t.fromEmail, t.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	if msg.TextBody != "" {
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	} else {
		m.SetBody("text/html", msg.HTMLBody)
	}

	for _, a := range msg.Attachments {
		attachment := a
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(attachment.Content)
				return err
			}),
		}
		if attachment.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {attachment.ContentType},
			}))
		}
		m.Attach(attachment.Filename, settings...)
	}

	if err := t.dialer.DialAndSend(m); err != nil {
		return errors.Wrapf(err, "smtp delivery to %s failed", msg.To)
	}
	return nil
}
