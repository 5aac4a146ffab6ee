package mailer

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
)

// ResendTransport sends messages through the Resend HTTP API. It backs email
// accounts with provider "resend"; the bulk pipeline itself only accepts SMTP
// accounts, so this transport is used for single test sends.
type ResendTransport struct {
	client    *resend.Client
	fromName  string
	fromEmail string
}

// NewResendTransport builds a transport for one Resend account.
func NewResendTransport(apiKey, fromName, fromEmail string) *ResendTransport {
	return &ResendTransport{
		client:    resend.NewClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (t *ResendTransport) Send(ctx context.Context, msg *Message) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", t.fromName, t.fromEmail),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    msg.TextBody,
	}

	if _, err := t.client.Emails.SendWithContext(ctx, params); err != nil {
		return errors.Wrapf(err, "resend delivery to %s failed", msg.To)
	}
	return nil
}
