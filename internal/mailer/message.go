package mailer

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

// Message is one outbound email, ready for a Transport.
type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []Attachment
}

// Attachment is transport-ready file content.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// storedAttachment mirrors the jsonb attachment metadata persisted on
// email templates.
type storedAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// PrepareAttachments converts the attachment metadata stored on a template
// into transport-ready attachments, decoding the base64 file content.
func PrepareAttachments(raw []byte) ([]Attachment, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var stored []storedAttachment
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, errors.Wrap(err, "invalid attachment metadata")
	}

	attachments := make([]Attachment, 0, len(stored))
	for _, s := range stored {
		content, err := base64.StdEncoding.DecodeString(s.Content)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid attachment content for %q", s.Filename)
		}
		attachments = append(attachments, Attachment{
			Filename:    s.Filename,
			ContentType: s.ContentType,
			Content:     content,
		})
	}
	return attachments, nil
}
