package connectors

import (
	"bytes"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/yuin/goldmark"

	"promodraft/internal"
)

// BuildDraftMail renders a draft as a multipart/alternative message: the
// plain message plus an HTML rendering of its markdown. to may be empty, in
// which case the draft is addressed to the sender.
func BuildDraftMail(draft internal.Draft, from, to string) ([]byte, error) {
	if strings.TrimSpace(draft.Message) == "" {
		return nil, errors.New("draft has no message")
	}
	sender, err := mail.ParseAddress(strings.TrimSpace(from))
	if err != nil {
		return nil, fmt.Errorf("bad MAIL_FROM %q: %w", from, err)
	}
	recipient := sender
	if strings.TrimSpace(to) != "" {
		recipient, err = mail.ParseAddress(strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("bad MAIL_TO %q: %w", to, err)
		}
	}

	var html bytes.Buffer
	if err := goldmark.Convert([]byte(draft.Message), &html); err != nil {
		return nil, fmt.Errorf("render draft html: %w", err)
	}

	builder := enmime.Builder().
		From(sender.Name, sender.Address).
		To(recipient.Name, recipient.Address).
		Subject("Promo: " + draft.Item.Name).
		Date(draft.CreatedAt).
		Header("X-Promodraft-Draft-Id", draft.ID).
		Text([]byte(draft.Message)).
		HTML(html.Bytes())

	part, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build draft mail: %w", err)
	}
	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode draft mail: %w", err)
	}
	return buf.Bytes(), nil
}
