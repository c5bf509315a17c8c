package imap

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"promodraft/internal/config"
)

type Connector struct {
	host     string
	port     int
	secure   bool
	user     string
	password string
	mailbox  string
	now      func() time.Time
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("IMAP_HOST", cfg.IMAPHost); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_USER", cfg.IMAPUser); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_PASSWORD", cfg.IMAPPassword); err != nil {
		return nil, err
	}

	mailbox := cfg.IMAPDraftsMailbox
	if mailbox == "" {
		mailbox = "Drafts"
	}
	return &Connector{
		host:     cfg.IMAPHost,
		port:     cfg.IMAPPort,
		secure:   cfg.IMAPSecure,
		user:     cfg.IMAPUser,
		password: cfg.IMAPPassword,
		mailbox:  mailbox,
		now:      time.Now,
	}, nil
}

func (c *Connector) Name() string { return "imap" }

// SaveDraft appends raw to the drafts mailbox with the \Draft flag, creating
// the mailbox when the server does not have it yet. IMAP has no draft id, so
// the mailbox name is returned.
func (c *Connector) SaveDraft(ctx context.Context, raw []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	var client *imapclient.Client
	var err error
	if c.secure {
		client, err = imapclient.DialTLS(addr, &tls.Config{ServerName: c.host})
	} else {
		client, err = imapclient.Dial(addr)
	}
	if err != nil {
		return "", err
	}
	defer client.Logout()

	if deadline, ok := ctx.Deadline(); ok {
		client.Timeout = time.Until(deadline)
	}

	if err := client.Login(c.user, c.password); err != nil {
		return "", err
	}

	if err := ensureMailbox(client, c.mailbox); err != nil {
		return "", err
	}

	flags := []string{imap.DraftFlag, imap.SeenFlag}
	if err := client.Append(c.mailbox, flags, c.now(), bytes.NewBuffer(raw)); err != nil {
		return "", fmt.Errorf("append to %s: %w", c.mailbox, err)
	}
	return c.mailbox, nil
}

func ensureMailbox(client *imapclient.Client, name string) error {
	mailboxes := make(chan *imap.MailboxInfo, 10)
	done := make(chan error, 1)
	go func() { done <- client.List("", name, mailboxes) }()

	found := false
	for m := range mailboxes {
		if m != nil && m.Name == name {
			found = true
		}
	}
	if err := <-done; err != nil {
		return err
	}
	if found {
		return nil
	}
	return client.Create(name)
}
