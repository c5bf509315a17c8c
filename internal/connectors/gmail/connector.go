package gmail

import (
	"context"
	"encoding/base64"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"promodraft/internal/config"
)

type Connector struct {
	service *gmail.Service
	user    string
}

func NewConnector(ctx context.Context, cfg config.Config) (*Connector, error) {
	if err := cfg.Require("GOOGLE_CLIENT_ID", cfg.GoogleClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_REFRESH_TOKEN", cfg.GoogleRefreshToken); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       []string{gmail.GmailComposeScope},
	}

	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GoogleRefreshToken})
	return NewConnectorWithOptions(ctx, option.WithTokenSource(tokenSource))
}

func NewConnectorWithOptions(ctx context.Context, opts ...option.ClientOption) (*Connector, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Connector{service: svc, user: "me"}, nil
}

func (c *Connector) Name() string { return "gmail" }

func (c *Connector) SaveDraft(ctx context.Context, raw []byte) (string, error) {
	draft := &gmail.Draft{Message: &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}}
	created, err := c.service.Users.Drafts.Create(c.user, draft).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if created.Id == "" {
		return "", errors.New("gmail returned a draft without id")
	}
	return created.Id, nil
}
