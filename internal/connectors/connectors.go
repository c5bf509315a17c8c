package connectors

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"promodraft/internal"
	"promodraft/internal/config"
	gmailconnector "promodraft/internal/connectors/gmail"
	imapconnector "promodraft/internal/connectors/imap"
)

// Publisher saves a raw RFC 5322 message as a draft in a mailbox and returns
// the provider's id for it. Nothing is ever sent.
type Publisher interface {
	Name() string
	SaveDraft(ctx context.Context, raw []byte) (string, error)
}

type DraftStore interface {
	MustDraft(id string) (internal.Draft, error)
	SetMetadata(key, value string) error
}

type PublishService struct {
	db        DraftStore
	publisher Publisher
	outboxDir string
	from      string
	to        string
	log       *zap.Logger
}

type PublishResult struct {
	DraftID  string
	Provider string
	RemoteID string
	RawPath  string
}

func NewPublishService(db DraftStore, publisher Publisher, outboxDir, from, to string, log *zap.Logger) *PublishService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PublishService{db: db, publisher: publisher, outboxDir: outboxDir, from: from, to: to, log: log}
}

// Publish builds the mail for a stored draft, keeps a copy of it in the
// outbox directory and hands it to the publisher.
func (s *PublishService) Publish(ctx context.Context, draftID string) (PublishResult, error) {
	draft, err := s.db.MustDraft(draftID)
	if err != nil {
		return PublishResult{}, err
	}

	raw, err := BuildDraftMail(draft, s.from, s.to)
	if err != nil {
		return PublishResult{}, err
	}

	rawPath, err := s.storeRaw(raw)
	if err != nil {
		return PublishResult{}, err
	}

	remoteID, err := s.publisher.SaveDraft(ctx, raw)
	if err != nil {
		return PublishResult{}, fmt.Errorf("%s: save draft: %w", s.publisher.Name(), err)
	}
	if err := s.db.SetMetadata("published:"+draft.ID, s.publisher.Name()+":"+remoteID); err != nil {
		return PublishResult{}, err
	}
	s.log.Info("draft published",
		zap.String("draft", draft.ID),
		zap.String("provider", s.publisher.Name()),
		zap.String("remoteId", remoteID),
	)

	return PublishResult{DraftID: draft.ID, Provider: s.publisher.Name(), RemoteID: remoteID, RawPath: rawPath}, nil
}

func (s *PublishService) storeRaw(raw []byte) (string, error) {
	if s.outboxDir == "" {
		return "", nil
	}
	hashBytes := sha256.Sum256(raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.outboxDir, 0o755); err != nil {
		return "", err
	}

	rawPath := filepath.Join(s.outboxDir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
			return "", err
		}
	}
	return rawPath, nil
}

func NewPublisher(ctx context.Context, cfg config.Config, provider string) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(ctx, cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
