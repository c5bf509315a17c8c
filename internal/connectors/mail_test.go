package connectors

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promodraft/internal"
)

func sampleDraft() internal.Draft {
	return internal.Draft{
		ID:         "d1",
		Item:       internal.CatalogItem{Name: "Monitor Z", Price: 1000},
		PromoPrice: 950,
		Message:    "⚡ **Monitor Z**\n\n💰 $950",
		Model:      "m",
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildDraftMail(t *testing.T) {
	raw, err := BuildDraftMail(sampleDraft(), "Shop <shop@example.com>", "team@example.com")
	require.NoError(t, err)

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Promo: Monitor Z", env.GetHeader("Subject"))
	assert.Contains(t, env.GetHeader("From"), "shop@example.com")
	assert.Contains(t, env.GetHeader("To"), "team@example.com")
	assert.Equal(t, "d1", env.GetHeader("X-Promodraft-Draft-Id"))
	assert.Contains(t, env.Text, "💰 $950")
	assert.Contains(t, env.HTML, "<strong>Monitor Z</strong>")
}

func TestBuildDraftMailDefaultsRecipientToSender(t *testing.T) {
	raw, err := BuildDraftMail(sampleDraft(), "shop@example.com", "")
	require.NoError(t, err)

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Contains(t, env.GetHeader("To"), "shop@example.com")
}

func TestBuildDraftMailErrors(t *testing.T) {
	_, err := BuildDraftMail(sampleDraft(), "not an address", "")
	assert.Error(t, err)

	empty := sampleDraft()
	empty.Message = "  "
	_, err = BuildDraftMail(empty, "shop@example.com", "")
	assert.EqualError(t, err, "draft has no message")
}

type memStore struct {
	drafts map[string]internal.Draft
	meta   map[string]string
}

func (m *memStore) MustDraft(id string) (internal.Draft, error) {
	d, ok := m.drafts[id]
	if !ok {
		return internal.Draft{}, errors.New("draft not found: id=" + id)
	}
	return d, nil
}

func (m *memStore) SetMetadata(key, value string) error {
	m.meta[key] = value
	return nil
}

type fakePublisher struct {
	raw []byte
	err error
}

func (f *fakePublisher) Name() string { return "fake" }

func (f *fakePublisher) SaveDraft(_ context.Context, raw []byte) (string, error) {
	f.raw = raw
	return "remote-1", f.err
}

func TestPublish(t *testing.T) {
	store := &memStore{drafts: map[string]internal.Draft{"d1": sampleDraft()}, meta: map[string]string{}}
	pub := &fakePublisher{}
	outbox := filepath.Join(t.TempDir(), "outbox")
	svc := NewPublishService(store, pub, outbox, "shop@example.com", "", nil)

	res, err := svc.Publish(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "remote-1", res.RemoteID)
	assert.Equal(t, "fake", res.Provider)
	assert.Equal(t, "fake:remote-1", store.meta["published:d1"])

	saved, err := os.ReadFile(res.RawPath)
	require.NoError(t, err)
	assert.Equal(t, pub.raw, saved)
}

func TestPublishFailures(t *testing.T) {
	store := &memStore{drafts: map[string]internal.Draft{"d1": sampleDraft()}, meta: map[string]string{}}

	svc := NewPublishService(store, &fakePublisher{}, "", "shop@example.com", "", nil)
	_, err := svc.Publish(context.Background(), "missing")
	assert.EqualError(t, err, "draft not found: id=missing")

	svc = NewPublishService(store, &fakePublisher{err: errors.New("quota")}, "", "shop@example.com", "", nil)
	_, err = svc.Publish(context.Background(), "d1")
	assert.EqualError(t, err, "fake: save draft: quota")
	assert.Empty(t, store.meta)
}
