package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"promodraft/internal"
	"promodraft/internal/catalog"
	"promodraft/internal/llm"
	"promodraft/internal/promo"
	"promodraft/internal/storage"
)

var (
	ErrNothingPicked = errors.New("no product picked yet")
	ErrNoCatalog     = errors.New("no catalog loaded yet")
	ErrNoCompleter   = errors.New("no language model configured")
	ErrItemNotFound  = errors.New("product not found in catalog")
)

const pickedKey = "picked"

// Session is the state one user works on: the loaded catalog, the current
// pick and the last draft made from it.
type Session struct {
	ID     string
	Source string
	LoadID string
	Items  []internal.CatalogItem
	Picked *internal.Selection
	Draft  *internal.Draft
}

// SourceOpener resolves a catalog source spec. An empty spec means the
// configured default.
type SourceOpener func(ctx context.Context, spec string) (catalog.Source, error)

type SpecSearcher interface {
	Specs(ctx context.Context, name string) (internal.SpecSheet, error)
}

// Store is the persistence the service needs; *storage.DB satisfies it.
type Store interface {
	InsertLoad(source string, items []internal.CatalogItem) (internal.CatalogLoad, error)
	LatestLoad() (*internal.CatalogLoad, error)
	ListLoadItems(loadID string) ([]internal.CatalogItem, error)
	InsertDraft(draft internal.Draft) error
	ListDrafts(limit int) ([]internal.Draft, error)
	MustDraft(id string) (internal.Draft, error)
	SetMetadata(key, value string) error
	GetMetadata(key string) (*string, error)
}

var _ Store = (*storage.DB)(nil)

type Deps struct {
	DB       Store
	Open     SourceOpener
	Searcher SpecSearcher
	LLM      llm.Completer
	Pricing  promo.Pricing
	Profile  promo.Profile
	Layout   internal.Layout
	Log      *zap.Logger
	Rand     *rand.Rand
}

type Service struct {
	db       Store
	open     SourceOpener
	searcher SpecSearcher
	llm      llm.Completer
	pricing  promo.Pricing
	profile  promo.Profile
	layout   internal.Layout
	log      *zap.Logger
	rnd      *rand.Rand
	now      func() time.Time
}

func NewService(d Deps) *Service {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Pricing == (promo.Pricing{}) {
		d.Pricing = promo.DefaultPricing()
	}
	if d.Profile.System == "" && d.Profile.User == "" {
		d.Profile = promo.DefaultProfile()
	}
	return &Service{
		db:       d.DB,
		open:     d.Open,
		searcher: d.Searcher,
		llm:      d.LLM,
		pricing:  d.Pricing,
		profile:  d.Profile,
		layout:   d.Layout,
		log:      d.Log,
		rnd:      d.Rand,
		now:      time.Now,
	}
}

func (s *Service) Pricing() promo.Pricing { return s.pricing }

func (s *Service) NewSession() *Session {
	return &Session{ID: uuid.NewString(), Items: []internal.CatalogItem{}}
}

// LoadCatalog replaces the session catalog with a fresh load. On a source
// failure the session is left with an empty catalog and the error wraps
// catalog.ErrSourceUnavailable.
func (s *Service) LoadCatalog(ctx context.Context, sess *Session, spec string) error {
	sess.Picked = nil
	sess.Draft = nil

	if s.open == nil {
		sess.Items = []internal.CatalogItem{}
		return fmt.Errorf("%w: no source opener", catalog.ErrSourceUnavailable)
	}
	src, err := s.open(ctx, spec)
	if err != nil {
		sess.Items = []internal.CatalogItem{}
		s.log.Error("catalog source rejected", zap.String("spec", spec), zap.Error(err))
		return fmt.Errorf("%w: %w", catalog.ErrSourceUnavailable, err)
	}

	items, err := catalog.Load(ctx, src, s.layout, s.log)
	sess.Items = items
	sess.Source = src.Describe()
	sess.LoadID = ""
	if err != nil {
		return err
	}

	if s.db != nil {
		load, err := s.db.InsertLoad(sess.Source, items)
		if err != nil {
			return fmt.Errorf("record catalog load: %w", err)
		}
		sess.LoadID = load.ID
		if err := s.db.SetMetadata(pickedKey, ""); err != nil {
			s.log.Warn("could not clear saved pick", zap.Error(err))
		}
	}
	return nil
}

// Restore fills the session from the latest recorded load, including the
// pick made against it.
func (s *Service) Restore(_ context.Context, sess *Session) error {
	if s.db == nil {
		return ErrNoCatalog
	}
	load, err := s.db.LatestLoad()
	if err != nil {
		return err
	}
	if load == nil {
		return ErrNoCatalog
	}
	items, err := s.db.ListLoadItems(load.ID)
	if err != nil {
		return err
	}
	sess.Items = items
	sess.Source = load.Source
	sess.LoadID = load.ID
	sess.Picked = nil
	sess.Draft = nil

	raw, err := s.db.GetMetadata(pickedKey)
	if err != nil || raw == nil || *raw == "" {
		return err
	}
	var saved savedPick
	if err := json.Unmarshal([]byte(*raw), &saved); err != nil {
		s.log.Warn("ignoring unreadable saved pick", zap.Error(err))
		return nil
	}
	if saved.LoadID == load.ID {
		sel := promo.Select(saved.Item, s.pricing)
		sess.Picked = &sel
	}
	return nil
}

type savedPick struct {
	LoadID string               `json:"loadId"`
	Item   internal.CatalogItem `json:"item"`
}

// Pick chooses a random item and clears any previous draft.
func (s *Service) Pick(sess *Session) (internal.Selection, error) {
	sel, err := promo.Pick(sess.Items, s.pricing, s.rnd)
	if err != nil {
		return internal.Selection{}, err
	}
	s.setPicked(sess, sel)
	return sel, nil
}

// PickByName selects an item by exact name, falling back to the first item
// whose name contains the query. Matching ignores case.
func (s *Service) PickByName(sess *Session, name string) (internal.Selection, error) {
	if len(sess.Items) == 0 {
		return internal.Selection{}, promo.ErrEmptyCatalog
	}
	query := strings.ToLower(strings.TrimSpace(name))
	found := -1
	for i, item := range sess.Items {
		lower := strings.ToLower(item.Name)
		if lower == query {
			found = i
			break
		}
		if found < 0 && query != "" && strings.Contains(lower, query) {
			found = i
		}
	}
	if found < 0 {
		return internal.Selection{}, fmt.Errorf("%w: %q", ErrItemNotFound, name)
	}
	sel := promo.Select(sess.Items[found], s.pricing)
	s.setPicked(sess, sel)
	return sel, nil
}

func (s *Service) setPicked(sess *Session, sel internal.Selection) {
	sess.Picked = &sel
	sess.Draft = nil
	if s.db == nil || sess.LoadID == "" {
		return
	}
	blob, _ := json.Marshal(savedPick{LoadID: sess.LoadID, Item: sel.Item})
	if err := s.db.SetMetadata(pickedKey, string(blob)); err != nil {
		s.log.Warn("could not save pick", zap.Error(err))
	}
}

// Generate drafts a promotional message for the picked item. A failed web
// search is not fatal; the prompt then says no data was found.
func (s *Service) Generate(ctx context.Context, sess *Session) (internal.Draft, error) {
	if sess.Picked == nil {
		return internal.Draft{}, ErrNothingPicked
	}
	if s.llm == nil {
		return internal.Draft{}, ErrNoCompleter
	}
	sel := *sess.Picked

	specs := s.lookupSpecs(ctx, sel.Item.Name)
	prompt, err := s.profile.Build(sel, specs)
	if err != nil {
		return internal.Draft{}, err
	}

	start := s.now()
	message, err := s.llm.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		return internal.Draft{}, fmt.Errorf("generate draft for %q: %w", sel.Item.Name, err)
	}

	draft := internal.Draft{
		ID:          uuid.NewString(),
		Item:        sel.Item,
		PromoPrice:  sel.PromoPrice,
		DiscountPct: sel.DiscountPct,
		Specs:       specs,
		Message:     message,
		Model:       s.llm.Model(),
		CreatedAt:   s.now().UTC(),
	}
	s.log.Info("draft generated",
		zap.String("session", sess.ID),
		zap.String("item", sel.Item.Name),
		zap.String("model", draft.Model),
		zap.Duration("took", s.now().Sub(start)),
	)

	if s.db != nil {
		if err := s.db.InsertDraft(draft); err != nil {
			return internal.Draft{}, fmt.Errorf("save draft: %w", err)
		}
	}
	sess.Draft = &draft
	return draft, nil
}

func (s *Service) lookupSpecs(ctx context.Context, name string) string {
	if s.searcher == nil {
		return promo.NoSpecsText
	}
	sheet, err := s.searcher.Specs(ctx, name)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn("spec search failed, drafting without specs", zap.String("item", name), zap.Error(err))
		}
		return promo.NoSpecsText
	}
	if strings.TrimSpace(sheet.Text) == "" {
		return promo.NoSpecsText
	}
	return sheet.Text
}

func (s *Service) Drafts(limit int) ([]internal.Draft, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.ListDrafts(limit)
}

func (s *Service) Draft(id string) (internal.Draft, error) {
	if s.db == nil {
		return internal.Draft{}, fmt.Errorf("draft not found: id=%s", id)
	}
	return s.db.MustDraft(id)
}
