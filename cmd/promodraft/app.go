package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"promodraft/internal/catalog"
	"promodraft/internal/config"
	"promodraft/internal/display"
	"promodraft/internal/fetch"
	"promodraft/internal/llm"
	"promodraft/internal/pipeline"
	"promodraft/internal/promo"
	"promodraft/internal/search"
	"promodraft/internal/storage"
)

type app struct {
	cfg      config.Config
	log      *zap.Logger
	db       *storage.DB
	svc      *pipeline.Service
	render   display.Renderer
	currency string
	closers  []io.Closer
}

type llmMode int

const (
	llmNone llmMode = iota
	llmRequired
	llmOptional
)

func newApp(ctx context.Context, mode llmMode) (*app, error) {
	pricing, err := promo.PricingFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	base := promo.DefaultProfile()
	if cfg.PromoCurrency != "" {
		base.Currency = cfg.PromoCurrency
	}
	profile, err := promo.LoadProfile(base, cfg.PromptProfile)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:      cfg,
		log:      logger,
		db:       db,
		render:   display.NewRenderer(72, plain || !isatty.IsTerminal(os.Stdout.Fd())),
		currency: profile.Currency,
		closers:  []io.Closer{db},
	}

	client := fetch.NewClient(cfg)
	var completer llm.Completer
	if mode != llmNone {
		c, err := llm.NewCompleter(ctx, cfg, client, logger)
		switch {
		case err == nil:
			completer = c
			if closer, ok := c.(io.Closer); ok {
				a.closers = append(a.closers, closer)
			}
		case mode == llmRequired:
			_ = a.Close()
			return nil, err
		default:
			logger.Warn("drafting disabled", zap.Error(err))
		}
	}

	a.svc = pipeline.NewService(pipeline.Deps{
		DB: db,
		Open: func(ctx context.Context, spec string) (catalog.Source, error) {
			return catalog.OpenSource(ctx, cfg, client, spec)
		},
		Searcher: search.NewSearcher(cfg, client, logger),
		LLM:      completer,
		Pricing:  pricing,
		Profile:  profile,
		Layout:   catalog.LayoutFromConfig(cfg),
		Log:      logger,
	})
	return a, nil
}

func (a *app) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// session restores the last loaded catalog, loading it on first use.
func (a *app) session(ctx context.Context) (*pipeline.Session, error) {
	sess := a.svc.NewSession()
	err := a.svc.Restore(ctx, sess)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, pipeline.ErrNoCatalog) {
		return nil, err
	}
	if err := a.svc.LoadCatalog(ctx, sess, ""); err != nil {
		return nil, err
	}
	return sess, nil
}
