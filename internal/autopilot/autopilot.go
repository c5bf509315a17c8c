// Package autopilot drafts a promotion on a fixed interval without a user at
// the keyboard.
package autopilot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"promodraft/internal"
	"promodraft/internal/pipeline"
)

// Drafter is the slice of pipeline.Service a cycle needs.
type Drafter interface {
	NewSession() *pipeline.Session
	LoadCatalog(ctx context.Context, sess *pipeline.Session, spec string) error
	Restore(ctx context.Context, sess *pipeline.Session) error
	Pick(sess *pipeline.Session) (internal.Selection, error)
	Generate(ctx context.Context, sess *pipeline.Session) (internal.Draft, error)
}

type PublishFunc func(ctx context.Context, draftID string) error

type Options struct {
	Interval  time.Duration
	Reload    bool
	Publish   PublishFunc
	ExportDir string
}

type Service struct {
	drafter Drafter
	opts    Options
	log     *zap.Logger
}

type CycleResult struct {
	Items     int
	Draft     internal.Draft
	Published bool
	Exported  string
}

func NewService(drafter Drafter, opts Options, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	return &Service{drafter: drafter, opts: opts, log: log}
}

// Run repeats cycles until ctx is done. A failed cycle is logged and the
// loop waits for the next tick.
func (s *Service) Run(ctx context.Context) error {
	for {
		res, err := s.RunCycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Error("autopilot cycle failed", zap.Error(err))
		} else {
			s.log.Info("autopilot cycle done",
				zap.Int("items", res.Items),
				zap.String("draft", res.Draft.ID),
				zap.String("item", res.Draft.Item.Name),
				zap.Bool("published", res.Published),
				zap.String("exported", res.Exported),
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.opts.Interval):
		}
	}
}

func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	sess := s.drafter.NewSession()
	if s.opts.Reload {
		if err := s.drafter.LoadCatalog(ctx, sess, ""); err != nil {
			return CycleResult{}, err
		}
	} else if err := s.drafter.Restore(ctx, sess); err != nil {
		if !errors.Is(err, pipeline.ErrNoCatalog) {
			return CycleResult{}, err
		}
		if err := s.drafter.LoadCatalog(ctx, sess, ""); err != nil {
			return CycleResult{}, err
		}
	}

	res := CycleResult{Items: len(sess.Items)}
	if _, err := s.drafter.Pick(sess); err != nil {
		return res, err
	}
	draft, err := s.drafter.Generate(ctx, sess)
	if err != nil {
		return res, err
	}
	res.Draft = draft

	if s.opts.Publish != nil {
		if err := s.opts.Publish(ctx, draft.ID); err != nil {
			return res, fmt.Errorf("publish draft %s: %w", draft.ID, err)
		}
		res.Published = true
	}

	if s.opts.ExportDir != "" {
		filename := fmt.Sprintf("%s_%s.xlsx", draft.CreatedAt.UTC().Format("20060102T150405"), sanitizeName(draft.Item.Name))
		outputPath := filepath.Join(s.opts.ExportDir, filename)
		if err := pipeline.ExportDraftsXLSX([]internal.Draft{draft}, outputPath); err != nil {
			return res, err
		}
		res.Exported = outputPath
	}
	return res, nil
}

func sanitizeName(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_", "\"", "_")
	out := repl.Replace(strings.TrimSpace(input))
	if r := []rune(out); len(r) > 60 {
		out = string(r[:60])
	}
	if out == "" {
		out = "draft"
	}
	return out
}
