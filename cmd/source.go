package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/brogergvhs/nelo/internal/config"
	"github.com/brogergvhs/nelo/internal/providers"
	"github.com/brogergvhs/nelo/internal/providers/manganelo"
	"github.com/brogergvhs/nelo/internal/providers/manganelo/parser"
	"github.com/brogergvhs/nelo/internal/scheduler"
	"github.com/brogergvhs/nelo/internal/ui"
)

// session bundles what every catalog command needs.
type session struct {
	cfg   *config.Config
	log   *ui.Logger
	sched *scheduler.Scheduler
	src   *manganelo.Source
}

func newSession(opts config.Options) (*session, error) {
	cfg, used, err := config.LoadMerged(opts)
	if err != nil {
		return nil, err
	}

	log := ui.NewLogger(cfg.Debug)
	log.Debugf("config: %s", used)

	sched := scheduler.New(schedulerOptions(cfg, log))
	src := manganelo.New(sched, parser.New(), manganelo.Options{
		BaseURL:        cfg.BaseURL,
		MaxUpdatePages: cfg.MaxUpdatePages,
		Logger:         log,
	})

	return &session{cfg: cfg, log: log, sched: sched, src: src}, nil
}

func schedulerOptions(cfg *config.Config, log *ui.Logger) scheduler.Options {
	return scheduler.Options{
		Timeout:          cfg.Timeout,
		UserAgent:        scheduler.PickUserAgent(cfg.UserAgent),
		Cookie:           cfg.Cookie,
		CookieFile:       cfg.CookieFile,
		Headers:          manganelo.GlobalHeaders(cfg.BaseURL),
		RateLimit:        cfg.RateLimit,
		RateBurst:        cfg.RateBurst,
		Attempts:         cfg.Attempts,
		CloudflareBypass: cfg.CloudflareBypass,
		Logger:           log,
	}
}

// countingScheduler reports every request it forwards.
type countingScheduler struct {
	next    manganelo.Scheduler
	onFetch func()
}

func (c countingScheduler) Schedule(ctx context.Context, req scheduler.Request) ([]byte, error) {
	c.onFetch()
	return c.next.Schedule(ctx, req)
}

// describe turns well-known failures into short messages for the terminal.
func describe(err error) string {
	var fe *scheduler.FetchError
	switch {
	case errors.Is(err, providers.ErrNotFound):
		return fmt.Sprintf("not found (%v)", err)
	case errors.Is(err, providers.ErrCursorMismatch), errors.Is(err, providers.ErrInvalidCursor):
		return fmt.Sprintf("bad --cursor: %v", err)
	case errors.As(err, &fe) && fe.Status == 404:
		return fmt.Sprintf("not found: %s", fe.URL)
	case errors.Is(err, context.Canceled):
		return "interrupted"
	default:
		return err.Error()
	}
}
