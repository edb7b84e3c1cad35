// Package autoapply runs one job-application session: launch the browser,
// log in, capture the session, then search every position/location pair and
// process each posting against the ledger.
//
// Usage:
//
//	r, err := autoapply.New(cfg, autoapply.Deps{
//		Launcher:    launcher,
//		Site:        linkedin.New(siteCfg),
//		Ledger:      led,
//		Annotator:   resume.Annotator{...},
//		Credentials: creds,
//	})
//	sum, err := r.Run(ctx)
package autoapply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hazyhaar/easyapply/internal/browser"
	"github.com/hazyhaar/easyapply/internal/config"
	"github.com/hazyhaar/easyapply/internal/jobs"
	"github.com/hazyhaar/easyapply/internal/ledger"
	"github.com/hazyhaar/easyapply/internal/retry"
	"github.com/hazyhaar/easyapply/internal/search"
	"github.com/hazyhaar/easyapply/internal/secrets"
	"github.com/hazyhaar/easyapply/internal/session"
)

// Browser is a launched browser.
type Browser interface {
	NewPage(ctx context.Context) (browser.Page, error)
	Close() error
}

// Launcher starts a browser.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context) (Browser, error)

func (f LauncherFunc) Launch(ctx context.Context) (Browser, error) { return f(ctx) }

// Site is the job site. linkedin.Site implements it.
type Site interface {
	BaseURL() string
	Login(ctx context.Context, page browser.Page, creds secrets.Credentials) error
	Search(ctx context.Context, page browser.Page, searchURL string) ([]jobs.Posting, error)
	Describe(ctx context.Context, page browser.Page, p jobs.Posting) (string, error)
	Apply(ctx context.Context, page browser.Page, p jobs.Posting, resumePath string) error
}

// Annotator writes the per-job resume and returns its path.
type Annotator interface {
	Prepare(text string) (path string, skills []string, err error)
}

// Deps are the collaborators of a Runner.
type Deps struct {
	Launcher    Launcher
	Site        Site
	Ledger      ledger.Ledger
	Annotator   Annotator
	Credentials secrets.Credentials

	// Clock drives login retry delays and ledger dates. Default: system clock.
	Clock retry.Clock
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// DryRun searches and annotates but never applies nor writes the ledger.
	DryRun bool
}

// Runner orchestrates one session. It owns the browser handle and the
// session snapshot for the duration of Run.
type Runner struct {
	cfg  *config.Config
	deps Deps
	log  *slog.Logger

	limiter *rate.Limiter
	state   atomic.Int32

	browser  Browser
	snapshot session.Snapshot
	seen     map[string]bool
	summary  Summary
}

// New validates deps and creates a Runner.
func New(cfg *config.Config, deps Deps) (*Runner, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("autoapply: nil config")
	case deps.Launcher == nil:
		return nil, errors.New("autoapply: nil launcher")
	case deps.Site == nil:
		return nil, errors.New("autoapply: nil site")
	case deps.Ledger == nil:
		return nil, errors.New("autoapply: nil ledger")
	case deps.Annotator == nil:
		return nil, errors.New("autoapply: nil annotator")
	}
	if deps.Clock == nil {
		deps.Clock = retry.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.Apply.PerMinute > 0 {
		limit = rate.Limit(cfg.Apply.PerMinute / 60)
	}

	r := &Runner{
		cfg:     cfg,
		deps:    deps,
		log:     deps.Logger,
		limiter: rate.NewLimiter(limit, 1),
	}
	r.state.Store(int32(StateIdle))
	return r, nil
}

// State returns the current state.
func (r *Runner) State() State { return State(r.state.Load()) }

func (r *Runner) setState(ctx context.Context, s State) {
	prev := State(r.state.Swap(int32(s)))
	if prev != s {
		r.log.DebugContext(ctx, "autoapply: state", "from", prev.String(), "to", s.String())
	}
}

// Run executes the session. Login failure is fatal and returned; a failing
// search is logged, counted and skipped. The browser is closed exactly once
// before Run returns.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	runID := uuid.NewString()
	r.log = r.deps.Logger.With("run_id", runID)
	r.summary = Summary{}
	r.seen = make(map[string]bool)
	r.snapshot = session.Snapshot{}

	r.log.InfoContext(ctx, "autoapply: run starting",
		"positions", len(r.cfg.Filters.Positions),
		"locations", len(r.cfg.Filters.Locations),
		"dry_run", r.deps.DryRun)

	r.setState(ctx, StateLaunching)
	b, err := r.deps.Launcher.Launch(ctx)
	if err != nil {
		r.setState(ctx, StateClosed)
		return r.summary, fmt.Errorf("autoapply: launch: %w", err)
	}
	r.browser = b
	defer r.closeBrowser(ctx)

	page, err := b.NewPage(ctx)
	if err != nil {
		return r.summary, fmt.Errorf("autoapply: new page: %w", err)
	}

	r.setState(ctx, StateLoggingIn)
	err = retry.Do(ctx, retry.Policy{
		Attempts: r.cfg.Login.Attempts,
		Delay:    r.cfg.Login.Delay,
		Clock:    r.deps.Clock,
		Logger:   r.log,
		Name:     "login",
	}, func(ctx context.Context) error {
		return r.deps.Site.Login(ctx, page, r.deps.Credentials)
	})
	if err != nil {
		r.log.ErrorContext(ctx, "autoapply: login failed", "error", err)
		return r.summary, fmt.Errorf("autoapply: login: %w", err)
	}

	snap, err := session.Capture(ctx, page)
	if err != nil {
		return r.summary, fmt.Errorf("autoapply: %w", err)
	}
	r.snapshot = snap
	r.setState(ctx, StateSessionCaptured)
	r.log.InfoContext(ctx, "autoapply: session captured",
		"cookies", len(snap.Cookies), "local", len(snap.Local), "session", len(snap.Session))

	for _, position := range r.cfg.Filters.Positions {
		for _, location := range r.cfg.Filters.Locations {
			if err := ctx.Err(); err != nil {
				return r.summary, err
			}
			if err := r.searchAndApply(ctx, page, position, location); err != nil {
				return r.summary, err
			}
		}
	}

	r.log.InfoContext(ctx, "autoapply: run finished", "summary", r.summary)
	return r.summary, nil
}

func (r *Runner) closeBrowser(ctx context.Context) {
	if r.browser == nil {
		return
	}
	if err := r.browser.Close(); err != nil {
		r.log.WarnContext(ctx, "autoapply: close browser", "error", err)
	}
	r.browser = nil
	r.setState(ctx, StateClosed)
}

// searchAndApply runs one position/location iteration. Only ledger and
// context errors are returned; search failures are logged and counted.
func (r *Runner) searchAndApply(ctx context.Context, page browser.Page, position, location string) error {
	log := r.log.With("position", position, "location", location)
	r.setState(ctx, StateSearching)
	r.summary.Searches++

	if err := session.Restore(ctx, page, r.snapshot); err != nil {
		r.summary.SearchErrors++
		log.ErrorContext(ctx, "autoapply: restore session failed", "error", err)
		return nil
	}

	u := search.BuildURL(r.deps.Site.BaseURL(), r.cfg.Filters, position, location)
	postings, err := r.deps.Site.Search(ctx, page, u)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.summary.SearchErrors++
		log.ErrorContext(ctx, "autoapply: search failed", "url", u, "error", err)
		return nil
	}
	r.summary.Found += len(postings)

	bl := jobs.Blacklist{Terms: r.cfg.Filters.Blacklist, Titles: r.cfg.Filters.BlacklistTitles}
	kept := bl.Filter(postings)
	r.summary.Blacklisted += len(postings) - len(kept)
	log.InfoContext(ctx, "autoapply: search done", "found", len(postings), "kept", len(kept))

	r.setState(ctx, StateApplying)
	for _, p := range kept {
		p.Position, p.Location = position, location
		if err := r.processJob(ctx, page, p); err != nil {
			return err
		}
	}
	return nil
}
