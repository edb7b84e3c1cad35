// Package linkedin drives the LinkedIn pages: login, job search and the
// Easy Apply wizard. Every step goes through browser.Page, so the flows run
// unchanged against a real tab or a browsertest fake.
package linkedin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hazyhaar/easyapply/internal/browser"
	"github.com/hazyhaar/easyapply/internal/jobs"
	"github.com/hazyhaar/easyapply/internal/retry"
	"github.com/hazyhaar/easyapply/internal/secrets"
	"github.com/hazyhaar/easyapply/internal/session"
)

// Selectors used on the site. XPath values start with "//".
const (
	SelUsername = "#username"
	SelPassword = "#password"
	SelSubmit   = `button[type="submit"]`

	SelSearchLayout = ".scaffold-layout"

	XPathAlreadyApplied = `//span[contains(., 'already applied')]`
	XPathEasyApply      = `//button[contains(., 'Easy Apply')]`
	SelFileInput        = `input[type="file"]`
	SelSubmitApp        = `button[aria-label="Submit application"]`
	SelNext             = `button[aria-label="Next"]`
	SelContinue         = `button[aria-label="Continue to next step"]`
	SelReview           = `button[aria-label="Review your application"]`

	SelDescription = ".jobs-description__content, .jobs-description-content__text, .show-more-less-html__markup"
)

// SessionCookies mark an authenticated session.
var SessionCookies = []string{"li_at", "JSESSIONID"}

var (
	ErrLoginTimeout   = errors.New("linkedin: session cookie not found within timeout")
	ErrAlreadyApplied = errors.New("linkedin: already applied")
	ErrNoEasyApply    = errors.New("linkedin: no Easy Apply button")
	ErrAbandoned      = errors.New("linkedin: application abandoned before submit")
)

// Config configures a Site.
type Config struct {
	// BaseURL is the site origin. Default: https://www.linkedin.com.
	BaseURL string

	// CookiePoll and CookieTimeout bound the post-login cookie wait.
	// Defaults: 1s and 60s.
	CookiePoll    time.Duration
	CookieTimeout time.Duration

	// StepPause is the wait after each wizard click. Default: 1s.
	StepPause time.Duration
	// MaxSteps bounds the Next clicks of one application. Default: 10.
	MaxSteps int

	// DebugHTML, when set, receives the HTML of each search results page.
	DebugHTML string

	Clock  retry.Clock
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://www.linkedin.com"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.CookiePoll <= 0 {
		c.CookiePoll = time.Second
	}
	if c.CookieTimeout <= 0 {
		c.CookieTimeout = 60 * time.Second
	}
	if c.StepPause <= 0 {
		c.StepPause = time.Second
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = 10
	}
	if c.Clock == nil {
		c.Clock = retry.SystemClock{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Site implements the login, search and apply flows.
type Site struct {
	cfg Config
	log *slog.Logger
}

// New creates a Site.
func New(cfg Config) *Site {
	cfg.defaults()
	return &Site{cfg: cfg, log: cfg.Logger}
}

// BaseURL returns the site origin.
func (s *Site) BaseURL() string { return s.cfg.BaseURL }

// Login submits the credentials and waits for a session cookie.
func (s *Site) Login(ctx context.Context, page browser.Page, creds secrets.Credentials) error {
	s.log.InfoContext(ctx, "linkedin: attempting login", "username", creds.Username)

	if err := page.Navigate(ctx, s.cfg.BaseURL+"/login"); err != nil {
		return fmt.Errorf("linkedin: login page: %w", err)
	}
	if err := page.Type(ctx, SelUsername, creds.Username); err != nil {
		return fmt.Errorf("linkedin: username: %w", err)
	}
	if err := page.Type(ctx, SelPassword, creds.Password); err != nil {
		return fmt.Errorf("linkedin: password: %w", err)
	}
	if err := page.Click(ctx, SelSubmit); err != nil {
		return fmt.Errorf("linkedin: submit: %w", err)
	}

	err := retry.Poll(ctx, retry.PollPolicy{
		Interval: s.cfg.CookiePoll,
		Timeout:  s.cfg.CookieTimeout,
		Clock:    s.cfg.Clock,
	}, func(ctx context.Context) (bool, error) {
		cookies, err := page.Cookies(ctx)
		if err != nil {
			return false, err
		}
		if c, ok := (session.Snapshot{Cookies: cookies}).Cookie(SessionCookies...); ok {
			s.log.InfoContext(ctx, "linkedin: session cookie found", "cookie", c.Name)
			return true, nil
		}
		s.log.DebugContext(ctx, "linkedin: waiting for session cookie")
		return false, nil
	})
	if errors.Is(err, retry.ErrTimeout) {
		return ErrLoginTimeout
	}
	if err != nil {
		return fmt.Errorf("linkedin: poll cookies: %w", err)
	}

	s.log.InfoContext(ctx, "linkedin: logged in")
	return nil
}

const scrollResultsJS = `() => {
	const el = document.querySelector('.scaffold-layout__list-detail-container')
		|| document.querySelector('.scaffold-layout__list');
	if (el) { el.scrollTo(0, el.scrollHeight); }
	window.scrollTo(0, document.body.scrollHeight);
	return '';
}`

// Search loads searchURL and returns the postings on the results page. A
// missing results layout is returned as an error.
func (s *Site) Search(ctx context.Context, page browser.Page, searchURL string) ([]jobs.Posting, error) {
	s.log.InfoContext(ctx, "linkedin: loading job search page", "url", searchURL)

	if err := page.Navigate(ctx, searchURL); err != nil {
		return nil, fmt.Errorf("linkedin: search: %w", err)
	}
	if err := page.WaitElement(ctx, SelSearchLayout); err != nil {
		return nil, fmt.Errorf("linkedin: search results: %w", err)
	}
	if _, err := page.Eval(ctx, scrollResultsJS); err != nil {
		s.log.WarnContext(ctx, "linkedin: scroll results failed", "error", err)
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("linkedin: search html: %w", err)
	}
	if s.cfg.DebugHTML != "" {
		if err := os.WriteFile(s.cfg.DebugHTML, []byte(html), 0o644); err != nil {
			s.log.WarnContext(ctx, "linkedin: save search html failed", "path", s.cfg.DebugHTML, "error", err)
		} else {
			s.log.DebugContext(ctx, "linkedin: search html saved", "path", s.cfg.DebugHTML)
		}
	}

	postings, err := ParseJobCards(html, s.cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "linkedin: job search page parsed", "postings", len(postings))
	return postings, nil
}

const outerHTMLJS = `(sel) => {
	const el = document.querySelector(sel);
	return el ? el.outerHTML : '';
}`

// Describe loads the posting and returns its description HTML.
func (s *Site) Describe(ctx context.Context, page browser.Page, p jobs.Posting) (string, error) {
	if err := page.Navigate(ctx, p.Link); err != nil {
		return "", fmt.Errorf("linkedin: describe: %w", err)
	}
	if err := page.WaitElement(ctx, SelDescription); err != nil {
		return "", fmt.Errorf("linkedin: describe: %w", err)
	}
	return page.Eval(ctx, outerHTMLJS, SelDescription)
}

// pause waits StepPause on the configured clock.
func (s *Site) pause(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.cfg.Clock.After(s.cfg.StepPause):
		return nil
	}
}

func has(ctx context.Context, page browser.Page, selector string) (bool, error) {
	if strings.HasPrefix(selector, "//") {
		return page.HasXPath(ctx, selector)
	}
	return page.Has(ctx, selector)
}
