// Package browsertest provides an in-memory browser.Page for tests of the
// site flows and the orchestrator.
package browsertest

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/hazyhaar/easyapply/internal/browser"
)

// Page is a scripted fake page. Selectors and XPaths are plain strings:
// an element "exists" when Present[selector] is true.
type Page struct {
	mu sync.Mutex

	URL     string
	Visited []string
	Present map[string]bool
	Clicks  []string
	Typed   map[string]string
	Uploads map[string][]string
	Evals   []string

	// HTMLByURL is served by HTML for the current URL.
	HTMLByURL map[string]string

	Jar     []browser.Cookie
	Local   map[string]string
	Session map[string]string

	// SetCookieCalls and SetStorageCalls count restore operations.
	SetCookieCalls  int
	SetStorageCalls int
	Closed          int

	// OnNavigate, when set, runs on every Navigate; a non-nil error fails it.
	OnNavigate func(p *Page, url string) error
	// OnClick, when set, runs after every click so tests can change the DOM.
	OnClick func(p *Page, selector string)
	// OnEval, when set, supplies the result of Eval.
	OnEval func(p *Page, js string, args []any) string
}

// NewPage returns an empty fake page.
func NewPage() *Page {
	return &Page{
		Present:   map[string]bool{},
		Typed:     map[string]string{},
		Uploads:   map[string][]string{},
		HTMLByURL: map[string]string{},
		Local:     map[string]string{},
		Session:   map[string]string{},
	}
}

var _ browser.Page = (*Page)(nil)

// Set marks selectors present (true) or absent (false). Call it from
// OnClick/OnNavigate hooks, which already hold the lock.
func (p *Page) Set(present bool, selectors ...string) {
	for _, s := range selectors {
		p.Present[s] = present
	}
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	p.URL = url
	p.Visited = append(p.Visited, url)
	if p.OnNavigate != nil {
		return p.OnNavigate(p, url)
	}
	return nil
}

func (p *Page) WaitElement(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.Present[selector] {
		return fmt.Errorf("browsertest: %s not found", selector)
	}
	return nil
}

func (p *Page) Has(ctx context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Present[selector], nil
}

func (p *Page) HasXPath(ctx context.Context, xpath string) (bool, error) {
	return p.Has(ctx, xpath)
}

func (p *Page) Click(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.Present[selector] {
		return fmt.Errorf("browsertest: click %s: not found", selector)
	}
	p.Clicks = append(p.Clicks, selector)
	if p.OnClick != nil {
		p.OnClick(p, selector)
	}
	return nil
}

func (p *Page) ClickXPath(ctx context.Context, xpath string) error {
	return p.Click(ctx, xpath)
}

func (p *Page) Type(ctx context.Context, selector, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.Present[selector] {
		return fmt.Errorf("browsertest: type %s: not found", selector)
	}
	p.Typed[selector] = text
	return nil
}

func (p *Page) Upload(ctx context.Context, selector string, paths ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.Present[selector] {
		return fmt.Errorf("browsertest: upload %s: not found", selector)
	}
	p.Uploads[selector] = append([]string(nil), paths...)
	return nil
}

func (p *Page) Eval(ctx context.Context, js string, args ...any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Evals = append(p.Evals, js)
	if p.OnEval != nil {
		return p.OnEval(p, js, args), nil
	}
	return "", nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.HTMLByURL[p.URL], nil
}

func (p *Page) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]browser.Cookie(nil), p.Jar...), nil
}

// SetCookies replaces cookies with the same name, domain and path.
func (p *Page) SetCookies(ctx context.Context, cookies []browser.Cookie) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SetCookieCalls++
	for _, c := range cookies {
		replaced := false
		for i, have := range p.Jar {
			if have.Name == c.Name && have.Domain == c.Domain && have.Path == c.Path {
				p.Jar[i] = c
				replaced = true
			}
		}
		if !replaced {
			p.Jar = append(p.Jar, c)
		}
	}
	return nil
}

func (p *Page) Storage(ctx context.Context, area browser.StorageArea) (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.area(area)), nil
}

func (p *Page) SetStorage(ctx context.Context, area browser.StorageArea, data map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SetStorageCalls++
	maps.Copy(p.area(area), data)
	return nil
}

func (p *Page) area(a browser.StorageArea) map[string]string {
	if a == browser.SessionStorage {
		return p.Session
	}
	return p.Local
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed++
	return nil
}
