package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Tab is a Rod page with per-operation timeouts.
type Tab struct {
	page       *rod.Page
	navTimeout time.Duration
	selTimeout time.Duration
	logger     *slog.Logger
}

// Rod returns the underlying page.
func (t *Tab) Rod() *rod.Page { return t.page }

func (t *Tab) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, t.navTimeout)
	defer cancel()

	p := t.page.Context(navCtx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		t.logger.Warn("browser: wait load timeout", "url", url, "error", err)
	}
	return nil
}

func (t *Tab) WaitElement(ctx context.Context, selector string) error {
	selCtx, cancel := context.WithTimeout(ctx, t.selTimeout)
	defer cancel()
	if _, err := t.page.Context(selCtx).Element(selector); err != nil {
		return fmt.Errorf("browser: wait %s: %w", selector, err)
	}
	return nil
}

func (t *Tab) Has(ctx context.Context, selector string) (bool, error) {
	ok, _, err := t.page.Context(ctx).Has(selector)
	if err != nil {
		return false, fmt.Errorf("browser: has %s: %w", selector, err)
	}
	return ok, nil
}

func (t *Tab) HasXPath(ctx context.Context, xpath string) (bool, error) {
	ok, _, err := t.page.Context(ctx).HasX(xpath)
	if err != nil {
		return false, fmt.Errorf("browser: has %s: %w", xpath, err)
	}
	return ok, nil
}

func (t *Tab) Click(ctx context.Context, selector string) error {
	return t.clickWith(ctx, selector, func(p *rod.Page) (*rod.Element, error) { return p.Element(selector) })
}

func (t *Tab) ClickXPath(ctx context.Context, xpath string) error {
	return t.clickWith(ctx, xpath, func(p *rod.Page) (*rod.Element, error) { return p.ElementX(xpath) })
}

func (t *Tab) clickWith(ctx context.Context, what string, find func(*rod.Page) (*rod.Element, error)) error {
	selCtx, cancel := context.WithTimeout(ctx, t.selTimeout)
	defer cancel()
	el, err := find(t.page.Context(selCtx))
	if err != nil {
		return fmt.Errorf("browser: find %s: %w", what, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("browser: click %s: %w", what, err)
	}
	return nil
}

func (t *Tab) Type(ctx context.Context, selector, text string) error {
	selCtx, cancel := context.WithTimeout(ctx, t.selTimeout)
	defer cancel()
	el, err := t.page.Context(selCtx).Element(selector)
	if err != nil {
		return fmt.Errorf("browser: find %s: %w", selector, err)
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("browser: type into %s: %w", selector, err)
	}
	return nil
}

func (t *Tab) Upload(ctx context.Context, selector string, paths ...string) error {
	selCtx, cancel := context.WithTimeout(ctx, t.selTimeout)
	defer cancel()
	el, err := t.page.Context(selCtx).Element(selector)
	if err != nil {
		return fmt.Errorf("browser: find %s: %w", selector, err)
	}
	if err := el.SetFiles(paths); err != nil {
		return fmt.Errorf("browser: upload: %w", err)
	}
	return nil
}

func (t *Tab) Eval(ctx context.Context, js string, args ...any) (string, error) {
	res, err := t.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return "", fmt.Errorf("browser: eval: %w", err)
	}
	return res.Value.Str(), nil
}

func (t *Tab) HTML(ctx context.Context) (string, error) {
	html, err := t.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("browser: get DOM: %w", err)
	}
	return html, nil
}

func (t *Tab) Cookies(ctx context.Context) ([]Cookie, error) {
	raw, err := t.page.Context(ctx).Cookies(nil)
	if err != nil {
		return nil, fmt.Errorf("browser: cookies: %w", err)
	}
	out := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		out = append(out, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return out, nil
}

func (t *Tab) SetCookies(ctx context.Context, cookies []Cookie) error {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  proto.TimeSinceEpoch(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: proto.NetworkCookieSameSite(c.SameSite),
		})
	}
	if err := t.page.Context(ctx).SetCookies(params); err != nil {
		return fmt.Errorf("browser: set cookies: %w", err)
	}
	return nil
}

const readStorageJS = `(area) => {
	const s = window[area];
	const out = {};
	for (let i = 0; i < s.length; i++) {
		const k = s.key(i);
		out[k] = s.getItem(k);
	}
	return JSON.stringify(out);
}`

const writeStorageJS = `(area, data) => {
	const s = window[area];
	for (const k of Object.keys(data)) {
		s.setItem(k, data[k]);
	}
}`

func (t *Tab) Storage(ctx context.Context, area StorageArea) (map[string]string, error) {
	s, err := t.Eval(ctx, readStorageJS, string(area))
	if err != nil {
		return nil, fmt.Errorf("browser: read %s: %w", area, err)
	}
	out := map[string]string{}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("browser: decode %s: %w", area, err)
	}
	return out, nil
}

func (t *Tab) SetStorage(ctx context.Context, area StorageArea, data map[string]string) error {
	if len(data) == 0 {
		return nil
	}
	if _, err := t.page.Context(ctx).Eval(writeStorageJS, string(area), data); err != nil {
		return fmt.Errorf("browser: write %s: %w", area, err)
	}
	return nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.page != nil {
		err := t.page.Close()
		t.page = nil
		return err
	}
	return nil
}
