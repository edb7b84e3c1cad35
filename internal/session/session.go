// Package session captures the authenticated browser state (cookies plus
// local and session storage) once after login and re-applies it before
// each search.
package session

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/hazyhaar/easyapply/internal/browser"
)

// Snapshot is the authenticated state of one page.
type Snapshot struct {
	Cookies []browser.Cookie
	Local   map[string]string
	Session map[string]string
}

// Empty reports whether the snapshot holds nothing to restore.
func (s Snapshot) Empty() bool {
	return len(s.Cookies) == 0 && len(s.Local) == 0 && len(s.Session) == 0
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Cookies: slices.Clone(s.Cookies),
		Local:   maps.Clone(s.Local),
		Session: maps.Clone(s.Session),
	}
}

// Capture reads cookies and both storage areas from p.
func Capture(ctx context.Context, p browser.Page) (Snapshot, error) {
	var s Snapshot
	var err error

	if s.Cookies, err = p.Cookies(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("session: capture cookies: %w", err)
	}
	if s.Local, err = p.Storage(ctx, browser.LocalStorage); err != nil {
		return Snapshot{}, fmt.Errorf("session: capture localStorage: %w", err)
	}
	if s.Session, err = p.Storage(ctx, browser.SessionStorage); err != nil {
		return Snapshot{}, fmt.Errorf("session: capture sessionStorage: %w", err)
	}
	return s, nil
}

// Restore writes every cookie and storage entry of s back into p. Keys
// already on the page but absent from s are left alone.
func Restore(ctx context.Context, p browser.Page, s Snapshot) error {
	if len(s.Cookies) > 0 {
		if err := p.SetCookies(ctx, s.Cookies); err != nil {
			return fmt.Errorf("session: restore cookies: %w", err)
		}
	}
	if len(s.Local) > 0 {
		if err := p.SetStorage(ctx, browser.LocalStorage, s.Local); err != nil {
			return fmt.Errorf("session: restore localStorage: %w", err)
		}
	}
	if len(s.Session) > 0 {
		if err := p.SetStorage(ctx, browser.SessionStorage, s.Session); err != nil {
			return fmt.Errorf("session: restore sessionStorage: %w", err)
		}
	}
	return nil
}

// Cookie returns the first cookie named one of names.
func (s Snapshot) Cookie(names ...string) (browser.Cookie, bool) {
	for _, c := range s.Cookies {
		if slices.Contains(names, c.Name) {
			return c, true
		}
	}
	return browser.Cookie{}, false
}
