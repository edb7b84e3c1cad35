package browser

import "context"

// StorageArea names a Web Storage area.
type StorageArea string

const (
	LocalStorage   StorageArea = "localStorage"
	SessionStorage StorageArea = "sessionStorage"
)

// Cookie is a browser cookie, independent of the CDP types.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"` // seconds since epoch, <= 0 for session cookies
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Page is the set of page operations the site flows need. Tab implements
// it over Rod; browsertest.Page is an in-memory fake.
type Page interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// WaitElement blocks until selector matches or the selector timeout
	// elapses.
	WaitElement(ctx context.Context, selector string) error
	// Has reports whether selector currently matches, without waiting.
	Has(ctx context.Context, selector string) (bool, error)
	HasXPath(ctx context.Context, xpath string) (bool, error)
	Click(ctx context.Context, selector string) error
	ClickXPath(ctx context.Context, xpath string) error
	Type(ctx context.Context, selector, text string) error
	Upload(ctx context.Context, selector string, paths ...string) error
	// Eval runs a JS function expression and returns its result as a string.
	Eval(ctx context.Context, js string, args ...any) (string, error)
	HTML(ctx context.Context) (string, error)

	Cookies(ctx context.Context) ([]Cookie, error)
	SetCookies(ctx context.Context, cookies []Cookie) error
	Storage(ctx context.Context, area StorageArea) (map[string]string, error)
	SetStorage(ctx context.Context, area StorageArea, data map[string]string) error

	Close() error
}

var _ Page = (*Tab)(nil)
