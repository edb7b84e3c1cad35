package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/easyapply/internal/browser"
	"github.com/hazyhaar/easyapply/internal/retry"
)

const (
	ContainerSelector = ".shadow"
	ElementSelector   = "#hoge"
)

// ErrShadowElementNotFound is returned when the element never appears in
// the shadow root.
var ErrShadowElementNotFound = errors.New("demo: shadow element not found")

// Only run inside the page. Returns "1" when the element exists.
const findShadowJS = `(container, sel) => {
	try {
		const host = document.querySelector(container);
		return host && host.shadowRoot && host.shadowRoot.querySelector(sel) ? '1' : '';
	} catch (e) {
		return '';
	}
}`

const clickShadowJS = `(container, sel) => {
	const el = document.querySelector(container).shadowRoot.querySelector(sel);
	el.click();
	return 'clicked';
}`

// FlowConfig configures RunFlow.
type FlowConfig struct {
	// Timeout bounds the wait for the shadow element. Default: 15s.
	Timeout time.Duration
	// Interval is the poll interval. Default: 250ms.
	Interval time.Duration
	Clock    retry.Clock
	Logger   *slog.Logger
}

func (c *FlowConfig) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.Interval <= 0 {
		c.Interval = 250 * time.Millisecond
	}
	if c.Clock == nil {
		c.Clock = retry.SystemClock{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// RunFlow opens pageURL, waits for ElementSelector inside the shadow root
// of ContainerSelector and clicks it.
func RunFlow(ctx context.Context, page browser.Page, pageURL string, cfg FlowConfig) error {
	cfg.defaults()
	log := cfg.Logger

	if err := page.Navigate(ctx, pageURL); err != nil {
		return fmt.Errorf("demo: open page: %w", err)
	}
	log.InfoContext(ctx, "demo: page opened", "url", pageURL)

	err := retry.Poll(ctx, retry.PollPolicy{
		Interval: cfg.Interval,
		Timeout:  cfg.Timeout,
		Clock:    cfg.Clock,
	}, func(ctx context.Context) (bool, error) {
		v, err := page.Eval(ctx, findShadowJS, ContainerSelector, ElementSelector)
		if err != nil {
			return false, err
		}
		return v != "", nil
	})
	if errors.Is(err, retry.ErrTimeout) {
		return ErrShadowElementNotFound
	}
	if err != nil {
		return fmt.Errorf("demo: wait shadow element: %w", err)
	}

	if _, err := page.Eval(ctx, clickShadowJS, ContainerSelector, ElementSelector); err != nil {
		return fmt.Errorf("demo: click shadow element: %w", err)
	}
	log.InfoContext(ctx, "demo: clicked")
	return nil
}
