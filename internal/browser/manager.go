// Package browser manages the Chrome process driven through Rod: launch or
// connect, stealth tabs, resource blocking, and a single teardown path.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// StealthLevel controls the browser automation mode.
type StealthLevel int

const (
	LevelHeadless StealthLevel = 1 // Rod headless + stealth
	LevelHeadful  StealthLevel = 2 // Rod headful + stealth, on Xvfb when a display is set
)

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// UserDataDir keeps the Chrome profile between runs. Empty = temporary.
	UserDataDir string

	// ResourceBlocking lists resource types to block (images, fonts, media, stylesheets).
	ResourceBlocking []string

	Stealth StealthLevel

	// XvfbDisplay starts a private Xvfb on this display (":99") in headful
	// mode. Empty = use the current DISPLAY.
	XvfbDisplay string

	// NavigationTimeout bounds page loads. Default: 120s.
	NavigationTimeout time.Duration
	// SelectorTimeout bounds element waits. Default: 120s.
	SelectorTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Stealth == 0 {
		c.Stealth = LevelHeadless
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 120 * time.Second
	}
	if c.SelectorTimeout <= 0 {
		c.SelectorTimeout = 120 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns one Chrome process.
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	xvfb    *exec.Cmd
	pages   []*Tab
	closed  bool
}

// NewManager creates a Manager. Call Start to launch Chrome.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Launch creates and starts a Manager.
func Launch(ctx context.Context, cfg Config) (*Manager, error) {
	m := NewManager(cfg)
	if err := m.Start(ctx); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// Start launches Chrome, or connects to the remote instance.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("browser: manager is closed")
	}
	if m.browser != nil {
		return nil
	}

	log := m.cfg.Logger

	if m.cfg.Stealth == LevelHeadful && m.cfg.XvfbDisplay != "" {
		if err := m.startXvfb(ctx); err != nil {
			return fmt.Errorf("browser: xvfb: %w", err)
		}
	}

	var wsURL string
	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Context(ctx)

		if m.cfg.Stealth == LevelHeadful {
			l = l.Headless(false)
			if m.cfg.XvfbDisplay != "" {
				l = l.Env(displayEnv(m.cfg.XvfbDisplay)...)
			}
		} else {
			l = l.Headless(true)
		}
		if m.cfg.UserDataDir != "" {
			l = l.UserDataDir(m.cfg.UserDataDir)
		}

		// Anti-detection flags.
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "stealth", m.cfg.Stealth)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("browser: connect: %w", err)
	}
	m.browser = b
	return nil
}

// NewPage opens a stealth tab.
func (m *Manager) NewPage(ctx context.Context) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.browser == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	page, err := stealth.Page(m.browser)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width: 1366, Height: 900, DeviceScaleFactor: 1,
	}); err != nil {
		m.cfg.Logger.Warn("browser: set viewport failed", "error", err)
	}

	if len(m.cfg.ResourceBlocking) > 0 {
		if err := applyResourceBlocking(page, m.cfg.ResourceBlocking); err != nil {
			m.cfg.Logger.Warn("browser: resource blocking failed", "error", err)
		}
	}

	tab := &Tab{
		page:       page,
		navTimeout: m.cfg.NavigationTimeout,
		selTimeout: m.cfg.SelectorTimeout,
		logger:     m.cfg.Logger,
	}
	m.pages = append(m.pages, tab)
	return tab, nil
}

// Close shuts down tabs, Chrome and Xvfb. Safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	for _, t := range m.pages {
		t.Close()
	}
	m.pages = nil

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	m.stopXvfb()
	m.cfg.Logger.Info("browser: closed")
	return err
}
