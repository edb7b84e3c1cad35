// Command shadowdemo serves a page with a button inside a shadow root on
// 127.0.0.1:5000 and, once listening, opens it in Chrome and clicks the
// button.
//
// Usage:
//
//	shadowdemo                 # headful Chrome
//	shadowdemo -headless       # headless Chrome
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/easyapply/internal/browser"
	"github.com/hazyhaar/easyapply/internal/demo"
)

func main() {
	addr := flag.String("addr", demo.Addr, "listen address")
	headless := flag.Bool("headless", false, "run Chrome headless")
	linger := flag.Duration("linger", 10*time.Second, "keep the browser open after the click")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *addr, *headless, *linger); err != nil {
		logger.Error("shadowdemo: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, addr string, headless bool, linger time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info("shadowdemo: listening", "addr", ln.Addr().String())

	srv := &http.Server{
		Handler:           demo.NewRouter(logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// The demo ends the server when it finishes, successfully or not.
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutCtx)
		}()
		return runBrowser(gctx, logger, "http://"+ln.Addr().String(), headless, linger)
	})
	return g.Wait()
}

func runBrowser(ctx context.Context, logger *slog.Logger, pageURL string, headless bool, linger time.Duration) error {
	stealth := browser.LevelHeadful
	if headless {
		stealth = browser.LevelHeadless
	}
	m, err := browser.Launch(ctx, browser.Config{Stealth: stealth, Logger: logger})
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer m.Close()

	page, err := m.NewPage(ctx)
	if err != nil {
		return err
	}
	if err := demo.RunFlow(ctx, page, pageURL, demo.FlowConfig{Logger: logger}); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-time.After(linger):
	}
	return nil
}
