// Command easyapply logs into LinkedIn, searches every configured
// position/location pair and applies to Easy Apply postings, recording each
// application in a ledger.
//
// Usage:
//
//	easyapply -config config.yml               # run a session
//	easyapply -config config.yml -dry-run      # search and annotate only
//	easyapply -config config.yml -check        # validate the config and exit
//	easyapply -config config.yml -set-password < pw.txt
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/easyapply/autoapply"
	"github.com/hazyhaar/easyapply/internal/browser"
	"github.com/hazyhaar/easyapply/internal/config"
	"github.com/hazyhaar/easyapply/internal/ledger"
	"github.com/hazyhaar/easyapply/internal/linkedin"
	"github.com/hazyhaar/easyapply/internal/resume"
	"github.com/hazyhaar/easyapply/internal/secrets"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the YAML (or JSON) config file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	dryRun := flag.Bool("dry-run", false, "search and annotate, never apply nor write the ledger")
	check := flag.Bool("check", false, "validate the config and exit")
	setPassword := flag.Bool("set-password", false, "store the password read from stdin in the OS keychain")
	deletePassword := flag.Bool("delete-password", false, "remove the stored password from the OS keychain")
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
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(logger, *configPath)
	if err != nil {
		logger.Error("easyapply: fatal", "error", err)
		os.Exit(1)
	}

	switch {
	case *setPassword:
		err = storePassword(cfg, os.Stdin)
	case *deletePassword:
		err = secrets.DeletePassword(cfg.Credentials.KeyringAccount)
	case *check:
		logger.Info("easyapply: config ok",
			"positions", len(cfg.Filters.Positions),
			"locations", len(cfg.Filters.Locations),
			"ledger", cfg.LedgerPath())
	default:
		err = run(ctx, logger, cfg, *dryRun)
	}
	if err != nil {
		logger.Error("easyapply: fatal", "error", err)
		os.Exit(1)
	}
}

func loadConfig(logger *slog.Logger, path string) (*config.Config, error) {
	raw, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg, v := config.NormalizeAndValidate(*raw)
	for _, w := range v.Warnings {
		logger.Warn("easyapply: config warning", "warning", w)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func storePassword(cfg *config.Config, r io.Reader) error {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	return secrets.SetPassword(cfg.Credentials.KeyringAccount, strings.TrimRight(line, "\r\n"))
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, dryRun bool) error {
	if err := secrets.LoadEnv(".env", cfg.Path(".env")); err != nil {
		return err
	}
	creds, err := secrets.Resolve(cfg.Credentials)
	if err != nil {
		return err
	}

	led, err := ledger.Open(ctx, cfg.LedgerPath())
	if err != nil {
		return err
	}
	defer led.Close()

	if dir := filepath.Dir(cfg.ResumeOutputPath()); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("resume output dir: %w", err)
		}
	}

	stealth := browser.LevelHeadless
	if !cfg.Browser.IsHeadless() {
		stealth = browser.LevelHeadful
	}
	bcfg := browser.Config{
		RemoteURL:         cfg.Browser.Remote,
		UserDataDir:       cfg.Path(cfg.Browser.UserDataDir),
		ResourceBlocking:  cfg.Browser.ResourceBlocking,
		Stealth:           stealth,
		XvfbDisplay:       cfg.Browser.XvfbDisplay,
		NavigationTimeout: cfg.Timeouts.Navigation,
		SelectorTimeout:   cfg.Timeouts.Selector,
		Logger:            logger,
	}
	launcher := autoapply.LauncherFunc(func(ctx context.Context) (autoapply.Browser, error) {
		m, err := browser.Launch(ctx, bcfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	})

	site := linkedin.New(linkedin.Config{
		BaseURL:       cfg.Browser.SiteURL,
		CookiePoll:    cfg.Login.CookiePoll,
		CookieTimeout: cfg.Login.CookieTimeout,
		StepPause:     cfg.Timeouts.StepPause,
		MaxSteps:      cfg.Apply.MaxSteps,
		DebugHTML:     cfg.Path(cfg.DebugHTML),
		Logger:        logger,
	})

	runner, err := autoapply.New(cfg, autoapply.Deps{
		Launcher: launcher,
		Site:     site,
		Ledger:   led,
		Annotator: resume.Annotator{
			Template: cfg.ResumeTemplatePath(),
			Output:   cfg.ResumeOutputPath(),
			Known:    cfg.Resume.KnownSkills,
		},
		Credentials: creds,
		Logger:      logger,
		DryRun:      dryRun,
	})
	if err != nil {
		return err
	}

	sum, err := runner.Run(ctx)
	logger.Info("easyapply: session done", "summary", sum)
	return err
}
