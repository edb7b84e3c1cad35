// Package config loads the easyapply YAML configuration. JSON files parse
// too, and the flat keys of a legacy config.json (positions, jobType,
// blackListTitles, username, ...) are accepted at the top level.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level easyapply configuration.
type Config struct {
	Credentials Credentials `yaml:",inline"`
	Filters     Filters     `yaml:",inline"`

	OutputFilename string        `yaml:"output_filename"`
	Uploads        Uploads       `yaml:"uploads"`
	Resume         ResumeConfig  `yaml:"resume"`
	Browser        BrowserConfig `yaml:"browser"`
	Timeouts       Timeouts      `yaml:"timeouts"`
	Login          LoginConfig   `yaml:"login"`
	Apply          ApplyConfig   `yaml:"apply"`

	// DebugHTML, when set, receives the HTML of every search results page.
	DebugHTML string `yaml:"debug_html"`

	// dir is the directory of the loaded file; relative paths resolve from it.
	dir string
}

// Credentials holds the site login. The password may be left empty and
// resolved from the OS keychain or the environment.
type Credentials struct {
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	KeyringAccount string `yaml:"keyring_account"`
}

// Filters drives the job search.
type Filters struct {
	Positions       []string `yaml:"positions"`
	Locations       []string `yaml:"locations"`
	ExperienceLevel []string `yaml:"experience_level"`
	JobType         []string `yaml:"jobType"`
	WorkType        []string `yaml:"workType"`
	Salary          string   `yaml:"salary"`
	Rate            string   `yaml:"rate"`
	Blacklist       []string `yaml:"blacklist"`
	BlacklistTitles []string `yaml:"blackListTitles"`
}

type Uploads struct {
	Resume string `yaml:"Resume"`
}

type ResumeConfig struct {
	Output         string   `yaml:"output"`
	KnownSkills    []string `yaml:"known_skills"`
	UseDescription bool     `yaml:"use_description"`
}

type BrowserConfig struct {
	Remote           string   `yaml:"remote"`
	Headless         *bool    `yaml:"headless"`
	UserDataDir      string   `yaml:"user_data_dir"`
	ResourceBlocking []string `yaml:"resource_blocking"`
	XvfbDisplay      string   `yaml:"xvfb_display"` // opt-in; empty keeps the desktop DISPLAY
	SiteURL          string   `yaml:"site_url"`
}

// IsHeadless reports the effective headless mode (default true).
func (b BrowserConfig) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}

type Timeouts struct {
	Navigation time.Duration `yaml:"navigation"`
	Selector   time.Duration `yaml:"selector"`
	StepPause  time.Duration `yaml:"step_pause"`
}

type LoginConfig struct {
	Attempts      int           `yaml:"attempts"`
	Delay         time.Duration `yaml:"delay"`
	CookiePoll    time.Duration `yaml:"cookie_poll"`
	CookieTimeout time.Duration `yaml:"cookie_timeout"`
}

// ApplyConfig controls the per-job apply step. With Enabled false and
// AssumeApplied true every new posting is recorded in the ledger without
// submitting anything.
type ApplyConfig struct {
	Enabled        bool    `yaml:"enabled"`
	AssumeApplied  *bool   `yaml:"assume_applied"`
	RecordFailures bool    `yaml:"record_failures"`
	MaxSteps       int     `yaml:"max_steps"`
	PerMinute      float64 `yaml:"per_minute"`
}

// ShouldAssumeApplied reports the effective short-circuit mode (default true).
func (a ApplyConfig) ShouldAssumeApplied() bool {
	return a.AssumeApplied == nil || *a.AssumeApplied
}

// LoadFile reads a YAML (or JSON) configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes configuration bytes and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Path resolves p against the directory of the loaded file.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// LedgerPath is the resolved applied-jobs ledger path.
func (c *Config) LedgerPath() string { return c.Path(c.OutputFilename) }

// ResumeTemplatePath is the resolved resume template path.
func (c *Config) ResumeTemplatePath() string { return c.Path(c.Uploads.Resume) }

// ResumeOutputPath is the resolved modified resume path.
func (c *Config) ResumeOutputPath() string { return c.Path(c.Resume.Output) }

func (c *Config) applyDefaults() {
	if c.OutputFilename == "" {
		c.OutputFilename = "appliedJobs.xlsx"
	}
	if c.Uploads.Resume == "" {
		c.Uploads.Resume = "resumeTemplate.docx"
	}
	if c.Resume.Output == "" {
		c.Resume.Output = "modifiedResume.docx"
	}
	if c.Browser.SiteURL == "" {
		c.Browser.SiteURL = "https://www.linkedin.com"
	}
	if c.Timeouts.Navigation <= 0 {
		c.Timeouts.Navigation = 120 * time.Second
	}
	if c.Timeouts.Selector <= 0 {
		c.Timeouts.Selector = 120 * time.Second
	}
	if c.Timeouts.StepPause <= 0 {
		c.Timeouts.StepPause = time.Second
	}
	if c.Login.Attempts <= 0 {
		c.Login.Attempts = 3
	}
	if c.Login.Delay <= 0 {
		c.Login.Delay = 5 * time.Second
	}
	if c.Login.CookiePoll <= 0 {
		c.Login.CookiePoll = time.Second
	}
	if c.Login.CookieTimeout <= 0 {
		c.Login.CookieTimeout = 60 * time.Second
	}
	if c.Apply.MaxSteps <= 0 {
		c.Apply.MaxSteps = 10
	}
	if c.Credentials.KeyringAccount == "" && c.Credentials.Username != "" {
		c.Credentials.KeyringAccount = "linkedin:" + c.Credentials.Username
	}
}
