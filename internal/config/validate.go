package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validation collects fatal errors and advisory warnings.
type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err folds the errors into a single error, or nil.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return errors.New("config validation failed:\n- " + strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate trims and de-duplicates list fields and checks the
// configuration for a run.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.Positions = trimList(out.Filters.Positions)
	out.Filters.Locations = trimList(out.Filters.Locations)
	out.Filters.ExperienceLevel = trimList(out.Filters.ExperienceLevel)
	out.Filters.JobType = trimList(out.Filters.JobType)
	out.Filters.WorkType = trimList(out.Filters.WorkType)
	out.Filters.Blacklist = trimList(out.Filters.Blacklist)
	out.Filters.BlacklistTitles = trimList(out.Filters.BlacklistTitles)

	if len(out.Filters.Positions) == 0 {
		res.addErr("positions must have at least 1 entry")
	}
	if len(out.Filters.Locations) == 0 {
		res.addErr("locations must have at least 1 entry")
	}
	if strings.TrimSpace(out.Credentials.Username) == "" {
		res.addErr("username is required")
	}

	switch strings.ToLower(filepath.Ext(out.OutputFilename)) {
	case ".xlsx", ".db", ".sqlite", ".sqlite3":
	default:
		res.addErr("output_filename must end in .xlsx, .db or .sqlite: %q", out.OutputFilename)
	}
	if !strings.EqualFold(filepath.Ext(out.Uploads.Resume), ".docx") {
		res.addErr("uploads.Resume must be a .docx file: %q", out.Uploads.Resume)
	}

	if err := checkSiteURL(out.Browser.SiteURL); err != nil {
		res.addErr("browser.site_url: %v", err)
	}

	if out.Filters.Salary != "" && !strings.ContainsAny(out.Filters.Salary, "0123456789") {
		res.addWarn("salary %q has no digits; no salary band will be applied", out.Filters.Salary)
	}
	if !out.Apply.Enabled && out.Apply.ShouldAssumeApplied() {
		res.addWarn("apply.enabled is false and apply.assume_applied is true: new jobs are recorded as applied without submitting")
	}
	if out.Apply.PerMinute < 0 {
		res.addErr("apply.per_minute must be >= 0")
	}
	if n := len(out.Filters.Positions) * len(out.Filters.Locations); n > 50 {
		res.addWarn("%d position/location pairs configured; the run will perform that many searches", n)
	}

	return out, res
}

// checkSiteURL accepts absolute http(s) URLs with a host.
func checkSiteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return errors.New("missing host")
	}
	return nil
}
