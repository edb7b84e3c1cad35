// Package search builds job search URLs from filter configuration.
package search

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/hazyhaar/easyapply/internal/config"
)

// Path is the job search path appended to the site URL.
const Path = "/jobs/search/"

// Salary band thresholds, highest first.
var salaryBands = []struct {
	min  int
	band string
}{
	{140000, "6"},
	{120000, "5"},
	{100000, "4"},
	{80000, "3"},
	{60000, "2"},
	{40000, "1"},
}

// BuildURL returns the search URL for one position/location pair. Keywords,
// location and the Easy Apply filter are always present; experience level,
// job type, work type and salary band only when configured.
func BuildURL(siteURL string, f config.Filters, position, location string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(siteURL, "/"))
	b.WriteString(Path)
	b.WriteString("?keywords=")
	b.WriteString(escape(position))
	b.WriteString("&location=")
	b.WriteString(escape(location))
	b.WriteString("&f_AL=true")

	if len(f.ExperienceLevel) > 0 {
		b.WriteString("&f_E=")
		b.WriteString(strings.Join(escapeAll(f.ExperienceLevel), ","))
	}
	if len(f.JobType) > 0 {
		b.WriteString("&f_JT=")
		b.WriteString(strings.Join(escapeAll(f.JobType), "%2C"))
	}
	if len(f.WorkType) > 0 {
		b.WriteString("&f_WT=")
		b.WriteString(strings.Join(escapeAll(f.WorkType), "%2C"))
	}
	if band, ok := SalaryBand(f.Salary); ok {
		b.WriteString("&f_SB=")
		b.WriteString(band)
	}
	return b.String()
}

// SalaryBand maps a salary such as "$120,000" to its band. Only the digits
// of s are considered; below 40000 no band applies.
func SalaryBand(s string) (string, bool) {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return "", false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return "", false
	}
	for _, sb := range salaryBands {
		if n >= sb.min {
			return sb.band, true
		}
	}
	return "", false
}

// escape percent-encodes a query value with spaces as %20, not '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func escapeAll(xs []string) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = escape(x)
	}
	return out
}
