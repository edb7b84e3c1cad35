// Package jobs holds the posting and ledger record types shared by the
// search, apply and ledger packages.
package jobs

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format of Record.DateApplied.
const DateLayout = "2006-01-02"

// Posting is a job found by a search.
type Posting struct {
	Title   string
	Company string
	// Link identifies the posting and is the ledger dedup key.
	Link  string
	JobID string

	Position string
	Location string

	// Description is the raw HTML of the job description, when fetched.
	Description string
}

// Record is one row of the applied-jobs ledger.
type Record struct {
	JobTitle    string
	Company     string
	JobLink     string
	DateApplied string
}

// NewRecord builds the ledger row for p applied at t. The date is the UTC
// calendar day.
func NewRecord(p Posting, t time.Time) Record {
	return Record{
		JobTitle:    p.Title,
		Company:     p.Company,
		JobLink:     p.Link,
		DateApplied: t.UTC().Format(DateLayout),
	}
}

// Blacklist drops postings by title or company terms (case-insensitive
// substring match).
type Blacklist struct {
	Terms  []string // matched against title and company
	Titles []string // matched against title only
}

// Blocked reports whether p matches any term.
func (b Blacklist) Blocked(p Posting) bool {
	title := strings.ToLower(p.Title)
	company := strings.ToLower(p.Company)
	for _, t := range b.Titles {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" && strings.Contains(title, t) {
			return true
		}
	}
	for _, t := range b.Terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if strings.Contains(title, t) || strings.Contains(company, t) {
			return true
		}
	}
	return false
}

// Filter returns the postings not blocked by b.
func (b Blacklist) Filter(ps []Posting) []Posting {
	out := ps[:0:0]
	for _, p := range ps {
		if !b.Blocked(p) {
			out = append(out, p)
		}
	}
	return out
}
