package jobs

import (
	"testing"
	"time"
)

func TestNewRecord(t *testing.T) {
	p := Posting{Title: "Go Dev", Company: "Acme", Link: "https://x/jobs/view/1"}
	r := NewRecord(p, time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC))
	if r.DateApplied != "2025-03-09" {
		t.Errorf("DateApplied: got %q", r.DateApplied)
	}
	if r.JobLink != p.Link || r.JobTitle != p.Title || r.Company != p.Company {
		t.Errorf("record: got %+v", r)
	}
}

func TestNewRecord_UTCDate(t *testing.T) {
	east := time.FixedZone("UTC+9", 9*3600)
	r := NewRecord(Posting{}, time.Date(2025, 3, 10, 5, 0, 0, 0, east))
	if r.DateApplied != "2025-03-09" {
		t.Errorf("DateApplied: got %q, want 2025-03-09", r.DateApplied)
	}
}

func TestBlacklist_Titles(t *testing.T) {
	b := Blacklist{Titles: []string{"Senior"}}
	if !b.Blocked(Posting{Title: "senior engineer"}) {
		t.Error("expected title match")
	}
	if b.Blocked(Posting{Title: "Engineer", Company: "Senior Corp"}) {
		t.Error("title terms must not match company")
	}
}

func TestBlacklist_Terms(t *testing.T) {
	b := Blacklist{Terms: []string{"acme", "  "}}
	if !b.Blocked(Posting{Title: "Dev", Company: "ACME Inc"}) {
		t.Error("expected company match")
	}
	if !b.Blocked(Posting{Title: "Acme tooling dev", Company: "Other"}) {
		t.Error("expected title match")
	}
	if b.Blocked(Posting{Title: "Dev", Company: "Other"}) {
		t.Error("unexpected match")
	}
}

func TestBlacklist_Filter(t *testing.T) {
	in := []Posting{{Title: "a"}, {Title: "Intern b"}, {Title: "c"}}
	got := Blacklist{Titles: []string{"intern"}}.Filter(in)
	if len(got) != 2 || got[0].Title != "a" || got[1].Title != "c" {
		t.Errorf("Filter: got %+v", got)
	}
	if len(in) != 3 || in[1].Title != "Intern b" {
		t.Error("Filter must not modify its input")
	}
}
