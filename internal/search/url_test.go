package search

import (
	"strings"
	"testing"

	"github.com/hazyhaar/easyapply/internal/config"
)

func TestBuildURL_AllFilters(t *testing.T) {
	f := config.Filters{
		Positions:       []string{"dev"},
		Locations:       []string{"NY"},
		Salary:          "$120,000",
		ExperienceLevel: []string{"2", "3"},
	}
	got := BuildURL("https://www.linkedin.com", f, f.Positions[0], f.Locations[0])

	for _, want := range []string{"keywords=dev", "location=NY", "f_E=2,3", "f_SB=5", "f_AL=true"} {
		if !strings.Contains(got, want) {
			t.Errorf("URL %q missing %q", got, want)
		}
	}
	if !strings.HasPrefix(got, "https://www.linkedin.com/jobs/search/?") {
		t.Errorf("prefix: got %q", got)
	}
}

func TestBuildURL_OptionalOmitted(t *testing.T) {
	got := BuildURL("https://www.linkedin.com/", config.Filters{}, "go developer", "New York, NY")
	for _, absent := range []string{"f_E=", "f_JT=", "f_WT=", "f_SB="} {
		if strings.Contains(got, absent) {
			t.Errorf("URL %q unexpectedly contains %q", got, absent)
		}
	}
	if !strings.Contains(got, "keywords=go%20developer") {
		t.Errorf("keywords not escaped: %q", got)
	}
	if !strings.Contains(got, "location=New%20York%2C%20NY") {
		t.Errorf("location not escaped: %q", got)
	}
	if strings.Contains(got, "//jobs") {
		t.Errorf("double slash: %q", got)
	}
}

func TestBuildURL_PlusIsEscaped(t *testing.T) {
	got := BuildURL("https://x", config.Filters{}, "C++ dev", "A&B")
	if !strings.Contains(got, "keywords=C%2B%2B%20dev&") {
		t.Errorf("keywords: %q", got)
	}
	if !strings.Contains(got, "location=A%26B&") {
		t.Errorf("location: %q", got)
	}
}

func TestBuildURL_JobAndWorkType(t *testing.T) {
	f := config.Filters{JobType: []string{"F", "C"}, WorkType: []string{"1", "3"}}
	got := BuildURL("https://x", f, "a", "b")
	if !strings.Contains(got, "f_JT=F%2CC") {
		t.Errorf("f_JT: %q", got)
	}
	if !strings.Contains(got, "f_WT=1%2C3") {
		t.Errorf("f_WT: %q", got)
	}
}

func TestSalaryBand(t *testing.T) {
	cases := map[string]string{
		"$140,000": "6",
		"150000":   "6",
		"$120,000": "5",
		"139999":   "5",
		"$80,000":  "3",
		"60000":    "2",
		"$40,000":  "1",
	}
	for in, want := range cases {
		got, ok := SalaryBand(in)
		if !ok || got != want {
			t.Errorf("SalaryBand(%q): got %q,%v want %q", in, got, ok, want)
		}
	}
}

func TestSalaryBand_None(t *testing.T) {
	for _, in := range []string{"", "$39,999", "negotiable"} {
		if got, ok := SalaryBand(in); ok {
			t.Errorf("SalaryBand(%q): got %q, want no band", in, got)
		}
	}
}
