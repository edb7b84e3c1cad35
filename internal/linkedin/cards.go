package linkedin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hazyhaar/easyapply/internal/jobs"
)

var jobIDRe = regexp.MustCompile(`/jobs/view/(?:[^/?#]*-)?(\d+)`)

const (
	cardSel    = "li, .job-card-container, .base-card"
	titleSel   = ".job-card-list__title, .job-card-list__title--link, .base-search-card__title, strong, h3"
	companySel = ".job-card-container__primary-description, .artdeco-entity-lockup__subtitle, .base-search-card__subtitle, h4"
)

// ParseJobCards extracts the postings from a search results page, in page
// order and without duplicate job ids. Links are rewritten to
// <baseURL>/jobs/view/<id>/.
func ParseJobCards(html, baseURL string) ([]jobs.Posting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("linkedin: parse search html: %w", err)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	var out []jobs.Posting
	seen := make(map[string]bool)
	doc.Find(`a[href*="/jobs/view/"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := jobIDRe.FindStringSubmatch(href)
		if m == nil || seen[m[1]] {
			return
		}
		id := m[1]

		card := a.Closest(cardSel)
		if card.Length() == 0 {
			card = a
		}
		title := text(card.Find(titleSel).First())
		if title == "" {
			title = text(a)
		}
		company := text(card.Find(companySel).First())

		seen[id] = true
		out = append(out, jobs.Posting{
			Title:   title,
			Company: company,
			Link:    baseURL + "/jobs/view/" + id + "/",
			JobID:   id,
		})
	})
	return out, nil
}

// text returns the whitespace-collapsed text of s. LinkedIn duplicates
// titles in a visually-hidden span; the first half wins when both halves
// match.
func text(s *goquery.Selection) string {
	t := strings.Join(strings.Fields(s.Text()), " ")
	if w := strings.Fields(t); len(w) > 1 && len(w)%2 == 0 {
		half := len(w) / 2
		if strings.Join(w[:half], " ") == strings.Join(w[half:], " ") {
			return strings.Join(w[:half], " ")
		}
	}
	return t
}
