// Package resume derives a skills line from job text and appends it to a
// copy of a .docx resume template.
package resume

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultSkills is the known-skills list, in output order.
var DefaultSkills = []string{
	"JavaScript", "Python", "React", "Node.js", "AWS",
	"Docker", "Kubernetes", "SQL", "TypeScript",
}

// NoSkills is the single entry reported when nothing matched.
const NoSkills = "N/A"

// ExtractSkills returns the entries of known found in text as whole words,
// case-insensitively, in the order of known. A nil known uses
// DefaultSkills. When nothing matches the result is [NoSkills].
func ExtractSkills(text string, known []string) []string {
	if known == nil {
		known = DefaultSkills
	}
	var found []string
	for _, skill := range known {
		if skill == "" {
			continue
		}
		re := regexp.MustCompile(`(?i)(?:^|\W)` + regexp.QuoteMeta(skill) + `(?:\W|$)`)
		if re.MatchString(text) {
			found = append(found, skill)
		}
	}
	if len(found) == 0 {
		return []string{NoSkills}
	}
	return found
}

// SkillsLine renders the paragraph text appended to the resume.
func SkillsLine(skills []string) string {
	return "Key Skills: " + strings.Join(skills, ", ")
}

var textPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// PlainText strips markup from a job description so list items and
// paragraphs stay separate words.
func PlainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(textPolicy.Sanitize(s))), " ")
}
