package resume

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const documentPart = "word/document.xml"

// ErrNotDocx is returned when the template has no main document part.
var ErrNotDocx = errors.New("resume: not a docx document")

// Annotator prepares the per-job resume.
type Annotator struct {
	Template string
	Output   string
	Known    []string
}

// Prepare extracts skills from text and writes the annotated copy of the
// template to a.Output. It returns the output path and the skills used.
func (a Annotator) Prepare(text string) (string, []string, error) {
	skills := ExtractSkills(text, a.Known)
	if err := Annotate(a.Template, a.Output, SkillsLine(skills)); err != nil {
		return "", nil, err
	}
	return a.Output, skills, nil
}

// Annotate copies the docx at templatePath to outPath with one bold
// paragraph holding line appended at the end of the body. Every other part
// of the package is copied byte for byte.
func Annotate(templatePath, outPath, line string) error {
	zr, err := zip.OpenReader(templatePath)
	if err != nil {
		return fmt.Errorf("resume: open template: %w", err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := false

	for _, f := range zr.File {
		if f.Name != documentPart {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("resume: copy %s: %w", f.Name, err)
			}
			continue
		}
		seen = true

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("resume: read document: %w", err)
		}
		doc, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("resume: read document: %w", err)
		}

		out, err := appendParagraph(doc, line)
		if err != nil {
			return err
		}
		hdr := f.FileHeader
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     hdr.Name,
			Method:   zip.Deflate,
			Modified: hdr.Modified,
		})
		if err != nil {
			return fmt.Errorf("resume: write document: %w", err)
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("resume: write document: %w", err)
		}
	}
	if !seen {
		return ErrNotDocx
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("resume: finish zip: %w", err)
	}

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("resume: mkdir: %w", err)
		}
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("resume: write output: %w", err)
	}
	return nil
}

// appendParagraph inserts the paragraph as the last block of w:body, ahead
// of the body-level w:sectPr when there is one.
func appendParagraph(doc []byte, line string) ([]byte, error) {
	s := string(doc)
	end := strings.LastIndex(s, "</w:body>")
	if end < 0 {
		return nil, fmt.Errorf("%w: no w:body", ErrNotDocx)
	}

	at := end
	if sect := strings.LastIndex(s[:end], "<w:sectPr"); sect >= 0 &&
		strings.LastIndex(s[:end], "</w:p>") < sect &&
		strings.LastIndex(s[:end], "</w:tbl>") < sect {
		at = sect
	}

	var p strings.Builder
	p.WriteString(`<w:p><w:r><w:rPr><w:b/><w:sz w:val="24"/></w:rPr><w:t xml:space="preserve">`)
	if err := xml.EscapeText(&p, []byte(line)); err != nil {
		return nil, err
	}
	p.WriteString(`</w:t></w:r></w:p>`)

	return []byte(s[:at] + p.String() + s[at:]), nil
}
