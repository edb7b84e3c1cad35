package resume

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const docBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>Experience</w:t></w:r></w:p>` +
	`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/></w:sectPr>` +
	`</w:body></w:document>`

func writeDocx(t *testing.T, dir, document string) string {
	t.Helper()
	path := filepath.Join(dir, "template.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	parts := map[string]string{
		"[Content_Types].xml": `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/styles.xml":     `<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`,
		documentPart:          document,
	}
	for _, name := range []string{"[Content_Types].xml", "word/styles.xml", documentPart} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, parts[name]); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func readPart(t *testing.T, path, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		return string(b)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

// paragraphs returns the text of each w:p in document order.
func paragraphs(t *testing.T, doc string) []string {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	var out []string
	var cur strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		switch tt := tok.(type) {
		case xml.StartElement:
			inText = tt.Name.Local == "t"
		case xml.EndElement:
			if tt.Name.Local == "t" {
				inText = false
			}
			if tt.Name.Local == "p" {
				out = append(out, cur.String())
				cur.Reset()
			}
		case xml.CharData:
			if inText {
				cur.Write(tt)
			}
		}
	}
	return out
}

func TestExtractSkills_OrderFollowsKnownList(t *testing.T) {
	got := ExtractSkills("We use AWS daily and love React.", nil)
	want := []string{"React", "AWS"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractSkills_CaseInsensitiveWholeWord(t *testing.T) {
	got := ExtractSkills("node.js and typescript; no javascripting", nil)
	want := []string{"Node.js", "TypeScript"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractSkills_None(t *testing.T) {
	got := ExtractSkills("Chef", nil)
	if !reflect.DeepEqual(got, []string{NoSkills}) {
		t.Errorf("got %v, want [N/A]", got)
	}
}

func TestExtractSkills_CustomList(t *testing.T) {
	got := ExtractSkills("Go and C++ required", []string{"C++", "Go", "Rust"})
	want := []string{"C++", "Go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText(`<ul><li>React</li><li>AWS</li></ul><p>Tom &amp; Jerry</p>`)
	if got != "React AWS Tom & Jerry" {
		t.Errorf("PlainText: got %q", got)
	}
	if skills := ExtractSkills(got, nil); !reflect.DeepEqual(skills, []string{"React", "AWS"}) {
		t.Errorf("skills: got %v", skills)
	}
}

func TestAnnotate_AppendsBeforeSectPr(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeDocx(t, dir, docBody)
	out := filepath.Join(dir, "out", "modified.docx")

	if err := Annotate(tmpl, out, SkillsLine([]string{"React", "AWS"})); err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	doc := readPart(t, out, documentPart)
	got := paragraphs(t, doc)
	want := []string{"Jane Doe", "Experience", "Key Skills: React, AWS"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("paragraphs: got %q, want %q", got, want)
	}
	if strings.Index(doc, "Key Skills") > strings.Index(doc, "<w:sectPr") {
		t.Error("paragraph must precede the body sectPr")
	}
	if !strings.Contains(doc, `<w:b/>`) {
		t.Error("paragraph must be bold")
	}

	if got := readPart(t, out, "word/styles.xml"); !strings.Contains(got, "w:styles") {
		t.Errorf("styles part not copied: %q", got)
	}
	if orig := readPart(t, tmpl, documentPart); orig != docBody {
		t.Error("template was modified")
	}
}

func TestAnnotate_NoSectPr(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeDocx(t, dir, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>A</w:t></w:r></w:p></w:body></w:document>`)
	out := filepath.Join(dir, "m.docx")

	if err := Annotate(tmpl, out, "Key Skills: N/A & more"); err != nil {
		t.Fatal(err)
	}
	got := paragraphs(t, readPart(t, out, documentPart))
	if len(got) != 2 || got[1] != "Key Skills: N/A & more" {
		t.Errorf("paragraphs: got %q", got)
	}
}

func TestAnnotate_NotDocx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.docx")
	f, _ := os.Create(path)
	zw := zip.NewWriter(f)
	zw.Create("other.txt")
	zw.Close()
	f.Close()

	if err := Annotate(path, filepath.Join(dir, "o.docx"), "x"); !errors.Is(err, ErrNotDocx) {
		t.Fatalf("got %v, want ErrNotDocx", err)
	}
}

func TestAnnotator_Prepare(t *testing.T) {
	dir := t.TempDir()
	a := Annotator{Template: writeDocx(t, dir, docBody), Output: filepath.Join(dir, "m.docx")}

	path, skills, err := a.Prepare("Senior Python Engineer")
	if err != nil {
		t.Fatal(err)
	}
	if path != a.Output {
		t.Errorf("path: got %q", path)
	}
	if !reflect.DeepEqual(skills, []string{"Python"}) {
		t.Errorf("skills: got %v", skills)
	}
	got := paragraphs(t, readPart(t, path, documentPart))
	if got[len(got)-1] != "Key Skills: Python" {
		t.Errorf("last paragraph: got %q", got[len(got)-1])
	}
}
