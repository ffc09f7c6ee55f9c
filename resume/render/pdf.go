package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/microcosm-cc/bluemonday"

	"resume-builder/resume/model"
)

// ContentType is the media type of rendered exports.
const ContentType = "application/pdf"

var (
	textPolicy  = bluemonday.StrictPolicy()
	blockBreaks = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "\n", "</li>", "\n", "<li>", "- ")
	blankLines  = regexp.MustCompile(`\n{3,}`)
)

// compress is switched off in tests so page text can be inspected.
var compress = true

// PDF renders the resume as an A4 document.
func PDF(res model.Resume) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(res.Title, true)
	pdf.SetCreator("resume-builder", true)
	pdf.AddPage()

	w := &writer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	content := res.Content
	w.header(content.PersonalInfo, res.Title)

	if len(content.Experience) > 0 {
		w.section("Experience")
		for _, e := range content.Experience {
			w.line("roleLine", joinNonEmpty(" @ ", e.Role, e.Company))
			w.line("meta", dateRange(e.StartDate, e.EndDate, e.Current))
			w.paragraph(PlainText(e.Description))
			pdf.Ln(1)
		}
	}
	if len(content.Education) > 0 {
		w.section("Education")
		for _, ed := range content.Education {
			w.line("roleLine", joinNonEmpty(", ", ed.Degree, ed.School))
			w.line("meta", dateRange(ed.StartDate, ed.EndDate, false))
			pdf.Ln(1)
		}
	}
	if len(content.Skills) > 0 {
		w.section("Skills")
		w.paragraph(strings.Join(content.Skills, ", "))
	}
	if len(content.Projects) > 0 {
		w.section("Projects")
		for _, p := range content.Projects {
			w.line("roleLine", p.Name)
			if p.Link != nil && *p.Link != "" {
				w.line("meta", *p.Link)
			}
			w.paragraph(PlainText(p.Description))
			if len(p.TechStack) > 0 {
				w.line("meta", "Tech: "+strings.Join(p.TechStack, ", "))
			}
			pdf.Ln(1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// PlainText reduces a sanitized description fragment to display text.
func PlainText(fragment string) string {
	text := textPolicy.Sanitize(blockBreaks.Replace(fragment))
	text = html.UnescapeString(text)
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

type writer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *writer) use(style string) {
	s := StyleMap[style]
	w.pdf.SetFont(fontFamily, s.fontStyle(), s.Size)
	w.pdf.SetTextColor(s.Color[0], s.Color[1], s.Color[2])
}

func (w *writer) header(info model.PersonalInfo, title string) {
	name := strings.TrimSpace(info.FullName)
	if name == "" {
		name = title
	}
	w.use("name")
	w.pdf.CellFormat(0, 9, w.tr(name), "", 1, "L", false, 0, "")

	contact := []string{info.Email, info.Phone}
	for _, opt := range []*string{info.Location, info.LinkedIn, info.GitHub} {
		if opt != nil {
			contact = append(contact, *opt)
		}
	}
	if line := joinNonEmpty("  |  ", contact...); line != "" {
		w.line("meta", line)
	}
	if bio := strings.TrimSpace(info.Bio); bio != "" {
		w.pdf.Ln(2)
		w.paragraph(bio)
	}
}

func (w *writer) section(title string) {
	w.pdf.Ln(sectionGap)
	w.use("sectionHeading")
	w.pdf.CellFormat(0, 7, w.tr(strings.ToUpper(title)), "B", 1, "L", false, 0, "")
	w.pdf.Ln(1.5)
}

func (w *writer) line(style, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	w.use(style)
	w.pdf.CellFormat(0, lineHeight, w.tr(text), "", 1, "L", false, 0, "")
}

func (w *writer) paragraph(text string) {
	if text == "" {
		return
	}
	w.use("body")
	w.pdf.MultiCell(0, lineHeight, w.tr(text), "", "L", false)
}

func dateRange(start string, end *string, current bool) string {
	switch {
	case current:
		return joinNonEmpty(" - ", start, "Present")
	case end != nil:
		return joinNonEmpty(" - ", start, *end)
	default:
		return start
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
