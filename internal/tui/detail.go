package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/devshelf/internal/dataset"
)

// detail is the overlay showing one record in full. Its body is rendered
// once when opened (or resized) and then only scrolled.
type detail struct {
	record dataset.Record
	body   string
	width  int
	scroll int
}

// markdown renders note content. The renderer is rebuilt only when the
// wrap width changes.
type markdown struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

func (m *markdown) render(content string, width int) string {
	if m.renderer == nil || m.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return wrapText(content, width)
		}
		m.renderer = r
		m.width = width
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return wrapText(content, width)
	}
	return strings.Trim(out, "\n")
}

func buildDetailBody(r dataset.Record, md *markdown, width int) string {
	if width < 20 {
		width = 20
	}
	switch rec := r.(type) {
	case dataset.Note:
		if strings.TrimSpace(rec.Content) == "" {
			return previewBodyStyle.Render("(This note is empty)")
		}
		return md.render(rec.Content, width)
	case dataset.Program:
		code := rec.Code
		if code == "" {
			code = "(no code)"
		}
		explanation := rec.Explanation
		if explanation == "" {
			explanation = "(No explanation available)"
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			codeBlockStyle.Width(width).Render(strings.TrimRight(code, "\n")),
			"",
			sectionLabelStyle.Render("Explanation:"),
			previewBodyStyle.Width(width).Render(wrapText(explanation, width)),
		)
	default:
		return wrapText(r.Meta().Description, width)
	}
}

func renderDetail(d *detail, width, height int) string {
	boxWidth := width - 4
	boxHeight := height - 4
	if boxWidth < 24 {
		boxWidth = 24
	}
	if boxHeight < 6 {
		boxHeight = 6
	}

	title := modalTitleStyle.Render(truncateStr(d.record.Meta().Title, boxWidth-6))
	header := title + helpDimStyle.Render("  esc close")
	body := clip(d.body, boxHeight-4, d.scroll)

	box := modalStyle.Width(boxWidth).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// detailWidth is the text width inside the overlay for a terminal width.
func detailWidth(termWidth int) int {
	return termWidth - 10
}
