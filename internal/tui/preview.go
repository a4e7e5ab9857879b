package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/devshelf/internal/dataset"
)

func renderPreview(r dataset.Record, categoryName string, width, height, scroll int) string {
	if r == nil {
		return lipglossCenter("Select an entry", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}
	e := r.Meta()

	title := previewTitleStyle.Width(contentWidth).Render(e.Title)
	meta := previewCategoryStyle.Render(categoryName)
	if level, ok := r.Level(); ok {
		meta += " " + difficultyStyle(string(level)).Render(string(level))
	}

	desc := e.Description
	if desc == "" {
		desc = "(No description available)"
	}
	body := previewBodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth))

	sections := []string{title, meta, "", body}
	if tags := renderTags(e.Tags, contentWidth); tags != "" {
		sections = append(sections, "", tags)
	}

	hint := "enter: view note"
	if _, ok := r.Level(); ok {
		hint = "enter: view code"
	}
	sections = append(sections, previewHintStyle.Render(hint))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return clip(content, height, scroll)
}

// renderTags lays tags out in display order, wrapping onto new lines.
func renderTags(tags []string, width int) string {
	if len(tags) == 0 {
		return ""
	}
	var (
		lines []string
		line  string
	)
	for _, t := range tags {
		chip := tagStyle.Render(t)
		candidate := chip
		if line != "" {
			candidate = line + " " + chip
		}
		if lipgloss.Width(candidate) > width && line != "" {
			lines = append(lines, line)
			line = chip
			continue
		}
		line = candidate
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

// clip applies a scroll offset and pads or cuts content to height lines.
func clip(content string, height, scroll int) string {
	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
