package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/devshelf/internal/dataset"
	"github.com/matheuskafuri/devshelf/internal/filter"
)

type tab struct {
	id    string
	label string
}

// tabBar is a single-select row of filter tabs. The first tab is always
// "All". Which tab is active lives in the page's filter state, not here.
type tabBar struct {
	tabs       []tab
	filterMode bool
	cursor     int
}

func newTabBar(allLabel string, tabs []tab) tabBar {
	return tabBar{tabs: append([]tab{{id: filter.All, label: allLabel}}, tabs...)}
}

func categoryTabs(cats []dataset.Category) []tab {
	tabs := make([]tab, 0, len(cats))
	for _, c := range cats {
		tabs = append(tabs, tab{id: c.ID, label: c.Label()})
	}
	return tabs
}

func difficultyTabs(levels []string) []tab {
	tabs := make([]tab, 0, len(levels))
	for _, l := range levels {
		tabs = append(tabs, tab{id: l, label: l})
	}
	return tabs
}

func (b *tabBar) left() {
	if b.cursor > 0 {
		b.cursor--
	}
}

func (b *tabBar) right() {
	if b.cursor < len(b.tabs)-1 {
		b.cursor++
	}
}

func (b *tabBar) current() string {
	if b.cursor < len(b.tabs) {
		return b.tabs[b.cursor].id
	}
	return filter.All
}

// at returns the id of tab i, where 0 is "All".
func (b *tabBar) at(i int) (string, bool) {
	if i < 0 || i >= len(b.tabs) {
		return "", false
	}
	return b.tabs[i].id, true
}

// point moves the cursor onto the tab with the given id.
func (b *tabBar) point(id string) {
	for i, t := range b.tabs {
		if t.id == id {
			b.cursor = i
			return
		}
	}
}

func (b *tabBar) label(id string) string {
	for _, t := range b.tabs {
		if t.id == id {
			return t.label
		}
	}
	return id
}

func (b *tabBar) render(active string, width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string

	for i, t := range b.tabs {
		style := tabInactiveStyle
		if t.id == active || (active == "" && t.id == filter.All) {
			style = tabActiveStyle
		}
		label := t.label
		if b.filterMode && i == b.cursor {
			label = "[" + label + "]"
		}
		parts = append(parts, style.Render(label))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
