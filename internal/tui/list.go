package tui

import (
	"fmt"
	"strings"

	"github.com/matheuskafuri/devshelf/internal/dataset"
)

func tagCount(n int) string {
	if n == 1 {
		return "1 tag"
	}
	return fmt.Sprintf("%d tags", n)
}

func renderListItem(r dataset.Record, categoryName string, selected bool, width int) string {
	if width < 10 {
		width = 30
	}
	e := r.Meta()

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(e.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(e.Title, width-4))
	}

	meta := "  " + itemCategoryStyle.Render(categoryName)
	if level, ok := r.Level(); ok {
		meta += " " + difficultyStyle(string(level)).Render(string(level))
	}
	meta += " " + itemMetaStyle.Render("· "+tagCount(len(e.Tags)))

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(p *page, height int, width int) string {
	if len(p.view) == 0 {
		return lipglossCenter(p.emptyMessage(), width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	// Calculate scroll offset
	start := 0
	if p.cursor >= visible {
		start = p.cursor - visible + 1
	}
	end := start + visible
	if end > len(p.view) {
		end = len(p.view)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		r := p.view[i]
		b.WriteString(renderListItem(r, p.store.CategoryName(r.Meta().Category), i == p.cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - len([]rune(s))) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
