package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type statusInfo struct {
	shown       int
	total       int
	noun        string
	filterLabel string
	search      string
	mode        mode
	loading     bool
}

func statusHints(m mode) string {
	switch m {
	case modeSearch:
		return " esc clear  enter done "
	case modeCategory, modeDifficulty:
		return " ←/→ move  enter select  0 all  esc done "
	default:
		return " / search  f category  n/p page  enter open  ? help  q quit "
	}
}

func renderStatusBar(info statusInfo, width int) string {
	left := fmt.Sprintf(" %d of %d %s", info.shown, info.total, info.noun)
	if info.filterLabel != "All" {
		left += " · " + info.filterLabel
	}
	if info.search != "" {
		left += fmt.Sprintf(" · %q", info.search)
	}
	if info.loading {
		left += " (loading...)"
	}

	right := statusHints(info.mode)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(hints string, width int) string {
	right := " " + hints + " "

	gap := width - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
