package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var asciiLogo = []string{
	`     _              _          _  __ `,
	`  __| | _____   __ | |__   ___| |/ _|`,
	` / _' |/ _ \ \ / / | '_ \ / _ \ | |_ `,
	`| (_| |  __/\ V /  | | | |  __/ |  _|`,
	` \__,_|\___| \_/   |_| |_|\___|_|_|  `,
}

func renderHomeScreen(width, height int, site, updateVersion string) string {
	logoStyle := lipgloss.NewStyle().Foreground(colorAccent)
	keyStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorText)

	var lines []string

	for _, l := range asciiLogo {
		lines = append(lines, logoStyle.Render(l))
	}
	lines = append(lines, "")
	lines = append(lines, helpDimStyle.Render("  "+site))
	lines = append(lines, "")

	lines = append(lines, "          "+keyStyle.Render("[n]")+"  "+labelStyle.Render("Notes"))
	lines = append(lines, "          "+keyStyle.Render("[p]")+"  "+labelStyle.Render("Programs"))
	lines = append(lines, "")
	lines = append(lines, "          "+keyStyle.Render("[q]")+"  "+labelStyle.Render("Quit"))

	if updateVersion != "" {
		lines = append(lines, "")
		lines = append(lines, "          "+logoStyle.Render("Update available: v"+updateVersion))
	}

	content := strings.Join(lines, "\n")
	contentHeight := strings.Count(content, "\n") + 1

	topPad := (height - contentHeight) / 3
	if topPad < 0 {
		topPad = 0
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		strings.Repeat("\n", topPad)+content)
}
