package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// UI styles and layout settings
// Color palette "Blue Moon" from https://gogh-co.github.io/Gogh/
const (
	colorGray     = "#353b52"
	colorWhite    = "#ffffff"
	colorGreen    = "#acfab4"
	colorGreenDim = "#b4c4b4"
	colorRed      = "#e61f44"
	colorRedDim   = "#d06178"
	colorPurple   = "#b9a3eb"
	colorBlue     = "#89ddff"

	statusTimeout = 3 * time.Second
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue)).
			Background(lipgloss.Color(colorGray)).
			Padding(0, 2).Align(lipgloss.Center)
	subtitleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray)).
			Background(lipgloss.Color(colorGreen))
	dangerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorGray)).
				Background(lipgloss.Color(colorRed))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWhite))
	textRedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed))

	headerStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorPurple))
	navSelectedStyle = lipgloss.NewStyle().Bold(true).Underline(true).
				Foreground(lipgloss.Color(colorGreen))
	navStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGreenDim))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorBlue))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray))
)

// Function to colorize text based on its status
// 0 (default) - unknown, 1 - green, 2 - red
func TextStatusColorize(text string, status int) string {
	switch status {
	case 1:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreenDim)).Render(text)
	case 2:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorRedDim)).Render(text)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)).Render(text)
	}
}

// Generates pointer symbol when line in focus
func generateLinePointer(isPoint bool, length int) string {
	if isPoint {
		return ">" + strings.Repeat(" ", length-1)
	}
	return strings.Repeat(" ", length)
}

// fitCell truncates text to width display cells and pads it to exactly width.
func fitCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	text = strings.ReplaceAll(text, "\n", " ")
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "..")
	}
	return runewidth.FillRight(text, width)
}

// columnWidths splits total across n columns, the content column (index 3 of a
// notes table) taking the remainder.
func columnWidths(total, n int, wide int) []int {
	widths := make([]int, n)
	if n == 0 {
		return widths
	}
	gap := n - 1
	base := (total - gap) / (n + 1)
	if base < 4 {
		base = 4
	}
	used := 0
	for i := range widths {
		if i == wide {
			continue
		}
		widths[i] = base
		used += base
	}
	if wide >= 0 && wide < n {
		widths[wide] = total - gap - used
		if widths[wide] < base {
			widths[wide] = base
		}
	}
	return widths
}
