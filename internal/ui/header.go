package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/comicvault/internal/job"
)

// renderHeader renders the top bar: logo, view tabs, job badge and theme.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	logo := bg.Render("comicvault", styles.Logo)

	tabs := make([]string, 0, 2)
	for _, v := range []View{ViewUpload, ViewCollection} {
		style := styles.MutedText
		if v == m.view {
			style = styles.AccentText.Bold(true)
		}
		tabs = append(tabs, bg.Render(ternary(v == m.view, "["+v.String()+"]", v.String()), style))
	}

	left := logo + bg.Spaces(2) + bg.Join(tabs, "  ")

	state := m.tracker.State()
	right := ""
	if state != job.Idle {
		badge := styles.StatusStyle(state).Render(state.String())
		if state == job.Uploading || state == job.Polling {
			badge = bg.Render(m.spinner.View(), styles.AccentText) + bg.Space() + badge
		}
		right = badge
	}
	if m.width >= LayoutCompactWidth {
		right += bg.Spaces(2) + bg.Render(m.theme.Name, styles.FaintText)
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	line := bg.Space() + left + bg.Spaces(gap) + right + bg.Space()
	return bg.FillLine(line, m.width)
}

// renderFooter renders the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	hint := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.activeInput().Focused() {
		hint = styles.FaintText.Render("typing · esc to leave input · enter to confirm")
	}
	return styles.Footer.Width(m.width).Render(hint)
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func repeatLines(n int) string {
	return strings.Repeat("\n", n)
}
