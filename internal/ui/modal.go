package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/comicvault/internal/detail"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmMsg carries the answer to a confirmation modal.
type confirmMsg struct {
	yes bool
}

// deleteRequestMsg asks for a delete of the comic shown in the detail modal.
type deleteRequestMsg struct {
	id string
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// alertModal blocks until acknowledged.
type alertModal struct {
	text string
}

func (a alertModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(k, keys.Confirm, keys.Escape) || k.String() == " " {
			return a, nil, true
		}
	}
	return a, nil, false
}

func (a alertModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.DangerText.Render(a.text),
		"",
		styles.FaintText.Render("enter to dismiss"),
	)
	return place(width, height, theme, styles.Modal.BorderForeground(lipgloss.Color(theme.Danger)).Width(modalWidth).Render(body))
}

// confirmModal asks a yes/no question.
type confirmModal struct {
	prompt string
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(k, keys.Yes):
		return c, emit(confirmMsg{yes: true}), true
	case key.Matches(k, keys.No):
		return c, emit(confirmMsg{yes: false}), true
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.WarningText.Bold(true).Render(c.prompt),
		"",
		styles.Text.Render("y")+styles.FaintText.Render(" delete   ")+
			styles.Text.Render("n")+styles.FaintText.Render(" keep"),
	)
	return place(width, height, theme, styles.Modal.BorderForeground(lipgloss.Color(theme.Warning)).Width(modalWidth).Render(body))
}

// detailModal shows one record in a scrollable viewport.
type detailModal struct {
	content  detail.Detail
	viewport viewport.Model
}

func newDetailModal(d detail.Detail, theme Theme, width, height int) *detailModal {
	m := &detailModal{content: d}
	m.resize(theme, width, height)
	return m
}

func (d *detailModal) resize(theme Theme, width, height int) {
	w := min(detailModalWidth, max(width-4, 20))
	h := max(height-8, 5)
	// Modal border and padding take 6 columns.
	d.viewport = viewport.New(w-6, h)
	d.viewport.SetContent(renderDetail(d.content, theme.Styles(), w-6))
}

func (d *detailModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keys.Escape):
			return d, nil, true
		case key.Matches(k, keys.Delete):
			return d, emit(deleteRequestMsg{id: d.content.ID}), false
		case key.Matches(k, keys.PageUp):
			d.viewport.HalfPageUp()
			return d, nil, false
		case key.Matches(k, keys.PageDown):
			d.viewport.HalfPageDown()
			return d, nil, false
		}
	}
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return d, cmd, false
}

func (d *detailModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	footer := styles.FaintText.Render("d delete · esc close · pgup/pgdown scroll")
	body := lipgloss.JoinVertical(lipgloss.Left, d.viewport.View(), "", footer)
	return place(width, height, theme, styles.Modal.Render(body))
}

func place(width, height int, theme Theme, content string) string {
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
