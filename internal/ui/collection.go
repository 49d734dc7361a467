package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/comicvault/internal/comics"
	"github.com/five82/comicvault/internal/detail"
	"github.com/five82/comicvault/internal/grid"
	"github.com/five82/comicvault/internal/search"
)

// collectionView is the search box, the card grid and the detail modal. It
// is the surface for both the search and the detail controllers.
type collectionView struct {
	input textinput.Model
	grid  *grid.Grid

	// detail is the open record, overlay an alert or confirmation above it.
	detail  *detailModal
	overlay Modal

	reload func() tea.Cmd
	theme  Theme
	width  int
	height int
}

var (
	_ search.Surface = (*collectionView)(nil)
	_ detail.Surface = (*collectionView)(nil)
)

func newCollectionView(query string, theme Theme) *collectionView {
	ti := textinput.New()
	ti.Placeholder = "Search by title"
	ti.Prompt = "Search: "
	ti.CharLimit = 256
	ti.SetValue(query)
	return &collectionView{
		input: ti,
		grid:  grid.New(),
		theme: theme,
	}
}

func (c *collectionView) Render(records []comics.ComicRecord) {
	c.grid.Render(records)
}

func (c *collectionView) SetCount(n int) {
	c.grid.SetCount(n)
}

func (c *collectionView) ShowDetail(rec comics.ComicRecord) {
	c.detail = newDetailModal(detail.Sections(rec), c.theme, c.width, c.height)
}

func (c *collectionView) CloseDetail() {
	c.detail = nil
}

func (c *collectionView) RemoveCard(id string) bool {
	return c.grid.RemoveCard(id)
}

func (c *collectionView) DecrementCount() {
	c.grid.DecrementCount()
}

func (c *collectionView) Reload() tea.Cmd {
	if c.reload == nil {
		return nil
	}
	return c.reload()
}

func (c *collectionView) Alert(msg string) {
	c.overlay = alertModal{text: msg}
}

func (c *collectionView) Confirm(prompt string) {
	c.overlay = confirmModal{prompt: prompt}
}

func (c *collectionView) resize(theme Theme, width, height int) {
	c.theme = theme
	c.width = width
	c.height = height
	c.input.Width = max(width-lipgloss.Width(c.input.Prompt)-gridLeft-2, 10)
	c.grid.SetSize(width-2*gridLeft, height-gridTop-footerLines)
	if c.detail != nil {
		c.detail.resize(theme, width, height)
	}
}

// modal returns the topmost open modal, if any.
func (c *collectionView) modal() Modal {
	if c.overlay != nil {
		return c.overlay
	}
	if c.detail != nil {
		return c.detail
	}
	return nil
}

func (m Model) renderCollection() string {
	styles := m.theme.Styles()
	c := m.collection

	count := styles.MutedText.Render(fmt.Sprintf("%d comics", c.grid.Count()))
	searchRow := lipgloss.NewStyle().PaddingLeft(gridLeft).Render(c.input.View())
	gap := max(m.width-lipgloss.Width(searchRow)-lipgloss.Width(count)-1, 1)
	row := searchRow + strings.Repeat(" ", gap) + count

	body := lipgloss.NewStyle().PaddingLeft(gridLeft).Render(c.grid.View(styles.Grid()))
	return row + "\n\n" + body
}

func renderDetail(d detail.Detail, styles Styles, width int) string {
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(d.Title))
	b.WriteString(styles.MutedText.Render(" #" + d.Issue))
	b.WriteString("\n")
	if d.Publisher != "" {
		b.WriteString(styles.MutedText.Render(d.Publisher))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	label := styles.FaintText.Width(14)
	for _, f := range d.Info {
		b.WriteString(label.Render(f.Label))
		b.WriteString(styles.Text.Render(f.Value))
		b.WriteString("\n")
	}
	for _, l := range d.Lists {
		b.WriteString("\n")
		b.WriteString(styles.WarningText.Bold(true).Render(l.Heading))
		b.WriteString("\n")
		b.WriteString(styles.Text.Width(width).Render(strings.Join(l.Items, ", ")))
		b.WriteString("\n")
	}
	if d.Plot != "" {
		b.WriteString("\n")
		b.WriteString(styles.WarningText.Bold(true).Render("Plot"))
		b.WriteString("\n")
		b.WriteString(styles.Text.Width(width).Render(d.Plot))
		b.WriteString("\n")
	}
	if d.CoverURL != "" {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("Cover  " + truncateMiddle(d.CoverURL, width-7)))
		b.WriteString("\n")
	}
	if d.ComicVineURL != "" {
		b.WriteString(styles.InfoText.Render(truncateMiddle(d.ComicVineURL, width)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
