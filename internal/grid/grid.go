// Package grid holds the collection card grid: the card list derived from the
// last search result, the result counter, hit-testing and selection.
package grid

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/comicvault/internal/comics"
)

// Placeholder is shown instead of cards when a render has no results.
const Placeholder = "No comics found for this search."

const (
	// CardWidth and CardHeight are the outer size of a card, border included.
	CardWidth  = 26
	CardHeight = 6
	colGap     = 1

	unknownTitle = "Unknown title"
	notAvailable = "N/A"
)

// Card is the rendered presentation of one record. ID is the lookup key for
// detail and delete.
type Card struct {
	ID          string
	Title       string
	Issue       string
	PublishDate string
	HasCover    bool
}

// CardFromRecord derives the card for rec.
func CardFromRecord(rec comics.ComicRecord) Card {
	meta := rec.Metadata
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = unknownTitle
	}
	issue := meta.IssueNumber.String()
	if issue == "" {
		issue = notAvailable
	}
	return Card{
		ID:          rec.ID,
		Title:       title,
		Issue:       issue,
		PublishDate: strings.TrimSpace(meta.PublishDate),
		HasCover:    strings.TrimSpace(meta.CoverURL) != "",
	}
}

// Grid is the card container. The zero value is an empty grid.
type Grid struct {
	cards    []Card
	count    int
	width    int
	height   int
	selected int
	offset   int
}

// New returns an empty grid.
func New() *Grid {
	return &Grid{}
}

// Render replaces every card with the cards for records. It never appends;
// nil and empty input both leave the grid empty. Duplicate ids are kept.
func (g *Grid) Render(records []comics.ComicRecord) {
	cards := make([]Card, 0, len(records))
	for _, rec := range records {
		cards = append(cards, CardFromRecord(rec))
	}
	g.cards = cards
	g.selected = 0
	g.offset = 0
}

// Cards returns a copy of the current cards.
func (g *Grid) Cards() []Card {
	return append([]Card(nil), g.cards...)
}

// IDs returns the card ids in display order.
func (g *Grid) IDs() []string {
	ids := make([]string, len(g.cards))
	for i, c := range g.cards {
		ids[i] = c.ID
	}
	return ids
}

// Len returns the number of cards.
func (g *Grid) Len() int {
	return len(g.cards)
}

// Empty reports whether the placeholder is showing.
func (g *Grid) Empty() bool {
	return len(g.cards) == 0
}

// RemoveCard removes the first card keyed id. It reports false when no card
// has that id, which happens when a later search replaced the grid.
func (g *Grid) RemoveCard(id string) bool {
	for i, c := range g.cards {
		if c.ID != id {
			continue
		}
		g.cards = append(g.cards[:i], g.cards[i+1:]...)
		if g.selected >= len(g.cards) && g.selected > 0 {
			g.selected = len(g.cards) - 1
		}
		g.clampOffset()
		return true
	}
	return false
}

// SetCount sets the result counter.
func (g *Grid) SetCount(n int) {
	if n < 0 {
		n = 0
	}
	g.count = n
}

// DecrementCount lowers the counter by one, never below zero.
func (g *Grid) DecrementCount() {
	if g.count > 0 {
		g.count--
	}
}

// Count returns the result counter.
func (g *Grid) Count() int {
	return g.count
}

// SetSize sets the area available to the grid.
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.clampOffset()
}

// Columns returns how many cards fit side by side.
func (g *Grid) Columns() int {
	if g.width <= CardWidth {
		return 1
	}
	return 1 + (g.width-CardWidth)/(CardWidth+colGap)
}

func (g *Grid) visibleRows() int {
	rows := g.height / CardHeight
	if rows < 1 {
		return 1
	}
	return rows
}

func (g *Grid) rows() int {
	cols := g.Columns()
	return (len(g.cards) + cols - 1) / cols
}

// CardAt resolves a cell relative to the grid's top-left corner to the id of
// the card under it. Gaps and empty cells resolve to nothing.
func (g *Grid) CardAt(x, y int) (string, bool) {
	if x < 0 || y < 0 || len(g.cards) == 0 {
		return "", false
	}
	cols := g.Columns()
	col := x / (CardWidth + colGap)
	if col >= cols || x%(CardWidth+colGap) >= CardWidth {
		return "", false
	}
	row := y/CardHeight + g.offset
	idx := row*cols + col
	if idx >= len(g.cards) {
		return "", false
	}
	return g.cards[idx].ID, true
}

// Select moves the selection to the first card keyed id.
func (g *Grid) Select(id string) bool {
	for i, c := range g.cards {
		if c.ID == id {
			g.selected = i
			g.clampOffset()
			return true
		}
	}
	return false
}

// Move shifts the selection by dx columns and dy rows, clamped to the cards.
func (g *Grid) Move(dx, dy int) {
	if len(g.cards) == 0 {
		return
	}
	next := g.selected + dx + dy*g.Columns()
	if next < 0 {
		next = 0
	}
	if next >= len(g.cards) {
		next = len(g.cards) - 1
	}
	g.selected = next
	g.clampOffset()
}

// Selected returns the selected card.
func (g *Grid) Selected() (Card, bool) {
	if g.selected < 0 || g.selected >= len(g.cards) {
		return Card{}, false
	}
	return g.cards[g.selected], true
}

func (g *Grid) clampOffset() {
	if len(g.cards) == 0 {
		g.offset = 0
		return
	}
	row := g.selected / g.Columns()
	visible := g.visibleRows()
	if row < g.offset {
		g.offset = row
	}
	if row >= g.offset+visible {
		g.offset = row - visible + 1
	}
	if maxOffset := g.rows() - visible; g.offset > maxOffset {
		g.offset = max(maxOffset, 0)
	}
}

// Styles are the lipgloss styles used to draw cards.
type Styles struct {
	Card        lipgloss.Style
	Selected    lipgloss.Style
	Title       lipgloss.Style
	Meta        lipgloss.Style
	Placeholder lipgloss.Style
}

// DefaultStyles returns uncolored styles.
func DefaultStyles() Styles {
	return Styles{
		Card:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()),
		Selected:    lipgloss.NewStyle().Border(lipgloss.ThickBorder()),
		Title:       lipgloss.NewStyle().Bold(true),
		Meta:        lipgloss.NewStyle().Faint(true),
		Placeholder: lipgloss.NewStyle().Italic(true),
	}
}

// View draws the visible rows of cards, or the placeholder.
func (g *Grid) View(st Styles) string {
	if len(g.cards) == 0 {
		return st.Placeholder.Render(Placeholder)
	}
	cols := g.Columns()
	inner := CardWidth - 2

	var rows []string
	last := min(g.rows(), g.offset+g.visibleRows())
	for r := g.offset; r < last; r++ {
		var cells []string
		for c := 0; c < cols; c++ {
			idx := r*cols + c
			if idx >= len(g.cards) {
				break
			}
			if c > 0 {
				cells = append(cells, strings.Repeat(" ", colGap))
			}
			box := st.Card
			if idx == g.selected {
				box = st.Selected
			}
			box = box.Width(inner).Height(CardHeight - 2).MaxHeight(CardHeight)
			cells = append(cells, box.Render(cardBody(g.cards[idx], inner, st)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func cardBody(c Card, width int, st Styles) string {
	cover := "no cover"
	if c.HasCover {
		cover = "▣ cover"
	}
	lines := []string{
		st.Title.Render(clip(c.Title, width)),
		st.Meta.Render(clip("#"+c.Issue, width)),
		st.Meta.Render(clip(c.PublishDate, width)),
		st.Meta.Render(cover),
	}
	return strings.Join(lines, "\n")
}

func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
