package ui

// Screen layout, in terminal cells.
const (
	// headerLines is the header bar plus the blank line below it.
	headerLines = 2
	footerLines = 1

	// The collection view draws the search row and a blank line above the
	// grid, which is indented by gridLeft columns.
	searchLines = 2
	gridTop     = headerLines + searchLines
	gridLeft    = 1

	// LayoutCompactWidth is the width below which the header drops the
	// theme name and key hints shrink.
	LayoutCompactWidth = 80

	modalWidth       = 48
	detailModalWidth = 72
)
