package main

import (
	"encoding/json"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/five82/comicvault/internal/grid"
)

// cardTable renders search results with the same fallbacks as the grid.
func cardTable(cards []grid.Card) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Title", "Issue", "Published"})
	for _, c := range cards {
		tw.AppendRow(table.Row{c.ID, c.Title, c.Issue, c.PublishDate})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Issue", Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
