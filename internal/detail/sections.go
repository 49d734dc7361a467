package detail

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/five82/comicvault/internal/comics"
)

const (
	unknownTitle = "Unknown title"
	notAvailable = "N/A"
)

// Field is a labelled scalar.
type Field struct {
	Label string
	Value string
}

// List is a labelled group of names.
type List struct {
	Heading string
	Items   []string
}

// Detail is the content of the detail surface for one record. Optional
// fields are omitted rather than shown empty; only the issue number and the
// publish date fall back to "N/A".
type Detail struct {
	ID           string
	Title        string
	Issue        string
	Publisher    string
	CoverURL     string
	Info         []Field
	Lists        []List
	Plot         string
	ComicVineURL string
}

var headingCaser = cases.Title(language.English)

// Sections builds the detail content for rec.
func Sections(rec comics.ComicRecord) Detail {
	meta := rec.Metadata
	d := Detail{
		ID:           rec.ID,
		Title:        orDefault(meta.Title, unknownTitle),
		Issue:        orDefault(meta.IssueNumber.String(), notAvailable),
		Publisher:    strings.TrimSpace(meta.Publisher),
		CoverURL:     strings.TrimSpace(meta.CoverURL),
		Plot:         strings.TrimSpace(meta.Plot),
		ComicVineURL: strings.TrimSpace(meta.ComicVineURL),
	}

	d.Info = append(d.Info, Field{Label: "Published", Value: orDefault(meta.PublishDate, notAvailable)})
	if v := strings.TrimSpace(meta.StoreDate); v != "" {
		d.Info = append(d.Info, Field{Label: "On sale", Value: v})
	}
	if v := meta.CoverPrice.String(); v != "" {
		d.Info = append(d.Info, Field{Label: "Cover price", Value: v})
	}

	for _, l := range []struct {
		key   string
		items []string
	}{
		{"writers", meta.Writers},
		{"artists", meta.Artists},
		{"characters", meta.Characters},
		{"teams", meta.Teams},
		{"story arcs", meta.StoryArcs},
	} {
		items := nonBlank(l.items)
		if len(items) == 0 {
			continue
		}
		d.Lists = append(d.Lists, List{Heading: headingCaser.String(l.key), Items: items})
	}
	return d
}

// Plain renders the detail as plain text, one section per paragraph.
func (d Detail) Plain() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  #%s", d.Title, d.Issue)
	if d.Publisher != "" {
		fmt.Fprintf(&b, "  (%s)", d.Publisher)
	}
	b.WriteString("\n\n")
	for _, f := range d.Info {
		fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
	}
	for _, l := range d.Lists {
		fmt.Fprintf(&b, "\n%s\n  %s\n", l.Heading, strings.Join(l.Items, ", "))
	}
	if d.Plot != "" {
		fmt.Fprintf(&b, "\nPlot\n  %s\n", d.Plot)
	}
	if d.ComicVineURL != "" {
		fmt.Fprintf(&b, "\nComic Vine: %s\n", d.ComicVineURL)
	}
	return b.String()
}

func orDefault(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

func nonBlank(items []string) []string {
	var out []string
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}
