package detail

import (
	"strings"
	"testing"

	"github.com/five82/comicvault/internal/comics"
)

func TestSections_Fallbacks(t *testing.T) {
	d := Sections(comics.ComicRecord{ID: "1"})

	if d.Title != "Unknown title" || d.Issue != "N/A" {
		t.Fatalf("title/issue = %q/%q", d.Title, d.Issue)
	}
	if len(d.Info) != 1 || d.Info[0] != (Field{Label: "Published", Value: "N/A"}) {
		t.Fatalf("info = %#v", d.Info)
	}
	if len(d.Lists) != 0 || d.Plot != "" || d.ComicVineURL != "" || d.Publisher != "" {
		t.Fatalf("optional sections present: %#v", d)
	}
}

func TestSections_OptionalFields(t *testing.T) {
	d := Sections(comics.ComicRecord{ID: "1", Metadata: comics.Metadata{
		Title:        "Batman",
		IssueNumber:  "1",
		PublishDate:  "1940-04-25",
		StoreDate:    "1940-04-24",
		CoverPrice:   "0.10",
		Publisher:    "DC Comics",
		Writers:      []string{"Bill Finger"},
		Artists:      []string{" ", ""},
		StoryArcs:    []string{"Origins"},
		Plot:         "The first issue.",
		ComicVineURL: "https://comicvine.gamespot.com/batman-1/",
	}})

	if len(d.Info) != 3 {
		t.Fatalf("info = %#v", d.Info)
	}
	var headings []string
	for _, l := range d.Lists {
		headings = append(headings, l.Heading)
	}
	if strings.Join(headings, ",") != "Writers,Story Arcs" {
		t.Fatalf("list headings = %v", headings)
	}

	plain := d.Plain()
	for _, want := range []string{"Batman  #1  (DC Comics)", "Cover price: 0.10", "Bill Finger", "The first issue.", "Comic Vine:"} {
		if !strings.Contains(plain, want) {
			t.Errorf("plain text missing %q:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "Artists") {
		t.Error("blank artist list rendered")
	}
}
