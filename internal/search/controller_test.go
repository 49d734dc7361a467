package search

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comicvault/internal/comics"
	"github.com/five82/comicvault/internal/grid"
	"github.com/five82/comicvault/internal/schedule"
	"github.com/five82/comicvault/internal/testsupport"
)

func newController(t *testing.T, backend *testsupport.Backend, dropStale bool) (*Controller, *grid.Grid, *schedule.Manual) {
	t.Helper()
	client, err := comics.NewClient(backend.URL(), comics.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	g := grid.New()
	clock := schedule.NewManual()
	c := New(client, g, Options{DropStale: dropStale, Schedule: clock.Tick})
	return c, g, clock
}

func seed(backend *testsupport.Backend) {
	backend.AddComic(comics.ComicRecord{ID: "1", Metadata: comics.Metadata{Title: "Batman"}})
	backend.AddComic(comics.ComicRecord{ID: "2", Metadata: comics.Metadata{Title: "Batman Beyond"}})
	backend.AddComic(comics.ComicRecord{ID: "3", Metadata: comics.Metadata{Title: "Saga"}})
}

func searchedTerms(t *testing.T, backend *testsupport.Backend) []string {
	t.Helper()
	var terms []string
	for _, call := range backend.Calls("/api/search") {
		q, err := url.ParseQuery(call.Query)
		if err != nil {
			t.Fatalf("parse query %q: %v", call.Query, err)
		}
		terms = append(terms, q.Get("q"))
	}
	return terms
}

func TestOnInput_DebouncesToFinalTerm(t *testing.T) {
	backend := testsupport.NewBackend(t)
	seed(backend)
	c, g, clock := newController(t, backend, true)

	for _, term := range []string{"b", "ba", "bat", "batm", "batman"} {
		testsupport.Drain(c.OnInput(term), c.Update)
		testsupport.Deliver(clock.Advance(100*time.Millisecond), c.Update)
	}
	if got := searchedTerms(t, backend); len(got) != 0 {
		t.Fatalf("searched before the quiet window: %v", got)
	}

	testsupport.Deliver(clock.Advance(DefaultDebounce), c.Update)

	if got := searchedTerms(t, backend); !reflect.DeepEqual(got, []string{"batman*"}) {
		t.Fatalf("searched terms = %v, want [batman*]", got)
	}
	if g.Len() != 2 || g.Count() != 2 {
		t.Fatalf("grid has %d cards, count %d; want 2, 2", g.Len(), g.Count())
	}
	if c.LastTerm() != "batman" {
		t.Fatalf("LastTerm = %q", c.LastTerm())
	}
	if clock.Pending() != 0 {
		t.Fatalf("%d timers still pending", clock.Pending())
	}
}

func TestOnInput_EmptyTermIsSearched(t *testing.T) {
	backend := testsupport.NewBackend(t)
	seed(backend)
	c, g, clock := newController(t, backend, true)

	testsupport.Drain(c.OnInput(""), c.Update)
	testsupport.Deliver(clock.Advance(DefaultDebounce), c.Update)

	if got := searchedTerms(t, backend); !reflect.DeepEqual(got, []string{"*"}) {
		t.Fatalf("searched terms = %v, want [*]", got)
	}
	if g.Len() != 3 || g.Count() != 3 {
		t.Fatalf("grid has %d cards, count %d; want 3, 3", g.Len(), g.Count())
	}
}

func TestLoad_SearchesImmediatelyAndCancelsPending(t *testing.T) {
	backend := testsupport.NewBackend(t)
	seed(backend)
	c, g, clock := newController(t, backend, true)

	testsupport.Drain(c.OnInput("saga"), c.Update)
	testsupport.Drain(c.Load("bat"), c.Update)
	testsupport.Deliver(clock.Advance(time.Second), c.Update)

	if got := searchedTerms(t, backend); !reflect.DeepEqual(got, []string{"bat*"}) {
		t.Fatalf("searched terms = %v, want [bat*]", got)
	}
	if g.Len() != 2 {
		t.Fatalf("grid has %d cards, want 2", g.Len())
	}
}

func TestSearchFailureLeavesGrid(t *testing.T) {
	backend := testsupport.NewBackend(t)
	seed(backend)
	c, g, _ := newController(t, backend, true)

	testsupport.Drain(c.Load("bat"), c.Update)
	if g.Len() != 2 {
		t.Fatalf("grid has %d cards, want 2", g.Len())
	}

	backend.Server.Close()
	testsupport.Drain(c.Load("saga"), c.Update)
	if !reflect.DeepEqual(g.IDs(), []string{"1", "2"}) || g.Count() != 2 {
		t.Fatalf("failed search changed the grid: %v count %d", g.IDs(), g.Count())
	}
}

func TestSearchWithoutResultsIsNoop(t *testing.T) {
	backend := testsupport.NewBackend(t)
	seed(backend)
	c, g, _ := newController(t, backend, true)
	testsupport.Drain(c.Load("bat"), c.Update)

	backend.SetSearchResponse(500, map[string]any{"error": "index offline"})
	testsupport.Drain(c.Load("saga"), c.Update)

	if g.Len() != 2 || g.Count() != 2 {
		t.Fatalf("grid has %d cards, count %d; want unchanged 2, 2", g.Len(), g.Count())
	}
}

func TestStaleResponses(t *testing.T) {
	tests := []struct {
		name      string
		dropStale bool
		want      []string
	}{
		{"dropped", true, []string{"3"}},
		{"last arrival wins", false, []string{"1", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := testsupport.NewBackend(t)
			seed(backend)
			c, g, _ := newController(t, backend, tt.dropStale)

			older := c.Load("bat")
			newer := c.Load("saga")
			// The newer response arrives first.
			testsupport.Deliver([]tea.Msg{newer(), older()}, c.Update)

			if got := g.IDs(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("grid ids = %v, want %v", got, tt.want)
			}
		})
	}
}

type fakeSearcher struct {
	err error
}

func (f fakeSearcher) Search(context.Context, string) (comics.SearchResult, error) {
	return comics.SearchResult{}, f.err
}

func TestUpdate_IgnoresForeignMessages(t *testing.T) {
	g := grid.New()
	clock := schedule.NewManual()
	a := New(fakeSearcher{err: errors.New("down")}, g, Options{Schedule: clock.Tick})
	b := New(fakeSearcher{}, g, Options{Schedule: clock.Tick})

	a.OnInput("x")
	msgs := clock.Advance(DefaultDebounce)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if cmd := b.Update(msgs[0]); cmd != nil {
		t.Fatal("controller acted on another controller's tick")
	}
	if cmd := a.Update(tea.KeyMsg{}); cmd != nil {
		t.Fatal("controller acted on an unrelated message")
	}
}
