package detail

import (
	"reflect"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comicvault/internal/comics"
	"github.com/five82/comicvault/internal/grid"
	"github.com/five82/comicvault/internal/search"
	"github.com/five82/comicvault/internal/testsupport"
)

type fakeSurface struct {
	grid     *grid.Grid
	shown    []comics.ComicRecord
	closed   int
	alerts   []string
	confirms []string
	reloads  int
	reload   func() tea.Cmd
}

func (s *fakeSurface) ShowDetail(rec comics.ComicRecord) { s.shown = append(s.shown, rec) }
func (s *fakeSurface) CloseDetail()                      { s.closed++ }
func (s *fakeSurface) RemoveCard(id string) bool         { return s.grid.RemoveCard(id) }
func (s *fakeSurface) DecrementCount()                   { s.grid.DecrementCount() }
func (s *fakeSurface) Alert(msg string)                  { s.alerts = append(s.alerts, msg) }
func (s *fakeSurface) Confirm(prompt string)             { s.confirms = append(s.confirms, prompt) }

func (s *fakeSurface) Reload() tea.Cmd {
	s.reloads++
	if s.reload != nil {
		return s.reload()
	}
	return nil
}

type fixture struct {
	backend *testsupport.Backend
	grid    *grid.Grid
	search  *search.Controller
	surface *fakeSurface
	ctrl    *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := testsupport.NewBackend(t)
	client, err := comics.NewClient(backend.URL(), comics.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	g := grid.New()
	s := search.New(client, g, search.Options{DropStale: true})
	surface := &fakeSurface{grid: g, reload: s.Reload}
	return &fixture{
		backend: backend,
		grid:    g,
		search:  s,
		surface: surface,
		ctrl:    New(client, surface, Options{}),
	}
}

// update routes messages to both controllers, as the collection view does.
func (f *fixture) update(msg tea.Msg) tea.Cmd {
	return tea.Batch(f.ctrl.Update(msg), f.search.Update(msg))
}

func (f *fixture) run(cmd tea.Cmd) {
	testsupport.Drain(cmd, f.update)
}

func TestDelete_BatmanScenario(t *testing.T) {
	f := newFixture(t)
	f.backend.AddComic(comics.ComicRecord{ID: "1", Metadata: comics.Metadata{Title: "Batman"}})
	f.backend.AddComic(comics.ComicRecord{ID: "2", Metadata: comics.Metadata{Title: "Batman"}})

	f.run(f.search.Load("batman"))
	if got := f.grid.IDs(); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("grid ids = %v", got)
	}

	f.ctrl.RequestDelete("1")
	if len(f.surface.confirms) != 1 || f.surface.confirms[0] != DeletePrompt {
		t.Fatalf("confirms = %v", f.surface.confirms)
	}
	if len(f.backend.Calls("/api/delete_comic")) != 0 {
		t.Fatal("delete sent before confirmation")
	}

	f.run(f.ctrl.Confirm(true))

	if got := f.grid.IDs(); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("grid ids = %v, want [2]", got)
	}
	if f.grid.Count() != 1 {
		t.Fatalf("count = %d, want 1", f.grid.Count())
	}
	if f.surface.closed != 1 || f.surface.reloads != 0 {
		t.Fatalf("closed = %d reloads = %d", f.surface.closed, f.surface.reloads)
	}
	if _, armed := f.ctrl.Armed(); armed {
		t.Fatal("confirmation still armed")
	}
}

func TestDelete_CounterFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	f.backend.AddComic(comics.ComicRecord{ID: "42"})
	f.grid.Render([]comics.ComicRecord{{ID: "42"}})
	f.grid.SetCount(0)

	f.ctrl.RequestDelete("42")
	f.run(f.ctrl.Confirm(true))

	if f.grid.Len() != 0 {
		t.Fatalf("card 42 still rendered")
	}
	if f.grid.Count() != 0 {
		t.Fatalf("count = %d, want 0", f.grid.Count())
	}
}

func TestDelete_MissingCardReloads(t *testing.T) {
	f := newFixture(t)
	f.backend.AddComic(comics.ComicRecord{ID: "1", Metadata: comics.Metadata{Title: "Batman"}})
	f.backend.AddComic(comics.ComicRecord{ID: "2", Metadata: comics.Metadata{Title: "Saga"}})
	f.run(f.search.Load("saga"))

	f.ctrl.RequestDelete("1")
	f.run(f.ctrl.Confirm(true))

	if f.surface.reloads != 1 {
		t.Fatalf("reloads = %d, want 1", f.surface.reloads)
	}
	if got := len(f.backend.Calls("/api/search")); got != 2 {
		t.Fatalf("search calls = %d, want 2", got)
	}
	if got := f.grid.IDs(); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("grid ids = %v", got)
	}
}

func TestDelete_RejectedLeavesGrid(t *testing.T) {
	f := newFixture(t)
	f.grid.Render([]comics.ComicRecord{{ID: "7"}})
	f.grid.SetCount(1)

	f.ctrl.RequestDelete("7")
	f.run(f.ctrl.Confirm(true))

	if len(f.surface.alerts) != 1 || f.surface.alerts[0] != "Error: comic not found" {
		t.Fatalf("alerts = %v", f.surface.alerts)
	}
	if f.grid.Len() != 1 || f.grid.Count() != 1 || f.surface.closed != 0 {
		t.Fatalf("rejected delete changed state: len=%d count=%d closed=%d", f.grid.Len(), f.grid.Count(), f.surface.closed)
	}
}

func TestDelete_TransportFailure(t *testing.T) {
	f := newFixture(t)
	f.grid.Render([]comics.ComicRecord{{ID: "7"}})
	f.backend.Server.Close()

	f.ctrl.RequestDelete("7")
	f.run(f.ctrl.Confirm(true))

	if len(f.surface.alerts) != 1 || f.surface.alerts[0] != "Delete failed" {
		t.Fatalf("alerts = %v", f.surface.alerts)
	}
	if f.grid.Len() != 1 {
		t.Fatal("grid changed after a failed delete")
	}
}

func TestDelete_DeclinedSendsNothing(t *testing.T) {
	f := newFixture(t)
	f.backend.AddComic(comics.ComicRecord{ID: "1"})

	f.ctrl.RequestDelete("1")
	if cmd := f.ctrl.Confirm(false); cmd != nil {
		t.Fatal("declined confirmation returned a command")
	}
	if cmd := f.ctrl.Confirm(true); cmd != nil {
		t.Fatal("confirm without a request returned a command")
	}
	if !f.backend.Has("1") || len(f.backend.Calls("/api/delete_comic")) != 0 {
		t.Fatal("declined delete reached the backend")
	}
}

func TestShowDetails(t *testing.T) {
	f := newFixture(t)
	f.backend.AddComic(comics.ComicRecord{ID: "1", Metadata: comics.Metadata{Title: "Batman"}})

	f.run(f.ctrl.ShowDetails("1"))
	if len(f.surface.shown) != 1 || f.surface.shown[0].Metadata.Title != "Batman" {
		t.Fatalf("shown = %#v", f.surface.shown)
	}

	f.run(f.ctrl.ShowDetails("99"))
	if len(f.surface.shown) != 1 {
		t.Fatal("failed fetch opened the detail surface")
	}
	if len(f.surface.alerts) != 1 || f.surface.alerts[0] != "Failed to load details: comic not found" {
		t.Fatalf("alerts = %v", f.surface.alerts)
	}
}

func TestShowDetails_NewestRequestWins(t *testing.T) {
	f := newFixture(t)
	f.backend.AddComic(comics.ComicRecord{ID: "1", Metadata: comics.Metadata{Title: "Batman"}})
	f.backend.AddComic(comics.ComicRecord{ID: "2", Metadata: comics.Metadata{Title: "Saga"}})

	first := f.ctrl.ShowDetails("1")
	second := f.ctrl.ShowDetails("2")

	// The first fetch answers last.
	f.run(second)
	f.run(first)
	if len(f.surface.shown) != 1 || f.surface.shown[0].ID != "2" {
		t.Fatalf("shown = %#v, want only comic 2", f.surface.shown)
	}
}

func TestShowDetails_AbandonDropsResponse(t *testing.T) {
	f := newFixture(t)
	f.backend.AddComic(comics.ComicRecord{ID: "1", Metadata: comics.Metadata{Title: "Batman"}})

	cmd := f.ctrl.ShowDetails("1")
	f.ctrl.Abandon()
	f.run(cmd)
	if len(f.surface.shown) != 0 {
		t.Fatalf("shown = %#v after abandon", f.surface.shown)
	}

	f.run(f.ctrl.ShowDetails("99"))
	if len(f.surface.alerts) != 1 {
		t.Fatalf("alerts = %v, want the fresh request to report", f.surface.alerts)
	}
}
