// Package search debounces query input and feeds search results to the card
// grid.
package search

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comicvault/internal/comics"
	"github.com/five82/comicvault/internal/logging"
	"github.com/five82/comicvault/internal/schedule"
)

// DefaultDebounce is the quiet window before a typed term is searched.
const DefaultDebounce = 300 * time.Millisecond

// Surface receives search results.
type Surface interface {
	Render(records []comics.ComicRecord)
	SetCount(n int)
}

// Searcher is the gateway slice the controller needs.
type Searcher interface {
	Search(ctx context.Context, term string) (comics.SearchResult, error)
}

// Options tune a Controller. Zero values select the defaults.
type Options struct {
	Debounce time.Duration
	// DropStale discards a response older than the newest one already shown.
	// Without it the last response to arrive wins.
	DropStale bool
	Timeout   time.Duration
	Schedule  schedule.Func
	Logger    *slog.Logger
}

// Controller owns the debounce timer and the request sequence. All methods
// must be called from the Bubble Tea update loop.
type Controller struct {
	gateway  Searcher
	surface  Surface
	debounce time.Duration
	drop     bool
	timeout  time.Duration
	schedule schedule.Func
	logger   *slog.Logger

	gen     uint64
	seq     uint64
	applied uint64
	term    string
}

type debounceMsg struct {
	owner *Controller
	gen   uint64
	term  string
}

type resultMsg struct {
	owner  *Controller
	seq    uint64
	term   string
	result comics.SearchResult
	err    error
}

// New builds a controller that renders into surface.
func New(gateway Searcher, surface Surface, opts Options) *Controller {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Controller{
		gateway:  gateway,
		surface:  surface,
		debounce: debounce,
		drop:     opts.DropStale,
		timeout:  opts.Timeout,
		schedule: schedule.Or(opts.Schedule),
		logger:   logging.OrDiscard(opts.Logger).With("component", "search"),
	}
}

// LastTerm returns the most recent term typed or loaded.
func (c *Controller) LastTerm() string {
	return c.term
}

// reset invalidates the pending debounce tick, if any.
func (c *Controller) reset() uint64 {
	c.gen++
	return c.gen
}

// OnInput replaces any pending search with one for term, fired after the
// debounce window. The empty term is searched like any other.
func (c *Controller) OnInput(term string) tea.Cmd {
	c.term = term
	gen := c.reset()
	return c.schedule(c.debounce, func(time.Time) tea.Msg {
		return debounceMsg{owner: c, gen: gen, term: term}
	})
}

// Load searches term immediately, cancelling any pending debounced search.
func (c *Controller) Load(term string) tea.Cmd {
	c.term = term
	c.reset()
	return c.execute(term)
}

// Reload repeats the search for the last term.
func (c *Controller) Reload() tea.Cmd {
	return c.Load(c.term)
}

// Update handles the controller's own messages and ignores everything else.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.owner != c || msg.gen != c.gen {
			return nil
		}
		return c.execute(msg.term)
	case resultMsg:
		if msg.owner != c {
			return nil
		}
		c.apply(msg)
	}
	return nil
}

func (c *Controller) execute(term string) tea.Cmd {
	c.seq++
	seq := c.seq
	gateway := c.gateway
	timeout := c.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		res, err := gateway.Search(ctx, term)
		return resultMsg{owner: c, seq: seq, term: term, result: res, err: err}
	}
}

func (c *Controller) apply(msg resultMsg) {
	logger := c.logger.With("term", msg.term, "seq", msg.seq)
	if msg.err != nil {
		logger.Warn("search failed", "error", msg.err)
		return
	}
	if !msg.result.Present {
		logger.Debug("search response without results")
		return
	}
	if c.drop && msg.seq < c.applied {
		logger.Debug("dropping stale search response", "applied", c.applied)
		return
	}
	c.applied = msg.seq
	c.surface.Render(msg.result.Results)
	c.surface.SetCount(len(msg.result.Results))
	logger.Debug("search applied", "results", len(msg.result.Results))
}
