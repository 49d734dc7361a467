// Package detail fetches single records for the detail surface and performs
// confirmed deletes with optimistic removal from the grid.
package detail

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comicvault/internal/comics"
	"github.com/five82/comicvault/internal/logging"
)

// DeletePrompt is shown before any delete reaches the backend.
const DeletePrompt = "Delete this comic permanently?"

// Surface is the collection view the controller drives.
type Surface interface {
	ShowDetail(rec comics.ComicRecord)
	CloseDetail()
	RemoveCard(id string) bool
	DecrementCount()
	// Reload re-runs the current search.
	Reload() tea.Cmd
	Alert(msg string)
	Confirm(prompt string)
}

// Gateway is the backend slice the controller needs.
type Gateway interface {
	FetchComic(ctx context.Context, id string) (*comics.ComicRecord, error)
	DeleteComic(ctx context.Context, id string) error
}

// Options tune a Controller.
type Options struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// Controller handles detail and delete requests from the collection view.
type Controller struct {
	gateway Gateway
	surface Surface
	timeout time.Duration
	logger  *slog.Logger

	armed   bool
	pending string
	// seq numbers detail requests. Only the newest one may open the modal.
	seq uint64
}

type fetchedMsg struct {
	owner  *Controller
	seq    uint64
	id     string
	record *comics.ComicRecord
	err    error
}

type deletedMsg struct {
	owner *Controller
	id    string
	err   error
}

// New builds a controller for surface.
func New(gateway Gateway, surface Surface, opts Options) *Controller {
	return &Controller{
		gateway: gateway,
		surface: surface,
		timeout: opts.Timeout,
		logger:  logging.OrDiscard(opts.Logger).With("component", "detail"),
	}
}

// ShowDetails fetches id and shows it. An earlier request still in flight
// is superseded.
func (c *Controller) ShowDetails(id string) tea.Cmd {
	c.seq++
	seq := c.seq
	gateway := c.gateway
	ctxFn := c.context
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		rec, err := gateway.FetchComic(ctx, id)
		return fetchedMsg{owner: c, seq: seq, id: id, record: rec, err: err}
	}
}

// Abandon drops any detail request still in flight.
func (c *Controller) Abandon() {
	c.seq++
}

// RequestDelete asks the user to confirm deleting id. Nothing is sent yet.
func (c *Controller) RequestDelete(id string) {
	c.armed = true
	c.pending = id
	c.surface.Confirm(DeletePrompt)
}

// Armed returns the id awaiting confirmation.
func (c *Controller) Armed() (string, bool) {
	return c.pending, c.armed
}

// Confirm answers the pending confirmation.
func (c *Controller) Confirm(yes bool) tea.Cmd {
	if !c.armed {
		return nil
	}
	id := c.pending
	c.armed = false
	c.pending = ""
	if !yes {
		c.logger.Debug("delete cancelled", "comic_id", id)
		return nil
	}

	gateway := c.gateway
	ctxFn := c.context
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		err := gateway.DeleteComic(ctx, id)
		return deletedMsg{owner: c, id: id, err: err}
	}
}

// Update handles the controller's own messages and ignores everything else.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case fetchedMsg:
		if msg.owner != c {
			return nil
		}
		if msg.seq != c.seq {
			c.logger.Debug("ignoring superseded detail response", "comic_id", msg.id)
			return nil
		}
		if msg.err != nil {
			c.logger.Warn("fetch comic failed", "comic_id", msg.id, "error", msg.err)
			c.surface.Alert("Failed to load details: " + errorText(msg.err))
			return nil
		}
		c.surface.ShowDetail(*msg.record)
	case deletedMsg:
		if msg.owner != c {
			return nil
		}
		return c.handleDeleted(msg)
	}
	return nil
}

func (c *Controller) handleDeleted(msg deletedMsg) tea.Cmd {
	logger := c.logger.With("comic_id", msg.id)
	if msg.err != nil {
		if reason, ok := comics.Rejection(msg.err); ok {
			logger.Warn("delete rejected", "reason", reason)
			c.surface.Alert("Error: " + reason)
			return nil
		}
		logger.Error("delete failed", "error", msg.err)
		c.surface.Alert("Delete failed")
		return nil
	}

	logger.Info("comic deleted")
	c.surface.CloseDetail()
	if c.surface.RemoveCard(msg.id) {
		c.surface.DecrementCount()
		return nil
	}
	// The card is gone from the grid, usually because a newer search
	// replaced it.
	logger.Debug("deleted card not in grid, reloading")
	return c.surface.Reload()
}

func (c *Controller) context() (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(context.Background(), c.timeout)
	}
	return context.WithCancel(context.Background())
}

func errorText(err error) string {
	if msg, ok := comics.Rejection(err); ok {
		return msg
	}
	return err.Error()
}
