// Package job drives one identification job at a time: upload, status
// polling on a fixed interval, and the terminal side effects.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comicvault/internal/comics"
	"github.com/five82/comicvault/internal/logging"
	"github.com/five82/comicvault/internal/schedule"
)

const (
	DefaultInterval      = 2000 * time.Millisecond
	DefaultMaxAttempts   = 30
	DefaultRedirectDelay = 1500 * time.Millisecond

	cleanupTimeout = 10 * time.Second

	labelUploading = "Uploading…"
	labelUpload    = "Upload"
	labelRetry     = "Retry upload"
)

// Surface is the upload view the tracker reports to.
type Surface interface {
	SetUploadEnabled(enabled bool, label string)
	ShowNotice(n Notice)
	HideNotice()
	NavigateToCollection() tea.Cmd
}

// Gateway is the backend slice the tracker needs.
type Gateway interface {
	Upload(ctx context.Context, img comics.Image) (string, error)
	CheckStatus(ctx context.Context, blobName string) (comics.StatusResult, error)
	DeleteComic(ctx context.Context, id string) error
}

// Observer is told about every state change and every poll.
type Observer func(state State, job Job)

// Options tune a Tracker. Zero values select the defaults.
type Options struct {
	Interval      time.Duration
	MaxAttempts   int
	RedirectDelay time.Duration
	// Timeout bounds each request; zero leaves it to the gateway.
	Timeout  time.Duration
	Schedule schedule.Func
	Logger   *slog.Logger
	Observer Observer
	Now      func() time.Time
}

// Tracker owns the poll timer. All methods must be called from the Bubble
// Tea update loop.
type Tracker struct {
	gateway       Gateway
	surface       Surface
	interval      time.Duration
	maxAttempts   int
	redirectDelay time.Duration
	timeout       time.Duration
	schedule      schedule.Func
	logger        *slog.Logger
	observer      Observer
	now           func() time.Time

	// gen identifies the live job. Ticks and responses tagged with an older
	// generation are ignored.
	gen     uint64
	stopped bool
	state   State
	job     *Job
}

type uploadedMsg struct {
	owner *Tracker
	gen   uint64
	blob  string
	err   error
}

type tickMsg struct {
	owner *Tracker
	gen   uint64
}

type statusMsg struct {
	owner   *Tracker
	gen     uint64
	attempt int
	result  comics.StatusResult
	err     error
}

type redirectMsg struct {
	owner *Tracker
	gen   uint64
}

// New builds an idle tracker.
func New(gateway Gateway, surface Surface, opts Options) *Tracker {
	t := &Tracker{
		gateway:       gateway,
		surface:       surface,
		interval:      opts.Interval,
		maxAttempts:   opts.MaxAttempts,
		redirectDelay: opts.RedirectDelay,
		timeout:       opts.Timeout,
		schedule:      schedule.Or(opts.Schedule),
		logger:        logging.OrDiscard(opts.Logger).With("component", "job"),
		observer:      opts.Observer,
		now:           opts.Now,
		stopped:       true,
	}
	if t.interval <= 0 {
		t.interval = DefaultInterval
	}
	if t.maxAttempts <= 0 {
		t.maxAttempts = DefaultMaxAttempts
	}
	if t.redirectDelay <= 0 {
		t.redirectDelay = DefaultRedirectDelay
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	return t.state
}

// Job returns a copy of the current job, if one was started.
func (t *Tracker) Job() (Job, bool) {
	if t.job == nil {
		return Job{}, false
	}
	return *t.job, true
}

// reset invalidates the previous job's timer and any responses still in
// flight for it. Every path that starts new work goes through here.
func (t *Tracker) reset() uint64 {
	t.gen++
	t.stopped = true
	t.job = nil
	return t.gen
}

// Submit uploads img and starts tracking the resulting job. Submits while an
// upload is in flight are dropped.
func (t *Tracker) Submit(img comics.Image) tea.Cmd {
	if t.state == Uploading {
		t.logger.Debug("upload already in progress", "file", img.Name)
		return nil
	}
	gen := t.reset()
	t.state = Uploading
	t.surface.SetUploadEnabled(false, labelUploading)
	t.surface.HideNotice()
	t.notify()
	t.logger.Info("uploading image", "file", img.Name, "bytes", img.Size())

	gateway, timeout := t.gateway, t.timeout
	return func() tea.Msg {
		ctx, cancel := requestContext(timeout)
		defer cancel()
		blob, err := gateway.Upload(ctx, img)
		return uploadedMsg{owner: t, gen: gen, blob: blob, err: err}
	}
}

// Start begins polling blob, abandoning any job in progress. The first poll
// fires one interval later.
func (t *Tracker) Start(blob string) tea.Cmd {
	gen := t.reset()
	now := t.now()
	t.job = &Job{
		BlobReference: blob,
		Status:        comics.StatusPending,
		StartedAt:     now,
		UpdatedAt:     now,
	}
	t.stopped = false
	t.state = Polling
	t.notify()
	t.logger.Info("tracking job", "blob", blob, "interval", t.interval, "max_attempts", t.maxAttempts)
	return t.scheduleTick(gen)
}

// Update handles the tracker's own messages and ignores everything else.
func (t *Tracker) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case uploadedMsg:
		if msg.owner == t && msg.gen == t.gen {
			return t.handleUploaded(msg)
		}
	case tickMsg:
		if msg.owner == t && msg.gen == t.gen && !t.stopped {
			return t.handleTick(msg.gen)
		}
	case statusMsg:
		if msg.owner != t {
			return nil
		}
		if msg.gen != t.gen || t.stopped {
			t.logger.Debug("ignoring late status response", "attempt", msg.attempt)
			return nil
		}
		return t.handleStatus(msg)
	case redirectMsg:
		if msg.owner == t && msg.gen == t.gen {
			t.surface.SetUploadEnabled(true, labelUpload)
			return t.surface.NavigateToCollection()
		}
	}
	return nil
}

func (t *Tracker) handleUploaded(msg uploadedMsg) tea.Cmd {
	if msg.err != nil {
		t.state = Idle
		t.logger.Warn("upload failed", "error", msg.err)
		t.surface.SetUploadEnabled(true, labelUpload)
		t.surface.ShowNotice(Notice{Kind: Error, Text: "Error: " + errorText(msg.err)})
		t.notify()
		return nil
	}
	t.surface.ShowNotice(Notice{Kind: Info, Text: "Image uploaded. Analyzing the comic…"})
	return t.Start(msg.blob)
}

func (t *Tracker) handleTick(gen uint64) tea.Cmd {
	t.job.Attempts++
	t.job.UpdatedAt = t.now()
	if t.job.Attempts > t.maxAttempts {
		t.stop(TimedOut)
		t.logger.Warn("job timed out", "blob", t.job.BlobReference, "attempts", t.job.Attempts-1)
		t.surface.ShowNotice(Notice{
			Kind: Warning,
			Text: "Timeout. The analysis is taking longer than expected. Check the collection to see whether it appears.",
		})
		t.surface.SetUploadEnabled(true, labelRetry)
		t.notify()
		return nil
	}
	t.notify()

	// The next tick does not wait for this poll's response.
	return tea.Batch(t.poll(gen, t.job.BlobReference, t.job.Attempts), t.scheduleTick(gen))
}

func (t *Tracker) handleStatus(msg statusMsg) tea.Cmd {
	logger := t.logger.With("blob", t.job.BlobReference, "attempt", msg.attempt)
	if msg.err != nil {
		logger.Warn("status poll failed", "error", msg.err)
		return nil
	}

	res := msg.result
	switch res.Status {
	case comics.StatusCompleted:
		t.stop(Completed)
		t.job.Status = res.Status
		t.job.Comic = res.Comic
		t.job.UpdatedAt = t.now()
		title := t.job.Title()
		if title == "" {
			title = "Unknown comic"
		}
		logger.Info("job completed", "title", title)
		t.surface.ShowNotice(Notice{Kind: Success, Text: fmt.Sprintf("Success! Found: %q. Redirecting…", title)})
		t.notify()
		gen := msg.gen
		return t.schedule(t.redirectDelay, func(time.Time) tea.Msg {
			return redirectMsg{owner: t, gen: gen}
		})

	case comics.StatusError:
		t.stop(Failed)
		t.job.Status = res.Status
		t.job.Comic = res.Comic
		t.job.Message = res.Message
		t.job.UpdatedAt = t.now()
		reason := res.Message
		if reason == "" {
			reason = "Unknown error"
		}
		logger.Warn("job failed", "reason", reason)
		t.surface.ShowNotice(Notice{Kind: Error, Text: "Analysis failed. " + reason + " Try a clearer image."})
		t.surface.SetUploadEnabled(true, labelRetry)
		t.notify()
		if res.Comic != nil && res.Comic.ID != "" {
			return t.cleanup(res.Comic.ID)
		}
		return nil

	default:
		logger.Debug("job still pending", "status", string(res.Status))
		return nil
	}
}

// stop makes the terminal transition. It reports false if the job had
// already stopped.
func (t *Tracker) stop(state State) bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	t.state = state
	return true
}

func (t *Tracker) scheduleTick(gen uint64) tea.Cmd {
	return t.schedule(t.interval, func(time.Time) tea.Msg {
		return tickMsg{owner: t, gen: gen}
	})
}

func (t *Tracker) poll(gen uint64, blob string, attempt int) tea.Cmd {
	gateway, timeout := t.gateway, t.timeout
	return func() tea.Msg {
		ctx, cancel := requestContext(timeout)
		defer cancel()
		res, err := gateway.CheckStatus(ctx, blob)
		return statusMsg{owner: t, gen: gen, attempt: attempt, result: res, err: err}
	}
}

// cleanup deletes the record of a failed analysis. Fire-and-forget: the
// command produces no message, nothing waits on it, and a failure is only
// logged.
func (t *Tracker) cleanup(id string) tea.Cmd {
	gateway, logger := t.gateway, t.logger.With("comic_id", id)
	logger.Info("removing failed analysis record")
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := gateway.DeleteComic(ctx, id); err != nil {
			logger.Warn("cleanup delete failed", "error", err)
		}
		return nil
	}
}

func (t *Tracker) notify() {
	if t.observer == nil {
		return
	}
	var snapshot Job
	if t.job != nil {
		snapshot = *t.job
	}
	t.observer(t.state, snapshot)
}

func requestContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(context.Background(), timeout)
	}
	return context.WithCancel(context.Background())
}

func errorText(err error) string {
	if msg, ok := comics.Rejection(err); ok {
		return msg
	}
	return err.Error()
}
