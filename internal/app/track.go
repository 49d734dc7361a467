package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comicvault/internal/comics"
	"github.com/five82/comicvault/internal/job"
	"github.com/five82/comicvault/internal/schedule"
)

// TrackOptions select what a headless run does. Exactly one of Image and
// Blob is set.
type TrackOptions struct {
	Image *comics.Image
	Blob  string
	// Out receives notices and state changes, one per line.
	Out      io.Writer
	Observer job.Observer
	Schedule schedule.Func
}

// Result is the outcome of a headless run.
type Result struct {
	State job.State
	Job   job.Job
}

// OK reports whether the comic was identified.
func (r Result) OK() bool {
	return r.State == job.Completed
}

// Track uploads an image, or resumes a blob, and follows the analysis
// without a UI until it reaches an end state.
func Track(ctx context.Context, env *Env, opts TrackOptions) (Result, error) {
	if (opts.Image == nil) == (opts.Blob == "") {
		return Result{}, errors.New("track needs either an image or a blob reference")
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	surface := &printSurface{out: out}
	observer := chainObservers(progressPrinter(out), opts.Observer)
	tracker := job.New(env.Client, surface, job.Options{
		Interval:      env.Config.PollInterval,
		MaxAttempts:   env.Config.PollMaxAttempts,
		RedirectDelay: env.Config.RedirectDelay,
		Schedule:      opts.Schedule,
		Logger:        env.Logger,
		Observer:      observer,
	})

	m := &trackModel{tracker: tracker, image: opts.Image, blob: opts.Blob}
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return m.result(), ctx.Err()
		}
		return m.result(), fmt.Errorf("track job: %w", err)
	}
	return m.result(), nil
}

// trackModel drives a tracker inside a renderer-less program.
type trackModel struct {
	tracker *job.Tracker
	image   *comics.Image
	blob    string
	started bool
}

func (m *trackModel) Init() tea.Cmd {
	m.started = true
	if m.image != nil {
		return m.tracker.Submit(*m.image)
	}
	return m.tracker.Start(m.blob)
}

func (m *trackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.tracker.Update(msg)
	switch {
	case m.tracker.State() == job.Completed:
		// There is no collection to redirect to.
		return m, tea.Quit
	case m.done():
		// Failed jobs may return a cleanup delete; let it run first.
		return m, tea.Sequence(cmd, tea.Quit)
	}
	return m, cmd
}

func (m *trackModel) View() string {
	return ""
}

// done reports an end state. Idle after start means the upload was rejected.
func (m *trackModel) done() bool {
	switch m.tracker.State() {
	case job.Completed, job.Failed, job.TimedOut:
		return true
	case job.Idle:
		return m.started
	}
	return false
}

func (m *trackModel) result() Result {
	j, _ := m.tracker.Job()
	return Result{State: m.tracker.State(), Job: j}
}

// printSurface writes tracker notices as lines of text.
type printSurface struct {
	out io.Writer
}

func (s *printSurface) SetUploadEnabled(bool, string) {}

func (s *printSurface) ShowNotice(n job.Notice) {
	_, _ = fmt.Fprintf(s.out, "%-7s %s\n", n.Kind.String(), n.Text)
}

func (s *printSurface) HideNotice() {}

func (s *printSurface) NavigateToCollection() tea.Cmd {
	return tea.Quit
}

func progressPrinter(out io.Writer) job.Observer {
	last := job.Idle
	return func(st job.State, j job.Job) {
		if st == job.Polling && j.Attempts > 0 {
			_, _ = fmt.Fprintf(out, "poll    attempt %d\n", j.Attempts)
			return
		}
		if st != last {
			_, _ = fmt.Fprintf(out, "state   %s\n", st.String())
		}
		last = st
	}
}

func chainObservers(observers ...job.Observer) job.Observer {
	return func(st job.State, j job.Job) {
		for _, o := range observers {
			if o != nil {
				o(st, j)
			}
		}
	}
}
