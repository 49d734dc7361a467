package job

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comicvault/internal/comics"
	"github.com/five82/comicvault/internal/schedule"
	"github.com/five82/comicvault/internal/testsupport"
)

type fakeSurface struct {
	enabled     bool
	label       string
	notices     []Notice
	hidden      int
	navigations int
	events      *[]string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{enabled: true, label: labelUpload, events: new([]string)}
}

func (s *fakeSurface) SetUploadEnabled(enabled bool, label string) {
	s.enabled = enabled
	s.label = label
}

func (s *fakeSurface) ShowNotice(n Notice) {
	s.notices = append(s.notices, n)
	*s.events = append(*s.events, "notice:"+n.Kind.String())
}

func (s *fakeSurface) HideNotice() { s.hidden++ }

func (s *fakeSurface) NavigateToCollection() tea.Cmd {
	s.navigations++
	return nil
}

func (s *fakeSurface) last() Notice {
	if len(s.notices) == 0 {
		return Notice{}
	}
	return s.notices[len(s.notices)-1]
}

// recordingGateway logs deletes into the surface's event stream so ordering
// against notices can be checked.
type recordingGateway struct {
	*comics.Client
	events *[]string
}

func (g recordingGateway) DeleteComic(ctx context.Context, id string) error {
	*g.events = append(*g.events, "delete:"+id)
	return g.Client.DeleteComic(ctx, id)
}

type harness struct {
	tracker *Tracker
	surface *fakeSurface
	clock   *schedule.Manual
	backend *testsupport.Backend
	states  []State
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := testsupport.NewBackend(t)
	client, err := comics.NewClient(backend.URL(), comics.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	h := &harness{surface: newFakeSurface(), clock: schedule.NewManual(), backend: backend}
	h.tracker = New(recordingGateway{Client: client, events: h.surface.events}, h.surface, Options{
		Schedule: h.clock.Tick,
		Now:      h.clock.Now,
		Observer: func(s State, _ Job) { h.states = append(h.states, s) },
	})
	return h
}

func (h *harness) run(cmd tea.Cmd) {
	testsupport.Drain(cmd, h.tracker.Update)
}

func (h *harness) advance(d time.Duration) {
	testsupport.Deliver(h.clock.Advance(d), h.tracker.Update)
}

func (h *harness) ticks(n int) {
	for i := 0; i < n; i++ {
		h.advance(DefaultInterval)
	}
}

func (h *harness) polls() int {
	return len(h.backend.Calls("/api/check_status"))
}

func TestTracker_PendingThenCompleted(t *testing.T) {
	h := newHarness(t)
	blob := "user/batman.jpg"
	pending := map[string]any{"status": "pending"}
	h.backend.ScriptStatus(blob, pending, pending, pending, map[string]any{
		"status": "completed",
		"comic":  map[string]any{"id": "1", "metadata": map[string]any{"title": "Batman"}},
	})

	h.run(h.tracker.Start(blob))
	if h.polls() != 0 {
		t.Fatal("polled before the first interval elapsed")
	}
	h.ticks(4)

	if h.polls() != 4 {
		t.Fatalf("polls = %d, want 4", h.polls())
	}
	if h.tracker.State() != Completed {
		t.Fatalf("state = %v, want completed", h.tracker.State())
	}
	if n := h.surface.last(); n.Kind != Success || !strings.Contains(n.Text, `"Batman"`) {
		t.Fatalf("notice = %#v", n)
	}
	job, _ := h.tracker.Job()
	if job.Attempts != 4 || job.Title() != "Batman" {
		t.Fatalf("job = %#v", job)
	}

	h.advance(DefaultRedirectDelay - time.Millisecond)
	if h.surface.navigations != 0 {
		t.Fatal("navigated before the redirect delay")
	}
	h.advance(time.Millisecond)
	if h.surface.navigations != 1 {
		t.Fatalf("navigations = %d, want 1", h.surface.navigations)
	}
	if !h.surface.enabled || h.surface.label != "Upload" {
		t.Fatalf("upload affordance after redirect = %v %q", h.surface.enabled, h.surface.label)
	}

	h.ticks(31)
	if h.polls() != 4 {
		t.Fatalf("polls after completion = %d, want 4", h.polls())
	}
	if h.surface.navigations != 1 {
		t.Fatalf("navigations = %d, want 1", h.surface.navigations)
	}
	if h.states[len(h.states)-1] != Completed {
		t.Fatalf("observer states = %v", h.states)
	}
}

func TestTracker_TimesOutAfterMaxAttempts(t *testing.T) {
	h := newHarness(t)
	h.run(h.tracker.Start("user/slow.jpg"))

	h.ticks(DefaultMaxAttempts)
	if h.polls() != DefaultMaxAttempts || h.tracker.State() != Polling {
		t.Fatalf("after %d ticks: polls = %d, state = %v", DefaultMaxAttempts, h.polls(), h.tracker.State())
	}

	h.ticks(1)
	if h.tracker.State() != TimedOut {
		t.Fatalf("state = %v, want timed_out", h.tracker.State())
	}
	if h.polls() != DefaultMaxAttempts {
		t.Fatalf("31st tick polled: %d", h.polls())
	}
	if n := h.surface.last(); n.Kind != Warning || !strings.HasPrefix(n.Text, "Timeout.") {
		t.Fatalf("notice = %#v", n)
	}
	if !h.surface.enabled || h.surface.label != "Retry upload" {
		t.Fatalf("upload affordance = %v %q", h.surface.enabled, h.surface.label)
	}

	h.ticks(10)
	if h.polls() != DefaultMaxAttempts {
		t.Fatalf("polled after timeout: %d", h.polls())
	}
	if len(h.backend.Calls("/api/delete_comic")) != 0 {
		t.Fatal("timeout must not clean up")
	}
}

func TestTracker_ErrorCleansUpOnceAfterNotice(t *testing.T) {
	h := newHarness(t)
	h.backend.AddComic(comics.ComicRecord{ID: "5", Status: "error"})
	h.backend.ScriptStatus("user/blurry.jpg", map[string]any{
		"status":  "error",
		"message": "No comic recognized.",
		"comic":   map[string]any{"id": "5"},
	})

	h.run(h.tracker.Start("user/blurry.jpg"))
	h.ticks(1)

	if h.tracker.State() != Failed {
		t.Fatalf("state = %v, want failed", h.tracker.State())
	}
	events := *h.surface.events
	if len(events) != 2 || events[0] != "notice:error" || events[1] != "delete:5" {
		t.Fatalf("events = %v, want [notice:error delete:5]", events)
	}
	if n := h.surface.last(); !strings.Contains(n.Text, "No comic recognized.") {
		t.Fatalf("notice = %#v", n)
	}
	if !h.surface.enabled || h.surface.label != "Retry upload" {
		t.Fatalf("upload affordance = %v %q", h.surface.enabled, h.surface.label)
	}
	if h.backend.Has("5") {
		t.Fatal("failed record was not deleted")
	}

	h.ticks(10)
	if got := len(h.backend.Calls("/api/delete_comic")); got != 1 {
		t.Fatalf("delete calls = %d, want 1", got)
	}
	if h.polls() != 1 {
		t.Fatalf("polls = %d, want 1", h.polls())
	}
}

func TestTracker_ErrorWithoutComicOrMessage(t *testing.T) {
	h := newHarness(t)
	h.backend.ScriptStatus("user/x.jpg", map[string]any{"status": "error"})

	h.run(h.tracker.Start("user/x.jpg"))
	h.ticks(1)

	if n := h.surface.last(); !strings.Contains(n.Text, "Unknown error") {
		t.Fatalf("notice = %#v", n)
	}
	if len(h.backend.Calls("/api/delete_comic")) != 0 {
		t.Fatal("deleted without a comic id")
	}
}

func TestTracker_CompletedWithoutTitle(t *testing.T) {
	h := newHarness(t)
	h.backend.ScriptStatus("user/x.jpg", map[string]any{"status": "completed", "comic": map[string]any{"id": "7"}})

	h.run(h.tracker.Start("user/x.jpg"))
	h.ticks(1)

	if n := h.surface.last(); !strings.Contains(n.Text, "Unknown comic") {
		t.Fatalf("notice = %#v", n)
	}
}

func TestTracker_SubmitStartsJob(t *testing.T) {
	h := newHarness(t)
	img := comics.Image{Name: "cover.png", ContentType: "image/png", Data: []byte("png")}

	cmd := h.tracker.Submit(img)
	if h.surface.enabled || h.surface.label != "Uploading…" || h.surface.hidden != 1 {
		t.Fatalf("surface during upload = %v %q hidden=%d", h.surface.enabled, h.surface.label, h.surface.hidden)
	}
	if dup := h.tracker.Submit(img); dup != nil {
		t.Fatal("duplicate submit was not dropped")
	}

	h.run(cmd)
	if got := len(h.backend.Uploads()); got != 1 {
		t.Fatalf("uploads = %d, want 1", got)
	}
	if h.tracker.State() != Polling {
		t.Fatalf("state = %v, want polling", h.tracker.State())
	}
	job, ok := h.tracker.Job()
	if !ok || job.BlobReference != "user/cover.jpg" {
		t.Fatalf("job = %#v", job)
	}
	if n := h.surface.last(); n.Kind != Info {
		t.Fatalf("notice = %#v", n)
	}
	h.ticks(1)
	if h.polls() != 1 {
		t.Fatalf("polls = %d, want 1", h.polls())
	}
}

func TestTracker_SubmitFailure(t *testing.T) {
	h := newHarness(t)
	h.backend.SetUploadResponse(400, map[string]any{"success": false, "error": "File too large"})

	h.run(h.tracker.Submit(comics.Image{Name: "big.png", Data: []byte("x")}))

	if h.tracker.State() != Idle {
		t.Fatalf("state = %v, want idle", h.tracker.State())
	}
	if !h.surface.enabled || h.surface.label != "Upload" {
		t.Fatalf("upload affordance = %v %q", h.surface.enabled, h.surface.label)
	}
	if n := h.surface.last(); n.Kind != Error || n.Text != "Error: File too large" {
		t.Fatalf("notice = %#v", n)
	}
	h.ticks(3)
	if h.polls() != 0 {
		t.Fatal("a failed upload started polling")
	}
}

type scriptedGateway struct {
	statuses []statusReply
	polls    int
	deletes  int
}

type statusReply struct {
	res comics.StatusResult
	err error
}

func (g *scriptedGateway) Upload(context.Context, comics.Image) (string, error) {
	return "blob", nil
}

func (g *scriptedGateway) CheckStatus(context.Context, string) (comics.StatusResult, error) {
	g.polls++
	if len(g.statuses) == 0 {
		return comics.StatusResult{Status: comics.StatusPending}, nil
	}
	reply := g.statuses[0]
	g.statuses = g.statuses[1:]
	return reply.res, reply.err
}

func (g *scriptedGateway) DeleteComic(context.Context, string) error {
	g.deletes++
	return nil
}

func TestTracker_TransportErrorKeepsPolling(t *testing.T) {
	gw := &scriptedGateway{statuses: []statusReply{
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
		{res: comics.StatusResult{Status: comics.StatusCompleted}},
	}}
	surface := newFakeSurface()
	clock := schedule.NewManual()
	tr := New(gw, surface, Options{Schedule: clock.Tick})

	testsupport.Drain(tr.Start("blob"), tr.Update)
	for i := 0; i < 2; i++ {
		testsupport.Deliver(clock.Advance(DefaultInterval), tr.Update)
		if tr.State() != Polling {
			t.Fatalf("tick %d: state = %v, want polling", i+1, tr.State())
		}
	}
	testsupport.Deliver(clock.Advance(DefaultInterval), tr.Update)
	if tr.State() != Completed || gw.polls != 3 {
		t.Fatalf("state = %v polls = %d", tr.State(), gw.polls)
	}
}

func TestTracker_LateResponseAfterRestartIsIgnored(t *testing.T) {
	gw := &scriptedGateway{statuses: []statusReply{
		{res: comics.StatusResult{Status: comics.StatusCompleted}},
	}}
	surface := newFakeSurface()
	clock := schedule.NewManual()
	tr := New(gw, surface, Options{Schedule: clock.Tick})

	testsupport.Drain(tr.Start("old"), tr.Update)
	msgs := clock.Advance(DefaultInterval)
	if len(msgs) != 1 {
		t.Fatalf("got %d tick messages, want 1", len(msgs))
	}
	inflight := tr.Update(msgs[0])

	testsupport.Drain(tr.Start("new"), tr.Update)
	testsupport.Drain(inflight, tr.Update)

	if tr.State() != Polling {
		t.Fatalf("state = %v, want polling", tr.State())
	}
	job, _ := tr.Job()
	if job.BlobReference != "new" || job.Attempts != 0 {
		t.Fatalf("job = %#v", job)
	}
	if len(surface.notices) != 0 {
		t.Fatalf("late response surfaced notices: %v", surface.notices)
	}

	// The old job's timer is dead too: only the new job ticks.
	testsupport.Deliver(clock.Advance(DefaultInterval), tr.Update)
	job, _ = tr.Job()
	if job.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", job.Attempts)
	}
}

func TestTracker_CustomBudget(t *testing.T) {
	gw := &scriptedGateway{}
	clock := schedule.NewManual()
	tr := New(gw, newFakeSurface(), Options{Schedule: clock.Tick, Interval: time.Second, MaxAttempts: 2})

	testsupport.Drain(tr.Start("blob"), tr.Update)
	for i := 0; i < 3; i++ {
		testsupport.Deliver(clock.Advance(time.Second), tr.Update)
	}
	if tr.State() != TimedOut || gw.polls != 2 {
		t.Fatalf("state = %v polls = %d", tr.State(), gw.polls)
	}
}

func TestParseState(t *testing.T) {
	for _, s := range []State{Idle, Uploading, Polling, Completed, Failed, TimedOut} {
		got, err := ParseState(s.String())
		if err != nil || got != s {
			t.Fatalf("ParseState(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseState("bogus"); err == nil {
		t.Fatal("expected error for unknown state")
	}
}
