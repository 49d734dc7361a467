// Package schedule abstracts the timers used by the job tracker and the
// search controller so they can run on a manual clock in tests.
package schedule

import (
	"sort"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Func arranges for fn's message to be delivered once d has elapsed.
// tea.Tick satisfies it.
type Func func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// Tea schedules on the Bubble Tea runtime.
var Tea Func = tea.Tick

// Or returns f, falling back to Tea when f is nil.
func Or(f Func) Func {
	if f == nil {
		return Tea
	}
	return f
}

// Manual is a clock that only moves when Advance is called. Scheduled
// callbacks are held until their deadline passes.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []timer
}

type timer struct {
	at  time.Time
	seq int
	fn  func(time.Time) tea.Msg
}

// NewManual returns a manual clock starting at the Unix epoch.
func NewManual() *Manual {
	return &Manual{now: time.Unix(0, 0).UTC()}
}

// Tick registers fn and returns a nil command; the message is produced by Advance.
func (m *Manual) Tick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.pending = append(m.pending, timer{at: m.now.Add(d), seq: m.seq, fn: fn})
	return nil
}

// Advance moves the clock forward and returns the messages of every timer
// whose deadline passed, in deadline order.
func (m *Manual) Advance(d time.Duration) []tea.Msg {
	m.mu.Lock()
	m.now = m.now.Add(d)
	var due, keep []timer
	for _, t := range m.pending {
		if !t.at.After(m.now) {
			due = append(due, t)
		} else {
			keep = append(keep, t)
		}
	}
	m.pending = keep
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	msgs := make([]tea.Msg, 0, len(due))
	for _, t := range due {
		if msg := t.fn(t.at); msg != nil {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// Pending reports how many timers have not fired yet.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Now returns the manual clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}
