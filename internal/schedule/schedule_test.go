package schedule

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type firedMsg string

func TestManual_FiresInDeadlineOrder(t *testing.T) {
	clk := NewManual()
	clk.Tick(300*time.Millisecond, func(time.Time) tea.Msg { return firedMsg("late") })
	clk.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return firedMsg("early") })

	if msgs := clk.Advance(50 * time.Millisecond); len(msgs) != 0 {
		t.Fatalf("Advance(50ms) fired %v, want nothing", msgs)
	}
	if clk.Pending() != 2 {
		t.Fatalf("Pending = %d, want 2", clk.Pending())
	}

	msgs := clk.Advance(time.Second)
	if len(msgs) != 2 || msgs[0] != firedMsg("early") || msgs[1] != firedMsg("late") {
		t.Fatalf("Advance fired %v, want [early late]", msgs)
	}
	if clk.Pending() != 0 {
		t.Fatalf("Pending = %d, want 0", clk.Pending())
	}
}

func TestManual_DeadlineIsInclusive(t *testing.T) {
	clk := NewManual()
	var firedAt time.Time
	clk.Tick(2*time.Second, func(at time.Time) tea.Msg {
		firedAt = at
		return firedMsg("tick")
	})
	if msgs := clk.Advance(2 * time.Second); len(msgs) != 1 {
		t.Fatalf("Advance(2s) fired %d msgs, want 1", len(msgs))
	}
	if !firedAt.Equal(clk.Now()) {
		t.Fatalf("fired at %v, want %v", firedAt, clk.Now())
	}
}

func TestOr(t *testing.T) {
	if Or(nil) == nil {
		t.Fatal("Or(nil) returned nil")
	}
	clk := NewManual()
	f := Or(clk.Tick)
	if cmd := f(time.Second, func(time.Time) tea.Msg { return nil }); cmd != nil {
		t.Fatal("manual Tick should return a nil command")
	}
	if clk.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", clk.Pending())
	}
}
