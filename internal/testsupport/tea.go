package testsupport

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Drain runs cmd synchronously and feeds every resulting message to update,
// executing the commands update returns depth first. Batches are expanded.
// It returns every message delivered. Commands must not block; components
// under test schedule their timers on a schedule.Manual clock.
func Drain(cmd tea.Cmd, update func(tea.Msg) tea.Cmd) []tea.Msg {
	var delivered []tea.Msg
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		msg := c()
		if msg == nil {
			return
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, inner := range batch {
				run(inner)
			}
			return
		}
		delivered = append(delivered, msg)
		run(update(msg))
	}
	run(cmd)
	return delivered
}

// Deliver feeds msgs to update and drains the resulting commands.
func Deliver(msgs []tea.Msg, update func(tea.Msg) tea.Cmd) []tea.Msg {
	var delivered []tea.Msg
	for _, msg := range msgs {
		delivered = append(delivered, msg)
		delivered = append(delivered, Drain(update(msg), update)...)
	}
	return delivered
}
