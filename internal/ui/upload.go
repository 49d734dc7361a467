package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/comicvault/internal/comics"
	"github.com/five82/comicvault/internal/job"
)

// navigateMsg switches the active view.
type navigateMsg struct {
	view View
}

// uploadView holds the file picker, the upload button and the job notice.
// It is the job tracker's surface.
type uploadView struct {
	input    textinput.Model
	maxBytes int64

	image   *comics.Image
	enabled bool
	label   string
	notice  *job.Notice
}

var _ job.Surface = (*uploadView)(nil)

func newUploadView(maxBytes int64) *uploadView {
	ti := textinput.New()
	ti.Placeholder = "path/to/cover.jpg"
	ti.Prompt = "File: "
	ti.CharLimit = 4096
	return &uploadView{
		input:    ti,
		maxBytes: maxBytes,
		enabled:  true,
		label:    "Upload",
	}
}

func (u *uploadView) SetUploadEnabled(enabled bool, label string) {
	u.enabled = enabled
	u.label = label
}

func (u *uploadView) ShowNotice(n job.Notice) {
	u.notice = &n
}

func (u *uploadView) HideNotice() {
	u.notice = nil
}

func (u *uploadView) NavigateToCollection() tea.Cmd {
	return emit(navigateMsg{view: ViewCollection})
}

// selectFile loads the image at the input path. Errors are shown as a notice
// and leave the previous selection in place.
func (u *uploadView) selectFile() bool {
	img, err := comics.OpenImage(u.input.Value(), u.maxBytes)
	if err != nil {
		u.ShowNotice(job.Notice{Kind: job.Error, Text: "Error: " + err.Error()})
		return false
	}
	u.image = &img
	u.HideNotice()
	return true
}

// ready reports whether the button would submit.
func (u *uploadView) ready() bool {
	return u.enabled && u.image != nil
}

func (u *uploadView) setWidth(width int) {
	u.input.Width = max(width-lipgloss.Width(u.input.Prompt)-4, 10)
}

func (m Model) renderUpload() string {
	styles := m.theme.Styles()
	u := m.upload
	width := max(m.width-2, 20)

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Upload a cover"))
	b.WriteString("\n\n")
	b.WriteString(styles.Panel.Width(width - 2).Render(u.input.View()))
	b.WriteString("\n")

	if u.image != nil {
		b.WriteString(styles.MutedText.Render("Selected: " + truncateMiddle(u.image.Summary(), width-10)))
	} else {
		b.WriteString(styles.FaintText.Render("No file selected. Type a path and press enter."))
	}
	b.WriteString("\n\n")

	button := styles.Panel.Padding(0, 2)
	switch {
	case u.ready():
		button = button.BorderForeground(lipgloss.Color(m.theme.BorderFocus)).Foreground(lipgloss.Color(m.theme.Accent)).Bold(true)
	default:
		button = button.BorderForeground(lipgloss.Color(m.theme.BorderMuted)).Foreground(lipgloss.Color(m.theme.Faint))
	}
	label := u.label
	if m.tracker.State() == job.Uploading || m.tracker.State() == job.Polling {
		label = m.spinner.View() + " " + label
	}
	b.WriteString(button.Render(label))
	b.WriteString("\n\n")

	if u.notice != nil {
		b.WriteString(styles.NoticeStyle(u.notice.Kind).Render(truncate(u.notice.Text, width)))
		b.WriteString("\n\n")
	}

	if j, ok := m.tracker.Job(); ok {
		b.WriteString(m.renderJob(j))
	}
	return b.String()
}

func (m Model) renderJob(j job.Job) string {
	styles := m.theme.Styles()
	state := m.tracker.State()
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Faint)).Width(10)

	lines := []string{
		label.Render("Status") + styles.StatusStyle(state).Render(state.String()),
		label.Render("Blob") + styles.Text.Render(truncateMiddle(j.BlobReference, max(m.width-14, 10))),
		label.Render("Polls") + styles.Text.Render(fmt.Sprintf("%d/%d", j.Attempts, m.maxAttempts)),
	}
	if !j.StartedAt.IsZero() {
		lines = append(lines, label.Render("Started")+styles.MutedText.Render(humanize.Time(j.StartedAt)))
	}
	if title := j.Title(); title != "" {
		lines = append(lines, label.Render("Comic")+styles.SuccessText.Render(title))
	}
	return strings.Join(lines, "\n")
}
