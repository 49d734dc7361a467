package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/comicvault/internal/comics"
)

// State is the tracker's lifecycle position.
type State int

const (
	Idle State = iota
	Uploading
	Polling
	Completed
	Failed
	TimedOut
)

var stateNames = map[State]string{
	Idle:      "idle",
	Uploading: "uploading",
	Polling:   "polling",
	Completed: "completed",
	Failed:    "failed",
	TimedOut:  "timed_out",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether the job can no longer change.
func (s State) Terminal() bool {
	return s == Completed || s == Failed || s == TimedOut
}

// ParseState is the inverse of State.String.
func ParseState(value string) (State, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for s, name := range stateNames {
		if name == v {
			return s, nil
		}
	}
	return Idle, fmt.Errorf("unknown job state %q", value)
}

// Job is one upload-to-identification cycle.
type Job struct {
	BlobReference string
	Attempts      int
	Status        comics.JobStatus
	// Comic is set once the backend reports a record for the job.
	Comic     *comics.ComicRecord
	Message   string
	StartedAt time.Time
	UpdatedAt time.Time
}

// Title returns the identified comic's title, or "" when unknown.
func (j Job) Title() string {
	if j.Comic == nil {
		return ""
	}
	return strings.TrimSpace(j.Comic.Metadata.Title)
}

// Kind classifies a notice.
type Kind int

const (
	Info Kind = iota
	Success
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notice is a user-facing status message.
type Notice struct {
	Kind Kind
	Text string
}
