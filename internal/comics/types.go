package comics

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ComicRecord is a collection item as returned by the backend.
type ComicRecord struct {
	ID       string   `json:"id"`
	Status   string   `json:"status,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// Metadata holds the identified issue's details. Every field is optional.
type Metadata struct {
	Title        string   `json:"title,omitempty"`
	IssueNumber  Text     `json:"issue_number,omitempty"`
	PublishDate  string   `json:"publish_date,omitempty"`
	StoreDate    string   `json:"store_date,omitempty"`
	CoverPrice   Text     `json:"cover_price,omitempty"`
	CoverURL     string   `json:"cover_url,omitempty"`
	Publisher    string   `json:"publisher,omitempty"`
	Writers      []string `json:"writers,omitempty"`
	Artists      []string `json:"artists,omitempty"`
	Characters   []string `json:"characters,omitempty"`
	Teams        []string `json:"teams,omitempty"`
	StoryArcs    []string `json:"story_arcs,omitempty"`
	Plot         string   `json:"plot,omitempty"`
	ComicVineURL string   `json:"comic_vine_url,omitempty"`
}

// Text is a scalar the analysis pipeline may emit as a string, a number or
// a boolean. It decodes all of them to their textual form; null is empty.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		*t = Text(strconv.FormatFloat(val, 'f', -1, 64))
	case bool:
		*t = Text(strconv.FormatBool(val))
	default:
		*t = Text(strings.TrimSpace(string(trimmed)))
	}
	return nil
}

// String returns the trimmed text.
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// JobStatus is the server-reported state of an identification job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusCompleted JobStatus = "completed"
	StatusError     JobStatus = "error"
)

// Terminal reports whether polling should stop on this status.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// StatusResult is the decoded /api/check_status payload.
type StatusResult struct {
	Status JobStatus
	// Comic is set for completed jobs, and for failed ones when the backend
	// kept a record of the failed analysis.
	Comic   *ComicRecord
	Message string
}

// SearchResult is the decoded /api/search payload. Present is false when the
// response carried no results key at all.
type SearchResult struct {
	Results []ComicRecord
	Present bool
}

type searchPayload struct {
	Results *[]ComicRecord `json:"results"`
	Error   string         `json:"error"`
}

type statusPayload struct {
	Status  string       `json:"status"`
	Comic   *ComicRecord `json:"comic"`
	Message string       `json:"message"`
	Details string       `json:"details"`
}

type uploadPayload struct {
	Success  bool   `json:"success"`
	BlobName string `json:"blob_name"`
	Message  string `json:"message"`
	Error    string `json:"error"`
}

type deletePayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type errorPayload struct {
	Error string `json:"error"`
}
