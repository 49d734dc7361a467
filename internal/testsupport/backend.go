// Package testsupport provides a scriptable fake of the collection backend
// and helpers for driving Bubble Tea components synchronously in tests.
package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/five82/comicvault/internal/comics"
)

// Call records one request the backend received.
type Call struct {
	Method string
	Path   string
	Query  string
}

// Upload records one multipart upload.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Size        int
}

// Backend is an in-memory stand-in for the collection API.
type Backend struct {
	Server *httptest.Server

	mu            sync.Mutex
	comics        map[string]comics.ComicRecord
	order         []string
	statuses      map[string][]any
	uploadStatus  int
	uploadPayload any
	calls         []Call
	uploads       []Upload
	searchStatus  int
	searchPayload any
}

// NewBackend starts a fake backend that is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		comics:   make(map[string]comics.ComicRecord),
		statuses: make(map[string][]any),
	}

	r := mux.NewRouter()
	r.Use(b.record)
	r.HandleFunc("/api/search", b.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/api/upload", b.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/api/check_status", b.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/comic/{id}", b.handleComic).Methods(http.MethodGet)
	r.HandleFunc("/api/delete_comic/{id}", b.handleDelete).Methods(http.MethodDelete)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the backend base URL.
func (b *Backend) URL() string {
	return b.Server.URL
}

// AddComic stores a record; search returns records in insertion order.
func (b *Backend) AddComic(rec comics.ComicRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.comics[rec.ID]; !ok {
		b.order = append(b.order, rec.ID)
	}
	b.comics[rec.ID] = rec
}

// Has reports whether id is still stored.
func (b *Backend) Has(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.comics[id]
	return ok
}

// ScriptStatus queues check_status payloads for blob. Each poll consumes one;
// the last payload repeats. Unscripted blobs report pending.
func (b *Backend) ScriptStatus(blob string, payloads ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses[blob] = append(b.statuses[blob], payloads...)
}

// SetUploadResponse overrides the upload reply. The default is success with
// blob name "user/cover.jpg".
func (b *Backend) SetUploadResponse(status int, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploadStatus = status
	b.uploadPayload = payload
}

// SetSearchResponse overrides the search reply.
func (b *Backend) SetSearchResponse(status int, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.searchStatus = status
	b.searchPayload = payload
}

// Calls returns the requests whose path starts with prefix.
func (b *Backend) Calls(prefix string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Uploads returns every upload received.
func (b *Backend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleSearch(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status, payload := b.searchStatus, b.searchPayload
	b.mu.Unlock()
	if payload != nil {
		writeJSON(w, status, payload)
		return
	}

	term := strings.ToLower(strings.TrimSuffix(r.URL.Query().Get("q"), "*"))
	b.mu.Lock()
	results := make([]comics.ComicRecord, 0, len(b.order))
	for _, id := range b.order {
		rec := b.comics[id]
		if term == "" || strings.Contains(strings.ToLower(rec.Metadata.Title), term) {
			results = append(results, rec)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (b *Backend) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "no file"})
		return
	}
	defer file.Close()
	data, _ := io.ReadAll(file)

	b.mu.Lock()
	b.uploads = append(b.uploads, Upload{
		Field:       "file",
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        len(data),
	})
	status, payload := b.uploadStatus, b.uploadPayload
	b.mu.Unlock()

	if payload == nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "blob_name": "user/cover.jpg"})
		return
	}
	writeJSON(w, status, payload)
}

func (b *Backend) handleStatus(w http.ResponseWriter, r *http.Request) {
	blob := r.URL.Query().Get("blob_name")
	if blob == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "message": "missing blob_name"})
		return
	}
	b.mu.Lock()
	queue := b.statuses[blob]
	var payload any = map[string]any{"status": "pending"}
	if len(queue) > 0 {
		payload = queue[0]
		if len(queue) > 1 {
			b.statuses[blob] = queue[1:]
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, payload)
}

func (b *Backend) handleComic(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	rec, ok := b.comics[id]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "comic not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (b *Backend) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	_, ok := b.comics[id]
	if ok {
		delete(b.comics, id)
		kept := b.order[:0]
		for _, existing := range b.order {
			if existing != id {
				kept = append(kept, existing)
			}
		}
		b.order = kept
	}
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "comic not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "deleted"})
}

// IDs returns the stored ids in sorted order.
func (b *Backend) IDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.comics))
	for id := range b.comics {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
