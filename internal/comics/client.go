package comics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Gateway is the full set of backend calls. *Client implements it; the
// controllers each depend on the slice they need.
type Gateway interface {
	Search(ctx context.Context, term string) (SearchResult, error)
	Upload(ctx context.Context, img Image) (string, error)
	CheckStatus(ctx context.Context, blobName string) (StatusResult, error)
	FetchComic(ctx context.Context, id string) (*ComicRecord, error)
	DeleteComic(ctx context.Context, id string) error
}

// Ensure Client implements Gateway at compile time.
var _ Gateway = (*Client)(nil)

// Client talks to the collection backend's HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

const (
	defaultAPIURL    = "http://127.0.0.1:8000"
	defaultUserAgent = "comicvault/0.1"
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 8 << 20
	requestIDHeader  = "X-Request-ID"
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for the backend at apiURL. A bare host:port is
// treated as http.
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// QueryTerm builds the q parameter value for a raw search term: the term is
// NFC-normalized and suffixed with the wildcard. The empty term yields "*".
func QueryTerm(term string) string {
	return norm.NFC.String(term) + "*"
}

// Search queries the collection index.
func (c *Client) Search(ctx context.Context, term string) (SearchResult, error) {
	if c == nil {
		return SearchResult{}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("q", QueryTerm(term))
	rel := &url.URL{Path: "/api/search", RawQuery: values.Encode()}

	resp, err := c.send(ctx, http.MethodGet, rel, nil, "")
	if err != nil {
		return SearchResult{}, err
	}
	var payload searchPayload
	if err := resp.decode(&payload); err != nil {
		return SearchResult{}, err
	}
	if payload.Results == nil {
		if payload.Error != "" {
			c.logger.Warn("search returned no results", "error", payload.Error, "status", resp.status)
		}
		return SearchResult{}, nil
	}
	return SearchResult{Results: *payload.Results, Present: true}, nil
}

// Upload sends an image as the multipart field "file" and returns the blob
// reference used to poll the analysis.
func (c *Client) Upload(ctx context.Context, img Image) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	if len(img.Data) == 0 {
		return "", fmt.Errorf("image is empty")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(img.Name)))
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return "", fmt.Errorf("write multipart part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, &url.URL{Path: "/api/upload"}, &body, writer.FormDataContentType())
	if err != nil {
		return "", err
	}
	var payload uploadPayload
	if err := resp.decode(&payload); err != nil {
		return "", err
	}
	if !payload.Success {
		return "", &RejectedError{Op: "upload", Message: fallback(payload.Error, "upload failed"), StatusCode: resp.status}
	}
	blob := strings.TrimSpace(payload.BlobName)
	if blob == "" {
		return "", &RejectedError{Op: "upload", Message: "response carried no blob_name", StatusCode: resp.status}
	}
	return blob, nil
}

// CheckStatus asks whether the analysis of blobName has finished.
func (c *Client) CheckStatus(ctx context.Context, blobName string) (StatusResult, error) {
	if c == nil {
		return StatusResult{}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("blob_name", blobName)
	rel := &url.URL{Path: "/api/check_status", RawQuery: values.Encode()}

	resp, err := c.send(ctx, http.MethodGet, rel, nil, "")
	if err != nil {
		return StatusResult{}, err
	}
	var payload statusPayload
	if err := resp.decode(&payload); err != nil {
		return StatusResult{}, err
	}
	if payload.Details != "" {
		c.logger.Debug("status details", "blob", blobName, "details", payload.Details)
	}
	return StatusResult{
		Status:  JobStatus(strings.ToLower(strings.TrimSpace(payload.Status))),
		Comic:   payload.Comic,
		Message: strings.TrimSpace(payload.Message),
	}, nil
}

// FetchComic retrieves the full record for id.
func (c *Client) FetchComic(ctx context.Context, id string) (*ComicRecord, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("comic id required")
	}
	rel := &url.URL{Path: "/api/comic/" + id, RawPath: "/api/comic/" + url.PathEscape(id)}

	resp, err := c.send(ctx, http.MethodGet, rel, nil, "")
	if err != nil {
		return nil, err
	}
	if resp.failed() {
		var payload errorPayload
		if err := resp.decode(&payload); err != nil {
			return nil, err
		}
		return nil, &RejectedError{Op: "fetch comic", Message: fallback(payload.Error, http.StatusText(resp.status)), StatusCode: resp.status}
	}
	var record ComicRecord
	if err := resp.decode(&record); err != nil {
		return nil, err
	}
	if record.ID == "" {
		record.ID = id
	}
	return &record, nil
}

// DeleteComic removes id from the collection.
func (c *Client) DeleteComic(ctx context.Context, id string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("comic id required")
	}
	rel := &url.URL{Path: "/api/delete_comic/" + id, RawPath: "/api/delete_comic/" + url.PathEscape(id)}

	resp, err := c.send(ctx, http.MethodDelete, rel, nil, "")
	if err != nil {
		return err
	}
	var payload deletePayload
	if err := resp.decode(&payload); err != nil {
		return err
	}
	if !payload.Success {
		return &RejectedError{Op: "delete", Message: fallback(payload.Error, "delete failed"), StatusCode: resp.status}
	}
	return nil
}

type response struct {
	path   string
	status int
	body   []byte
}

func (r response) failed() bool {
	return r.status >= 400
}

// decode parses the JSON body. The backend reports most failures as JSON
// with an error status, so bodies are decoded regardless of the code; only
// an undecodable error response becomes a status error.
func (r response) decode(dest any) error {
	if err := json.Unmarshal(r.body, dest); err != nil {
		if r.failed() {
			return fmt.Errorf("api %s returned status %d", r.path, r.status)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method string, rel *url.URL, body io.Reader, contentType string) (response, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", rel.Path, "request_id", requestID, "error", err)
		return response{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return response{}, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("request done",
		"method", method,
		"path", rel.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return response{path: rel.Path, status: resp.StatusCode, body: data}, nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func fallback(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

// RejectedError is an application-level failure reported by the backend
// (success:false, or an error payload on a failed request).
type RejectedError struct {
	Op         string
	Message    string
	StatusCode int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Op, e.Message)
}

// Rejection returns the server-supplied message when err is a *RejectedError.
func Rejection(err error) (string, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Message, true
	}
	return "", false
}
