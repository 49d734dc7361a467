// Package comics provides the HTTP client for the comic collection backend.
//
// # Endpoints
//
//   - GET /api/search?q=<term>*: full-text search; the wildcard is always appended
//   - POST /api/upload: multipart upload of a cover photo in field "file"
//   - GET /api/check_status?blob_name=<ref>: analysis job status
//   - GET /api/comic/<id>: full record
//   - DELETE /api/delete_comic/<id>: remove a record
//
// Responses are decoded once into tagged values. SearchResult.Present
// distinguishes a missing results key from an empty list, StatusResult
// carries a normalized JobStatus, and application failures (success:false,
// error payloads on 4xx/5xx) surface as *RejectedError so callers can show the
// server's message. Transport failures are wrapped errors.
//
// Every request carries Accept: application/json, a User-Agent, and a random
// X-Request-ID for correlating with backend logs.
//
// The Client is safe for concurrent use.
package comics
