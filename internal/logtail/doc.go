// Package logtail reads the tail of the client log for "comicvault logs".
//
// Read keeps a ring of the last n lines so large logs are never held in
// memory whole. Level understands both handler formats written by
// internal/logging, which lets Filter drop lines below a minimum level and
// Colorize highlight warnings and errors on a terminal.
package logtail
