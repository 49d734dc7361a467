// Package app is the composition root for comicvault.
//
// Setup loads the config, applies command-line overrides, and builds the
// session logger and the backend client. Run starts the TUI on top of that
// Env; Track follows a single upload or blob without a UI, which is what the
// upload and watch commands use.
//
// Both paths record job transitions in the journal (see package state) when
// they can take its lock. A second process runs unrecorded rather than
// failing, and the journal's last entry lets a later run resume polling a
// job that had not finished.
package app
