// Package state keeps the job journal: the last identification job a
// comicvault process tracked, persisted so it can be resumed later.
//
// # Overview
//
// The job tracker reports every transition to an observer. The TUI and the
// headless upload command register Store.Update as that observer, so the
// journal always holds the latest blob reference, state and attempt count.
// After a timeout the user can run "comicvault watch" to pick the job up
// again from the journal.
//
// # Locking
//
// Only one process may write the journal at a time. Acquire takes a
// non-blocking gofrs/flock lock on "<journal>.lock"; a second process gets
// ErrLocked and runs without a journal. Update without the lock returns
// ErrNotAcquired. Last and Open read without locking.
//
// # Format
//
//	blob_reference = 'user/cover.jpg'
//	state = 'timed_out'
//	attempts = 31
//	started_at = 2026-10-18T09:14:02Z
//	updated_at = 2026-10-18T09:15:04Z
//
// Writes go to a temporary file that is renamed over the journal.
package state
