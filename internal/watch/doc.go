// Package watch delivers change notifications for the pending directory.
//
// It wraps a Linux inotify instance watching for entries created in, moved
// into, or deleted from one directory. Callers do not act on individual
// events: every batch returned by Next is a cue to rescan the directory, so
// bursts of changes coalesce into a single pass. Losing the watch (the
// directory is removed, moved, or unmounted) is reported as ErrWatchLost.
package watch
