// Package enqueue publishes new task files into a pending directory.
//
// Producers must never let a worker observe a half-written task, so the
// command is written to a staging file inside a hidden subdirectory of the
// pending directory (same filesystem, ignored by the scanner) and then
// linked into place under its final name. Final names carry a zero-padded
// sequence number drawn from a counter file guarded by an exclusive file
// lock, so lexicographic scan order matches submission order across
// concurrent producers.
package enqueue
