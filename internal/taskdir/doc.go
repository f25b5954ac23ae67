// Package taskdir lists the pending directory.
//
// Every regular file directly inside the pending directory is one task.
// Directories, symlinks, and special files are ignored. Candidates are
// returned sorted by name (byte-wise), which gives producers that choose
// sortable names an oldest-first drain. Nothing is cached: every scan reads
// the directory again.
package taskdir
