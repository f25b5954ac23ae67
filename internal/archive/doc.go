// Package archive moves finished tasks out of the pending directory.
//
// A task is archived by an atomic rename into the completed directory,
// whatever its outcome; the completed directory holds both successes and
// failures. Renames never overwrite: a destination that already exists is a
// move failure and the task stays pending, to be attempted again on the next
// scan. Malformed tasks can optionally be moved into a quarantine directory
// instead of being left pending.
package archive
