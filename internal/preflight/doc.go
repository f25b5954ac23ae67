// Package preflight provides readiness checks for the directories and
// system facilities fileq depends on.
//
// These checks run in two contexts:
//   - The root command runs RunAll before starting workers and logs every
//     failed check as a warning. Workers still start: a missing pending
//     directory may appear later, and a failed check is advice, not a stop.
//   - The "fileq status" command prints the results beside the queue counts.
//
// The inotify check only runs when watch mode is requested.
package preflight
