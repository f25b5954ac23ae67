// Package worker runs the claim protocol for one isolation unit.
//
// A Worker drains the pending directory: it scans, tries to claim each
// candidate in name order, executes what it wins, and archives the result,
// repeating passes until a pass moves nothing out of the pending directory.
// In watch mode it then installs a directory watch, drains once more to
// cover the gap before the watch existed, and drains again after every batch
// of change notifications.
//
// Workers share no memory. Any number of them, in one process or many, can
// run against the same directories; the claim lock decides who runs a task.
package worker
