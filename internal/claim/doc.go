// Package claim establishes exclusive ownership of a task file.
//
// A claim is a non-blocking, exclusive, advisory flock(2) held on an open
// read/write descriptor of the task file. Exactly one cooperating process can
// hold it at a time; the kernel drops it when the descriptor is closed or the
// holder dies. Task content must only be read through a held claim: reading
// before locking lets two workers run the same command.
//
// After the lock is granted the descriptor is checked against the pending
// path. A worker that opened the file just before another worker archived it
// would otherwise win the lock on an inode that is already done.
package claim
