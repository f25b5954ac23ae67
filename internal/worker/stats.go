package worker

import "fileq/internal/logging"

// Stats counts what a drain did.
type Stats struct {
	Passes       int
	Attempted    int
	Contended    int
	Claimed      int
	Succeeded    int
	Failed       int
	Archived     int
	MoveFailures int
	Malformed    int
	Unwritten    int
	Quarantined  int
	ScanFailures int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Passes += other.Passes
	s.Attempted += other.Attempted
	s.Contended += other.Contended
	s.Claimed += other.Claimed
	s.Succeeded += other.Succeeded
	s.Failed += other.Failed
	s.Archived += other.Archived
	s.MoveFailures += other.MoveFailures
	s.Malformed += other.Malformed
	s.Unwritten += other.Unwritten
	s.Quarantined += other.Quarantined
	s.ScanFailures += other.ScanFailures
}

func (s Stats) attrs() []logging.Attr {
	return []logging.Attr{
		logging.Int("passes", s.Passes),
		logging.Int("claimed", s.Claimed),
		logging.Int("succeeded", s.Succeeded),
		logging.Int("failed", s.Failed),
		logging.Int("archived", s.Archived),
		logging.Int("contended", s.Contended),
		logging.Int("move_failures", s.MoveFailures),
		logging.Int("malformed", s.Malformed),
		logging.Int("unwritten", s.Unwritten),
		logging.Int("quarantined", s.Quarantined),
	}
}
