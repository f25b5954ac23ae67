package watch

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// ErrWatchLost reports that the kernel dropped the directory watch.
var ErrWatchLost = errors.New("directory watch lost")

const (
	watchMask = unix.IN_CREATE | unix.IN_CLOSE_WRITE | unix.IN_DELETE | unix.IN_MOVED_TO |
		unix.IN_DELETE_SELF | unix.IN_MOVE_SELF | unix.IN_ONLYDIR
	lostMask = unix.IN_IGNORED | unix.IN_UNMOUNT | unix.IN_DELETE_SELF | unix.IN_MOVE_SELF

	eventBufferSize = 64 * (unix.SizeofInotifyEvent + unix.NAME_MAX + 1)
)

// Op describes what happened to an entry.
type Op int

const (
	OpCreate Op = iota + 1
	OpDelete
	OpMovedTo
	// OpCloseWrite means a writer closed the entry, so its content is final
	// unless it is opened again.
	OpCloseWrite
	// OpOverflow means the kernel queue overflowed and events were dropped.
	OpOverflow
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpDelete:
		return "delete"
	case OpMovedTo:
		return "moved_to"
	case OpCloseWrite:
		return "close_write"
	case OpOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// Event is one change in the watched directory.
type Event struct {
	Name  string
	Op    Op
	IsDir bool
}

// Watcher reports changes in a single directory.
type Watcher struct {
	dir  string
	file *os.File
	buf  []byte
}

// New starts watching dir.
func New(dir string) (*Watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("inotify init: %w", err)
	}
	if _, err := unix.InotifyAddWatch(fd, dir, watchMask); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	// A non-blocking descriptor is handed to the runtime poller, which lets
	// read deadlines interrupt a pending Read.
	return &Watcher{
		dir:  dir,
		file: os.NewFile(uintptr(fd), "inotify:"+dir),
		buf:  make([]byte, eventBufferSize),
	}, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Next blocks until at least one event is available and returns every event
// read in that batch. It returns ctx.Err() when ctx ends first.
func (w *Watcher) Next(ctx context.Context) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := w.file.SetReadDeadline(time.Time{}); err != nil {
		return nil, fmt.Errorf("reset inotify deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = w.file.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		n, err := w.file.Read(w.buf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("read inotify events: %w", err)
		}
		events, err := parseEvents(w.buf[:n])
		if err != nil {
			return events, err
		}
		if len(events) > 0 {
			return events, nil
		}
	}
}

// Close stops the watch.
func (w *Watcher) Close() error {
	return w.file.Close()
}

func parseEvents(buf []byte) ([]Event, error) {
	var events []Event
	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(buf) {
		header := buf[offset : offset+unix.SizeofInotifyEvent]
		mask := binary.NativeEndian.Uint32(header[4:8])
		nameLen := int(binary.NativeEndian.Uint32(header[12:16]))

		start := offset + unix.SizeofInotifyEvent
		end := start + nameLen
		if end > len(buf) {
			return events, fmt.Errorf("read inotify events: truncated event")
		}
		name := strings.TrimRight(string(buf[start:end]), "\x00")
		offset = end

		if mask&lostMask != 0 {
			return events, ErrWatchLost
		}
		isDir := mask&unix.IN_ISDIR != 0
		switch {
		case mask&unix.IN_Q_OVERFLOW != 0:
			events = append(events, Event{Op: OpOverflow})
		case mask&unix.IN_CREATE != 0:
			events = append(events, Event{Name: name, Op: OpCreate, IsDir: isDir})
		case mask&unix.IN_MOVED_TO != 0:
			events = append(events, Event{Name: name, Op: OpMovedTo, IsDir: isDir})
		case mask&unix.IN_CLOSE_WRITE != 0:
			events = append(events, Event{Name: name, Op: OpCloseWrite, IsDir: isDir})
		case mask&unix.IN_DELETE != 0:
			events = append(events, Event{Name: name, Op: OpDelete, IsDir: isDir})
		}
	}
	return events, nil
}
