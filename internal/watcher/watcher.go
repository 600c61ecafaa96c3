// Package watcher reports changes to individual image files.
//
// Editors commonly save by writing a temporary file and renaming it over
// the original, which drops a watch placed on the file itself. Files are
// therefore watched through their parent directory and events for other
// entries in that directory are discarded.
package watcher

import (
	"errors"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed = errors.New("watcher is closed")
	ErrNotWatching   = errors.New("file is not being watched")
)

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates the file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was written to.
	OpWrite
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Changed reports whether the file has new content worth reloading.
func (op Op) Changed() bool {
	return op&(OpCreate|OpWrite) != 0
}

// Event is a change to a watched file.
type Event struct {
	// Path is the absolute path of the file.
	Path string
	// Op holds every operation seen for the file, OR-ed together.
	Op Op
	// Timestamp is when the last operation was seen.
	Timestamp time.Time
}

// Source is a stream of file events.
type Source interface {
	// Events is closed when the source is closed.
	Events() <-chan Event
	// Errors is closed when the source is closed.
	Errors() <-chan error
	Close() error
}

// Config configures a watcher.
type Config struct {
	// BufferSize is the capacity of the event and error channels.
	BufferSize int
	// Debounce coalesces events for one file arriving within this window.
	// Zero disables debouncing.
	Debounce time.Duration
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize: 100,
		Debounce:   100 * time.Millisecond,
	}
}

// Option configures a watcher.
type Option func(*Config)

// WithBufferSize sets the channel capacity.
func WithBufferSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.BufferSize = n
		}
	}
}

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.Debounce = d
		}
	}
}
