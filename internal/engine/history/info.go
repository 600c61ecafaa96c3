package history

import "time"

// Info provides read-only info about a recorded command.
// Used for displaying undo/redo history to users.
type Info struct {
	Name      string    // Human-readable command name
	Size      int64     // Bytes held for undo
	Timestamp time.Time // When the command was recorded
}

// Limits bounds the memory a history may retain.
type Limits struct {
	// MaxBytes is the ceiling on the summed Size of retained commands.
	// Zero means unlimited.
	MaxBytes int64

	// MaxSteps is the maximum number of undo steps. Zero means unlimited.
	MaxSteps int
}

// Default limits.
const (
	DefaultMaxBytes = 64 << 20
	DefaultMaxSteps = 500
)

// DefaultLimits returns the default history limits.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes: DefaultMaxBytes,
		MaxSteps: DefaultMaxSteps,
	}
}
