package history

import (
	"fmt"
	"time"
)

// entry wraps a command with metadata.
type entry struct {
	command   Command
	timestamp time.Time
}

// EvictFunc is called for each command dropped to respect the limits.
type EvictFunc func(info Info)

// History manages undo/redo state for a document.
type History struct {
	entries []*entry
	cursor  int

	// saved is the cursor at the last save. savedReachable goes false once
	// the entry the saved state depends on is evicted.
	saved          int
	savedReachable bool

	// evictedTotal counts all evictions, so checkpoints survive index shifts.
	evictedTotal int

	// Grouping state
	grouping  bool
	groupName string
	groupCmds []Command

	limits  Limits
	onEvict EvictFunc
}

// New creates a new history with the given limits.
func New(limits Limits) *History {
	return &History{
		limits:         sanitize(limits),
		savedReachable: true,
	}
}

func sanitize(l Limits) Limits {
	if l.MaxBytes < 0 {
		l.MaxBytes = 0
	}
	if l.MaxSteps < 0 {
		l.MaxSteps = 0
	}
	return l
}

// OnEvict registers a callback invoked for every evicted command.
func (h *History) OnEvict(fn EvictFunc) {
	h.onEvict = fn
}

// Execute runs a command and records it.
func (h *History) Execute(cmd Command, env Environment) error {
	if cmd == nil {
		return ErrNilCommand
	}
	if err := cmd.Execute(env); err != nil {
		return err
	}
	h.Push(cmd)
	return nil
}

// Push records a command the caller has already executed.
// The redo tail is discarded without unexecuting anything, since those
// commands are not applied. Oldest commands are then evicted until the
// limits hold.
func (h *History) Push(cmd Command) {
	if cmd == nil {
		return
	}
	if h.grouping {
		h.groupCmds = append(h.groupCmds, cmd)
		return
	}
	h.pushEntry(cmd)
}

func (h *History) pushEntry(cmd Command) {
	// Clear redo tail
	for i := h.cursor; i < len(h.entries); i++ {
		h.entries[i] = nil
	}
	h.entries = h.entries[:h.cursor]

	// The saved state lived in the discarded tail.
	if h.saved > h.cursor {
		h.savedReachable = false
	}

	h.entries = append(h.entries, &entry{
		command:   cmd,
		timestamp: time.Now(),
	})
	h.cursor++

	h.enforceLimits()
}

// enforceLimits evicts the oldest undo entries until the step and byte
// ceilings hold. If the redo tail alone exceeds the byte ceiling it is
// trimmed from the far end.
func (h *History) enforceLimits() {
	for h.limits.MaxSteps > 0 && h.cursor > h.limits.MaxSteps {
		h.evictOldest()
	}
	if h.limits.MaxBytes <= 0 {
		return
	}
	total := h.TotalSize()
	for total > h.limits.MaxBytes && h.cursor > 0 {
		total -= h.entries[0].command.Size()
		h.evictOldest()
	}
	for total > h.limits.MaxBytes && len(h.entries) > h.cursor {
		last := len(h.entries) - 1
		total -= h.entries[last].command.Size()
		h.notifyEvict(h.entries[last])
		h.entries[last] = nil
		h.entries = h.entries[:last]
		if h.saved > len(h.entries) {
			h.savedReachable = false
		}
	}
}

func (h *History) evictOldest() {
	e := h.entries[0]
	h.entries[0] = nil
	h.entries = h.entries[1:]
	h.cursor--
	h.evictedTotal++

	if h.saved == 0 {
		// The pre-command state the save matched is gone for good.
		h.savedReachable = false
	} else {
		h.saved--
	}
	h.notifyEvict(e)
}

func (h *History) notifyEvict(e *entry) {
	if h.onEvict != nil {
		h.onEvict(infoOf(e))
	}
}

// Undo reverses the command before the cursor. It is a no-op when there
// is nothing to undo. On failure the cursor is unchanged.
func (h *History) Undo(env Environment) error {
	if !h.CanUndo() {
		return nil
	}
	e := h.entries[h.cursor-1]
	if err := e.command.Unexecute(env); err != nil {
		return fmt.Errorf("undo %q: %w", e.command.Name(), err)
	}
	h.cursor--
	return nil
}

// Redo re-applies the command at the cursor. It is a no-op when there is
// nothing to redo. On failure the cursor is unchanged.
func (h *History) Redo(env Environment) error {
	if !h.CanRedo() {
		return nil
	}
	e := h.entries[h.cursor]
	if err := e.command.Execute(env); err != nil {
		return fmt.Errorf("redo %q: %w", e.command.Name(), err)
	}
	h.cursor++
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)
}

// Cursor returns the boundary between the undo and redo tails.
func (h *History) Cursor() int {
	return h.cursor
}

// Len returns the number of retained commands.
func (h *History) Len() int {
	return len(h.entries)
}

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int {
	return h.cursor
}

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int {
	return len(h.entries) - h.cursor
}

// DocumentSaved marks the current cursor as the saved state.
func (h *History) DocumentSaved() {
	h.saved = h.cursor
	h.savedReachable = true
}

// SavedPosition returns the cursor value recorded at the last save,
// shifted by evictions and clamped at 0.
func (h *History) SavedPosition() int {
	return h.saved
}

// SavedReachable reports whether undo/redo alone can return to the saved
// state.
func (h *History) SavedReachable() bool {
	return h.savedReachable
}

// IsModified reports whether the document differs from its saved state.
func (h *History) IsModified() bool {
	return !h.savedReachable || h.cursor != h.saved
}

// Clear removes all history and marks the document unmodified.
func (h *History) Clear() {
	h.entries = nil
	h.cursor = 0
	h.saved = 0
	h.savedReachable = true
	h.grouping = false
	h.groupCmds = nil
}

// TotalSize returns the summed Size of all retained commands.
func (h *History) TotalSize() int64 {
	var total int64
	for _, e := range h.entries {
		total += e.command.Size()
	}
	return total
}

// SetLimits changes the limits and evicts immediately if needed.
func (h *History) SetLimits(limits Limits) {
	h.limits = sanitize(limits)
	h.enforceLimits()
}

// Limits returns the configured limits.
func (h *History) Limits() Limits {
	return h.limits
}

// UndoInfo returns info about available undo steps, oldest first.
func (h *History) UndoInfo() []Info {
	result := make([]Info, h.cursor)
	for i := 0; i < h.cursor; i++ {
		result[i] = infoOf(h.entries[i])
	}
	return result
}

// RedoInfo returns info about available redo steps, next redo first.
func (h *History) RedoInfo() []Info {
	result := make([]Info, 0, len(h.entries)-h.cursor)
	for i := h.cursor; i < len(h.entries); i++ {
		result = append(result, infoOf(h.entries[i]))
	}
	return result
}

// PeekUndo returns info about the next undo step without applying it.
func (h *History) PeekUndo() (Info, bool) {
	if !h.CanUndo() {
		return Info{}, false
	}
	return infoOf(h.entries[h.cursor-1]), true
}

// PeekRedo returns info about the next redo step without applying it.
func (h *History) PeekRedo() (Info, bool) {
	if !h.CanRedo() {
		return Info{}, false
	}
	return infoOf(h.entries[h.cursor]), true
}

func infoOf(e *entry) Info {
	return Info{
		Name:      e.command.Name(),
		Size:      e.command.Size(),
		Timestamp: e.timestamp,
	}
}
