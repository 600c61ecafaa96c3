package history

// GroupScope provides a convenient way to group commands using defer.
// Usage:
//
//	func cropAndClear(h *History, env Environment) {
//	    defer h.GroupScope("Crop").End()
//	    // ... multiple edits ...
//	}
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
// Call End() or use with defer to properly close the group.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{
		history: h,
		active:  true,
	}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope without recording a macro.
// Note: Commands already executed still affect the document.
func (g *GroupScope) Cancel() {
	if g.active {
		g.history.CancelGroup()
		g.active = false
	}
}

// BeginGroup starts a command group.
// Commands pushed while grouping are combined into a single undo step.
func (h *History) BeginGroup(name string) {
	if h.grouping {
		// Already grouping, ignore nested calls
		return
	}
	h.grouping = true
	h.groupName = name
	h.groupCmds = nil
}

// EndGroup finishes a command group.
// All commands since BeginGroup are recorded as one Macro.
func (h *History) EndGroup() {
	if !h.grouping {
		return
	}
	h.grouping = false

	cmds := h.groupCmds
	h.groupCmds = nil
	switch len(cmds) {
	case 0:
		return
	case 1:
		h.pushEntry(cmds[0])
	default:
		h.pushEntry(newExecutedMacro(h.groupName, cmds))
	}
}

// CancelGroup ends a command group without recording it.
// Note: Commands already executed still affect the document!
func (h *History) CancelGroup() {
	h.grouping = false
	h.groupCmds = nil
}

// RollbackGroup unexecutes the commands collected so far in reverse order
// and ends the group without recording anything.
func (h *History) RollbackGroup(env Environment) error {
	cmds := h.groupCmds
	h.CancelGroup()
	for i := len(cmds) - 1; i >= 0; i-- {
		if err := cmds[i].Unexecute(env); err != nil {
			return err
		}
	}
	return nil
}

// IsGrouping returns true if currently in a command group.
func (h *History) IsGrouping() bool {
	return h.grouping
}

// Transaction executes a function within a grouped undo context.
// If the function returns an error, the commands it executed are rolled
// back and nothing is recorded.
func (h *History) Transaction(name string, env Environment, fn func() error) error {
	h.BeginGroup(name)

	if err := fn(); err != nil {
		if rbErr := h.RollbackGroup(env); rbErr != nil {
			return rbErr
		}
		return err
	}

	h.EndGroup()
	return nil
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	position int
}

// CreateCheckpoint creates a checkpoint at the current history position.
func (h *History) CreateCheckpoint() Checkpoint {
	return Checkpoint{position: h.evictedTotal + h.cursor}
}

// UndoToCheckpoint undoes all steps since the checkpoint. Steps evicted
// since the checkpoint was taken cannot be undone; it stops at the oldest
// retained step.
func (h *History) UndoToCheckpoint(cp Checkpoint, env Environment) error {
	for h.CanUndo() && h.evictedTotal+h.cursor > cp.position {
		if err := h.Undo(env); err != nil {
			return err
		}
	}
	return nil
}

// RedoToCheckpoint redoes steps up to the checkpoint.
// Note: This only works if the redo tail still holds those steps.
func (h *History) RedoToCheckpoint(cp Checkpoint, env Environment) error {
	for h.CanRedo() && h.evictedTotal+h.cursor < cp.position {
		if err := h.Redo(env); err != nil {
			return err
		}
	}
	return nil
}
