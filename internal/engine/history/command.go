package history

import (
	"errors"
	"fmt"
	"image"

	"github.com/dshills/paintstorm/internal/engine/document"
)

// Errors returned by commands and macros.
var (
	// ErrMacroFrozen indicates a child was added to a macro that has already run.
	ErrMacroFrozen = errors.New("macro already executed")

	// ErrNilCommand indicates a nil command was supplied.
	ErrNilCommand = errors.New("nil command")
)

// View is the rendering collaborator bound to a document.
type View interface {
	// Invalidate asks the view to repaint r (document coordinates).
	Invalidate(r image.Rectangle)
}

// Window exposes the main-window level operations some commands need.
type Window interface {
	// AddImageOrSelectionCommand executes cmd and records it as one undo step.
	AddImageOrSelectionCommand(cmd Command) error
}

// Environment resolves the collaborators a command acts through. It is
// passed to every Execute and Unexecute call.
type Environment interface {
	// Document returns the document being edited.
	Document() *document.Document

	// View returns the primary view, or nil when headless.
	View() View

	// Window returns main-window operations.
	Window() Window
}

// Command represents a reversible document edit.
type Command interface {
	// Execute applies the edit.
	Execute(env Environment) error

	// Unexecute restores the document to its state before Execute.
	Unexecute(env Environment) error

	// Name returns a human-readable label (e.g. "Invert Colors").
	Name() string

	// Size returns the estimated bytes of state held for undo.
	Size() int64
}

// Macro groups multiple commands as one undo unit.
type Macro struct {
	name     string
	children []Command
	executed bool

	// applied is set while the children's effects are on the document.
	applied bool
}

// NewMacro creates a new macro with optional initial children.
func NewMacro(name string, cmds ...Command) *Macro {
	return &Macro{
		name:     name,
		children: cmds,
	}
}

// newExecutedMacro wraps commands that have already been applied.
func newExecutedMacro(name string, cmds []Command) *Macro {
	return &Macro{
		name:     name,
		children: cmds,
		executed: true,
		applied:  true,
	}
}

// Add appends a child. Children cannot be added once the macro has been
// executed.
func (m *Macro) Add(cmd Command) error {
	if cmd == nil {
		return ErrNilCommand
	}
	if m.executed {
		return ErrMacroFrozen
	}
	m.children = append(m.children, cmd)
	return nil
}

// Execute runs all children in order. If a child fails, the children that
// already ran are unexecuted in reverse order so the document is left as it
// was.
func (m *Macro) Execute(env Environment) error {
	if m.applied {
		return nil
	}
	doc := env.Document()
	if doc != nil {
		doc.Suspend()
		defer doc.Resume()
	}

	for i, cmd := range m.children {
		if err := cmd.Execute(env); err != nil {
			err = fmt.Errorf("macro %q step %d: %w", m.name, i, err)
			for j := i - 1; j >= 0; j-- {
				if uerr := m.children[j].Unexecute(env); uerr != nil {
					err = errors.Join(err, fmt.Errorf("rollback step %d: %w", j, uerr))
				}
			}
			return err
		}
	}
	m.executed = true
	m.applied = true
	return nil
}

// Unexecute reverses all children in reverse order.
func (m *Macro) Unexecute(env Environment) error {
	if !m.applied {
		return nil
	}
	doc := env.Document()
	if doc != nil {
		doc.Suspend()
		defer doc.Resume()
	}

	for i := len(m.children) - 1; i >= 0; i-- {
		if err := m.children[i].Unexecute(env); err != nil {
			return fmt.Errorf("undo macro %q step %d: %w", m.name, i, err)
		}
	}
	m.applied = false
	return nil
}

// Name returns the macro's name.
func (m *Macro) Name() string {
	if m.name != "" {
		return m.name
	}
	if len(m.children) == 1 {
		return m.children[0].Name()
	}
	return fmt.Sprintf("%d operations", len(m.children))
}

// Size returns the sum of the children's sizes.
func (m *Macro) Size() int64 {
	var total int64
	for _, cmd := range m.children {
		total += cmd.Size()
	}
	return total
}

// Len returns the number of children.
func (m *Macro) Len() int {
	return len(m.children)
}

// IsEmpty returns true if the macro has no children.
func (m *Macro) IsEmpty() bool {
	return len(m.children) == 0
}
