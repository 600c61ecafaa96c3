package engine

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/dshills/paintstorm/internal/engine/document"
	"github.com/dshills/paintstorm/internal/engine/history"
	"github.com/dshills/paintstorm/internal/engine/imageio"
)

// Re-export commonly used types for convenience.
type (
	// Command is an undoable document edit.
	Command = history.Command

	// Environment resolves the collaborators a command acts through.
	Environment = history.Environment

	// View is the rendering collaborator bound to a document.
	View = history.View

	// Info describes a recorded command.
	Info = history.Info
)

// Logger is the logging surface the engine needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}

// Engine binds a document to its undo history and the collaborators
// commands need. It is the Environment handed to every command.
//
// An Engine is not safe for concurrent use. All edits, undo and redo run
// serially on the caller's goroutine.
type Engine struct {
	doc     *document.Document
	history *history.History
	view    history.View
	viewSub *document.Subscription

	limits      history.Limits
	saveOptions imageio.Options
	logger      Logger
}

// New creates a new Engine with the given options. Without WithDocument a
// blank white document of DefaultWidth×DefaultHeight is created.
func New(opts ...Option) *Engine {
	e := &Engine{
		limits: history.DefaultLimits(),
		logger: nopLogger{},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.doc == nil {
		e.doc, _ = document.NewBlank(DefaultWidth, DefaultHeight, color.White)
	}

	e.history = history.New(e.limits)
	e.history.OnEvict(func(info history.Info) {
		e.logger.Debug("evicted undo step %q (%d bytes)", info.Name, info.Size)
	})
	e.bindView()

	return e
}

// ============================================================================
// Environment
// ============================================================================

// Document returns the bound document.
func (e *Engine) Document() *document.Document {
	return e.doc
}

// View returns the bound view, or nil when headless.
func (e *Engine) View() history.View {
	return e.view
}

// Window returns the engine itself, which provides the main-window
// operations commands may request.
func (e *Engine) Window() history.Window {
	return e
}

// AddImageOrSelectionCommand executes cmd and records it as one undo step.
func (e *Engine) AddImageOrSelectionCommand(cmd history.Command) error {
	return e.Execute(cmd)
}

// SetView rebinds the view. Passing nil detaches it.
func (e *Engine) SetView(v history.View) {
	e.view = v
	e.bindView()
}

func (e *Engine) bindView() {
	if e.viewSub != nil {
		e.viewSub.Unsubscribe()
		e.viewSub = nil
	}
	if e.view == nil {
		return
	}
	e.viewSub = e.doc.Subscribe(func(c document.Change) {
		r := c.Rect
		if c.Kind == document.ChangeSize || c.Kind == document.ChangeReplaced {
			r = r.Union(e.doc.Rect())
		}
		if !r.Empty() {
			e.view.Invalidate(r)
		}
	})
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Execute runs cmd and records it for undo. A command whose size alone
// exceeds the byte ceiling is rejected with ErrIrreversible before it
// runs. A command that only turns out too large once executed is
// unexecuted and rejected the same way, so no edit is left applied without
// an undo entry.
func (e *Engine) Execute(cmd history.Command) error {
	if cmd == nil {
		return history.ErrNilCommand
	}
	max := e.history.Limits().MaxBytes
	if max > 0 && cmd.Size() > max {
		return fmt.Errorf("%s: %w", cmd.Name(), ErrIrreversible)
	}
	if err := cmd.Execute(e); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	if max > 0 && cmd.Size() > max {
		err := fmt.Errorf("%s: %w", cmd.Name(), ErrIrreversible)
		if uerr := cmd.Unexecute(e); uerr != nil {
			err = errors.Join(err, uerr)
		}
		return err
	}
	e.history.Push(cmd)
	e.logger.Debug("executed %q", cmd.Name())
	return nil
}

// Undo reverses the last command. It is a no-op when nothing can be undone.
func (e *Engine) Undo() error {
	return e.history.Undo(e)
}

// Redo reapplies the last undone command. It is a no-op when nothing can be
// redone.
func (e *Engine) Redo() error {
	return e.history.Redo(e)
}

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoName returns the name of the next undo step, or "".
func (e *Engine) UndoName() string {
	info, _ := e.history.PeekUndo()
	return info.Name
}

// RedoName returns the name of the next redo step, or "".
func (e *Engine) RedoName() string {
	info, _ := e.history.PeekRedo()
	return info.Name
}

// UndoInfo returns the undo steps, oldest first.
func (e *Engine) UndoInfo() []history.Info {
	return e.history.UndoInfo()
}

// RedoInfo returns the redo steps, next first.
func (e *Engine) RedoInfo() []history.Info {
	return e.history.RedoInfo()
}

// IsModified reports whether the document differs from its last saved (or
// opened) state.
func (e *Engine) IsModified() bool {
	return e.history.IsModified()
}

// Transaction runs fn with all commands executed inside it recorded as one
// undo step named name. If fn fails, its commands are undone.
func (e *Engine) Transaction(name string, fn func() error) error {
	return e.history.Transaction(name, e, fn)
}

// SetLimits changes the history ceilings, evicting old steps if needed.
func (e *Engine) SetLimits(limits history.Limits) {
	e.limits = limits
	e.history.SetLimits(limits)
}

// History returns the underlying history.
func (e *Engine) History() *history.History {
	return e.history
}

// ============================================================================
// Document Lifecycle
// ============================================================================

// Open replaces the document with the image at path and clears the
// history. On failure the current document is untouched.
func (e *Engine) Open(path string) error {
	doc, err := load(path)
	if err != nil {
		return opError("open", path, err)
	}
	e.replaceDocument(doc)
	e.logger.Info("opened %s (%dx%d %s)", path, doc.Width(), doc.Height(), doc.Format())
	return nil
}

// NewDocument replaces the document with a blank w×h image filled with bg
// and clears the history.
func (e *Engine) NewDocument(w, h int, bg color.Color) error {
	doc, err := document.NewBlank(w, h, bg)
	if err != nil {
		return err
	}
	e.replaceDocument(doc)
	return nil
}

// Reload rereads the document from its file, discarding all edits and the
// history.
func (e *Engine) Reload() error {
	path := e.doc.URL()
	if path == "" {
		return opError("reload", "", ErrNoPath)
	}
	doc, err := load(path)
	if err != nil {
		return opError("reload", path, err)
	}
	e.replaceDocument(doc)
	e.logger.Info("reloaded %s", path)
	return nil
}

// Save writes the document to its file in its format. The history's saved
// position only advances when the write succeeds.
func (e *Engine) Save() error {
	path := e.doc.URL()
	if path == "" {
		return opError("save", "", ErrNoPath)
	}
	return e.SaveAs(path, e.doc.Format())
}

// SaveAs writes the document to path. An empty format is inferred from the
// path. On success the document adopts path and format.
func (e *Engine) SaveAs(path, format string) error {
	if format == "" {
		format = imageio.FormatFromPath(path)
	}
	if format == "" {
		format = imageio.DefaultFormat
	}
	if err := imageio.Save(path, e.doc.Image(), format, e.doc.Meta(), e.saveOptions); err != nil {
		return opError("save", path, err)
	}
	e.doc.SetURL(path)
	e.doc.SetFormat(imageio.NormalizeFormat(format))
	e.history.DocumentSaved()
	e.logger.Info("saved %s", path)
	return nil
}

// Export writes the document to path without changing its file path,
// format or saved state.
func (e *Engine) Export(path, format string) error {
	if err := imageio.Save(path, e.doc.Image(), format, e.doc.Meta(), e.saveOptions); err != nil {
		return opError("export", path, err)
	}
	return nil
}

// SetSaveOptions changes the encoder options used by Save and SaveAs.
func (e *Engine) SetSaveOptions(opts imageio.Options) {
	e.saveOptions = opts
}

func (e *Engine) replaceDocument(doc *document.Document) {
	old := e.doc
	e.doc = doc
	e.history.Clear()
	e.bindView()
	if e.view != nil {
		e.view.Invalidate(doc.Rect().Union(old.Rect()))
	}
}

func load(path string) (*document.Document, error) {
	res, err := imageio.Load(path)
	if err != nil {
		return nil, err
	}
	if res.Image.Rect.Empty() {
		return nil, document.ErrEmptyImage
	}
	doc := document.New(res.Image)
	doc.SetURL(path)
	doc.SetFormat(res.Format)
	doc.SetMeta(res.Meta)
	return doc, nil
}

// Size returns the document dimensions.
func (e *Engine) Size() image.Point {
	return e.doc.Rect().Size()
}
