package engine

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/paintstorm/internal/engine/command"
	"github.com/dshills/paintstorm/internal/engine/document"
	"github.com/dshills/paintstorm/internal/engine/effect"
	"github.com/dshills/paintstorm/internal/engine/history"
)

var (
	white = color.NRGBA{255, 255, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
)

type recordingView struct {
	rects []image.Rectangle
}

func (v *recordingView) Invalidate(r image.Rectangle) {
	v.rects = append(v.rects, r)
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.add("DEBUG", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.add("INFO", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.add("WARN", msg, args...) }

func (l *recordingLogger) add(level, msg string, args ...any) {
	l.lines = append(l.lines, level+" "+fmt.Sprintf(msg, args...))
}

func newSmallEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	doc, err := document.NewBlank(2, 2, white)
	if err != nil {
		t.Fatalf("NewBlank failed: %v", err)
	}
	return New(append([]Option{WithDocument(doc)}, opts...)...)
}

func invert(t *testing.T, e *Engine) history.Command {
	t.Helper()
	cmd, err := command.NewInvert(e, effect.RGB, false)
	if err != nil {
		t.Fatalf("NewInvert failed: %v", err)
	}
	return cmd
}

// ============================================================================
// Basic Operations
// ============================================================================

func TestNew(t *testing.T) {
	e := New()
	if got := e.Size(); got != image.Pt(DefaultWidth, DefaultHeight) {
		t.Errorf("Size = %v, want %dx%d", got, DefaultWidth, DefaultHeight)
	}
	if e.IsModified() {
		t.Error("new engine should be unmodified")
	}
	if e.CanUndo() || e.CanRedo() {
		t.Error("new engine should have empty history")
	}
	if e.Window() == nil {
		t.Error("engine should provide a window")
	}
}

func TestExecuteUndoRedo(t *testing.T) {
	e := newSmallEngine(t)

	if err := e.Execute(invert(t, e)); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := e.Document().At(0, 0); got != black {
		t.Errorf("pixel = %v, want black", got)
	}
	if !e.IsModified() {
		t.Error("expected modified")
	}
	if got := e.UndoName(); got != "Invert Colors" {
		t.Errorf("UndoName = %q", got)
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if got := e.Document().At(1, 1); got != white {
		t.Errorf("pixel after undo = %v, want white", got)
	}
	if e.IsModified() {
		t.Error("expected unmodified after undo")
	}
	if got := e.RedoName(); got != "Invert Colors" {
		t.Errorf("RedoName = %q", got)
	}

	if err := e.Redo(); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if got := e.Document().At(1, 1); got != black {
		t.Errorf("pixel after redo = %v, want black", got)
	}
}

func TestUndoRedoNoOp(t *testing.T) {
	e := newSmallEngine(t)
	if err := e.Undo(); err != nil {
		t.Errorf("Undo on empty history: %v", err)
	}
	if err := e.Redo(); err != nil {
		t.Errorf("Redo on empty history: %v", err)
	}
	if e.UndoName() != "" || e.RedoName() != "" {
		t.Error("names should be empty")
	}
}

func TestExecuteIrreversible(t *testing.T) {
	e := newSmallEngine(t, WithMaxUndoBytes(8))

	err := e.Execute(invert(t, e))
	if !errors.Is(err, ErrIrreversible) {
		t.Fatalf("expected ErrIrreversible, got %v", err)
	}
	if got := e.Document().At(0, 0); got != white {
		t.Error("rejected command must not be applied")
	}
	if e.CanUndo() || e.IsModified() {
		t.Error("rejected command must not be recorded")
	}
}

func TestExecuteDeselectOverCeiling(t *testing.T) {
	doc, err := document.NewBlank(10, 10, white)
	if err != nil {
		t.Fatalf("NewBlank failed: %v", err)
	}
	e := New(WithDocument(doc), WithMaxUndoBytes(300))

	sel, err := command.NewSelectionCreate(e, image.Rect(0, 0, 10, 5), nil)
	if err != nil {
		t.Fatalf("NewSelectionCreate failed: %v", err)
	}
	if err := e.Execute(sel); err != nil {
		t.Fatalf("Execute(select) failed: %v", err)
	}

	deselect, err := command.NewSelectionDestroy(e)
	if err != nil {
		t.Fatalf("NewSelectionDestroy failed: %v", err)
	}
	if got := deselect.Size(); got != 400 {
		t.Errorf("deselect Size before execution = %d, want 400", got)
	}
	if err := e.Execute(deselect); !errors.Is(err, ErrIrreversible) {
		t.Fatalf("expected ErrIrreversible, got %v", err)
	}
	if e.Document().Selection() == nil {
		t.Error("rejected deselect must leave the selection in place")
	}
	if !e.CanUndo() || e.UndoName() != "Selection: Create" {
		t.Errorf("undo step = %q, want the selection", e.UndoName())
	}
}

// growingCommand reports no size until it has run.
type growingCommand struct {
	applied bool
}

func (c *growingCommand) Execute(env history.Environment) error {
	env.Document().SetAt(0, 0, black)
	c.applied = true
	return nil
}

func (c *growingCommand) Unexecute(env history.Environment) error {
	env.Document().SetAt(0, 0, white)
	c.applied = false
	return nil
}

func (c *growingCommand) Name() string { return "Grow" }

func (c *growingCommand) Size() int64 {
	if c.applied {
		return 1000
	}
	return 0
}

func TestExecuteRevertsWhenSizeGrows(t *testing.T) {
	e := newSmallEngine(t, WithMaxUndoBytes(100))
	if err := e.Execute(invert(t, e)); err != nil {
		t.Fatalf("Execute(invert) failed: %v", err)
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	err := e.Execute(&growingCommand{})
	if !errors.Is(err, ErrIrreversible) {
		t.Fatalf("expected ErrIrreversible, got %v", err)
	}
	if got := e.Document().At(0, 0); got != white {
		t.Errorf("pixel = %v, want the edit reverted", got)
	}
	if e.UndoName() != "" {
		t.Errorf("UndoName = %q, want nothing recorded", e.UndoName())
	}
	if e.RedoName() != "Invert Colors" {
		t.Errorf("RedoName = %q, want the redo tail untouched", e.RedoName())
	}
}

func TestExecuteNil(t *testing.T) {
	e := newSmallEngine(t)
	if err := e.Execute(nil); !errors.Is(err, history.ErrNilCommand) {
		t.Errorf("expected ErrNilCommand, got %v", err)
	}
}

func TestEvictionMakesSavedUnreachable(t *testing.T) {
	log := &recordingLogger{}
	e := newSmallEngine(t, WithMaxUndoBytes(40), WithLogger(log))

	for i := 0; i < 3; i++ {
		if err := e.Execute(invert(t, e)); err != nil {
			t.Fatalf("Execute %d failed: %v", i, err)
		}
	}
	if got := len(e.UndoInfo()); got != 2 {
		t.Fatalf("undo steps = %d, want 2", got)
	}

	e.Undo()
	e.Undo()
	if e.CanUndo() {
		t.Error("evicted step should not be undoable")
	}
	if !e.IsModified() {
		t.Error("document should stay modified once the saved state was evicted")
	}

	found := false
	for _, line := range log.lines {
		if strings.HasPrefix(line, "DEBUG evicted") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected eviction to be logged, got %v", log.lines)
	}
}

func TestSetLimits(t *testing.T) {
	e := newSmallEngine(t)
	for i := 0; i < 4; i++ {
		if err := e.Execute(invert(t, e)); err != nil {
			t.Fatal(err)
		}
	}
	e.SetLimits(history.Limits{MaxSteps: 2})
	if got := e.History().Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
}

func TestViewInvalidation(t *testing.T) {
	view := &recordingView{}
	e := newSmallEngine(t, WithView(view))
	if e.View() != view {
		t.Fatal("view not bound")
	}

	if err := e.Execute(invert(t, e)); err != nil {
		t.Fatal(err)
	}
	if len(view.rects) == 0 {
		t.Fatal("expected invalidation")
	}
	if got := view.rects[len(view.rects)-1]; got != image.Rect(0, 0, 2, 2) {
		t.Errorf("invalidated %v, want (0,0)-(2,2)", got)
	}

	e.SetView(nil)
	n := len(view.rects)
	e.Undo()
	if len(view.rects) != n {
		t.Error("detached view should not be invalidated")
	}
}

func TestTransaction(t *testing.T) {
	e := newSmallEngine(t)

	err := e.Transaction("Invert Twice", func() error {
		if err := e.Execute(invert(t, e)); err != nil {
			return err
		}
		return e.Execute(invert(t, e))
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}
	if got := e.History().Len(); got != 1 {
		t.Errorf("Len = %d, want 1", got)
	}
	if got := e.UndoName(); got != "Invert Twice" {
		t.Errorf("UndoName = %q", got)
	}

	boom := errors.New("boom")
	err = e.Transaction("Fails", func() error {
		if err := e.Execute(invert(t, e)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := e.Document().At(0, 0); got != white {
		t.Error("failed transaction should be rolled back")
	}
	if got := e.History().Len(); got != 1 {
		t.Errorf("Len = %d, want 1", got)
	}
}

func TestCropTextSelectionThroughWindow(t *testing.T) {
	doc, _ := document.NewBlank(20, 20, white)
	e := New(WithDocument(doc))

	content := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	create, err := command.NewTextSelectionCreate(e, image.Rect(5, 5, 15, 15), "hi", content)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Execute(create); err != nil {
		t.Fatal(err)
	}

	if err := command.CropTextSelection(e, ""); err != nil {
		t.Fatalf("CropTextSelection failed: %v", err)
	}
	if got := e.Size(); got != image.Pt(10, 10) {
		t.Errorf("Size = %v, want 10x10", got)
	}
	if got := e.Document().Selection().Bounds.Min; got != (image.Point{}) {
		t.Errorf("selection at %v, want origin", got)
	}

	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := e.Size(); got != image.Pt(20, 20) {
		t.Errorf("Size after undo = %v, want 20x20", got)
	}
	if got := e.Document().Selection().Bounds.Min; got != image.Pt(5, 5) {
		t.Errorf("selection after undo at %v, want (5,5)", got)
	}
}

// ============================================================================
// Document Lifecycle
// ============================================================================

func TestSaveOpenReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")

	e := newSmallEngine(t)
	if err := e.Execute(invert(t, e)); err != nil {
		t.Fatal(err)
	}
	if err := e.SaveAs(path, ""); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	if e.IsModified() {
		t.Error("expected unmodified after save")
	}
	if got := e.Document().URL(); got != path {
		t.Errorf("URL = %q, want %q", got, path)
	}
	if got := e.Document().Format(); got != "png" {
		t.Errorf("Format = %q, want png", got)
	}

	// Undo past the save point is a modification.
	e.Undo()
	if !e.IsModified() {
		t.Error("expected modified after undoing past save")
	}
	e.Redo()
	if e.IsModified() {
		t.Error("expected unmodified back at save point")
	}

	e.Undo()
	if err := e.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got := e.Document().At(0, 0); got != black {
		t.Errorf("reloaded pixel = %v, want black", got)
	}
	if e.CanUndo() || e.CanRedo() || e.IsModified() {
		t.Error("reload should clear history")
	}

	other := New()
	if err := other.Open(path); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := other.Size(); got != image.Pt(2, 2) {
		t.Errorf("opened size = %v", got)
	}
}

func TestSaveFailureKeepsModified(t *testing.T) {
	e := newSmallEngine(t)
	if err := e.Execute(invert(t, e)); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "missing", "img.png")
	err := e.SaveAs(path, "")
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %v", err)
	}
	if opErr.Op != "save" || opErr.Target != path {
		t.Errorf("OperationError = %+v", opErr)
	}
	if !e.IsModified() {
		t.Error("failed save must not clear the modified flag")
	}
	if e.Document().URL() != "" {
		t.Error("failed save must not adopt the path")
	}
}

func TestSaveWithoutPath(t *testing.T) {
	e := newSmallEngine(t)
	if err := e.Save(); !errors.Is(err, ErrNoPath) {
		t.Errorf("expected ErrNoPath, got %v", err)
	}
	if err := e.Reload(); !errors.Is(err, ErrNoPath) {
		t.Errorf("expected ErrNoPath, got %v", err)
	}
}

func TestOpenFailureKeepsDocument(t *testing.T) {
	e := newSmallEngine(t)
	doc := e.Document()
	if err := e.Open(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatal("expected error")
	}
	if e.Document() != doc {
		t.Error("document replaced despite failure")
	}
}

func TestNewDocumentClearsHistory(t *testing.T) {
	view := &recordingView{}
	e := newSmallEngine(t, WithView(view))
	if err := e.Execute(invert(t, e)); err != nil {
		t.Fatal(err)
	}

	if err := e.NewDocument(5, 4, color.Black); err != nil {
		t.Fatalf("NewDocument failed: %v", err)
	}
	if e.CanUndo() || e.IsModified() {
		t.Error("new document should start with empty history")
	}
	if got := e.Size(); got != image.Pt(5, 4) {
		t.Errorf("Size = %v", got)
	}
	if err := e.NewDocument(0, 4, color.Black); err == nil {
		t.Error("expected error for empty size")
	}

	// The view follows the new document.
	n := len(view.rects)
	if err := e.Execute(invert(t, e)); err != nil {
		t.Fatal(err)
	}
	if len(view.rects) == n {
		t.Error("view not rebound to new document")
	}
}

func TestExport(t *testing.T) {
	e := newSmallEngine(t)
	if err := e.Execute(invert(t, e)); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "copy.bmp")
	if err := e.Export(path, ""); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !e.IsModified() || e.Document().URL() != "" {
		t.Error("export must not change saved state or path")
	}
}
