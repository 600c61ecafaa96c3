package command

import (
	"image"
	"image/color"

	"github.com/dshills/paintstorm/internal/engine/document"
	"github.com/dshills/paintstorm/internal/engine/history"
)

// CropName is the default label of crop macros.
const CropName = "Set as Image (Crop)"

// NewCropTextSelection builds the macro that shrinks the document to the
// text selection: resize the canvas to the selection size, clear it to
// transparent, then move the selection to the origin. Nothing is executed.
func NewCropTextSelection(env history.Environment, name string) (*history.Macro, error) {
	sel := env.Document().Selection()
	if sel == nil {
		return nil, ErrNoSelection
	}
	if sel.Kind != document.SelectionText {
		return nil, ErrNotTextSelection
	}
	return buildCrop(env, name, sel, false)
}

// NewCropToSelection builds the macro that shrinks the document to the
// selection and stamps the selection content as the new image.
func NewCropToSelection(env history.Environment, name string) (*history.Macro, error) {
	sel := env.Document().Selection()
	if !sel.HasContent() {
		return nil, ErrNoSelection
	}
	return buildCrop(env, name, sel, true)
}

func buildCrop(env history.Environment, name string, sel *document.Selection, deselect bool) (*history.Macro, error) {
	if name == "" {
		name = CropName
	}
	size := sel.Bounds.Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, ErrEmptySelection
	}

	resize, err := NewResize(env, ResizeCanvas, size.X, size.Y, color.Transparent)
	if err != nil {
		return nil, err
	}
	clr, err := NewClear(env, color.Transparent, false)
	if err != nil {
		return nil, err
	}
	move, err := NewSelectionMove(env, "")
	if err != nil {
		return nil, err
	}
	if err := move.MoveTo(env, image.Point{}, false); err != nil {
		return nil, err
	}
	move.Finalize()

	macro := history.NewMacro(name, resize, clr, move)
	if deselect {
		destroy, err := NewSelectionDestroy(env)
		if err != nil {
			return nil, err
		}
		if err := macro.Add(destroy); err != nil {
			return nil, err
		}
	}
	return macro, nil
}

// CropTextSelection builds the text selection crop macro and hands it to the
// environment's window, which executes it and records it as one undo step.
func CropTextSelection(env history.Environment, name string) error {
	return cropVia(env, func() (*history.Macro, error) {
		return NewCropTextSelection(env, name)
	})
}

// CropToSelection builds the selection crop macro and hands it to the
// environment's window.
func CropToSelection(env history.Environment, name string) error {
	return cropVia(env, func() (*history.Macro, error) {
		return NewCropToSelection(env, name)
	})
}

func cropVia(env history.Environment, build func() (*history.Macro, error)) error {
	w := env.Window()
	if w == nil {
		return ErrNoWindow
	}
	macro, err := build()
	if err != nil {
		return err
	}
	return w.AddImageOrSelectionCommand(macro)
}
