package command

import (
	"image"

	"github.com/dshills/paintstorm/internal/engine/effect"
	"github.com/dshills/paintstorm/internal/engine/history"
)

// FlipCommand mirrors the document or selection content. Flipping is its
// own inverse, so nothing is cached; applied tracks which side of the flip
// the target is on so repeated calls do nothing.
type FlipCommand struct {
	horizontal     bool
	actOnSelection bool
	applied        bool
}

// NewFlip creates a flip command.
func NewFlip(env history.Environment, horizontal, actOnSelection bool) (*FlipCommand, error) {
	if actOnSelection && !env.Document().Selection().HasContent() {
		return nil, ErrNoSelection
	}
	return &FlipCommand{horizontal: horizontal, actOnSelection: actOnSelection}, nil
}

// Execute flips the target.
func (c *FlipCommand) Execute(env history.Environment) error {
	if c.applied {
		return nil
	}
	if err := c.flip(env); err != nil {
		return err
	}
	c.applied = true
	return nil
}

// Unexecute flips the target back.
func (c *FlipCommand) Unexecute(env history.Environment) error {
	if !c.applied {
		return nil
	}
	if err := c.flip(env); err != nil {
		return err
	}
	c.applied = false
	return nil
}

func (c *FlipCommand) flip(env history.Environment) error {
	return transformTarget(env, c.actOnSelection, func(img *image.NRGBA) *image.NRGBA {
		return effect.Flip(img, c.horizontal)
	})
}

// Name returns the command name.
func (c *FlipCommand) Name() string {
	if c.horizontal {
		return "Flip Horizontally"
	}
	return "Flip Vertically"
}

// Size returns 0; flips hold no pixels.
func (c *FlipCommand) Size() int64 {
	return 0
}

// RotateCommand turns the document or selection content by multiples of
// 90°. The inverse rotation restores the exact pixels.
type RotateCommand struct {
	quarterTurns   int
	actOnSelection bool
	applied        bool
}

// NewRotate creates a rotate command; positive turns are clockwise.
func NewRotate(env history.Environment, quarterTurns int, actOnSelection bool) (*RotateCommand, error) {
	if actOnSelection && !env.Document().Selection().HasContent() {
		return nil, ErrNoSelection
	}
	return &RotateCommand{quarterTurns: quarterTurns, actOnSelection: actOnSelection}, nil
}

// Execute rotates the target. It does nothing if already applied.
func (c *RotateCommand) Execute(env history.Environment) error {
	if c.applied {
		return nil
	}
	if err := c.rotate(env, c.quarterTurns); err != nil {
		return err
	}
	c.applied = true
	return nil
}

// Unexecute rotates the target back. It does nothing if not applied.
func (c *RotateCommand) Unexecute(env history.Environment) error {
	if !c.applied {
		return nil
	}
	if err := c.rotate(env, -c.quarterTurns); err != nil {
		return err
	}
	c.applied = false
	return nil
}

func (c *RotateCommand) rotate(env history.Environment, turns int) error {
	return transformTarget(env, c.actOnSelection, func(img *image.NRGBA) *image.NRGBA {
		return effect.Rotate(img, turns)
	})
}

// Name returns the command name.
func (c *RotateCommand) Name() string {
	switch ((c.quarterTurns % 4) + 4) % 4 {
	case 1:
		return "Rotate Right"
	case 2:
		return "Rotate 180°"
	case 3:
		return "Rotate Left"
	default:
		return "Rotate"
	}
}

// Size returns 0; rotations hold no pixels.
func (c *RotateCommand) Size() int64 {
	return 0
}

// transformTarget replaces the document image or selection content with
// fn applied to it. Rotating selection content keeps the selection's
// top-left corner.
func transformTarget(env history.Environment, actOnSelection bool, fn func(*image.NRGBA) *image.NRGBA) error {
	doc := env.Document()
	if !actOnSelection {
		return doc.SetImage(fn(doc.Image()))
	}

	sel := doc.Selection()
	if !sel.HasContent() {
		return ErrNoSelection
	}
	next := *sel
	next.Content = fn(sel.Content)
	next.Bounds = image.Rectangle{Min: sel.Bounds.Min, Max: sel.Bounds.Min.Add(next.Content.Rect.Size())}
	doc.SetSelection(&next)
	return nil
}
