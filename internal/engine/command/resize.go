package command

import (
	"image"
	"image/color"

	"github.com/dshills/paintstorm/internal/engine/document"
	"github.com/dshills/paintstorm/internal/engine/effect"
	"github.com/dshills/paintstorm/internal/engine/history"
)

// ResizeMode selects how a ResizeCommand produces the new image.
type ResizeMode int

const (
	// ResizeCanvas changes dimensions without scaling content.
	ResizeCanvas ResizeMode = iota

	// Scale resamples with nearest neighbor.
	Scale

	// SmoothScale resamples with Catmull-Rom interpolation.
	SmoothScale
)

// String returns the mode's command name.
func (m ResizeMode) String() string {
	switch m {
	case ResizeCanvas:
		return "Resize"
	case Scale:
		return "Scale"
	case SmoothScale:
		return "Smooth Scale"
	default:
		return "unknown"
	}
}

// ResizeCommand changes the document's dimensions.
type ResizeCommand struct {
	mode       ResizeMode
	width      int
	height     int
	background color.Color

	estimate int64
	before   *image.NRGBA
}

// NewResize creates a resize command targeting w×h. For ResizeCanvas the new
// area is filled with background.
func NewResize(env history.Environment, mode ResizeMode, w, h int, background color.Color) (*ResizeCommand, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrInvalidSize
	}
	if background == nil {
		background = color.Transparent
	}
	return &ResizeCommand{
		mode:       mode,
		width:      w,
		height:     h,
		background: background,
		estimate:   document.ByteSize(env.Document().Image()),
	}, nil
}

// Execute resizes the document.
func (c *ResizeCommand) Execute(env history.Environment) error {
	doc := env.Document()
	if c.before == nil {
		c.before = document.Clone(doc.Image())
	}

	var (
		next *image.NRGBA
		err  error
	)
	switch c.mode {
	case Scale:
		next, err = effect.Scale(c.before, c.width, c.height, false)
	case SmoothScale:
		next, err = effect.Scale(c.before, c.width, c.height, true)
	default:
		next, err = effect.ResizeCanvas(c.before, c.width, c.height, c.background)
	}
	if err != nil {
		return err
	}
	return doc.SetImage(next)
}

// Unexecute restores the original image.
func (c *ResizeCommand) Unexecute(env history.Environment) error {
	if c.before == nil {
		return nil
	}
	return env.Document().SetImage(document.Clone(c.before))
}

// Name returns the mode name.
func (c *ResizeCommand) Name() string {
	return c.mode.String()
}

// Size returns the bytes of the cached original image.
func (c *ResizeCommand) Size() int64 {
	if c.before != nil {
		return document.ByteSize(c.before)
	}
	return c.estimate
}

// TargetSize returns the dimensions the command resizes to.
func (c *ResizeCommand) TargetSize() image.Point {
	return image.Pt(c.width, c.height)
}
