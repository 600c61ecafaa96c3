package command

import (
	"image"
	"image/color"

	"github.com/dshills/paintstorm/internal/engine/document"
	"github.com/dshills/paintstorm/internal/engine/effect"
	"github.com/dshills/paintstorm/internal/engine/history"
)

// EffectFunc transforms a pixel buffer without modifying its input.
type EffectFunc func(img *image.NRGBA) *image.NRGBA

// EffectCommand applies an EffectFunc to the whole document or to the
// floating selection content.
type EffectCommand struct {
	name           string
	apply          EffectFunc
	actOnSelection bool

	estimate int64
	before   *image.NRGBA
}

// NewEffectCommand creates an effect command. When actOnSelection is set the
// document must have a selection with content.
func NewEffectCommand(env history.Environment, name string, actOnSelection bool, apply EffectFunc) (*EffectCommand, error) {
	doc := env.Document()
	c := &EffectCommand{
		name:           name,
		apply:          apply,
		actOnSelection: actOnSelection,
	}
	if actOnSelection {
		sel := doc.Selection()
		if !sel.HasContent() {
			return nil, ErrNoSelection
		}
		c.estimate = sel.Size()
	} else {
		c.estimate = document.ByteSize(doc.Image())
	}
	return c, nil
}

// NewInvert creates an invert command. Inverting RGB is named
// "Invert Colors"; any other channel set is named "Invert".
func NewInvert(env history.Environment, channels effect.Channels, actOnSelection bool) (*EffectCommand, error) {
	name := "Invert"
	if channels == effect.RGB {
		name = "Invert Colors"
	}
	return NewEffectCommand(env, name, actOnSelection, func(img *image.NRGBA) *image.NRGBA {
		return effect.Invert(img, channels)
	})
}

// NewColorToAlpha creates a command turning c transparent.
func NewColorToAlpha(env history.Environment, c color.NRGBA, actOnSelection bool) (*EffectCommand, error) {
	return NewEffectCommand(env, "Color to Alpha", actOnSelection, func(img *image.NRGBA) *image.NRGBA {
		return effect.ColorToAlpha(img, c)
	})
}

// NewGrayscale creates a command reducing colors to grayscale.
func NewGrayscale(env history.Environment, actOnSelection bool) (*EffectCommand, error) {
	return NewEffectCommand(env, "Reduce to Grayscale", actOnSelection, effect.Grayscale)
}

// NewClear creates a command filling the target with c.
func NewClear(env history.Environment, c color.Color, actOnSelection bool) (*EffectCommand, error) {
	return NewEffectCommand(env, "Clear", actOnSelection, func(img *image.NRGBA) *image.NRGBA {
		return effect.Clear(img, c)
	})
}

// Execute applies the effect. The untouched pixels are cached on first
// execution.
func (c *EffectCommand) Execute(env history.Environment) error {
	doc := env.Document()
	if c.actOnSelection {
		sel := doc.Selection()
		if !sel.HasContent() {
			return ErrNoSelection
		}
		if c.before == nil {
			c.before = document.Clone(sel.Content)
		}
		next := *sel
		next.Content = c.result()
		doc.SetSelection(&next)
		return nil
	}

	if c.before == nil {
		c.before = document.Clone(doc.Image())
	}
	return doc.SetImage(c.result())
}

// result applies the effect to the cached pixels, never handing out the
// cache itself.
func (c *EffectCommand) result() *image.NRGBA {
	out := c.apply(c.before)
	if out == c.before {
		out = document.Clone(out)
	}
	return out
}

// Unexecute restores the cached pixels.
func (c *EffectCommand) Unexecute(env history.Environment) error {
	if c.before == nil {
		return nil
	}
	doc := env.Document()
	if c.actOnSelection {
		sel := doc.Selection()
		if sel == nil {
			return ErrNoSelection
		}
		prev := *sel
		prev.Content = document.Clone(c.before)
		doc.SetSelection(&prev)
		return nil
	}
	return doc.SetImage(document.Clone(c.before))
}

// Name returns the effect name.
func (c *EffectCommand) Name() string {
	return c.name
}

// Size returns the bytes of cached pixels, or an estimate before the first
// execution.
func (c *EffectCommand) Size() int64 {
	if c.before != nil {
		return document.ByteSize(c.before)
	}
	return c.estimate
}
