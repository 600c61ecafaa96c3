// Package effect implements the pixel-level image effects and transforms
// that history commands apply to a document.
//
// Every function is pure: it reads its input buffer and returns a new one,
// leaving the input untouched. That lets commands keep the input as their
// undo state without copying it first.
package effect

import (
	"errors"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/dshills/paintstorm/internal/engine/document"
)

// ErrInvalidSize indicates a non-positive target dimension.
var ErrInvalidSize = errors.New("invalid image size")

// Channels is a set of color channels.
type Channels uint8

// Channel flags.
const (
	Red Channels = 1 << iota
	Green
	Blue
	Alpha

	RGB = Red | Green | Blue
)

// Has reports whether c includes every channel in other.
func (c Channels) Has(other Channels) bool {
	return c&other == other
}

// Invert complements the selected channels of every pixel. Inverting RGB
// leaves alpha unchanged.
func Invert(img *image.NRGBA, channels Channels) *image.NRGBA {
	out := document.Clone(img)
	forEachPixel(out, func(p []uint8) {
		if channels.Has(Red) {
			p[0] = 255 - p[0]
		}
		if channels.Has(Green) {
			p[1] = 255 - p[1]
		}
		if channels.Has(Blue) {
			p[2] = 255 - p[2]
		}
		if channels.Has(Alpha) {
			p[3] = 255 - p[3]
		}
	})
	return out
}

// Grayscale reduces every pixel to its luminance, keeping alpha.
func Grayscale(img *image.NRGBA) *image.NRGBA {
	out := document.Clone(img)
	forEachPixel(out, func(p []uint8) {
		// Same weighting as Qt's qGray.
		g := uint8((int(p[0])*11 + int(p[1])*16 + int(p[2])*5) / 32)
		p[0], p[1], p[2] = g, g, g
	})
	return out
}

// Clear returns an image of the same size filled with c.
func Clear(img *image.NRGBA, c color.Color) *image.NRGBA {
	out := image.NewNRGBA(img.Rect)
	document.Fill(out, out.Rect, c)
	return out
}

// ColorToAlpha makes c transparent, turning pixels near c partially
// transparent while preserving their appearance over a c-colored
// background.
func ColorToAlpha(img *image.NRGBA, c color.NRGBA) *image.NRGBA {
	out := document.Clone(img)
	cr, cg, cb := float64(c.R), float64(c.G), float64(c.B)
	forEachPixel(out, func(p []uint8) {
		r, g, b, a := colorToAlpha(float64(p[0]), float64(p[1]), float64(p[2]), float64(p[3]), cr, cg, cb)
		p[0], p[1], p[2], p[3] = clamp8(r), clamp8(g), clamp8(b), clamp8(a)
	})
	return out
}

// colorToAlpha is the GIMP color-to-alpha transfer on unpremultiplied
// components in [0,255].
func colorToAlpha(r, g, b, a, cr, cg, cb float64) (float64, float64, float64, float64) {
	channelAlpha := func(v, c float64) float64 {
		switch {
		case v > c:
			return (v - c) / (255 - c)
		case v < c:
			return (c - v) / c
		default:
			return 0
		}
	}

	alpha := math.Max(channelAlpha(r, cr), math.Max(channelAlpha(g, cg), channelAlpha(b, cb)))
	alpha *= 255
	if alpha < 1 {
		return r, g, b, alpha
	}

	r = 255*(r-cr)/alpha + cr
	g = 255*(g-cg)/alpha + cg
	b = 255*(b-cb)/alpha + cb
	return r, g, b, alpha * a / 255
}

// Flip mirrors the image horizontally or vertically.
func Flip(img *image.NRGBA, horizontal bool) *image.NRGBA {
	b := img.Rect
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sx, sy := x, y
			if horizontal {
				sx = b.Max.X - 1 - (x - b.Min.X)
			} else {
				sy = b.Max.Y - 1 - (y - b.Min.Y)
			}
			out.SetNRGBA(x, y, img.NRGBAAt(sx, sy))
		}
	}
	return out
}

// Rotate turns the image clockwise by quarterTurns × 90°. Negative values
// rotate counter-clockwise. The result is anchored at (0,0).
func Rotate(img *image.NRGBA, quarterTurns int) *image.NRGBA {
	turns := ((quarterTurns % 4) + 4) % 4
	b := img.Rect
	w, h := b.Dx(), b.Dy()
	if turns%2 == 1 {
		w, h = h, w
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			var dx, dy int
			switch turns {
			case 0:
				dx, dy = x, y
			case 1:
				dx, dy = b.Dy()-1-y, x
			case 2:
				dx, dy = b.Dx()-1-x, b.Dy()-1-y
			case 3:
				dx, dy = y, b.Dx()-1-x
			}
			out.SetNRGBA(dx, dy, img.NRGBAAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

// ResizeCanvas changes the image dimensions without scaling. The top-left
// content is kept; new area is filled with bg.
func ResizeCanvas(img *image.NRGBA, w, h int, bg color.Color) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrInvalidSize
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	document.Fill(out, out.Rect, bg)
	r := image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()).Intersect(out.Rect)
	document.Copy(out, r, img, img.Rect.Min)
	return out, nil
}

// Scale resamples the image to w×h. Smooth scaling uses Catmull-Rom
// interpolation; otherwise nearest neighbor is used.
func Scale(img *image.NRGBA, w, h int, smooth bool) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrInvalidSize
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	var scaler draw.Scaler = draw.NearestNeighbor
	if smooth {
		scaler = draw.CatmullRom
	}
	scaler.Scale(out, out.Rect, img, img.Rect, draw.Src, nil)
	return out, nil
}

// Composite draws src over dst at p using source-over blending and returns
// the result.
func Composite(dst, src *image.NRGBA, p image.Point) *image.NRGBA {
	out := document.Clone(dst)
	r := image.Rectangle{Min: p, Max: p.Add(src.Rect.Size())}
	draw.Draw(out, r, src, src.Rect.Min, draw.Over)
	return out
}

func forEachPixel(img *image.NRGBA, fn func(p []uint8)) {
	b := img.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		end := img.PixOffset(b.Max.X, y)
		for ; i < end; i += 4 {
			fn(img.Pix[i : i+4 : i+4])
		}
	}
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
