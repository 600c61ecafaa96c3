package document

import (
	"image"
	"image/color"
	"image/draw"
)

// Clone returns a deep copy of img with the same bounds. Clone of nil is nil.
func Clone(img *image.NRGBA) *image.NRGBA {
	if img == nil {
		return nil
	}
	out := &image.NRGBA{
		Pix:    make([]uint8, len(img.Pix)),
		Stride: img.Stride,
		Rect:   img.Rect,
	}
	copy(out.Pix, img.Pix)
	return out
}

// SubImage returns a copy of the region r of img, re-anchored at (0,0).
// Parts of r outside img are transparent.
func SubImage(img *image.NRGBA, r image.Rectangle) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	src := r.Intersect(img.Bounds())
	if src.Empty() {
		return out
	}
	Copy(out, src.Sub(r.Min), img, src.Min)
	return out
}

// Copy writes the pixels of src starting at sp into dst's rect r,
// replacing (not blending) the destination.
func Copy(dst *image.NRGBA, r image.Rectangle, src *image.NRGBA, sp image.Point) {
	draw.Draw(dst, r, src, sp, draw.Src)
}

// Fill sets every pixel of img inside r to c.
func Fill(img *image.NRGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// ToNRGBA converts any image to a non-premultiplied RGBA buffer anchored
// at (0,0). An *image.NRGBA already at the origin is returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}

// ByteSize returns the memory cost of the pixel data of img.
func ByteSize(img *image.NRGBA) int64 {
	if img == nil {
		return 0
	}
	return int64(len(img.Pix))
}

// Equal reports whether a and b have the same bounds and pixels.
func Equal(a, b *image.NRGBA) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Rect != b.Rect {
		return false
	}
	for y := a.Rect.Min.Y; y < a.Rect.Max.Y; y++ {
		ra := a.Pix[a.PixOffset(a.Rect.Min.X, y):a.PixOffset(a.Rect.Max.X, y)]
		rb := b.Pix[b.PixOffset(b.Rect.Min.X, y):b.PixOffset(b.Rect.Max.X, y)]
		if string(ra) != string(rb) {
			return false
		}
	}
	return true
}
