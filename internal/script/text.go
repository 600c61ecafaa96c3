package script

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// textPadding is the margin around rendered text, in pixels.
const textPadding = 2

// RenderText draws text in the fixed 7x13 face onto a bg filled image.
// A zero size is measured from the text; otherwise lines that do not fit
// are clipped.
func RenderText(text string, fg, bg color.NRGBA, size image.Point) *image.NRGBA {
	face := basicfont.Face7x13
	lines := strings.Split(text, "\n")
	lineHeight := face.Metrics().Height.Ceil()

	if size.X <= 0 || size.Y <= 0 {
		var widest fixed.Int26_6
		for _, line := range lines {
			widest = max(widest, font.MeasureString(face, line))
		}
		size = image.Pt(widest.Ceil()+2*textPadding, len(lines)*lineHeight+2*textPadding)
	}

	img := image.NewNRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
	}
	ascent := face.Metrics().Ascent.Ceil()
	for i, line := range lines {
		d.Dot = fixed.P(textPadding, textPadding+ascent+i*lineHeight)
		d.DrawString(line)
	}
	return img
}
