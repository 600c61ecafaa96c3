package palette

import "image/color"

// DefaultName is the name of the built-in palette.
const DefaultName = "Default"

var defaultColors = []color.NRGBA{
	{0, 0, 0, 255},       // black
	{255, 255, 255, 255}, // white
	{128, 128, 128, 255}, // gray
	{192, 192, 192, 255}, // light gray
	{255, 0, 0, 255},     // red
	{128, 0, 0, 255},     // dark red
	{255, 128, 0, 255},   // orange
	{128, 64, 0, 255},    // dark orange
	{255, 255, 0, 255},   // yellow
	{128, 128, 0, 255},   // dark yellow
	{0, 255, 0, 255},     // green
	{0, 128, 0, 255},     // dark green
	{0, 255, 255, 255},   // aqua
	{0, 128, 128, 255},   // dark aqua
	{0, 0, 255, 255},     // blue
	{0, 0, 128, 255},     // dark blue
	{255, 0, 255, 255},   // purple
	{128, 0, 128, 255},   // dark purple
	{255, 128, 255, 255}, // pink
	{128, 128, 255, 255}, // light blue
	{128, 255, 128, 255}, // light green
	{255, 224, 192, 255}, // tan
}

// Default returns the built-in palette: paired light and dark shades,
// each named by its ARGB hex code.
func Default() *Collection {
	c := &Collection{Name: DefaultName, Editable: EditableNo}
	for _, col := range defaultColors {
		c.Add(col, FormatARGB(col))
	}
	return c
}

// FormatARGB formats c as "#AARRGGBB" in upper case.
func FormatARGB(c color.NRGBA) string {
	const hex = "0123456789ABCDEF"
	b := []byte{'#', 0, 0, 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.A, c.R, c.G, c.B} {
		b[1+2*i] = hex[v>>4]
		b[2+2*i] = hex[v&0x0f]
	}
	return string(b)
}
