// Package palette implements named color collections: the default
// paintstorm palette, persistence of a user palette, and GIMP palette
// import and export.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Errors returned by palette operations.
var (
	// ErrIndexOutOfRange indicates an index outside the collection.
	ErrIndexOutOfRange = errors.New("palette index out of range")

	// ErrInvalidColor indicates a color string that cannot be parsed.
	ErrInvalidColor = errors.New("invalid color")
)

// Editable describes whether a collection may be changed by the user.
type Editable int

const (
	// EditableUnknown is the zero value.
	EditableUnknown Editable = iota

	// EditableYes marks a user palette.
	EditableYes

	// EditableNo marks a built-in palette.
	EditableNo
)

// Entry is a palette slot. A slot created by Resize holds no color until
// it is changed.
type Entry struct {
	Color color.NRGBA
	Name  string
	Valid bool
}

// Collection is an ordered list of named colors.
type Collection struct {
	Name        string
	Description string
	Editable    Editable

	entries []Entry
}

// New creates an empty collection.
func New(name string) *Collection {
	return &Collection{Name: name, Editable: EditableYes}
}

// Count returns the number of slots.
func (c *Collection) Count() int {
	return len(c.entries)
}

// Entries returns a copy of all slots.
func (c *Collection) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Color returns the color at index. ok is false for an out of range index
// or an empty slot.
func (c *Collection) Color(index int) (color.NRGBA, bool) {
	if index < 0 || index >= len(c.entries) || !c.entries[index].Valid {
		return color.NRGBA{}, false
	}
	return c.entries[index].Color, true
}

// ColorName returns the name at index, or "" if out of range.
func (c *Collection) ColorName(index int) string {
	if index < 0 || index >= len(c.entries) {
		return ""
	}
	return c.entries[index].Name
}

// NameOf returns the name of the first slot holding col.
func (c *Collection) NameOf(col color.Color) string {
	return c.ColorName(c.Find(col))
}

// Find returns the index of the first slot holding col, or -1.
func (c *Collection) Find(col color.Color) int {
	want := color.NRGBAModel.Convert(col).(color.NRGBA)
	for i, e := range c.entries {
		if e.Valid && e.Color == want {
			return i
		}
	}
	return -1
}

// Nearest returns the index of the slot perceptually closest to col
// (CIEDE2000), or -1 if the collection has no colors.
func (c *Collection) Nearest(col color.Color) int {
	target, ok := colorful.MakeColor(col)
	if !ok {
		return -1
	}
	best, bestDist := -1, 0.0
	for i, e := range c.entries {
		if !e.Valid {
			continue
		}
		cand, ok := colorful.MakeColor(e.Color)
		if !ok {
			continue
		}
		d := target.DistanceCIEDE2000(cand)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Add appends a color and returns its index.
func (c *Collection) Add(col color.Color, name string) int {
	c.entries = append(c.entries, Entry{
		Color: color.NRGBAModel.Convert(col).(color.NRGBA),
		Name:  name,
		Valid: true,
	})
	return len(c.entries) - 1
}

// Change replaces the slot at index.
func (c *Collection) Change(index int, col color.Color, name string) error {
	if index < 0 || index >= len(c.entries) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	c.entries[index] = Entry{
		Color: color.NRGBAModel.Convert(col).(color.NRGBA),
		Name:  name,
		Valid: true,
	}
	return nil
}

// ChangeColor replaces the first slot holding old and returns its index,
// or -1 if old is not in the collection.
func (c *Collection) ChangeColor(old, col color.Color, name string) int {
	i := c.Find(old)
	if i < 0 {
		return -1
	}
	_ = c.Change(i, col, name)
	return i
}

// Resize truncates the collection or pads it with empty slots.
func (c *Collection) Resize(n int) {
	if n < 0 {
		n = 0
	}
	switch {
	case n < len(c.entries):
		c.entries = c.entries[:n]
	case n > len(c.entries):
		c.entries = append(c.entries, make([]Entry, n-len(c.entries))...)
	}
}

// Clone returns a deep copy.
func (c *Collection) Clone() *Collection {
	out := *c
	out.entries = c.Entries()
	return &out
}

// ParseColor parses "#rrggbb" or "#aarrggbb" (case insensitive).
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	switch len(s) {
	case 7:
		cf, err := colorful.Hex(s)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		r, g, b := cf.RGB255()
		return color.NRGBA{r, g, b, 255}, nil
	case 9:
		if s[0] != '#' {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		a, err := strconv.ParseUint(s[1:3], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		c, err := ParseColor("#" + s[3:])
		if err != nil {
			return color.NRGBA{}, err
		}
		c.A = uint8(a)
		return c, nil
	default:
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
}

// FormatColor formats c as "#RRGGBB", or "#AARRGGBB" when not opaque.
func FormatColor(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}
