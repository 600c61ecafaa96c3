package palette

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
)

const gimpHeader = "GIMP Palette"

// ErrNotGIMPPalette indicates input without the GIMP palette header.
var ErrNotGIMPPalette = errors.New("not a GIMP palette")

// ReadGIMP parses a GIMP .gpl palette. Comment lines before the first
// color become the description.
func ReadGIMP(r io.Reader) (*Collection, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != gimpHeader {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotGIMPPalette
	}

	c := New("")
	var desc []string
	lineNo := 1
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			if c.Count() == 0 {
				if text := strings.TrimSpace(strings.TrimPrefix(line, "#")); text != "" {
					desc = append(desc, text)
				}
			}
			continue
		case strings.HasPrefix(line, "Name:"):
			c.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		case strings.HasPrefix(line, "Columns:"):
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrInvalidColor, line)
		}
		var rgb [3]uint8
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseUint(fields[i], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrInvalidColor, line)
			}
			rgb[i] = uint8(v)
		}
		c.Add(color.NRGBA{rgb[0], rgb[1], rgb[2], 255}, strings.Join(fields[3:], " "))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	c.Description = strings.Join(desc, "\n")
	return c, nil
}

// WriteGIMP writes the collection as a GIMP .gpl palette. Alpha is dropped
// and empty slots are skipped.
func (c *Collection) WriteGIMP(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, gimpHeader)
	if c.Name != "" {
		fmt.Fprintf(bw, "Name: %s\n", c.Name)
	}
	fmt.Fprintln(bw, "Columns: 2")
	for _, line := range strings.Split(c.Description, "\n") {
		if line != "" {
			fmt.Fprintf(bw, "# %s\n", line)
		}
	}
	fmt.Fprintln(bw, "#")
	for _, e := range c.entries {
		if !e.Valid {
			continue
		}
		fmt.Fprintf(bw, "%3d %3d %3d\t%s\n", e.Color.R, e.Color.G, e.Color.B, e.Name)
	}
	return bw.Flush()
}
