package script

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/dshills/paintstorm/internal/engine/command"
	"github.com/dshills/paintstorm/internal/engine/effect"
)

type opDef struct {
	run      func(r *Runner, s Step) error
	validate func(s Step) error
	// effect marks operations remembered as the last used effect.
	effect bool
}

var (
	white       = color.NRGBA{255, 255, 255, 255}
	black       = color.NRGBA{0, 0, 0, 255}
	transparent = color.NRGBA{}
)

var ops = map[string]opDef{
	"invert": {
		effect:   true,
		validate: func(s Step) error { _, err := parseChannels(s.Channels); return err },
		run: func(r *Runner, s Step) error {
			ch, err := parseChannels(s.Channels)
			if err != nil {
				return err
			}
			return r.execute(command.NewInvert(r.engine, ch, s.Selection))
		},
	},
	"grayscale": {
		effect: true,
		run: func(r *Runner, s Step) error {
			return r.execute(command.NewGrayscale(r.engine, s.Selection))
		},
	},
	"color-to-alpha": {
		effect:   true,
		validate: require(func(s Step) bool { return s.Color != "" }, "color is required"),
		run: func(r *Runner, s Step) error {
			c, err := r.color(s.Color, white)
			if err != nil {
				return err
			}
			return r.execute(command.NewColorToAlpha(r.engine, c, s.Selection))
		},
	},
	"clear": {
		effect: true,
		run: func(r *Runner, s Step) error {
			c, err := r.color(s.Color, transparent)
			if err != nil {
				return err
			}
			return r.execute(command.NewClear(r.engine, c, s.Selection))
		},
	},
	"flip": {
		validate: require(func(s Step) bool {
			return s.Axis == "" || s.Axis == "horizontal" || s.Axis == "vertical"
		}, "axis must be horizontal or vertical"),
		run: func(r *Runner, s Step) error {
			return r.execute(command.NewFlip(r.engine, s.Axis != "vertical", s.Selection))
		},
	},
	"rotate": {
		validate: require(func(s Step) bool { return s.Turns != 0 }, "turns must not be zero"),
		run: func(r *Runner, s Step) error {
			return r.execute(command.NewRotate(r.engine, s.Turns, s.Selection))
		},
	},
	"resize":       resizeOp(command.ResizeCanvas),
	"scale":        resizeOp(command.Scale),
	"smooth-scale": resizeOp(command.SmoothScale),
	"select": {
		validate: validRect(false),
		run: func(r *Runner, s Step) error {
			bg, err := r.color(s.Background, transparent)
			if err != nil {
				return err
			}
			return r.execute(command.NewSelectionCreate(r.engine, stepRect(s.Rect), bg))
		},
	},
	"text": {
		validate: func(s Step) error {
			if s.Text == "" {
				return fmt.Errorf("%w: text is required", ErrInvalidStep)
			}
			return validRect(true)(s)
		},
		run: func(r *Runner, s Step) error {
			fg, err := r.color(s.Color, black)
			if err != nil {
				return err
			}
			bg, err := r.color(s.Background, transparent)
			if err != nil {
				return err
			}
			rect := stepRect(s.Rect)
			content := RenderText(s.Text, fg, bg, rect.Size())
			rect.Max = rect.Min.Add(content.Bounds().Size())
			return r.execute(command.NewTextSelectionCreate(r.engine, rect, s.Text, content))
		},
	},
	"move-selection": {
		validate: require(func(s Step) bool { return len(s.To) == 2 }, "to must be [x, y]"),
		run: func(r *Runner, s Step) error {
			move, err := command.NewSelectionMove(r.engine, s.Name)
			if err != nil {
				return err
			}
			if err := move.MoveTo(r.engine, image.Pt(s.To[0], s.To[1]), false); err != nil {
				return err
			}
			move.Finalize()
			return r.engine.Execute(move)
		},
	},
	"deselect": {
		run: func(r *Runner, s Step) error {
			return r.execute(command.NewSelectionDestroy(r.engine))
		},
	},
	"crop": {
		run: func(r *Runner, s Step) error {
			return command.CropToSelection(r.engine, s.Name)
		},
	},
	"crop-text": {
		run: func(r *Runner, s Step) error {
			return command.CropTextSelection(r.engine, s.Name)
		},
	},
	"set-text": {
		validate: require(func(s Step) bool { return s.Key != "" }, "key is required"),
		run: func(r *Runner, s Step) error {
			return r.engine.Execute(command.NewSetText(r.engine, s.Key, s.Value))
		},
	},
	"set-dpi": {
		validate: func(s Step) error {
			if len(s.DPI) < 1 || len(s.DPI) > 2 {
				return fmt.Errorf("%w: dpi must be [x, y] or [both]", ErrInvalidStep)
			}
			for _, v := range s.DPI {
				if v <= 0 {
					return fmt.Errorf("%w: dpi must be positive", ErrInvalidStep)
				}
			}
			return nil
		},
		run: func(r *Runner, s Step) error {
			x, y := s.DPI[0], s.DPI[0]
			if len(s.DPI) == 2 {
				y = s.DPI[1]
			}
			return r.engine.Execute(command.NewSetDPI(r.engine, x, y))
		},
	},
	"undo": {
		run: func(r *Runner, s Step) error { return r.engine.Undo() },
	},
	"redo": {
		run: func(r *Runner, s Step) error { return r.engine.Redo() },
	},
	"save": {
		run: func(r *Runner, s Step) error {
			if s.Path == "" {
				return r.engine.Save()
			}
			return r.engine.SaveAs(r.expand(s.Path), s.Format)
		},
	},
	"export": {
		validate: require(func(s Step) bool { return s.Path != "" }, "path is required"),
		run: func(r *Runner, s Step) error {
			return r.engine.Export(r.expand(s.Path), s.Format)
		},
	},
}

func resizeOp(mode command.ResizeMode) opDef {
	return opDef{
		validate: require(func(s Step) bool { return s.Width > 0 && s.Height > 0 }, "width and height must be positive"),
		run: func(r *Runner, s Step) error {
			bg, err := r.color(s.Background, transparent)
			if err != nil {
				return err
			}
			return r.execute(command.NewResize(r.engine, mode, s.Width, s.Height, bg))
		},
	}
}

func require(ok func(Step) bool, msg string) func(Step) error {
	err := fmt.Errorf("%w: %s", ErrInvalidStep, msg)
	return func(s Step) error {
		if !ok(s) {
			return err
		}
		return nil
	}
}

// validRect accepts [x, y, w, h] with a positive size, or [x, y] when
// sizeOptional is set.
func validRect(sizeOptional bool) func(Step) error {
	return func(s Step) error {
		switch {
		case len(s.Rect) == 2 && sizeOptional:
			return nil
		case len(s.Rect) == 4 && s.Rect[2] > 0 && s.Rect[3] > 0:
			return nil
		default:
			return fmt.Errorf("%w: rect must be [x, y, w, h] with a positive size", ErrInvalidStep)
		}
	}
}

func stepRect(v []int) image.Rectangle {
	r := image.Rectangle{Min: image.Pt(v[0], v[1])}
	if len(v) == 4 {
		r.Max = r.Min.Add(image.Pt(v[2], v[3]))
	} else {
		r.Max = r.Min
	}
	return r
}

func parseChannels(s string) (effect.Channels, error) {
	if s == "" {
		return effect.RGB, nil
	}
	var ch effect.Channels
	for _, c := range strings.ToLower(s) {
		switch c {
		case 'r':
			ch |= effect.Red
		case 'g':
			ch |= effect.Green
		case 'b':
			ch |= effect.Blue
		case 'a':
			ch |= effect.Alpha
		default:
			return 0, fmt.Errorf("%w: channels must combine r, g, b and a", ErrInvalidStep)
		}
	}
	return ch, nil
}
