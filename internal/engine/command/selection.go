package command

import (
	"image"
	"image/color"

	"github.com/dshills/paintstorm/internal/engine/document"
	"github.com/dshills/paintstorm/internal/engine/effect"
	"github.com/dshills/paintstorm/internal/engine/history"
)

// SelectionCreateCommand replaces the current selection with a new one.
// Any floating selection already present is stamped onto the document
// first.
type SelectionCreateCommand struct {
	name string
	sel  *document.Selection

	// background fills the area a rectangular selection is lifted from.
	// Nil for text boxes, whose content does not come from the document.
	background color.Color

	replace *SelectionDestroyCommand
	applied bool
}

// NewSelectionCreate creates a rectangular selection over r. On execution
// the pixels under r are lifted into the selection and the area they leave
// is filled with background (transparent when nil).
func NewSelectionCreate(env history.Environment, r image.Rectangle, background color.Color) (*SelectionCreateCommand, error) {
	doc := env.Document()
	r = r.Canon().Intersect(doc.Rect())
	if r.Empty() {
		return nil, ErrEmptySelection
	}
	if background == nil {
		background = color.Transparent
	}
	replace, err := replaceSelection(env)
	if err != nil {
		return nil, err
	}

	content := document.SubImage(doc.Image(), r)
	if prev := doc.Selection(); prev.HasContent() {
		content = effect.Composite(content, prev.Content, prev.Bounds.Min.Sub(r.Min))
	}
	return &SelectionCreateCommand{
		name: "Selection: Create",
		sel: &document.Selection{
			Kind:    document.SelectionRect,
			Bounds:  r,
			Content: content,
		},
		background: background,
		replace:    replace,
	}, nil
}

// NewTextSelectionCreate creates a text selection at r whose rendered
// pixels are content. content is scaled to r's size if they differ.
func NewTextSelectionCreate(env history.Environment, r image.Rectangle, text string, content *image.NRGBA) (*SelectionCreateCommand, error) {
	r = r.Canon()
	if r.Empty() {
		return nil, ErrEmptySelection
	}
	if content == nil {
		content = image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	} else if content.Rect.Size() != r.Size() {
		scaled, err := effect.Scale(content, r.Dx(), r.Dy(), true)
		if err != nil {
			return nil, err
		}
		content = scaled
	} else {
		content = document.Clone(content)
	}
	replace, err := replaceSelection(env)
	if err != nil {
		return nil, err
	}
	return &SelectionCreateCommand{
		name: "Text: Create Box",
		sel: &document.Selection{
			Kind:    document.SelectionText,
			Bounds:  r,
			Content: content,
			Text:    text,
		},
		replace: replace,
	}, nil
}

// replaceSelection returns the command stamping the current selection, or
// nil when there is none.
func replaceSelection(env history.Environment) (*SelectionDestroyCommand, error) {
	if env.Document().Selection() == nil {
		return nil, nil
	}
	return NewSelectionDestroy(env)
}

// Execute stamps any previous selection, lifts the pixels under a
// rectangular selection and installs it.
func (c *SelectionCreateCommand) Execute(env history.Environment) error {
	if c.applied {
		return nil
	}
	doc := env.Document()
	doc.Suspend()
	defer doc.Resume()

	if c.replace != nil {
		if err := c.replace.Execute(env); err != nil {
			return err
		}
	}
	if c.background != nil {
		r := c.sel.Bounds
		c.sel.Content = document.SubImage(doc.Image(), r)
		fill := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		document.Fill(fill, fill.Rect, c.background)
		doc.DrawOver(r, fill)
	}
	doc.SetSelection(c.sel.Clone())
	c.applied = true
	return nil
}

// Unexecute puts lifted pixels back and restores the previous selection.
func (c *SelectionCreateCommand) Unexecute(env history.Environment) error {
	if !c.applied {
		return nil
	}
	doc := env.Document()
	doc.Suspend()
	defer doc.Resume()

	doc.SetSelection(nil)
	if c.background != nil {
		doc.DrawOver(c.sel.Bounds, document.Clone(c.sel.Content))
	}
	if c.replace != nil {
		if err := c.replace.Unexecute(env); err != nil {
			return err
		}
	}
	c.applied = false
	return nil
}

// Name returns the command name.
func (c *SelectionCreateCommand) Name() string {
	return c.name
}

// Size returns the bytes of the new selection's content plus whatever
// stamping the previous selection holds.
func (c *SelectionCreateCommand) Size() int64 {
	var n int64
	if c.replace != nil {
		n = c.replace.Size()
	}
	return n + c.sel.Size()
}

// SelectionMoveCommand moves the selection to a new top-left corner.
type SelectionMoveCommand struct {
	name      string
	start     image.Point
	dest      image.Point
	finalized bool

	// applied is set while the selection sits at dest.
	applied bool
}

// NewSelectionMove creates a move command starting at the current
// selection position. An empty name is allowed for commands that are only
// children of a macro.
func NewSelectionMove(env history.Environment, name string) (*SelectionMoveCommand, error) {
	sel := env.Document().Selection()
	if sel == nil {
		return nil, ErrNoSelection
	}
	if name == "" {
		name = "Selection: Move"
	}
	return &SelectionMoveCommand{
		name:  name,
		start: sel.Bounds.Min,
		dest:  sel.Bounds.Min,
	}, nil
}

// MoveTo sets the destination. If now is true the document selection is
// moved immediately, as during an interactive drag; otherwise the move
// happens on Execute.
func (c *SelectionMoveCommand) MoveTo(env history.Environment, p image.Point, now bool) error {
	if c.finalized {
		return ErrFinalized
	}
	c.dest = p
	c.applied = false
	if now {
		if err := c.moveTo(env, p); err != nil {
			return err
		}
		c.applied = true
	}
	return nil
}

// Finalize freezes the destination.
func (c *SelectionMoveCommand) Finalize() {
	c.finalized = true
}

// Execute moves the selection to the destination.
func (c *SelectionMoveCommand) Execute(env history.Environment) error {
	if c.applied {
		return nil
	}
	if err := c.moveTo(env, c.dest); err != nil {
		return err
	}
	c.applied = true
	return nil
}

// Unexecute moves the selection back to where it started.
func (c *SelectionMoveCommand) Unexecute(env history.Environment) error {
	if !c.applied {
		return nil
	}
	if err := c.moveTo(env, c.start); err != nil {
		return err
	}
	c.applied = false
	return nil
}

func (c *SelectionMoveCommand) moveTo(env history.Environment, p image.Point) error {
	doc := env.Document()
	sel := doc.Selection()
	if sel == nil {
		return ErrNoSelection
	}
	if sel.Bounds.Min == p {
		return nil
	}
	doc.SetSelection(sel.MovedTo(p))
	return nil
}

// Name returns the command name.
func (c *SelectionMoveCommand) Name() string {
	return c.name
}

// Size returns 0; moves hold no pixels.
func (c *SelectionMoveCommand) Size() int64 {
	return 0
}

// Delta returns the offset between start and destination.
func (c *SelectionMoveCommand) Delta() image.Point {
	return c.dest.Sub(c.start)
}

// SelectionDestroyCommand removes the selection, compositing its floating
// content onto the document.
type SelectionDestroyCommand struct {
	sel     *document.Selection
	under   *image.NRGBA
	applied bool
}

// NewSelectionDestroy creates a deselect command. The selection and the
// pixels it covers are captured here so Size is known before execution.
func NewSelectionDestroy(env history.Environment) (*SelectionDestroyCommand, error) {
	doc := env.Document()
	if doc.Selection() == nil {
		return nil, ErrNoSelection
	}
	c := &SelectionDestroyCommand{}
	c.capture(doc)
	return c, nil
}

func (c *SelectionDestroyCommand) capture(doc *document.Document) {
	sel := doc.Selection()
	c.sel = sel.Clone()
	c.under = nil
	if sel.HasContent() {
		c.under = document.SubImage(doc.Image(), sel.Bounds)
	}
}

// Execute stamps the selection content onto the document and removes the
// selection. The capture is refreshed first, since earlier commands of a
// macro may have moved the selection or changed the pixels beneath it.
func (c *SelectionDestroyCommand) Execute(env history.Environment) error {
	if c.applied {
		return nil
	}
	doc := env.Document()
	if doc.Selection() == nil {
		return ErrNoSelection
	}
	c.capture(doc)

	doc.Suspend()
	defer doc.Resume()
	if c.under != nil {
		doc.DrawOver(c.sel.Bounds, effect.Composite(c.under, c.sel.Content, image.Point{}))
	}
	doc.SetSelection(nil)
	c.applied = true
	return nil
}

// Unexecute restores the covered pixels and the selection.
func (c *SelectionDestroyCommand) Unexecute(env history.Environment) error {
	if !c.applied {
		return nil
	}
	doc := env.Document()
	doc.Suspend()
	defer doc.Resume()
	if c.under != nil {
		doc.DrawOver(c.sel.Bounds, document.Clone(c.under))
	}
	doc.SetSelection(c.sel.Clone())
	c.applied = false
	return nil
}

// Name returns the command name.
func (c *SelectionDestroyCommand) Name() string {
	return "Selection: Deselect"
}

// Size returns the bytes of the selection and covered pixels.
func (c *SelectionDestroyCommand) Size() int64 {
	return c.sel.Size() + document.ByteSize(c.under)
}
