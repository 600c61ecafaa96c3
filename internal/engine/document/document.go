package document

import (
	"errors"
	"image"
	"image/color"
	"maps"
	"path/filepath"

	"github.com/google/uuid"
)

// Errors returned by document operations.
var (
	// ErrNilImage indicates a nil pixel buffer was supplied.
	ErrNilImage = errors.New("nil image")

	// ErrEmptyImage indicates an image with zero width or height.
	ErrEmptyImage = errors.New("empty image")
)

// Meta is the non-pixel information stored alongside an image.
type Meta struct {
	// DotsPerMeterX is the horizontal resolution (0 = unspecified).
	DotsPerMeterX int

	// DotsPerMeterY is the vertical resolution (0 = unspecified).
	DotsPerMeterY int

	// Offset is the image's suggested position relative to other images.
	Offset image.Point

	// Text holds embedded key/value text tags.
	Text map[string]string
}

// Clone returns a deep copy of the metadata.
func (m Meta) Clone() Meta {
	out := m
	if m.Text != nil {
		out.Text = maps.Clone(m.Text)
	}
	return out
}

// Equal reports whether two metadata values are identical.
func (m Meta) Equal(o Meta) bool {
	return m.DotsPerMeterX == o.DotsPerMeterX &&
		m.DotsPerMeterY == o.DotsPerMeterY &&
		m.Offset == o.Offset &&
		maps.Equal(m.Text, o.Text)
}

// DPI returns the resolution in dots per inch, rounded.
func (m Meta) DPI() (x, y int) {
	const inchesPerMeter = 39.3701
	return int(float64(m.DotsPerMeterX)/inchesPerMeter + 0.5),
		int(float64(m.DotsPerMeterY)/inchesPerMeter + 0.5)
}

// SelectionKind distinguishes selection variants.
type SelectionKind int

const (
	// SelectionRect is a rectangular image selection.
	SelectionRect SelectionKind = iota

	// SelectionText is a text box whose content is pre-rendered pixels.
	SelectionText
)

// String returns the selection kind name.
func (k SelectionKind) String() string {
	switch k {
	case SelectionRect:
		return "rect"
	case SelectionText:
		return "text"
	default:
		return "unknown"
	}
}

// Selection is a region floating above the document.
type Selection struct {
	// Kind is the selection variant.
	Kind SelectionKind

	// Bounds is the selection rectangle in document coordinates.
	Bounds image.Rectangle

	// Content holds the floating pixels, sized to Bounds with origin (0,0).
	// Nil for a selection border with no pulled content.
	Content *image.NRGBA

	// Text is the source text of a text selection.
	Text string
}

// HasContent reports whether the selection carries floating pixels.
func (s *Selection) HasContent() bool {
	return s != nil && s.Content != nil
}

// Clone returns a deep copy of the selection. Clone of nil is nil.
func (s *Selection) Clone() *Selection {
	if s == nil {
		return nil
	}
	out := *s
	out.Content = Clone(s.Content)
	return &out
}

// MovedTo returns a copy of the selection with its top-left corner at p.
// Content is shared, not copied.
func (s *Selection) MovedTo(p image.Point) *Selection {
	out := *s
	out.Bounds = s.Bounds.Sub(s.Bounds.Min).Add(p)
	return &out
}

// Size returns the byte cost of the selection's floating pixels.
func (s *Selection) Size() int64 {
	if s == nil {
		return 0
	}
	return ByteSize(s.Content)
}

// Document is an image being edited.
type Document struct {
	id        uuid.UUID
	img       *image.NRGBA
	selection *Selection
	url       string
	format    string
	meta      Meta

	observers      []observerEntry
	nextObserverID uint64
	suspended      int
	pending        *Change
}

// New creates a document around img. The document takes ownership of img
// and normalizes its origin to (0,0).
func New(img *image.NRGBA) *Document {
	if img == nil {
		img = image.NewNRGBA(image.Rectangle{})
	}
	return &Document{
		id:  uuid.New(),
		img: normalize(img),
	}
}

// NewBlank creates a w×h document filled with bg.
func NewBlank(w, h int, bg color.Color) (*Document, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyImage
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	Fill(img, img.Bounds(), bg)
	return New(img), nil
}

// ID returns the document's unique identifier.
func (d *Document) ID() uuid.UUID {
	return d.id
}

// Image returns the pixel buffer. Callers must not modify it directly;
// use a history command.
func (d *Document) Image() *image.NRGBA {
	return d.img
}

// SetImage replaces the pixel buffer. A size change is reported as
// ChangeSize, otherwise ChangePixels over the whole image.
func (d *Document) SetImage(img *image.NRGBA) error {
	if img == nil {
		return ErrNilImage
	}
	old := d.img.Bounds()
	d.img = normalize(img)
	kind := ChangePixels
	if d.img.Bounds() != old {
		kind = ChangeSize
	}
	d.Notify(kind, old.Union(d.img.Bounds()))
	return nil
}

// Rect returns the image bounds, always anchored at (0,0).
func (d *Document) Rect() image.Rectangle {
	return d.img.Bounds()
}

// Width returns the image width in pixels.
func (d *Document) Width() int {
	return d.img.Bounds().Dx()
}

// Height returns the image height in pixels.
func (d *Document) Height() int {
	return d.img.Bounds().Dy()
}

// At returns the color at (x, y).
func (d *Document) At(x, y int) color.NRGBA {
	return d.img.NRGBAAt(x, y)
}

// SetAt sets a single pixel and notifies its 1×1 region.
func (d *Document) SetAt(x, y int, c color.NRGBA) {
	p := image.Pt(x, y)
	if !p.In(d.img.Bounds()) {
		return
	}
	d.img.SetNRGBA(x, y, c)
	d.Notify(ChangePixels, image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
}

// DrawOver replaces the pixels under rect with src, where src's top-left
// pixel corresponds to rect.Min. Parts of rect outside the image are
// ignored.
func (d *Document) DrawOver(rect image.Rectangle, src *image.NRGBA) {
	clipped := rect.Intersect(d.img.Bounds())
	if clipped.Empty() || src == nil {
		return
	}
	sp := src.Bounds().Min.Add(clipped.Min.Sub(rect.Min))
	Copy(d.img, clipped, src, sp)
	d.Notify(ChangePixels, clipped)
}

// Selection returns the current selection or nil.
func (d *Document) Selection() *Selection {
	return d.selection
}

// SetSelection replaces the selection (nil removes it).
func (d *Document) SetSelection(sel *Selection) {
	var dirty image.Rectangle
	if d.selection != nil {
		dirty = d.selection.Bounds
	}
	if sel != nil {
		dirty = dirty.Union(sel.Bounds)
	}
	d.selection = sel
	d.Notify(ChangeSelection, dirty)
}

// URL returns the path the document was loaded from or last saved to.
func (d *Document) URL() string {
	return d.url
}

// SetURL sets the document path.
func (d *Document) SetURL(url string) {
	d.url = url
}

// Name returns a display name for the document.
func (d *Document) Name() string {
	if d.url == "" {
		return "Untitled"
	}
	return filepath.Base(d.url)
}

// Format returns the save-format hint (e.g. "png").
func (d *Document) Format() string {
	return d.format
}

// SetFormat sets the save-format hint.
func (d *Document) SetFormat(format string) {
	d.format = format
}

// Meta returns a copy of the document metadata.
func (d *Document) Meta() Meta {
	return d.meta.Clone()
}

// SetMeta replaces the document metadata.
func (d *Document) SetMeta(m Meta) {
	d.meta = m.Clone()
	d.Notify(ChangeMeta, image.Rectangle{})
}

func normalize(img *image.NRGBA) *image.NRGBA {
	if img.Rect.Min == (image.Point{}) {
		return img
	}
	out := image.NewNRGBA(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))
	Copy(out, out.Rect, img, img.Rect.Min)
	return out
}
