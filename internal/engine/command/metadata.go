package command

import (
	"github.com/dshills/paintstorm/internal/engine/document"
	"github.com/dshills/paintstorm/internal/engine/history"
)

// MetadataCommand replaces the document metadata.
type MetadataCommand struct {
	next     document.Meta
	previous document.Meta
	captured bool
}

// NewMetadata creates a command setting the document metadata to m.
func NewMetadata(m document.Meta) *MetadataCommand {
	return &MetadataCommand{next: m.Clone()}
}

// NewSetText creates a command setting a single text metadata entry. An
// empty value removes the key.
func NewSetText(env history.Environment, key, value string) *MetadataCommand {
	m := env.Document().Meta().Clone()
	if m.Text == nil {
		m.Text = make(map[string]string)
	}
	if value == "" {
		delete(m.Text, key)
	} else {
		m.Text[key] = value
	}
	return NewMetadata(m)
}

// NewSetDPI creates a command setting the physical resolution in dots per
// inch.
func NewSetDPI(env history.Environment, dpiX, dpiY int) *MetadataCommand {
	m := env.Document().Meta().Clone()
	m.DotsPerMeterX = dotsPerMeter(dpiX)
	m.DotsPerMeterY = dotsPerMeter(dpiY)
	return NewMetadata(m)
}

func dotsPerMeter(dpi int) int {
	if dpi <= 0 {
		return 0
	}
	return int(float64(dpi)*39.3701 + 0.5)
}

// Execute installs the new metadata.
func (c *MetadataCommand) Execute(env history.Environment) error {
	doc := env.Document()
	if !c.captured {
		c.previous = doc.Meta().Clone()
		c.captured = true
	}
	doc.SetMeta(c.next.Clone())
	return nil
}

// Unexecute restores the previous metadata.
func (c *MetadataCommand) Unexecute(env history.Environment) error {
	if !c.captured {
		return nil
	}
	env.Document().SetMeta(c.previous.Clone())
	return nil
}

// Name returns the command name.
func (c *MetadataCommand) Name() string {
	return "Set Image Metadata"
}

// Size returns a rough byte cost of both metadata values.
func (c *MetadataCommand) Size() int64 {
	return metaSize(c.next) + metaSize(c.previous)
}

func metaSize(m document.Meta) int64 {
	n := int64(32)
	for k, v := range m.Text {
		n += int64(len(k) + len(v))
	}
	return n
}
