package engine

import (
	"github.com/dshills/paintstorm/internal/engine/document"
	"github.com/dshills/paintstorm/internal/engine/history"
	"github.com/dshills/paintstorm/internal/engine/imageio"
)

// Default configuration values.
const (
	DefaultWidth  = 400
	DefaultHeight = 300
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithDocument binds an existing document instead of a blank one.
func WithDocument(doc *document.Document) Option {
	return func(e *Engine) {
		if doc != nil {
			e.doc = doc
		}
	}
}

// WithMaxUndoBytes sets the byte ceiling of the undo history. Zero means
// unlimited.
func WithMaxUndoBytes(max int64) Option {
	return func(e *Engine) {
		if max >= 0 {
			e.limits.MaxBytes = max
		}
	}
}

// WithMaxUndoSteps sets the maximum number of undo steps. Zero means
// unlimited.
func WithMaxUndoSteps(max int) Option {
	return func(e *Engine) {
		if max >= 0 {
			e.limits.MaxSteps = max
		}
	}
}

// WithView binds a view that is invalidated on every document change.
func WithView(v history.View) Option {
	return func(e *Engine) {
		e.view = v
	}
}

// WithLogger sets the logger used for history and I/O events.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSaveOptions sets the encoder options used by Save and SaveAs.
func WithSaveOptions(opts imageio.Options) Option {
	return func(e *Engine) {
		e.saveOptions = opts
	}
}
