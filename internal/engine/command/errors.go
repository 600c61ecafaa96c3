package command

import (
	"errors"

	"github.com/dshills/paintstorm/internal/engine/effect"
)

// Errors returned by command constructors and execution.
var (
	// ErrNoSelection indicates the command needs a selection and there is none.
	ErrNoSelection = errors.New("no selection")

	// ErrNotTextSelection indicates the selection is not a text selection.
	ErrNotTextSelection = errors.New("not a text selection")

	// ErrEmptySelection indicates a selection rectangle with no area inside the image.
	ErrEmptySelection = errors.New("empty selection")

	// ErrInvalidSize indicates a non-positive target size.
	ErrInvalidSize = effect.ErrInvalidSize

	// ErrFinalized indicates a move command was changed after Finalize.
	ErrFinalized = errors.New("command already finalized")

	// ErrNoWindow indicates the environment has no window to add commands to.
	ErrNoWindow = errors.New("no window")
)
