package engine

import (
	"errors"
	"fmt"
)

// Errors returned by engine operations.
var (
	// ErrIrreversible indicates a command too large to be kept for undo.
	// Nothing is applied.
	ErrIrreversible = errors.New("command exceeds the undo size limit")

	// ErrNoPath indicates the document has no file to save to or reload from.
	ErrNoPath = errors.New("document has no file path")

	// ErrUnsavedChanges indicates an operation that would discard edits.
	ErrUnsavedChanges = errors.New("document has unsaved changes")
)

// OperationError describes a failed document I/O operation.
type OperationError struct {
	Op     string // "open", "save", "reload"
	Target string // file path
	Err    error
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func opError(op, target string, err error) error {
	return &OperationError{Op: op, Target: target, Err: err}
}
