// Package engine provides the document editing engine for paintstorm.
//
// The engine package is the facade that binds a document, its undo
// history and the collaborators commands need into one value. An *Engine
// is the history.Environment passed to every command.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - document: pixel buffer, selection, metadata and change notifications
//   - effect: pure pixel transforms (invert, grayscale, color to alpha, scaling)
//   - history: Command interface, Macro, bounded undo/redo History
//   - command: concrete undoable edits and crop macros
//   - imageio: loading and saving images at the codec boundary
//
// # Execution Model
//
// A user action builds a command, which the engine executes once and then
// records:
//
//	e := engine.New()
//	cmd, err := command.NewInvert(e, effect.RGB, false)
//	if err != nil {
//		return err
//	}
//	if err := e.Execute(cmd); err != nil {
//		return err
//	}
//	e.Undo() // pixels restored
//	e.Redo() // inverted again
//
// Commands capture what they need to reverse themselves on first
// execution. Undo never recomputes an inverse from the current pixels.
//
// # Memory Ceiling
//
// The history keeps the summed size of retained commands under a byte
// ceiling, evicting the oldest steps first. A single command larger than
// the ceiling is rejected with ErrIrreversible before it runs:
//
//	e := engine.New(engine.WithMaxUndoBytes(32 << 20))
//
// # Saved State
//
// IsModified is derived from the history: the document is unmodified when
// the undo cursor sits where it was at the last successful save or open.
// If eviction drops the step the saved state depended on, only a new save
// clears the flag.
//
// # Thread Safety
//
// An Engine is single-threaded. Construct one per document and drive it
// from one goroutine.
package engine
