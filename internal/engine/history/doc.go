// Package history provides undo/redo for image documents.
//
// The history system uses the Command pattern to encapsulate document
// edits so they can be executed, undone, and redone. Key concepts:
//
// # Commands
//
// A Command is an atomic, reversible edit. It captures whatever prior state
// it needs to reverse itself when it is constructed or first executed, never
// lazily during undo:
//   - Execute applies the edit through the Environment
//   - Unexecute restores the exact pre-Execute state
//   - Size reports the bytes of cached state, used for memory accounting
//
// # Macros
//
// A Macro groups several commands into a single undo step. Children execute
// in order and unexecute in reverse order.
//
// # History
//
// The History type keeps executed commands and a cursor separating the undo
// tail from the redo tail:
//
//	h := history.New(history.Limits{MaxBytes: 64 << 20})
//
//	// Execute and record a command
//	h.Execute(cmd, env)
//
//	// Undo/redo
//	h.Undo(env)
//	h.Redo(env)
//
// Pushing a command after an undo discards the redo tail. When the retained
// commands exceed the configured ceiling the oldest are evicted.
//
// # Saved Position
//
// DocumentSaved records the cursor at the last successful save. IsModified
// reports whether the cursor has moved away from it. Once the saved entry is
// evicted the document can only become unmodified through another save.
//
// # Command Grouping
//
// Multiple commands can be grouped as a single undo unit:
//
//	h.BeginGroup("Crop")
//	// ... multiple edits ...
//	h.EndGroup()
//
// # Threading
//
// A History is owned by one document and used from a single goroutine.
// It performs no locking.
package history
