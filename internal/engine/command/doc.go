// Package command implements the undoable document edits: effects,
// resizes and transforms, selection operations, and metadata changes.
//
// Each command captures the state it needs to reverse itself the first
// time it executes and restores that exact state on Unexecute. Effects are
// frequently not invertible (grayscale, color to alpha), so the original
// pixels are always cached rather than recomputed.
//
// Execute and Unexecute may be called more than once in a row; only the
// first call of each has an effect. Size is meaningful before the first
// Execute so callers can refuse a command too large to keep for undo.
//
// Creating a rectangular selection lifts its pixels off the document, and
// deselecting stamps them back wherever the selection ended up. A new
// selection stamps the previous one first.
//
// Constructors validate their preconditions against the current document
// and return an error before anything is applied. A command that cannot
// be constructed is never executed or recorded.
package command
