// Package document holds the image being edited: its pixel buffer, the
// optional floating selection, the file it came from and the metadata
// that travels with it.
//
// A Document is mutated only by history commands. Every setter emits a
// Change to subscribed observers after the mutation so views can repaint
// the affected region:
//
//	doc := document.New(image.NewNRGBA(image.Rect(0, 0, 20, 20)))
//	sub := doc.Subscribe(func(c document.Change) {
//	    view.Invalidate(c.Rect)
//	})
//	defer sub.Unsubscribe()
//
// Documents are not safe for concurrent use. The owning engine serializes
// all access on a single goroutine.
package document
