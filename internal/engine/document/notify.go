package document

import (
	"image"

	"github.com/google/uuid"
)

// ChangeKind identifies what part of a document changed.
type ChangeKind int

const (
	// ChangePixels indicates pixel data inside Rect changed.
	ChangePixels ChangeKind = iota

	// ChangeSelection indicates the selection was created, moved or removed.
	ChangeSelection

	// ChangeSize indicates the image dimensions changed.
	ChangeSize

	// ChangeMeta indicates metadata changed. Rect is empty.
	ChangeMeta

	// ChangeReplaced indicates the whole image was swapped out.
	ChangeReplaced
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case ChangePixels:
		return "pixels"
	case ChangeSelection:
		return "selection"
	case ChangeSize:
		return "size"
	case ChangeMeta:
		return "meta"
	case ChangeReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// rank orders kinds for merging suspended changes: a merged change reports
// the kind that requires the widest repaint.
func (k ChangeKind) rank() int {
	switch k {
	case ChangeReplaced:
		return 4
	case ChangeSize:
		return 3
	case ChangeSelection:
		return 2
	case ChangePixels:
		return 1
	default:
		return 0
	}
}

// Change describes a document mutation.
type Change struct {
	// DocumentID identifies the document that changed.
	DocumentID uuid.UUID

	// Kind is the type of change.
	Kind ChangeKind

	// Rect is the region views need to repaint, in document coordinates.
	Rect image.Rectangle
}

// Observer is called after a document mutation.
type Observer func(change Change)

// Subscription is a handle for removing an observer.
type Subscription struct {
	id  uint64
	doc *Document
}

// Unsubscribe removes the observer. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.doc == nil {
		return
	}
	s.doc.unsubscribe(s.id)
	s.doc = nil
}

type observerEntry struct {
	id       uint64
	observer Observer
}

// Subscribe registers an observer for all changes to the document.
// Observers are called in subscription order.
func (d *Document) Subscribe(observer Observer) *Subscription {
	id := d.nextObserverID
	d.nextObserverID++
	d.observers = append(d.observers, observerEntry{id: id, observer: observer})
	return &Subscription{id: id, doc: d}
}

func (d *Document) unsubscribe(id uint64) {
	for i, e := range d.observers {
		if e.id == id {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			return
		}
	}
}

// Notify emits a change of the given kind covering rect.
// While notifications are suspended the change is merged into a single
// pending change delivered by Resume.
func (d *Document) Notify(kind ChangeKind, rect image.Rectangle) {
	change := Change{DocumentID: d.id, Kind: kind, Rect: rect}
	if d.suspended > 0 {
		if d.pending == nil {
			d.pending = &change
		} else {
			d.pending.Rect = d.pending.Rect.Union(rect)
			if kind.rank() > d.pending.Kind.rank() {
				d.pending.Kind = kind
			}
		}
		return
	}
	d.deliver(change)
}

// Suspend defers change delivery until the matching Resume call.
// Calls nest.
func (d *Document) Suspend() {
	d.suspended++
}

// Resume ends a Suspend. When the outermost Suspend ends, the merged pending
// change (if any) is delivered.
func (d *Document) Resume() {
	if d.suspended == 0 {
		return
	}
	d.suspended--
	if d.suspended == 0 && d.pending != nil {
		change := *d.pending
		d.pending = nil
		d.deliver(change)
	}
}

func (d *Document) deliver(change Change) {
	// Copy so observers may unsubscribe during delivery.
	observers := make([]observerEntry, len(d.observers))
	copy(observers, d.observers)
	for _, e := range observers {
		e.observer(change)
	}
}
