package app

import (
	"path/filepath"
	"sync"

	"github.com/dshills/paintstorm/internal/engine"
)

// Document is an input file with the engine editing it.
type Document struct {
	// Path is the absolute path of the input file. It does not follow
	// the engine when a script saves elsewhere.
	Path string

	// Name is the display name.
	Name string

	// Engine holds the image and its undo history.
	Engine *engine.Engine
}

// IsModified returns true if the document has unsaved changes.
func (d *Document) IsModified() bool {
	return d.Engine.IsModified()
}

// Revert reloads the input file, discarding edits and history.
func (d *Document) Revert() error {
	return d.Engine.Open(d.Path)
}

// DocumentManager manages all open documents. Each document's engine is
// single-threaded; the manager itself is safe for concurrent use.
type DocumentManager struct {
	mu        sync.RWMutex
	documents map[string]*Document // path -> document
	order     []string             // tracks open order
	newEngine func(path string) *engine.Engine
}

// NewDocumentManager creates a document manager. newEngine builds the
// engine for a file before it is opened; nil uses engine.New.
func NewDocumentManager(newEngine func(path string) *engine.Engine) *DocumentManager {
	if newEngine == nil {
		newEngine = func(string) *engine.Engine { return engine.New() }
	}
	return &DocumentManager{
		documents: make(map[string]*Document),
		newEngine: newEngine,
	}
}

// Open opens a document from a file.
// Returns existing document if already open.
func (dm *DocumentManager) Open(path string) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if doc, ok := dm.Get(absPath); ok {
		return doc, nil
	}

	// Decode outside the lock so different files load in parallel.
	eng := dm.newEngine(absPath)
	if err := eng.Open(absPath); err != nil {
		return nil, err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if doc, exists := dm.documents[absPath]; exists {
		return doc, nil
	}
	doc := &Document{
		Path:   absPath,
		Name:   filepath.Base(absPath),
		Engine: eng,
	}
	dm.documents[absPath] = doc
	dm.order = append(dm.order, absPath)
	return doc, nil
}

// Get returns an open document by path.
func (dm *DocumentManager) Get(path string) (*Document, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	dm.mu.RLock()
	defer dm.mu.RUnlock()
	doc, ok := dm.documents[absPath]
	return doc, ok
}

// Close closes a document by path. Returns ErrUnsavedChanges if the
// document has unsaved changes and force is false.
func (dm *DocumentManager) Close(path string, force bool) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, exists := dm.documents[absPath]
	if !exists {
		return ErrDocumentNotFound
	}
	if doc.IsModified() && !force {
		return ErrUnsavedChanges
	}

	delete(dm.documents, absPath)
	for i, p := range dm.order {
		if p == absPath {
			dm.order = append(dm.order[:i], dm.order[i+1:]...)
			break
		}
	}
	return nil
}

// Documents returns all open documents in open order.
func (dm *DocumentManager) Documents() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	docs := make([]*Document, 0, len(dm.order))
	for _, p := range dm.order {
		docs = append(docs, dm.documents[p])
	}
	return docs
}

// Modified returns the documents with unsaved changes.
func (dm *DocumentManager) Modified() []*Document {
	var out []*Document
	for _, doc := range dm.Documents() {
		if doc.IsModified() {
			out = append(out, doc)
		}
	}
	return out
}

// Count returns the number of open documents.
func (dm *DocumentManager) Count() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.documents)
}
