package app

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/dshills/paintstorm/internal/engine/command"
	"github.com/dshills/paintstorm/internal/engine/effect"
)

func TestDocumentManager(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writePNG(t, a, 2, 2, white)
	writePNG(t, b, 2, 2, white)

	dm := NewDocumentManager(nil)

	docA, err := dm.Open(a)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	again, err := dm.Open(a)
	if err != nil || again != docA {
		t.Error("opening the same file should return the open document")
	}
	if _, err := dm.Open(b); err != nil {
		t.Fatal(err)
	}

	docs := dm.Documents()
	if len(docs) != 2 || docs[0].Path != a || docs[1].Name != "b.png" {
		t.Errorf("Documents() = %v", docs)
	}

	cmd, err := command.NewInvert(docA.Engine, effect.RGB, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := docA.Engine.Execute(cmd); err != nil {
		t.Fatal(err)
	}
	if mod := dm.Modified(); len(mod) != 1 || mod[0] != docA {
		t.Errorf("Modified() = %v", mod)
	}

	if err := dm.Close(a, false); !errors.Is(err, ErrUnsavedChanges) {
		t.Errorf("Close(unsaved) = %v, want ErrUnsavedChanges", err)
	}
	if err := dm.Close(a, true); err != nil {
		t.Errorf("Close(force) = %v", err)
	}
	if err := dm.Close(a, true); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Close(closed) = %v, want ErrDocumentNotFound", err)
	}
	if dm.Count() != 1 {
		t.Errorf("Count() = %d, want 1", dm.Count())
	}
}

func TestDocument_Revert(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writePNG(t, path, 2, 2, white)

	dm := NewDocumentManager(nil)
	doc, err := dm.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	cmd, _ := command.NewInvert(doc.Engine, effect.RGB, false)
	if err := doc.Engine.Execute(cmd); err != nil {
		t.Fatal(err)
	}
	if err := doc.Engine.SaveAs(filepath.Join(dir, "elsewhere.png"), ""); err != nil {
		t.Fatal(err)
	}

	if err := doc.Revert(); err != nil {
		t.Fatalf("Revert failed: %v", err)
	}
	if got := doc.Engine.Document().At(0, 0); got != white {
		t.Errorf("pixel = %v, want the input's white", got)
	}
	if doc.Engine.Document().URL() != path || doc.Engine.CanUndo() {
		t.Error("revert should reload the input path with empty history")
	}
}

func TestDocumentManager_OpenMissing(t *testing.T) {
	dm := NewDocumentManager(nil)
	if _, err := dm.Open(filepath.Join(t.TempDir(), "none.png")); err == nil {
		t.Error("expected an error")
	}
	if dm.Count() != 0 {
		t.Error("failed opens should not register documents")
	}
}
