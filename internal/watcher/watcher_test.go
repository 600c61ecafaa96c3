package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOp(t *testing.T) {
	tests := []struct {
		op      Op
		want    string
		changed bool
	}{
		{OpCreate, "CREATE", true},
		{OpWrite, "WRITE", true},
		{OpRemove, "REMOVE", false},
		{OpRename, "RENAME", false},
		{OpRemove | OpCreate, "UNKNOWN", true},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%b.String() = %q, want %q", tt.op, got, tt.want)
		}
		if got := tt.op.Changed(); got != tt.changed {
			t.Errorf("%b.Changed() = %v, want %v", tt.op, got, tt.changed)
		}
	}
}

func TestFileWatcher_WatchUnwatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")

	w, err := NewFileWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(a); err != nil {
		t.Fatalf("Watch(a) error = %v", err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatalf("Watch(b) error = %v", err)
	}
	if err := w.Watch(a); err != nil {
		t.Errorf("repeated Watch error = %v", err)
	}
	if got := len(w.WatchedFiles()); got != 2 {
		t.Errorf("WatchedFiles() = %d, want 2", got)
	}

	if err := w.Unwatch(a); err != nil {
		t.Errorf("Unwatch(a) error = %v", err)
	}
	if w.IsWatching(a) || !w.IsWatching(b) {
		t.Error("only b should be watched")
	}
	if err := w.Unwatch(a); !errors.Is(err, ErrNotWatching) {
		t.Errorf("Unwatch twice = %v, want ErrNotWatching", err)
	}
}

func TestFileWatcher_MissingDir(t *testing.T) {
	w, err := NewFileWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(filepath.Join(t.TempDir(), "nope", "a.png")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestFileWatcher_Closed(t *testing.T) {
	w, err := NewFileWatcher()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(filepath.Join(t.TempDir(), "a.png")); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Watch after Close = %v, want ErrWatcherClosed", err)
	}
}

func TestWatcher_ReportsWatchedFileOnly(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.png")
	other := filepath.Join(dir, "other.png")
	if err := os.WriteFile(target, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(target); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev := receive(t, w.Events(), 2*time.Second)
	if ev.Path != target {
		t.Errorf("Path = %q, want %q", ev.Path, target)
	}
	if !ev.Op.Changed() {
		t.Errorf("Op = %v, want a content change", ev.Op)
	}
}

func TestWatcher_RenameOver(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.png")
	if err := os.WriteFile(target, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(WithDebounce(0))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(target); err != nil {
		t.Fatal(err)
	}

	tmp := filepath.Join(dir, ".target.tmp")
	if err := os.WriteFile(tmp, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, target); err != nil {
		t.Fatal(err)
	}

	ev := receive(t, w.Events(), 2*time.Second)
	if ev.Path != target || !ev.Op.Has(OpCreate) {
		t.Errorf("event = %+v, want CREATE on target", ev)
	}
}
