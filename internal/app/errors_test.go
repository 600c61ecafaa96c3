package app

import (
	"errors"
	"io/fs"
	"strings"
	"sync"
	"testing"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{"nil error", nil, ""},
		{"op only", &OperationError{Op: "save"}, "save"},
		{"op and target", &OperationError{Op: "open", Target: "/p/a.png"}, "open /p/a.png"},
		{
			name:     "op, target, and context",
			err:      &OperationError{Op: "open", Target: "/p/a.png", Context: "watch"},
			expected: "open /p/a.png (watch)",
		},
		{
			name:     "full error chain",
			err:      &OperationError{Op: "script", Target: "/p/a.png", Context: "rerun", Err: errors.New("boom")},
			expected: "script /p/a.png (rerun): boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestOperationError_WithContext_Nil(t *testing.T) {
	var err *OperationError
	if err.WithContext("x") != nil {
		t.Error("WithContext on nil should return nil")
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	err := NewOperationError("open", "/a.png", fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should see the wrapped error")
	}
	var nilErr *OperationError
	if nilErr.Unwrap() != nil {
		t.Error("Unwrap on nil should return nil")
	}
}

func TestComponentError_Error(t *testing.T) {
	inner := errors.New("bad file")
	tests := []struct {
		err      *ComponentError
		expected string
	}{
		{nil, ""},
		{&ComponentError{Component: "palette"}, "palette"},
		{&ComponentError{Component: "palette", Action: "load"}, "palette: load"},
		{&ComponentError{Component: "palette", Err: inner}, "palette: bad file"},
		{NewComponentError("palette", "load", inner), "palette: load: bad file"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.expected {
			t.Errorf("Error() = %q, want %q", got, tt.expected)
		}
	}

	if !errors.Is(NewComponentError("config", "load", inner), inner) {
		t.Error("errors.Is should see the wrapped error")
	}
}

func TestRecoveredPanicError_Error(t *testing.T) {
	if got := NewRecoveredPanicError("oops", "").Error(); got != "panic: oops" {
		t.Errorf("Error() = %q", got)
	}
	if got := NewRecoveredPanicError(42, "stack").Error(); got != "panic: 42\nstack" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorList(t *testing.T) {
	list := NewErrorList()
	if list.HasErrors() || list.AsError() != nil || list.First() != nil {
		t.Error("empty list should report no errors")
	}
	if list.Error() != "" {
		t.Errorf("Error() = %q, want empty", list.Error())
	}

	first := NewOperationError("open", "/a.png", fs.ErrNotExist)
	list.Add(first)
	list.Add(nil)
	if list.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", list.Len())
	}
	if list.Error() != first.Error() {
		t.Errorf("Error() = %q", list.Error())
	}

	list.Add(errors.New("second"))
	if !strings.HasPrefix(list.Error(), "2 errors: first:") {
		t.Errorf("Error() = %q", list.Error())
	}
	if list.First() != first {
		t.Error("First() should return the first error")
	}

	err := list.AsError()
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should search every collected error")
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Target != "/a.png" {
		t.Error("errors.As should find the OperationError")
	}

	errs := list.Errors()
	errs[0] = nil
	if list.First() == nil {
		t.Error("Errors() should return a copy")
	}
}

func TestErrorList_Concurrent(t *testing.T) {
	list := NewErrorList()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list.Add(errors.New("x"))
		}()
	}
	wg.Wait()

	if list.Len() != 50 {
		t.Errorf("Len() = %d, want 50", list.Len())
	}
}
