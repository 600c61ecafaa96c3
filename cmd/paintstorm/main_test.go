package main

import (
	"slices"
	"testing"
)

func TestParseFlags(t *testing.T) {
	opts, _, ok := parseFlags([]string{"-s", "edit.yaml", "-o", "out", "-log-level", "debug", "a.png", "b.png"})
	if !ok {
		t.Fatal("parseFlags rejected valid flags")
	}
	if opts.ScriptPath != "edit.yaml" || opts.Output != "out" || opts.LogLevel != "debug" {
		t.Errorf("opts = %+v", opts)
	}
	if !slices.Equal(opts.Files, []string{"a.png", "b.png"}) {
		t.Errorf("Files = %v", opts.Files)
	}
}

func TestParseFlags_Rejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"bad level", []string{"-log-level", "loud"}, 2},
		{"watch without script", []string{"-watch", "a.png"}, 2},
		{"unknown flag", []string{"-nope"}, 2},
		{"help", []string{"-h"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, code, ok := parseFlags(tt.args)
			if ok {
				t.Fatal("expected parseFlags to stop")
			}
			if code != tt.code {
				t.Errorf("code = %d, want %d", code, tt.code)
			}
		})
	}
}
