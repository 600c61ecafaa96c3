package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/paintstorm/internal/config"
	"github.com/dshills/paintstorm/internal/engine/document"
	"github.com/dshills/paintstorm/internal/engine/imageio"
	"github.com/dshills/paintstorm/internal/palette"
	"github.com/dshills/paintstorm/internal/script"
)

var (
	white = color.NRGBA{255, 255, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	if err := imageio.Save(path, img, imageio.FormatPNG, document.Meta{}, imageio.Options{}); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func pixelAt(t *testing.T, path string, x, y int) color.NRGBA {
	t.Helper()
	res, err := imageio.Load(path)
	if err != nil {
		t.Fatalf("loading %s: %v", path, err)
	}
	return res.Image.NRGBAAt(x, y)
}

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "edit.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestApp(t *testing.T, opts Options) *Application {
	t.Helper()
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(t.TempDir(), "config.toml")
	}
	if opts.LogOutput == nil {
		opts.LogOutput = &bytes.Buffer{}
	}
	if opts.Stdout == nil {
		opts.Stdout = &bytes.Buffer{}
	}
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

const invertScript = "name: invert\nsteps:\n  - op: invert\n"

func TestNew_Defaults(t *testing.T) {
	a := newTestApp(t, Options{LogLevel: "debug"})

	if a.Logger().Level() != LogLevelDebug {
		t.Errorf("log level = %v, want DEBUG", a.Logger().Level())
	}
	if a.Palette().Name != palette.DefaultName {
		t.Errorf("palette = %q, want the default", a.Palette().Name)
	}
	if a.Settings().History.MaxSteps == 0 {
		t.Error("settings defaults not applied")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[image]\njpegQuality = 500\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(Options{ConfigPath: path})
	var ce *ComponentError
	if !errors.As(err, &ce) || ce.Component != "config" {
		t.Fatalf("err = %v, want a config ComponentError", err)
	}
	if !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("err = %v, want ErrValidationFailed", err)
	}
}

func TestNew_BadPaletteFallsBack(t *testing.T) {
	dir := t.TempDir()
	palPath := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(palPath, []byte("colors: [::"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[palette]\npath = \""+filepath.ToSlash(palPath)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	a := newTestApp(t, Options{ConfigPath: cfgPath, LogOutput: &logs})
	if a.Palette().Name != palette.DefaultName {
		t.Errorf("palette = %q, want the default", a.Palette().Name)
	}
	if !strings.Contains(logs.String(), "using default palette") {
		t.Errorf("expected a warning, got %q", logs.String())
	}
}

func TestRunBatch_OutputDir(t *testing.T) {
	dir := t.TempDir()
	var inputs []string
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		p := filepath.Join(dir, name)
		writePNG(t, p, 3, 3, white)
		inputs = append(inputs, p)
	}
	outDir := filepath.Join(dir, "out")

	a := newTestApp(t, Options{Output: outDir, Files: inputs})
	s, err := script.Parse([]byte(invertScript))
	if err != nil {
		t.Fatal(err)
	}

	if err := a.RunBatch(context.Background(), s, append(inputs, inputs[0])); err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	for _, name := range []string{"a.png", "b.png", "c.png"} {
		if got := pixelAt(t, filepath.Join(outDir, name), 1, 1); got != black {
			t.Errorf("%s pixel = %v, want black", name, got)
		}
		if got := pixelAt(t, filepath.Join(dir, name), 1, 1); got != white {
			t.Errorf("input %s was modified", name)
		}
	}
	if got := a.Documents().Count(); got != 3 {
		t.Errorf("open documents = %d, want 3 (duplicates collapsed)", got)
	}
	if got := a.Settings().Effects.LastUsed; got != "invert" {
		t.Errorf("Effects.LastUsed = %q", got)
	}
	if got := len(a.Settings().Recent.Files); got != 3 {
		t.Errorf("recent files = %d, want 3", got)
	}
}

func TestRunBatch_FormatOverride(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	writePNG(t, in, 2, 2, white)
	outDir := filepath.Join(dir, "out")

	a := newTestApp(t, Options{Output: outDir, Format: "BMP", Files: []string{in}})
	s, _ := script.Parse([]byte(invertScript))
	if err := a.RunBatch(context.Background(), s, []string{in}); err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "a.bmp")); err != nil {
		t.Errorf("expected a.bmp: %v", err)
	}
}

func TestRunBatch_SingleOutputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	writePNG(t, in, 2, 2, white)
	out := filepath.Join(dir, "result.png")

	a := newTestApp(t, Options{Output: out, Files: []string{in}})
	s, _ := script.Parse([]byte(invertScript))
	if err := a.RunBatch(context.Background(), s, []string{in}); err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if got := pixelAt(t, out, 0, 0); got != black {
		t.Errorf("pixel = %v, want black", got)
	}
}

func TestRunBatch_CollectsFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writePNG(t, good, 2, 2, white)
	missing := filepath.Join(dir, "missing.png")

	a := newTestApp(t, Options{Files: []string{good, missing}})
	s, _ := script.Parse([]byte(invertScript + "  - op: save\n"))

	err := a.RunBatch(context.Background(), s, []string{missing, good})
	var list *ErrorList
	if !errors.As(err, &list) || list.Len() != 1 {
		t.Fatalf("err = %v, want one collected failure", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != "open" {
		t.Errorf("err = %v, want an open OperationError", err)
	}

	if got := pixelAt(t, good, 0, 0); got != black {
		t.Errorf("good file pixel = %v, want black (saved in place)", got)
	}
}

func TestRunBatch_OutputConflict(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(t, Options{Output: filepath.Join(dir, "one.png")})
	s, _ := script.Parse([]byte(invertScript))

	err := a.RunBatch(context.Background(), s, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")})
	if !errors.Is(err, ErrOutputConflict) {
		t.Errorf("err = %v, want ErrOutputConflict", err)
	}
}

func TestRunBatch_Cancelled(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	writePNG(t, in, 2, 2, white)

	a := newTestApp(t, Options{})
	s, _ := script.Parse([]byte(invertScript + "  - op: save\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.RunBatch(ctx, s, []string{in}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if got := pixelAt(t, in, 0, 0); got != white {
		t.Error("nothing should be processed after cancellation")
	}
}

func TestRun_ScriptWithoutFiles(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(t, Options{ScriptPath: writeScript(t, dir, invertScript)})

	if err := a.Run(context.Background()); !errors.Is(err, ErrNoInputs) {
		t.Errorf("err = %v, want ErrNoInputs", err)
	}
}

func TestRun_BadScript(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	writePNG(t, in, 2, 2, white)

	a := newTestApp(t, Options{
		ScriptPath: writeScript(t, dir, "steps:\n  - op: blur\n"),
		Files:      []string{in},
	})
	err := a.Run(context.Background())
	if !errors.Is(err, script.ErrUnknownOp) {
		t.Errorf("err = %v, want ErrUnknownOp", err)
	}
}

func TestRun_RememberSavesSettings(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	writePNG(t, in, 2, 2, white)
	cfgPath := filepath.Join(dir, "cfg", "config.toml")

	a := newTestApp(t, Options{
		ConfigPath: cfgPath,
		ScriptPath: writeScript(t, dir, "steps:\n  - op: grayscale\n"),
		Output:     filepath.Join(dir, "out"),
		Remember:   true,
		Files:      []string{in},
	})
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	s, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}
	if len(s.Recent.Files) != 1 || s.Recent.Files[0] != in {
		t.Errorf("Recent.Files = %v, want [%s]", s.Recent.Files, in)
	}
	if s.Effects.LastUsed != "grayscale" {
		t.Errorf("Effects.LastUsed = %q", s.Effects.LastUsed)
	}
}

func TestRun_ReportsUnsavedEdits(t *testing.T) {
	tests := []struct {
		name   string
		script string
		warn   bool
	}{
		{"not saved", invertScript, true},
		{"saved", invertScript + "  - op: save\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "a.png")
			writePNG(t, in, 2, 2, white)

			var logs bytes.Buffer
			a := newTestApp(t, Options{
				ScriptPath: writeScript(t, dir, tt.script),
				LogOutput:  &logs,
				Files:      []string{in},
			})
			if err := a.Run(context.Background()); err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			if got := strings.Contains(logs.String(), "edits were not saved"); got != tt.warn {
				t.Errorf("unsaved warning logged = %v, want %v\n%s", got, tt.warn, logs.String())
			}
			if got := a.Documents().Count(); got != 0 {
				t.Errorf("open documents after Run = %d, want 0", got)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	writePNG(t, in, 4, 3, white)

	var out bytes.Buffer
	a := newTestApp(t, Options{Stdout: &out, Files: []string{in}})
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if want := in + ": 4x3 png\n"; out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}

	err := a.Describe(&out, []string{filepath.Join(dir, "none.png")})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestExportPalette(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(t, Options{})

	gpl := filepath.Join(dir, "colors.gpl")
	if err := a.ExportPalette(gpl); err != nil {
		t.Fatalf("ExportPalette(gpl) failed: %v", err)
	}
	f, err := os.Open(gpl)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := palette.ReadGIMP(f)
	if err != nil {
		t.Fatalf("ReadGIMP failed: %v", err)
	}
	if got.Count() != a.Palette().Count() {
		t.Errorf("Count = %d, want %d", got.Count(), a.Palette().Count())
	}

	yml := filepath.Join(dir, "colors.yaml")
	if err := a.ExportPalette(yml); err != nil {
		t.Fatalf("ExportPalette(yaml) failed: %v", err)
	}
	loaded, err := palette.Load(yml)
	if err != nil {
		t.Fatalf("palette.Load failed: %v", err)
	}
	if loaded.Count() != a.Palette().Count() {
		t.Errorf("Count = %d, want %d", loaded.Count(), a.Palette().Count())
	}

	if err := a.ExportPalette(filepath.Join(dir, "nope", "x.gpl")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestWatch_RerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	writePNG(t, in, 2, 2, white)
	outDir := filepath.Join(dir, "out")
	out := filepath.Join(outDir, "a.png")

	a := newTestApp(t, Options{Output: outDir, Files: []string{in}})
	s, _ := script.Parse([]byte(invertScript))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, s, []string{in}) }()

	// The watch is registered asynchronously; keep rewriting the input
	// until the output shows up.
	deadline := time.Now().Add(5 * time.Second)
	for {
		writePNG(t, in, 2, 2, black)
		time.Sleep(200 * time.Millisecond)
		if _, err := os.Stat(out); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("output was not written after the input changed")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
	if got := pixelAt(t, out, 0, 0); got != white {
		t.Errorf("output pixel = %v, want white (inverted black input)", got)
	}
}
