// Package app coordinates the paintstorm command line: settings, palette,
// one engine per input file, batch script runs and the watch loop.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/paintstorm/internal/config"
	"github.com/dshills/paintstorm/internal/engine"
	"github.com/dshills/paintstorm/internal/engine/imageio"
	"github.com/dshills/paintstorm/internal/palette"
	"github.com/dshills/paintstorm/internal/script"
	"github.com/dshills/paintstorm/internal/watcher"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the settings file. Empty uses config.DefaultPath().
	ConfigPath string

	// LogLevel overrides logging.level when set.
	LogLevel string

	// ScriptPath is the edit script applied to every file.
	ScriptPath string

	// Output is the output file for a single input, or a directory.
	// Empty leaves saving to the script.
	Output string

	// Format overrides the output format inferred from the extension.
	Format string

	// Watch re-runs the script whenever an input file changes.
	Watch bool

	// PaletteExport writes the palette to this file (.gpl or .yaml).
	PaletteExport string

	// Remember records processed files and the last effect in the
	// settings file.
	Remember bool

	// Files are the input images.
	Files []string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// Stdout receives reports. Defaults to os.Stdout.
	Stdout io.Writer
}

// Application is the central coordinator for all paintstorm components.
type Application struct {
	opts Options

	settingsPath string
	settings     *config.Settings
	settingsMu   sync.Mutex

	logger    *Logger
	palette   *palette.Collection
	documents *DocumentManager
}

// New loads settings and the palette and returns a ready application.
func New(opts Options) (*Application, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	app := &Application{
		opts:         opts,
		settingsPath: opts.ConfigPath,
	}
	if app.settingsPath == "" {
		app.settingsPath = config.DefaultPath()
	}

	settings, err := config.Load(app.settingsPath)
	if err != nil {
		return nil, NewComponentError("config", "load", err)
	}
	app.settings = settings

	level := settings.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logCfg := DefaultLoggerConfig()
	logCfg.Level = ParseLogLevel(level)
	logCfg.Output = opts.LogOutput
	app.logger = NewLogger(logCfg)

	pal, err := palette.LoadOrDefault(settings.Palette.Path)
	if err != nil {
		app.logger.WithComponent("palette").Warn("using default palette: %v", err)
		pal = palette.Default()
	}
	app.palette = pal

	app.documents = NewDocumentManager(app.newEngine)
	return app, nil
}

func (app *Application) newEngine(path string) *engine.Engine {
	s := app.Settings()
	return engine.New(
		engine.WithMaxUndoBytes(s.History.MaxBytes),
		engine.WithMaxUndoSteps(s.History.MaxSteps),
		engine.WithSaveOptions(s.SaveOptions()),
		engine.WithLogger(app.logger.WithField("file", filepath.Base(path))),
	)
}

// Settings returns a copy of the current settings.
func (app *Application) Settings() config.Settings {
	app.settingsMu.Lock()
	defer app.settingsMu.Unlock()
	return *app.settings
}

// Palette returns the active palette.
func (app *Application) Palette() *palette.Collection {
	return app.palette
}

// Documents returns the document manager.
func (app *Application) Documents() *DocumentManager {
	return app.documents
}

// Run performs what the options ask for: palette export, then either a
// script run (optionally followed by watching) or a description of the
// input files.
func (app *Application) Run(ctx context.Context) error {
	if app.opts.PaletteExport != "" {
		if err := app.ExportPalette(app.opts.PaletteExport); err != nil {
			return err
		}
	}

	if app.opts.ScriptPath == "" {
		if len(app.opts.Files) == 0 {
			return nil
		}
		return app.Describe(app.opts.Stdout, app.opts.Files)
	}

	if len(app.opts.Files) == 0 {
		return ErrNoInputs
	}
	s, err := script.Load(app.opts.ScriptPath)
	if err != nil {
		return NewComponentError("script", "load", err)
	}

	err = app.RunBatch(ctx, s, app.opts.Files)
	if app.opts.Watch && ctx.Err() == nil {
		if err != nil {
			app.logger.Error("%v", err)
		}
		err = app.Watch(ctx, s, app.opts.Files)
	}
	app.closeDocuments()

	if app.opts.Remember {
		if serr := app.SaveSettings(); serr != nil {
			app.logger.WithComponent("config").Warn("saving settings: %v", serr)
		}
	}
	return err
}

// RunBatch applies s to every file, processing up to script.parallelism
// files at once. Every file is attempted; failures are collected into an
// *ErrorList.
func (app *Application) RunBatch(ctx context.Context, s *script.Script, files []string) error {
	files, err := uniqueFiles(files)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNoInputs
	}
	if len(files) > 1 && app.outputIsFile() {
		return ErrOutputConflict
	}

	limit := app.Settings().Script.Parallelism
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	errs := NewErrorList()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	start := time.Now()
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			errs.Add(app.Process(gctx, s, f, false))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	app.logger.Info("processed %d files in %s (%d failed)",
		len(files), time.Since(start).Round(time.Millisecond), errs.Len())
	return errs.AsError()
}

// Process runs s on one file. With revert set the file is re-read from
// disk first, as when it changed while being watched.
func (app *Application) Process(ctx context.Context, s *script.Script, path string, revert bool) (err error) {
	log := app.logger.WithField("file", filepath.Base(path))
	defer func() {
		if r := recover(); r != nil {
			err = NewOperationError("process", path, NewRecoveredPanicError(r, string(debug.Stack())))
		}
	}()

	doc, err := app.documents.Open(path)
	if err != nil {
		return NewOperationError("open", path, err)
	}
	if revert {
		if err := doc.Revert(); err != nil {
			return NewOperationError("open", path, err)
		}
	}

	runner := script.NewRunner(doc.Engine,
		script.WithPalette(app.palette),
		script.WithInput(doc.Path),
		script.WithLogger(log),
	)
	if err := runner.Run(ctx, s); err != nil {
		return NewOperationError("script", doc.Path, err)
	}

	if out := app.outputPath(doc.Path); out != "" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return NewOperationError("save", out, err)
		}
		if err := doc.Engine.Export(out, app.opts.Format); err != nil {
			return NewOperationError("save", out, err)
		}
		log.Info("wrote %s", out)
	}

	app.settingsMu.Lock()
	app.settings.AddRecentFile(doc.Path)
	if e := runner.LastEffect(); e != "" {
		app.settings.Effects.LastUsed = e
	}
	app.settingsMu.Unlock()
	return nil
}

// Watch re-runs s on each file when it changes until ctx is done.
// Changes caused by the run itself are ignored.
func (app *Application) Watch(ctx context.Context, s *script.Script, files []string) error {
	log := app.logger.WithComponent("watcher")

	w, err := watcher.New()
	if err != nil {
		return NewComponentError("watcher", "start", err)
	}
	defer w.Close()

	for _, f := range files {
		if err := w.Watch(f); err != nil {
			return NewComponentError("watcher", "watch "+f, err)
		}
	}
	log.Info("watching %d files", len(files))

	finished := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if !ev.Op.Changed() || ev.Timestamp.Before(finished[ev.Path]) {
				continue
			}
			log.Debug("%s %s", ev.Op, ev.Path)
			if err := app.Process(ctx, s, ev.Path, true); err != nil {
				log.Error("%v", err)
			}
			finished[ev.Path] = time.Now()

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			log.Warn("%v", err)
		}
	}
}

// closeDocuments releases every open document. Without -o, edits the
// script did not save are reported, since they are lost on close.
func (app *Application) closeDocuments() {
	log := app.logger.WithComponent("documents")
	if app.opts.Output == "" {
		for _, doc := range app.documents.Modified() {
			log.Warn("%s: edits were not saved; add a save step or use -o", doc.Path)
		}
	}
	log.Debug("closing %d documents", app.documents.Count())
	for _, doc := range app.documents.Documents() {
		if err := app.documents.Close(doc.Path, true); err != nil {
			log.Warn("closing %s: %v", doc.Path, err)
		}
	}
}

// outputIsFile reports whether Output names a single file: it has an
// extension and is not an existing directory.
func (app *Application) outputIsFile() bool {
	out := app.opts.Output
	if out == "" || filepath.Ext(out) == "" || strings.HasSuffix(out, string(filepath.Separator)) {
		return false
	}
	info, err := os.Stat(out)
	return err != nil || !info.IsDir()
}

// outputPath maps an input file to its output file, or "" when no output
// was requested.
func (app *Application) outputPath(input string) string {
	out := app.opts.Output
	if out == "" {
		return ""
	}
	if app.outputIsFile() {
		return out
	}
	name := filepath.Base(input)
	if app.opts.Format != "" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + "." + imageio.NormalizeFormat(app.opts.Format)
	}
	return filepath.Join(out, name)
}

// Describe writes the size, format and resolution of each file to w.
func (app *Application) Describe(w io.Writer, files []string) error {
	errs := NewErrorList()
	for _, f := range files {
		res, err := imageio.Load(f)
		if err != nil {
			errs.Add(NewOperationError("open", f, err))
			continue
		}
		b := res.Image.Bounds()
		dx, dy := res.Meta.DPI()
		fmt.Fprintf(w, "%s: %dx%d %s", f, b.Dx(), b.Dy(), res.Format)
		if dx > 0 || dy > 0 {
			fmt.Fprintf(w, " %dx%d dpi", dx, dy)
		}
		fmt.Fprintln(w)
	}
	return errs.AsError()
}

// ExportPalette writes the palette as a GIMP palette (.gpl) or YAML.
func (app *Application) ExportPalette(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".gpl") {
		if err := app.palette.Save(path); err != nil {
			return NewOperationError("export palette", path, err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return NewOperationError("export palette", path, err)
	}
	if err := app.palette.WriteGIMP(f); err != nil {
		f.Close()
		return NewOperationError("export palette", path, err)
	}
	if err := f.Close(); err != nil {
		return NewOperationError("export palette", path, err)
	}
	return nil
}

// SaveSettings writes the settings, including recent files, back to the
// settings file.
func (app *Application) SaveSettings() error {
	s := app.Settings()
	if err := s.Save(app.settingsPath); err != nil {
		return NewComponentError("config", "save", err)
	}
	return nil
}

func uniqueFiles(files []string) ([]string, error) {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}
	return out, nil
}
