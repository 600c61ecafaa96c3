package script

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dshills/paintstorm/internal/engine"
	"github.com/dshills/paintstorm/internal/engine/history"
	"github.com/dshills/paintstorm/internal/palette"
)

// Runner applies scripts to one engine. A Runner is not safe for
// concurrent use; run different files on different runners.
type Runner struct {
	engine  *engine.Engine
	palette *palette.Collection
	vars    map[string]string
	logger  engine.Logger

	lastEffect string
}

// Option configures a Runner.
type Option func(*Runner)

// WithPalette resolves "@N" colors against p.
func WithPalette(p *palette.Collection) Option {
	return func(r *Runner) {
		r.palette = p
	}
}

// WithInput sets the input file whose parts are substituted into save
// and export paths.
func WithInput(path string) Option {
	return func(r *Runner) {
		r.vars = inputVars(path)
	}
}

// WithLogger sets the logger for step tracing.
func WithLogger(l engine.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner bound to e.
func NewRunner(e *engine.Engine, opts ...Option) *Runner {
	r := &Runner{
		engine:  e,
		palette: palette.Default(),
		vars:    inputVars(e.Document().URL()),
		logger:  nopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the steps in order and stops at the first failure. Steps
// already applied stay in the history. The context is checked between
// steps.
func (r *Runner) Run(ctx context.Context, s *Script) error {
	for i, step := range s.Steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		op, ok := ops[step.Op]
		if !ok {
			return &StepError{Index: i, Op: step.Op, Err: fmt.Errorf("%w %q", ErrUnknownOp, step.Op)}
		}
		if op.validate != nil {
			if err := op.validate(step); err != nil {
				return &StepError{Index: i, Op: step.Op, Err: err}
			}
		}

		r.logger.Debug("step %d: %s", i+1, step.Op)
		if err := op.run(r, step); err != nil {
			return &StepError{Index: i, Op: step.Op, Err: err}
		}
		if op.effect {
			r.lastEffect = step.Op
		}
	}
	return nil
}

// LastEffect returns the operation name of the last effect step run.
func (r *Runner) LastEffect() string {
	return r.lastEffect
}

// Engine returns the engine the runner edits.
func (r *Runner) Engine() *engine.Engine {
	return r.engine
}

func (r *Runner) execute(cmd history.Command, err error) error {
	if err != nil {
		return err
	}
	return r.engine.Execute(cmd)
}

// color resolves a step color. An empty string yields def.
func (r *Runner) color(s string, def color.NRGBA) (color.NRGBA, error) {
	if s == "" {
		return def, nil
	}
	if idx, ok := strings.CutPrefix(s, "@"); ok {
		n, err := strconv.Atoi(idx)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: palette reference %q", ErrInvalidStep, s)
		}
		c, ok := r.palette.Color(n)
		if !ok {
			return color.NRGBA{}, fmt.Errorf("%w: %d", palette.ErrIndexOutOfRange, n)
		}
		return c, nil
	}
	return palette.ParseColor(s)
}

// expand substitutes input file variables into a path.
func (r *Runner) expand(path string) string {
	return os.Expand(path, func(key string) string {
		return r.vars[key]
	})
}

func inputVars(path string) map[string]string {
	if path == "" {
		return map[string]string{}
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return map[string]string{
		"path": path,
		"dir":  filepath.Dir(path),
		"base": strings.TrimSuffix(base, ext),
		"name": base,
		"ext":  strings.TrimPrefix(ext, "."),
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
