// Package script runs declarative edit scripts against an engine.
//
// A script is a YAML document listing steps; each step constructs one
// command and executes it through the engine, so every step is a single
// undoable entry in the document history:
//
//	name: thumbnail
//	steps:
//	  - op: select
//	    rect: [10, 10, 64, 64]
//	  - op: crop
//	  - op: smooth-scale
//	    width: 32
//	    height: 32
//	  - op: save
//	    path: ${dir}/${base}-thumb.png
package script

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Common errors returned by script operations.
var (
	ErrUnknownOp   = errors.New("unknown operation")
	ErrInvalidStep = errors.New("invalid step")
	ErrEmptyScript = errors.New("script has no steps")
)

// Script is a named sequence of edit steps.
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// Step is one edit. Only the fields relevant to Op are read.
type Step struct {
	Op string `yaml:"op"`

	// Selection applies effects and transforms to the selection content.
	Selection bool `yaml:"selection,omitempty"`

	// Channels for invert: any combination of r, g, b, a. Default rgb.
	Channels string `yaml:"channels,omitempty"`

	// Color is "#rrggbb", "#aarrggbb" or "@N" for palette entry N.
	Color string `yaml:"color,omitempty"`

	// Background fills the new area of resize, the box behind text, and
	// the area a select lifts pixels from.
	Background string `yaml:"background,omitempty"`

	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`

	// Axis for flip: horizontal or vertical.
	Axis string `yaml:"axis,omitempty"`
	// Turns for rotate, in clockwise quarter turns.
	Turns int `yaml:"turns,omitempty"`

	// Rect is [x, y, w, h]; w and h may be omitted for text.
	Rect []int `yaml:"rect,omitempty,flow"`
	// To is the [x, y] target of move-selection.
	To []int `yaml:"to,omitempty,flow"`

	Text  string `yaml:"text,omitempty"`
	Key   string `yaml:"key,omitempty"`
	Value string `yaml:"value,omitempty"`
	// DPI is [x, y] or a single value for both axes.
	DPI []int `yaml:"dpi,omitempty,flow"`

	// Name overrides the history entry name where supported.
	Name string `yaml:"name,omitempty"`

	// Path and Format for save and export. Path may reference ${path},
	// ${dir}, ${base}, ${name} and ${ext} of the input file.
	Path   string `yaml:"path,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// StepError reports the step that failed.
type StepError struct {
	Index int
	Op    string
	Err   error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Load reads a script from a YAML file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Parse decodes and validates a YAML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every step's operation and shape without touching a
// document.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return ErrEmptyScript
	}
	var errs []error
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			errs = append(errs, &StepError{Index: i, Op: step.Op, Err: err})
		}
	}
	return errors.Join(errs...)
}

func (s Step) validate() error {
	op, ok := ops[s.Op]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownOp, s.Op)
	}
	if op.validate != nil {
		return op.validate(s)
	}
	return nil
}

// Ops returns the supported operation names.
func Ops() []string {
	return slices.Sorted(maps.Keys(ops))
}
