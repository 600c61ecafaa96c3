package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/paintstorm/internal/config/loader"
	"github.com/dshills/paintstorm/internal/engine/history"
	"github.com/dshills/paintstorm/internal/engine/imageio"
)

// FileName is the settings file name inside the config directory.
const FileName = "config.toml"

// DefaultRecentMax is how many recent files are remembered by default.
const DefaultRecentMax = 10

// Settings holds every user-configurable value.
type Settings struct {
	History HistorySettings `toml:"history"`
	Logging LoggingSettings `toml:"logging"`
	Image   ImageSettings   `toml:"image"`
	Palette PaletteSettings `toml:"palette"`
	Effects EffectsSettings `toml:"effects"`
	Script  ScriptSettings  `toml:"script"`
	Recent  RecentSettings  `toml:"recent"`
}

// HistorySettings bounds the undo history of each document.
type HistorySettings struct {
	// MaxBytes is the undo memory ceiling; 0 is unlimited.
	MaxBytes int64 `toml:"maxBytes"`
	// MaxSteps is the undo step ceiling; 0 is unlimited.
	MaxSteps int `toml:"maxSteps"`
}

// LoggingSettings configures the application logger.
type LoggingSettings struct {
	Level string `toml:"level"`
}

// ImageSettings configures new documents and encoders.
type ImageSettings struct {
	JPEGQuality   int `toml:"jpegQuality"`
	DefaultWidth  int `toml:"defaultWidth"`
	DefaultHeight int `toml:"defaultHeight"`
}

// PaletteSettings locates the user palette. An empty path selects the
// built-in palette.
type PaletteSettings struct {
	Path string `toml:"path"`
}

// EffectsSettings remembers effect dialog state.
type EffectsSettings struct {
	LastUsed string `toml:"lastUsed"`
}

// ScriptSettings configures batch script runs.
type ScriptSettings struct {
	// Parallelism bounds concurrently processed files; 0 means one per CPU.
	Parallelism int `toml:"parallelism"`
}

// RecentSettings is the most-recently-used file list, newest first.
type RecentSettings struct {
	Files []string `toml:"files"`
	Max   int      `toml:"max"`
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"history": map[string]any{
			"maxBytes": int64(history.DefaultMaxBytes),
			"maxSteps": int64(history.DefaultMaxSteps),
		},
		"logging": map[string]any{
			"level": "info",
		},
		"image": map[string]any{
			"jpegQuality":   int64(imageio.DefaultJPEGQuality),
			"defaultWidth":  int64(400),
			"defaultHeight": int64(300),
		},
		"palette": map[string]any{
			"path": "",
		},
		"effects": map[string]any{
			"lastUsed": "",
		},
		"script": map[string]any{
			"parallelism": int64(0),
		},
		"recent": map[string]any{
			"files": []any{},
			"max":   int64(DefaultRecentMax),
		},
	}
}

// Default returns the built-in settings.
func Default() *Settings {
	s, err := decode(defaultConfig())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return s
}

// Load reads settings from the TOML file at path (missing is fine) and
// from PAINTSTORM_* environment variables, layered over the defaults.
func Load(path string) (*Settings, error) {
	return LoadFrom(
		loader.NewTOMLLoader(path),
		loader.NewEnvLoader(loader.DefaultEnvPrefix),
	)
}

// LoadFrom merges the given sources, lowest priority first, over the
// defaults and validates the result.
func LoadFrom(sources ...loader.Loader) (*Settings, error) {
	merged := defaultConfig()
	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	s, err := decode(merged)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// decode turns a merged map into Settings by round-tripping through TOML.
func decode(m map[string]any) (*Settings, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	var s Settings
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return &s, nil
}

// Validate checks every setting and reports all failures.
func (s *Settings) Validate() error {
	var errs []error
	check := func(ok bool, path, msg string, value any, code ValidationErrorCode) {
		if !ok {
			errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value, Code: code})
		}
	}

	check(s.History.MaxBytes >= 0, "history.maxBytes", "must not be negative", s.History.MaxBytes, ErrCodeOutOfRange)
	check(s.History.MaxSteps >= 0, "history.maxSteps", "must not be negative", s.History.MaxSteps, ErrCodeOutOfRange)
	check(slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, s.Logging.Level),
		"logging.level", "must be debug, info, warn or error", s.Logging.Level, ErrCodeInvalidEnum)
	check(s.Image.JPEGQuality >= 1 && s.Image.JPEGQuality <= 100, "image.jpegQuality", "must be between 1 and 100", s.Image.JPEGQuality, ErrCodeOutOfRange)
	check(s.Image.DefaultWidth > 0, "image.defaultWidth", "must be positive", s.Image.DefaultWidth, ErrCodeOutOfRange)
	check(s.Image.DefaultHeight > 0, "image.defaultHeight", "must be positive", s.Image.DefaultHeight, ErrCodeOutOfRange)
	check(s.Script.Parallelism >= 0, "script.parallelism", "must not be negative", s.Script.Parallelism, ErrCodeOutOfRange)
	check(s.Recent.Max >= 0, "recent.max", "must not be negative", s.Recent.Max, ErrCodeOutOfRange)

	return errors.Join(errs...)
}

// HistoryLimits returns the undo ceilings as history limits.
func (s *Settings) HistoryLimits() history.Limits {
	return history.Limits{
		MaxBytes: s.History.MaxBytes,
		MaxSteps: s.History.MaxSteps,
	}
}

// SaveOptions returns the encoder options.
func (s *Settings) SaveOptions() imageio.Options {
	return imageio.Options{JPEGQuality: s.Image.JPEGQuality}
}

// AddRecentFile moves path to the front of the recent list, trimming it
// to Recent.Max entries.
func (s *Settings) AddRecentFile(path string) {
	if path == "" {
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	files := slices.DeleteFunc(slices.Clone(s.Recent.Files), func(f string) bool {
		return f == path
	})
	files = append([]string{path}, files...)
	if s.Recent.Max >= 0 && len(files) > s.Recent.Max {
		files = files[:s.Recent.Max]
	}
	s.Recent.Files = files
}

// Save writes the settings as TOML, creating the directory if needed.
func (s *Settings) Save(path string) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultDir returns the per-user configuration directory.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "paintstorm")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "paintstorm")
}

// DefaultPath returns the default settings file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), FileName)
}
