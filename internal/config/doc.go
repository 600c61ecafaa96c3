// Package config provides the settings of paintstorm.
//
// Settings are layered, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← PAINTSTORM_*, highest priority
//	├─────────────────────────────┤
//	│  2. User Settings           │  ← ~/.config/paintstorm/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← lowest priority
//	└─────────────────────────────┘
//
// Command line flags are applied by the caller after loading.
//
// # Keys
//
//	history.maxBytes     undo memory ceiling in bytes (0 = unlimited)
//	history.maxSteps     undo step ceiling (0 = unlimited)
//	logging.level        debug, info, warn or error
//	image.jpegQuality    1-100
//	image.defaultWidth   size of new documents
//	image.defaultHeight
//	palette.path         user palette file (empty = built-in palette)
//	effects.lastUsed     last effect applied
//	script.parallelism   files processed concurrently (0 = one per CPU)
//	recent.files         recently opened or saved files, newest first
//	recent.max           length of recent.files
//
// # Basic Usage
//
//	s, err := config.Load(config.DefaultPath())
//	if err != nil {
//		return err
//	}
//	e := engine.New(engine.WithMaxUndoBytes(s.History.MaxBytes))
//
// Saving writes the full settings back as TOML:
//
//	s.AddRecentFile("photo.png")
//	err := s.Save(config.DefaultPath())
package config
