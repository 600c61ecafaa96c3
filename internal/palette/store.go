package palette

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type paletteFile struct {
	Name        string      `yaml:"name,omitempty"`
	Description string      `yaml:"description,omitempty"`
	Colors      []colorNode `yaml:"colors"`
}

type colorNode struct {
	Name  string `yaml:"name,omitempty"`
	Color string `yaml:"color"`
}

// Load reads a palette saved by Save.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f paletteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse palette %s: %w", path, err)
	}

	c := New(f.Name)
	c.Description = f.Description
	for i, node := range f.Colors {
		col, err := ParseColor(node.Color)
		if err != nil {
			return nil, fmt.Errorf("palette %s: color %d: %w", path, i, err)
		}
		c.Add(col, node.Name)
	}
	return c, nil
}

// LoadOrDefault loads the palette at path, falling back to Default when
// path is empty or the file does not exist.
func LoadOrDefault(path string) (*Collection, error) {
	if path == "" {
		return Default(), nil
	}
	c, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

// Save writes the collection as YAML. Empty slots are not written.
func (c *Collection) Save(path string) error {
	f := paletteFile{
		Name:        c.Name,
		Description: c.Description,
		Colors:      make([]colorNode, 0, len(c.entries)),
	}
	for _, e := range c.entries {
		if !e.Valid {
			continue
		}
		f.Colors = append(f.Colors, colorNode{Name: e.Name, Color: FormatColor(e.Color)})
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
