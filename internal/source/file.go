// Package source reads catalog files and turns their declarative action specs
// into catalog entries with working handlers and loaders.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a catalog file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// File is the top-level document of a catalog file.
type File struct {
	Actions []ActionSpec `yaml:"actions" json:"actions" toml:"actions"`
}

// ActionSpec declares one action. Run and Copy pick the handler; Children,
// ChildrenCommand and ChildrenSource populate what browsing into it shows.
type ActionSpec struct {
	ID              string       `yaml:"id" json:"id" toml:"id"`
	Title           string       `yaml:"title" json:"title" toml:"title"`
	Section         string       `yaml:"section,omitempty" json:"section,omitempty" toml:"section,omitempty"`
	Parent          string       `yaml:"parent,omitempty" json:"parent,omitempty" toml:"parent,omitempty"`
	Hotkey          string       `yaml:"hotkey,omitempty" json:"hotkey,omitempty" toml:"hotkey,omitempty"`
	Keywords        string       `yaml:"keywords,omitempty" json:"keywords,omitempty" toml:"keywords,omitempty"`
	Run             string       `yaml:"run,omitempty" json:"run,omitempty" toml:"run,omitempty"`
	Copy            string       `yaml:"copy,omitempty" json:"copy,omitempty" toml:"copy,omitempty"`
	KeepOpen        bool         `yaml:"keep_open,omitempty" json:"keep_open,omitempty" toml:"keep_open,omitempty"`
	Children        []ActionSpec `yaml:"children,omitempty" json:"children,omitempty" toml:"children,omitempty"`
	ChildrenCommand string       `yaml:"children_command,omitempty" json:"children_command,omitempty" toml:"children_command,omitempty"`
	ChildrenRun     string       `yaml:"children_run,omitempty" json:"children_run,omitempty" toml:"children_run,omitempty"`
	ChildrenSource  string       `yaml:"children_source,omitempty" json:"children_source,omitempty" toml:"children_source,omitempty"`
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported catalog extension %q (want .yaml, .yml, .toml or .json)", filepath.Ext(path))
}

// Decode parses data in the given format. Unknown keys are rejected.
func Decode(data []byte, format Format) (File, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return File{}, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return File{}, fmt.Errorf("decode toml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return File{}, fmt.Errorf("decode json: %w", err)
		}
	default:
		return File{}, fmt.Errorf("unsupported catalog format %q", format)
	}
	return f, nil
}

// ReadFile reads and decodes the catalog at path.
func ReadFile(path string) (File, error) {
	format, err := FormatFor(path)
	if err != nil {
		return File{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read catalog: %w", err)
	}
	f, err := Decode(data, format)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
