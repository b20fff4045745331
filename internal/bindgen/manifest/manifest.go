// Package manifest reads and writes generator metadata as YAML, TOML or
// JSON, so bindings can be declared without Go source or exported from a
// scan for other toolchains.
//
// Types are written as expressions: string, number, boolean, void, any,
// T[] for sequences, async<T> for deferred values, or the name of a record
// declared under types.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

var ErrFormat = errors.New("manifest: unsupported format")

// Format is a manifest encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
	JSON Format = "json"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	case ".json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrFormat, path)
	}
}

// Manifest is the serialized snapshot.
type Manifest struct {
	Types   []Record `json:"types,omitempty" yaml:"types,omitempty" toml:"types,omitempty"`
	Windows []Window `json:"windows" yaml:"windows" toml:"windows"`
}

// Record is a composite type.
type Record struct {
	Name   string  `json:"name" yaml:"name" toml:"name"`
	ID     string  `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Fields []Field `json:"fields" yaml:"fields" toml:"fields"`
}

// Field is a record member.
type Field struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	Type     string `json:"type" yaml:"type" toml:"type"`
	Static   bool   `json:"static,omitempty" yaml:"static,omitempty" toml:"static,omitempty"`
	ReadOnly bool   `json:"readonly,omitempty" yaml:"readonly,omitempty" toml:"readonly,omitempty"`
	Const    bool   `json:"const,omitempty" yaml:"const,omitempty" toml:"const,omitempty"`
	Indexer  bool   `json:"indexer,omitempty" yaml:"indexer,omitempty" toml:"indexer,omitempty"`
	Hidden   bool   `json:"hidden,omitempty" yaml:"hidden,omitempty" toml:"hidden,omitempty"`
}

// Window is a window type and its bindings.
type Window struct {
	Name    string   `json:"name" yaml:"name" toml:"name"`
	Methods []Method `json:"methods" yaml:"methods" toml:"methods"`
}

// Method is one binding.
type Method struct {
	Name    string  `json:"name" yaml:"name" toml:"name"`
	Expose  string  `json:"expose,omitempty" yaml:"expose,omitempty" toml:"expose,omitempty"`
	Global  bool    `json:"global,omitempty" yaml:"global,omitempty" toml:"global,omitempty"`
	Params  []Param `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
	Returns string  `json:"returns,omitempty" yaml:"returns,omitempty" toml:"returns,omitempty"`
	Doc     string  `json:"doc,omitempty" yaml:"doc,omitempty" toml:"doc,omitempty"`
}

// Param is a positional parameter.
type Param struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Type string `json:"type" yaml:"type" toml:"type"`
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, &m)
	case TOML:
		err = toml.Unmarshal(data, &m)
	case JSON:
		err = sonic.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: %s parse error: %w", format, err)
	}
	return &m, nil
}

// Encode renders m in the given format.
func Encode(m *Manifest, format Format) ([]byte, error) {
	switch format {
	case YAML:
		return yaml.Marshal(m)
	case TOML:
		return toml.Marshal(m)
	case JSON:
		return sonic.ConfigStd.MarshalIndent(m, "", "  ")
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, format)
	}
}

// ReadFile decodes a manifest file, choosing the format by extension.
func ReadFile(path string) (*Manifest, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, format)
}

// WriteFile encodes m to path, choosing the format by extension.
func WriteFile(path string, m *Manifest) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(m, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
