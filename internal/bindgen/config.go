package bindgen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// ConfigNames are the project files FindConfig looks for, in order.
var ConfigNames = []string{"bindgen.yaml", "bindgen.yml", "bindgen.toml"}

// Config is a project's generator settings, usually read from bindgen.yaml
// or bindgen.toml next to the sources. Relative paths resolve against the
// file's directory.
type Config struct {
	Dir         string   `yaml:"dir" toml:"dir"`
	TS          string   `yaml:"ts" toml:"ts"`
	Manifest    string   `yaml:"manifest" toml:"manifest"`
	ManifestOut string   `yaml:"manifest_out" toml:"manifest_out"`
	Include     []string `yaml:"include" toml:"include"`
	Exclude     []string `yaml:"exclude" toml:"exclude"`
	Base        string   `yaml:"base" toml:"base"`
	Namespace   string   `yaml:"namespace" toml:"namespace"`
	Package     string   `yaml:"package" toml:"package"`
	Version     string   `yaml:"version" toml:"version"`
	SkipWiring  bool     `yaml:"skip_wiring" toml:"skip_wiring"`
}

// Options returns the generator options of c.
func (c Config) Options() Options {
	return Options{
		Namespace:   c.Namespace,
		PackageName: c.Package,
		Version:     c.Version,
		SkipWiring:  c.SkipWiring,
	}
}

// LoadConfig reads a YAML or TOML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict())
	case ".toml":
		dec := toml.NewDecoder(strings.NewReader(string(data)))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	default:
		return nil, fmt.Errorf("bindgen: unsupported config file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("bindgen: parse %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&cfg.Dir, &cfg.TS, &cfg.Manifest, &cfg.ManifestOut} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	return &cfg, nil
}

// FindConfig returns the first project config file in dir, or "" when
// there is none.
func FindConfig(dir string) (string, error) {
	for _, name := range ConfigNames {
		path := filepath.Join(dir, name)
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}

// Merge overlays the non-zero fields of o onto c.
func (c Config) Merge(o Config) Config {
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&c.Dir, o.Dir)
	pick(&c.TS, o.TS)
	pick(&c.Manifest, o.Manifest)
	pick(&c.ManifestOut, o.ManifestOut)
	pick(&c.Base, o.Base)
	pick(&c.Namespace, o.Namespace)
	pick(&c.Package, o.Package)
	pick(&c.Version, o.Version)
	if len(o.Include) > 0 {
		c.Include = o.Include
	}
	if len(o.Exclude) > 0 {
		c.Exclude = o.Exclude
	}
	c.SkipWiring = c.SkipWiring || o.SkipWiring
	return c
}
