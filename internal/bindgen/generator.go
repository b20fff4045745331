// Package bindgen generates the static side of the bridge from window
// metadata: Go binding tables, page stubs and TypeScript declarations.
//
// The generator never inspects Go values; it reads a meta.Snapshot from a
// meta.Provider (source scan or manifest) and renders text.
package bindgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/bindgen/meta"
	"github.com/GriffinCanCode/webbridge/internal/bridge/script"
)

// Output file names of the TypeScript package.
const (
	DeclarationsFile = "index.d.ts"
	StubsFile        = "index.js"
	PackageFile      = "package.json"
)

// Options tune a run.
type Options struct {
	Namespace   string
	PackageName string
	Version     string
	// SkipWiring disables Go output, e.g. for manifest-only runs.
	SkipWiring bool
}

func (o Options) withDefaults() Options {
	if o.Namespace == "" {
		o.Namespace = script.DefaultNamespace
	}
	if o.PackageName == "" {
		o.PackageName = o.Namespace + "-types"
	}
	if o.Version == "" {
		o.Version = "1.0.0"
	}
	return o
}

// Output is everything one run produces.
type Output struct {
	Declarations string
	Stubs        string
	Package      []byte
	// Wiring maps a package directory to its generated Go file.
	Wiring map[string][]byte
}

type packageJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Main    string `json:"main"`
	Types   string `json:"types"`
}

// Generator runs the passes over a provider's snapshot.
type Generator struct {
	opts   Options
	logger *zap.Logger
}

// New creates a generator.
func New(opts Options, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{opts: opts.withDefaults(), logger: logger}
}

// Run loads metadata from p and renders every output.
func (g *Generator) Run(ctx context.Context, p meta.Provider) (*Output, error) {
	snap, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("bindgen: load metadata: %w", err)
	}
	return g.Generate(snap)
}

// Generate renders every output for snap.
func (g *Generator) Generate(snap *meta.Snapshot) (*Output, error) {
	out := &Output{
		Declarations: Declarations(snap, g.opts.Namespace),
		Stubs:        Stubs(snap, g.opts.Namespace),
		Wiring:       make(map[string][]byte),
	}

	pkg, err := sonic.ConfigStd.MarshalIndent(packageJSON{
		Name:    g.opts.PackageName,
		Version: g.opts.Version,
		Main:    StubsFile,
		Types:   DeclarationsFile,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("bindgen: encode package.json: %w", err)
	}
	out.Package = append(pkg, '\n')

	if !g.opts.SkipWiring {
		byDir := make(map[string][]meta.Window)
		var order []string
		for _, w := range snap.Windows {
			if w.Package == "" {
				continue
			}
			if _, ok := byDir[w.Dir]; !ok {
				order = append(order, w.Dir)
			}
			byDir[w.Dir] = append(byDir[w.Dir], w)
		}
		for _, dir := range order {
			src, err := Wiring(byDir[dir])
			if err != nil {
				return nil, err
			}
			out.Wiring[dir] = src
		}
	}

	methods := 0
	for _, w := range snap.Windows {
		methods += len(w.Methods)
	}
	g.logger.Info("Generated bindings",
		zap.Int("windows", len(snap.Windows)),
		zap.Int("methods", methods),
		zap.Int("packages", len(out.Wiring)))
	return out, nil
}

// Write stores the TypeScript package under tsDir and each wiring file in
// its package directory. It returns the written paths.
func (o *Output) Write(tsDir string) ([]string, error) {
	var written []string
	write := func(path string, data []byte) error {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("bindgen: write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	if tsDir != "" {
		if err := os.MkdirAll(tsDir, 0o755); err != nil {
			return nil, fmt.Errorf("bindgen: create %s: %w", tsDir, err)
		}
		files := []struct {
			name string
			data []byte
		}{
			{DeclarationsFile, []byte(o.Declarations)},
			{StubsFile, []byte(o.Stubs)},
			{PackageFile, o.Package},
		}
		for _, f := range files {
			if err := write(filepath.Join(tsDir, f.name), f.data); err != nil {
				return written, err
			}
		}
	}

	for dir, src := range o.Wiring {
		if err := write(filepath.Join(dir, GeneratedFile), src); err != nil {
			return written, err
		}
	}
	return written, nil
}
