package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/bindgen"
	"github.com/GriffinCanCode/webbridge/internal/bindgen/manifest"
	"github.com/GriffinCanCode/webbridge/internal/bindgen/meta"
	"github.com/GriffinCanCode/webbridge/internal/bindgen/source"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/logging"
)

// patterns collects repeated or comma separated glob flags.
type patterns []string

func (p *patterns) String() string { return strings.Join(*p, ",") }

func (p *patterns) Set(v string) error {
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*p = append(*p, s)
		}
	}
	return nil
}

func main() {
	var (
		flags      bindgen.Config
		configPath string
		verbose    bool
	)
	flag.StringVar(&configPath, "config", "", "Project config file (default: bindgen.yaml or bindgen.toml in the working directory)")
	flag.StringVar(&flags.Dir, "dir", "", "Root of the Go sources to scan")
	flag.StringVar(&flags.TS, "ts", "", "Output directory of the TypeScript package")
	flag.StringVar(&flags.Manifest, "manifest", "", "Read window metadata from a YAML/TOML/JSON manifest instead of sources")
	flag.StringVar(&flags.ManifestOut, "manifest-out", "", "Also write the loaded metadata as a manifest")
	flag.Var((*patterns)(&flags.Include), "include", "Glob of source files to scan (repeatable)")
	flag.Var((*patterns)(&flags.Exclude), "exclude", "Glob of source files to skip (repeatable)")
	flag.StringVar(&flags.Base, "base", "", "Embedded type marking a window")
	flag.StringVar(&flags.Namespace, "namespace", "", "Page global of the bridge runtime")
	flag.StringVar(&flags.Package, "package", "", "npm package name of the declarations")
	flag.StringVar(&flags.Version, "version", "", "npm package version")
	flag.BoolVar(&flags.SkipWiring, "skip-wiring", false, "Do not write Go binding tables")
	flag.BoolVar(&verbose, "v", false, "Debug logging")
	flag.Parse()

	level := "info"
	if verbose {
		level = "debug"
	}
	logger := logging.FromLevel(level, true)
	defer logger.Sync()

	cfg, err := resolveConfig(configPath, flags)
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Generation failed", zap.Error(err))
	}
}

func resolveConfig(path string, flags bindgen.Config) (bindgen.Config, error) {
	if path == "" {
		found, err := bindgen.FindConfig(".")
		if err != nil {
			return bindgen.Config{}, err
		}
		path = found
	}

	var cfg bindgen.Config
	if path != "" {
		file, err := bindgen.LoadConfig(path)
		if err != nil {
			return bindgen.Config{}, err
		}
		cfg = *file
	}
	cfg = cfg.Merge(flags)

	if cfg.Dir == "" && cfg.Manifest == "" {
		return bindgen.Config{}, fmt.Errorf("one of -dir or -manifest is required")
	}
	return cfg, nil
}

func run(ctx context.Context, cfg bindgen.Config, logger *logging.Logger) error {
	var provider meta.Provider
	if cfg.Manifest != "" {
		provider = manifest.Provider{Path: cfg.Manifest}
		// manifest windows carry no package, so there is nothing to wire
		cfg.SkipWiring = true
	} else {
		provider = source.New(source.Config{
			Dir:     cfg.Dir,
			Include: cfg.Include,
			Exclude: cfg.Exclude,
			Base:    cfg.Base,
		}, logger.Component("source"))
	}

	snap, err := provider.Load(ctx)
	if err != nil {
		return fmt.Errorf("load metadata: %w", err)
	}

	out, err := bindgen.New(cfg.Options(), logger.Component("bindgen")).Generate(snap)
	if err != nil {
		return err
	}

	written, err := out.Write(cfg.TS)
	if err != nil {
		return err
	}

	if cfg.ManifestOut != "" {
		if err := manifest.WriteFile(cfg.ManifestOut, manifest.FromSnapshot(snap)); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		written = append(written, cfg.ManifestOut)
	}

	for _, path := range written {
		logger.Info("Wrote", zap.String("path", path))
	}
	return nil
}
