package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/classforge/internal/config"
	"github.com/dusk-indust/classforge/internal/graph"
	"github.com/dusk-indust/classforge/internal/importer"
	"github.com/dusk-indust/classforge/internal/javasrc"
)

const defaultKuzuPath = ".classforge/kuzu"

// app carries the global flags and the state derived from them.
type app struct {
	projectRoot  string
	storeBackend string
	storePath    string
	logLevel     string
	logFormat    string

	cfg *config.ProjectConfig
	log *slog.Logger
}

// setup loads classforge.yml from the project root and applies any global
// flags the user set explicitly.
func (a *app) setup(cmd *cobra.Command, stderr io.Writer) error {
	cfg, err := config.Load(a.projectRoot)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.StoreBackend = a.storeBackend
	}
	if flags.Changed("store-path") {
		cfg.StorePath = a.storePath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = cfg.Logger(stderr)
	return nil
}

// resolvedStorePath returns the store location relative to the project root.
func (a *app) resolvedStorePath() string {
	path := a.cfg.StorePath
	if a.cfg.StoreBackend == graph.BackendKuzu && (path == "" || path == graph.DefaultFilePath) {
		path = defaultKuzuPath
	}
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.projectRoot, path)
}

func (a *app) openStore(ctx context.Context) (graph.Store, error) {
	path := a.resolvedStorePath()
	a.log.Debug("opening store", "backend", a.cfg.StoreBackend, "path", path)
	store, err := graph.OpenStore(ctx, a.cfg.StoreBackend, path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

func (a *app) parser() *javasrc.Parser {
	if a.cfg.BodyLocator == config.LocatorTreeSitter {
		return javasrc.NewParser(javasrc.WithBodyLocator(javasrc.NewTreeSitterLocator()))
	}
	return javasrc.NewParser()
}

func (a *app) newImporter(store graph.Store) (*importer.Importer, error) {
	return importer.New(store,
		importer.WithParser(a.parser()),
		importer.WithLogger(a.log),
		importer.WithParallelism(a.cfg.Parallelism),
		importer.WithCacheSize(a.cfg.CacheSize),
		importer.WithExcludeDirs(a.cfg.ExcludeDirs),
	)
}
