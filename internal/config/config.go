package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Body locator names accepted in BodyLocator.
const (
	LocatorSpan       = "span"
	LocatorTreeSitter = "treesitter"
)

// ProjectConfig holds project-level settings loaded from classforge.yml.
type ProjectConfig struct {
	StoreBackend  string        `yaml:"storeBackend,omitempty"`
	StorePath     string        `yaml:"storePath,omitempty"`
	ExcludeDirs   []string      `yaml:"excludeDirs,omitempty"`
	Parallelism   int           `yaml:"parallelism,omitempty"`
	CacheSize     int           `yaml:"cacheSize,omitempty"`
	LogLevel      string        `yaml:"logLevel,omitempty"`
	LogFormat     string        `yaml:"logFormat,omitempty"`
	BodyLocator   string        `yaml:"bodyLocator,omitempty"`
	WatchDebounce time.Duration `yaml:"watchDebounce,omitempty"`
}

// Default returns the settings used when no config file exists.
func Default() *ProjectConfig {
	return &ProjectConfig{
		StoreBackend:  "json",
		StorePath:     ".classforge/diagram.json",
		ExcludeDirs:   []string{".git", "build", "target", "out", "node_modules"},
		Parallelism:   runtime.GOMAXPROCS(0),
		CacheSize:     512,
		LogLevel:      "info",
		LogFormat:     "text",
		BodyLocator:   LocatorSpan,
		WatchDebounce: 300 * time.Millisecond,
	}
}

// Load attempts to read classforge.yml or classforge.yaml from the given
// directory. Fields absent from the file keep their defaults; a missing file
// is not an error.
func Load(dir string) (*ProjectConfig, error) {
	cfg := Default()
	for _, name := range []string{"classforge.yml", "classforge.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		break
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no component can act on.
func (c *ProjectConfig) Validate() error {
	switch c.BodyLocator {
	case LocatorSpan, LocatorTreeSitter:
	default:
		return fmt.Errorf("bodyLocator %q: want %s or %s", c.BodyLocator, LocatorSpan, LocatorTreeSitter)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("logFormat %q: want text or json", c.LogFormat)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Parallelism < 1 {
		c.Parallelism = 1
	}
	if c.CacheSize < 1 {
		c.CacheSize = 1
	}
	if c.WatchDebounce < 0 {
		c.WatchDebounce = 0
	}
	return nil
}

// Logger builds the structured logger described by LogLevel and LogFormat.
func (c *ProjectConfig) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("logLevel %q: %w", s, err)
	}
	return level, nil
}
