// Package importer feeds source files through the parser and merges the
// resulting classes into a persisted diagram.
package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/classforge/internal/graph"
	"github.com/dusk-indust/classforge/internal/javasrc"
)

// ErrParse wraps every failure to extract a declaration from a file.
var ErrParse = errors.New("could not parse source")

// SourceExt is the extension ImportDir and the watcher pick up.
const SourceExt = ".java"

// Importer parses sources and merges them into a store. Merges are
// serialized: each import runs snapshot, merge and commit under one lock.
type Importer struct {
	store       graph.Store
	resolver    *graph.Resolver
	parser      *javasrc.Parser
	log         *slog.Logger
	parallelism int
	excludeDirs map[string]bool
	cacheSize   int

	cache  *lru.Cache[string, *javasrc.ParseResult]
	hits   atomic.Int64
	misses atomic.Int64

	mu sync.Mutex
}

// Option configures an Importer.
type Option func(*Importer)

// WithResolver sets the resolver used to merge classes.
func WithResolver(r *graph.Resolver) Option {
	return func(im *Importer) {
		if r != nil {
			im.resolver = r
		}
	}
}

// WithParser sets the source parser.
func WithParser(p *javasrc.Parser) Option {
	return func(im *Importer) {
		if p != nil {
			im.parser = p
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.log = l
		}
	}
}

// WithParallelism bounds the number of files parsed at once by ImportDir.
func WithParallelism(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.parallelism = n
		}
	}
}

// WithCacheSize sets the number of parse results kept by content hash.
func WithCacheSize(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.cacheSize = n
		}
	}
}

// WithExcludeDirs names directories ImportDir and the watcher skip.
func WithExcludeDirs(dirs []string) Option {
	return func(im *Importer) {
		for _, d := range dirs {
			im.excludeDirs[d] = true
		}
	}
}

// New returns an Importer writing to store.
func New(store graph.Store, opts ...Option) (*Importer, error) {
	im := &Importer{
		store:       store,
		resolver:    graph.NewResolver(),
		parser:      javasrc.NewParser(),
		log:         slog.Default(),
		parallelism: runtime.GOMAXPROCS(0),
		excludeDirs: map[string]bool{".git": true},
		cacheSize:   256,
	}
	for _, opt := range opts {
		opt(im)
	}
	cache, err := lru.New[string, *javasrc.ParseResult](im.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("parse cache: %w", err)
	}
	im.cache = cache
	return im, nil
}

// Result describes one imported file.
type Result struct {
	File    string            `json:"file"`
	Class   string            `json:"class"`
	NodeID  string            `json:"nodeId"`
	Skipped []string          `json:"skipped,omitempty"`
	Report  graph.MergeReport `json:"report"`
}

// FileError records a file ImportDir could not import.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// DirResult summarizes an ImportDir run.
type DirResult struct {
	Imported []Result           `json:"imported"`
	Failed   []FileError        `json:"failed,omitempty"`
	Stats    graph.DiagramStats `json:"stats"`
}

// CacheStats reports parse cache hits and misses since creation.
func (im *Importer) CacheStats() (hits, misses int64) {
	return im.hits.Load(), im.misses.Load()
}

// Parse parses src, consulting the content-hash cache first. name is only
// used to annotate errors. Cached results are shared and must not be
// modified.
func (im *Importer) Parse(name, src string) (*javasrc.ParseResult, error) {
	sum := sha256.Sum256([]byte(src))
	key := hex.EncodeToString(sum[:])
	if res, ok := im.cache.Get(key); ok {
		im.hits.Add(1)
		return res, nil
	}
	im.misses.Add(1)

	res, err := im.parser.ParseDetailed(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, name, err)
	}
	im.cache.Add(key, res)
	return res, nil
}

// ImportSource parses src and merges its class into the store.
func (im *Importer) ImportSource(ctx context.Context, name, src string) (*Result, error) {
	res, err := im.Parse(name, src)
	if err != nil {
		return nil, err
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	d, err := im.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	d, report := im.resolver.Merge(res.Class, d)
	if err := im.store.Commit(ctx, d); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	out := im.result(name, res, report)
	im.log.Info("imported class", "file", name, "class", out.Class,
		"created_nodes", len(report.CreatedNodes), "created_edges", len(report.CreatedEdges))
	return &out, nil
}

// ImportFile reads path and imports it.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return im.ImportSource(ctx, path, string(data))
}

type parsedFile struct {
	rel string
	res *javasrc.ParseResult
	err error
}

// ImportDir imports every source file under root. Files are parsed in
// parallel, then merged one by one in path order and committed once, so the
// resulting diagram does not depend on scheduling. Files that fail to parse
// are reported in Failed and do not abort the run.
func (im *Importer) ImportDir(ctx context.Context, root string) (*DirResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	paths, err := im.sourceFiles(root)
	if err != nil {
		return nil, err
	}
	im.log.Debug("scanning sources", "root", root, "files", len(paths))

	parsed := make([]parsedFile, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.parallelism)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			rel = filepath.ToSlash(rel)
			data, err := os.ReadFile(path)
			if err != nil {
				parsed[i] = parsedFile{rel: rel, err: fmt.Errorf("read %s: %w", rel, err)}
				return nil
			}
			res, err := im.Parse(rel, string(data))
			parsed[i] = parsedFile{rel: rel, res: res, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	d, err := im.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	out := &DirResult{Imported: []Result{}}
	for _, pf := range parsed {
		if pf.err != nil {
			im.log.Warn("skipping file", "file", pf.rel, "err", pf.err)
			out.Failed = append(out.Failed, FileError{File: pf.rel, Error: pf.err.Error()})
			continue
		}
		var report graph.MergeReport
		d, report = im.resolver.Merge(pf.res.Class, d)
		out.Imported = append(out.Imported, im.result(pf.rel, pf.res, report))
	}

	if err := im.store.Commit(ctx, d); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	out.Stats = d.Stats()
	im.log.Info("imported directory", "root", root,
		"imported", len(out.Imported), "failed", len(out.Failed), "nodes", out.Stats.NodeCount)
	return out, nil
}

// sourceFiles lists the source files under root in lexical order.
func (im *Importer) sourceFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if d.IsDir() {
			if path != root && im.excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), SourceExt) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (im *Importer) excluded(dir string) bool {
	return im.excludeDirs[dir]
}

func (im *Importer) result(file string, res *javasrc.ParseResult, report graph.MergeReport) Result {
	if len(res.Skipped) > 0 {
		im.log.Debug("skipped members", "file", file, "class", res.Class.Name, "members", res.Skipped)
	}
	return Result{
		File:    file,
		Class:   res.Class.Name,
		NodeID:  report.NodeID,
		Skipped: append([]string(nil), res.Skipped...),
		Report:  report,
	}
}
