package importer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-imports source files under a root directory when they are
// created or written. Bursts of events on one file collapse into a single
// import after the debounce interval.
type Watcher struct {
	im       *Importer
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
	onImport func(*Result, error)
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before a changed file is imported.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// OnImport registers a callback invoked after every import attempt.
func OnImport(fn func(*Result, error)) WatchOption {
	return func(w *Watcher) { w.onImport = fn }
}

// NewWatcher watches root and every non-excluded directory below it.
func (im *Importer) NewWatcher(root string, opts ...WatchOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{im: im, fsw: fsw, root: root, debounce: 300 * time.Millisecond}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.im.excluded(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run processes events until ctx is cancelled. It closes the underlying
// watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	ready := make(chan string)
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	w.im.log.Info("watching sources", "root", w.root, "debounce", w.debounce)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if !w.im.excluded(filepath.Base(ev.Name)) {
						if err := w.addTree(ev.Name); err != nil {
							w.im.log.Warn("watch new directory", "dir", ev.Name, "err", err)
						}
					}
					continue
				}
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), SourceExt) {
				continue
			}
			path := ev.Name
			if t, ok := pending[path]; ok {
				t.Reset(w.debounce)
				continue
			}
			pending[path] = time.AfterFunc(w.debounce, func() {
				select {
				case ready <- path:
				case <-ctx.Done():
				}
			})

		case path := <-ready:
			delete(pending, path)
			res, err := w.im.ImportFile(ctx, path)
			if err != nil {
				w.im.log.Warn("re-import failed", "file", path, "err", err)
			}
			if w.onImport != nil {
				w.onImport(res, err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.im.log.Warn("watcher error", "err", err)
		}
	}
}
