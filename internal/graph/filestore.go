package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFilePath is where the JSON save file lives relative to the project
// root.
const DefaultFilePath = ".classforge/diagram.json"

// Compile-time assertion: *FileStore satisfies Store.
var _ Store = (*FileStore)(nil)

// FileStore persists the diagram as a single JSON document. Every read loads
// the file and every Commit rewrites it atomically through a temp file and a
// rename, so readers never observe a partial write.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore returns a FileStore backed by path, or DefaultFilePath when
// path is empty. The file is created on the first Commit.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFilePath
	}
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// InitSchema creates the parent directory of the save file.
func (s *FileStore) InitSchema(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("filestore: create directory: %w", err)
	}
	return nil
}

// Snapshot loads the diagram. A missing file is an empty diagram.
func (s *FileStore) Snapshot(_ context.Context) (Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

// Commit writes d to the save file.
func (s *FileStore) Commit(_ context.Context, d Diagram) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.Nodes == nil || d.Edges == nil {
		d = d.Clone()
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: marshal: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("filestore: create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".diagram-*.json")
	if err != nil {
		return fmt.Errorf("filestore: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("filestore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: rename: %w", err)
	}
	return nil
}

// GetNode returns the node with the given id, or nil if not found.
func (s *FileStore) GetNode(ctx context.Context, id string) (*Node, error) {
	d, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	n, ok := d.Nodes[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

// QueryNodes returns nodes whose label contains query (case-insensitive).
func (s *FileStore) QueryNodes(ctx context.Context, query string, limit int) ([]Node, error) {
	d, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return queryNodes(d, query, limit), nil
}

// GetDependencies walks edges from nodeID in the given direction.
func (s *FileStore) GetDependencies(ctx context.Context, nodeID string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	d, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Dependencies(d, nodeID, direction, maxDepth), nil
}

// AssessImpact returns the classes affected by changing the given nodes.
func (s *FileStore) AssessImpact(ctx context.Context, changed []string) (*ImpactResult, error) {
	d, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Impact(d, changed), nil
}

// Stats returns node and edge counts.
func (s *FileStore) Stats(ctx context.Context) (*DiagramStats, error) {
	d, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	stats := d.Stats()
	return &stats, nil
}

// Close is a no-op; the file is not held open between calls.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() (Diagram, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewDiagram(), nil
	}
	if err != nil {
		return Diagram{}, fmt.Errorf("filestore: read %s: %w", s.path, err)
	}
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return Diagram{}, fmt.Errorf("filestore: decode %s: %w", s.path, err)
	}
	if d.Nodes == nil {
		d.Nodes = make(map[string]Node)
	}
	if d.Edges == nil {
		d.Edges = make(map[string]Edge)
	}
	return d, nil
}
