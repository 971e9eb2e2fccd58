package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrUnknownBackend is returned by OpenStore for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store persists a diagram. Implementations: FileStore (default save file),
// KuzuStore (graph database), MemStore (testing).
//
// Merges are computed on a Snapshot and written back whole with Commit.
// Callers serialize snapshot-merge-commit cycles themselves.
type Store interface {
	io.Closer

	// Schema setup, called once before first use.
	InitSchema(ctx context.Context) error

	// Whole-diagram access.
	Snapshot(ctx context.Context) (Diagram, error)
	Commit(ctx context.Context, d Diagram) error

	// Read operations.
	GetNode(ctx context.Context, id string) (*Node, error)
	QueryNodes(ctx context.Context, query string, limit int) ([]Node, error)

	// Graph traversal.
	GetDependencies(ctx context.Context, nodeID string, direction Direction, maxDepth int) ([]DependencyChain, error)
	AssessImpact(ctx context.Context, changed []string) (*ImpactResult, error)

	// Stats.
	Stats(ctx context.Context) (*DiagramStats, error)
}

// Backend names accepted by OpenStore.
const (
	BackendJSON   = "json"
	BackendMemory = "memory"
	BackendKuzu   = "kuzu"
)

// OpenStore opens the named backend at path and initializes its schema.
func OpenStore(ctx context.Context, backend, path string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch backend {
	case BackendJSON, "":
		s = NewFileStore(path)
	case BackendMemory:
		s = NewMemStore()
	case BackendKuzu:
		s, err = NewKuzuFileStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	if err != nil {
		return nil, err
	}
	if err := s.InitSchema(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("init %s store: %w", backend, err)
	}
	return s, nil
}
