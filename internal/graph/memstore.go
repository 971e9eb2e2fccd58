package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore keeps the diagram in memory. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu      sync.RWMutex
	diagram Diagram
}

// NewMemStore returns an empty MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{diagram: NewDiagram()}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// Snapshot returns a deep copy of the stored diagram.
func (m *MemStore) Snapshot(_ context.Context) (Diagram, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.diagram.Clone(), nil
}

// Commit replaces the stored diagram with a copy of d.
func (m *MemStore) Commit(_ context.Context, d Diagram) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diagram = d.Clone()
	return nil
}

// GetNode returns the node with the given id, or nil if not found.
func (m *MemStore) GetNode(_ context.Context, id string) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.diagram.Nodes[id]
	if !ok {
		return nil, nil
	}
	n.Data = n.Data.clone()
	return &n, nil
}

// QueryNodes returns nodes whose label contains query (case-insensitive),
// ordered by id, up to limit results. A limit <= 0 returns all matches.
func (m *MemStore) QueryNodes(_ context.Context, query string, limit int) ([]Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return queryNodes(m.diagram, query, limit), nil
}

// GetDependencies walks edges from nodeID in the given direction.
func (m *MemStore) GetDependencies(_ context.Context, nodeID string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Dependencies(m.diagram, nodeID, direction, maxDepth), nil
}

// AssessImpact returns the classes affected by changing the given nodes.
func (m *MemStore) AssessImpact(_ context.Context, changed []string) (*ImpactResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Impact(m.diagram, changed), nil
}

// Stats returns node and edge counts.
func (m *MemStore) Stats(_ context.Context) (*DiagramStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := m.diagram.Stats()
	return &stats, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// queryNodes is the label search shared by the map-backed stores.
func queryNodes(d Diagram, query string, limit int) []Node {
	lowerQuery := strings.ToLower(query)
	var results []Node
	for _, n := range d.Nodes {
		if strings.Contains(strings.ToLower(n.Data.Label), lowerQuery) {
			n.Data = n.Data.clone()
			results = append(results, n)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
