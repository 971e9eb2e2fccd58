//go:build cgo

package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/classforge/internal/model"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
//
// Each class is a ClassNode row and each edge a Relation. The full node and
// edge documents are kept as JSON in a payload column so a snapshot
// round-trips exactly; the scalar columns exist for querying.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the directory itself for new databases.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// Ensure parent directory exists (KuzuDB creates the leaf directory).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(dbPath string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS ClassNode(
		id STRING,
		name STRING,
		stereotype STRING,
		ghost BOOLEAN,
		entry BOOLEAN,
		x DOUBLE,
		y DOUBLE,
		payload STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS Relation(
		FROM ClassNode TO ClassNode,
		id STRING,
		kind STRING,
		payload STRING
	)`,
}

// InitSchema creates the node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Whole-diagram access ----------

// Snapshot reads every node and edge back into a Diagram.
func (s *KuzuStore) Snapshot(_ context.Context) (Diagram, error) {
	d := NewDiagram()

	rows, err := s.query("MATCH (n:ClassNode) RETURN n.payload", nil)
	if err != nil {
		return Diagram{}, err
	}
	for _, r := range rows {
		var n Node
		if err := json.Unmarshal([]byte(toString(r[0])), &n); err != nil {
			return Diagram{}, fmt.Errorf("kuzu: decode node: %w", err)
		}
		d.Nodes[n.ID] = n
	}

	rows, err = s.query("MATCH (:ClassNode)-[r:Relation]->(:ClassNode) RETURN r.payload", nil)
	if err != nil {
		return Diagram{}, err
	}
	for _, r := range rows {
		var e Edge
		if err := json.Unmarshal([]byte(toString(r[0])), &e); err != nil {
			return Diagram{}, fmt.Errorf("kuzu: decode edge: %w", err)
		}
		d.Edges[e.ID] = e
	}
	return d, nil
}

// Commit replaces the stored diagram with d inside one transaction.
func (s *KuzuStore) Commit(_ context.Context, d Diagram) (err error) {
	if err := s.exec("BEGIN TRANSACTION", nil); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			s.exec("ROLLBACK", nil)
		}
	}()

	if err = s.exec("MATCH (n:ClassNode) DETACH DELETE n", nil); err != nil {
		return err
	}
	for _, n := range d.SortedNodes() {
		if err = s.addNode(n); err != nil {
			return err
		}
	}
	for _, e := range d.SortedEdges() {
		if err = s.addEdge(e); err != nil {
			return err
		}
	}
	return s.exec("COMMIT", nil)
}

func (s *KuzuStore) addNode(n Node) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("kuzu: encode node %s: %w", n.ID, err)
	}
	return s.exec(
		`CREATE (n:ClassNode {
			id: $id,
			name: $name,
			stereotype: $stereotype,
			ghost: $ghost,
			entry: $entry,
			x: $x,
			y: $y,
			payload: $payload
		})`,
		map[string]any{
			"id":         n.ID,
			"name":       n.Data.Label,
			"stereotype": string(n.Data.Stereotype),
			"ghost":      n.Data.Ghost,
			"entry":      n.Data.IsEntryPoint,
			"x":          n.Position.X,
			"y":          n.Position.Y,
			"payload":    string(payload),
		},
	)
}

func (s *KuzuStore) addEdge(e Edge) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kuzu: encode edge %s: %w", e.ID, err)
	}
	return s.exec(
		`MATCH (a:ClassNode {id: $src}), (b:ClassNode {id: $dst})
		 CREATE (a)-[:Relation {id: $id, kind: $kind, payload: $payload}]->(b)`,
		map[string]any{
			"src":     e.Source,
			"dst":     e.Target,
			"id":      e.ID,
			"kind":    string(e.Kind),
			"payload": string(payload),
		},
	)
}

// ---------- Read operations ----------

// GetNode retrieves a single node by id, or returns nil if not found.
func (s *KuzuStore) GetNode(_ context.Context, id string) (*Node, error) {
	rows, err := s.query(
		"MATCH (n:ClassNode {id: $id}) RETURN n.payload",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	var n Node
	if err := json.Unmarshal([]byte(toString(rows[0][0])), &n); err != nil {
		return nil, fmt.Errorf("kuzu: decode node: %w", err)
	}
	return &n, nil
}

// QueryNodes returns nodes whose name contains the query, case-insensitive,
// ordered by id. A limit <= 0 returns all matches.
func (s *KuzuStore) QueryNodes(_ context.Context, queryStr string, limit int) ([]Node, error) {
	cypher := `MATCH (n:ClassNode) WHERE lower(n.name) CONTAINS lower($q)
		 RETURN n.id, n.payload ORDER BY n.id`
	params := map[string]any{"q": queryStr}
	if limit > 0 {
		cypher += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(rows))
	for _, r := range rows {
		var n Node
		if err := json.Unmarshal([]byte(toString(r[1])), &n); err != nil {
			return nil, fmt.Errorf("kuzu: decode node: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// ---------- Graph traversal ----------

// GetDependencies performs a BFS over Relation edges starting from nodeID.
// It returns one DependencyChain per reachable class.
func (s *KuzuStore) GetDependencies(_ context.Context, nodeID string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		return nil, nil
	}

	// BFS state.
	type bfsEntry struct {
		path  []string
		depth int
	}
	visited := map[string]bool{nodeID: true}
	queue := []bfsEntry{{path: []string{nodeID}, depth: 0}}
	var chains []DependencyChain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		tip := cur.path[len(cur.path)-1]
		neighbors, err := s.classNeighbors(tip, dir)
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			newPath := make([]string, len(cur.path)+1)
			copy(newPath, cur.path)
			newPath[len(cur.path)] = nb
			chains = append(chains, DependencyChain{
				Nodes: newPath,
				Depth: cur.depth + 1,
			})
			queue = append(queue, bfsEntry{path: newPath, depth: cur.depth + 1})
		}
	}
	return chains, nil
}

// classNeighbors returns the ids one Relation hop away, in id order.
func (s *KuzuStore) classNeighbors(id string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionDependencies:
		cypher = "MATCH (a:ClassNode {id: $id})-[:Relation]->(b:ClassNode) RETURN DISTINCT b.id ORDER BY b.id"
	case DirectionDependents:
		cypher = "MATCH (a:ClassNode)-[:Relation]->(b:ClassNode {id: $id}) RETURN DISTINCT a.id ORDER BY a.id"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// AssessImpact walks Relation edges backwards from each changed class to find
// direct and transitive dependents, then scores the share of classes hit.
func (s *KuzuStore) AssessImpact(ctx context.Context, changed []string) (*ImpactResult, error) {
	classes, err := s.count("MATCH (n:ClassNode) WHERE n.ghost = false RETURN count(n)")
	if err != nil {
		return nil, err
	}
	total, err := s.count("MATCH (n:ClassNode) RETURN count(n)")
	if err != nil {
		return nil, err
	}

	directSet := map[string]bool{}
	transitiveSet := map[string]bool{}
	for _, id := range changed {
		chains, err := s.GetDependencies(ctx, id, DirectionDependents, total)
		if err != nil {
			return nil, err
		}
		for _, c := range chains {
			last := c.Nodes[len(c.Nodes)-1]
			if c.Depth == 1 {
				directSet[last] = true
			}
			transitiveSet[last] = true
		}
	}

	changedSet := map[string]bool{}
	for _, id := range changed {
		changedSet[id] = true
	}
	transitive := filterKeys(transitiveSet, changedSet)

	risk := 0.0
	if classes > 0 {
		risk = math.Min(1.0, float64(len(transitive))/float64(classes))
	}
	return &ImpactResult{
		DirectlyAffected:     filterKeys(directSet, changedSet),
		TransitivelyAffected: transitive,
		RiskScore:            risk,
	}, nil
}

// ---------- Stats ----------

// Stats counts nodes, ghosts, entry points and edges per kind.
func (s *KuzuStore) Stats(_ context.Context) (*DiagramStats, error) {
	stats := &DiagramStats{EdgesByKind: make(map[model.RelationshipKind]int)}
	var err error
	if stats.NodeCount, err = s.count("MATCH (n:ClassNode) RETURN count(n)"); err != nil {
		return nil, err
	}
	if stats.GhostCount, err = s.count("MATCH (n:ClassNode) WHERE n.ghost = true RETURN count(n)"); err != nil {
		return nil, err
	}
	if stats.EntryPoints, err = s.count("MATCH (n:ClassNode) WHERE n.entry = true RETURN count(n)"); err != nil {
		return nil, err
	}
	rows, err := s.query("MATCH ()-[r:Relation]->() RETURN r.kind, count(r)", nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		n := toInt(r[1])
		stats.EdgesByKind[model.RelationshipKind(toString(r[0]))] = n
		stats.EdgeCount += n
	}
	return stats, nil
}

// ---------- Internal helpers ----------

// exec runs a Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	if len(params) == 0 {
		res, err := s.conn.Query(cypher)
		if err != nil {
			return fmt.Errorf("kuzu: execute: %w", err)
		}
		res.Close()
		return nil
	}

	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value count query.
func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// filterKeys returns keys from set that are not in exclude, sorted.
func filterKeys(set, exclude map[string]bool) []string {
	out := make(map[string]bool, len(set))
	for k := range set {
		if !exclude[k] {
			out[k] = true
		}
	}
	return sortedKeys(out)
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
