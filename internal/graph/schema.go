// Package graph holds the class diagram: nodes keyed by normalized class name,
// edges keyed by (source, target, kind). It provides the copy-on-write merge of
// parsed classes into a diagram, the connection rule table, traversal queries
// and the persistence backends.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/classforge/internal/model"
)

// ErrDanglingEdge is wrapped by Diagram.Check when an edge references a node
// that does not exist.
var ErrDanglingEdge = errors.New("edge references a missing node")

// --- Enums ---

// NodeType is the canvas renderer a node uses.
type NodeType string

const (
	NodeTypeClass NodeType = "umlClass"
	NodeTypeNote  NodeType = "umlNote"
)

// LineStyle is how an edge's line is drawn.
type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
)

// Marker is the arrowhead drawn at an edge's target end.
type Marker string

const (
	MarkerTriangle      Marker = "triangle"
	MarkerArrow         Marker = "arrow"
	MarkerDiamond       Marker = "diamond"
	MarkerFilledDiamond Marker = "filledDiamond"
)

// Direction controls which way dependency traversal follows edges.
type Direction string

const (
	// DirectionDependencies follows edges from source to target: the types a
	// class extends, implements or refers to.
	DirectionDependencies Direction = "dependencies"
	// DirectionDependents follows edges backwards: the types that refer to a
	// class.
	DirectionDependents Direction = "dependents"
)

// --- Models ---

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the class content rendered inside a node.
type NodeData struct {
	Label         string                      `json:"label"`
	Stereotype    model.Stereotype            `json:"stereotype"`
	Generics      string                      `json:"generics,omitempty"`
	Attributes    []model.AttributeDescriptor `json:"attributes"`
	Methods       []model.MethodDescriptor    `json:"methods"`
	EnumConstants []string                    `json:"enumConstants,omitempty"`
	IsEntryPoint  bool                        `json:"isEntryPoint"`
	// Ghost marks a placeholder synthesized for a referenced type whose
	// declaration has not been imported yet.
	Ghost bool `json:"ghost,omitempty"`
}

// Node is a class (or note) on the canvas.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Width    float64  `json:"width,omitempty"`
	Height   float64  `json:"height,omitempty"`
	Data     NodeData `json:"data"`
}

// EdgeData carries the rendering of an edge. Users may customize it; merges
// never overwrite an existing edge.
type EdgeData struct {
	LineStyle          LineStyle `json:"lineStyle"`
	MarkerEnd          Marker    `json:"markerEnd"`
	SourceMultiplicity string    `json:"sourceMultiplicity,omitempty"`
	TargetMultiplicity string    `json:"targetMultiplicity,omitempty"`
	Label              string    `json:"label,omitempty"`
}

// Edge is a typed relationship between two nodes.
type Edge struct {
	ID     string                 `json:"id"`
	Source string                 `json:"source"`
	Target string                 `json:"target"`
	Kind   model.RelationshipKind `json:"kind"`
	Data   EdgeData               `json:"data"`
}

// Diagram is the node/edge graph. Both maps are keyed by deterministic ids, so
// re-importing the same class never duplicates anything.
type Diagram struct {
	Nodes map[string]Node `json:"nodes"`
	Edges map[string]Edge `json:"edges"`
}

// DiagramStats summarizes a diagram.
type DiagramStats struct {
	NodeCount   int                            `json:"nodeCount"`
	GhostCount  int                            `json:"ghostCount"`
	EntryPoints int                            `json:"entryPoints"`
	EdgeCount   int                            `json:"edgeCount"`
	EdgesByKind map[model.RelationshipKind]int `json:"edgesByKind"`
}

// DependencyChain is an ordered path of node ids starting at the queried node.
type DependencyChain struct {
	Nodes []string `json:"nodes"`
	Depth int      `json:"depth"`
}

// ImpactResult lists the classes affected by changing a set of classes.
type ImpactResult struct {
	DirectlyAffected     []string `json:"directlyAffected"`     // reference a changed class
	TransitivelyAffected []string `json:"transitivelyAffected"` // full dependent closure
	RiskScore            float64  `json:"riskScore"`            // share of all classes affected, 0 to 1
}

// --- Identity ---

// NodeID returns the id of the node for a class name. Names are unique by
// their trimmed, lower-cased form.
func NodeID(name string) string {
	return "node-" + normalizeName(name)
}

// EdgeID returns the id of the edge of the given kind between two class
// names. It is a pure function of its inputs.
func EdgeID(source, target string, kind model.RelationshipKind) string {
	return fmt.Sprintf("edge-%s-%s-%s", normalizeName(source), normalizeName(target), kind)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// --- Diagram helpers ---

// NewDiagram returns an empty diagram with allocated maps.
func NewDiagram() Diagram {
	return Diagram{
		Nodes: make(map[string]Node),
		Edges: make(map[string]Edge),
	}
}

// Clone returns a deep copy of d. The copy shares nothing with d.
func (d Diagram) Clone() Diagram {
	out := Diagram{
		Nodes: make(map[string]Node, len(d.Nodes)),
		Edges: make(map[string]Edge, len(d.Edges)),
	}
	for id, n := range d.Nodes {
		n.Data = n.Data.clone()
		out.Nodes[id] = n
	}
	for id, e := range d.Edges {
		out.Edges[id] = e
	}
	return out
}

func (nd NodeData) clone() NodeData {
	out := nd
	out.Attributes = append([]model.AttributeDescriptor{}, nd.Attributes...)
	out.EnumConstants = append([]string(nil), nd.EnumConstants...)
	out.Methods = make([]model.MethodDescriptor, len(nd.Methods))
	for i, m := range nd.Methods {
		m.Parameters = append([]model.Parameter{}, m.Parameters...)
		out.Methods[i] = m
	}
	return out
}

// Check verifies that every edge endpoint names an existing node. The first
// violation in edge-id order is returned wrapped around ErrDanglingEdge.
func (d Diagram) Check() error {
	for _, e := range d.SortedEdges() {
		for _, end := range []string{e.Source, e.Target} {
			if _, ok := d.Nodes[end]; !ok {
				return fmt.Errorf("%w: edge %s -> %s", ErrDanglingEdge, e.ID, end)
			}
		}
	}
	return nil
}

// SortedNodes returns the nodes ordered by id.
func (d Diagram) SortedNodes() []Node {
	out := make([]Node, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SortedEdges returns the edges ordered by id.
func (d Diagram) SortedEdges() []Edge {
	out := make([]Edge, 0, len(d.Edges))
	for _, e := range d.Edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Stats counts nodes and edges in d.
func (d Diagram) Stats() DiagramStats {
	stats := DiagramStats{
		NodeCount:   len(d.Nodes),
		EdgeCount:   len(d.Edges),
		EdgesByKind: make(map[model.RelationshipKind]int),
	}
	for _, n := range d.Nodes {
		if n.Data.Ghost {
			stats.GhostCount++
		}
		if n.Data.IsEntryPoint {
			stats.EntryPoints++
		}
	}
	for _, e := range d.Edges {
		stats.EdgesByKind[e.Kind]++
	}
	return stats
}

// edgeDefaults returns the rendering a new edge of kind gets.
func edgeDefaults(kind model.RelationshipKind) EdgeData {
	switch kind {
	case model.RelationshipInheritance:
		return EdgeData{LineStyle: LineSolid, MarkerEnd: MarkerTriangle}
	case model.RelationshipImplementation:
		return EdgeData{LineStyle: LineDashed, MarkerEnd: MarkerTriangle}
	case model.RelationshipAggregation:
		return EdgeData{LineStyle: LineSolid, MarkerEnd: MarkerDiamond}
	case model.RelationshipComposition:
		return EdgeData{LineStyle: LineSolid, MarkerEnd: MarkerFilledDiamond}
	case model.RelationshipDependency:
		return EdgeData{LineStyle: LineDashed, MarkerEnd: MarkerArrow}
	default:
		return EdgeData{LineStyle: LineSolid, MarkerEnd: MarkerArrow}
	}
}
