package graph

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/dusk-indust/classforge/internal/model"
	"github.com/dusk-indust/classforge/internal/typeinfo"
)

// Placer chooses the canvas position of a node the merge creates.
type Placer interface {
	Place(d Diagram, nodeID string) Position
}

// PlacerFunc adapts a function to Placer.
type PlacerFunc func(d Diagram, nodeID string) Position

// Place implements Placer.
func (f PlacerFunc) Place(d Diagram, nodeID string) Position { return f(d, nodeID) }

// RandomPlacer scatters new nodes uniformly over a Width x Height area.
type RandomPlacer struct {
	Width, Height float64
}

// Place implements Placer.
func (p RandomPlacer) Place(Diagram, string) Position {
	return Position{X: rand.Float64() * p.Width, Y: rand.Float64() * p.Height}
}

// GridPlacer lays new nodes out row by row in creation order. It is
// deterministic, which makes it the placer of choice for tests and exports.
type GridPlacer struct {
	Columns int
	Spacing float64
}

// Place implements Placer.
func (p GridPlacer) Place(d Diagram, _ string) Position {
	cols := max(p.Columns, 1)
	i := len(d.Nodes)
	return Position{
		X: float64(i%cols) * p.Spacing,
		Y: float64(i/cols) * p.Spacing,
	}
}

// MergeReport lists what a merge changed.
type MergeReport struct {
	NodeID       string   `json:"nodeId"`
	CreatedNodes []string `json:"createdNodes"`
	GhostNodes   []string `json:"ghostNodes"`
	CreatedEdges []string `json:"createdEdges"`
	// SkippedTypes are attribute types that could not become an association:
	// generic parameters, self references and multi-argument generics.
	SkippedTypes []string `json:"skippedTypes"`
}

// Resolver merges parsed classes into a diagram.
type Resolver struct {
	placer Placer
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithPlacer sets the placer used for created nodes.
func WithPlacer(p Placer) ResolverOption {
	return func(r *Resolver) {
		if p != nil {
			r.placer = p
		}
	}
}

// NewResolver returns a Resolver that places new nodes at random unless
// configured otherwise.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{placer: RandomPlacer{Width: 800, Height: 600}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultResolver = NewResolver()

// Merge folds d into g with the default resolver and returns the new diagram.
// g is not modified.
func Merge(d model.ClassDescriptor, g Diagram) Diagram {
	out, _ := defaultResolver.Merge(d, g)
	return out
}

// Merge folds d into g and returns the new diagram along with a report of the
// changes. g is never modified; the result has freshly allocated maps.
//
// The class node is created or overwritten in place, keeping its position.
// Inheritance, implementation and association edges are added for the
// parent, the interfaces and every attribute of a user-defined type, with a
// ghost node standing in for any target not yet in the diagram. Existing
// edges are left as they are. Merge never fails; relationships that cannot be
// expressed are dropped.
func (r *Resolver) Merge(d model.ClassDescriptor, g Diagram) (Diagram, MergeReport) {
	out := g.Clone()
	var report MergeReport

	name := strings.TrimSpace(d.Name)
	if name == "" {
		return out, report
	}

	id := NodeID(name)
	report.NodeID = id
	node, exists := out.Nodes[id]
	if !exists {
		node = Node{ID: id, Type: NodeTypeClass, Position: r.placer.Place(out, id)}
		report.CreatedNodes = append(report.CreatedNodes, id)
	}
	node.Data = nodeDataFor(d)
	out.Nodes[id] = node

	if parent := strings.TrimSpace(d.Parent); parent != "" {
		ghost := model.StereotypeClass
		if d.Stereotype.IsInterface() {
			ghost = model.StereotypeInterface
		}
		r.resolveEdge(&out, &report, name, parent, model.RelationshipInheritance, ghost, "")
	}

	for _, iface := range d.Interfaces {
		r.resolveEdge(&out, &report, name, iface, model.RelationshipImplementation, model.StereotypeInterface, "")
	}

	generics := make(map[string]bool)
	for _, p := range d.GenericParams() {
		generics[p] = true
	}
	for _, a := range d.Attributes {
		if typeinfo.IsPrimitive(a.Type) {
			continue
		}
		target, ok := associationTarget(a.Type)
		if !ok || generics[target] || NodeID(target) == id || target == "void" {
			report.SkippedTypes = append(report.SkippedTypes, a.Type)
			continue
		}
		multiplicity := "1"
		if a.IsArray || typeinfo.IsArray(a.Type) || typeinfo.IsCollection(a.Type) {
			multiplicity = "0..*"
		}
		r.resolveEdge(&out, &report, name, target, model.RelationshipAssociation, model.StereotypeClass, multiplicity)
	}

	return out, report
}

// associationTarget reduces an attribute type to the simple class name an
// association would point at. Types that still carry generic arguments after
// BaseType, such as Map<K, V>, have no single target.
func associationTarget(typeName string) (string, bool) {
	base := typeinfo.BaseType(typeName)
	if strings.ContainsAny(base, "<>,") {
		return "", false
	}
	target := typeinfo.SimpleName(base)
	return target, typeinfo.IsIdentifier(target)
}

// resolveEdge ensures the target node exists, synthesizing a ghost with the
// given stereotype if needed, then adds the edge unless its id is present.
func (r *Resolver) resolveEdge(
	out *Diagram,
	report *MergeReport,
	source, target string,
	kind model.RelationshipKind,
	ghost model.Stereotype,
	targetMultiplicity string,
) {
	target = typeinfo.SimpleName(target)
	if !typeinfo.IsIdentifier(target) {
		return
	}

	tid := NodeID(target)
	if _, ok := out.Nodes[tid]; !ok {
		out.Nodes[tid] = Node{
			ID:       tid,
			Type:     NodeTypeClass,
			Position: r.placer.Place(*out, tid),
			Data: NodeData{
				Label:      target,
				Stereotype: ghost,
				Attributes: []model.AttributeDescriptor{},
				Methods:    []model.MethodDescriptor{},
				Ghost:      true,
			},
		}
		report.CreatedNodes = append(report.CreatedNodes, tid)
		report.GhostNodes = append(report.GhostNodes, tid)
	}

	eid := EdgeID(source, target, kind)
	if _, ok := out.Edges[eid]; ok {
		return
	}
	data := edgeDefaults(kind)
	data.TargetMultiplicity = targetMultiplicity
	out.Edges[eid] = Edge{
		ID:     eid,
		Source: NodeID(source),
		Target: tid,
		Kind:   kind,
		Data:   data,
	}
	report.CreatedEdges = append(report.CreatedEdges, eid)
}

func nodeDataFor(d model.ClassDescriptor) NodeData {
	c := d.Clone()
	return NodeData{
		Label:         strings.TrimSpace(c.Name),
		Stereotype:    c.Stereotype,
		Generics:      c.Generics,
		Attributes:    c.Attributes,
		Methods:       c.Methods,
		EnumConstants: c.EnumConstants,
		IsEntryPoint:  c.IsEntryPoint,
	}
}

// DescriptorFor rebuilds a class descriptor from a node and its outgoing
// inheritance and implementation edges. Interfaces come back ordered by edge
// id since the diagram does not record declaration order.
func DescriptorFor(d Diagram, nodeID string) (model.ClassDescriptor, bool) {
	node, ok := d.Nodes[nodeID]
	if !ok {
		return model.ClassDescriptor{}, false
	}
	data := node.Data.clone()
	desc := model.ClassDescriptor{
		Name:          data.Label,
		Stereotype:    data.Stereotype,
		Generics:      data.Generics,
		Interfaces:    []string{},
		Attributes:    data.Attributes,
		Methods:       data.Methods,
		EnumConstants: data.EnumConstants,
		IsEntryPoint:  data.IsEntryPoint,
	}

	var edges []Edge
	for _, e := range d.Edges {
		if e.Source == nodeID {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	for _, e := range edges {
		target, ok := d.Nodes[e.Target]
		if !ok {
			continue
		}
		switch e.Kind {
		case model.RelationshipInheritance:
			if desc.Parent == "" {
				desc.Parent = target.Data.Label
			}
		case model.RelationshipImplementation:
			desc.Interfaces = append(desc.Interfaces, target.Data.Label)
		}
	}
	return desc, true
}
