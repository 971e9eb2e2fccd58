package graph

import (
	"math"
	"slices"
	"sort"
)

// Dependencies performs a BFS from nodeID along edges in the given direction,
// up to maxDepth hops, and returns one chain per reachable node. Neighbors are
// visited in id order so the result is deterministic.
func Dependencies(d Diagram, nodeID string, direction Direction, maxDepth int) []DependencyChain {
	if maxDepth <= 0 {
		return nil
	}
	adj := adjacency(d, direction)

	type bfsEntry struct {
		id   string
		path []string
	}

	visited := map[string]bool{nodeID: true}
	queue := []bfsEntry{{id: nodeID, path: []string{nodeID}}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []bfsEntry
		for _, entry := range queue {
			for _, nb := range adj[entry.id] {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				path := make([]string, len(entry.path), len(entry.path)+1)
				copy(path, entry.path)
				path = append(path, nb)
				chains = append(chains, DependencyChain{Nodes: path, Depth: len(path) - 1})
				next = append(next, bfsEntry{id: nb, path: path})
			}
		}
		queue = next
	}
	return chains
}

// Impact computes which classes are affected when the classes in changed
// change: everything that extends, implements or refers to them, directly or
// transitively. RiskScore is the affected share of all non-ghost classes.
func Impact(d Diagram, changed []string) *ImpactResult {
	changedSet := make(map[string]bool, len(changed))
	for _, id := range changed {
		changedSet[id] = true
	}
	dependents := adjacency(d, DirectionDependents)

	direct := make(map[string]bool)
	for id := range changedSet {
		for _, src := range dependents[id] {
			if !changedSet[src] {
				direct[src] = true
			}
		}
	}

	all := make(map[string]bool, len(direct))
	frontier := make(map[string]bool, len(direct))
	for id := range direct {
		all[id] = true
		frontier[id] = true
	}
	for len(frontier) > 0 {
		next := make(map[string]bool)
		for id := range frontier {
			for _, src := range dependents[id] {
				if !changedSet[src] && !all[src] {
					all[src] = true
					next[src] = true
				}
			}
		}
		frontier = next
	}

	classes := 0
	for _, n := range d.Nodes {
		if !n.Data.Ghost {
			classes++
		}
	}
	transitive := sortedKeys(all)
	var risk float64
	if classes > 0 {
		risk = math.Min(1.0, float64(len(transitive))/float64(classes))
	}
	return &ImpactResult{
		DirectlyAffected:     sortedKeys(direct),
		TransitivelyAffected: transitive,
		RiskScore:            risk,
	}
}

// adjacency builds sorted neighbor lists for the given direction.
func adjacency(d Diagram, direction Direction) map[string][]string {
	adj := make(map[string][]string)
	for _, e := range d.Edges {
		switch direction {
		case DirectionDependents:
			adj[e.Target] = append(adj[e.Target], e.Source)
		default:
			adj[e.Source] = append(adj[e.Source], e.Target)
		}
	}
	for id, nbs := range adj {
		sort.Strings(nbs)
		// Two classes can be linked by more than one edge kind.
		adj[id] = slices.Compact(nbs)
	}
	return adj
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
