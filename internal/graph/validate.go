package graph

import (
	"slices"

	"github.com/dusk-indust/classforge/internal/model"
)

// connectionRule lists the stereotypes a relationship may start and end at.
// A nil set allows any stereotype.
type connectionRule struct {
	sources []model.Stereotype
	targets []model.Stereotype
	check   func(src, tgt model.Stereotype) bool
}

var (
	classLike     = []model.Stereotype{model.StereotypeClass, model.StereotypeAbstract}
	extensible    = []model.Stereotype{model.StereotypeClass, model.StereotypeAbstract, model.StereotypeInterface}
	realizers     = []model.Stereotype{model.StereotypeClass, model.StereotypeAbstract, model.StereotypeEnum}
	onlyInterface = []model.Stereotype{model.StereotypeInterface}
)

var connectionRules = map[model.RelationshipKind]connectionRule{
	model.RelationshipInheritance: {
		sources: extensible,
		targets: extensible,
		// Interfaces extend interfaces; classes extend classes.
		check: func(src, tgt model.Stereotype) bool { return src.IsInterface() == tgt.IsInterface() },
	},
	model.RelationshipImplementation: {sources: realizers, targets: onlyInterface},
	model.RelationshipAssociation:    {},
	model.RelationshipAggregation:    {sources: classLike},
	model.RelationshipComposition:    {sources: classLike},
	model.RelationshipDependency:     {},
}

// IsValidConnection reports whether an edge of kind may connect a node of
// stereotype src to one of stereotype tgt. Notes attach to anything.
func IsValidConnection(src, tgt model.Stereotype, kind model.RelationshipKind) bool {
	if src == model.StereotypeNote || tgt == model.StereotypeNote {
		return true
	}
	rule, ok := connectionRules[kind]
	if !ok {
		return false
	}
	if !allowed(rule.sources, src) || !allowed(rule.targets, tgt) {
		return false
	}
	return rule.check == nil || rule.check(src, tgt)
}

func allowed(set []model.Stereotype, s model.Stereotype) bool {
	if set == nil {
		return slices.Contains(model.Stereotypes, s)
	}
	return slices.Contains(set, s)
}
